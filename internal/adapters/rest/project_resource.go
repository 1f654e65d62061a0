package rest

import (
	"net/http"
	"time"

	"github.com/emicklei/go-restful/v3"
	"github.com/ogurasousui/fieldservice/internal/core/project"
)

// ProjectResource はプロジェクトの REST エンドポイントを提供します。
type ProjectResource struct {
	svc project.UseCase
}

// NewProjectResource は ProjectResource を生成します。
func NewProjectResource(svc project.UseCase) *ProjectResource {
	return &ProjectResource{svc: svc}
}

// WebService はプロジェクトのルーティング定義を返します。
func (r *ProjectResource) WebService() *restful.WebService {
	ws := new(restful.WebService)
	ws.Path("/api/projects").
		Consumes(restful.MIME_JSON).
		Produces(restful.MIME_JSON)

	ws.Route(ws.POST("").To(r.create))
	ws.Route(ws.GET("").To(r.list))
	ws.Route(ws.GET("/customer/{customerId}").To(r.listByCustomer))
	ws.Route(ws.GET("/{id}").To(r.get))
	ws.Route(ws.PUT("/{id}").To(r.update))
	ws.Route(ws.DELETE("/{id}").To(r.delete))

	return ws
}

type projectView struct {
	ID           string         `json:"id"`
	Customer     refView        `json:"customer"`
	Employee     refView        `json:"employee"`
	Title        string         `json:"title"`
	MapLocation  string         `json:"map_location,omitempty"`
	ContactName  string         `json:"contact_name,omitempty"`
	ContactPhone string         `json:"contact_phone,omitempty"`
	ContactEmail string         `json:"contact_email,omitempty"`
	Description  string         `json:"description,omitempty"`
	FileUpload   string         `json:"file_upload,omitempty"`
	Latitude     *float64       `json:"latitude,omitempty"`
	Longitude    *float64       `json:"longitude,omitempty"`
	Status       project.Status `json:"status"`
	StartDate    *time.Time     `json:"start_date,omitempty"`
	EndDate      *time.Time     `json:"end_date,omitempty"`
	Budget       float64        `json:"budget"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	CreatedUser  string         `json:"created_user,omitempty"`
	ModifiedUser string         `json:"modified_user,omitempty"`
}

func toProjectView(p *project.Project) projectView {
	return projectView{
		ID:           p.ID,
		Customer:     refView{ID: p.Customer.ID, Name: p.Customer.Name},
		Employee:     refView{ID: p.Employee.ID, Name: p.Employee.Name},
		Title:        p.Title,
		MapLocation:  p.MapLocation,
		ContactName:  p.ContactName,
		ContactPhone: p.ContactPhone,
		ContactEmail: p.ContactEmail,
		Description:  p.Description,
		FileUpload:   p.FileUpload,
		Latitude:     p.Latitude,
		Longitude:    p.Longitude,
		Status:       p.Status,
		StartDate:    p.StartDate,
		EndDate:      p.EndDate,
		Budget:       p.Budget,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
		CreatedUser:  p.CreatedUser,
		ModifiedUser: p.ModifiedUser,
	}
}

func toProjectViews(projects []*project.Project) []projectView {
	views := make([]projectView, 0, len(projects))
	for _, p := range projects {
		views = append(views, toProjectView(p))
	}
	return views
}

type createProjectRequest struct {
	CustomerID   string     `json:"customer_id"`
	CustomerName string     `json:"customer_name"`
	EmployeeID   string     `json:"employee_id"`
	EmployeeName string     `json:"employee_name"`
	Title        string     `json:"title"`
	MapLocation  string     `json:"map_location"`
	ContactName  string     `json:"contact_name"`
	ContactPhone string     `json:"contact_phone"`
	ContactEmail string     `json:"contact_email"`
	Description  string     `json:"description"`
	FileUpload   string     `json:"file_upload"`
	Latitude     *float64   `json:"latitude"`
	Longitude    *float64   `json:"longitude"`
	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
	Budget       float64    `json:"budget"`
	CreatedUser  string     `json:"created_user"`
}

func (r *ProjectResource) create(req *restful.Request, resp *restful.Response) {
	var body createProjectRequest
	if err := req.ReadEntity(&body); err != nil {
		writeBadRequest(resp, err)
		return
	}

	created, err := r.svc.CreateProject(req.Request.Context(), project.CreateProjectInput{
		Customer:     project.Ref{ID: body.CustomerID, Name: body.CustomerName},
		Employee:     project.Ref{ID: body.EmployeeID, Name: body.EmployeeName},
		Title:        body.Title,
		MapLocation:  body.MapLocation,
		ContactName:  body.ContactName,
		ContactPhone: body.ContactPhone,
		ContactEmail: body.ContactEmail,
		Description:  body.Description,
		FileUpload:   body.FileUpload,
		Latitude:     body.Latitude,
		Longitude:    body.Longitude,
		StartDate:    body.StartDate,
		EndDate:      body.EndDate,
		Budget:       body.Budget,
		CreatedUser:  body.CreatedUser,
	})
	if err != nil {
		writeError(resp, err)
		return
	}

	_ = resp.WriteHeaderAndEntity(http.StatusCreated, toProjectView(created))
}

type updateProjectRequest struct {
	CustomerID   *string         `json:"customer_id"`
	CustomerName *string         `json:"customer_name"`
	EmployeeID   *string         `json:"employee_id"`
	EmployeeName *string         `json:"employee_name"`
	Title        *string         `json:"title"`
	MapLocation  *string         `json:"map_location"`
	ContactName  *string         `json:"contact_name"`
	ContactPhone *string         `json:"contact_phone"`
	ContactEmail *string         `json:"contact_email"`
	Description  *string         `json:"description"`
	FileUpload   *string         `json:"file_upload"`
	Latitude     *float64        `json:"latitude"`
	Longitude    *float64        `json:"longitude"`
	Status       *project.Status `json:"status"`
	StartDate    *time.Time      `json:"start_date"`
	EndDate      *time.Time      `json:"end_date"`
	Budget       *float64        `json:"budget"`
	ModifiedUser string          `json:"modified_user"`
}

func projectRefFromRequest(id, name *string) *project.Ref {
	if id == nil {
		return nil
	}
	ref := project.Ref{ID: *id}
	if name != nil {
		ref.Name = *name
	}
	return &ref
}

func (r *ProjectResource) update(req *restful.Request, resp *restful.Response) {
	var body updateProjectRequest
	if err := req.ReadEntity(&body); err != nil {
		writeBadRequest(resp, err)
		return
	}

	updated, err := r.svc.UpdateProject(req.Request.Context(), project.UpdateProjectInput{
		ID:           req.PathParameter("id"),
		Customer:     projectRefFromRequest(body.CustomerID, body.CustomerName),
		Employee:     projectRefFromRequest(body.EmployeeID, body.EmployeeName),
		Title:        body.Title,
		MapLocation:  body.MapLocation,
		ContactName:  body.ContactName,
		ContactPhone: body.ContactPhone,
		ContactEmail: body.ContactEmail,
		Description:  body.Description,
		FileUpload:   body.FileUpload,
		Latitude:     body.Latitude,
		Longitude:    body.Longitude,
		Status:       body.Status,
		StartDate:    body.StartDate,
		EndDate:      body.EndDate,
		Budget:       body.Budget,
		ModifiedUser: body.ModifiedUser,
	})
	if err != nil {
		writeError(resp, err)
		return
	}

	_ = resp.WriteEntity(toProjectView(updated))
}

func (r *ProjectResource) get(req *restful.Request, resp *restful.Response) {
	found, err := r.svc.GetProject(req.Request.Context(), project.GetProjectInput{ID: req.PathParameter("id")})
	if err != nil {
		writeError(resp, err)
		return
	}

	_ = resp.WriteEntity(toProjectView(found))
}

type projectListResponse struct {
	Projects      []projectView `json:"projects"`
	NextPageToken string        `json:"next_page_token,omitempty"`
}

func (r *ProjectResource) list(req *restful.Request, resp *restful.Response) {
	in := project.ListProjectsInput{
		Search:    req.QueryParameter("search"),
		PageSize:  intQueryParameter(req, "page_size"),
		PageToken: req.QueryParameter("page_token"),
	}
	if raw := req.QueryParameter("status"); raw != "" {
		status := project.Status(raw)
		in.Status = &status
	}

	result, err := r.svc.ListProjects(req.Request.Context(), in)
	if err != nil {
		writeError(resp, err)
		return
	}

	_ = resp.WriteEntity(projectListResponse{
		Projects:      toProjectViews(result.Projects),
		NextPageToken: result.NextPageToken,
	})
}

func (r *ProjectResource) listByCustomer(req *restful.Request, resp *restful.Response) {
	projects, err := r.svc.ListProjectsByCustomer(req.Request.Context(), req.PathParameter("customerId"))
	if err != nil {
		writeError(resp, err)
		return
	}

	_ = resp.WriteEntity(projectListResponse{Projects: toProjectViews(projects)})
}

func (r *ProjectResource) delete(req *restful.Request, resp *restful.Response) {
	if err := r.svc.DeleteProject(req.Request.Context(), project.DeleteProjectInput{ID: req.PathParameter("id")}); err != nil {
		writeError(resp, err)
		return
	}

	resp.WriteHeader(http.StatusNoContent)
}
