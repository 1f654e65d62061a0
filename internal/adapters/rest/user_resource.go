package rest

import (
	"net/http"
	"time"

	"github.com/emicklei/go-restful/v3"
	"github.com/ogurasousui/fieldservice/internal/core/user"
)

// UserResource は従業員の REST エンドポイントを提供します。
type UserResource struct {
	svc user.UseCase
}

// NewUserResource は UserResource を生成します。
func NewUserResource(svc user.UseCase) *UserResource {
	return &UserResource{svc: svc}
}

// WebService は従業員のルーティング定義を返します。
func (r *UserResource) WebService() *restful.WebService {
	ws := new(restful.WebService)
	ws.Path("/api/users").
		Consumes(restful.MIME_JSON).
		Produces(restful.MIME_JSON)

	ws.Route(ws.POST("").To(r.create))
	ws.Route(ws.GET("").To(r.list))
	ws.Route(ws.GET("/{id}").To(r.get))
	ws.Route(ws.PUT("/{id}").To(r.update))
	ws.Route(ws.DELETE("/{id}").To(r.delete))

	return ws
}

type userView struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Email       string      `json:"email"`
	Designation string      `json:"designation,omitempty"`
	Role        user.Role   `json:"role"`
	Code        string      `json:"code"`
	Phone       string      `json:"phone,omitempty"`
	Status      user.Status `json:"status"`
	IsActive    bool        `json:"is_active"`
	AssetID     string      `json:"asset_id,omitempty"`
	OrderID     string      `json:"order_id,omitempty"`
	ProjectID   string      `json:"project_id,omitempty"`
	CustomerID  string      `json:"customer_id,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

func toUserView(u *user.User) userView {
	return userView{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Designation: u.Designation,
		Role:        u.Role,
		Code:        u.Code,
		Phone:       u.Phone,
		Status:      u.Status,
		IsActive:    u.IsActive,
		AssetID:     u.AssetID,
		OrderID:     u.OrderID,
		ProjectID:   u.ProjectID,
		CustomerID:  u.CustomerID,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

type createUserRequest struct {
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Designation string    `json:"designation"`
	Role        user.Role `json:"role"`
	Phone       string    `json:"phone"`
	AssetID     string    `json:"asset_id"`
	OrderID     string    `json:"order_id"`
	ProjectID   string    `json:"project_id"`
	CustomerID  string    `json:"customer_id"`
}

func (r *UserResource) create(req *restful.Request, resp *restful.Response) {
	var body createUserRequest
	if err := req.ReadEntity(&body); err != nil {
		writeBadRequest(resp, err)
		return
	}

	created, err := r.svc.CreateUser(req.Request.Context(), user.CreateUserInput{
		Name:        body.Name,
		Email:       body.Email,
		Designation: body.Designation,
		Role:        body.Role,
		Phone:       body.Phone,
		AssetID:     body.AssetID,
		OrderID:     body.OrderID,
		ProjectID:   body.ProjectID,
		CustomerID:  body.CustomerID,
	})
	if err != nil {
		writeError(resp, err)
		return
	}

	_ = resp.WriteHeaderAndEntity(http.StatusCreated, toUserView(created))
}

type updateUserRequest struct {
	Name           *string      `json:"name"`
	Email          *string      `json:"email"`
	Designation    *string      `json:"designation"`
	Role           *user.Role   `json:"role"`
	Phone          *string      `json:"phone"`
	Status         *user.Status `json:"status"`
	IsActive       *bool        `json:"is_active"`
	AssetID        *string      `json:"asset_id"`
	OrderID        *string      `json:"order_id"`
	ProjectID      *string      `json:"project_id"`
	CustomerID     *string      `json:"customer_id"`
	RegenerateCode bool         `json:"regenerate_code"`
}

func (r *UserResource) update(req *restful.Request, resp *restful.Response) {
	var body updateUserRequest
	if err := req.ReadEntity(&body); err != nil {
		writeBadRequest(resp, err)
		return
	}

	updated, err := r.svc.UpdateUser(req.Request.Context(), user.UpdateUserInput{
		ID:             req.PathParameter("id"),
		Name:           body.Name,
		Email:          body.Email,
		Designation:    body.Designation,
		Role:           body.Role,
		Phone:          body.Phone,
		Status:         body.Status,
		IsActive:       body.IsActive,
		AssetID:        body.AssetID,
		OrderID:        body.OrderID,
		ProjectID:      body.ProjectID,
		CustomerID:     body.CustomerID,
		RegenerateCode: body.RegenerateCode,
	})
	if err != nil {
		writeError(resp, err)
		return
	}

	_ = resp.WriteEntity(toUserView(updated))
}

func (r *UserResource) get(req *restful.Request, resp *restful.Response) {
	found, err := r.svc.GetUser(req.Request.Context(), user.GetUserInput{ID: req.PathParameter("id")})
	if err != nil {
		writeError(resp, err)
		return
	}

	_ = resp.WriteEntity(toUserView(found))
}

type userListResponse struct {
	Users         []userView `json:"users"`
	NextPageToken string     `json:"next_page_token,omitempty"`
}

func (r *UserResource) list(req *restful.Request, resp *restful.Response) {
	in := user.ListUsersInput{
		Search:    req.QueryParameter("search"),
		PageSize:  intQueryParameter(req, "page_size"),
		PageToken: req.QueryParameter("page_token"),
	}
	if raw := req.QueryParameter("status"); raw != "" {
		status := user.Status(raw)
		in.Status = &status
	}
	if raw := req.QueryParameter("role"); raw != "" {
		role := user.Role(raw)
		in.Role = &role
	}

	result, err := r.svc.ListUsers(req.Request.Context(), in)
	if err != nil {
		writeError(resp, err)
		return
	}

	out := userListResponse{Users: make([]userView, 0, len(result.Users)), NextPageToken: result.NextPageToken}
	for _, u := range result.Users {
		out.Users = append(out.Users, toUserView(u))
	}
	_ = resp.WriteEntity(out)
}

func (r *UserResource) delete(req *restful.Request, resp *restful.Response) {
	if err := r.svc.DeleteUser(req.Request.Context(), user.DeleteUserInput{ID: req.PathParameter("id")}); err != nil {
		writeError(resp, err)
		return
	}

	resp.WriteHeader(http.StatusNoContent)
}
