package rest

import (
	"net/http"
	"time"

	"github.com/emicklei/go-restful/v3"
	"github.com/ogurasousui/fieldservice/internal/core/order"
)

// OrderResource は注文の REST エンドポイントを提供します。
type OrderResource struct {
	svc order.UseCase
}

// NewOrderResource は OrderResource を生成します。
func NewOrderResource(svc order.UseCase) *OrderResource {
	return &OrderResource{svc: svc}
}

// WebService は注文のルーティング定義を返します。
func (r *OrderResource) WebService() *restful.WebService {
	ws := new(restful.WebService)
	ws.Path("/api/orders").
		Consumes(restful.MIME_JSON).
		Produces(restful.MIME_JSON)

	ws.Route(ws.POST("").To(r.create))
	ws.Route(ws.GET("").To(r.list))
	ws.Route(ws.GET("/project/{projectId}").To(r.listByProject))
	ws.Route(ws.GET("/customer/{customerId}").To(r.listByCustomer))
	ws.Route(ws.GET("/{id}").To(r.get))
	ws.Route(ws.PUT("/{id}").To(r.update))
	ws.Route(ws.DELETE("/{id}").To(r.delete))

	return ws
}

type refView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type orderView struct {
	ID           string       `json:"id"`
	Customer     refView      `json:"customer"`
	User         refView      `json:"user"`
	Project      refView      `json:"project"`
	Title        string       `json:"title"`
	OrderNumber  string       `json:"order_number"`
	ErpNumber    string       `json:"erp_number,omitempty"`
	Amount       float64      `json:"amount"`
	OrderDate    time.Time    `json:"order_date"`
	DeliveryDate *time.Time   `json:"delivery_date,omitempty"`
	FileUpload   string       `json:"file_upload,omitempty"`
	PublicLink   string       `json:"public_link,omitempty"`
	Status       order.Status `json:"status"`
	Notes        string       `json:"notes,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
	CreatedUser  string       `json:"created_user,omitempty"`
	ModifiedUser string       `json:"modified_user,omitempty"`
}

func toOrderView(o *order.Order) orderView {
	return orderView{
		ID:           o.ID,
		Customer:     refView{ID: o.Customer.ID, Name: o.Customer.Name},
		User:         refView{ID: o.User.ID, Name: o.User.Name},
		Project:      refView{ID: o.Project.ID, Name: o.Project.Name},
		Title:        o.Title,
		OrderNumber:  o.OrderNumber,
		ErpNumber:    o.ErpNumber,
		Amount:       o.Amount,
		OrderDate:    o.OrderDate,
		DeliveryDate: o.DeliveryDate,
		FileUpload:   o.FileUpload,
		PublicLink:   o.PublicLink,
		Status:       o.Status,
		Notes:        o.Notes,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
		CreatedUser:  o.CreatedUser,
		ModifiedUser: o.ModifiedUser,
	}
}

func toOrderViews(orders []*order.Order) []orderView {
	views := make([]orderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, toOrderView(o))
	}
	return views
}

type createOrderRequest struct {
	CustomerID   string     `json:"customer_id"`
	CustomerName string     `json:"customer_name"`
	UserID       string     `json:"user_id"`
	UserName     string     `json:"user_name"`
	ProjectID    string     `json:"project_id"`
	ProjectName  string     `json:"project_name"`
	Title        string     `json:"title"`
	ErpNumber    string     `json:"erp_number"`
	Amount       float64    `json:"amount"`
	OrderDate    *time.Time `json:"order_date"`
	DeliveryDate *time.Time `json:"delivery_date"`
	FileUpload   string     `json:"file_upload"`
	PublicLink   string     `json:"public_link"`
	Notes        string     `json:"notes"`
	CreatedUser  string     `json:"created_user"`
}

func (r *OrderResource) create(req *restful.Request, resp *restful.Response) {
	var body createOrderRequest
	if err := req.ReadEntity(&body); err != nil {
		writeBadRequest(resp, err)
		return
	}

	created, err := r.svc.CreateOrder(req.Request.Context(), order.CreateOrderInput{
		Customer:     order.Ref{ID: body.CustomerID, Name: body.CustomerName},
		User:         order.Ref{ID: body.UserID, Name: body.UserName},
		Project:      order.Ref{ID: body.ProjectID, Name: body.ProjectName},
		Title:        body.Title,
		ErpNumber:    body.ErpNumber,
		Amount:       body.Amount,
		OrderDate:    body.OrderDate,
		DeliveryDate: body.DeliveryDate,
		FileUpload:   body.FileUpload,
		PublicLink:   body.PublicLink,
		Notes:        body.Notes,
		CreatedUser:  body.CreatedUser,
	})
	if err != nil {
		writeError(resp, err)
		return
	}

	_ = resp.WriteHeaderAndEntity(http.StatusCreated, toOrderView(created))
}

type updateOrderRequest struct {
	CustomerID   *string       `json:"customer_id"`
	CustomerName *string       `json:"customer_name"`
	UserID       *string       `json:"user_id"`
	UserName     *string       `json:"user_name"`
	ProjectID    *string       `json:"project_id"`
	ProjectName  *string       `json:"project_name"`
	Title        *string       `json:"title"`
	ErpNumber    *string       `json:"erp_number"`
	Amount       *float64      `json:"amount"`
	OrderDate    *time.Time    `json:"order_date"`
	DeliveryDate *time.Time    `json:"delivery_date"`
	FileUpload   *string       `json:"file_upload"`
	PublicLink   *string       `json:"public_link"`
	Status       *order.Status `json:"status"`
	Notes        *string       `json:"notes"`
	ModifiedUser string        `json:"modified_user"`
}

func refFromRequest(id, name *string) *order.Ref {
	if id == nil {
		return nil
	}
	ref := order.Ref{ID: *id}
	if name != nil {
		ref.Name = *name
	}
	return &ref
}

func (r *OrderResource) update(req *restful.Request, resp *restful.Response) {
	var body updateOrderRequest
	if err := req.ReadEntity(&body); err != nil {
		writeBadRequest(resp, err)
		return
	}

	updated, err := r.svc.UpdateOrder(req.Request.Context(), order.UpdateOrderInput{
		ID:           req.PathParameter("id"),
		Customer:     refFromRequest(body.CustomerID, body.CustomerName),
		User:         refFromRequest(body.UserID, body.UserName),
		Project:      refFromRequest(body.ProjectID, body.ProjectName),
		Title:        body.Title,
		ErpNumber:    body.ErpNumber,
		Amount:       body.Amount,
		OrderDate:    body.OrderDate,
		DeliveryDate: body.DeliveryDate,
		FileUpload:   body.FileUpload,
		PublicLink:   body.PublicLink,
		Status:       body.Status,
		Notes:        body.Notes,
		ModifiedUser: body.ModifiedUser,
	})
	if err != nil {
		writeError(resp, err)
		return
	}

	_ = resp.WriteEntity(toOrderView(updated))
}

func (r *OrderResource) get(req *restful.Request, resp *restful.Response) {
	found, err := r.svc.GetOrder(req.Request.Context(), order.GetOrderInput{ID: req.PathParameter("id")})
	if err != nil {
		writeError(resp, err)
		return
	}

	_ = resp.WriteEntity(toOrderView(found))
}

type orderListResponse struct {
	Orders        []orderView `json:"orders"`
	NextPageToken string      `json:"next_page_token,omitempty"`
}

func (r *OrderResource) list(req *restful.Request, resp *restful.Response) {
	in := order.ListOrdersInput{
		Search:    req.QueryParameter("search"),
		PageSize:  intQueryParameter(req, "page_size"),
		PageToken: req.QueryParameter("page_token"),
	}
	if raw := req.QueryParameter("status"); raw != "" {
		status := order.Status(raw)
		in.Status = &status
	}

	result, err := r.svc.ListOrders(req.Request.Context(), in)
	if err != nil {
		writeError(resp, err)
		return
	}

	_ = resp.WriteEntity(orderListResponse{
		Orders:        toOrderViews(result.Orders),
		NextPageToken: result.NextPageToken,
	})
}

func (r *OrderResource) listByProject(req *restful.Request, resp *restful.Response) {
	orders, err := r.svc.ListOrdersByProject(req.Request.Context(), req.PathParameter("projectId"))
	if err != nil {
		writeError(resp, err)
		return
	}

	_ = resp.WriteEntity(orderListResponse{Orders: toOrderViews(orders)})
}

func (r *OrderResource) listByCustomer(req *restful.Request, resp *restful.Response) {
	orders, err := r.svc.ListOrdersByCustomer(req.Request.Context(), req.PathParameter("customerId"))
	if err != nil {
		writeError(resp, err)
		return
	}

	_ = resp.WriteEntity(orderListResponse{Orders: toOrderViews(orders)})
}

func (r *OrderResource) delete(req *restful.Request, resp *restful.Response) {
	if err := r.svc.DeleteOrder(req.Request.Context(), order.DeleteOrderInput{ID: req.PathParameter("id")}); err != nil {
		writeError(resp, err)
		return
	}

	resp.WriteHeader(http.StatusNoContent)
}
