package rest

import (
	"net/http"
	"time"

	"github.com/emicklei/go-restful/v3"
	"github.com/ogurasousui/fieldservice/internal/core/customer"
)

// CustomerResource は顧客の REST エンドポイントを提供します。
type CustomerResource struct {
	svc customer.UseCase
}

// NewCustomerResource は CustomerResource を生成します。
func NewCustomerResource(svc customer.UseCase) *CustomerResource {
	return &CustomerResource{svc: svc}
}

// WebService は顧客のルーティング定義を返します。
func (r *CustomerResource) WebService() *restful.WebService {
	ws := new(restful.WebService)
	ws.Path("/api/customers").
		Consumes(restful.MIME_JSON).
		Produces(restful.MIME_JSON)

	ws.Route(ws.POST("").To(r.create))
	ws.Route(ws.GET("").To(r.list))
	ws.Route(ws.GET("/{id}").To(r.get))
	ws.Route(ws.PUT("/{id}").To(r.update))
	ws.Route(ws.DELETE("/{id}").To(r.delete))

	return ws
}

type customerView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Fax       string    `json:"fax,omitempty"`
	Email     string    `json:"email"`
	Latitude  *float64  `json:"latitude,omitempty"`
	Longitude *float64  `json:"longitude,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toCustomerView(c *customer.Customer) customerView {
	return customerView{
		ID:        c.ID,
		Name:      c.Name,
		Address:   c.Address,
		Phone:     c.Phone,
		Fax:       c.Fax,
		Email:     c.Email,
		Latitude:  c.Latitude,
		Longitude: c.Longitude,
		IsActive:  c.IsActive,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

type createCustomerRequest struct {
	Name      string   `json:"name"`
	Address   string   `json:"address"`
	Phone     string   `json:"phone"`
	Fax       string   `json:"fax"`
	Email     string   `json:"email"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

func (r *CustomerResource) create(req *restful.Request, resp *restful.Response) {
	var body createCustomerRequest
	if err := req.ReadEntity(&body); err != nil {
		writeBadRequest(resp, err)
		return
	}

	created, err := r.svc.CreateCustomer(req.Request.Context(), customer.CreateCustomerInput{
		Name:      body.Name,
		Address:   body.Address,
		Phone:     body.Phone,
		Fax:       body.Fax,
		Email:     body.Email,
		Latitude:  body.Latitude,
		Longitude: body.Longitude,
	})
	if err != nil {
		writeError(resp, err)
		return
	}

	_ = resp.WriteHeaderAndEntity(http.StatusCreated, toCustomerView(created))
}

type updateCustomerRequest struct {
	Name      *string  `json:"name"`
	Address   *string  `json:"address"`
	Phone     *string  `json:"phone"`
	Fax       *string  `json:"fax"`
	Email     *string  `json:"email"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	IsActive  *bool    `json:"is_active"`
}

func (r *CustomerResource) update(req *restful.Request, resp *restful.Response) {
	var body updateCustomerRequest
	if err := req.ReadEntity(&body); err != nil {
		writeBadRequest(resp, err)
		return
	}

	updated, err := r.svc.UpdateCustomer(req.Request.Context(), customer.UpdateCustomerInput{
		ID:        req.PathParameter("id"),
		Name:      body.Name,
		Address:   body.Address,
		Phone:     body.Phone,
		Fax:       body.Fax,
		Email:     body.Email,
		Latitude:  body.Latitude,
		Longitude: body.Longitude,
		IsActive:  body.IsActive,
	})
	if err != nil {
		writeError(resp, err)
		return
	}

	_ = resp.WriteEntity(toCustomerView(updated))
}

func (r *CustomerResource) get(req *restful.Request, resp *restful.Response) {
	found, err := r.svc.GetCustomer(req.Request.Context(), customer.GetCustomerInput{ID: req.PathParameter("id")})
	if err != nil {
		writeError(resp, err)
		return
	}

	_ = resp.WriteEntity(toCustomerView(found))
}

type customerListResponse struct {
	Customers     []customerView `json:"customers"`
	NextPageToken string         `json:"next_page_token,omitempty"`
}

func (r *CustomerResource) list(req *restful.Request, resp *restful.Response) {
	result, err := r.svc.ListCustomers(req.Request.Context(), customer.ListCustomersInput{
		IsActive:  boolQueryParameter(req, "is_active"),
		Search:    req.QueryParameter("search"),
		PageSize:  intQueryParameter(req, "page_size"),
		PageToken: req.QueryParameter("page_token"),
	})
	if err != nil {
		writeError(resp, err)
		return
	}

	out := customerListResponse{Customers: make([]customerView, 0, len(result.Customers)), NextPageToken: result.NextPageToken}
	for _, c := range result.Customers {
		out.Customers = append(out.Customers, toCustomerView(c))
	}
	_ = resp.WriteEntity(out)
}

func (r *CustomerResource) delete(req *restful.Request, resp *restful.Response) {
	if err := r.svc.DeleteCustomer(req.Request.Context(), customer.DeleteCustomerInput{ID: req.PathParameter("id")}); err != nil {
		writeError(resp, err)
		return
	}

	resp.WriteHeader(http.StatusNoContent)
}
