package rest

import (
	"net/http"
	"time"

	"github.com/emicklei/go-restful/v3"
	"github.com/ogurasousui/fieldservice/internal/core/asset"
)

// AssetResource は資産の REST エンドポイントを提供します。
type AssetResource struct {
	svc asset.UseCase
}

// NewAssetResource は AssetResource を生成します。
func NewAssetResource(svc asset.UseCase) *AssetResource {
	return &AssetResource{svc: svc}
}

// WebService は資産のルーティング定義を返します。
func (r *AssetResource) WebService() *restful.WebService {
	ws := new(restful.WebService)
	ws.Path("/api/assets").
		Consumes(restful.MIME_JSON).
		Produces(restful.MIME_JSON)

	ws.Route(ws.POST("").To(r.create))
	ws.Route(ws.GET("").To(r.list))
	ws.Route(ws.GET("/order/{orderId}").To(r.listByOrder))
	ws.Route(ws.GET("/project/{projectId}").To(r.listByProject))
	ws.Route(ws.GET("/{id}").To(r.get))
	ws.Route(ws.PUT("/{id}").To(r.update))
	ws.Route(ws.DELETE("/{id}").To(r.delete))

	return ws
}

type assetView struct {
	ID           string       `json:"id"`
	OrderID      string       `json:"order_id"`
	ProjectID    string       `json:"project_id"`
	CustomerID   string       `json:"customer_id"`
	Title        string       `json:"title"`
	Description  string       `json:"description,omitempty"`
	Model        string       `json:"model,omitempty"`
	Manufacturer string       `json:"manufacturer,omitempty"`
	SerialNumber string       `json:"serial_number,omitempty"`
	Category     string       `json:"category,omitempty"`
	Barcode      string       `json:"barcode,omitempty"`
	FileUpload   string       `json:"file_upload,omitempty"`
	Status       asset.Status `json:"status"`
	Location     string       `json:"location,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
	CreatedUser  string       `json:"created_user,omitempty"`
	ModifiedUser string       `json:"modified_user,omitempty"`
}

func toAssetView(a *asset.Asset) assetView {
	return assetView{
		ID:           a.ID,
		OrderID:      a.OrderID,
		ProjectID:    a.ProjectID,
		CustomerID:   a.CustomerID,
		Title:        a.Title,
		Description:  a.Description,
		Model:        a.Model,
		Manufacturer: a.Manufacturer,
		SerialNumber: a.SerialNumber,
		Category:     a.Category,
		Barcode:      a.Barcode,
		FileUpload:   a.FileUpload,
		Status:       a.Status,
		Location:     a.Location,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
		CreatedUser:  a.CreatedUser,
		ModifiedUser: a.ModifiedUser,
	}
}

func toAssetViews(assets []*asset.Asset) []assetView {
	views := make([]assetView, 0, len(assets))
	for _, a := range assets {
		views = append(views, toAssetView(a))
	}
	return views
}

type createAssetRequest struct {
	OrderID      string `json:"order_id"`
	ProjectID    string `json:"project_id"`
	CustomerID   string `json:"customer_id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Model        string `json:"model"`
	Manufacturer string `json:"manufacturer"`
	SerialNumber string `json:"serial_number"`
	Category     string `json:"category"`
	Barcode      string `json:"barcode"`
	FileUpload   string `json:"file_upload"`
	Location     string `json:"location"`
	CreatedUser  string `json:"created_user"`
}

func (r *AssetResource) create(req *restful.Request, resp *restful.Response) {
	var body createAssetRequest
	if err := req.ReadEntity(&body); err != nil {
		writeBadRequest(resp, err)
		return
	}

	created, err := r.svc.CreateAsset(req.Request.Context(), asset.CreateAssetInput{
		OrderID:      body.OrderID,
		ProjectID:    body.ProjectID,
		CustomerID:   body.CustomerID,
		Title:        body.Title,
		Description:  body.Description,
		Model:        body.Model,
		Manufacturer: body.Manufacturer,
		SerialNumber: body.SerialNumber,
		Category:     body.Category,
		Barcode:      body.Barcode,
		FileUpload:   body.FileUpload,
		Location:     body.Location,
		CreatedUser:  body.CreatedUser,
	})
	if err != nil {
		writeError(resp, err)
		return
	}

	_ = resp.WriteHeaderAndEntity(http.StatusCreated, toAssetView(created))
}

type updateAssetRequest struct {
	OrderID      *string       `json:"order_id"`
	ProjectID    *string       `json:"project_id"`
	CustomerID   *string       `json:"customer_id"`
	Title        *string       `json:"title"`
	Description  *string       `json:"description"`
	Model        *string       `json:"model"`
	Manufacturer *string       `json:"manufacturer"`
	SerialNumber *string       `json:"serial_number"`
	Category     *string       `json:"category"`
	Barcode      *string       `json:"barcode"`
	FileUpload   *string       `json:"file_upload"`
	Status       *asset.Status `json:"status"`
	Location     *string       `json:"location"`
	ModifiedUser string        `json:"modified_user"`
}

func (r *AssetResource) update(req *restful.Request, resp *restful.Response) {
	var body updateAssetRequest
	if err := req.ReadEntity(&body); err != nil {
		writeBadRequest(resp, err)
		return
	}

	updated, err := r.svc.UpdateAsset(req.Request.Context(), asset.UpdateAssetInput{
		ID:           req.PathParameter("id"),
		OrderID:      body.OrderID,
		ProjectID:    body.ProjectID,
		CustomerID:   body.CustomerID,
		Title:        body.Title,
		Description:  body.Description,
		Model:        body.Model,
		Manufacturer: body.Manufacturer,
		SerialNumber: body.SerialNumber,
		Category:     body.Category,
		Barcode:      body.Barcode,
		FileUpload:   body.FileUpload,
		Status:       body.Status,
		Location:     body.Location,
		ModifiedUser: body.ModifiedUser,
	})
	if err != nil {
		writeError(resp, err)
		return
	}

	_ = resp.WriteEntity(toAssetView(updated))
}

func (r *AssetResource) get(req *restful.Request, resp *restful.Response) {
	found, err := r.svc.GetAsset(req.Request.Context(), asset.GetAssetInput{ID: req.PathParameter("id")})
	if err != nil {
		writeError(resp, err)
		return
	}

	_ = resp.WriteEntity(toAssetView(found))
}

type assetListResponse struct {
	Assets        []assetView `json:"assets"`
	NextPageToken string      `json:"next_page_token,omitempty"`
}

func (r *AssetResource) list(req *restful.Request, resp *restful.Response) {
	in := asset.ListAssetsInput{
		Category:  req.QueryParameter("category"),
		Search:    req.QueryParameter("search"),
		PageSize:  intQueryParameter(req, "page_size"),
		PageToken: req.QueryParameter("page_token"),
	}
	if raw := req.QueryParameter("status"); raw != "" {
		status := asset.Status(raw)
		in.Status = &status
	}

	result, err := r.svc.ListAssets(req.Request.Context(), in)
	if err != nil {
		writeError(resp, err)
		return
	}

	_ = resp.WriteEntity(assetListResponse{
		Assets:        toAssetViews(result.Assets),
		NextPageToken: result.NextPageToken,
	})
}

func (r *AssetResource) listByOrder(req *restful.Request, resp *restful.Response) {
	assets, err := r.svc.ListAssetsByOrder(req.Request.Context(), req.PathParameter("orderId"))
	if err != nil {
		writeError(resp, err)
		return
	}

	_ = resp.WriteEntity(assetListResponse{Assets: toAssetViews(assets)})
}

func (r *AssetResource) listByProject(req *restful.Request, resp *restful.Response) {
	assets, err := r.svc.ListAssetsByProject(req.Request.Context(), req.PathParameter("projectId"))
	if err != nil {
		writeError(resp, err)
		return
	}

	_ = resp.WriteEntity(assetListResponse{Assets: toAssetViews(assets)})
}

func (r *AssetResource) delete(req *restful.Request, resp *restful.Response) {
	if err := r.svc.DeleteAsset(req.Request.Context(), asset.DeleteAssetInput{ID: req.PathParameter("id")}); err != nil {
		writeError(resp, err)
		return
	}

	resp.WriteHeader(http.StatusNoContent)
}
