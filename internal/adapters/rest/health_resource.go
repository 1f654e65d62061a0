package rest

import (
	"context"
	"net/http"

	"github.com/emicklei/go-restful/v3"
)

// Pinger は依存先の疎通確認を行います。pgxpool.Pool が実装しています。
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthResource はヘルスチェックのエンドポイントを提供します。
type HealthResource struct {
	db Pinger
}

// NewHealthResource は HealthResource を生成します。db は nil を許容し、その
// 場合はプロセスの生存のみを報告します。
func NewHealthResource(db Pinger) *HealthResource {
	return &HealthResource{db: db}
}

// WebService はヘルスチェックのルーティング定義を返します。
func (r *HealthResource) WebService() *restful.WebService {
	ws := new(restful.WebService)
	ws.Path("/api/health").
		Produces(restful.MIME_JSON)

	ws.Route(ws.GET("").To(r.check))

	return ws
}

type healthResponse struct {
	Status string `json:"status"`
}

func (r *HealthResource) check(req *restful.Request, resp *restful.Response) {
	if r.db != nil {
		if err := r.db.Ping(req.Request.Context()); err != nil {
			_ = resp.WriteHeaderAndEntity(http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
			return
		}
	}

	_ = resp.WriteEntity(healthResponse{Status: "ok"})
}
