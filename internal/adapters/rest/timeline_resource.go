package rest

import (
	"net/http"
	"time"

	"github.com/emicklei/go-restful/v3"
	"github.com/ogurasousui/fieldservice/internal/core/timeline"
)

// TimelineResource は従業員タイムラインの REST エンドポイントを提供します。
type TimelineResource struct {
	svc timeline.UseCase
}

// NewTimelineResource は TimelineResource を生成します。
func NewTimelineResource(svc timeline.UseCase) *TimelineResource {
	return &TimelineResource{svc: svc}
}

// WebService はタイムラインのルーティング定義を返します。
func (r *TimelineResource) WebService() *restful.WebService {
	ws := new(restful.WebService)
	ws.Path("/api/timeline").
		Consumes(restful.MIME_JSON).
		Produces(restful.MIME_JSON)

	ws.Route(ws.POST("").To(r.saveEntry))
	ws.Route(ws.GET("/all").To(r.listAll))
	ws.Route(ws.GET("/date/{date}").To(r.listByDate))
	ws.Route(ws.GET("/employee/{employeeId}").To(r.listByEmployee))
	ws.Route(ws.GET("/employee/{employeeId}/date/{date}").To(r.get))
	ws.Route(ws.PUT("/end-time").To(r.setEntryEnd))

	return ws
}

type officeView struct {
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Title string  `json:"title"`
}

type timelineEntryView struct {
	Lat       float64    `json:"lat"`
	Lng       float64    `json:"lng"`
	Title     string     `json:"title"`
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
}

type timelineView struct {
	ID           string              `json:"id"`
	EmployeeID   string              `json:"employee_id"`
	EmployeeName string              `json:"employee_name"`
	Date         string              `json:"date"`
	Office       officeView          `json:"office"`
	Entries      []timelineEntryView `json:"entries"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

func toTimelineView(t *timeline.Timeline) timelineView {
	entries := make([]timelineEntryView, 0, len(t.Entries))
	for _, e := range t.Entries {
		entries = append(entries, timelineEntryView{
			Lat:       e.Lat,
			Lng:       e.Lng,
			Title:     e.Title,
			StartTime: e.StartTime,
			EndTime:   e.EndTime,
		})
	}
	return timelineView{
		ID:           t.ID,
		EmployeeID:   t.EmployeeID,
		EmployeeName: t.EmployeeName,
		Date:         t.Date,
		Office:       officeView{Lat: t.Office.Lat, Lng: t.Office.Lng, Title: t.Office.Title},
		Entries:      entries,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

type timelineListResponse struct {
	Timelines []timelineView `json:"timelines"`
}

func toTimelineListResponse(timelines []*timeline.Timeline) timelineListResponse {
	views := make([]timelineView, 0, len(timelines))
	for _, t := range timelines {
		views = append(views, toTimelineView(t))
	}
	return timelineListResponse{Timelines: views}
}

type saveEntryRequest struct {
	EmployeeID   string     `json:"employee_id"`
	EmployeeName string     `json:"employee_name"`
	Date         string     `json:"date"`
	Lat          float64    `json:"lat"`
	Lng          float64    `json:"lng"`
	Title        string     `json:"title"`
	StartTime    *time.Time `json:"start_time"`
	EndTime      *time.Time `json:"end_time"`
}

// saveEntry は当日のタイムラインに作業記録を追記します。その日のタイムラインが
// まだなければ新規作成し、201 を返します。
func (r *TimelineResource) saveEntry(req *restful.Request, resp *restful.Response) {
	var body saveEntryRequest
	if err := req.ReadEntity(&body); err != nil {
		writeBadRequest(resp, err)
		return
	}

	saved, created, err := r.svc.SaveEntry(req.Request.Context(), timeline.SaveEntryInput{
		EmployeeID:   body.EmployeeID,
		EmployeeName: body.EmployeeName,
		Date:         body.Date,
		Entry: timeline.Entry{
			Lat:       body.Lat,
			Lng:       body.Lng,
			Title:     body.Title,
			StartTime: body.StartTime,
			EndTime:   body.EndTime,
		},
	})
	if err != nil {
		writeError(resp, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	_ = resp.WriteHeaderAndEntity(status, toTimelineView(saved))
}

type setEntryEndRequest struct {
	EmployeeID string     `json:"employee_id"`
	Date       string     `json:"date"`
	EntryTitle string     `json:"entry_title"`
	EndTime    *time.Time `json:"end_time"`
}

func (r *TimelineResource) setEntryEnd(req *restful.Request, resp *restful.Response) {
	var body setEntryEndRequest
	if err := req.ReadEntity(&body); err != nil {
		writeBadRequest(resp, err)
		return
	}

	updated, err := r.svc.SetEntryEnd(req.Request.Context(), timeline.SetEntryEndInput{
		EmployeeID: body.EmployeeID,
		Date:       body.Date,
		EntryTitle: body.EntryTitle,
		EndTime:    body.EndTime,
	})
	if err != nil {
		writeError(resp, err)
		return
	}

	_ = resp.WriteEntity(toTimelineView(updated))
}

func (r *TimelineResource) listAll(req *restful.Request, resp *restful.Response) {
	timelines, err := r.svc.ListTimelines(req.Request.Context())
	if err != nil {
		writeError(resp, err)
		return
	}

	_ = resp.WriteEntity(toTimelineListResponse(timelines))
}

func (r *TimelineResource) listByDate(req *restful.Request, resp *restful.Response) {
	timelines, err := r.svc.ListTimelinesByDate(req.Request.Context(), req.PathParameter("date"))
	if err != nil {
		writeError(resp, err)
		return
	}

	_ = resp.WriteEntity(toTimelineListResponse(timelines))
}

func (r *TimelineResource) listByEmployee(req *restful.Request, resp *restful.Response) {
	timelines, err := r.svc.ListTimelinesByEmployee(req.Request.Context(), req.PathParameter("employeeId"))
	if err != nil {
		writeError(resp, err)
		return
	}

	_ = resp.WriteEntity(toTimelineListResponse(timelines))
}

func (r *TimelineResource) get(req *restful.Request, resp *restful.Response) {
	found, err := r.svc.GetTimeline(req.Request.Context(), req.PathParameter("employeeId"), req.PathParameter("date"))
	if err != nil {
		writeError(resp, err)
		return
	}

	_ = resp.WriteEntity(toTimelineView(found))
}
