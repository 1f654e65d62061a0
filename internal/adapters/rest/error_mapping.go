package rest

import (
	"errors"
	"net/http"
	"time"

	"github.com/emicklei/go-restful/v3"
	"github.com/ogurasousui/fieldservice/internal/core/asset"
	"github.com/ogurasousui/fieldservice/internal/core/customer"
	"github.com/ogurasousui/fieldservice/internal/core/order"
	"github.com/ogurasousui/fieldservice/internal/core/project"
	"github.com/ogurasousui/fieldservice/internal/core/task"
	"github.com/ogurasousui/fieldservice/internal/core/timeline"
	"github.com/ogurasousui/fieldservice/internal/core/user"
)

// errorBody は REST エラーレスポンスの共通形式です。スケジュール衝突の場合のみ
// Conflict に衝突相手タスクの要約が入ります。
type errorBody struct {
	Error    string           `json:"error"`
	Conflict *conflictSummary `json:"conflict,omitempty"`
}

type conflictSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

var validationErrors = []error{
	task.ErrInvalidID,
	task.ErrInvalidTitle,
	task.ErrMissingWorker,
	task.ErrMissingSchedule,
	task.ErrInvalidWindow,
	task.ErrInvalidStatus,
	task.ErrInvalidPriority,
	task.ErrInvalidPercentage,
	task.ErrInvalidPageSize,
	task.ErrInvalidPageToken,
	order.ErrInvalidID,
	order.ErrInvalidTitle,
	order.ErrInvalidCustomer,
	order.ErrInvalidUser,
	order.ErrInvalidProject,
	order.ErrInvalidAmount,
	order.ErrInvalidStatus,
	order.ErrInvalidPageSize,
	order.ErrInvalidPageToken,
	user.ErrInvalidID,
	user.ErrInvalidName,
	user.ErrInvalidEmail,
	user.ErrInvalidRole,
	user.ErrInvalidStatus,
	user.ErrInvalidPageSize,
	user.ErrInvalidPageToken,
	customer.ErrInvalidID,
	customer.ErrInvalidName,
	customer.ErrInvalidEmail,
	customer.ErrInvalidPageSize,
	customer.ErrInvalidPageToken,
	project.ErrInvalidID,
	project.ErrInvalidTitle,
	project.ErrInvalidCustomer,
	project.ErrInvalidEmployee,
	project.ErrInvalidStatus,
	project.ErrInvalidDateRange,
	project.ErrInvalidPageSize,
	project.ErrInvalidPageToken,
	asset.ErrInvalidID,
	asset.ErrInvalidTitle,
	asset.ErrInvalidOrder,
	asset.ErrInvalidProject,
	asset.ErrInvalidCustomer,
	asset.ErrInvalidStatus,
	asset.ErrInvalidPageSize,
	asset.ErrInvalidPageToken,
	timeline.ErrInvalidEmployee,
	timeline.ErrInvalidDate,
	timeline.ErrInvalidEntry,
}

var notFoundErrors = []error{
	task.ErrTaskNotFound,
	order.ErrOrderNotFound,
	user.ErrUserNotFound,
	customer.ErrCustomerNotFound,
	project.ErrProjectNotFound,
	asset.ErrAssetNotFound,
	timeline.ErrTimelineNotFound,
	timeline.ErrEntryNotFound,
}

var conflictErrors = []error{
	task.ErrScheduleConflict,
	order.ErrOrderNumberTaken,
	user.ErrEmailAlreadyExists,
	user.ErrEmployeeCodeTaken,
	customer.ErrEmailAlreadyExists,
	asset.ErrSerialNumberTaken,
	asset.ErrBarcodeTaken,
}

// writeError はドメインエラーを HTTP ステータスに対応付けて書き込みます。
func writeError(resp *restful.Response, err error) {
	var conflictErr *task.ConflictError
	if errors.As(err, &conflictErr) {
		_ = resp.WriteHeaderAndEntity(http.StatusConflict, errorBody{
			Error: conflictErr.Error(),
			Conflict: &conflictSummary{
				ID:        conflictErr.Task.ID,
				Title:     conflictErr.Task.Title,
				StartTime: conflictErr.Task.StartTime,
				EndTime:   conflictErr.Task.EndTime,
			},
		})
		return
	}

	_ = resp.WriteHeaderAndEntity(statusOf(err), errorBody{Error: err.Error()})
}

func statusOf(err error) int {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return http.StatusNotFound
		}
	}
	for _, target := range conflictErrors {
		if errors.Is(err, target) {
			return http.StatusConflict
		}
	}
	return http.StatusInternalServerError
}

// writeBadRequest はリクエストボディの読み取り失敗などに使用します。
func writeBadRequest(resp *restful.Response, err error) {
	_ = resp.WriteHeaderAndEntity(http.StatusBadRequest, errorBody{Error: err.Error()})
}
