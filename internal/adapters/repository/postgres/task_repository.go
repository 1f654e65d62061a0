package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/fieldservice/internal/core/task"
	pgdb "github.com/ogurasousui/fieldservice/internal/platform/db/postgres"
)

const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
	checkViolationCode      = "23514"
)

const taskColumns = `id, worker_id, worker_name, asset_id, order_id, project_id, customer_id,
               title, description, plan_duration, start_time, end_time,
               actual_start_time, actual_end_time, file_upload, priority, status,
               completed, percentage_complete, created_at, updated_at, created_user, modified_user`

// TaskRepository は PostgreSQL を利用したタスク永続化の実装です。
type TaskRepository struct {
	pool pgdb.Queryer
}

// NewTaskRepository は TaskRepository を生成します。
func NewTaskRepository(pool pgdb.Queryer) *TaskRepository {
	return &TaskRepository{pool: pool}
}

// Create はタスクを新規作成します。
func (r *TaskRepository) Create(ctx context.Context, t *task.Task) (*task.Task, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO tasks (worker_id, worker_name, asset_id, order_id, project_id, customer_id,
                           title, description, plan_duration, start_time, end_time,
                           actual_start_time, actual_end_time, file_upload, priority, status,
                           completed, percentage_complete, created_at, updated_at, created_user, modified_user)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
        RETURNING `+taskColumns+`
    `,
		t.Worker.ID,
		t.Worker.Name,
		t.AssetID,
		t.OrderID,
		t.ProjectID,
		t.CustomerID,
		t.Title,
		t.Description,
		t.PlanDuration,
		t.StartTime,
		t.EndTime,
		nullableTime(t.ActualStartTime),
		nullableTime(t.ActualEndTime),
		t.FileUpload,
		string(t.Priority),
		string(t.Status),
		t.Completed,
		t.PercentageComplete,
		t.CreatedAt,
		t.UpdatedAt,
		t.CreatedUser,
		t.ModifiedUser,
	)

	created, err := scanTask(row)
	if err != nil {
		return nil, translateTaskPgError(err)
	}
	return created, nil
}

// Update はタスクを更新します。
func (r *TaskRepository) Update(ctx context.Context, t *task.Task) (*task.Task, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE tasks
           SET worker_id = $1,
               worker_name = $2,
               asset_id = $3,
               order_id = $4,
               project_id = $5,
               customer_id = $6,
               title = $7,
               description = $8,
               plan_duration = $9,
               start_time = $10,
               end_time = $11,
               actual_start_time = $12,
               actual_end_time = $13,
               file_upload = $14,
               priority = $15,
               status = $16,
               completed = $17,
               percentage_complete = $18,
               updated_at = $19,
               modified_user = $20
         WHERE id = $21
        RETURNING `+taskColumns+`
    `,
		t.Worker.ID,
		t.Worker.Name,
		t.AssetID,
		t.OrderID,
		t.ProjectID,
		t.CustomerID,
		t.Title,
		t.Description,
		t.PlanDuration,
		t.StartTime,
		t.EndTime,
		nullableTime(t.ActualStartTime),
		nullableTime(t.ActualEndTime),
		t.FileUpload,
		string(t.Priority),
		string(t.Status),
		t.Completed,
		t.PercentageComplete,
		t.UpdatedAt,
		t.ModifiedUser,
		t.ID,
	)

	updated, err := scanTask(row)
	if err != nil {
		return nil, translateTaskPgError(err)
	}
	return updated, nil
}

// Delete はタスクを削除します。
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return translateTaskPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return task.ErrTaskNotFound
	}
	return nil
}

// FindByID は ID でタスクを取得します。
func (r *TaskRepository) FindByID(ctx context.Context, id string) (*task.Task, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+taskColumns+`
          FROM tasks
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanTask(row)
	if err != nil {
		return nil, translateTaskPgError(err)
	}
	return found, nil
}

// FindOverlapping は作業員の既存タスクのうち [start, end) と重なる最初の 1 件を
// 返します。半開区間同士の重なり判定のため、端点が一致するだけのタスクは
// 衝突になりません。excludeID が空のときは除外条件なし (NULL) として扱います。
// id 列は uuid 型なので空文字列をそのままバインドできません。
func (r *TaskRepository) FindOverlapping(ctx context.Context, workerID string, start, end time.Time, excludeID string) (*task.Task, error) {
	var exclude *string
	if excludeID != "" {
		exclude = &excludeID
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+taskColumns+`
          FROM tasks
         WHERE worker_id = $1
           AND ($2::uuid IS NULL OR id <> $2::uuid)
           AND start_time < $3
           AND end_time > $4
         ORDER BY start_time, id
         LIMIT 1
    `, workerID, exclude, end, start)

	found, err := scanTask(row)
	if err != nil {
		return nil, translateTaskPgError(err)
	}
	return found, nil
}

// List はタスクの一覧を取得します。
func (r *TaskRepository) List(ctx context.Context, filter task.ListTasksFilter) ([]*task.Task, string, error) {
	if filter.Limit <= 0 {
		return nil, "", task.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", task.ErrInvalidPageToken
	}

	limitWithBuffer := filter.Limit + 1

	args := make([]any, 0, 5)
	conditions := make([]string, 0, 3)

	if filter.Status != nil {
		placeholder := "$" + strconv.Itoa(len(args)+1)
		conditions = append(conditions, "status = "+placeholder)
		args = append(args, string(*filter.Status))
	}
	if filter.Priority != nil {
		placeholder := "$" + strconv.Itoa(len(args)+1)
		conditions = append(conditions, "priority = "+placeholder)
		args = append(args, string(*filter.Priority))
	}
	if filter.Search != "" {
		placeholder := "$" + strconv.Itoa(len(args)+1)
		conditions = append(conditions, "(title ILIKE "+placeholder+" OR worker_name ILIKE "+placeholder+")")
		args = append(args, "%"+filter.Search+"%")
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	limitPlaceholder := "$" + strconv.Itoa(len(args)+1)
	args = append(args, limitWithBuffer)
	offsetPlaceholder := "$" + strconv.Itoa(len(args)+1)
	args = append(args, filter.Offset)

	query := `
        SELECT ` + taskColumns + `
          FROM tasks` + whereClause + `
         ORDER BY created_at DESC, id DESC
         LIMIT ` + limitPlaceholder + `
        OFFSET ` + offsetPlaceholder + `
    `

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, "", translateTaskPgError(err)
	}
	defer rows.Close()

	tasks := make([]*task.Task, 0, filter.Limit)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, "", translateTaskPgError(err)
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, "", translateTaskPgError(err)
	}

	var nextToken string
	if len(tasks) == limitWithBuffer {
		tasks = tasks[:filter.Limit]
		nextToken = strconv.Itoa(filter.Offset + filter.Limit)
	}

	return tasks, nextToken, nil
}

// LockWorker は作業員単位のアドバイザリロックを取得します。ロックはトランザク
// ション終了時に解放されます。
func (r *TaskRepository) LockWorker(ctx context.Context, workerID string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	return pgdb.AcquireXactLock(ctx, exec, "task-worker:"+workerID)
}

func scanTask(row pgx.Row) (*task.Task, error) {
	var (
		t               task.Task
		actualStartTime sql.NullTime
		actualEndTime   sql.NullTime
		priority        string
		status          string
	)

	if err := row.Scan(
		&t.ID,
		&t.Worker.ID,
		&t.Worker.Name,
		&t.AssetID,
		&t.OrderID,
		&t.ProjectID,
		&t.CustomerID,
		&t.Title,
		&t.Description,
		&t.PlanDuration,
		&t.StartTime,
		&t.EndTime,
		&actualStartTime,
		&actualEndTime,
		&t.FileUpload,
		&priority,
		&status,
		&t.Completed,
		&t.PercentageComplete,
		&t.CreatedAt,
		&t.UpdatedAt,
		&t.CreatedUser,
		&t.ModifiedUser,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, task.ErrTaskNotFound
		}
		return nil, err
	}

	if actualStartTime.Valid {
		value := actualStartTime.Time.UTC()
		t.ActualStartTime = &value
	}
	if actualEndTime.Valid {
		value := actualEndTime.Time.UTC()
		t.ActualEndTime = &value
	}
	t.Priority = task.Priority(priority)
	t.Status = task.Status(status)

	return &t, nil
}

func translateTaskPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return task.ErrTaskNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case checkViolationCode:
			return task.ErrInvalidWindow
		}
	}

	return err
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC()
}
