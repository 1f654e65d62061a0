package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/fieldservice/internal/core/timeline"
	pgdb "github.com/ogurasousui/fieldservice/internal/platform/db/postgres"
)

const timelineColumns = `id, employee_id, employee_name, date, office_lat, office_lng, office_title, entries, created_at, updated_at`

// TimelineRepository は PostgreSQL を利用したタイムライン永続化の実装です。
// 作業記録の配列は JSONB カラムに格納します。
type TimelineRepository struct {
	pool pgdb.Queryer
}

// NewTimelineRepository は TimelineRepository を生成します。
func NewTimelineRepository(pool pgdb.Queryer) *TimelineRepository {
	return &TimelineRepository{pool: pool}
}

type timelineEntryRecord struct {
	Lat       float64    `json:"lat"`
	Lng       float64    `json:"lng"`
	Title     string     `json:"title"`
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
}

// Create はタイムラインを新規作成します。従業員と日付の組は一意です。
func (r *TimelineRepository) Create(ctx context.Context, t *timeline.Timeline) (*timeline.Timeline, error) {
	entries, err := marshalEntries(t.Entries)
	if err != nil {
		return nil, err
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO timelines (employee_id, employee_name, date, office_lat, office_lng, office_title, entries, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING `+timelineColumns+`
    `,
		t.EmployeeID,
		t.EmployeeName,
		t.Date,
		t.Office.Lat,
		t.Office.Lng,
		t.Office.Title,
		entries,
		t.CreatedAt,
		t.UpdatedAt,
	)

	created, err := scanTimeline(row)
	if err != nil {
		return nil, translateTimelinePgError(err)
	}
	return created, nil
}

// Update はタイムラインを更新します。
func (r *TimelineRepository) Update(ctx context.Context, t *timeline.Timeline) (*timeline.Timeline, error) {
	entries, err := marshalEntries(t.Entries)
	if err != nil {
		return nil, err
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE timelines
           SET employee_name = $1,
               entries = $2,
               updated_at = $3
         WHERE id = $4
        RETURNING `+timelineColumns+`
    `,
		t.EmployeeName,
		entries,
		t.UpdatedAt,
		t.ID,
	)

	updated, err := scanTimeline(row)
	if err != nil {
		return nil, translateTimelinePgError(err)
	}
	return updated, nil
}

// FindByEmployeeAndDate は従業員と日付の組でタイムラインを取得します。
func (r *TimelineRepository) FindByEmployeeAndDate(ctx context.Context, employeeID, date string) (*timeline.Timeline, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+timelineColumns+`
          FROM timelines
         WHERE employee_id = $1 AND date = $2
         LIMIT 1
    `, employeeID, date)

	found, err := scanTimeline(row)
	if err != nil {
		return nil, translateTimelinePgError(err)
	}
	return found, nil
}

// ListAll は全タイムラインを作成日時の新しい順に返します。
func (r *TimelineRepository) ListAll(ctx context.Context) ([]*timeline.Timeline, error) {
	return r.list(ctx, `
        SELECT `+timelineColumns+`
          FROM timelines
         ORDER BY created_at DESC, id DESC
    `)
}

// ListByDate は指定日のタイムラインを作成日時の新しい順に返します。
func (r *TimelineRepository) ListByDate(ctx context.Context, date string) ([]*timeline.Timeline, error) {
	return r.list(ctx, `
        SELECT `+timelineColumns+`
          FROM timelines
         WHERE date = $1
         ORDER BY created_at DESC, id DESC
    `, date)
}

// ListByEmployee は従業員のタイムラインを日付の新しい順に返します。
func (r *TimelineRepository) ListByEmployee(ctx context.Context, employeeID string) ([]*timeline.Timeline, error) {
	return r.list(ctx, `
        SELECT `+timelineColumns+`
          FROM timelines
         WHERE employee_id = $1
         ORDER BY date DESC, id DESC
    `, employeeID)
}

func (r *TimelineRepository) list(ctx context.Context, query string, args ...any) ([]*timeline.Timeline, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, translateTimelinePgError(err)
	}
	defer rows.Close()

	var timelines []*timeline.Timeline
	for rows.Next() {
		t, err := scanTimeline(rows)
		if err != nil {
			return nil, translateTimelinePgError(err)
		}
		timelines = append(timelines, t)
	}

	if err := rows.Err(); err != nil {
		return nil, translateTimelinePgError(err)
	}

	return timelines, nil
}

func marshalEntries(entries []timeline.Entry) ([]byte, error) {
	records := make([]timelineEntryRecord, 0, len(entries))
	for _, e := range entries {
		records = append(records, timelineEntryRecord{
			Lat:       e.Lat,
			Lng:       e.Lng,
			Title:     e.Title,
			StartTime: e.StartTime,
			EndTime:   e.EndTime,
		})
	}
	return json.Marshal(records)
}

func scanTimeline(row pgx.Row) (*timeline.Timeline, error) {
	var (
		t       timeline.Timeline
		entries []byte
	)

	if err := row.Scan(
		&t.ID,
		&t.EmployeeID,
		&t.EmployeeName,
		&t.Date,
		&t.Office.Lat,
		&t.Office.Lng,
		&t.Office.Title,
		&entries,
		&t.CreatedAt,
		&t.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, timeline.ErrTimelineNotFound
		}
		return nil, err
	}

	var records []timelineEntryRecord
	if err := json.Unmarshal(entries, &records); err != nil {
		return nil, err
	}
	t.Entries = make([]timeline.Entry, 0, len(records))
	for _, rec := range records {
		t.Entries = append(t.Entries, timeline.Entry{
			Lat:       rec.Lat,
			Lng:       rec.Lng,
			Title:     rec.Title,
			StartTime: rec.StartTime,
			EndTime:   rec.EndTime,
		})
	}

	return &t, nil
}

func translateTimelinePgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return timeline.ErrTimelineNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == uniqueViolationCode {
			// 従業員と日付の組はサービス層で追記に分岐するため、ここに到達
			// するのは同時作成が競合した場合のみ。
			return timeline.ErrInvalidEntry
		}
	}

	return err
}
