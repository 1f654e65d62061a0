package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/fieldservice/internal/core/timeline"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func TestScanTimeline_DecodesEntries(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	entries, err := marshalEntries([]timeline.Entry{
		{Lat: 25.3, Lng: 51.5, Title: "Site visit", StartTime: &start},
		{Title: "Lunch"},
	})
	if err != nil {
		t.Fatalf("marshalEntries returned error: %v", err)
	}

	createdAt := time.Now().UTC()

	row := stubRow{scanFn: func(dest ...interface{}) error {
		*(dest[0].(*string)) = "tl-1"
		*(dest[1].(*string)) = "emp-1"
		*(dest[2].(*string)) = "Alice"
		*(dest[3].(*string)) = "2025-04-01"
		*(dest[4].(*float64)) = timeline.DefaultOffice.Lat
		*(dest[5].(*float64)) = timeline.DefaultOffice.Lng
		*(dest[6].(*string)) = timeline.DefaultOffice.Title
		*(dest[7].(*[]byte)) = entries
		*(dest[8].(*time.Time)) = createdAt
		*(dest[9].(*time.Time)) = createdAt
		return nil
	}}

	tl, err := scanTimeline(row)
	if err != nil {
		t.Fatalf("scanTimeline returned error: %v", err)
	}

	if tl.ID != "tl-1" || tl.Date != "2025-04-01" {
		t.Fatalf("unexpected timeline %+v", tl)
	}
	if len(tl.Entries) != 2 {
		t.Fatalf("expected two entries, got %d", len(tl.Entries))
	}
	if tl.Entries[0].Title != "Site visit" || tl.Entries[0].StartTime == nil || !tl.Entries[0].StartTime.Equal(start) {
		t.Fatalf("unexpected first entry %+v", tl.Entries[0])
	}
	if tl.Entries[1].StartTime != nil || tl.Entries[1].EndTime != nil {
		t.Fatalf("expected open second entry, got %+v", tl.Entries[1])
	}
}

func TestTimelineRepository_FindByEmployeeAndDate_NotFound(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewTimelineRepository(mock)

	mock.ExpectQuery("SELECT").WithArgs("emp-1", "2025-04-01").WillReturnError(pgx.ErrNoRows)

	if _, err := repo.FindByEmployeeAndDate(context.Background(), "emp-1", "2025-04-01"); !errors.Is(err, timeline.ErrTimelineNotFound) {
		t.Fatalf("expected ErrTimelineNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTranslateTimelinePgError_UniqueViolation(t *testing.T) {
	t.Parallel()

	pgErr := &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "timelines_employee_date_key"}
	if !errors.Is(translateTimelinePgError(pgErr), timeline.ErrInvalidEntry) {
		t.Fatalf("expected unique violation mapping")
	}

	other := errors.New("random")
	if translateTimelinePgError(other) != other {
		t.Fatalf("unexpected translation for generic error")
	}
}
