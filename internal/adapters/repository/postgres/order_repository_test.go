package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/fieldservice/internal/core/order"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func TestOrderRepository_LatestOrderNumber(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewOrderRepository(mock)

	query := regexp.QuoteMeta(`
        SELECT order_number
          FROM orders
         ORDER BY created_at DESC, id DESC
         LIMIT 1
    `)

	rows := pgxmock.NewRows([]string{"order_number"}).AddRow("ORD-041")
	mock.ExpectQuery(query).WillReturnRows(rows)

	number, err := repo.LatestOrderNumber(context.Background())
	if err != nil {
		t.Fatalf("LatestOrderNumber returned error: %v", err)
	}
	if number != "ORD-041" {
		t.Fatalf("expected ORD-041, got %s", number)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestOrderRepository_LatestOrderNumber_Empty(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewOrderRepository(mock)

	mock.ExpectQuery("SELECT order_number").WillReturnError(pgx.ErrNoRows)

	// 注文が 1 件もない場合はエラーではなく空文字列。
	number, err := repo.LatestOrderNumber(context.Background())
	if err != nil {
		t.Fatalf("LatestOrderNumber returned error: %v", err)
	}
	if number != "" {
		t.Fatalf("expected empty number, got %s", number)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestOrderRepository_LockSequence(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewOrderRepository(mock)

	mock.ExpectExec(regexp.QuoteMeta(`SELECT pg_advisory_xact_lock(hashtext($1))`)).
		WithArgs(orderSequenceLockKey).
		WillReturnResult(pgxmock.NewResult("SELECT", 1))

	if err := repo.LockSequence(context.Background()); err != nil {
		t.Fatalf("LockSequence returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestOrderRepository_Delete_NotFound(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewOrderRepository(mock)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM orders WHERE id = $1`)).
		WithArgs("missing").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	if err := repo.Delete(context.Background(), "missing"); !errors.Is(err, order.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTranslateOrderPgError(t *testing.T) {
	t.Parallel()

	if !errors.Is(translateOrderPgError(pgx.ErrNoRows), order.ErrOrderNotFound) {
		t.Fatalf("expected not found mapping")
	}

	pgErr := &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "orders_order_number_key"}
	if !errors.Is(translateOrderPgError(pgErr), order.ErrOrderNumberTaken) {
		t.Fatalf("expected order number taken mapping")
	}

	otherConstraint := &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "orders_pkey"}
	if errors.Is(translateOrderPgError(otherConstraint), order.ErrOrderNumberTaken) {
		t.Fatalf("unexpected mapping for unrelated constraint")
	}
}
