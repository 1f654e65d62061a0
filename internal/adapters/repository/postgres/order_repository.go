package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/fieldservice/internal/core/order"
	pgdb "github.com/ogurasousui/fieldservice/internal/platform/db/postgres"
)

const orderColumns = `id, customer_id, customer_name, user_id, user_name, project_id, project_name,
               title, order_number, erp_number, amount, order_date, delivery_date,
               file_upload, public_link, status, notes, created_at, updated_at, created_user, modified_user`

// 注文番号の採番を直列化するためのロックキー。
const orderSequenceLockKey = "sequence:order_number"

// OrderRepository は PostgreSQL を利用した注文永続化の実装です。
type OrderRepository struct {
	pool pgdb.Queryer
}

// NewOrderRepository は OrderRepository を生成します。
func NewOrderRepository(pool pgdb.Queryer) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create は注文を新規作成します。
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) (*order.Order, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO orders (customer_id, customer_name, user_id, user_name, project_id, project_name,
                            title, order_number, erp_number, amount, order_date, delivery_date,
                            file_upload, public_link, status, notes, created_at, updated_at, created_user, modified_user)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
        RETURNING `+orderColumns+`
    `,
		o.Customer.ID,
		o.Customer.Name,
		o.User.ID,
		o.User.Name,
		o.Project.ID,
		o.Project.Name,
		o.Title,
		o.OrderNumber,
		o.ErpNumber,
		o.Amount,
		o.OrderDate,
		nullableTime(o.DeliveryDate),
		o.FileUpload,
		o.PublicLink,
		string(o.Status),
		o.Notes,
		o.CreatedAt,
		o.UpdatedAt,
		o.CreatedUser,
		o.ModifiedUser,
	)

	created, err := scanOrder(row)
	if err != nil {
		return nil, translateOrderPgError(err)
	}
	return created, nil
}

// Update は注文を更新します。order_number は更新対象に含めません。
func (r *OrderRepository) Update(ctx context.Context, o *order.Order) (*order.Order, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE orders
           SET customer_id = $1,
               customer_name = $2,
               user_id = $3,
               user_name = $4,
               project_id = $5,
               project_name = $6,
               title = $7,
               erp_number = $8,
               amount = $9,
               order_date = $10,
               delivery_date = $11,
               file_upload = $12,
               public_link = $13,
               status = $14,
               notes = $15,
               updated_at = $16,
               modified_user = $17
         WHERE id = $18
        RETURNING `+orderColumns+`
    `,
		o.Customer.ID,
		o.Customer.Name,
		o.User.ID,
		o.User.Name,
		o.Project.ID,
		o.Project.Name,
		o.Title,
		o.ErpNumber,
		o.Amount,
		o.OrderDate,
		nullableTime(o.DeliveryDate),
		o.FileUpload,
		o.PublicLink,
		string(o.Status),
		o.Notes,
		o.UpdatedAt,
		o.ModifiedUser,
		o.ID,
	)

	updated, err := scanOrder(row)
	if err != nil {
		return nil, translateOrderPgError(err)
	}
	return updated, nil
}

// Delete は注文を削除します。
func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return translateOrderPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrOrderNotFound
	}
	return nil
}

// FindByID は ID で注文を取得します。
func (r *OrderRepository) FindByID(ctx context.Context, id string) (*order.Order, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+orderColumns+`
          FROM orders
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanOrder(row)
	if err != nil {
		return nil, translateOrderPgError(err)
	}
	return found, nil
}

// LatestOrderNumber は作成日時が最新の注文の番号を返します。注文が 1 件もない
// 場合は空文字列を返します。
func (r *OrderRepository) LatestOrderNumber(ctx context.Context) (string, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT order_number
          FROM orders
         ORDER BY created_at DESC, id DESC
         LIMIT 1
    `)

	var number string
	if err := row.Scan(&number); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", translateOrderPgError(err)
	}
	return number, nil
}

// List は注文の一覧を取得します。
func (r *OrderRepository) List(ctx context.Context, filter order.ListOrdersFilter) ([]*order.Order, string, error) {
	if filter.Limit <= 0 {
		return nil, "", order.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", order.ErrInvalidPageToken
	}

	limitWithBuffer := filter.Limit + 1

	args := make([]any, 0, 4)
	conditions := make([]string, 0, 2)

	if filter.Status != nil {
		placeholder := "$" + strconv.Itoa(len(args)+1)
		conditions = append(conditions, "status = "+placeholder)
		args = append(args, string(*filter.Status))
	}
	if filter.Search != "" {
		placeholder := "$" + strconv.Itoa(len(args)+1)
		conditions = append(conditions, "(order_number ILIKE "+placeholder+" OR erp_number ILIKE "+placeholder+")")
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
        SELECT ` + orderColumns + `
          FROM orders` + whereClause + `
         ORDER BY created_at DESC, id DESC
         LIMIT ` + limitPlaceholder + `
        OFFSET ` + offsetPlaceholder + `
    `

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, "", translateOrderPgError(err)
	}
	defer rows.Close()

	orders := make([]*order.Order, 0, filter.Limit)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, "", translateOrderPgError(err)
		}
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, "", translateOrderPgError(err)
	}

	var nextToken string
	if len(orders) == limitWithBuffer {
		orders = orders[:filter.Limit]
		nextToken = strconv.Itoa(filter.Offset + filter.Limit)
	}

	return orders, nextToken, nil
}

// ListByProject はプロジェクトに紐づく注文を新しい順に返します。
func (r *OrderRepository) ListByProject(ctx context.Context, projectID string) ([]*order.Order, error) {
	return r.listBy(ctx, "project_id", projectID)
}

// ListByCustomer は顧客に紐づく注文を新しい順に返します。
func (r *OrderRepository) ListByCustomer(ctx context.Context, customerID string) ([]*order.Order, error) {
	return r.listBy(ctx, "customer_id", customerID)
}

func (r *OrderRepository) listBy(ctx context.Context, column, value string) ([]*order.Order, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT `+orderColumns+`
          FROM orders
         WHERE `+column+` = $1
         ORDER BY created_at DESC, id DESC
    `, value)
	if err != nil {
		return nil, translateOrderPgError(err)
	}
	defer rows.Close()

	var orders []*order.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, translateOrderPgError(err)
		}
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, translateOrderPgError(err)
	}

	return orders, nil
}

// LockSequence は注文番号の採番を直列化するアドバイザリロックを取得します。
func (r *OrderRepository) LockSequence(ctx context.Context) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	return pgdb.AcquireXactLock(ctx, exec, orderSequenceLockKey)
}

func scanOrder(row pgx.Row) (*order.Order, error) {
	var (
		o            order.Order
		deliveryDate sql.NullTime
		status       string
	)

	if err := row.Scan(
		&o.ID,
		&o.Customer.ID,
		&o.Customer.Name,
		&o.User.ID,
		&o.User.Name,
		&o.Project.ID,
		&o.Project.Name,
		&o.Title,
		&o.OrderNumber,
		&o.ErpNumber,
		&o.Amount,
		&o.OrderDate,
		&deliveryDate,
		&o.FileUpload,
		&o.PublicLink,
		&status,
		&o.Notes,
		&o.CreatedAt,
		&o.UpdatedAt,
		&o.CreatedUser,
		&o.ModifiedUser,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrOrderNotFound
		}
		return nil, err
	}

	if deliveryDate.Valid {
		value := deliveryDate.Time.UTC()
		o.DeliveryDate = &value
	}
	o.Status = order.Status(status)

	return &o, nil
}

func translateOrderPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return order.ErrOrderNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == uniqueViolationCode && pgErr.ConstraintName == "orders_order_number_key" {
			return order.ErrOrderNumberTaken
		}
	}

	return err
}
