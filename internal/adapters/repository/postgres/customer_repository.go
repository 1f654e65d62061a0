package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/fieldservice/internal/core/customer"
	pgdb "github.com/ogurasousui/fieldservice/internal/platform/db/postgres"
)

const customerColumns = `id, name, address, phone, fax, email, latitude, longitude, is_active, created_at, updated_at`

// CustomerRepository は PostgreSQL を利用した顧客永続化の実装です。
type CustomerRepository struct {
	pool pgdb.Queryer
}

// NewCustomerRepository は CustomerRepository を生成します。
func NewCustomerRepository(pool pgdb.Queryer) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

// Create は顧客を新規作成します。
func (r *CustomerRepository) Create(ctx context.Context, c *customer.Customer) (*customer.Customer, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO customers (name, address, phone, fax, email, latitude, longitude, is_active, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING `+customerColumns+`
    `,
		c.Name,
		c.Address,
		c.Phone,
		c.Fax,
		c.Email,
		c.Latitude,
		c.Longitude,
		c.IsActive,
		c.CreatedAt,
		c.UpdatedAt,
	)

	created, err := scanCustomer(row)
	if err != nil {
		return nil, translateCustomerPgError(err)
	}
	return created, nil
}

// Update は顧客情報を更新します。
func (r *CustomerRepository) Update(ctx context.Context, c *customer.Customer) (*customer.Customer, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE customers
           SET name = $1,
               address = $2,
               phone = $3,
               fax = $4,
               email = $5,
               latitude = $6,
               longitude = $7,
               is_active = $8,
               updated_at = $9
         WHERE id = $10
        RETURNING `+customerColumns+`
    `,
		c.Name,
		c.Address,
		c.Phone,
		c.Fax,
		c.Email,
		c.Latitude,
		c.Longitude,
		c.IsActive,
		c.UpdatedAt,
		c.ID,
	)

	updated, err := scanCustomer(row)
	if err != nil {
		return nil, translateCustomerPgError(err)
	}
	return updated, nil
}

// Delete は顧客を削除します。
func (r *CustomerRepository) Delete(ctx context.Context, id string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return translateCustomerPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return customer.ErrCustomerNotFound
	}
	return nil
}

// FindByID は ID で顧客を取得します。
func (r *CustomerRepository) FindByID(ctx context.Context, id string) (*customer.Customer, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+customerColumns+`
          FROM customers
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanCustomer(row)
	if err != nil {
		return nil, translateCustomerPgError(err)
	}
	return found, nil
}

// FindByEmail はメールアドレスで顧客を取得します。
func (r *CustomerRepository) FindByEmail(ctx context.Context, email string) (*customer.Customer, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+customerColumns+`
          FROM customers
         WHERE email = $1
         LIMIT 1
    `, email)

	found, err := scanCustomer(row)
	if err != nil {
		return nil, translateCustomerPgError(err)
	}
	return found, nil
}

// List は顧客の一覧を取得します。
func (r *CustomerRepository) List(ctx context.Context, filter customer.ListCustomersFilter) ([]*customer.Customer, string, error) {
	if filter.Limit <= 0 {
		return nil, "", customer.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", customer.ErrInvalidPageToken
	}

	limitWithBuffer := filter.Limit + 1

	args := make([]any, 0, 4)
	conditions := make([]string, 0, 2)

	if filter.IsActive != nil {
		placeholder := "$" + strconv.Itoa(len(args)+1)
		conditions = append(conditions, "is_active = "+placeholder)
		args = append(args, *filter.IsActive)
	}
	if filter.Search != "" {
		placeholder := "$" + strconv.Itoa(len(args)+1)
		conditions = append(conditions, "(name ILIKE "+placeholder+" OR email ILIKE "+placeholder+")")
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
        SELECT ` + customerColumns + `
          FROM customers` + whereClause + `
         ORDER BY created_at DESC, id DESC
         LIMIT ` + limitPlaceholder + `
        OFFSET ` + offsetPlaceholder + `
    `

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, "", translateCustomerPgError(err)
	}
	defer rows.Close()

	customers := make([]*customer.Customer, 0, filter.Limit)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, "", translateCustomerPgError(err)
		}
		customers = append(customers, c)
	}

	if err := rows.Err(); err != nil {
		return nil, "", translateCustomerPgError(err)
	}

	var nextToken string
	if len(customers) == limitWithBuffer {
		customers = customers[:filter.Limit]
		nextToken = strconv.Itoa(filter.Offset + filter.Limit)
	}

	return customers, nextToken, nil
}

func scanCustomer(row pgx.Row) (*customer.Customer, error) {
	var (
		c         customer.Customer
		latitude  sql.NullFloat64
		longitude sql.NullFloat64
	)

	if err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Address,
		&c.Phone,
		&c.Fax,
		&c.Email,
		&latitude,
		&longitude,
		&c.IsActive,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, customer.ErrCustomerNotFound
		}
		return nil, err
	}

	if latitude.Valid {
		value := latitude.Float64
		c.Latitude = &value
	}
	if longitude.Valid {
		value := longitude.Float64
		c.Longitude = &value
	}

	return &c, nil
}

func translateCustomerPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return customer.ErrCustomerNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == uniqueViolationCode {
			return customer.ErrEmailAlreadyExists
		}
	}

	return err
}
