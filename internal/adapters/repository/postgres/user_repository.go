package postgres

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/fieldservice/internal/core/user"
	pgdb "github.com/ogurasousui/fieldservice/internal/platform/db/postgres"
)

const userColumns = `id, name, email, designation, role, code, phone, status, is_active,
               asset_id, order_id, project_id, customer_id, created_at, updated_at`

// 社員コードの採番を直列化するためのロックキー。
const userSequenceLockKey = "sequence:employee_code"

// UserRepository は PostgreSQL を利用した従業員永続化の実装です。
type UserRepository struct {
	pool pgdb.Queryer
}

// NewUserRepository は UserRepository を生成します。
func NewUserRepository(pool pgdb.Queryer) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create は従業員を新規作成します。
func (r *UserRepository) Create(ctx context.Context, u *user.User) (*user.User, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO users (name, email, designation, role, code, phone, status, is_active,
                           asset_id, order_id, project_id, customer_id, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
        RETURNING `+userColumns+`
    `,
		u.Name,
		u.Email,
		u.Designation,
		string(u.Role),
		u.Code,
		u.Phone,
		string(u.Status),
		u.IsActive,
		u.AssetID,
		u.OrderID,
		u.ProjectID,
		u.CustomerID,
		u.CreatedAt,
		u.UpdatedAt,
	)

	created, err := scanUser(row)
	if err != nil {
		return nil, translateUserPgError(err)
	}
	return created, nil
}

// Update は従業員情報を更新します。
func (r *UserRepository) Update(ctx context.Context, u *user.User) (*user.User, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE users
           SET name = $1,
               email = $2,
               designation = $3,
               role = $4,
               code = $5,
               phone = $6,
               status = $7,
               is_active = $8,
               asset_id = $9,
               order_id = $10,
               project_id = $11,
               customer_id = $12,
               updated_at = $13
         WHERE id = $14
        RETURNING `+userColumns+`
    `,
		u.Name,
		u.Email,
		u.Designation,
		string(u.Role),
		u.Code,
		u.Phone,
		string(u.Status),
		u.IsActive,
		u.AssetID,
		u.OrderID,
		u.ProjectID,
		u.CustomerID,
		u.UpdatedAt,
		u.ID,
	)

	updated, err := scanUser(row)
	if err != nil {
		return nil, translateUserPgError(err)
	}
	return updated, nil
}

// Delete は従業員を削除します。
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return translateUserPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

// FindByID は ID で従業員を取得します。
func (r *UserRepository) FindByID(ctx context.Context, id string) (*user.User, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+userColumns+`
          FROM users
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanUser(row)
	if err != nil {
		return nil, translateUserPgError(err)
	}
	return found, nil
}

// FindByEmail はメールアドレスで従業員を取得します。
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+userColumns+`
          FROM users
         WHERE email = $1
         LIMIT 1
    `, email)

	found, err := scanUser(row)
	if err != nil {
		return nil, translateUserPgError(err)
	}
	return found, nil
}

// LatestEmployeeCode は作成日時が最新の従業員の社員コードを返します。従業員が
// 1 人もいない場合は空文字列を返します。
func (r *UserRepository) LatestEmployeeCode(ctx context.Context) (string, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT code
          FROM users
         ORDER BY created_at DESC, id DESC
         LIMIT 1
    `)

	var code string
	if err := row.Scan(&code); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", translateUserPgError(err)
	}
	return code, nil
}

// List は従業員の一覧を取得します。
func (r *UserRepository) List(ctx context.Context, filter user.ListUsersFilter) ([]*user.User, string, error) {
	if filter.Limit <= 0 {
		return nil, "", user.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", user.ErrInvalidPageToken
	}

	limitWithBuffer := filter.Limit + 1

	args := make([]any, 0, 5)
	conditions := make([]string, 0, 3)

	if filter.Status != nil {
		placeholder := "$" + strconv.Itoa(len(args)+1)
		conditions = append(conditions, "status = "+placeholder)
		args = append(args, string(*filter.Status))
	}
	if filter.Role != nil {
		placeholder := "$" + strconv.Itoa(len(args)+1)
		conditions = append(conditions, "role = "+placeholder)
		args = append(args, string(*filter.Role))
	}
	if filter.Search != "" {
		placeholder := "$" + strconv.Itoa(len(args)+1)
		conditions = append(conditions, "(name ILIKE "+placeholder+" OR email ILIKE "+placeholder+" OR phone ILIKE "+placeholder+")")
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
        SELECT ` + userColumns + `
          FROM users` + whereClause + `
         ORDER BY created_at DESC, id DESC
         LIMIT ` + limitPlaceholder + `
        OFFSET ` + offsetPlaceholder + `
    `

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, "", translateUserPgError(err)
	}
	defer rows.Close()

	users := make([]*user.User, 0, filter.Limit)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, "", translateUserPgError(err)
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, "", translateUserPgError(err)
	}

	var nextToken string
	if len(users) == limitWithBuffer {
		users = users[:filter.Limit]
		nextToken = strconv.Itoa(filter.Offset + filter.Limit)
	}

	return users, nextToken, nil
}

// LockSequence は社員コードの採番を直列化するアドバイザリロックを取得します。
func (r *UserRepository) LockSequence(ctx context.Context) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	return pgdb.AcquireXactLock(ctx, exec, userSequenceLockKey)
}

func scanUser(row pgx.Row) (*user.User, error) {
	var (
		u      user.User
		role   string
		status string
	)

	if err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.Designation,
		&role,
		&u.Code,
		&u.Phone,
		&status,
		&u.IsActive,
		&u.AssetID,
		&u.OrderID,
		&u.ProjectID,
		&u.CustomerID,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrUserNotFound
		}
		return nil, err
	}

	u.Role = user.Role(role)
	u.Status = user.Status(status)

	return &u, nil
}

func translateUserPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return user.ErrUserNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == uniqueViolationCode {
			switch pgErr.ConstraintName {
			case "users_code_key":
				return user.ErrEmployeeCodeTaken
			default:
				return user.ErrEmailAlreadyExists
			}
		}
	}

	return err
}
