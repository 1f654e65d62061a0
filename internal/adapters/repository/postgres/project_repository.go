package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/ogurasousui/fieldservice/internal/core/project"
	pgdb "github.com/ogurasousui/fieldservice/internal/platform/db/postgres"
)

const projectColumns = `id, customer_id, customer_name, employee_id, employee_name, title,
               map_location, contact_name, contact_phone, contact_email, description, file_upload,
               latitude, longitude, status, start_date, end_date, budget,
               created_at, updated_at, created_user, modified_user`

// ProjectRepository は PostgreSQL を利用したプロジェクト永続化の実装です。
type ProjectRepository struct {
	pool pgdb.Queryer
}

// NewProjectRepository は ProjectRepository を生成します。
func NewProjectRepository(pool pgdb.Queryer) *ProjectRepository {
	return &ProjectRepository{pool: pool}
}

// Create はプロジェクトを新規作成します。
func (r *ProjectRepository) Create(ctx context.Context, p *project.Project) (*project.Project, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO projects (customer_id, customer_name, employee_id, employee_name, title,
                              map_location, contact_name, contact_phone, contact_email, description, file_upload,
                              latitude, longitude, status, start_date, end_date, budget,
                              created_at, updated_at, created_user, modified_user)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
        RETURNING `+projectColumns+`
    `,
		p.Customer.ID,
		p.Customer.Name,
		p.Employee.ID,
		p.Employee.Name,
		p.Title,
		p.MapLocation,
		p.ContactName,
		p.ContactPhone,
		p.ContactEmail,
		p.Description,
		p.FileUpload,
		p.Latitude,
		p.Longitude,
		string(p.Status),
		nullableTime(p.StartDate),
		nullableTime(p.EndDate),
		p.Budget,
		p.CreatedAt,
		p.UpdatedAt,
		p.CreatedUser,
		p.ModifiedUser,
	)

	created, err := scanProject(row)
	if err != nil {
		return nil, translateProjectPgError(err)
	}
	return created, nil
}

// Update はプロジェクトを更新します。
func (r *ProjectRepository) Update(ctx context.Context, p *project.Project) (*project.Project, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE projects
           SET customer_id = $1,
               customer_name = $2,
               employee_id = $3,
               employee_name = $4,
               title = $5,
               map_location = $6,
               contact_name = $7,
               contact_phone = $8,
               contact_email = $9,
               description = $10,
               file_upload = $11,
               latitude = $12,
               longitude = $13,
               status = $14,
               start_date = $15,
               end_date = $16,
               budget = $17,
               updated_at = $18,
               modified_user = $19
         WHERE id = $20
        RETURNING `+projectColumns+`
    `,
		p.Customer.ID,
		p.Customer.Name,
		p.Employee.ID,
		p.Employee.Name,
		p.Title,
		p.MapLocation,
		p.ContactName,
		p.ContactPhone,
		p.ContactEmail,
		p.Description,
		p.FileUpload,
		p.Latitude,
		p.Longitude,
		string(p.Status),
		nullableTime(p.StartDate),
		nullableTime(p.EndDate),
		p.Budget,
		p.UpdatedAt,
		p.ModifiedUser,
		p.ID,
	)

	updated, err := scanProject(row)
	if err != nil {
		return nil, translateProjectPgError(err)
	}
	return updated, nil
}

// Delete はプロジェクトを削除します。
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return translateProjectPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return project.ErrProjectNotFound
	}
	return nil
}

// FindByID は ID でプロジェクトを取得します。
func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*project.Project, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+projectColumns+`
          FROM projects
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanProject(row)
	if err != nil {
		return nil, translateProjectPgError(err)
	}
	return found, nil
}

// List はプロジェクトの一覧を取得します。
func (r *ProjectRepository) List(ctx context.Context, filter project.ListProjectsFilter) ([]*project.Project, string, error) {
	if filter.Limit <= 0 {
		return nil, "", project.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", project.ErrInvalidPageToken
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
		conditions = append(conditions, "(title ILIKE "+placeholder+" OR contact_name ILIKE "+placeholder+")")
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
        SELECT ` + projectColumns + `
          FROM projects` + whereClause + `
         ORDER BY created_at DESC, id DESC
         LIMIT ` + limitPlaceholder + `
        OFFSET ` + offsetPlaceholder + `
    `

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, "", translateProjectPgError(err)
	}
	defer rows.Close()

	projects := make([]*project.Project, 0, filter.Limit)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, "", translateProjectPgError(err)
		}
		projects = append(projects, p)
	}

	if err := rows.Err(); err != nil {
		return nil, "", translateProjectPgError(err)
	}

	var nextToken string
	if len(projects) == limitWithBuffer {
		projects = projects[:filter.Limit]
		nextToken = strconv.Itoa(filter.Offset + filter.Limit)
	}

	return projects, nextToken, nil
}

// ListByCustomer は顧客に紐づくプロジェクトを新しい順に返します。
func (r *ProjectRepository) ListByCustomer(ctx context.Context, customerID string) ([]*project.Project, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT `+projectColumns+`
          FROM projects
         WHERE customer_id = $1
         ORDER BY created_at DESC, id DESC
    `, customerID)
	if err != nil {
		return nil, translateProjectPgError(err)
	}
	defer rows.Close()

	var projects []*project.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, translateProjectPgError(err)
		}
		projects = append(projects, p)
	}

	if err := rows.Err(); err != nil {
		return nil, translateProjectPgError(err)
	}

	return projects, nil
}

func scanProject(row pgx.Row) (*project.Project, error) {
	var (
		p         project.Project
		latitude  sql.NullFloat64
		longitude sql.NullFloat64
		startDate sql.NullTime
		endDate   sql.NullTime
		status    string
	)

	if err := row.Scan(
		&p.ID,
		&p.Customer.ID,
		&p.Customer.Name,
		&p.Employee.ID,
		&p.Employee.Name,
		&p.Title,
		&p.MapLocation,
		&p.ContactName,
		&p.ContactPhone,
		&p.ContactEmail,
		&p.Description,
		&p.FileUpload,
		&latitude,
		&longitude,
		&status,
		&startDate,
		&endDate,
		&p.Budget,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.CreatedUser,
		&p.ModifiedUser,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, project.ErrProjectNotFound
		}
		return nil, err
	}

	if latitude.Valid {
		value := latitude.Float64
		p.Latitude = &value
	}
	if longitude.Valid {
		value := longitude.Float64
		p.Longitude = &value
	}
	if startDate.Valid {
		value := startDate.Time.UTC()
		p.StartDate = &value
	}
	if endDate.Valid {
		value := endDate.Time.UTC()
		p.EndDate = &value
	}
	p.Status = project.Status(status)

	return &p, nil
}

func translateProjectPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return project.ErrProjectNotFound
	}
	return err
}
