package postgres

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/fieldservice/internal/core/asset"
	pgdb "github.com/ogurasousui/fieldservice/internal/platform/db/postgres"
)

const assetColumns = `id, order_id, project_id, customer_id, title, description, model, manufacturer,
               serial_number, category, barcode, file_upload, status, location,
               created_at, updated_at, created_user, modified_user`

// AssetRepository は PostgreSQL を利用した資産永続化の実装です。
type AssetRepository struct {
	pool pgdb.Queryer
}

// NewAssetRepository は AssetRepository を生成します。
func NewAssetRepository(pool pgdb.Queryer) *AssetRepository {
	return &AssetRepository{pool: pool}
}

// Create は資産を新規作成します。
func (r *AssetRepository) Create(ctx context.Context, a *asset.Asset) (*asset.Asset, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO assets (order_id, project_id, customer_id, title, description, model, manufacturer,
                            serial_number, category, barcode, file_upload, status, location,
                            created_at, updated_at, created_user, modified_user)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
        RETURNING `+assetColumns+`
    `,
		a.OrderID,
		a.ProjectID,
		a.CustomerID,
		a.Title,
		a.Description,
		a.Model,
		a.Manufacturer,
		a.SerialNumber,
		a.Category,
		a.Barcode,
		a.FileUpload,
		string(a.Status),
		a.Location,
		a.CreatedAt,
		a.UpdatedAt,
		a.CreatedUser,
		a.ModifiedUser,
	)

	created, err := scanAsset(row)
	if err != nil {
		return nil, translateAssetPgError(err)
	}
	return created, nil
}

// Update は資産を更新します。
func (r *AssetRepository) Update(ctx context.Context, a *asset.Asset) (*asset.Asset, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE assets
           SET order_id = $1,
               project_id = $2,
               customer_id = $3,
               title = $4,
               description = $5,
               model = $6,
               manufacturer = $7,
               serial_number = $8,
               category = $9,
               barcode = $10,
               file_upload = $11,
               status = $12,
               location = $13,
               updated_at = $14,
               modified_user = $15
         WHERE id = $16
        RETURNING `+assetColumns+`
    `,
		a.OrderID,
		a.ProjectID,
		a.CustomerID,
		a.Title,
		a.Description,
		a.Model,
		a.Manufacturer,
		a.SerialNumber,
		a.Category,
		a.Barcode,
		a.FileUpload,
		string(a.Status),
		a.Location,
		a.UpdatedAt,
		a.ModifiedUser,
		a.ID,
	)

	updated, err := scanAsset(row)
	if err != nil {
		return nil, translateAssetPgError(err)
	}
	return updated, nil
}

// Delete は資産を削除します。
func (r *AssetRepository) Delete(ctx context.Context, id string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM assets WHERE id = $1`, id)
	if err != nil {
		return translateAssetPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return asset.ErrAssetNotFound
	}
	return nil
}

// FindByID は ID で資産を取得します。
func (r *AssetRepository) FindByID(ctx context.Context, id string) (*asset.Asset, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+assetColumns+`
          FROM assets
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanAsset(row)
	if err != nil {
		return nil, translateAssetPgError(err)
	}
	return found, nil
}

// List は資産の一覧を取得します。
func (r *AssetRepository) List(ctx context.Context, filter asset.ListAssetsFilter) ([]*asset.Asset, string, error) {
	if filter.Limit <= 0 {
		return nil, "", asset.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", asset.ErrInvalidPageToken
	}

	limitWithBuffer := filter.Limit + 1

	args := make([]any, 0, 5)
	conditions := make([]string, 0, 3)

	if filter.Status != nil {
		placeholder := "$" + strconv.Itoa(len(args)+1)
		conditions = append(conditions, "status = "+placeholder)
		args = append(args, string(*filter.Status))
	}
	if filter.Category != "" {
		placeholder := "$" + strconv.Itoa(len(args)+1)
		conditions = append(conditions, "category = "+placeholder)
		args = append(args, filter.Category)
	}
	if filter.Search != "" {
		placeholder := "$" + strconv.Itoa(len(args)+1)
		conditions = append(conditions, "(title ILIKE "+placeholder+" OR serial_number ILIKE "+placeholder+" OR barcode ILIKE "+placeholder+")")
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
        SELECT ` + assetColumns + `
          FROM assets` + whereClause + `
         ORDER BY created_at DESC, id DESC
         LIMIT ` + limitPlaceholder + `
        OFFSET ` + offsetPlaceholder + `
    `

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, "", translateAssetPgError(err)
	}
	defer rows.Close()

	assets := make([]*asset.Asset, 0, filter.Limit)
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, "", translateAssetPgError(err)
		}
		assets = append(assets, a)
	}

	if err := rows.Err(); err != nil {
		return nil, "", translateAssetPgError(err)
	}

	var nextToken string
	if len(assets) == limitWithBuffer {
		assets = assets[:filter.Limit]
		nextToken = strconv.Itoa(filter.Offset + filter.Limit)
	}

	return assets, nextToken, nil
}

// ListByOrder は注文に紐づく資産を新しい順に返します。
func (r *AssetRepository) ListByOrder(ctx context.Context, orderID string) ([]*asset.Asset, error) {
	return r.listBy(ctx, "order_id", orderID)
}

// ListByProject はプロジェクトに紐づく資産を新しい順に返します。
func (r *AssetRepository) ListByProject(ctx context.Context, projectID string) ([]*asset.Asset, error) {
	return r.listBy(ctx, "project_id", projectID)
}

func (r *AssetRepository) listBy(ctx context.Context, column, value string) ([]*asset.Asset, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT `+assetColumns+`
          FROM assets
         WHERE `+column+` = $1
         ORDER BY created_at DESC, id DESC
    `, value)
	if err != nil {
		return nil, translateAssetPgError(err)
	}
	defer rows.Close()

	var assets []*asset.Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, translateAssetPgError(err)
		}
		assets = append(assets, a)
	}

	if err := rows.Err(); err != nil {
		return nil, translateAssetPgError(err)
	}

	return assets, nil
}

func scanAsset(row pgx.Row) (*asset.Asset, error) {
	var (
		a      asset.Asset
		status string
	)

	if err := row.Scan(
		&a.ID,
		&a.OrderID,
		&a.ProjectID,
		&a.CustomerID,
		&a.Title,
		&a.Description,
		&a.Model,
		&a.Manufacturer,
		&a.SerialNumber,
		&a.Category,
		&a.Barcode,
		&a.FileUpload,
		&status,
		&a.Location,
		&a.CreatedAt,
		&a.UpdatedAt,
		&a.CreatedUser,
		&a.ModifiedUser,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, asset.ErrAssetNotFound
		}
		return nil, err
	}

	a.Status = asset.Status(status)

	return &a, nil
}

func translateAssetPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return asset.ErrAssetNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == uniqueViolationCode {
			switch pgErr.ConstraintName {
			case "assets_barcode_idx":
				return asset.ErrBarcodeTaken
			default:
				return asset.ErrSerialNumberTaken
			}
		}
	}

	return err
}
