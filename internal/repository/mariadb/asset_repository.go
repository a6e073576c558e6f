package mariadb

import (
	"context"
	"database/sql"

	"github.com/fhuszti/music-delivery-ms-go/internal/logger"
	"github.com/fhuszti/music-delivery-ms-go/internal/model"
	"github.com/fhuszti/music-delivery-ms-go/internal/port"
)

type AssetRepository struct {
	db *sql.DB
}

// compile-time check: *AssetRepository must satisfy port.AssetRepository
var _ port.AssetRepository = (*AssetRepository)(nil)

func NewAssetRepository(db *sql.DB) *AssetRepository {
	return &AssetRepository{db: db}
}

// Save inserts the asset or replaces the record of a re-uploaded one. created_at is kept on replace.
func (r *AssetRepository) Save(ctx context.Context, asset *model.Asset) error {
	logger.Debugf(ctx, "saving database record for asset %q with %d variants...", asset.ID, len(asset.Variants))

	const query = `
      INSERT INTO music_assets
        (id, extension, mime_type, original_filename, variants, created_at, updated_at)
      VALUES (?, ?, ?, ?, ?, ?, ?)
      ON DUPLICATE KEY UPDATE
        extension         = VALUES(extension),
        mime_type         = VALUES(mime_type),
        original_filename = VALUES(original_filename),
        variants          = VALUES(variants),
        updated_at        = VALUES(updated_at)
    `
	_, err := r.db.ExecContext(ctx, query,
		asset.ID, asset.Extension, asset.MimeType,
		asset.OriginalFilename, asset.Variants,
		asset.CreatedAt, asset.UpdatedAt,
	)
	return err
}

func (r *AssetRepository) GetByID(ctx context.Context, id string) (*model.Asset, error) {
	logger.Debugf(ctx, "fetching asset %q from the database...", id)

	const query = `
      SELECT id, extension, mime_type, original_filename, variants, created_at, updated_at
      FROM music_assets
      WHERE id = ?
    `
	row := r.db.QueryRowContext(ctx, query, id)
	var asset model.Asset
	if err := row.Scan(
		&asset.ID, &asset.Extension, &asset.MimeType,
		&asset.OriginalFilename, &asset.Variants,
		&asset.CreatedAt, &asset.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return &asset, nil
}

func (r *AssetRepository) Delete(ctx context.Context, id string) error {
	logger.Debugf(ctx, "deleting asset %q from the database...", id)

	const query = `DELETE FROM music_assets WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
