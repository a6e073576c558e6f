package mariadb

import (
	"context"
	"database/sql"

	"github.com/fhuszti/music-delivery-ms-go/internal/logger"
	"github.com/fhuszti/music-delivery-ms-go/internal/model"
	"github.com/fhuszti/music-delivery-ms-go/internal/port"
)

type PendingUploadRepository struct {
	db *sql.DB
}

// compile-time check: *PendingUploadRepository must satisfy port.PendingUploadRepository
var _ port.PendingUploadRepository = (*PendingUploadRepository)(nil)

func NewPendingUploadRepository(db *sql.DB) *PendingUploadRepository {
	return &PendingUploadRepository{db: db}
}

// Save records a handed out upload link. A second link for the same variant replaces the first.
func (r *PendingUploadRepository) Save(ctx context.Context, p *model.PendingUpload) error {
	logger.Debugf(ctx, "saving pending upload of asset %q at %d kbps...", p.AssetID, p.Bitrate)

	const query = `
      INSERT INTO music_pending_uploads
        (asset_id, bitrate, extension, original_filename, created_at)
      VALUES (?, ?, ?, ?, ?)
      ON DUPLICATE KEY UPDATE
        extension         = VALUES(extension),
        original_filename = VALUES(original_filename),
        created_at        = VALUES(created_at)
    `
	_, err := r.db.ExecContext(ctx, query, p.AssetID, p.Bitrate, p.Extension, p.OriginalFilename, p.CreatedAt)
	return err
}

func (r *PendingUploadRepository) Get(ctx context.Context, assetID string, bitrate int) (*model.PendingUpload, error) {
	logger.Debugf(ctx, "fetching pending upload of asset %q at %d kbps...", assetID, bitrate)

	const query = `
      SELECT asset_id, bitrate, extension, original_filename, created_at
      FROM music_pending_uploads
      WHERE asset_id = ? AND bitrate = ?
    `
	var p model.PendingUpload
	if err := r.db.QueryRowContext(ctx, query, assetID, bitrate).Scan(
		&p.AssetID, &p.Bitrate, &p.Extension, &p.OriginalFilename, &p.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListByAsset returns the pending uploads of an asset, lowest bitrate first.
func (r *PendingUploadRepository) ListByAsset(ctx context.Context, assetID string) ([]model.PendingUpload, error) {
	const query = `
      SELECT asset_id, bitrate, extension, original_filename, created_at
      FROM music_pending_uploads
      WHERE asset_id = ?
      ORDER BY bitrate
    `
	rows, err := r.db.QueryContext(ctx, query, assetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.PendingUpload
	for rows.Next() {
		var p model.PendingUpload
		if err := rows.Scan(&p.AssetID, &p.Bitrate, &p.Extension, &p.OriginalFilename, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PendingUploadRepository) Delete(ctx context.Context, assetID string, bitrate int) error {
	const query = `DELETE FROM music_pending_uploads WHERE asset_id = ? AND bitrate = ?`
	_, err := r.db.ExecContext(ctx, query, assetID, bitrate)
	return err
}

func (r *PendingUploadRepository) DeleteByAsset(ctx context.Context, assetID string) error {
	logger.Debugf(ctx, "deleting pending uploads of asset %q...", assetID)

	const query = `DELETE FROM music_pending_uploads WHERE asset_id = ?`
	_, err := r.db.ExecContext(ctx, query, assetID)
	return err
}
