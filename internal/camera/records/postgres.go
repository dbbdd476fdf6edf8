package records

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/camsync/internal/camera/models"
	"github.com/dmitrijs2005/camsync/internal/camera/records/migrations"
	"github.com/dmitrijs2005/camsync/internal/dbx"
	"github.com/pressly/goose/v3"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresRepository implements the record store over a Postgres database,
// for deployments where the engine runs server side.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// OpenPostgres connects to the database at dsn and applies migrations.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres db: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping postgres db: %w", err)
	}

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations failed: %w", err)
	}

	return db, nil
}

func (r *PostgresRepository) UpsertMany(ctx context.Context, recs []*models.UploadRecord) error {
	query := `INSERT INTO upload_records
			(media_id, ts, folder, item_type, source_path, temp_path, file_name, original_fingerprint, generated_fingerprint, upload_status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (media_id, ts, folder) DO UPDATE SET
				item_type = EXCLUDED.item_type,
				source_path = EXCLUDED.source_path,
				temp_path = EXCLUDED.temp_path,
				file_name = EXCLUDED.file_name,
				original_fingerprint = EXCLUDED.original_fingerprint,
				generated_fingerprint = EXCLUDED.generated_fingerprint,
				upload_status = EXCLUDED.upload_status
	`
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, rec := range recs {
			_, err := tx.ExecContext(ctx, query,
				rec.MediaID, rec.Timestamp, rec.Folder, rec.Type, rec.SourcePath, rec.TempPath,
				rec.FileName, rec.OriginalFingerprint, rec.GeneratedFingerprint, rec.Status)
			if err != nil {
				return fmt.Errorf("failed to upsert record: %w", err)
			}
		}
		return nil
	})
}

func (r *PostgresRepository) GetByStatusAndType(ctx context.Context, statuses []models.UploadStatus, types []models.ItemType, folders []models.FolderClass) ([]*models.UploadRecord, error) {
	query := `SELECT media_id, ts, folder, item_type, source_path, temp_path, file_name, original_fingerprint, generated_fingerprint, upload_status
		FROM upload_records`

	where, args := buildFilter("$", statuses, types, folders)
	query += where

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error selecting records: %w", err)
	}
	defer rows.Close()

	var result []*models.UploadRecord

	for rows.Next() {
		item := &models.UploadRecord{}
		err := rows.Scan(&item.MediaID, &item.Timestamp, &item.Folder, &item.Type, &item.SourcePath,
			&item.TempPath, &item.FileName, &item.OriginalFingerprint, &item.GeneratedFingerprint, &item.Status)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, key models.RecordKey, status models.UploadStatus) error {
	query := `UPDATE upload_records SET upload_status=$1 WHERE media_id=$2 AND ts=$3 AND folder=$4`
	result, err := r.db.ExecContext(ctx, query, status, key.MediaID, key.Timestamp, key.Folder)
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	return requireOneRow(result)
}

func (r *PostgresRepository) UpdateGeneratedFingerprint(ctx context.Context, key models.RecordKey, fingerprint, tempPath string) error {
	query := `UPDATE upload_records SET generated_fingerprint=$1, temp_path=$2 WHERE media_id=$3 AND ts=$4 AND folder=$5`
	result, err := r.db.ExecContext(ctx, query, fingerprint, tempPath, key.MediaID, key.Timestamp, key.Folder)
	if err != nil {
		return fmt.Errorf("failed to update fingerprint: %w", err)
	}
	return requireOneRow(result)
}

func (r *PostgresRepository) RecordCompletedTransfer(ctx context.Context, ct *CompletedTransfer) error {
	query := `INSERT INTO completed_transfers (id, media_id, ts, folder, file_name, node_id, size_bytes, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.ExecContext(ctx, query,
		ct.ID, ct.Key.MediaID, ct.Key.Timestamp, ct.Key.Folder, ct.FileName, ct.NodeID, ct.SizeBytes, ct.FinishedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to insert completed transfer: %w", err)
	}
	return nil
}
