package records

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/camsync/internal/camera/models"
	"github.com/dmitrijs2005/camsync/internal/camera/records/migrations"
	"github.com/dmitrijs2005/camsync/internal/common"
	"github.com/dmitrijs2005/camsync/internal/dbx"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// SQLiteRepository is the on-device record store.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// RunMigrations applies the embedded goose migrations to db.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// OpenSQLite opens (creating if needed) the record database at dsn and
// applies migrations.
func OpenSQLite(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations failed: %w", err)
	}

	return db, nil
}

func (r *SQLiteRepository) UpsertMany(ctx context.Context, recs []*models.UploadRecord) error {
	query := `INSERT INTO upload_records
			(media_id, ts, folder, item_type, source_path, temp_path, file_name, original_fingerprint, generated_fingerprint, upload_status)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(media_id, ts, folder) DO UPDATE SET
				item_type = excluded.item_type,
				source_path = excluded.source_path,
				temp_path = excluded.temp_path,
				file_name = excluded.file_name,
				original_fingerprint = excluded.original_fingerprint,
				generated_fingerprint = excluded.generated_fingerprint,
				upload_status = excluded.upload_status
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

func (r *SQLiteRepository) GetByStatusAndType(ctx context.Context, statuses []models.UploadStatus, types []models.ItemType, folders []models.FolderClass) ([]*models.UploadRecord, error) {
	query := `SELECT media_id, ts, folder, item_type, source_path, temp_path, file_name, original_fingerprint, generated_fingerprint, upload_status
		FROM upload_records`

	where, args := buildFilter("?", statuses, types, folders)
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

func (r *SQLiteRepository) UpdateStatus(ctx context.Context, key models.RecordKey, status models.UploadStatus) error {
	query := `UPDATE upload_records SET upload_status=? WHERE media_id=? AND ts=? AND folder=?`
	result, err := r.db.ExecContext(ctx, query, status, key.MediaID, key.Timestamp, key.Folder)
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	return requireOneRow(result)
}

func (r *SQLiteRepository) UpdateGeneratedFingerprint(ctx context.Context, key models.RecordKey, fingerprint, tempPath string) error {
	query := `UPDATE upload_records SET generated_fingerprint=?, temp_path=? WHERE media_id=? AND ts=? AND folder=?`
	result, err := r.db.ExecContext(ctx, query, fingerprint, tempPath, key.MediaID, key.Timestamp, key.Folder)
	if err != nil {
		return fmt.Errorf("failed to update fingerprint: %w", err)
	}
	return requireOneRow(result)
}

func (r *SQLiteRepository) RecordCompletedTransfer(ctx context.Context, ct *CompletedTransfer) error {
	query := `INSERT INTO completed_transfers (id, media_id, ts, folder, file_name, node_id, size_bytes, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		ct.ID, ct.Key.MediaID, ct.Key.Timestamp, ct.Key.Folder, ct.FileName, ct.NodeID, ct.SizeBytes, ct.FinishedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to insert completed transfer: %w", err)
	}
	return nil
}

// buildFilter renders a WHERE clause with IN lists for the non-empty
// filters. placeholder is "?" for sqlite; postgres passes "$" and gets
// numbered placeholders.
func buildFilter(placeholder string, statuses []models.UploadStatus, types []models.ItemType, folders []models.FolderClass) (string, []any) {
	var clauses []string
	var args []any

	next := func() string {
		if placeholder == "?" {
			return "?"
		}
		return fmt.Sprintf("$%d", len(args))
	}

	in := func(column string, values []any) {
		if len(values) == 0 {
			return
		}
		marks := make([]string, 0, len(values))
		for _, v := range values {
			args = append(args, v)
			marks = append(marks, next())
		}
		clauses = append(clauses, fmt.Sprintf("%s IN (%s)", column, strings.Join(marks, ", ")))
	}

	in("upload_status", toAny(statuses))
	in("item_type", toAny(types))
	in("folder", toAny(folders))

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func toAny[T any](values []T) []any {
	result := make([]any, len(values))
	for i, v := range values {
		result[i] = v
	}
	return result
}

func requireOneRow(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return common.ErrorNotFound
	}
	if rowsAffected != 1 {
		return fmt.Errorf("wrong rows affected count: %d", rowsAffected)
	}
	return nil
}
