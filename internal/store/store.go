// Package store persists emitted detection snapshots to PostgreSQL. It sits
// on the consumer side of the engine's outbound channel; the engine itself
// never touches a database.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/xkilldash9x/mediagrab-cli/api/schemas"
)

// DBPool abstracts pgxpool.Pool so tests can substitute a mock.
type DBPool interface {
	Ping(ctx context.Context) error
	Begin(ctx context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// SnapshotSink writes snapshots and their records transactionally. It
// implements schemas.SnapshotConsumer.
type SnapshotSink struct {
	pool DBPool
	log  *zap.Logger
}

// New creates a sink and verifies the connection.
func New(ctx context.Context, pool DBPool, logger *zap.Logger) (*SnapshotSink, error) {
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &SnapshotSink{pool: pool, log: logger.Named("store")}, nil
}

const insertSnapshotSQL = `
    INSERT INTO detection_snapshots (snapshot_id, pass_id, generation, emitted_at, record_count)
    VALUES ($1, $2, $3, $4, $5);
`

// Consume persists one snapshot. Snapshots are immutable once emitted, so
// this is insert-only: a superseding snapshot lands as a new row under the
// same pass id.
func (s *SnapshotSink) Consume(ctx context.Context, snap schemas.DetectionSnapshot) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
			s.log.Error("transaction rollback failed", zap.Error(rollbackErr))
		}
	}()

	if _, err := tx.Exec(ctx, insertSnapshotSQL,
		snap.SnapshotID, snap.PassID, snap.Generation,
		snap.EmittedAt.UTC(), len(snap.Records)); err != nil {
		return fmt.Errorf("insert snapshot %s: %w", snap.SnapshotID, err)
	}

	if len(snap.Records) > 0 {
		if err := s.copyRecords(ctx, tx, snap); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	s.log.Debug("snapshot persisted",
		zap.String("snapshot_id", snap.SnapshotID),
		zap.Int("records", len(snap.Records)))
	return nil
}

var recordColumns = []string{
	"id", "snapshot_id", "source_url", "normalized_url", "title",
	"media_kind", "file_name", "format", "quality_label",
	"width", "height", "duration_seconds", "thumbnail_url",
	"file_size_bytes", "first_seen_at",
}

func (s *SnapshotSink) copyRecords(ctx context.Context, tx pgx.Tx, snap schemas.DetectionSnapshot) error {
	rows := make([][]interface{}, len(snap.Records))
	for i, r := range snap.Records {
		rows[i] = []interface{}{
			r.ID, snap.SnapshotID, r.SourceURL, r.NormalizedURL, r.Title,
			string(r.MediaKind), r.FileName, r.Format, r.QualityLabel,
			r.Width, r.Height, r.DurationSeconds, r.ThumbnailURL,
			r.FileSizeBytes, r.FirstSeenAt.UTC(),
		}
	}

	copied, err := tx.CopyFrom(ctx,
		pgx.Identifier{"candidate_records"},
		recordColumns,
		pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("copy candidate records: %w", err)
	}
	if int(copied) != len(snap.Records) {
		return fmt.Errorf("copied record count mismatch: expected %d, got %d", len(snap.Records), copied)
	}
	return nil
}
