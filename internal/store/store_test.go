package store

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/mediagrab-cli/api/schemas"
)

// flexibleSQLMatcher creates a regex insensitive to whitespace for robust SQL
// mock matching.
func flexibleSQLMatcher(sql string) string {
	trimmed := strings.TrimSpace(sql)
	return regexp.MustCompile(`\s+`).ReplaceAllString(regexp.QuoteMeta(trimmed), `\s+`)
}

func sampleSnapshot() schemas.DetectionSnapshot {
	size := int64(4096)
	return schemas.DetectionSnapshot{
		SnapshotID: uuid.NewString(),
		PassID:     uuid.NewString(),
		Generation: 3,
		EmittedAt:  time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC),
		Records: []schemas.CandidateRecord{
			{
				ID:            uuid.NewString(),
				SourceURL:     "https://cdn.example.com/v/abc123.mp4",
				NormalizedURL: "https://cdn.example.com/v/abc123.mp4",
				Title:         "Ocean Documentary",
				MediaKind:     schemas.KindDirectMedia,
				FileName:      "abc123.mp4",
				Format:        "mp4",
				QualityLabel:  "1080p",
				Width:         1920,
				Height:        1080,
				FileSizeBytes: &size,
				FirstSeenAt:   time.Date(2026, 5, 1, 9, 59, 0, 0, time.UTC),
			},
			{
				ID:            uuid.NewString(),
				SourceURL:     "https://www.youtube.com/embed/dQw4w9WgXcQ",
				NormalizedURL: "https://www.youtube.com/embed/dQw4w9WgXcQ",
				Title:         "Embedded Clip",
				MediaKind:     schemas.KindEmbeddedFrame,
				Format:        schemas.FormatUnknown,
				FirstSeenAt:   time.Date(2026, 5, 1, 9, 59, 30, 0, time.UTC),
			},
		},
	}
}

func newSink(t *testing.T, mockPool pgxmock.PgxPoolIface) *SnapshotSink {
	t.Helper()
	mockPool.ExpectPing()
	sink, err := New(context.Background(), mockPool, zap.NewNop())
	require.NoError(t, err)
	return sink
}

func TestNewSinkPingFailure(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	pingErr := errors.New("database unavailable")
	mockPool.ExpectPing().WillReturnError(pingErr)

	_, err = New(context.Background(), mockPool, zap.NewNop())
	require.Error(t, err)
	assert.ErrorIs(t, err, pingErr)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestConsumePersistsSnapshotAndRecords(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	sink := newSink(t, mockPool)
	snap := sampleSnapshot()

	mockPool.ExpectBegin()
	mockPool.ExpectExec(flexibleSQLMatcher(insertSnapshotSQL)).
		WithArgs(snap.SnapshotID, snap.PassID, snap.Generation, snap.EmittedAt.UTC(), 2).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mockPool.ExpectCopyFrom(pgx.Identifier{"candidate_records"}, recordColumns).
		WillReturnResult(2)
	mockPool.ExpectCommit()
	mockPool.ExpectRollback().WillReturnError(pgx.ErrTxClosed)

	require.NoError(t, sink.Consume(context.Background(), snap))
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestConsumeEmptySnapshotSkipsCopy(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	sink := newSink(t, mockPool)
	snap := sampleSnapshot()
	snap.Records = nil

	mockPool.ExpectBegin()
	mockPool.ExpectExec(flexibleSQLMatcher(insertSnapshotSQL)).
		WithArgs(snap.SnapshotID, snap.PassID, snap.Generation, snap.EmittedAt.UTC(), 0).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mockPool.ExpectCommit()
	mockPool.ExpectRollback().WillReturnError(pgx.ErrTxClosed)

	require.NoError(t, sink.Consume(context.Background(), snap))
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestConsumeInsertFailureRollsBack(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	sink := newSink(t, mockPool)
	snap := sampleSnapshot()

	insertErr := errors.New("constraint violation")
	mockPool.ExpectBegin()
	mockPool.ExpectExec(flexibleSQLMatcher(insertSnapshotSQL)).
		WithArgs(snap.SnapshotID, snap.PassID, snap.Generation, snap.EmittedAt.UTC(), 2).
		WillReturnError(insertErr)
	mockPool.ExpectRollback()

	err = sink.Consume(context.Background(), snap)
	require.Error(t, err)
	assert.ErrorIs(t, err, insertErr)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestConsumeCopyCountMismatch(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	sink := newSink(t, mockPool)
	snap := sampleSnapshot()

	mockPool.ExpectBegin()
	mockPool.ExpectExec(flexibleSQLMatcher(insertSnapshotSQL)).
		WithArgs(snap.SnapshotID, snap.PassID, snap.Generation, snap.EmittedAt.UTC(), 2).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mockPool.ExpectCopyFrom(pgx.Identifier{"candidate_records"}, recordColumns).
		WillReturnResult(1)
	mockPool.ExpectRollback()

	err = sink.Consume(context.Background(), snap)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mismatch")
	assert.NoError(t, mockPool.ExpectationsWereMet())
}
