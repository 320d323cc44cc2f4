package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetSizeIsMonotonic(t *testing.T) {
	rec := CandidateRecord{ID: "rec-1"}
	assert.False(t, rec.HasSize())

	rec.SetSize(1024)
	require.True(t, rec.HasSize())
	assert.Equal(t, int64(1024), *rec.FileSizeBytes)

	// A second probe result never overwrites the first.
	rec.SetSize(2048)
	assert.Equal(t, int64(1024), *rec.FileSizeBytes)
}

func TestSetSizeCopiesValue(t *testing.T) {
	a := CandidateRecord{ID: "a"}
	b := CandidateRecord{ID: "b"}
	a.SetSize(100)
	b.SetSize(200)
	assert.Equal(t, int64(100), *a.FileSizeBytes)
	assert.Equal(t, int64(200), *b.FileSizeBytes)
}
