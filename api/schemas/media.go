package schemas

import "time"

// MediaKind classifies where on the page a candidate came from.
type MediaKind string

const (
	KindDirectMedia     MediaKind = "direct-media"
	KindContainerSource MediaKind = "container-source"
	KindEmbeddedFrame   MediaKind = "embedded-frame"
)

// FormatUnknown is used when no whitelisted extension or declared media type
// identifies the container format.
const FormatUnknown = "unknown"

// CandidateRecord is one discovered media resource.
//
// ID is unique within a single detection pass only; it is NOT stable across
// passes. NormalizedURL and NormalizedTitle are derived fields, computed once
// from SourceURL/Title at build time and never mutated independently.
type CandidateRecord struct {
	ID            string    `json:"id"`
	SourceURL     string    `json:"source_url"`
	NormalizedURL string    `json:"normalized_url"`

	Title           string    `json:"title"`
	NormalizedTitle string    `json:"-"` // comparison only, never persisted as identity

	MediaKind MediaKind `json:"media_kind"`

	// FileName is the last path element of SourceURL, query and fragment
	// stripped. Used by the duplicate detector's filename signals.
	FileName string `json:"file_name,omitempty"`

	Format          string  `json:"format,omitempty"`
	QualityLabel    string  `json:"quality_label,omitempty"`
	Width           int     `json:"width,omitempty"`
	Height          int     `json:"height,omitempty"`
	DurationSeconds float64 `json:"duration_seconds,omitempty"`
	ThumbnailURL    string  `json:"thumbnail_url,omitempty"`

	// FileSizeBytes is filled in by async enrichment. It only ever moves from
	// absent to present; it never changes back or regresses once set.
	FileSizeBytes *int64 `json:"file_size_bytes,omitempty"`

	FirstSeenAt time.Time `json:"first_seen_at"`
}

// HasSize reports whether size enrichment has completed for this record.
func (c *CandidateRecord) HasSize() bool { return c.FileSizeBytes != nil }

// SetSize applies a probed size, enforcing the absent-to-present monotonic
// invariant. Calls after the first are ignored.
func (c *CandidateRecord) SetSize(bytes int64) {
	if c.FileSizeBytes != nil {
		return
	}
	c.FileSizeBytes = &bytes
}

// DetectionSnapshot is the ordered set of records emitted for one pass.
// It is immutable once emitted: async enrichment produces a new superseding
// snapshot (fresh SnapshotID, same PassID) rather than editing this one.
type DetectionSnapshot struct {
	SnapshotID string            `json:"snapshot_id"`
	PassID     string            `json:"pass_id"`
	Generation uint64            `json:"generation"`
	EmittedAt  time.Time         `json:"emitted_at"`
	Records    []CandidateRecord `json:"records"`
}

// ScanState is the scheduler's per-page-context bookkeeping.
type ScanState struct {
	LastScanAt      time.Time `json:"last_scan_at"`
	LastFingerprint string    `json:"last_fingerprint"`
	Generation      uint64    `json:"generation"`
}
