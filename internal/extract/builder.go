// Package extract builds CandidateRecords from DOM-supplied element
// descriptors. One builder handles all media kinds; the per-kind differences
// (effective URL choice, allowed schemes, platform thumbnails) are small
// branches inside a shared validation and dedup pipeline.
package extract

import (
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/mediagrab-cli/api/schemas"
	"github.com/xkilldash9x/mediagrab-cli/internal/dedup"
	"github.com/xkilldash9x/mediagrab-cli/internal/normalize"
)

// DefaultTitle is the terminal fallback of the title chain.
const DefaultTitle = "Unknown Video"

// Builder turns element descriptors into candidate records.
type Builder struct {
	log      *zap.Logger
	detector *dedup.Detector
	clock    schemas.Clock
}

// NewBuilder constructs a Builder. A nil clock falls back to wall time.
func NewBuilder(log *zap.Logger, clock schemas.Clock) *Builder {
	if clock == nil {
		clock = schemas.RealClock{}
	}
	return &Builder{
		log:      log.Named("extract"),
		detector: dedup.NewDetector(),
		clock:    clock,
	}
}

// Build constructs a record from one descriptor. It returns a validation
// error for disallowed URLs; duplicate checking is ExtractAll's job.
func (b *Builder) Build(desc schemas.ElementDescriptor) (*schemas.CandidateRecord, error) {
	rawURL := effectiveURL(desc)
	if err := ValidateURL(rawURL, desc.Kind); err != nil {
		return nil, err
	}

	title := extractTitle(desc)
	rec := &schemas.CandidateRecord{
		ID:              uuid.NewString(),
		SourceURL:       rawURL,
		NormalizedURL:   normalize.URL(rawURL),
		Title:           title,
		NormalizedTitle: normalize.Title(title),
		MediaKind:       desc.Kind,
		FileName:        normalize.FileName(rawURL),
		Format:          resolveFormat(desc, rawURL),
		Width:           desc.Width,
		Height:          desc.Height,
		DurationSeconds: desc.DurationSeconds,
		ThumbnailURL:    extractThumbnail(desc, rawURL),
		FirstSeenAt:     b.clock.Now(),
	}
	if rec.Height > 0 {
		rec.QualityLabel = QualityLabel(rec.Height)
	}
	return rec, nil
}

// ExtractAll builds records for a whole pass. Candidates failing validation
// or duplicating an earlier acceptance are dropped silently; a fault while
// processing one element is isolated to that element.
func (b *Builder) ExtractAll(descs []schemas.ElementDescriptor) []schemas.CandidateRecord {
	accepted := make([]schemas.CandidateRecord, 0, len(descs))
	for i := range descs {
		b.extractOne(descs[i], &accepted)
	}
	return accepted
}

func (b *Builder) extractOne(desc schemas.ElementDescriptor, accepted *[]schemas.CandidateRecord) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("element processing fault, skipping element",
				zap.Any("panic", r),
				zap.String("source", desc.SourceAttr),
				zap.Stack("stacktrace"))
		}
	}()

	rec, err := b.Build(desc)
	if err != nil {
		b.log.Debug("candidate rejected",
			zap.String("source", effectiveURL(desc)),
			zap.Error(err))
		return
	}
	if b.detector.IsDuplicate(rec, *accepted) {
		b.log.Debug("duplicate suppressed", zap.String("url", rec.SourceURL))
		return
	}
	*accepted = append(*accepted, *rec)
}

// effectiveURL prefers the currently playing URL for direct media; declared
// source attributes can lag behind what the element actually resolved.
func effectiveURL(desc schemas.ElementDescriptor) string {
	if desc.Kind == schemas.KindDirectMedia && desc.CurrentSrc != "" {
		return desc.CurrentSrc
	}
	return desc.SourceAttr
}

// extractTitle walks the descriptor's title sources in priority order.
func extractTitle(desc schemas.ElementDescriptor) string {
	for _, s := range []string{
		desc.TitleAttr,
		desc.AltAttr,
		desc.AriaLabel,
		desc.NearbyHeading,
		desc.DocumentTitle,
	} {
		if t := strings.TrimSpace(s); t != "" {
			return t
		}
	}
	return DefaultTitle
}

// resolveFormat prefers declared media-type metadata over the URL extension.
func resolveFormat(desc schemas.ElementDescriptor, rawURL string) string {
	if f := normalize.FormatFromMediaType(desc.MediaType); f != "" {
		return f
	}
	if f := normalize.FormatFromURL(rawURL); f != "" {
		return f
	}
	return schemas.FormatUnknown
}

// extractThumbnail walks poster, nearby image, page preview, then (embedded
// frames only) a platform thumbnail template.
func extractThumbnail(desc schemas.ElementDescriptor, rawURL string) string {
	for _, s := range []string{desc.PosterAttr, desc.NearbyImageURL, desc.PageImageURL} {
		if t := strings.TrimSpace(s); t != "" {
			return t
		}
	}
	if desc.Kind == schemas.KindEmbeddedFrame {
		return PlatformThumbnailURL(rawURL)
	}
	return ""
}
