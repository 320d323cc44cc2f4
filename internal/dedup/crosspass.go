package dedup

import (
	"github.com/xkilldash9x/mediagrab-cli/api/schemas"
	"github.com/xkilldash9x/mediagrab-cli/internal/config"
)

// CrossPassDetector compares a fresh candidate against records retained from
// earlier scan passes. It is deliberately coarser than the in-pass pipeline
// and uses edit-distance similarity where the in-pass path uses multiset
// similarity; merging the two was considered and rejected because their false
// positive profiles differ (see DESIGN.md).
type CrossPassDetector struct {
	titleThreshold float64
	urlThreshold   float64
}

// NewCrossPassDetector builds a detector with thresholds from cfg. Title
// similarity is strict-greater-than, as is URL similarity.
func NewCrossPassDetector(cfg config.Interface) *CrossPassDetector {
	det := cfg.Detector()
	return &CrossPassDetector{
		titleThreshold: det.TitleSimilarityThreshold,
		urlThreshold:   det.URLSimilarityThreshold,
	}
}

// IsDuplicateOf reports whether candidate matches a single retained record.
func (d *CrossPassDetector) IsDuplicateOf(candidate, retained *schemas.CandidateRecord) bool {
	if candidate.SourceURL != "" && candidate.SourceURL == retained.SourceURL {
		return true
	}
	if candidate.FileName != "" && candidate.FileName == retained.FileName {
		return true
	}
	if candidate.Title != "" && retained.Title != "" &&
		levenshteinSimilarity(candidate.Title, retained.Title) > d.titleThreshold {
		return true
	}
	return urlSimilarity(candidate.SourceURL, retained.SourceURL) > d.urlThreshold
}

// IsDuplicate reports whether candidate matches any retained record.
func (d *CrossPassDetector) IsDuplicate(candidate *schemas.CandidateRecord, retained []schemas.CandidateRecord) bool {
	for i := range retained {
		if d.IsDuplicateOf(candidate, &retained[i]) {
			return true
		}
	}
	return false
}
