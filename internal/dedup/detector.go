// Package dedup decides whether a new candidate is the same logical resource
// as one already accepted. URL equality alone under-detects (segment rotation,
// ephemeral CDN names) and naive fuzzy matching over-detects across genuinely
// distinct short clips, so detection runs as an ordered, numerically bounded
// pipeline of signals, most specific and cheapest first.
package dedup

import (
	"github.com/xkilldash9x/mediagrab-cli/api/schemas"
	"github.com/xkilldash9x/mediagrab-cli/internal/normalize"
)

const (
	// fileSizeTolerance is the byte delta under which two sizes count as the
	// same file for the size+title signal.
	fileSizeTolerance = 1024
	// filenameSimilarityThreshold applies to the in-pass character-multiset
	// measure.
	filenameSimilarityThreshold = 0.8
	// filenameLengthGap rejects filename comparison outright when lengths
	// differ by more than this fraction of the longer name.
	filenameLengthGap = 0.3
)

// Detector implements the in-pass duplicate check. It is deterministic and
// order-sensitive: within a pass the first-seen candidate wins and later
// equivalents are suppressed.
type Detector struct{}

// NewDetector returns an in-pass detector.
func NewDetector() *Detector { return &Detector{} }

// signal is one comparison between the new candidate and a single accepted
// record. The pipeline below evaluates each signal across the whole accepted
// set before moving to the next, so a cheap specific signal can never be
// shadowed by an expensive fuzzy one.
type signal func(c, accepted *schemas.CandidateRecord) bool

var pipeline = []signal{
	hashNameCollision,
	sameNormalizedURL,
	sameNormalizedTitle,
	similarFileName,
	sameSizeAndTitle,
	sameResolutionAndTitle,
	sharedHashToken,
	samePlatformVideo,
}

// IsDuplicate reports whether candidate duplicates any record in acceptedSoFar.
// The first true signal wins; no match means not a duplicate.
func (d *Detector) IsDuplicate(candidate *schemas.CandidateRecord, acceptedSoFar []schemas.CandidateRecord) bool {
	if len(acceptedSoFar) == 0 {
		return false
	}
	for _, sig := range pipeline {
		for i := range acceptedSoFar {
			if sig(candidate, &acceptedSoFar[i]) {
				return true
			}
		}
	}
	return false
}

// hashNameCollision treats two opaque CDN-minted filenames as interchangeable
// noise for the same asset.
func hashNameCollision(c, accepted *schemas.CandidateRecord) bool {
	if c.FileName == "" || accepted.FileName == "" {
		return false
	}
	return normalize.IsHashLikeToken(normalize.StemFileName(c.FileName)) &&
		normalize.IsHashLikeToken(normalize.StemFileName(accepted.FileName))
}

func sameNormalizedURL(c, accepted *schemas.CandidateRecord) bool {
	return c.NormalizedURL != "" && c.NormalizedURL == accepted.NormalizedURL
}

// sameNormalizedTitle only fires within the same media kind; an embedded
// frame and a direct file legitimately share a page title.
func sameNormalizedTitle(c, accepted *schemas.CandidateRecord) bool {
	return c.MediaKind == accepted.MediaKind &&
		c.NormalizedTitle != "" &&
		c.NormalizedTitle == accepted.NormalizedTitle
}

// similarFileName matches extension-stripped filenames exactly or by
// character-multiset similarity. Wildly different lengths are rejected before
// the fuzzy measure runs.
func similarFileName(c, accepted *schemas.CandidateRecord) bool {
	if c.FileName == "" || accepted.FileName == "" {
		return false
	}
	a := normalize.StemFileName(c.FileName)
	b := normalize.StemFileName(accepted.FileName)
	if a == b {
		return true
	}
	longer := len(a)
	if len(b) > longer {
		longer = len(b)
	}
	diff := len(a) - len(b)
	if diff < 0 {
		diff = -diff
	}
	if float64(diff) > filenameLengthGap*float64(longer) {
		return false
	}
	return multisetSimilarity(a, b) >= filenameSimilarityThreshold
}

func sameSizeAndTitle(c, accepted *schemas.CandidateRecord) bool {
	if c.FileSizeBytes == nil || accepted.FileSizeBytes == nil {
		return false
	}
	if c.NormalizedTitle == "" || c.NormalizedTitle != accepted.NormalizedTitle {
		return false
	}
	delta := *c.FileSizeBytes - *accepted.FileSizeBytes
	if delta < 0 {
		delta = -delta
	}
	return delta <= fileSizeTolerance
}

func sameResolutionAndTitle(c, accepted *schemas.CandidateRecord) bool {
	if c.Width == 0 || c.Height == 0 {
		return false
	}
	if c.Width != accepted.Width || c.Height != accepted.Height {
		return false
	}
	return c.NormalizedTitle != "" && c.NormalizedTitle == accepted.NormalizedTitle
}

func sharedHashToken(c, accepted *schemas.CandidateRecord) bool {
	tok := normalize.HashToken(c.SourceURL)
	if tok == "" {
		return false
	}
	return tok == normalize.HashToken(accepted.SourceURL)
}

// samePlatformVideo applies to embedded frames only: the same platform video
// ID reached through different embed URL shapes is one video.
func samePlatformVideo(c, accepted *schemas.CandidateRecord) bool {
	if c.MediaKind != schemas.KindEmbeddedFrame || accepted.MediaKind != schemas.KindEmbeddedFrame {
		return false
	}
	id := normalize.PlatformVideoID(c.SourceURL)
	return id != "" && id == normalize.PlatformVideoID(accepted.SourceURL)
}
