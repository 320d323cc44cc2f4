package extract

import (
	"fmt"
	"strings"

	"github.com/xkilldash9x/mediagrab-cli/api/schemas"
	"github.com/xkilldash9x/mediagrab-cli/internal/normalize"
)

// QualityLabel maps a pixel height onto the conventional marketing label.
func QualityLabel(height int) string {
	switch {
	case height >= 2160:
		return "4K"
	case height >= 1440:
		return "2K"
	case height >= 1080:
		return "1080p"
	case height >= 720:
		return "720p"
	case height >= 480:
		return "480p"
	case height >= 360:
		return "360p"
	default:
		return fmt.Sprintf("%dp", height)
	}
}

// PlatformThumbnailURL derives a preview image URL for known embed platforms,
// or "" when the URL matches none of them.
func PlatformThumbnailURL(rawURL string) string {
	if id := normalize.YouTubeVideoID(rawURL); id != "" {
		return fmt.Sprintf("https://img.youtube.com/vi/%s/maxresdefault.jpg", id)
	}
	if id := normalize.VimeoVideoID(rawURL); id != "" {
		return fmt.Sprintf("https://vumbnail.com/%s.jpg", id)
	}
	if id := normalize.DailymotionVideoID(rawURL); id != "" {
		return fmt.Sprintf("https://www.dailymotion.com/thumbnail/video/%s", id)
	}
	return ""
}

// SuggestedFileName produces a filesystem-safe download name from the record's
// title. An unknown format defaults to mp4 for naming only; the record's
// Format field is untouched.
func SuggestedFileName(rec *schemas.CandidateRecord) string {
	ext := rec.Format
	if ext == "" || ext == schemas.FormatUnknown {
		ext = "mp4"
	}
	base := sanitizeFileName(rec.Title)
	if base == "" {
		base = "video"
	}
	return base + "." + ext
}

const maxFileNameBase = 120

func sanitizeFileName(title string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '-', r == '_', r == '.':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('_')
		}
	}
	out := strings.Trim(b.String(), "._")
	if len(out) > maxFileNameBase {
		out = out[:maxFileNameBase]
	}
	return out
}
