package extract

import (
	"errors"
	"net/url"
	"path"
	"strings"

	"github.com/xkilldash9x/mediagrab-cli/api/schemas"
	"github.com/xkilldash9x/mediagrab-cli/internal/normalize"
)

var (
	// ErrEmptyURL marks a descriptor with no usable source.
	ErrEmptyURL = errors.New("empty source url")
	// ErrDisallowedScheme marks a URL outside http/https (plus data/blob for
	// direct media).
	ErrDisallowedScheme = errors.New("disallowed url scheme")
	// ErrStreamArtifact marks a manifest/playlist/segment URL with no media
	// extension of its own.
	ErrStreamArtifact = errors.New("streaming artifact url")
)

// segmentExtensions extends the container whitelist for the validity gate
// only: raw MPEG transport-stream segments are downloadable media even though
// ts is never reported as a candidate format.
var segmentExtensions = map[string]struct{}{"ts": {}}

// ValidateURL is the acceptance gate run before a candidate is built.
func ValidateURL(rawURL string, kind schemas.MediaKind) error {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return ErrEmptyURL
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return ErrDisallowedScheme
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	case "data", "blob":
		// Media elements can legitimately play from in-page object URLs;
		// frames and container sources cannot.
		if kind != schemas.KindDirectMedia {
			return ErrDisallowedScheme
		}
		return nil
	default:
		return ErrDisallowedScheme
	}

	if normalize.HasStreamMarker(rawURL) && !hasDownloadableExtension(u.Path) {
		return ErrStreamArtifact
	}
	return nil
}

func hasDownloadableExtension(p string) bool {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(p), "."))
	if ext == "" {
		return false
	}
	if normalize.IsMediaFormat(ext) {
		return true
	}
	_, ok := segmentExtensions[ext]
	return ok
}
