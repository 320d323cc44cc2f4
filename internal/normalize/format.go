package normalize

import (
	"net/url"
	"path"
	"strings"
)

// mediaFormats is the whitelist of container formats a URL extension may
// declare. Anything else maps to "unknown".
var mediaFormats = map[string]struct{}{
	"mp4": {}, "webm": {}, "ogg": {}, "avi": {}, "mov": {},
	"wmv": {}, "flv": {}, "mkv": {}, "m4v": {}, "3gp": {},
}

// streamMarkers are path substrings that identify manifest, playlist or
// rotating-segment URLs for adaptive streaming.
var streamMarkers = []string{"manifest", "playlist", "m3u8", "mpd", "segment", "chunk", "fragment"}

// mimeFormats maps declared media MIME types to their container format.
var mimeFormats = map[string]string{
	"video/mp4":        "mp4",
	"video/webm":       "webm",
	"video/ogg":        "ogg",
	"video/avi":        "avi",
	"video/quicktime":  "mov",
	"video/x-ms-wmv":   "wmv",
	"video/x-flv":      "flv",
	"video/x-matroska": "mkv",
	"video/x-m4v":      "m4v",
	"video/3gpp":       "3gp",
}

// FormatFromURL returns the whitelisted container format named by the URL's
// path extension, or "" when the extension is absent or not whitelisted.
func FormatFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(u.Path), "."))
	if _, ok := mediaFormats[ext]; ok {
		return ext
	}
	return ""
}

// FormatFromMediaType maps a declared MIME type to a container format, or ""
// when the type is unrecognized.
func FormatFromMediaType(mediaType string) string {
	mt := strings.ToLower(strings.TrimSpace(mediaType))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	return mimeFormats[mt]
}

// IsMediaFormat reports whether ext (without dot) is a whitelisted container
// format.
func IsMediaFormat(ext string) bool {
	_, ok := mediaFormats[strings.ToLower(ext)]
	return ok
}

// HasStreamMarker reports whether the URL path contains a known
// manifest/playlist/segment/chunk/fragment marker.
func HasStreamMarker(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	p := strings.ToLower(u.Path)
	for _, marker := range streamMarkers {
		if strings.Contains(p, marker) {
			return true
		}
	}
	return false
}
