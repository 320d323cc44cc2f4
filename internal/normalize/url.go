// Package normalize turns raw URLs and titles into canonical comparison keys.
// Everything here is a pure function: no I/O, no logging, and failures are
// absorbed by returning the input unchanged (fail-open) so that a malformed
// URL can still flow through the duplicate detector as an opaque string.
package normalize

import (
	"net/url"
	"path"
	"regexp"
	"strings"
)

// identityParams are the only query keys that carry resource identity.
// Everything else (tracking, signatures, expiry tokens) is noise that makes
// logically identical URLs compare unequal.
var identityParams = map[string]struct{}{
	"v": {}, "id": {}, "video_id": {}, "media_id": {},
}

// hashParams are query keys whose values commonly carry a content hash.
var hashParams = []string{"hash", "md5", "sha1", "sha256", "id", "token"}

var (
	numericRe   = regexp.MustCompile(`^\d+$`)
	segmentRe   = regexp.MustCompile(`(?i)^(?:segment|chunk|fragment|part)_?\d*$`)
	compositeRe = regexp.MustCompile(`^\d+_\d+$`)
	uuidRe      = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
	hexRe       = regexp.MustCompile(`^[0-9a-fA-F]+$`)
	alnumRe     = regexp.MustCompile(`^[0-9a-zA-Z]+$`)
)

// URL canonicalizes a raw URL for duplicate comparison. It drops the
// fragment, keeps only identity-bearing query parameters, and strips a
// trailing segment/timestamp path element that adaptive-streaming delivery
// mints per time slice for what is logically one asset.
//
// On parse failure the input is returned unchanged; URL never fails.
// The function is idempotent.
func URL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	u.Fragment = ""

	if u.RawQuery != "" {
		kept := url.Values{}
		for key, vals := range u.Query() {
			if _, ok := identityParams[strings.ToLower(key)]; ok {
				kept[key] = vals
			}
		}
		u.RawQuery = kept.Encode()
	}

	u.Path = stripSegmentSuffix(u.Path)

	return u.String()
}

// stripSegmentSuffix removes the last path element when it looks like a
// streaming segment or time slice. Only the trailing element is considered;
// interior directories are identity-bearing.
func stripSegmentSuffix(p string) string {
	if p == "" || strings.HasSuffix(p, "/") {
		return p
	}
	last := path.Base(p)
	if !IsSegmentToken(last) {
		return p
	}
	return p[:len(p)-len(last)]
}

// IsSegmentToken reports whether a path element names a rotating stream
// segment rather than a stable asset. A file extension is stripped before
// matching the numeric shapes; the bare hash-token shape only applies to
// extension-less elements, so hash-named media files keep their name.
func IsSegmentToken(elem string) bool {
	if elem == "" {
		return false
	}
	stem := elem
	hasExt := false
	if ext := path.Ext(elem); ext != "" && ext != elem {
		stem = strings.TrimSuffix(elem, ext)
		hasExt = true
	}
	if stem == "" {
		return false
	}
	if numericRe.MatchString(stem) || segmentRe.MatchString(stem) || compositeRe.MatchString(stem) {
		return true
	}
	if !hasExt && len(stem) >= 8 && IsHashLikeToken(stem) {
		return true
	}
	return false
}

// IsHashLikeToken reports whether a token resembles an opaque content hash or
// UUID rather than a human-meaningful name. It accepts UUIDs, hex digests of
// the common lengths (MD5/SHA1/SHA256), and any alphanumeric token of length
// >= 8 with enough character diversity to rule out degenerate repeats.
func IsHashLikeToken(token string) bool {
	if uuidRe.MatchString(token) {
		return true
	}
	if hexRe.MatchString(token) {
		switch len(token) {
		case 32, 40, 64:
			return true
		}
	}
	if len(token) < 8 || !alnumRe.MatchString(token) {
		return false
	}

	freq := make(map[rune]int, len(token))
	maxCount := 0
	for _, r := range token {
		freq[r]++
		if freq[r] > maxCount {
			maxCount = freq[r]
		}
	}
	diversity := float64(len(freq)) / float64(len(token))
	if diversity < 0.3 {
		return false
	}
	if float64(maxCount) > 0.5*float64(len(token)) {
		return false
	}
	return true
}

// FileName extracts the last path element of a URL, query and fragment
// stripped. Returns "" when the URL has no usable path.
func FileName(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		// Fall back to treating the input as a bare path.
		if i := strings.IndexAny(raw, "?#"); i >= 0 {
			raw = raw[:i]
		}
		u = &url.URL{Path: raw}
	}
	p := strings.TrimSuffix(u.Path, "/")
	if p == "" {
		return ""
	}
	name := path.Base(p)
	if name == "/" || name == "." {
		return ""
	}
	return name
}

// StemFileName strips the extension off a filename for extension-insensitive
// comparison.
func StemFileName(name string) string {
	if ext := path.Ext(name); ext != "" && ext != name {
		return strings.TrimSuffix(name, ext)
	}
	return name
}

// HashToken extracts a hash-like token from a URL, looking first at path
// segments and then at the values of known hash-bearing query keys.
// Returns "" when none is found.
func HashToken(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	for _, seg := range strings.Split(u.Path, "/") {
		if seg == "" {
			continue
		}
		if IsHashLikeToken(StemFileName(seg)) {
			return StemFileName(seg)
		}
	}
	q := u.Query()
	for _, key := range hashParams {
		if val := q.Get(key); val != "" && IsHashLikeToken(val) {
			return val
		}
	}
	return ""
}
