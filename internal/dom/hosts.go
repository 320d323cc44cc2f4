// Package dom provides the DOM query capability: a live querier driving a
// headless browser and a static querier over parsed HTML. Both return the
// same element descriptors, so the engine never knows which one fed it.
package dom

import (
	"net/url"
	"strings"
)

// embedHosts are the frame hosts recognized as media embeds. A frame from
// any other host is ignored; pages embed ads and widgets far more often than
// video players.
var embedHosts = []string{
	"youtube.com",
	"youtube-nocookie.com",
	"youtu.be",
	"vimeo.com",
	"player.vimeo.com",
	"dailymotion.com",
}

// IsEmbedHost reports whether rawURL points at a known media embed host.
func IsEmbedHost(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, h := range embedHosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}
