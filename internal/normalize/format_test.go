package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatFromURL(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"whitelisted extension", "https://cdn.example.com/videos/clip.mp4", "mp4"},
		{"case insensitive", "https://cdn.example.com/videos/CLIP.MP4", "mp4"},
		{"segment extension not a format", "https://cdn.example.com/stream/42.ts", ""},
		{"no extension", "https://cdn.example.com/videos/clip", ""},
		{"extension in query ignored", "https://cdn.example.com/play?file=clip.mp4", ""},
		{"unparseable", "http://%zz", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatFromURL(tc.in))
		})
	}
}

func TestFormatFromMediaType(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain type", "video/mp4", "mp4"},
		{"codec parameters stripped", "video/webm; codecs=\"vp9\"", "webm"},
		{"mixed case", "Video/QuickTime", "mov"},
		{"manifest type unrecognized", "application/x-mpegurl", ""},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatFromMediaType(tc.in))
		})
	}
}

func TestIsMediaFormat(t *testing.T) {
	assert.True(t, IsMediaFormat("mp4"))
	assert.True(t, IsMediaFormat("MKV"))
	assert.False(t, IsMediaFormat("ts"))
	assert.False(t, IsMediaFormat(""))
}

func TestHasStreamMarker(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want bool
	}{
		{"hls playlist", "https://cdn.example.com/hls/playlist.m3u8", true},
		{"dash manifest", "https://cdn.example.com/dash/manifest.mpd", true},
		{"segment directory", "https://cdn.example.com/segments/42.ts", true},
		{"chunked path", "https://cdn.example.com/chunk/7", true},
		{"plain asset", "https://cdn.example.com/videos/clip.mp4", false},
		{"marker only in query", "https://cdn.example.com/clip.mp4?type=manifest", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, HasStreamMarker(tc.in))
		})
	}
}
