package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xkilldash9x/mediagrab-cli/api/schemas"
)

func TestQualityLabel(t *testing.T) {
	testCases := []struct {
		height int
		want   string
	}{
		{4320, "4K"},
		{2160, "4K"},
		{1440, "2K"},
		{1080, "1080p"},
		{720, "720p"},
		{480, "480p"},
		{360, "360p"},
		{240, "240p"},
		{144, "144p"},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, QualityLabel(tc.height), "height %d", tc.height)
	}
}

func TestPlatformThumbnailURL(t *testing.T) {
	testCases := []struct {
		name string
		url  string
		want string
	}{
		{
			name: "youtube embed",
			url:  "https://www.youtube.com/embed/dQw4w9WgXcQ",
			want: "https://img.youtube.com/vi/dQw4w9WgXcQ/maxresdefault.jpg",
		},
		{
			name: "vimeo player",
			url:  "https://player.vimeo.com/video/76979871",
			want: "https://vumbnail.com/76979871.jpg",
		},
		{
			name: "dailymotion embed",
			url:  "https://www.dailymotion.com/embed/video/x8abcd1",
			want: "https://www.dailymotion.com/thumbnail/video/x8abcd1",
		},
		{
			name: "unknown host",
			url:  "https://video.example.com/embed/123456",
			want: "",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, PlatformThumbnailURL(tc.url))
		})
	}
}

func TestSuggestedFileName(t *testing.T) {
	testCases := []struct {
		name string
		rec  schemas.CandidateRecord
		want string
	}{
		{
			name: "title and known format",
			rec:  schemas.CandidateRecord{Title: "Ocean Documentary", Format: "webm"},
			want: "Ocean_Documentary.webm",
		},
		{
			name: "unknown format defaults to mp4",
			rec:  schemas.CandidateRecord{Title: "Clip", Format: schemas.FormatUnknown},
			want: "Clip.mp4",
		},
		{
			name: "unsafe characters stripped",
			rec:  schemas.CandidateRecord{Title: `My <Clip>: "Part/2"?`, Format: "mp4"},
			want: "My_Clip_Part2.mp4",
		},
		{
			name: "empty title falls back",
			rec:  schemas.CandidateRecord{Title: "!!!", Format: "mp4"},
			want: "video.mp4",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SuggestedFileName(&tc.rec))
		})
	}
}
