package dom

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xkilldash9x/mediagrab-cli/api/schemas"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
  <title>Clips Archive</title>
  <meta property="og:image" content="https://site.example.com/preview.jpg">
</head>
<body>
  <h2>Spring Keynote</h2>
  <video src="https://cdn.example.com/v/keynote.mp4" poster="https://cdn.example.com/v/keynote.jpg"
         title="Keynote Recording" width="1920" height="1080">
    <source src="https://cdn.example.com/v/keynote.webm" type="video/webm">
    <source src="https://cdn.example.com/v/keynote.ogv" type="video/ogg">
  </video>
  <iframe src="https://www.youtube.com/embed/dQw4w9WgXcQ" title="Embedded Clip"></iframe>
  <iframe src="https://ads.example.net/banner"></iframe>
  <audio></audio>
</body>
</html>`

func staticQuery(t *testing.T, page string) []schemas.ElementDescriptor {
	t.Helper()
	q, err := NewStaticQuerier(zap.NewNop(), strings.NewReader(page))
	require.NoError(t, err)
	descs, err := q.Query(context.Background())
	require.NoError(t, err)
	return descs
}

func TestStaticQuerierCollectsElements(t *testing.T) {
	descs := staticQuery(t, samplePage)
	require.Len(t, descs, 4, "video, two sources, one embed frame")

	video := descs[0]
	assert.Equal(t, schemas.KindDirectMedia, video.Kind)
	assert.Equal(t, "https://cdn.example.com/v/keynote.mp4", video.SourceAttr)
	assert.Equal(t, "Keynote Recording", video.TitleAttr)
	assert.Equal(t, "Spring Keynote", video.NearbyHeading)
	assert.Equal(t, "Clips Archive", video.DocumentTitle)
	assert.Equal(t, "https://cdn.example.com/v/keynote.jpg", video.PosterAttr)
	assert.Equal(t, "https://site.example.com/preview.jpg", video.PageImageURL)
	assert.Equal(t, 1920, video.Width)
	assert.Equal(t, 1080, video.Height)

	webm := descs[1]
	assert.Equal(t, schemas.KindContainerSource, webm.Kind)
	assert.Equal(t, "https://cdn.example.com/v/keynote.webm", webm.SourceAttr)
	assert.Equal(t, "video/webm", webm.MediaType)
	assert.Equal(t, "Spring Keynote", webm.NearbyHeading, "sources inherit the element context")

	assert.Equal(t, schemas.KindContainerSource, descs[2].Kind)

	frame := descs[3]
	assert.Equal(t, schemas.KindEmbeddedFrame, frame.Kind)
	assert.Equal(t, "https://www.youtube.com/embed/dQw4w9WgXcQ", frame.SourceAttr)
	assert.Equal(t, "Embedded Clip", frame.TitleAttr)
}

func TestStaticQuerierSkipsNonEmbedFrames(t *testing.T) {
	descs := staticQuery(t, `<html><body>
		<iframe src="https://ads.example.net/banner"></iframe>
		<iframe src="https://player.vimeo.com/video/76979871"></iframe>
	</body></html>`)
	require.Len(t, descs, 1)
	assert.Equal(t, "https://player.vimeo.com/video/76979871", descs[0].SourceAttr)
}

func TestStaticQuerierSourcelessMediaIgnored(t *testing.T) {
	descs := staticQuery(t, `<html><body><video></video><audio></audio></body></html>`)
	assert.Empty(t, descs)
}

func TestStaticQuerierIsRepeatable(t *testing.T) {
	q, err := NewStaticQuerier(zap.NewNop(), strings.NewReader(samplePage))
	require.NoError(t, err)

	first, err := q.Query(context.Background())
	require.NoError(t, err)
	second, err := q.Query(context.Background())
	require.NoError(t, err)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("repeated queries diverged (-first +second):\n%s", diff)
	}
}

func TestIsEmbedHost(t *testing.T) {
	testCases := []struct {
		url  string
		want bool
	}{
		{"https://www.youtube.com/embed/dQw4w9WgXcQ", true},
		{"https://youtu.be/dQw4w9WgXcQ", true},
		{"https://player.vimeo.com/video/1", true},
		{"https://www.dailymotion.com/embed/video/x1", true},
		{"https://ads.example.net/banner", false},
		{"https://notyoutube.com/embed/x", false},
		{"://bad", false},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, IsEmbedHost(tc.url), tc.url)
	}
}
