package normalize

import "regexp"

// Embed-platform URL patterns. Each platform mints several URL shapes for the
// same video; the captured group is the stable video ID.
var (
	youtubePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/)([a-zA-Z0-9_-]{11})`),
		regexp.MustCompile(`youtube\.com/embed/([a-zA-Z0-9_-]{11})`),
		regexp.MustCompile(`youtube\.com/v/([a-zA-Z0-9_-]{11})`),
	}
	vimeoPatterns = []*regexp.Regexp{
		regexp.MustCompile(`player\.vimeo\.com/video/(\d+)`),
		regexp.MustCompile(`vimeo\.com/video/(\d+)`),
		regexp.MustCompile(`vimeo\.com/(\d+)`),
	}
	dailymotionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`dailymotion\.com/embed/video/([a-zA-Z0-9]+)`),
		regexp.MustCompile(`dailymotion\.com/video/([a-zA-Z0-9]+)`),
	}
)

func firstMatch(patterns []*regexp.Regexp, rawURL string) string {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(rawURL); m != nil {
			return m[1]
		}
	}
	return ""
}

// YouTubeVideoID extracts the 11-character video ID from any known YouTube
// URL shape, or "" when the URL is not a YouTube video.
func YouTubeVideoID(rawURL string) string { return firstMatch(youtubePatterns, rawURL) }

// VimeoVideoID extracts the numeric video ID from a Vimeo URL.
func VimeoVideoID(rawURL string) string { return firstMatch(vimeoPatterns, rawURL) }

// DailymotionVideoID extracts the video ID from a Dailymotion URL.
func DailymotionVideoID(rawURL string) string { return firstMatch(dailymotionPatterns, rawURL) }

// PlatformVideoID tries each supported platform in turn and returns the first
// video ID found, or "" for non-platform URLs.
func PlatformVideoID(rawURL string) string {
	if id := YouTubeVideoID(rawURL); id != "" {
		return id
	}
	if id := VimeoVideoID(rawURL); id != "" {
		return id
	}
	return DailymotionVideoID(rawURL)
}
