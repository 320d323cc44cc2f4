package dom

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/xkilldash9x/mediagrab-cli/api/schemas"
)

// StaticQuerier extracts element descriptors from an HTML document without a
// browser. Dynamic state (currentSrc, loaded metadata dimensions) is not
// available on this path; those fields stay empty.
type StaticQuerier struct {
	log     *zap.Logger
	content []byte
}

// NewStaticQuerier reads the whole document from r up front so Query is
// repeatable.
func NewStaticQuerier(log *zap.Logger, r io.Reader) (*StaticQuerier, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return &StaticQuerier{log: log.Named("dom.static"), content: content}, nil
}

// Query implements schemas.DOMQuerier.
func (q *StaticQuerier) Query(ctx context.Context) ([]schemas.ElementDescriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	root, err := html.Parse(strings.NewReader(string(q.content)))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	w := &walker{
		docTitle:  findTitle(root),
		pageImage: findMetaImage(root),
	}
	w.walk(root)
	q.log.Debug("static query complete", zap.Int("elements", len(w.out)))
	return w.out, nil
}

type walker struct {
	docTitle    string
	pageImage   string
	lastHeading string
	out         []schemas.ElementDescriptor
}

func (w *walker) walk(n *html.Node) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "h1", "h2", "h3", "h4":
			if t := strings.TrimSpace(textContent(n)); t != "" {
				w.lastHeading = t
			}
		case "video", "audio":
			w.visitMedia(n)
			// visitMedia walks the children itself for nested sources.
			return
		case "iframe":
			w.visitFrame(n)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}
}

func (w *walker) visitMedia(n *html.Node) {
	base := schemas.ElementDescriptor{
		Kind:          schemas.KindDirectMedia,
		SourceAttr:    attr(n, "src"),
		TitleAttr:     attr(n, "title"),
		AltAttr:       attr(n, "alt"),
		AriaLabel:     attr(n, "aria-label"),
		NearbyHeading: w.lastHeading,
		DocumentTitle: w.docTitle,
		PosterAttr:    attr(n, "poster"),
		PageImageURL:  w.pageImage,
		Width:         attrInt(n, "width"),
		Height:        attrInt(n, "height"),
	}
	if base.SourceAttr != "" {
		w.out = append(w.out, base)
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.Data != "source" {
			continue
		}
		src := attr(c, "src")
		if src == "" {
			continue
		}
		desc := base
		desc.Kind = schemas.KindContainerSource
		desc.SourceAttr = src
		desc.MediaType = attr(c, "type")
		w.out = append(w.out, desc)
	}
}

func (w *walker) visitFrame(n *html.Node) {
	src := attr(n, "src")
	if src == "" || !IsEmbedHost(src) {
		return
	}
	w.out = append(w.out, schemas.ElementDescriptor{
		Kind:          schemas.KindEmbeddedFrame,
		SourceAttr:    src,
		TitleAttr:     attr(n, "title"),
		AriaLabel:     attr(n, "aria-label"),
		NearbyHeading: w.lastHeading,
		DocumentTitle: w.docTitle,
		PageImageURL:  w.pageImage,
		Width:         attrInt(n, "width"),
		Height:        attrInt(n, "height"),
	})
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, name) {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

func attrInt(n *html.Node, name string) int {
	v, err := strconv.Atoi(attr(n, name))
	if err != nil {
		return 0
	}
	return v
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var rec func(*html.Node)
	rec = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			rec(c)
		}
	}
	rec(n)
	return b.String()
}

func findTitle(root *html.Node) string {
	var title string
	var rec func(*html.Node) bool
	rec = func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "title" {
			title = strings.TrimSpace(textContent(n))
			return true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if rec(c) {
				return true
			}
		}
		return false
	}
	rec(root)
	return title
}

// findMetaImage returns the og:image or twitter:image content, the page-level
// preview used as a last-resort thumbnail.
func findMetaImage(root *html.Node) string {
	var image string
	var rec func(*html.Node)
	rec = func(n *html.Node) {
		if image != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "meta" {
			prop := attr(n, "property")
			if prop == "" {
				prop = attr(n, "name")
			}
			if prop == "og:image" || prop == "twitter:image" {
				image = attr(n, "content")
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			rec(c)
		}
	}
	rec(root)
	return image
}
