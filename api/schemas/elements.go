package schemas

// ElementDescriptor is the engine's view of one matching page element, as
// supplied by a DOM query provider. It carries everything the extractor needs
// so that candidate building never touches the live document.
type ElementDescriptor struct {
	Kind MediaKind `json:"kind"`

	// SourceAttr is the element's declared source attribute (src).
	SourceAttr string `json:"source_attr"`
	// CurrentSrc is the currently playing URL of a media element, if any.
	// Preferred over SourceAttr for direct-media candidates.
	CurrentSrc string `json:"current_src,omitempty"`

	// MediaType is the declared MIME type (the type attribute), if present.
	MediaType string `json:"media_type,omitempty"`

	// Title sources, in descending priority. The extractor walks these and
	// falls back to a fixed default when all are empty.
	TitleAttr     string `json:"title_attr,omitempty"`
	AltAttr       string `json:"alt_attr,omitempty"`
	AriaLabel     string `json:"aria_label,omitempty"`
	NearbyHeading string `json:"nearby_heading,omitempty"`
	DocumentTitle string `json:"document_title,omitempty"`

	// Thumbnail sources, in descending priority.
	PosterAttr     string `json:"poster_attr,omitempty"`
	NearbyImageURL string `json:"nearby_image_url,omitempty"`
	PageImageURL   string `json:"page_image_url,omitempty"`

	Width           int     `json:"width,omitempty"`
	Height          int     `json:"height,omitempty"`
	DurationSeconds float64 `json:"duration_seconds,omitempty"`
}
