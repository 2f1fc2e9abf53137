// internal/notion/types.go
package notion

// Wire types for the subset of the Notion block model the bridge writes.

type richText struct {
	Type        string       `json:"type"`
	Text        textContent  `json:"text"`
	Annotations *annotations `json:"annotations,omitempty"`
}

type textContent struct {
	Content string    `json:"content"`
	Link    *textLink `json:"link,omitempty"`
}

type textLink struct {
	URL string `json:"url"`
}

type annotations struct {
	Bold bool `json:"bold,omitempty"`
}

type block struct {
	Object    string     `json:"object"`
	Type      string     `json:"type"`
	Paragraph *paragraph `json:"paragraph,omitempty"`
	Image     *image     `json:"image,omitempty"`
}

type paragraph struct {
	RichText []richText `json:"rich_text"`
	Color    string     `json:"color,omitempty"`
}

type image struct {
	Type     string      `json:"type"`
	External externalURL `json:"external"`
}

type externalURL struct {
	URL string `json:"url"`
}
