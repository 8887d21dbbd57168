package render

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

// The allow-lists below are the renderer's fixed configuration. Anything
// outside them is stripped, never escaped-and-kept.
var policy = buildPolicy()

func buildPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()

	p.AllowElements(
		"h1", "h2", "h3", "h4", "h5", "h6",
		"p", "br", "strong", "em", "del",
		"ul", "ol", "li", "blockquote",
		"pre", "code", "span", "a", "img", "hr",
		"table", "thead", "tbody", "tr", "th", "td",
		"input",
	)
	p.AllowAttrs("class", "id", "title").Globally()
	p.AllowAttrs("href").OnElements("a")
	p.AllowAttrs("src", "alt").OnElements("img")
	p.AllowAttrs("type", "checked", "disabled").OnElements("input")

	p.AllowURLSchemes("http", "https", "mailto")
	p.AllowRelativeURLs(true)
	p.AllowDataURIImages()

	// Diagram placeholders are generated by our own renderer, never by user
	// markup; they are the only divs that survive.
	p.AllowAttrs("data-token").OnElements("div")
	p.AllowAttrs("class").
		Matching(regexp.MustCompile(`^mermaid-diagram( mermaid-pending)?$`)).
		OnElements("div")

	return p
}

func sanitize(html string) string {
	return policy.Sanitize(html)
}
