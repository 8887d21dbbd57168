// Package render converts markdown source into HTML that is safe to insert
// into the preview verbatim. Rendering is a pure function of the source text
// and the renderer's fixed configuration: it never fails, and identical input
// produces byte-identical output.
package render

import (
	"bytes"
	"html"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/markpad/markpad/internal/diagram"
)

// Result is the derived output for one document state.
type Result struct {
	HTML     string
	Diagrams []diagram.Block
}

// Renderer is safe for concurrent use; it holds no per-render state.
type Renderer struct {
	md goldmark.Markdown
}

func New() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.Table,
				extension.Strikethrough,
				extension.TaskList,
				extension.Linkify,
				highlighting.NewHighlighting(
					highlighting.WithStyle("github"),
					highlighting.WithGuessLanguage(true),
					highlighting.WithFormatOptions(chromahtml.WithClasses(true)),
				),
				diagram.Extender{},
			),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(gmhtml.WithHardWraps(), gmhtml.WithUnsafe()),
		),
	}
}

// Render produces sanitized HTML plus the detected diagram blocks. Any
// internal parse failure degrades to an escaped plain-text rendering of the
// source; the caller never sees an error.
//
// WithUnsafe above only widens what goldmark emits (raw inline HTML in the
// source); everything is forced through the allow-list policy afterwards, so
// the final output contains no tag or attribute outside the lists in
// sanitize.go. Diagram placeholders are emitted by our own renderer and are
// the one construct the policy is taught to keep.
func (r *Renderer) Render(source string) Result {
	blocks := diagram.Detect(source)

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(source), &buf); err != nil {
		return Result{
			HTML:     "<pre>" + html.EscapeString(source) + "</pre>",
			Diagrams: blocks,
		}
	}
	return Result{
		HTML:     sanitize(buf.String()),
		Diagrams: blocks,
	}
}
