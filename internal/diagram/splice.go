package diagram

import (
	"fmt"
	"html"
	"regexp"
)

// Resolved is the outcome of rendering one diagram block: either the SVG or
// an inline error panel.
type Resolved struct {
	Token string
	HTML  string
	Err   error
}

// RenderAll resolves every distinct block asynchronously, one goroutine per
// block. The channel closes after the last block resolves; each result can
// be applied independently, so early diagrams appear while later ones are
// still pending.
func RenderAll(blocks []Block) <-chan Resolved {
	distinct := make([]Block, 0, len(blocks))
	seen := make(map[string]struct{}, len(blocks))
	for _, b := range blocks {
		if _, dup := seen[b.Token]; dup {
			continue
		}
		seen[b.Token] = struct{}{}
		distinct = append(distinct, b)
	}

	out := make(chan Resolved, len(distinct))
	done := make(chan struct{}, len(distinct))
	for _, b := range distinct {
		go func(b Block) {
			defer func() { done <- struct{}{} }()
			svg, err := Render(b.Code)
			if err != nil {
				out <- Resolved{Token: b.Token, HTML: ErrorPanel(err, b.Code), Err: err}
				return
			}
			out <- Resolved{Token: b.Token, HTML: svg}
		}(b)
	}
	go func() {
		for range distinct {
			<-done
		}
		close(out)
	}()
	return out
}

// ErrorPanel renders the inline panel shown instead of an invalid diagram:
// the message up front, the original source collapsed behind a toggle.
func ErrorPanel(err error, code string) string {
	return fmt.Sprintf(
		`<div class="mermaid-error"><p class="mermaid-error-title">Diagram error: %s</p>`+
			`<details><summary>Show diagram code</summary><pre>%s</pre></details></div>`,
		html.EscapeString(err.Error()), html.EscapeString(code))
}

// Apply splices one resolved diagram into rendered HTML, replacing every
// placeholder carrying the same token. Unmatched tokens leave the HTML
// untouched.
func Apply(rendered string, r Resolved) string {
	re := regexp.MustCompile(`(?s)<div class="mermaid-diagram mermaid-pending" data-token="` +
		regexp.QuoteMeta(r.Token) + `">.*?</div>`)
	repl := fmt.Sprintf("<div class=\"mermaid-diagram\" data-token=%q>%s</div>", r.Token, r.HTML)
	return re.ReplaceAllString(rendered, repl)
}

// ApplyAll resolves and splices every block synchronously. The headless
// export and render paths use it; the UI consumes RenderAll incrementally.
func ApplyAll(rendered string, blocks []Block) string {
	for r := range RenderAll(blocks) {
		rendered = Apply(rendered, r)
	}
	return rendered
}
