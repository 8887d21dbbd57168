package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/markpad/markpad/internal/diagram"
)

// previewRenderer returns a function that renders markdown for the preview
// viewport at the given width. The glamour renderer is built per call so a
// resize picks up the new wrap width.
func (m *model) previewRenderer(width int) func(string) string {
	style := glamourStyle(m.app.Settings.Theme)
	if width < 10 {
		width = 10
	}
	return func(source string) string {
		source = annotateDiagrams(source)
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return source
		}
		out, err := r.Render(source)
		if err != nil {
			return source
		}
		return out
	}
}

// glamourStyle maps the editor theme onto glamour's built-in styles.
func glamourStyle(theme string) string {
	switch theme {
	case "light", "solarized-light":
		return "light"
	default:
		return "dark"
	}
}

// annotateDiagrams labels each diagram fence with its node/edge summary so
// the terminal preview shows what the fence describes instead of raw syntax.
func annotateDiagrams(source string) string {
	blocks := diagram.Detect(source)
	if len(blocks) == 0 {
		return source
	}
	// Insert back to front so earlier offsets stay valid. Block offsets point
	// at the code; the caption goes before the fence opener on the preceding
	// line.
	for i := len(blocks) - 1; i >= 0; i-- {
		b := blocks[i]
		if b.Offset < 0 || b.Offset > len(source) {
			continue
		}
		at := strings.LastIndex(source[:b.Offset], "```"+diagram.Language)
		if at < 0 {
			continue
		}
		g, err := diagram.Parse(b.Code)
		var caption string
		if err != nil {
			caption = "> Diagram error: " + err.Error()
		} else {
			caption = fmt.Sprintf("> Diagram: %d nodes, %d edges", len(g.Nodes), len(g.Edges))
		}
		source = source[:at] + caption + "\n\n" + source[at:]
	}
	return source
}
