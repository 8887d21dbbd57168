package render

import (
	"strings"
	"testing"

	"github.com/markpad/markpad/internal/diagram"
)

func TestRenderBasicMarkdown(t *testing.T) {
	r := New()
	out := r.Render("# Title\n\n**bold** and *italic* and ~~gone~~\n")
	for _, want := range []string{"<h1", "Title", "<strong>bold</strong>", "<em>italic</em>", "<del>gone</del>"} {
		if !strings.Contains(out.HTML, want) {
			t.Fatalf("missing %q in:\n%s", want, out.HTML)
		}
	}
}

func TestRenderStripsScriptAndEventHandlers(t *testing.T) {
	r := New()
	out := r.Render("**bold** and <img src=x onerror=alert(1)>\n\n<script>alert(2)</script>\n")
	if !strings.Contains(out.HTML, "<strong>bold</strong>") {
		t.Fatalf("markdown lost during sanitization:\n%s", out.HTML)
	}
	if strings.Contains(out.HTML, "onerror") {
		t.Fatalf("onerror survived sanitization:\n%s", out.HTML)
	}
	if strings.Contains(out.HTML, "<script") {
		t.Fatalf("script tag survived sanitization:\n%s", out.HTML)
	}
}

func TestRenderIdempotent(t *testing.T) {
	r := New()
	src := "# A\n\n- [x] done\n- [ ] todo\n\n```go\nfunc main() {}\n```\n\n| a | b |\n|---|---|\n| 1 | 2 |\n"
	first := r.Render(src)
	second := r.Render(src)
	if first.HTML != second.HTML {
		t.Fatalf("re-rendering identical text changed output")
	}
}

func TestRenderGFM(t *testing.T) {
	r := New()
	out := r.Render("| a | b |\n|---|---|\n| 1 | 2 |\n\n- [x] done\n\nvisit https://example.com\n")
	for _, want := range []string{"<table>", "<th>a</th>", "checkbox", `href="https://example.com"`} {
		if !strings.Contains(out.HTML, want) {
			t.Fatalf("missing %q in:\n%s", want, out.HTML)
		}
	}
}

func TestRenderHardWraps(t *testing.T) {
	r := New()
	out := r.Render("line one\nline two\n")
	if !strings.Contains(out.HTML, "<br") {
		t.Fatalf("single newline should become a line break:\n%s", out.HTML)
	}
}

func TestRenderHighlightsKnownLanguage(t *testing.T) {
	r := New()
	out := r.Render("```go\nfunc main() {}\n```\n")
	if !strings.Contains(out.HTML, "<span") {
		t.Fatalf("go fence should be highlighted:\n%s", out.HTML)
	}
}

func TestRenderUnknownLanguageDegradesToPlainCode(t *testing.T) {
	r := New()
	out := r.Render("```zzznotalanguage\nplain text here\n```\n")
	if !strings.Contains(out.HTML, "plain text here") {
		t.Fatalf("code content lost:\n%s", out.HTML)
	}
	if !strings.Contains(out.HTML, "<pre") {
		t.Fatalf("expected a pre block:\n%s", out.HTML)
	}
}

func TestRenderEmitsDiagramPlaceholder(t *testing.T) {
	r := New()
	code := "graph TD\n  A[Edit] --> B(Ship)"
	out := r.Render("before\n\n```mermaid\n" + code + "\n```\n\nafter\n")
	if len(out.Diagrams) != 1 {
		t.Fatalf("diagrams = %d, want 1", len(out.Diagrams))
	}
	tok := out.Diagrams[0].Token
	if tok != diagram.TokenFor(code) {
		t.Fatalf("detection token %q does not match content token", tok)
	}
	if !strings.Contains(out.HTML, `data-token="`+tok+`"`) {
		t.Fatalf("rendered HTML missing placeholder for token %s:\n%s", tok, out.HTML)
	}
	if !strings.Contains(out.HTML, "mermaid-pending") {
		t.Fatalf("placeholder should start in the pending state:\n%s", out.HTML)
	}

	// The resolved SVG splices in by token.
	final := diagram.ApplyAll(out.HTML, out.Diagrams)
	if strings.Contains(final, "mermaid-pending") {
		t.Fatalf("pending placeholder left after splice:\n%s", final)
	}
	if !strings.Contains(final, "<svg") {
		t.Fatalf("spliced output missing svg:\n%s", final)
	}
}

func TestRenderResolvesIndentedDiagramFence(t *testing.T) {
	r := New()
	out := r.Render("- item\n\n  ```mermaid\n  graph TD\n  A --> B\n  ```\n")
	if len(out.Diagrams) != 1 {
		t.Fatalf("diagrams = %d, want 1", len(out.Diagrams))
	}
	final := diagram.ApplyAll(out.HTML, out.Diagrams)
	if strings.Contains(final, "mermaid-pending") {
		t.Fatalf("indented fence left pending after splice:\n%s", final)
	}

	out = r.Render("```mermaid title\ngraph LR\nA --> B\n```\n")
	if len(out.Diagrams) != 1 {
		t.Fatalf("titled fence: diagrams = %d, want 1", len(out.Diagrams))
	}
	final = diagram.ApplyAll(out.HTML, out.Diagrams)
	if strings.Contains(final, "mermaid-pending") {
		t.Fatalf("titled fence left pending after splice:\n%s", final)
	}
}

func TestRenderInvalidDiagramBecomesErrorPanel(t *testing.T) {
	r := New()
	out := r.Render("```mermaid\nnot a graph\n```\n")
	final := diagram.ApplyAll(out.HTML, out.Diagrams)
	if !strings.Contains(final, "mermaid-error") {
		t.Fatalf("invalid diagram should splice an error panel:\n%s", final)
	}
	if !strings.Contains(final, "<details>") {
		t.Fatalf("error panel should carry the collapsed source:\n%s", final)
	}
}

func TestRenderKeepsDataImageURLs(t *testing.T) {
	r := New()
	out := r.Render("![shot](data:image/jpeg;base64,AAAA)\n")
	if !strings.Contains(out.HTML, "data:image/jpeg;base64,AAAA") {
		t.Fatalf("data URI image should survive sanitization:\n%s", out.HTML)
	}
}

func TestRenderStripsUnknownTagsKeepsText(t *testing.T) {
	r := New()
	out := r.Render("a <marquee>b</marquee> c\n")
	if strings.Contains(out.HTML, "marquee") {
		t.Fatalf("unknown tag survived:\n%s", out.HTML)
	}
	if !strings.Contains(out.HTML, "b") {
		t.Fatalf("inner text should be kept:\n%s", out.HTML)
	}
}
