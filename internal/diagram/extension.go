package diagram

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Placeholder is the AST node that replaces a mermaid code fence. Carrying
// the token through the AST is what lets resolved diagrams be spliced back
// by identity instead of by order of appearance.
type Placeholder struct {
	gast.BaseBlock
	Token string
	Code  string
}

// KindPlaceholder identifies Placeholder nodes.
var KindPlaceholder = gast.NewNodeKind("DiagramPlaceholder")

func (n *Placeholder) Kind() gast.NodeKind { return KindPlaceholder }

func (n *Placeholder) Dump(source []byte, level int) {
	gast.DumpHelper(n, source, level, map[string]string{"Token": n.Token}, nil)
}

type transformer struct{}

func (transformer) Transform(doc *gast.Document, reader text.Reader, pc parser.Context) {
	source := reader.Source()
	var fences []*gast.FencedCodeBlock
	_ = gast.Walk(doc, func(n gast.Node, entering bool) (gast.WalkStatus, error) {
		if !entering {
			return gast.WalkContinue, nil
		}
		if fc, ok := n.(*gast.FencedCodeBlock); ok && string(fc.Language(source)) == Language {
			fences = append(fences, fc)
		}
		return gast.WalkContinue, nil
	})
	for _, fc := range fences {
		code := fenceContent(fc, source)
		node := &Placeholder{Token: TokenFor(code), Code: code}
		parent := fc.Parent()
		parent.ReplaceChild(parent, fc, node)
	}
}

func fenceContent(fc *gast.FencedCodeBlock, source []byte) string {
	var b strings.Builder
	lines := fc.Lines()
	for i := 0; i < lines.Len(); i++ {
		s := lines.At(i)
		b.Write(source[s.Start:s.Stop])
	}
	return strings.TrimRight(b.String(), "\n")
}

type placeholderRenderer struct{}

func (r placeholderRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindPlaceholder, r.render)
}

func (r placeholderRenderer) render(w util.BufWriter, source []byte, node gast.Node, entering bool) (gast.WalkStatus, error) {
	if !entering {
		return gast.WalkContinue, nil
	}
	p := node.(*Placeholder)
	fmt.Fprintf(w, "<div class=\"mermaid-diagram mermaid-pending\" data-token=%q><pre>Rendering diagram...</pre></div>\n", p.Token)
	return gast.WalkSkipChildren, nil
}

// Extender wires the diagram transformer and placeholder renderer into a
// goldmark instance.
type Extender struct{}

func (Extender) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithASTTransformers(util.Prioritized(transformer{}, 100)))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(util.Prioritized(placeholderRenderer{}, 100)))
}
