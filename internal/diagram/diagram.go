// Package diagram turns mermaid-style flowchart code fences into inline SVG.
// Detection runs over the raw markdown; each block is stamped with a token
// derived from its content, and the same token is emitted by the renderer
// placeholder, so resolved diagrams are spliced back by identity rather than
// by order of appearance.
package diagram

import (
	"encoding/hex"

	"github.com/yuin/goldmark"
	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"github.com/zeebo/blake3"
)

// Language is the code-fence tag that requests diagram rendering.
const Language = "mermaid"

// Block is one detected diagram fence.
type Block struct {
	Token  string
	Code   string
	Offset int // byte offset of the code within the source markdown
}

var detectParser = goldmark.New().Parser()

// Detect scans raw markdown for diagram fences. It walks the same parsed
// form the renderer's transformer sees, so every emitted placeholder has a
// matching block: indented fences and fences with trailing info-string text
// count on both sides or on neither.
func Detect(source string) []Block {
	src := []byte(source)
	doc := detectParser.Parse(text.NewReader(src))
	var blocks []Block
	_ = gast.Walk(doc, func(n gast.Node, entering bool) (gast.WalkStatus, error) {
		if !entering {
			return gast.WalkContinue, nil
		}
		fc, ok := n.(*gast.FencedCodeBlock)
		if !ok || string(fc.Language(src)) != Language {
			return gast.WalkContinue, nil
		}
		code := fenceContent(fc, src)
		off := len(src)
		if fc.Lines().Len() > 0 {
			off = fc.Lines().At(0).Start
		}
		blocks = append(blocks, Block{Token: TokenFor(code), Code: code, Offset: off})
		return gast.WalkContinue, nil
	})
	return blocks
}

// TokenFor derives the stable splice token for a diagram's code. Identical
// fences share a token; they render identically, so one resolution serves
// every occurrence.
func TokenFor(code string) string {
	h := blake3.New()
	h.Write([]byte(code))
	return "d" + hex.EncodeToString(h.Sum(nil))[:10]
}
