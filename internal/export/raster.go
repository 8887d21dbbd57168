// Package export renders a document snapshot to a print-styled raster
// bitmap and slices it into full-bleed A4 pages. The raster step walks the
// goldmark AST directly; the HTML preview path is never involved, so export
// works headless.
package export

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"
	"unicode"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/markpad/markpad/internal/bridge"
	"github.com/markpad/markpad/internal/diagram"
)

// Print palette. Export always uses light print colors regardless of the
// editor theme.
var (
	printBG     = color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}
	printFG     = color.RGBA{0x1A, 0x1A, 0x1A, 0xFF}
	printCodeBG = color.RGBA{0xF5, 0xF5, 0xF7, 0xFF}
	printQuote  = color.RGBA{0xC8, 0xC8, 0xC8, 0xFF}
	printRule   = color.RGBA{0xDC, 0xDC, 0xDC, 0xFF}
	printLink   = color.RGBA{0x06, 0x4F, 0xBD, 0xFF}
	printFaded  = color.RGBA{0x6A, 0x6A, 0x6A, 0xFF}
)

type face struct {
	font     *truetype.Font
	face     font.Face
	baseSize float64
}

type faceSet struct {
	regular *face
	bold    *face
	mono    *face
}

func newFace(ttf []byte, size float64) (*face, error) {
	ft, err := truetype.Parse(ttf)
	if err != nil {
		return nil, err
	}
	f := truetype.NewFace(ft, &truetype.Options{Size: size, DPI: 96, Hinting: font.HintingFull})
	return &face{font: ft, face: f, baseSize: size}, nil
}

func loadFaces(size float64) (faceSet, error) {
	var fs faceSet
	var err error
	if fs.regular, err = newFace(goregular.TTF, size); err != nil {
		return fs, err
	}
	if fs.bold, err = newFace(gobold.TTF, size); err != nil {
		return fs, err
	}
	if fs.mono, err = newFace(gomono.TTF, size); err != nil {
		return fs, err
	}
	return fs, nil
}

// pageCanvas is a growable RGBA bitmap with a downward-moving cursor.
type pageCanvas struct {
	img     *image.RGBA
	dc      *freetype.Context
	w       int
	margin  int
	cursorY int
	fonts   faceSet
	ptSize  float64
}

func newPageCanvas(width, margin int, fonts faceSet, ptSize float64) *pageCanvas {
	img := image.NewRGBA(image.Rect(0, 0, width, 4096))
	dc := freetype.NewContext()
	dc.SetDPI(96)
	dc.SetClip(img.Bounds())
	dc.SetDst(img)
	dc.SetFontSize(ptSize)
	draw.Draw(img, img.Bounds(), image.NewUniform(printBG), image.Point{}, draw.Src)
	return &pageCanvas{
		img:     img,
		dc:      dc,
		w:       width,
		margin:  margin,
		cursorY: margin,
		fonts:   fonts,
		ptSize:  ptSize,
	}
}

// ensure grows the bitmap when the cursor nears the bottom edge.
func (c *pageCanvas) ensure(extra int) {
	need := c.cursorY + extra + c.margin
	if need <= c.img.Bounds().Dy() {
		return
	}
	h := c.img.Bounds().Dy()
	for h < need {
		h *= 2
	}
	grown := image.NewRGBA(image.Rect(0, 0, c.w, h))
	draw.Draw(grown, grown.Bounds(), image.NewUniform(printBG), image.Point{}, draw.Src)
	draw.Draw(grown, c.img.Bounds(), c.img, image.Point{}, draw.Src)
	c.img = grown
	c.dc.SetClip(grown.Bounds())
	c.dc.SetDst(grown)
}

// crop trims the bitmap to the content height plus the bottom margin.
func (c *pageCanvas) crop() *image.RGBA {
	h := c.cursorY + c.margin
	if h > c.img.Bounds().Dy() {
		h = c.img.Bounds().Dy()
	}
	out := image.NewRGBA(image.Rect(0, 0, c.w, h))
	draw.Draw(out, out.Bounds(), c.img, image.Point{}, draw.Src)
	return out
}

func (c *pageCanvas) setFace(f *face, col color.Color, size float64) {
	c.dc.SetFontSize(size)
	c.dc.SetSrc(image.NewUniform(col))
	c.dc.SetFont(f.font)
}

func (c *pageCanvas) addVSpace(px int) {
	c.ensure(px)
	c.cursorY += px
}

func (c *pageCanvas) drawRule() {
	c.ensure(16)
	y := c.cursorY + 4
	rect := image.Rect(c.margin, y, c.w-c.margin, y+2)
	draw.Draw(c.img, rect, image.NewUniform(printRule), image.Point{}, draw.Src)
	c.cursorY = y + 12
}

func (c *pageCanvas) drawQuoteBar(topY, height int) {
	rect := image.Rect(c.margin, topY, c.margin+4, topY+height)
	draw.Draw(c.img, rect, image.NewUniform(printQuote), image.Point{}, draw.Src)
}

func measure(f *face, size float64, s string) float64 {
	if f == nil || s == "" {
		return 0
	}
	var d font.Drawer
	d.Face = f.face
	w := float64(d.MeasureString(s).Round())
	if f.baseSize > 0 && size > 0 && size != f.baseSize {
		w *= size / f.baseSize
	}
	return w
}

// wrap splits text into lines that fit maxWidth, breaking on spaces first and
// inside over-long tokens as a last resort.
func wrap(f *face, size float64, s string, maxWidth float64) []string {
	var lines []string
	for _, raw := range strings.Split(s, "\n") {
		if raw == "" {
			lines = append(lines, "")
			continue
		}
		if maxWidth <= 0 || measure(f, size, raw) <= maxWidth {
			lines = append(lines, raw)
			continue
		}
		var cur strings.Builder
		var curW float64
		flush := func() {
			lines = append(lines, cur.String())
			cur.Reset()
			curW = 0
		}
		for _, tok := range splitKeepSpaces(raw) {
			tw := measure(f, size, tok)
			if tw > maxWidth {
				if cur.Len() > 0 {
					flush()
				}
				for _, part := range breakToken(f, size, tok, maxWidth) {
					lines = append(lines, part)
				}
				continue
			}
			if curW+tw > maxWidth && cur.Len() > 0 {
				flush()
			}
			cur.WriteString(tok)
			curW += tw
		}
		if cur.Len() > 0 {
			flush()
		}
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	return lines
}

func breakToken(f *face, size float64, tok string, maxWidth float64) []string {
	var parts []string
	var cur strings.Builder
	var w float64
	for _, r := range tok {
		cw := measure(f, size, string(r))
		if w+cw > maxWidth && cur.Len() > 0 {
			parts = append(parts, cur.String())
			cur.Reset()
			w = 0
		}
		cur.WriteRune(r)
		w += cw
	}
	if cur.Len() > 0 {
		parts = append(parts, cur.String())
	}
	if len(parts) == 0 {
		parts = []string{tok}
	}
	return parts
}

func splitKeepSpaces(s string) []string {
	var parts []string
	var cur strings.Builder
	last := 0 // 0 unknown, 1 space, 2 word
	for _, r := range s {
		typ := 2
		if unicode.IsSpace(r) {
			typ = 1
		}
		if last != 0 && typ != last {
			parts = append(parts, cur.String())
			cur.Reset()
		}
		cur.WriteRune(r)
		last = typ
	}
	if cur.Len() > 0 {
		parts = append(parts, cur.String())
	}
	return parts
}

func (c *pageCanvas) drawCodeBlock(code string, left, right int, size float64) {
	pad := 12
	mono := c.fonts.mono
	lines := wrap(mono, size, code, float64(right-left-2*pad))
	lineHeight := int(size * 1.4)
	height := len(lines)*lineHeight + 2*pad
	c.ensure(height + 8)
	top := c.cursorY
	rect := image.Rect(left, top, right, top+height)
	draw.Draw(c.img, rect, image.NewUniform(printCodeBG), image.Point{}, draw.Src)
	c.setFace(mono, printFG, size)
	y := top + pad + int(size)
	for _, ln := range lines {
		_, _ = c.dc.DrawString(ln, freetype.Pt(left+pad, y))
		y += lineHeight
	}
	c.cursorY = top + height + 8
}

// span is one run of styled inline text, or a forced line break, or an
// inline image.
type span struct {
	text      string
	font      *face
	size      float64
	color     color.Color
	underline bool
	strike    bool
	newline   bool
	image     image.Image
}

// drawSpans word-wraps and paints a run of spans between left and right,
// returning the baseline of the first painted line.
func (c *pageCanvas) drawSpans(spans []span, left, right int) int {
	maxWidth := float64(right - left)
	type word struct {
		span
	}
	var line []word
	var lineWidth, lineMax float64
	firstBaseline := 0

	flush := func(force bool) {
		if len(line) == 0 {
			if force {
				c.addVSpace(int(c.ptSize * 1.4))
			}
			return
		}
		size := lineMax
		if size == 0 {
			size = c.ptSize
		}
		c.ensure(int(size * 1.6))
		baseline := c.cursorY + int(size)
		if firstBaseline == 0 {
			firstBaseline = baseline
		}
		x := left
		for _, w := range line {
			f := w.font
			if f == nil {
				f = c.fonts.regular
			}
			c.setFace(f, w.color, w.size)
			_, _ = c.dc.DrawString(w.text, freetype.Pt(x, baseline))
			width := int(measure(f, w.size, w.text))
			if w.underline && width > 0 {
				y := baseline + 2
				draw.Draw(c.img, image.Rect(x, y, x+width, y+1), image.NewUniform(w.color), image.Point{}, draw.Src)
			}
			if w.strike && width > 0 {
				y := baseline - int(w.size*0.3)
				draw.Draw(c.img, image.Rect(x, y, x+width, y+1), image.NewUniform(w.color), image.Point{}, draw.Src)
			}
			x += width
		}
		c.cursorY += int(size * 1.4)
		line = line[:0]
		lineWidth = 0
		lineMax = 0
	}

	for _, sp := range spans {
		if sp.newline {
			flush(true)
			continue
		}
		if sp.image != nil {
			flush(false)
			img := fitWidth(sp.image, int(maxWidth))
			b := img.Bounds()
			c.ensure(b.Dy() + int(c.ptSize))
			x := left
			if b.Dx() < int(maxWidth) {
				x += (int(maxWidth) - b.Dx()) / 2
			}
			rect := image.Rect(x, c.cursorY, x+b.Dx(), c.cursorY+b.Dy())
			draw.Draw(c.img, rect, img, b.Min, draw.Over)
			if firstBaseline == 0 {
				firstBaseline = c.cursorY + b.Dy()
			}
			c.cursorY += b.Dy() + int(c.ptSize*0.6)
			continue
		}
		f := sp.font
		if f == nil {
			f = c.fonts.regular
		}
		for _, seg := range splitKeepSpaces(sp.text) {
			if seg == "" {
				continue
			}
			isSpace := unicode.IsSpace([]rune(seg)[0])
			segW := measure(f, sp.size, seg)
			if isSpace {
				if len(line) == 0 {
					continue
				}
				line = append(line, word{span{text: seg, font: f, size: sp.size, color: sp.color, underline: sp.underline, strike: sp.strike}})
				lineWidth += segW
				continue
			}
			if lineWidth+segW > maxWidth && len(line) > 0 {
				flush(false)
			}
			line = append(line, word{span{text: seg, font: f, size: sp.size, color: sp.color, underline: sp.underline, strike: sp.strike}})
			if sp.size > lineMax {
				lineMax = sp.size
			}
			lineWidth += segW
		}
	}
	flush(false)
	return firstBaseline
}

func fitWidth(img image.Image, maxWidth int) image.Image {
	b := img.Bounds()
	if maxWidth <= 0 || b.Dx() <= maxWidth {
		return img
	}
	scale := float64(maxWidth) / float64(b.Dx())
	h := int(float64(b.Dy()) * scale)
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Over, nil)
	return dst
}

// rasterEngine walks the goldmark AST and paints blocks onto the canvas.
type rasterEngine struct {
	c        *pageCanvas
	baseSize float64
	baseDir  string
	files    bridge.FileBridge
}

const (
	listIndentStep  = 40
	listMarkerWidth = 32
	listMarkerGap   = 10
)

func (e *rasterEngine) headingSize(level int) float64 {
	switch level {
	case 1:
		return e.baseSize * 1.9
	case 2:
		return e.baseSize * 1.6
	case 3:
		return e.baseSize * 1.4
	case 4:
		return e.baseSize * 1.25
	default:
		return e.baseSize * 1.15
	}
}

func (e *rasterEngine) collectInline(node ast.Node, md []byte, f *face, size float64, col color.Color, strike bool, out *[]span) {
	if f == nil {
		f = e.c.fonts.regular
	}
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch n := child.(type) {
		case *ast.Text:
			txt := string(n.Segment.Value(md))
			if txt != "" {
				*out = append(*out, span{text: txt, font: f, size: size, color: col, strike: strike})
			}
			if n.SoftLineBreak() || n.HardLineBreak() {
				*out = append(*out, span{newline: true})
			}
		case *ast.Link:
			before := len(*out)
			e.collectInline(n, md, f, size, printLink, strike, out)
			for i := before; i < len(*out); i++ {
				(*out)[i].color = printLink
				(*out)[i].underline = true
			}
		case *ast.AutoLink:
			label := string(n.Label(md))
			if label != "" {
				*out = append(*out, span{text: label, font: f, size: size, color: printLink, underline: true})
			}
		case *ast.Image:
			dest := strings.TrimSpace(string(n.Destination))
			if img, err := e.loadImage(dest); err == nil {
				*out = append(*out, span{image: img})
			} else {
				alt := strings.TrimSpace(string(n.Text(md)))
				if alt == "" {
					alt = dest
				}
				*out = append(*out, span{text: alt, font: f, size: size, color: printFaded})
			}
		case *ast.Emphasis:
			next := f
			if n.Level >= 2 {
				next = e.c.fonts.bold
			}
			e.collectInline(n, md, next, size, col, strike, out)
		case *east.Strikethrough:
			e.collectInline(n, md, f, size, col, true, out)
		case *ast.CodeSpan:
			txt := string(n.Text(md))
			if txt != "" {
				*out = append(*out, span{text: txt, font: e.c.fonts.mono, size: size * 0.95, color: col, strike: strike})
			}
		case *ast.Paragraph, *ast.TextBlock:
			e.collectInline(n, md, f, size, col, strike, out)
			if child.NextSibling() != nil {
				*out = append(*out, span{newline: true})
			}
		default:
			if child.HasChildren() {
				e.collectInline(child, md, f, size, col, strike, out)
			}
		}
	}
}

// loadImage resolves a relative destination against the document directory
// through the file bridge. Remote and data URLs are not fetched during
// export; they fall back to alt text.
func (e *rasterEngine) loadImage(dest string) (image.Image, error) {
	if dest == "" || strings.Contains(dest, "://") || strings.HasPrefix(dest, "data:") {
		return nil, fmt.Errorf("export: unsupported image destination %q", dest)
	}
	path := dest
	if e.baseDir != "" && !strings.HasPrefix(path, "/") {
		path = e.baseDir + "/" + path
	}
	data, err := e.files.ReadFile(path)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(strings.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("export: decode %s: %w", dest, err)
	}
	return img, nil
}

func (e *rasterEngine) drawBlockSpans(node ast.Node, md []byte, size float64, left int) {
	var spans []span
	e.collectInline(node, md, e.c.fonts.regular, size, printFG, false, &spans)
	if len(spans) > 0 {
		e.c.drawSpans(spans, left, e.c.w-e.c.margin)
	}
}

func (e *rasterEngine) renderFence(fc *ast.FencedCodeBlock, md []byte) {
	var buf bytes.Buffer
	for i := 0; i < fc.Lines().Len(); i++ {
		seg := fc.Lines().At(i)
		buf.Write(seg.Value(md))
	}
	code := strings.TrimRight(buf.String(), "\n")
	lang := string(fc.Language(md))
	if lang == diagram.Language {
		e.renderDiagram(code)
		return
	}
	e.c.addVSpace(4)
	e.c.drawCodeBlock(code, e.c.margin, e.c.w-e.c.margin, e.baseSize*0.95)
}

// renderDiagram rasterizes the diagram geometry from its SVG form and paints
// the node and edge labels on top, since the SVG rasterizer skips text.
func (e *rasterEngine) renderDiagram(code string) {
	g, err := diagram.Parse(code)
	if err != nil {
		e.c.addVSpace(4)
		e.c.drawCodeBlock("diagram error: "+err.Error()+"\n\n"+code, e.c.margin, e.c.w-e.c.margin, e.baseSize*0.9)
		return
	}
	layout := diagram.LayoutGraph(g)
	avail := e.c.w - 2*e.c.margin
	img, err := diagram.Rasterize(diagram.EmitSVG(layout), min(layout.W, avail))
	if err != nil {
		e.c.addVSpace(4)
		e.c.drawCodeBlock(code, e.c.margin, e.c.w-e.c.margin, e.baseSize*0.95)
		return
	}
	b := img.Bounds()
	scale := float64(b.Dx()) / float64(layout.W)
	e.c.ensure(b.Dy() + int(e.baseSize))
	left := e.c.margin + (avail-b.Dx())/2
	top := e.c.cursorY
	draw.Draw(e.c.img, image.Rect(left, top, left+b.Dx(), top+b.Dy()), img, b.Min, draw.Over)

	labelSize := e.baseSize * 0.85 * scale
	if labelSize < 8 {
		labelSize = 8
	}
	for _, n := range layout.Nodes {
		if n.Label == "" {
			continue
		}
		w := measure(e.c.fonts.regular, labelSize, n.Label)
		x := left + int(float64(n.X)*scale+float64(n.W)*scale/2) - int(w/2)
		y := top + int(float64(n.Y)*scale+float64(n.H)*scale/2) + int(labelSize*0.35)
		e.c.setFace(e.c.fonts.regular, printFG, labelSize)
		_, _ = e.c.dc.DrawString(n.Label, freetype.Pt(x, y))
	}
	for _, ed := range layout.Edges {
		if ed.Label == "" {
			continue
		}
		w := measure(e.c.fonts.regular, labelSize, ed.Label)
		x := left + int(float64(ed.X1+ed.X2)/2*scale) - int(w/2)
		y := top + int(float64(ed.Y1+ed.Y2)/2*scale)
		e.c.setFace(e.c.fonts.regular, printFaded, labelSize)
		_, _ = e.c.dc.DrawString(ed.Label, freetype.Pt(x, y))
	}
	e.c.cursorY = top + b.Dy() + int(e.baseSize*0.9)
}

func (e *rasterEngine) renderList(list *ast.List, md []byte, level int) {
	markerLeft := e.c.margin + level*listIndentStep
	contentLeft := markerLeft + listMarkerWidth + listMarkerGap
	start := list.Start
	if !list.IsOrdered() || start == 0 {
		start = 1
	}
	index := 0
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		li, ok := item.(*ast.ListItem)
		if !ok {
			continue
		}
		marker := "•"
		if list.IsOrdered() {
			marker = fmt.Sprintf("%d.", start+index)
		}
		if cb, ok := li.FirstChild().(*ast.TextBlock); ok {
			if tick, ok := cb.FirstChild().(*east.TaskCheckBox); ok {
				if tick.IsChecked {
					marker = "☑"
				} else {
					marker = "☐"
				}
			}
		}
		e.renderListItem(li, md, level, marker, markerLeft, contentLeft)
		if item.NextSibling() != nil {
			e.c.addVSpace(int(e.baseSize * 0.5))
		}
		index++
	}
	e.c.addVSpace(int(e.baseSize * 0.7))
}

func (e *rasterEngine) renderListItem(li *ast.ListItem, md []byte, level int, marker string, markerLeft, contentLeft int) {
	markerDrawn := false
	drawMarker := func(baseline int) {
		if markerDrawn {
			return
		}
		e.c.setFace(e.c.fonts.regular, printFG, e.baseSize)
		w := measure(e.c.fonts.regular, e.baseSize, marker)
		x := markerLeft + listMarkerWidth - int(w)
		if x < markerLeft {
			x = markerLeft
		}
		_, _ = e.c.dc.DrawString(marker, freetype.Pt(x, baseline))
		markerDrawn = true
	}

	for child := li.FirstChild(); child != nil; child = child.NextSibling() {
		switch n := child.(type) {
		case *ast.Paragraph, *ast.TextBlock:
			var spans []span
			e.collectInline(child, md, e.c.fonts.regular, e.baseSize, printFG, false, &spans)
			if len(spans) == 0 {
				continue
			}
			baseline := e.c.drawSpans(spans, contentLeft, e.c.w-e.c.margin)
			if baseline > 0 {
				drawMarker(baseline)
			}
		case *ast.List:
			drawMarker(e.c.cursorY + int(e.baseSize))
			e.renderList(n, md, level+1)
		case *ast.FencedCodeBlock:
			drawMarker(e.c.cursorY + int(e.baseSize))
			e.renderFence(n, md)
		case *ast.CodeBlock:
			drawMarker(e.c.cursorY + int(e.baseSize))
			code := strings.TrimRight(string(child.Text(md)), "\n")
			e.c.drawCodeBlock(code, contentLeft, e.c.w-e.c.margin, e.baseSize*0.95)
		}
	}
	if !markerDrawn {
		drawMarker(e.c.cursorY + int(e.baseSize))
		e.c.addVSpace(int(e.baseSize * 1.4))
	}
}

func (e *rasterEngine) renderTable(tbl *east.Table, md []byte) {
	var rows [][]string
	var header []bool
	for row := tbl.FirstChild(); row != nil; row = row.NextSibling() {
		isHeader := false
		if _, ok := row.(*east.TableHeader); ok {
			isHeader = true
		}
		var cells []string
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			var spans []span
			e.collectInline(cell, md, e.c.fonts.regular, e.baseSize, printFG, false, &spans)
			var b strings.Builder
			for _, sp := range spans {
				b.WriteString(sp.text)
			}
			cells = append(cells, strings.TrimSpace(b.String()))
		}
		rows = append(rows, cells)
		header = append(header, isHeader)
	}
	if len(rows) == 0 {
		return
	}
	cols := 0
	for _, r := range rows {
		if len(r) > cols {
			cols = len(r)
		}
	}
	if cols == 0 {
		return
	}

	border := 1
	pad := 8
	tableLeft := e.c.margin
	tableRight := e.c.w - e.c.margin
	colWidth := (tableRight - tableLeft - (cols+1)*border) / cols
	lineHeight := int(e.baseSize * 1.4)

	e.c.addVSpace(6)
	top := e.c.cursorY
	y := top + border
	for ri, cells := range rows {
		f := e.c.fonts.regular
		if header[ri] {
			f = e.c.fonts.bold
		}
		rowLines := 1
		wrapped := make([][]string, cols)
		for ci := 0; ci < cols; ci++ {
			txt := ""
			if ci < len(cells) {
				txt = cells[ci]
			}
			wrapped[ci] = wrap(f, e.baseSize, txt, float64(colWidth-2*pad))
			if len(wrapped[ci]) > rowLines {
				rowLines = len(wrapped[ci])
			}
		}
		rowHeight := rowLines*lineHeight + 2*pad
		e.c.ensure(rowHeight + lineHeight)
		for ci := 0; ci < cols; ci++ {
			cx := tableLeft + border + ci*(colWidth+border)
			ty := y + pad + int(e.baseSize)
			e.c.setFace(f, printFG, e.baseSize)
			for _, ln := range wrapped[ci] {
				_, _ = e.c.dc.DrawString(ln, freetype.Pt(cx+pad, ty))
				ty += lineHeight
			}
		}
		y += rowHeight
		draw.Draw(e.c.img, image.Rect(tableLeft, y, tableRight, y+border), image.NewUniform(printRule), image.Point{}, draw.Src)
		y += border
	}
	draw.Draw(e.c.img, image.Rect(tableLeft, top, tableRight, top+border), image.NewUniform(printRule), image.Point{}, draw.Src)
	for ci := 0; ci <= cols; ci++ {
		x := tableLeft + ci*(colWidth+border)
		if ci == cols {
			x = tableRight - border
		}
		draw.Draw(e.c.img, image.Rect(x, top, x+border, y), image.NewUniform(printRule), image.Point{}, draw.Src)
	}
	e.c.cursorY = y + int(e.baseSize*0.7)
}

func (e *rasterEngine) render(md []byte) error {
	parsed := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	)
	doc := parsed.Parser().Parse(text.NewReader(md))
	return ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch nd := n.(type) {
		case *ast.Heading:
			size := e.headingSize(nd.Level)
			var spans []span
			e.collectInline(n, md, e.c.fonts.bold, size, printFG, false, &spans)
			e.c.addVSpace(int(e.baseSize * 0.75))
			e.c.drawSpans(spans, e.c.margin, e.c.w-e.c.margin)
			e.c.addVSpace(int(e.baseSize * 0.5))
			return ast.WalkSkipChildren, nil
		case *ast.Paragraph:
			e.drawBlockSpans(n, md, e.baseSize, e.c.margin)
			e.c.addVSpace(int(e.baseSize * 0.9))
			return ast.WalkSkipChildren, nil
		case *ast.List:
			e.renderList(nd, md, 0)
			return ast.WalkSkipChildren, nil
		case *east.Table:
			e.renderTable(nd, md)
			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock:
			e.renderFence(nd, md)
			return ast.WalkSkipChildren, nil
		case *ast.CodeBlock:
			code := strings.TrimRight(string(n.Text(md)), "\n")
			e.c.addVSpace(4)
			e.c.drawCodeBlock(code, e.c.margin, e.c.w-e.c.margin, e.baseSize*0.95)
			return ast.WalkSkipChildren, nil
		case *ast.Blockquote:
			startY := e.c.cursorY
			var spans []span
			e.collectInline(n, md, e.c.fonts.regular, e.baseSize, printFG, false, &spans)
			if len(spans) > 0 {
				e.c.addVSpace(2)
				e.c.drawSpans(spans, e.c.margin+16, e.c.w-e.c.margin)
				e.c.addVSpace(6)
				e.c.drawQuoteBar(startY+2, e.c.cursorY-startY-2)
			}
			return ast.WalkSkipChildren, nil
		case *ast.ThematicBreak:
			e.c.drawRule()
			return ast.WalkSkipChildren, nil
		default:
			return ast.WalkContinue, nil
		}
	})
}
