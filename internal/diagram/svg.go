package diagram

import (
	"fmt"
	"html"
	"strings"
)

// PlacedNode is a node with its computed position in pixels.
type PlacedNode struct {
	X, Y, W, H int
	Label      string
	Shape      Shape
}

// PlacedEdge is an edge routed center-to-center, plus an optional label at
// the midpoint.
type PlacedEdge struct {
	X1, Y1, X2, Y2 int
	Label          string
}

// Layout is the positioned form of a graph. The export pipeline reuses it to
// draw labels natively, since the SVG rasterizer only handles geometry.
type Layout struct {
	W, H  int
	Nodes []PlacedNode
	Edges []PlacedEdge
}

const (
	nodeH    = 36
	rankGap  = 64
	nodeGap  = 28
	marginPx = 16
)

// LayoutGraph assigns each node a rank (longest path from the sources) and
// places ranks top-down or left-to-right.
func LayoutGraph(g *Graph) Layout {
	rank := make(map[string]int, len(g.Nodes))
	// Relax edges |V| times; cycles stop improving after that.
	for range g.Nodes {
		for _, e := range g.Edges {
			if r := rank[e.From] + 1; r > rank[e.To] && r <= len(g.Nodes) {
				rank[e.To] = r
			}
		}
	}

	byRank := map[int][]*GraphNode{}
	maxRank := 0
	for _, n := range g.Nodes {
		r := rank[n.ID]
		byRank[r] = append(byRank[r], n)
		if r > maxRank {
			maxRank = r
		}
	}

	placed := make(map[string]*PlacedNode, len(g.Nodes))
	l := Layout{}
	for r := 0; r <= maxRank; r++ {
		offset := marginPx
		for _, n := range byRank[r] {
			w := nodeWidth(n.Label)
			pn := PlacedNode{W: w, H: nodeH, Label: n.Label, Shape: n.Shape}
			if g.Dir == LeftToRight {
				pn.X = marginPx + r*(maxNodeWidth(byRank, r)+rankGap)
				pn.Y = offset
				offset += nodeH + nodeGap
			} else {
				pn.X = offset
				pn.Y = marginPx + r*(nodeH+rankGap)
				offset += w + nodeGap
			}
			placed[n.ID] = &pn
			if pn.X+pn.W+marginPx > l.W {
				l.W = pn.X + pn.W + marginPx
			}
			if pn.Y+pn.H+marginPx > l.H {
				l.H = pn.Y + pn.H + marginPx
			}
		}
	}
	for _, n := range g.Nodes {
		l.Nodes = append(l.Nodes, *placed[n.ID])
	}
	for _, e := range g.Edges {
		from, to := placed[e.From], placed[e.To]
		l.Edges = append(l.Edges, PlacedEdge{
			X1: from.X + from.W/2, Y1: from.Y + from.H,
			X2: to.X + to.W/2, Y2: to.Y,
			Label: e.Label,
		})
	}
	return l
}

func nodeWidth(label string) int {
	w := 20 + 9*len(label)
	if w < 80 {
		w = 80
	}
	return w
}

func maxNodeWidth(byRank map[int][]*GraphNode, upto int) int {
	w := 80
	for r := 0; r <= upto; r++ {
		for _, n := range byRank[r] {
			if nw := nodeWidth(n.Label); nw > w {
				w = nw
			}
		}
	}
	return w
}

// EmitSVG renders a layout as standalone inline vector markup.
func EmitSVG(l Layout) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="monospace" font-size="13">`, l.W, l.H, l.W, l.H)
	b.WriteString(`<defs><marker id="arrow" viewBox="0 0 10 10" refX="9" refY="5" markerWidth="7" markerHeight="7" orient="auto-start-reverse"><path d="M 0 0 L 10 5 L 0 10 z" fill="#64748b"/></marker></defs>`)

	for _, e := range l.Edges {
		fmt.Fprintf(&b, `<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="#64748b" stroke-width="1.5" marker-end="url(#arrow)"/>`, e.X1, e.Y1, e.X2, e.Y2)
		if e.Label != "" {
			fmt.Fprintf(&b, `<text x="%d" y="%d" fill="#94a3b8" text-anchor="middle">%s</text>`, (e.X1+e.X2)/2, (e.Y1+e.Y2)/2-4, html.EscapeString(e.Label))
		}
	}
	for _, n := range l.Nodes {
		switch n.Shape {
		case ShapeRound:
			fmt.Fprintf(&b, `<rect x="%d" y="%d" width="%d" height="%d" rx="18" fill="#1e293b" stroke="#64748b"/>`, n.X, n.Y, n.W, n.H)
		case ShapeDecision:
			cx, cy := n.X+n.W/2, n.Y+n.H/2
			fmt.Fprintf(&b, `<polygon points="%d,%d %d,%d %d,%d %d,%d" fill="#1e293b" stroke="#64748b"/>`,
				cx, n.Y-8, n.X+n.W+8, cy, cx, n.Y+n.H+8, n.X-8, cy)
		default:
			fmt.Fprintf(&b, `<rect x="%d" y="%d" width="%d" height="%d" fill="#1e293b" stroke="#64748b"/>`, n.X, n.Y, n.W, n.H)
		}
		fmt.Fprintf(&b, `<text x="%d" y="%d" fill="#e2e8f0" text-anchor="middle" dominant-baseline="middle">%s</text>`,
			n.X+n.W/2, n.Y+n.H/2, html.EscapeString(n.Label))
	}
	b.WriteString(`</svg>`)
	return b.String()
}

// Render validates and renders one diagram to inline SVG.
func Render(code string) (string, error) {
	g, err := Parse(code)
	if err != nil {
		return "", err
	}
	return EmitSVG(LayoutGraph(g)), nil
}
