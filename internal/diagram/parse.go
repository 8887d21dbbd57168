package diagram

import (
	"fmt"
	"regexp"
	"strings"
)

// Direction is the flow direction declared in the graph header.
type Direction string

const (
	TopDown     Direction = "TD"
	LeftToRight Direction = "LR"
)

// Shape is a node's box style.
type Shape int

const (
	ShapeBox Shape = iota
	ShapeRound
	ShapeDecision
)

// GraphNode is a declared or referenced node.
type GraphNode struct {
	ID    string
	Label string
	Shape Shape
}

// GraphEdge is a directed edge, optionally labeled.
type GraphEdge struct {
	From, To string
	Label    string
}

// Graph is a validated flowchart.
type Graph struct {
	Dir   Direction
	Nodes []*GraphNode // declaration order
	Edges []GraphEdge

	index map[string]*GraphNode
}

var (
	headerRe = regexp.MustCompile(`^(?:graph|flowchart)\s+(TD|TB|LR|RL)\s*$`)
	nodeRe   = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9_]*)\s*(?:\[([^\]]*)\]|\(([^)]*)\)|\{([^}]*)\})?$`)
	labelRe  = regexp.MustCompile(`^\|([^|]*)\|\s*`)
)

// Parse validates diagram code against the flowchart grammar. Every error
// carries the 1-based line number so the inline error panel can point at the
// offending statement.
func Parse(code string) (*Graph, error) {
	lines := strings.Split(code, "\n")
	g := &Graph{index: make(map[string]*GraphNode)}

	i := 0
	for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
		i++
	}
	if i == len(lines) {
		return nil, fmt.Errorf("empty diagram")
	}
	hm := headerRe.FindStringSubmatch(strings.TrimSpace(lines[i]))
	if hm == nil {
		return nil, fmt.Errorf("line %d: expected 'graph TD|TB|LR|RL' header, got %q", i+1, strings.TrimSpace(lines[i]))
	}
	switch hm[1] {
	case "TD", "TB":
		g.Dir = TopDown
	case "LR", "RL":
		g.Dir = LeftToRight
	}
	i++

	for ; i < len(lines); i++ {
		stmt := strings.TrimSpace(lines[i])
		if stmt == "" || strings.HasPrefix(stmt, "%%") {
			continue
		}
		if err := g.parseStatement(stmt, i+1); err != nil {
			return nil, err
		}
	}
	if len(g.Nodes) == 0 {
		return nil, fmt.Errorf("diagram declares no nodes")
	}
	return g, nil
}

// parseStatement handles either a lone node declaration or an edge chain
// A --> B -->|label| C.
func (g *Graph) parseStatement(stmt string, line int) error {
	parts := strings.Split(stmt, "-->")
	if len(parts) == 1 {
		_, err := g.node(stmt, line)
		return err
	}
	prev, err := g.node(strings.TrimSpace(parts[0]), line)
	if err != nil {
		return err
	}
	for _, part := range parts[1:] {
		part = strings.TrimSpace(part)
		label := ""
		if lm := labelRe.FindStringSubmatch(part); lm != nil {
			label = strings.TrimSpace(lm[1])
			part = strings.TrimSpace(part[len(lm[0]):])
		}
		next, err := g.node(part, line)
		if err != nil {
			return err
		}
		g.Edges = append(g.Edges, GraphEdge{From: prev.ID, To: next.ID, Label: label})
		prev = next
	}
	return nil
}

// node parses a node reference with optional inline declaration and interns
// it. A later declaration may attach a label/shape to an id referenced bare
// earlier.
func (g *Graph) node(ref string, line int) (*GraphNode, error) {
	m := nodeRe.FindStringSubmatch(ref)
	if m == nil {
		return nil, fmt.Errorf("line %d: malformed node reference %q", line, ref)
	}
	id := m[1]
	n, ok := g.index[id]
	if !ok {
		n = &GraphNode{ID: id, Label: id}
		g.index[id] = n
		g.Nodes = append(g.Nodes, n)
	}
	switch {
	case m[2] != "":
		n.Label, n.Shape = m[2], ShapeBox
	case m[3] != "":
		n.Label, n.Shape = m[3], ShapeRound
	case m[4] != "":
		n.Label, n.Shape = m[4], ShapeDecision
	}
	return n, nil
}
