// Package dot renders a dependency graph in Graphviz dot syntax. Nodes and
// edges keep insertion order so the same graph always renders to the same
// bytes.
package dot

import (
	"fmt"
	"os"
	"strings"
)

type Graph struct {
	name  string
	order []string
	nodes map[string]*node
}

type node struct {
	name  string
	edges []string
}

func New(name string) *Graph {
	return &Graph{name: name, nodes: make(map[string]*node)}
}

func (g *Graph) Name() string {
	return g.name
}

// AddNode registers a node without edges. Adding an existing node is a
// no-op, so importers and their targets can be added in any order.
func (g *Graph) AddNode(name string) {
	if _, in := g.nodes[name]; in {
		return
	}
	g.nodes[name] = &node{name: name}
	g.order = append(g.order, name)
}

func (g *Graph) HasNode(name string) bool {
	_, in := g.nodes[name]
	return in
}

// AddEdge connects from to to, creating either endpoint as needed.
// Duplicate edges collapse to one.
func (g *Graph) AddEdge(from, to string) {
	g.AddNode(from)
	g.AddNode(to)
	if g.HasEdge(from, to) {
		return
	}
	n := g.nodes[from]
	n.edges = append(n.edges, to)
}

func (g *Graph) HasEdge(from, to string) bool {
	n, in := g.nodes[from]
	if !in {
		return false
	}
	for _, e := range n.edges {
		if e == to {
			return true
		}
	}
	return false
}

func commaSeparatedString(list []string) string {
	var total strings.Builder
	for ind, item := range list {
		total.WriteString("\"" + item + "\"")
		if ind < len(list)-1 {
			total.WriteString(", ")
		}
	}
	return total.String()
}

// Render produces the dot source: every node declared first, then one
// arrow line per node that has outgoing edges.
func (g *Graph) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "digraph %q {\n", g.name)
	for _, name := range g.order {
		fmt.Fprintf(&b, "  \"%s\"\n", name)
	}
	for _, name := range g.order {
		n := g.nodes[name]
		if len(n.edges) == 0 {
			continue
		}
		fmt.Fprintf(&b, "  \"%s\" -> {%s}\n", n.name, commaSeparatedString(n.edges))
	}
	b.WriteString("}\n")
	return b.String()
}

// WriteFile renders the graph and writes it to path in one shot.
func (g *Graph) WriteFile(path string) error {
	return os.WriteFile(path, []byte(g.Render()), 0o644)
}
