package engine

import (
	"sort"
	"strings"
)

// Variables lists the distinct context paths a template references, sorted.
// Paths under this inside an #each over "dresses" are reported as
// "dresses.<field>"; @-variables are skipped.
//
// A bare path inside a loop resolves against the element first, so it is
// reported as an element field unless its first segment is a root key. Root
// keys are the first segments the template uses outside any loop.
func Variables(tree *Tree) []string {
	return VariablesWithRoots(tree, nil)
}

// VariablesWithRoots is Variables with extra known top-level context keys.
func VariablesWithRoots(tree *Tree, roots []string) []string {
	if tree == nil {
		return nil
	}
	c := &variableCollector{
		roots: make(map[string]struct{}),
		seen:  make(map[string]struct{}),
	}
	for _, r := range roots {
		c.roots[r] = struct{}{}
	}
	c.collectRoots(tree.Nodes)
	c.collect(tree.Nodes, "")

	out := make([]string, 0, len(c.seen))
	for v := range c.seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

type variableCollector struct {
	roots map[string]struct{}
	seen  map[string]struct{}
}

func nodeArgs(n Node) []Arg {
	switch n := n.(type) {
	case *OutputNode:
		return []Arg{n.Arg}
	case *HelperNode:
		args := append([]Arg(nil), n.Args...)
		for _, a := range n.Named {
			args = append(args, a)
		}
		return args
	case *BlockNode:
		return n.Args
	}
	return nil
}

// collectRoots records first segments used outside every #each body.
func (c *variableCollector) collectRoots(nodes []Node) {
	for _, n := range nodes {
		for _, a := range nodeArgs(n) {
			if a.Kind != ArgPath || len(a.Segments) == 0 {
				continue
			}
			if head := a.Segments[0]; head != "this" && !strings.HasPrefix(head, "@") {
				c.roots[head] = struct{}{}
			}
		}
		if b, ok := n.(*BlockNode); ok {
			if b.Kind != BlockEach {
				c.collectRoots(b.Body)
			}
			c.collectRoots(b.Else)
		}
	}
}

func (c *variableCollector) collect(nodes []Node, loopPath string) {
	for _, n := range nodes {
		var last string
		for _, a := range nodeArgs(n) {
			last = c.add(a, loopPath)
		}
		if b, ok := n.(*BlockNode); ok {
			inner := loopPath
			if b.Kind == BlockEach {
				inner = last
			}
			c.collect(b.Body, inner)
			c.collect(b.Else, loopPath)
		}
	}
}

func (c *variableCollector) add(a Arg, loopPath string) string {
	if a.Kind != ArgPath {
		return ""
	}
	p := c.qualify(a.Path, loopPath)
	if p != "" {
		c.seen[p] = struct{}{}
	}
	return p
}

func (c *variableCollector) qualify(path, loopPath string) string {
	switch {
	case strings.HasPrefix(path, "@root."):
		return strings.TrimPrefix(path, "@root.")
	case strings.HasPrefix(path, "@"):
		return ""
	case path == "this":
		return loopPath
	case strings.HasPrefix(path, "this."):
		if loopPath == "" {
			return ""
		}
		return loopPath + "." + strings.TrimPrefix(path, "this.")
	}
	if loopPath == "" {
		return path
	}
	head, _, _ := strings.Cut(path, ".")
	if _, ok := c.roots[head]; ok {
		return path
	}
	return loopPath + "." + path
}
