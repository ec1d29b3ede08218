// Package dependency builds and traverses directed graphs of named
// vertices.
package dependency // import "github.com/CognitoIQ/xsd2gml/internal/dependency"

import (
	"sync"

	"golang.org/x/exp/slices"
)

type edge struct {
	from, to string
}

// A Graph is a collection of targets and their dependencies. Edges
// are kept in the order they were added, so the same sequence of
// calls to Add always produces the same traversal order.
type Graph struct {
	once    sync.Once
	targets []string
	nodes   map[string][]string
	edges   map[edge]struct{}
}

func (g *Graph) init() {
	g.once.Do(func() {
		g.nodes = make(map[string][]string)
		g.edges = make(map[edge]struct{})
	})
}

// Len returns the number of targets in the graph.
func (g *Graph) Len() int {
	return len(g.targets)
}

// Add adds a dependency to a Graph. Adding the same edge twice has
// no effect.
func (g *Graph) Add(target, dependency string) {
	g.init()
	e := edge{target, dependency}
	if _, ok := g.edges[e]; ok {
		return
	}
	g.edges[e] = struct{}{}
	if _, ok := g.nodes[target]; !ok {
		g.targets = append(g.targets, target)
	}
	g.nodes[target] = append(g.nodes[target], dependency)
}

// Targets returns every vertex with at least one outgoing edge, in
// sorted order.
func (g *Graph) Targets() []string {
	result := slices.Clone(g.targets)
	slices.Sort(result)
	return result
}

// Dependencies returns the direct dependencies of target in the order
// they were added.
func (g *Graph) Dependencies(target string) []string {
	g.init()
	return slices.Clone(g.nodes[target])
}

// Walk calls fn for every vertex reachable from start, depth-first,
// parents before their dependencies. Every vertex is visited once;
// start itself is never visited, even if a cycle leads back to it.
func (g *Graph) Walk(start string, fn func(string)) {
	g.init()
	visited := map[string]bool{start: true}
	g.walk(fn, g.nodes[start], visited)
}

func (g *Graph) walk(fn func(string), targets []string, visited map[string]bool) {
	for _, tgt := range targets {
		if !visited[tgt] {
			visited[tgt] = true
			fn(tgt)
			g.walk(fn, g.nodes[tgt], visited)
		}
	}
}
