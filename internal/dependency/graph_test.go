package dependency

import (
	"fmt"
	"testing"
)

func build(edges []string) *Graph {
	var graph Graph
	for _, e := range edges {
		var target string
		var dep string
		if _, err := fmt.Sscanf(e, "%s -> %s", &target, &dep); err != nil {
			panic("bad test edge " + e)
		}
		graph.Add(target, dep)
	}
	return &graph
}

var walkTests = [...]struct {
	edges []string
	start string
	order []string
}{
	{
		edges: []string{
			"SituationRecord -> TrafficElement",
			"SituationRecord -> OperatorAction",
			"TrafficElement -> Accident",
			"TrafficElement -> Obstruction",
			"Obstruction -> AnimalPresenceObstruction",
		},
		start: "SituationRecord",
		order: []string{
			"TrafficElement",
			"Accident",
			"Obstruction",
			"AnimalPresenceObstruction",
			"OperatorAction",
		},
	},
	{
		// Loops are not followed, and the start is never visited
		edges: []string{
			"A -> B",
			"B -> C",
			"C -> A",
			"C -> B",
		},
		start: "A",
		order: []string{"B", "C"},
	},
	{
		// Self loops
		edges: []string{"A -> A"},
		start: "A",
		order: nil,
	},
	{
		edges: []string{"A -> B"},
		start: "Z",
		order: nil,
	},
}

func TestWalk(t *testing.T) {
	for _, tt := range walkTests {
		graph := build(tt.edges)
		var got []string
		graph.Walk(tt.start, func(vertex string) {
			got = append(got, vertex)
		})
		if fmt.Sprint(got) != fmt.Sprint(tt.order) {
			t.Errorf("Walk(%s) over %v: got %v, wanted %v", tt.start, tt.edges, got, tt.order)
		}
	}
}

func TestAddUnique(t *testing.T) {
	graph := build([]string{"b -> x", "a -> y", "b -> x", "b -> z"})
	if graph.Len() != 2 {
		t.Errorf("expected 2 targets, got %d", graph.Len())
	}
	if got := fmt.Sprint(graph.Targets()); got != "[a b]" {
		t.Errorf("Targets: got %s", got)
	}
	if got := fmt.Sprint(graph.Dependencies("b")); got != "[x z]" {
		t.Errorf("Dependencies(b): got %s", got)
	}
	if deps := new(Graph).Dependencies("none"); len(deps) != 0 {
		t.Errorf("empty graph has dependencies %v", deps)
	}
}
