// Package closure computes the set of schema types a group of root
// types depends on.
//
// Types are related through inheritance, in both directions, and
// through the types of their properties and attributes. The result
// of a walk is a Closure holding, for every complex type reached,
// the list of its supertypes and subtypes, plus the simple types the
// complex types refer to.
package closure // import "github.com/CognitoIQ/xsd2gml/closure"

import (
	"fmt"

	"github.com/CognitoIQ/xsd2gml/internal/dependency"
	"github.com/CognitoIQ/xsd2gml/xsd"
)

// An Index maps every complex type to the local complex types that
// directly extend it. It is read-only once built.
type Index struct {
	graph dependency.Graph
}

// BuildIndex scans every complex type of s for its extension clause.
// A type with more than one extension clause is an error.
func BuildIndex(s *xsd.Schema) (*Index, error) {
	idx := new(Index)
	for _, t := range s.ComplexTypes() {
		if t.Extensions > 1 {
			return nil, fmt.Errorf("complex type %s: %w", t.Name, xsd.ErrMultipleExtensions)
		}
		if t.HasSuper() && s.IsLocal(t.Base) {
			idx.graph.Add(t.Base.Local, t.Name)
		}
	}
	return idx, nil
}

// Extensions returns the names of the types directly extending super,
// in document order.
func (idx *Index) Extensions(super string) []string {
	return idx.graph.Dependencies(super)
}

// Descendants returns the names of all types extending name at any
// depth, in depth-first discovery order. Cycles are not followed.
func (idx *Index) Descendants(name string) []string {
	var result []string
	idx.graph.Walk(name, func(sub string) {
		result = append(result, sub)
	})
	return result
}

// Supertypes returns the names of the types with at least one
// extension, sorted.
func (idx *Index) Supertypes() []string {
	return idx.graph.Targets()
}
