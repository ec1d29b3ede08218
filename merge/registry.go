package merge

import (
	"github.com/CognitoIQ/xsd2gml/xmltree"
	"github.com/CognitoIQ/xsd2gml/xsd"
)

// A Registry records namespace bindings in the order they are first
// seen. The first prefix seen for a namespace is the one kept. A
// prefix seen again for a different namespace is kept as a separate
// entry, but only its first binding is part of the registry's Scope.
type Registry struct {
	entries []xsd.Namespace
	byURI   map[string]int
}

// NewRegistry returns a registry holding the given bindings.
func NewRegistry(bindings ...xsd.Namespace) *Registry {
	r := &Registry{byURI: make(map[string]int)}
	for _, b := range bindings {
		r.Add(b)
	}
	return r
}

// Add records ns. It returns false if the namespace was already
// registered.
func (r *Registry) Add(ns xsd.Namespace) bool {
	if _, ok := r.byURI[ns.URI]; ok {
		return false
	}
	r.byURI[ns.URI] = len(r.entries)
	r.entries = append(r.entries, ns)
	return true
}

// Prefix returns the prefix registered for uri.
func (r *Registry) Prefix(uri string) (string, bool) {
	i, ok := r.byURI[uri]
	if !ok {
		return "", false
	}
	return r.entries[i].Prefix, true
}

// Conflicts returns the entries whose prefix is bound to an earlier,
// different namespace.
func (r *Registry) Conflicts() []xsd.Namespace {
	var result []xsd.Namespace
	seen := make(map[string]bool)
	for _, ns := range r.entries {
		if seen[ns.Prefix] {
			result = append(result, ns)
		}
		seen[ns.Prefix] = true
	}
	return result
}

// Entries returns all registered bindings in registration order.
func (r *Registry) Entries() []xsd.Namespace {
	return append([]xsd.Namespace(nil), r.entries...)
}

// Scope returns the registered bindings as a namespace scope, leaving
// out conflicting rebindings of a prefix.
func (r *Registry) Scope() xmltree.Scope {
	var scope xmltree.Scope
	seen := make(map[string]bool)
	for _, ns := range r.entries {
		if seen[ns.Prefix] {
			continue
		}
		seen[ns.Prefix] = true
		scope = scope.Add(ns.Prefix, ns.URI)
	}
	return scope
}
