package closure

import (
	"encoding/xml"
	"fmt"

	"github.com/CognitoIQ/xsd2gml/xmltree"
	"github.com/CognitoIQ/xsd2gml/xsd"
)

// Multilingual lists the multilingual-string family of types. They
// are replaced by a built-in fragment and are not walked by default.
var Multilingual = []string{
	"MultilingualString",
	"MultilingualStringValue",
	"MultilingualStringValueType",
}

// Related is a complex type together with every type it is related
// to through inheritance: its supertypes, nearest first, followed by
// all of its direct and indirect extensions in discovery order. The
// root itself is never part of Types.
type Related struct {
	Root  *xsd.ComplexType
	Types []*xsd.ComplexType
}

// All returns the root followed by its related types.
func (r Related) All() []*xsd.ComplexType {
	return append([]*xsd.ComplexType{r.Root}, r.Types...)
}

// A Closure is the result of a walk. Roots and SimpleTypes are in
// discovery order, and no type appears twice.
type Closure struct {
	Roots       []Related
	SimpleTypes []*xsd.SimpleType
}

// Lookup returns the related set computed for the named complex type.
func (c *Closure) Lookup(name string) (Related, bool) {
	for _, r := range c.Roots {
		if r.Root.Name == name {
			return r, true
		}
	}
	return Related{}, false
}

// A Walker computes closures over one schema. The zero value is not
// usable; use New.
type Walker struct {
	Schema *xsd.Schema
	Index  *Index
	// Types that are never walked, by unqualified name.
	Exclude map[string]bool
}

// New indexes s and returns a Walker excluding the Multilingual types
// and any additional names given.
func New(s *xsd.Schema, exclude ...string) (*Walker, error) {
	idx, err := BuildIndex(s)
	if err != nil {
		return nil, err
	}
	w := &Walker{Schema: s, Index: idx, Exclude: make(map[string]bool)}
	for _, name := range Multilingual {
		w.Exclude[name] = true
	}
	for _, name := range exclude {
		w.Exclude[name] = true
	}
	return w, nil
}

// traversal state threaded through a walk
type state struct {
	visited map[string]bool
	roots   []Related
	simple  []*xsd.SimpleType
}

func newState(c *Closure) *state {
	st := &state{visited: make(map[string]bool)}
	if c == nil {
		return st
	}
	st.roots = append(st.roots, c.Roots...)
	st.simple = append(st.simple, c.SimpleTypes...)
	for _, r := range c.Roots {
		st.visited[r.Root.Name] = true
	}
	for _, s := range c.SimpleTypes {
		st.visited[s.Name] = true
	}
	return st
}

func (st *state) closure() *Closure {
	return &Closure{Roots: st.roots, SimpleTypes: st.simple}
}

// Walk computes the closure of the named types. Names may be
// qualified; only their local part is used. A name that resolves to
// no complex or simple type is an error.
func (w *Walker) Walk(names ...string) (*Closure, error) {
	return w.Extend(nil, names...)
}

// Extend continues an earlier walk with more root names. Types
// already in c are not visited again. c is not modified.
func (w *Walker) Extend(c *Closure, names ...string) (*Closure, error) {
	st := newState(c)
	for _, name := range names {
		_, local := xmltree.SplitQName(name)
		if err := w.visit(st, local); err != nil {
			return nil, err
		}
	}
	return st.closure(), nil
}

func (w *Walker) visit(st *state, name string) error {
	if w.Exclude[name] || st.visited[name] {
		return nil
	}
	if t, ok := w.Schema.ComplexType(name); ok {
		// mark before recursing; extension graphs may be cyclic
		st.visited[name] = true
		i := len(st.roots)
		st.roots = append(st.roots, Related{Root: t})
		related, err := w.related(t)
		if err != nil {
			return err
		}
		st.roots[i].Types = related
		for _, r := range related {
			if err := w.visit(st, r.Name); err != nil {
				return err
			}
		}
		refs, err := w.references(t)
		if err != nil {
			return err
		}
		for _, ref := range refs {
			if err := w.visit(st, ref); err != nil {
				return fmt.Errorf("%s: %w", t.Name, err)
			}
		}
		return nil
	}
	if s, ok := w.Schema.SimpleType(name); ok {
		st.visited[name] = true
		st.simple = append(st.simple, s)
		for _, ref := range s.Refs {
			if !w.Schema.IsLocal(ref) {
				continue
			}
			if err := w.visit(st, ref.Local); err != nil {
				return fmt.Errorf("%s: %w", s.Name, err)
			}
		}
		return nil
	}
	return fmt.Errorf("%q: %w", name, xsd.ErrTypeNotFound)
}

// related computes the upward and downward inheritance closure of t.
func (w *Walker) related(t *xsd.ComplexType) ([]*xsd.ComplexType, error) {
	var result []*xsd.ComplexType
	seen := map[string]bool{t.Name: true}
	for cur := t; ; {
		super, err := w.Schema.Supertype(cur)
		if err != nil {
			return nil, err
		}
		if super == nil || seen[super.Name] {
			break
		}
		seen[super.Name] = true
		result = append(result, super)
		cur = super
	}
	for _, name := range w.Index.Descendants(t.Name) {
		if seen[name] {
			continue
		}
		seen[name] = true
		if sub, ok := w.Schema.ComplexType(name); ok {
			result = append(result, sub)
		}
	}
	return result, nil
}

// references returns the local type names used by the properties,
// attributes and simple content of t, in document order. Types used
// inside anonymous property types are included.
func (w *Walker) references(t *xsd.ComplexType) ([]string, error) {
	var names []string
	add := func(name xml.Name) error {
		switch {
		case name.Local == "":
		case w.Schema.IsLocal(name):
			names = append(names, name.Local)
		case name.Space == xsd.SchemaNS && !xsd.IsBuiltin(name):
			return fmt.Errorf("xs:%s: %w", name.Local, xsd.ErrTypeNotFound)
		}
		return nil
	}
	var property func(p xsd.Property) error
	property = func(p xsd.Property) error {
		typ := p.Type
		if p.Ref.Local != "" && w.Schema.IsLocal(p.Ref) {
			el, ok := w.Schema.Element(p.Ref.Local)
			if !ok {
				return fmt.Errorf("element %q referenced by %s: %w", p.Ref.Local, t.Name, xsd.ErrTypeNotFound)
			}
			typ = el.Type
		}
		if err := add(typ); err != nil {
			return err
		}
		// anonymous type definitions
		for _, n := range p.Nested {
			if err := property(n); err != nil {
				return err
			}
		}
		for _, a := range p.Attributes {
			if err := add(a.Type); err != nil {
				return err
			}
		}
		for _, base := range p.Bases {
			if err := add(base); err != nil {
				return err
			}
		}
		return nil
	}
	for _, p := range t.Properties {
		if err := property(p); err != nil {
			return nil, err
		}
	}
	for _, a := range t.Attributes {
		if err := add(a.Type); err != nil {
			return nil, err
		}
	}
	if err := add(t.ValueType); err != nil {
		return nil, err
	}
	return names, nil
}
