package xsd

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/CognitoIQ/xsd2gml/xmltree"
)

// A Schema is the decoded form of one <xs:schema> document.
type Schema struct {
	// TargetNS is the targetNamespace of the schema. Type references
	// resolving to this namespace are local.
	TargetNS string
	Root     *xmltree.Element

	index *schemaIndex
}

// Parse decodes the top-level declarations of root, which must be an
// <xs:schema> element. Parse does not modify root; the returned
// declarations point into it. If two declarations share a kind and a
// name, the later one wins.
func Parse(root *xmltree.Element) (s *Schema, err error) {
	if (root.Name != xml.Name{Space: SchemaNS, Local: "schema"}) {
		return nil, fmt.Errorf("<%s>: %w", root.Name.Local, ErrNotSchema)
	}
	defer catchParseError(&err)

	s = &Schema{
		TargetNS: root.Attr("", "targetNamespace"),
		Root:     root,
		index:    newIndex(),
	}
	walk(root, func(el *xmltree.Element) {
		kind, ok := KindOf(el)
		if !ok {
			return
		}
		if !hasAttr("name")(el) {
			stopErr(ErrMalformed, "top-level "+kind.String()+" has no name")
		}
		switch kind {
		case ComplexTypeKind:
			s.index.add(parseComplexType(el))
		case SimpleTypeKind:
			s.index.add(parseSimpleType(el))
		case ElementKind:
			s.index.add(parseElement(el))
		}
	})
	return s, nil
}

func parseBool(s string) bool {
	b, _ := strconv.ParseBool(strings.TrimSpace(s))
	return b
}

// resolveAttr resolves the QName held in attribute attr of el. It
// returns the zero Name if the attribute is absent.
func resolveAttr(el *xmltree.Element, attr string) xml.Name {
	v := strings.TrimSpace(el.Attr("", attr))
	if v == "" {
		return xml.Name{}
	}
	return el.Resolve(v)
}

func parseComplexType(el *xmltree.Element) *ComplexType {
	t := &ComplexType{
		Name:     el.Attr("", "name"),
		Abstract: parseBool(el.Attr("", "abstract")),
		node:     el,
	}
	walk(el, func(c *xmltree.Element) {
		switch {
		case isAnnotation(c):
			t.Doc = append(t.Doc, children(c, isDocumentation)...)
		case isAttribute(c):
			t.Attributes = append(t.Attributes, parseAttribute(c))
		case isContent(c):
			if c.Name.Local == "simpleContent" {
				t.Content = SimpleContent
			}
			walk(c, func(d *xmltree.Element) {
				if !isDerivation(d) {
					return
				}
				base := resolveAttr(d, "base")
				if base.Local == "" {
					stopErr(ErrMalformed, d.Name.Local+" has no base")
				}
				if isExtension(d) {
					t.Extensions++
				}
				if t.Content == SimpleContent {
					t.ValueType = base
				} else if isExtension(d) {
					t.Base = base
				}
				for _, a := range children(d, isAttribute) {
					t.Attributes = append(t.Attributes, parseAttribute(a))
				}
			})
		}
	})
	for _, p := range particles(el) {
		t.Properties = append(t.Properties, parseProperty(p))
	}
	return t
}

func parseProperty(el *xmltree.Element) Property {
	p := Property{
		Name:      el.Attr("", "name"),
		Type:      resolveAttr(el, "type"),
		Ref:       resolveAttr(el, "ref"),
		MinOccurs: el.Attr("", "minOccurs"),
		MaxOccurs: el.Attr("", "maxOccurs"),
		node:      el,
	}
	if p.Name == "" {
		p.Name = p.Ref.Local
	}
	for _, def := range children(el, isTypeDef) {
		for _, n := range particles(def) {
			p.Nested = append(p.Nested, parseProperty(n))
		}
		inline(def, func(c *xmltree.Element) {
			if isAttribute(c) {
				p.Attributes = append(p.Attributes, parseAttribute(c))
			}
			p.Bases = append(p.Bases, derivationRefs(c)...)
		})
	}
	return p
}

// derivationRefs returns the types a derivation step refers to: the
// base of a restriction or extension, the item type of a list, or the
// members of a union.
func derivationRefs(el *xmltree.Element) []xml.Name {
	var refs []xml.Name
	switch {
	case isDerivation(el):
		if base := resolveAttr(el, "base"); base.Local != "" {
			refs = append(refs, base)
		}
	case isElem("list")(el):
		if item := resolveAttr(el, "itemType"); item.Local != "" {
			refs = append(refs, item)
		}
	case isElem("union")(el):
		for _, member := range strings.Fields(el.Attr("", "memberTypes")) {
			refs = append(refs, el.Resolve(member))
		}
	}
	return refs
}

func parseAttribute(el *xmltree.Element) Attribute {
	a := Attribute{
		Name: el.Attr("", "name"),
		Type: resolveAttr(el, "type"),
		Ref:  resolveAttr(el, "ref"),
		node: el,
	}
	if a.Name == "" {
		a.Name = a.Ref.Local
	}
	return a
}

func parseSimpleType(el *xmltree.Element) *SimpleType {
	t := &SimpleType{Name: el.Attr("", "name"), node: el}
	walk(el, func(c *xmltree.Element) {
		t.Refs = append(t.Refs, derivationRefs(c)...)
	})
	return t
}

func parseElement(el *xmltree.Element) *Element {
	return &Element{
		Name:              el.Attr("", "name"),
		Type:              resolveAttr(el, "type"),
		SubstitutionGroup: resolveAttr(el, "substitutionGroup"),
		Abstract:          parseBool(el.Attr("", "abstract")),
		node:              el,
	}
}

// Lookup returns the declaration of the given kind and unqualified
// name.
func (s *Schema) Lookup(kind Kind, name string) (Declaration, bool) {
	return s.index.lookup(kind, name)
}

// Declarations returns every top-level declaration in document order.
func (s *Schema) Declarations() []Declaration {
	return s.index.decls
}

// ComplexType returns the complex type called name.
func (s *Schema) ComplexType(name string) (*ComplexType, bool) {
	d, ok := s.index.lookup(ComplexTypeKind, name)
	if !ok {
		return nil, false
	}
	return d.(*ComplexType), true
}

// SimpleType returns the simple type called name.
func (s *Schema) SimpleType(name string) (*SimpleType, bool) {
	d, ok := s.index.lookup(SimpleTypeKind, name)
	if !ok {
		return nil, false
	}
	return d.(*SimpleType), true
}

// Element returns the global element called name.
func (s *Schema) Element(name string) (*Element, bool) {
	d, ok := s.index.lookup(ElementKind, name)
	if !ok {
		return nil, false
	}
	return d.(*Element), true
}

// ComplexTypes returns all complex types in document order.
func (s *Schema) ComplexTypes() []*ComplexType {
	var result []*ComplexType
	for _, d := range s.index.decls {
		if t, ok := d.(*ComplexType); ok {
			result = append(result, t)
		}
	}
	return result
}

// IsLocal reports whether name refers to a declaration of this
// schema. Names without a namespace are treated as local.
func (s *Schema) IsLocal(name xml.Name) bool {
	return name.Local != "" && (name.Space == s.TargetNS || name.Space == "")
}

// Supertype returns the complex type t extends, or nil if t does not
// inherit from a local type.
func (s *Schema) Supertype(t *ComplexType) (*ComplexType, error) {
	if !t.HasSuper() || !s.IsLocal(t.Base) {
		return nil, nil
	}
	super, ok := s.ComplexType(t.Base.Local)
	if !ok {
		return nil, fmt.Errorf("%s extends %s: %w", t.Name, t.Base.Local, ErrUndeclaredSupertype)
	}
	return super, nil
}

// IsScalar reports whether values of the named local type are simple:
// it is a simple type, or a complex type with simple content.
// The second result is false if no such type is declared.
func (s *Schema) IsScalar(name string) (scalar, ok bool) {
	if t, ok := s.ComplexType(name); ok {
		return t.Content == SimpleContent, true
	}
	if _, ok := s.SimpleType(name); ok {
		return true, true
	}
	return false, false
}

// Bindings returns the namespace bindings in scope at the root of a
// schema document, in declaration order.
func Bindings(root *xmltree.Element) []Namespace {
	var result []Namespace
	for _, b := range root.Scope.Bindings() {
		result = append(result, Namespace{Prefix: b.Local, URI: b.Space})
	}
	return result
}
