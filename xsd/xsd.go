// Package xsd provides typed, indexed access to the top-level
// declarations of an XML Schema document.
//
// A Schema is built once from a parsed xmltree.Element rooted at
// <xs:schema>. Complex types, simple types and global elements are
// decoded into a closed set of Declaration variants and indexed by
// (Kind, name), so that later stages never have to search the tree.
// Every declaration keeps a pointer to the node it was decoded from;
// these nodes must be treated as read-only.
package xsd // import "github.com/CognitoIQ/xsd2gml/xsd"

import (
	"encoding/xml"

	"github.com/CognitoIQ/xsd2gml/xmltree"
)

const (
	// SchemaNS is the namespace of XML Schema definitions.
	SchemaNS = "http://www.w3.org/2001/XMLSchema"
	// GMLNS is the namespace of GML 3.2.
	GMLNS = "http://www.opengis.net/gml/3.2"
	// GMLLocation is where the GML 3.2 schema is published.
	GMLLocation = "http://schemas.opengis.net/gml/3.2.1/gml.xsd"
)

// A Namespace pairs an XML namespace with the prefix used for it in
// generated documents.
type Namespace struct {
	Prefix, URI string
}

// Qualify returns local prefixed with the namespace prefix.
func (ns Namespace) Qualify(local string) string {
	if ns.Prefix == "" {
		return local
	}
	return ns.Prefix + ":" + local
}

// Name returns the expanded name of local in ns.
func (ns Namespace) Name(local string) xml.Name {
	return xml.Name{Space: ns.URI, Local: local}
}

// A Declaration is a top-level schema declaration. The set of
// implementations is closed: *ComplexType, *SimpleType and *Element.
type Declaration interface {
	Kind() Kind
	// Ident returns the unqualified name of the declaration.
	Ident() string
	// Source returns the node the declaration was decoded from.
	Source() *xmltree.Element
	declaration()
}

// ContentKind distinguishes complex types holding child elements from
// complex types wrapping a simple value.
type ContentKind int

const (
	Structural ContentKind = iota
	SimpleContent
)

func (c ContentKind) String() string {
	if c == SimpleContent {
		return "simpleContent"
	}
	return "structural"
}

// A ComplexType is a top-level <complexType> declaration.
type ComplexType struct {
	Name string
	// Base is the supertype named by a complexContent extension.
	// It is the zero value when the type does not inherit.
	Base    xml.Name
	Content ContentKind
	// ValueType is the base of a simpleContent extension or
	// restriction.
	ValueType xml.Name
	Abstract  bool
	// Number of extension clauses, in either content kind.
	Extensions int
	// <documentation> nodes of the type's own annotation.
	Doc        []*xmltree.Element
	Attributes []Attribute
	Properties []Property

	node *xmltree.Element
}

// A SimpleType is a top-level <simpleType> declaration.
type SimpleType struct {
	Name string
	// Refs lists the types a simple type is derived from: its
	// restriction base, list item type, or union members.
	Refs []xml.Name

	node *xmltree.Element
}

// An Element is a top-level <element> declaration.
type Element struct {
	Name              string
	Type              xml.Name
	SubstitutionGroup xml.Name
	Abstract          bool

	node *xmltree.Element
}

// A Property is an <element> particle inside a complex type's content
// model. Exactly one of Type and Ref is set for well-formed schema.
type Property struct {
	Name      string
	Type, Ref xml.Name
	MinOccurs string
	MaxOccurs string
	// Nested, Attributes and Bases describe an anonymous type
	// definition of the property: its own element particles, the
	// attributes it declares, and the types it derives from.
	Nested     []Property
	Attributes []Attribute
	Bases      []xml.Name

	node *xmltree.Element
}

// An Attribute is an <attribute> declared by a complex type.
type Attribute struct {
	Name      string
	Type, Ref xml.Name

	node *xmltree.Element
}

func (*ComplexType) Kind() Kind { return ComplexTypeKind }
func (*SimpleType) Kind() Kind  { return SimpleTypeKind }
func (*Element) Kind() Kind     { return ElementKind }

func (t *ComplexType) Ident() string { return t.Name }
func (t *SimpleType) Ident() string  { return t.Name }
func (e *Element) Ident() string     { return e.Name }

func (t *ComplexType) Source() *xmltree.Element { return t.node }
func (t *SimpleType) Source() *xmltree.Element  { return t.node }
func (e *Element) Source() *xmltree.Element     { return e.node }

func (*ComplexType) declaration() {}
func (*SimpleType) declaration()  {}
func (*Element) declaration()     {}

// HasSuper reports whether t inherits from another complex type.
func (t *ComplexType) HasSuper() bool { return t.Base.Local != "" }

// Source returns the <element> node of the property.
func (p Property) Source() *xmltree.Element { return p.node }

// Source returns the <attribute> node.
func (a Attribute) Source() *xmltree.Element { return a.node }
