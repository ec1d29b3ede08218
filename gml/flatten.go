// Package gml reshapes XML Schema complex types into GML 3.2
// features.
//
// A complex type is first flattened together with its related types
// into a single list of documentation, attributes and properties,
// then emitted as three declarations: a <Name>Type extending
// gml:AbstractFeatureType, a <Name>PropertyType association wrapper,
// and a <Name> element in the gml:AbstractFeature substitution group.
package gml // import "github.com/CognitoIQ/xsd2gml/gml"

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/CognitoIQ/xsd2gml/xmltree"
	"github.com/CognitoIQ/xsd2gml/xsd"
)

// Class is the multiplicity class of a flattened property.
type Class int

const (
	// Scalar properties hold simple values and keep their type.
	Scalar Class = iota
	// Single properties embed one feature by its Type.
	Single
	// Multiple properties refer to features by their PropertyType.
	Multiple
)

func (c Class) String() string {
	switch c {
	case Scalar:
		return "scalar"
	case Single:
		return "single"
	case Multiple:
		return "multiple"
	}
	return "Class(" + strconv.Itoa(int(c)) + ")"
}

// Type and PropertyType return the names of the declarations emitted
// for a feature.
func Type(name string) string         { return name + "Type" }
func PropertyType(name string) string { return name + "PropertyType" }

// A Property is a resolved property of a flattened type.
type Property struct {
	Name string
	// Type is the qualified effective type, as written in the
	// generated schema. It is empty for properties with an
	// anonymous type.
	Type  string
	Class Class
	// Node is the <xs:element> declaration to emit.
	Node *xmltree.Element
}

// A Flattened type merges a complex type with its related types.
type Flattened struct {
	Name   string
	Source *xsd.ComplexType
	// Value is set for simple-content types without a supertype.
	// It holds the source declaration, retargeted, and is emitted
	// next to the feature so that the feature can carry the value.
	Value         *xmltree.Element
	Documentation []*xmltree.Element
	Attributes    []*xmltree.Element
	Properties    []Property
}

// A Flattener merges types of one schema for emission into a target
// namespace.
type Flattener struct {
	Schema *xsd.Schema
	Target xsd.Namespace
	// Substitute maps local type names to the qualified type used
	// in their place, such as GMLPolygon to gml:GeometryPropertyType.
	Substitute map[string]string
}

func (f *Flattener) retargeter() retargeter {
	return retargeter{schema: f.Schema, target: f.Target}
}

// Copy returns a copy of a source declaration with its references
// moved to the target namespace.
func (f *Flattener) Copy(el *xmltree.Element) *xmltree.Element {
	return f.retargeter().clone(el)
}

// Merge flattens root with its related types. Members are taken from
// root first, then from each related type in order.
func (f *Flattener) Merge(root *xsd.ComplexType, related []*xsd.ComplexType) (*Flattened, error) {
	r := f.retargeter()
	result := &Flattened{Name: root.Name, Source: root}
	if root.Content == xsd.SimpleContent && !root.HasSuper() {
		result.Value = r.clone(root.Source())
	}
	for _, t := range append([]*xsd.ComplexType{root}, related...) {
		for _, doc := range t.Doc {
			result.Documentation = append(result.Documentation, r.clone(doc))
		}
		for _, attr := range t.Attributes {
			result.Attributes = append(result.Attributes, r.clone(attr.Source()))
		}
		for _, p := range t.Properties {
			prop, err := f.ResolveProperty(p)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", t.Name, p.Name, err)
			}
			result.Properties = append(result.Properties, prop)
		}
	}
	return result, nil
}

// Multiplicity classifies a maxOccurs value: absent or 1 is Single,
// anything else Multiple.
func Multiplicity(maxOccurs string) (Class, error) {
	switch v := strings.TrimSpace(maxOccurs); v {
	case "", "1":
		return Single, nil
	case "unbounded":
		return Multiple, nil
	default:
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid maxOccurs %q", maxOccurs)
		}
		if n == 1 {
			return Single, nil
		}
		return Multiple, nil
	}
}

// ResolveProperty determines the effective type and class of p.
func (f *Flattener) ResolveProperty(p xsd.Property) (Property, error) {
	r := f.retargeter()
	typ := p.Type
	if p.Ref.Local != "" {
		if !f.Schema.IsLocal(p.Ref) {
			node := r.clone(p.Source())
			return Property{Name: p.Name, Class: Scalar, Node: node}, nil
		}
		el, ok := f.Schema.Element(p.Ref.Local)
		if !ok {
			return Property{}, fmt.Errorf("element %q: %w", p.Ref.Local, xsd.ErrTypeNotFound)
		}
		typ = el.Type
	}

	prop := Property{Name: p.Name, Class: Scalar}
	switch {
	case typ.Local == "":
	case !f.Schema.IsLocal(typ):
		prop.Type, _ = r.qualify(p.Source(), f.lexical(p, typ))
	case f.Substitute[typ.Local] != "":
		prop.Type = f.Substitute[typ.Local]
	default:
		scalar, ok := f.Schema.IsScalar(typ.Local)
		if !ok {
			return Property{}, fmt.Errorf("%q: %w", typ.Local, xsd.ErrTypeNotFound)
		}
		if scalar {
			prop.Type = f.Target.Qualify(typ.Local)
			break
		}
		class, err := Multiplicity(p.MaxOccurs)
		if err != nil {
			return Property{}, err
		}
		prop.Class = class
		if class == Single {
			prop.Type = f.Target.Qualify(Type(typ.Local))
		} else {
			prop.Type = f.Target.Qualify(PropertyType(typ.Local))
		}
	}
	node, err := f.propertyNode(p, prop.Type)
	if err != nil {
		return Property{}, err
	}
	prop.Node = node
	return prop, nil
}

// lexical returns the QName text a property's type was written as.
func (f *Flattener) lexical(p xsd.Property, typ xml.Name) string {
	if p.Ref.Local == "" {
		return p.Source().Attr("", "type")
	}
	el, _ := f.Schema.Element(p.Ref.Local)
	if v := el.Source().Attr("", "type"); v != "" {
		return v
	}
	return typ.Local
}

// propertyNode builds the declaration of a flattened property: the
// source particle with its name first, then its type, then any other
// attributes it had. Elements declared by an anonymous type of the
// property are resolved like properties themselves, and derivations
// from local structural types name the emitted <Name>Type.
func (f *Flattener) propertyNode(p xsd.Property, typ string) (*xmltree.Element, error) {
	node := f.retargeter().clone(p.Source())
	node.Walk(func(n *xmltree.Element) bool {
		if n.Name.Space == xsd.SchemaNS && (n.Name.Local == "extension" || n.Name.Local == "restriction") {
			if base, ok := f.featureBase(n); ok {
				n.SetAttr("", "base", base)
			}
		}
		return true
	})
	for _, nested := range p.Nested {
		path, ok := childPath(p.Source(), nested.Source())
		if !ok {
			continue
		}
		resolved, err := f.ResolveProperty(nested)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", p.Name, nested.Name, err)
		}
		at := node
		for _, i := range path {
			at = &at.Children[i]
		}
		*at = *resolved.Node
	}

	attrs := []xml.Attr{{Name: xml.Name{Local: "name"}, Value: p.Name}}
	if typ != "" {
		attrs = append(attrs, xml.Attr{Name: xml.Name{Local: "type"}, Value: typ})
	}
	for _, a := range node.StartElement.Attr {
		switch a.Name.Local {
		case "name", "type", "ref":
			if a.Name.Space == "" {
				continue
			}
		}
		attrs = append(attrs, a)
	}
	node.StartElement.Attr = attrs
	return node, nil
}

// featureBase returns the Type name to derive from when the retargeted
// derivation n names a structural complex type of the source schema.
func (f *Flattener) featureBase(n *xmltree.Element) (string, bool) {
	name, ok := n.ResolveNS(n.Attr("", "base"))
	if !ok || name.Space != f.Target.URI {
		return "", false
	}
	if scalar, ok := f.Schema.IsScalar(name.Local); !ok || scalar {
		return "", false
	}
	return f.Target.Qualify(Type(name.Local)), true
}

// childPath returns the child indexes leading from root down to el.
func childPath(root, el *xmltree.Element) ([]int, bool) {
	if root == el {
		return nil, true
	}
	for i := range root.Children {
		if path, ok := childPath(&root.Children[i], el); ok {
			return append([]int{i}, path...), true
		}
	}
	return nil, false
}
