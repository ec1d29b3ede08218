package gml

import (
	"encoding/xml"

	"github.com/CognitoIQ/xsd2gml/xmltree"
	"github.com/CognitoIQ/xsd2gml/xsd"
)

const (
	abstractFeatureType  = "gml:AbstractFeatureType"
	abstractFeature      = "gml:AbstractFeature"
	associationAttrGroup = "gml:AssociationAttributeGroup"
)

// A Triple holds the declarations emitted for one feature. Scalar is
// only set for simple-content types.
type Triple struct {
	Element      *xmltree.Element
	Type         *xmltree.Element
	Scalar       *xmltree.Element
	PropertyType *xmltree.Element
}

// Declarations returns the declarations of t in the order they are
// written to a schema.
func (t Triple) Declarations() []*xmltree.Element {
	result := []*xmltree.Element{t.Element, t.Type}
	if t.Scalar != nil {
		result = append(result, t.Scalar)
	}
	return append(result, t.PropertyType)
}

// An Emitter builds feature declarations in a target namespace.
type Emitter struct {
	Target xsd.Namespace
}

// node creates an element in the XML Schema namespace with the given
// attribute name/value pairs.
func (e *Emitter) node(local string, attrs ...string) *xmltree.Element {
	el := &xmltree.Element{
		StartElement: xml.StartElement{Name: xml.Name{Space: xsd.SchemaNS, Local: local}},
		Scope:        Scope(e.Target),
	}
	for i := 0; i+1 < len(attrs); i += 2 {
		el.SetAttr("", attrs[i], attrs[i+1])
	}
	return el
}

func appendAll(parent *xmltree.Element, children ...*xmltree.Element) {
	for _, c := range children {
		parent.Append(*c)
	}
}

// Emit builds the declarations for a flattened type. Emit does not
// modify f, and returns structurally equal results for equal input.
func (e *Emitter) Emit(f *Flattened) Triple {
	var t Triple
	t.Element = e.node("element",
		"name", f.Name,
		"type", e.Target.Qualify(Type(f.Name)),
		"substitutionGroup", abstractFeature)

	extension := e.node("extension", "base", abstractFeatureType)
	if len(f.Documentation) > 0 {
		annotation := e.node("annotation")
		for _, doc := range f.Documentation {
			appendAll(annotation, doc.Clone())
		}
		appendAll(extension, annotation)
	}
	sequence := e.node("sequence")
	if f.Value != nil {
		t.Scalar = f.Value.Clone()
		appendAll(sequence, e.node("element",
			"name", "value",
			"type", e.Target.Qualify(f.Value.Attr("", "name"))))
	}
	for _, p := range f.Properties {
		appendAll(sequence, p.Node.Clone())
	}
	appendAll(extension, sequence)
	for _, attr := range f.Attributes {
		appendAll(extension, attr.Clone())
	}
	content := e.node("complexContent")
	appendAll(content, extension)
	t.Type = e.node("complexType", "name", Type(f.Name))
	appendAll(t.Type, content)

	t.PropertyType = e.propertyType(f.Name)
	return t
}

func (e *Emitter) propertyType(name string) *xmltree.Element {
	sequence := e.node("sequence", "minOccurs", "0")
	appendAll(sequence, e.node("element", "ref", e.Target.Qualify(name)))
	pt := e.node("complexType", "name", PropertyType(name))
	appendAll(pt, sequence, e.node("attributeGroup", "ref", associationAttrGroup))
	return pt
}
