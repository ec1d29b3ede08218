package xsd

import (
	"encoding/xml"

	"github.com/CognitoIQ/xsd2gml/xmltree"
)

// builtins holds the local names of the types predefined in the XML
// Schema namespace, as listed in "XML Schema Part 2: Datatypes".
//
// http://www.w3.org/TR/xmlschema-2/#built-in-datatypes
var builtins = map[string]struct{}{
	"anyType": {}, "anySimpleType": {}, "anyURI": {}, "base64Binary": {},
	"boolean": {}, "byte": {}, "date": {}, "dateTime": {}, "decimal": {},
	"double": {}, "duration": {}, "ENTITIES": {}, "ENTITY": {}, "float": {},
	"gDay": {}, "gMonth": {}, "gMonthDay": {}, "gYear": {}, "gYearMonth": {},
	"hexBinary": {}, "ID": {}, "IDREF": {}, "IDREFS": {}, "int": {},
	"integer": {}, "language": {}, "long": {}, "Name": {}, "NCName": {},
	"negativeInteger": {}, "NMTOKEN": {}, "NMTOKENS": {},
	"nonNegativeInteger": {}, "nonPositiveInteger": {}, "normalizedString": {},
	"NOTATION": {}, "positiveInteger": {}, "QName": {}, "short": {},
	"string": {}, "time": {}, "token": {}, "unsignedByte": {},
	"unsignedInt": {}, "unsignedLong": {}, "unsignedShort": {},
}

// IsBuiltin reports whether name is one of the built-in XML Schema
// types.
func IsBuiltin(name xml.Name) bool {
	if name.Space != SchemaNS {
		return false
	}
	_, ok := builtins[name.Local]
	return ok
}

//go:generate stringer -type=Kind -linecomment

// Kind identifies the variant of a top-level declaration.
type Kind int

const (
	ComplexTypeKind Kind = iota // complexType
	SimpleTypeKind              // simpleType
	ElementKind                 // element
)

// KindOf returns the declaration kind of a schema node.
func KindOf(el *xmltree.Element) (Kind, bool) {
	if el.Name.Space != SchemaNS {
		return 0, false
	}
	switch el.Name.Local {
	case "complexType":
		return ComplexTypeKind, true
	case "simpleType":
		return SimpleTypeKind, true
	case "element":
		return ElementKind, true
	}
	return 0, false
}
