// Package gmlgen converts XML Schema documents into GML 3.2
// application schemas.
//
// Input documents are merged into one working schema in a single
// target namespace. Starting from a set of root complex types, every
// related and referenced type is collected and reshaped into a GML
// feature. The generated schema can then be compared with, and
// completed from, a hand-maintained reference schema. The conversion
// is configurable through Options, a YAML configuration file, or the
// command line.
package gmlgen // import "github.com/CognitoIQ/xsd2gml/gmlgen"
