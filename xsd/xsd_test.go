package xsd

import (
	"encoding/xml"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/CognitoIQ/xsd2gml/xmltree"
)

const d2 = "http://datex2.eu/schema/2/2_0"

var situationSchema = `<?xml version="1.0" encoding="UTF-8"?>
<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"
  xmlns:D2LogicalModel="http://datex2.eu/schema/2/2_0"
  targetNamespace="http://datex2.eu/schema/2/2_0">
  <xs:element name="d2LogicalModel" type="D2LogicalModel:D2LogicalModel" />
  <xs:complexType name="Situation">
    <xs:annotation>
      <xs:documentation>A traffic situation.</xs:documentation>
    </xs:annotation>
    <xs:sequence>
      <xs:element name="overallSeverity" type="D2LogicalModel:SeverityEnum" minOccurs="0" />
      <xs:element name="situationRecord" type="D2LogicalModel:SituationRecord" maxOccurs="unbounded" />
      <xs:element ref="D2LogicalModel:d2LogicalModel" minOccurs="0" />
    </xs:sequence>
    <xs:attribute name="id" type="xs:string" use="required" />
  </xs:complexType>
  <xs:complexType name="Accident">
    <xs:complexContent>
      <xs:extension base="D2LogicalModel:SituationRecord">
        <xs:sequence>
          <xs:element name="accidentType" type="D2LogicalModel:AccidentTypeEnum" maxOccurs="unbounded" />
        </xs:sequence>
        <xs:attribute name="version" type="xs:string" />
      </xs:extension>
    </xs:complexContent>
  </xs:complexType>
  <xs:complexType name="SituationRecord" abstract="true">
    <xs:sequence>
      <xs:element name="validity" type="D2LogicalModel:Validity">
        <xs:annotation><xs:documentation>not a property of the record</xs:documentation></xs:annotation>
      </xs:element>
    </xs:sequence>
  </xs:complexType>
  <xs:complexType name="Validity" />
  <xs:complexType name="D2LogicalModel" />
  <xs:complexType name="Percentage">
    <xs:simpleContent>
      <xs:extension base="D2LogicalModel:PercentageValue">
        <xs:attribute name="unit" type="xs:string" />
      </xs:extension>
    </xs:simpleContent>
  </xs:complexType>
  <xs:simpleType name="PercentageValue">
    <xs:restriction base="xs:float" />
  </xs:simpleType>
  <xs:simpleType name="SeverityEnum">
    <xs:restriction base="xs:string">
      <xs:enumeration value="high" />
    </xs:restriction>
  </xs:simpleType>
  <xs:simpleType name="AccidentTypeEnum">
    <xs:union memberTypes="D2LogicalModel:SeverityEnum xs:string" />
  </xs:simpleType>
</xs:schema>`

func parseSchema(t *testing.T, doc string) *Schema {
	t.Helper()
	root, err := xmltree.Parse([]byte(doc))
	require.NoError(t, err)
	s, err := Parse(root)
	require.NoError(t, err)
	return s
}

func TestParse(t *testing.T) {
	s := parseSchema(t, situationSchema)
	require.Equal(t, d2, s.TargetNS)
	require.Len(t, s.Declarations(), 10)
	require.Len(t, s.ComplexTypes(), 6)

	situation, ok := s.ComplexType("Situation")
	require.True(t, ok)
	require.Equal(t, ComplexTypeKind, situation.Kind())
	require.False(t, situation.HasSuper())
	require.Equal(t, Structural, situation.Content)
	require.Len(t, situation.Doc, 1)
	require.Equal(t, "A traffic situation.", string(situation.Doc[0].Content))

	require.Len(t, situation.Properties, 3)
	require.Equal(t, "overallSeverity", situation.Properties[0].Name)
	require.Equal(t, xml.Name{Space: d2, Local: "SeverityEnum"}, situation.Properties[0].Type)
	require.Equal(t, "unbounded", situation.Properties[1].MaxOccurs)
	require.Equal(t, "d2LogicalModel", situation.Properties[2].Name)
	require.Equal(t, xml.Name{Space: d2, Local: "d2LogicalModel"}, situation.Properties[2].Ref)

	require.Len(t, situation.Attributes, 1)
	require.Equal(t, xml.Name{Space: SchemaNS, Local: "string"}, situation.Attributes[0].Type)
}

func TestParseExtension(t *testing.T) {
	s := parseSchema(t, situationSchema)
	accident, ok := s.ComplexType("Accident")
	require.True(t, ok)
	require.Equal(t, 1, accident.Extensions)
	require.Equal(t, xml.Name{Space: d2, Local: "SituationRecord"}, accident.Base)
	require.Len(t, accident.Properties, 1)
	require.Len(t, accident.Attributes, 1)

	super, err := s.Supertype(accident)
	require.NoError(t, err)
	require.Equal(t, "SituationRecord", super.Name)
	require.True(t, super.Abstract)

	// Elements nested in a property's annotation are not properties.
	require.Len(t, super.Properties, 1)
}

func TestParseSimpleContent(t *testing.T) {
	s := parseSchema(t, situationSchema)
	pct, ok := s.ComplexType("Percentage")
	require.True(t, ok)
	require.Equal(t, SimpleContent, pct.Content)
	require.False(t, pct.HasSuper())
	require.Equal(t, xml.Name{Space: d2, Local: "PercentageValue"}, pct.ValueType)
	require.Len(t, pct.Attributes, 1)

	scalar, ok := s.IsScalar("Percentage")
	require.True(t, ok)
	require.True(t, scalar)
	scalar, ok = s.IsScalar("Situation")
	require.True(t, ok)
	require.False(t, scalar)
	_, ok = s.IsScalar("Nothing")
	require.False(t, ok)
}

func TestParseSimpleType(t *testing.T) {
	s := parseSchema(t, situationSchema)
	union, ok := s.SimpleType("AccidentTypeEnum")
	require.True(t, ok)
	require.Equal(t, []xml.Name{
		{Space: d2, Local: "SeverityEnum"},
		{Space: SchemaNS, Local: "string"},
	}, union.Refs)

	el, ok := s.Element("d2LogicalModel")
	require.True(t, ok)
	require.Equal(t, "D2LogicalModel", el.Type.Local)

	d, ok := s.Lookup(SimpleTypeKind, "SeverityEnum")
	require.True(t, ok)
	require.Equal(t, "SeverityEnum", d.Ident())
	_, ok = s.Lookup(ComplexTypeKind, "SeverityEnum")
	require.False(t, ok)
}

func TestUndeclaredSupertype(t *testing.T) {
	s := parseSchema(t, `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" xmlns:t="urn:t" targetNamespace="urn:t">
	  <xs:complexType name="Orphan">
	    <xs:complexContent><xs:extension base="t:Missing" /></xs:complexContent>
	  </xs:complexType>
	</xs:schema>`)
	orphan, _ := s.ComplexType("Orphan")
	_, err := s.Supertype(orphan)
	require.True(t, errors.Is(err, ErrUndeclaredSupertype), "got %v", err)
}

func TestForeignSupertype(t *testing.T) {
	s := parseSchema(t, `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema" xmlns:gml="http://www.opengis.net/gml/3.2" targetNamespace="urn:t">
	  <xs:complexType name="Feature">
	    <xs:complexContent><xs:extension base="gml:AbstractFeatureType" /></xs:complexContent>
	  </xs:complexType>
	</xs:schema>`)
	feature, _ := s.ComplexType("Feature")
	require.True(t, feature.HasSuper())
	super, err := s.Supertype(feature)
	require.NoError(t, err)
	require.Nil(t, super)
}

func TestParseErrors(t *testing.T) {
	root, err := xmltree.Parse([]byte(`<notschema/>`))
	require.NoError(t, err)
	_, err = Parse(root)
	require.True(t, errors.Is(err, ErrNotSchema))

	root, err = xmltree.Parse([]byte(`<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
	  <xs:complexType><xs:sequence /></xs:complexType>
	</xs:schema>`))
	require.NoError(t, err)
	_, err = Parse(root)
	require.ErrorIs(t, err, ErrMalformed)
	require.Contains(t, err.Error(), "schema")

	root, err = xmltree.Parse([]byte(`<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
	  <xs:complexType name="Broken"><xs:complexContent><xs:extension /></xs:complexContent></xs:complexType>
	</xs:schema>`))
	require.NoError(t, err)
	_, err = Parse(root)
	require.ErrorIs(t, err, ErrMalformed)
	require.Contains(t, err.Error(), "error at schema>complexType(Broken)>complexContent: extension has no base")
}

func TestDuplicateDeclarationLaterWins(t *testing.T) {
	s := parseSchema(t, `<xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema">
	  <xs:complexType name="A" />
	  <xs:simpleType name="A"><xs:restriction base="xs:string" /></xs:simpleType>
	  <xs:complexType name="A" abstract="true" />
	</xs:schema>`)
	require.Len(t, s.Declarations(), 2)
	a, ok := s.ComplexType("A")
	require.True(t, ok)
	require.True(t, a.Abstract)
}

func TestBuiltin(t *testing.T) {
	require.True(t, IsBuiltin(xml.Name{Space: SchemaNS, Local: "string"}))
	require.True(t, IsBuiltin(xml.Name{Space: SchemaNS, Local: "NMTOKENS"}))
	require.False(t, IsBuiltin(xml.Name{Space: SchemaNS, Local: "strng"}))
	require.False(t, IsBuiltin(xml.Name{Space: d2, Local: "string"}))
}

func TestKindString(t *testing.T) {
	require.Equal(t, "complexType", ComplexTypeKind.String())
	require.Equal(t, "simpleType", SimpleTypeKind.String())
	require.Equal(t, "element", ElementKind.String())
	require.Equal(t, "Kind(7)", Kind(7).String())
}

func TestNamespace(t *testing.T) {
	ns := Namespace{Prefix: "npra", URI: "urn:npra"}
	require.Equal(t, "npra:Situation", ns.Qualify("Situation"))
	require.Equal(t, "Situation", Namespace{URI: "urn:x"}.Qualify("Situation"))
	require.Equal(t, xml.Name{Space: "urn:npra", Local: "X"}, ns.Name("X"))
}
