package gml

// MultilingualString is the name of the built-in multilingual string
// feature, which replaces the multilingual-string family of source
// types.
const MultilingualString = "MultilingualString"

// Multilingual returns the built-in multilingual string feature: a
// value and its language.
func (e *Emitter) Multilingual() Triple {
	prop := func(name, typ string) Property {
		return Property{
			Name:  name,
			Type:  typ,
			Class: Scalar,
			Node:  e.node("element", "name", name, "maxOccurs", "1", "type", typ),
		}
	}
	return e.Emit(&Flattened{
		Name: MultilingualString,
		Properties: []Property{
			prop("value", "xs:string"),
			prop("lang", "xs:language"),
		},
	})
}

// Substitutions returns the default geometry type substitutions: DATEX
// geometry types are replaced by the generic GML geometry property.
func Substitutions() map[string]string {
	return map[string]string{
		"GMLLinearRing":   "gml:GeometryPropertyType",
		"GMLLineString":   "gml:GeometryPropertyType",
		"GMLMultiPolygon": "gml:GeometryPropertyType",
		"GMLPolygon":      "gml:GeometryPropertyType",
	}
}
