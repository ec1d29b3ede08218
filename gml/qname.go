package gml

import (
	"encoding/xml"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/CognitoIQ/xsd2gml/xmltree"
	"github.com/CognitoIQ/xsd2gml/xsd"
)

// Attributes holding one QName, and holding a list of QNames.
var (
	qnameAttrs     = []string{"type", "base", "ref", "itemType", "substitutionGroup"}
	qnameListAttrs = []string{"memberTypes"}
)

// Scope returns the namespace bindings of a generated schema: the
// XML Schema namespace as xs, GML as gml, and the target namespace
// under its own prefix.
func Scope(target xsd.Namespace) xmltree.Scope {
	return xmltree.NewScope(
		xml.Name{Space: xsd.SchemaNS, Local: "xs"},
		xml.Name{Space: xsd.GMLNS, Local: "gml"},
		xml.Name{Space: target.URI, Local: target.Prefix},
	)
}

// A retargeter moves declarations from a source schema into a
// generated schema. References to the source namespace are rewritten
// to the target namespace, and all other QNames are re-expressed with
// the prefixes of the generated schema.
type retargeter struct {
	schema *xsd.Schema
	target xsd.Namespace
}

// qualify renders name as it must be written in the generated schema.
// It returns any binding the generated schema lacks for the name.
func (r retargeter) qualify(n *xmltree.Element, lexical string) (string, *xml.Name) {
	name, ok := n.ResolveNS(lexical)
	prefix, _ := xmltree.SplitQName(lexical)
	if !ok && prefix != "" {
		// unbound prefixes, including the reserved xml prefix,
		// are left alone
		return lexical, nil
	}
	switch {
	case r.schema.IsLocal(name):
		return r.target.Qualify(name.Local), nil
	case name.Space == xsd.SchemaNS:
		return "xs:" + name.Local, nil
	case name.Space == xsd.GMLNS:
		return "gml:" + name.Local, nil
	case name.Space == r.target.URI:
		return r.target.Qualify(name.Local), nil
	}
	if prefix == "" {
		return lexical, nil
	}
	return lexical, &xml.Name{Space: name.Space, Local: prefix}
}

// clone returns a copy of el with every QName reference retargeted.
func (r retargeter) clone(el *xmltree.Element) *xmltree.Element {
	c := el.Clone()
	var extra []xml.Name
	c.Walk(func(n *xmltree.Element) bool {
		for i, a := range n.StartElement.Attr {
			if a.Name.Space != "" {
				continue
			}
			switch {
			case slices.Contains(qnameAttrs, a.Name.Local):
				v, binding := r.qualify(n, a.Value)
				n.StartElement.Attr[i].Value = v
				if binding != nil {
					extra = append(extra, *binding)
				}
			case slices.Contains(qnameListAttrs, a.Name.Local):
				var values []string
				for _, item := range strings.Fields(a.Value) {
					v, binding := r.qualify(n, item)
					values = append(values, v)
					if binding != nil {
						extra = append(extra, *binding)
					}
				}
				n.StartElement.Attr[i].Value = strings.Join(values, " ")
			}
		}
		return true
	})
	scope := Scope(r.target)
	for _, b := range extra {
		if uri, ok := scope.LookupPrefix(b.Local); !ok || uri != b.Space {
			scope = scope.Add(b.Local, b.Space)
		}
	}
	c.Rescope(scope)
	return c
}
