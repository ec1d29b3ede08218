// Package merge combines several schema documents into one working
// schema in a single target namespace.
package merge // import "github.com/CognitoIQ/xsd2gml/merge"

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/CognitoIQ/xsd2gml/xmltree"
	"github.com/CognitoIQ/xsd2gml/xsd"
)

// A Logger receives informational messages about recoverable
// problems. *log.Logger satisfies the Logger interface.
type Logger interface {
	Printf(format string, v ...interface{})
}

// Attributes holding references that are moved to the target prefix.
var qnameAttrs = []string{"name", "type", "base", "ref"}

// Prefixes that are never moved to the target prefix.
var reservedPrefixes = []string{"xs", "gml", "xml"}

// A Merger unions schema documents.
type Merger struct {
	Target xsd.Namespace
	// Optional; if nil, duplicates and prefix conflicts are not
	// reported.
	Logger Logger
}

func (m *Merger) logf(format string, v ...interface{}) {
	if m.Logger != nil {
		m.Logger.Printf(format, v...)
	}
}

// Merge builds a new schema holding every top-level declaration of
// docs except <import>. A declaration whose kind and name repeat an
// earlier one replaces it. References of the form prefix:local are
// moved to the target prefix unless prefix denotes XML Schema or GML.
// The input documents are not modified.
func (m *Merger) Merge(docs ...*xmltree.Element) (*xmltree.Element, error) {
	if m.Target.Prefix == "" || m.Target.URI == "" {
		return nil, errors.New("merge: target namespace needs a prefix and a URI")
	}
	reg := NewRegistry(
		xsd.Namespace{Prefix: "xs", URI: xsd.SchemaNS},
		xsd.Namespace{Prefix: "gml", URI: xsd.GMLNS},
		m.Target,
	)
	for i, doc := range docs {
		if (doc.Name != xml.Name{Space: xsd.SchemaNS, Local: "schema"}) {
			return nil, fmt.Errorf("merge: document %d <%s>: %w", i, doc.Name.Local, xsd.ErrNotSchema)
		}
		for _, ns := range xsd.Bindings(doc) {
			reg.Add(ns)
		}
	}
	for _, ns := range reg.Conflicts() {
		m.logf("prefix %s is bound to several namespaces; %s is not declared", ns.Prefix, ns.URI)
	}
	scope := reg.Scope()

	root := &xmltree.Element{
		StartElement: xml.StartElement{Name: xml.Name{Space: xsd.SchemaNS, Local: "schema"}},
		Scope:        scope,
	}
	for _, doc := range docs {
		for _, a := range doc.StartElement.Attr {
			if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" || root.HasAttr(a.Name.Local) {
				continue
			}
			root.StartElement.Attr = append(root.StartElement.Attr, a)
		}
	}
	root.SetAttr("", "targetNamespace", m.Target.URI)

	seen := make(map[string]int)
	for _, doc := range docs {
		for i := range doc.Children {
			child := &doc.Children[i]
			if (child.Name == xml.Name{Space: xsd.SchemaNS, Local: "import"}) {
				continue
			}
			c := m.copy(child, scope)
			kind, name, ok := xsd.DeclarationKey(c)
			if !ok {
				root.Append(*c)
				continue
			}
			key := kind.String() + " " + name
			if j, dup := seen[key]; dup {
				m.logf("%s %s already found; later declaration takes precedence", kind, name)
				root.Children[j] = *c
				continue
			}
			seen[key] = len(root.Children)
			root.Append(*c)
		}
	}
	return root, nil
}

// copy clones a top-level node into the merged scope, rewriting its
// references. Namespaces the merged scope lacks keep their source
// binding on the copy.
func (m *Merger) copy(el *xmltree.Element, merged xmltree.Scope) *xmltree.Element {
	c := el.Clone()
	c.Walk(func(n *xmltree.Element) bool {
		for i, a := range n.StartElement.Attr {
			if a.Name.Space != "" || !slices.Contains(qnameAttrs, a.Name.Local) {
				continue
			}
			n.StartElement.Attr[i].Value = m.rewrite(n, a.Value)
		}
		return true
	})
	scope := merged
	for _, b := range el.Bindings() {
		if _, ok := scope.LookupPrefix(b.Local); ok || declared(merged, b.Space) {
			continue
		}
		scope = scope.Add(b.Local, b.Space)
	}
	c.Rescope(scope)
	return c
}

func declared(scope xmltree.Scope, uri string) bool {
	for _, b := range scope.Bindings() {
		if b.Space == uri {
			return true
		}
	}
	return false
}

// rewrite moves a prefixed reference to the target prefix. Prefixes
// bound to XML Schema or GML are normalized to xs and gml.
func (m *Merger) rewrite(n *xmltree.Element, value string) string {
	if strings.Count(value, ":") != 1 {
		return value
	}
	prefix, local := xmltree.SplitQName(value)
	if prefix == "" || local == "" {
		return value
	}
	if uri, ok := n.LookupPrefix(prefix); ok {
		switch uri {
		case xsd.SchemaNS:
			return "xs:" + local
		case xsd.GMLNS:
			return "gml:" + local
		}
	}
	if slices.Contains(reservedPrefixes, prefix) {
		return value
	}
	return m.Target.Qualify(local)
}
