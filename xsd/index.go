package xsd

import (
	"github.com/CognitoIQ/xsd2gml/xmltree"
)

type declKey struct {
	Kind Kind
	Name string
}

// A schemaIndex keeps top-level declarations in document order and
// indexed by (kind, name). Declaration names are unqualified; all of
// them live in the schema's target namespace.
type schemaIndex struct {
	decls  []Declaration
	byName map[declKey]int
}

func newIndex() *schemaIndex {
	return &schemaIndex{byName: make(map[declKey]int)}
}

// add stores d. A later declaration with the same kind and name
// replaces the earlier one in place and add returns false.
func (idx *schemaIndex) add(d Declaration) bool {
	key := declKey{d.Kind(), d.Ident()}
	if i, ok := idx.byName[key]; ok {
		idx.decls[i] = d
		return false
	}
	idx.byName[key] = len(idx.decls)
	idx.decls = append(idx.decls, d)
	return true
}

func (idx *schemaIndex) lookup(kind Kind, name string) (Declaration, bool) {
	i, ok := idx.byName[declKey{kind, name}]
	if !ok {
		return nil, false
	}
	return idx.decls[i], true
}

// DeclarationKey returns the (kind, name) identity of a top-level
// schema node, and false if the node is not a named declaration.
func DeclarationKey(el *xmltree.Element) (Kind, string, bool) {
	kind, ok := KindOf(el)
	if !ok {
		return 0, "", false
	}
	name := el.Attr("", "name")
	return kind, name, name != ""
}
