package xmltree

import (
	"encoding/xml"
	"strings"
)

// A Scope is a list of XML namespace prefixes in effect at a point in
// a document, from least specific to most specific. In each binding
// the Space field is the canonical namespace and the Local field is
// the prefix; the default namespace has an empty prefix.
type Scope struct {
	ns []xml.Name
}

// NewScope builds a Scope from prefix/URI pairs.
func NewScope(bindings ...xml.Name) Scope {
	var s Scope
	for _, b := range bindings {
		s = s.Add(b.Local, b.Space)
	}
	return s
}

// Bindings returns the namespace bindings of the scope, outermost
// first. The returned slice must not be modified.
func (scope *Scope) Bindings() []xml.Name {
	return scope.ns
}

// Add returns a copy of scope with an additional binding of prefix
// to uri. The receiver is not modified.
func (scope Scope) Add(prefix, uri string) Scope {
	ns := make([]xml.Name, len(scope.ns), len(scope.ns)+1)
	copy(ns, scope.ns)
	return Scope{ns: append(ns, xml.Name{Space: uri, Local: prefix})}
}

func (scope Scope) clone() Scope {
	if scope.ns == nil {
		return scope
	}
	return Scope{ns: scope.ns[:len(scope.ns):len(scope.ns)]}
}

// Resolve translates an XML QName (namespace-prefixed string) to an
// xml.Name with a canonicalized namespace in its Space field. This can
// be used when working with XSD documents, which put QNames in attribute
// values. If qname does not have a prefix, the default namespace is used.
// If a namespace prefix cannot be resolved, the returned value's Space
// field will be the unresolved prefix. Use the ResolveNS function to
// detect when a namespace prefix cannot be resolved.
func (scope *Scope) Resolve(qname string) xml.Name {
	name, _ := scope.ResolveNS(qname)
	return name
}

// The ResolveNS method is like Resolve, but returns false for its second
// return value if a namespace prefix cannot be resolved.
func (scope *Scope) ResolveNS(qname string) (xml.Name, bool) {
	prefix, local := SplitQName(qname)
	for i := len(scope.ns) - 1; i >= 0; i-- {
		if scope.ns[i].Local == prefix {
			return xml.Name{Space: scope.ns[i].Space, Local: local}, true
		}
	}
	return xml.Name{Space: prefix, Local: local}, false
}

// ResolveDefault is like Resolve, but allows for the default namespace to
// be overridden. The namespace of strings without a namespace prefix
// (known as an NCName in XML terminology) will be defaultns.
func (scope *Scope) ResolveDefault(qname, defaultns string) xml.Name {
	if defaultns == "" || strings.Contains(qname, ":") {
		return scope.Resolve(qname)
	}
	return xml.Name{Space: defaultns, Local: qname}
}

// Prefix is the inverse of Resolve. It uses the closest prefix
// defined for a namespace to create a string of the form
// prefix:local, or just local for the default namespace. If the
// namespace cannot be found, an empty string is returned.
func (scope *Scope) Prefix(name xml.Name) (qname string) {
	for i := len(scope.ns) - 1; i >= 0; i-- {
		if scope.ns[i].Space != name.Space {
			continue
		}
		if scope.ns[i].Local == "" {
			return name.Local
		}
		return scope.ns[i].Local + ":" + name.Local
	}
	return ""
}

// LookupPrefix returns the namespace bound to prefix, if any.
func (scope *Scope) LookupPrefix(prefix string) (string, bool) {
	for i := len(scope.ns) - 1; i >= 0; i-- {
		if scope.ns[i].Local == prefix {
			return scope.ns[i].Space, true
		}
	}
	return "", false
}

func (scope *Scope) pushNS(tag xml.StartElement) {
	var added []xml.Name
	for _, attr := range tag.Attr {
		if attr.Name.Space == "xmlns" {
			added = append(added, xml.Name{Space: attr.Value, Local: attr.Name.Local})
		} else if attr.Name.Space == "" && attr.Name.Local == "xmlns" {
			added = append(added, xml.Name{Space: attr.Value, Local: ""})
		}
	}
	if len(added) > 0 {
		scope.ns = append(scope.ns, added...)
		// Ensure that future additions to the scope create
		// a new backing array. This prevents the scope from
		// being clobbered during parsing.
		scope.ns = scope.ns[:len(scope.ns):len(scope.ns)]
	}
}

// SplitQName splits a QName of the form prefix:local. A name without
// a colon has an empty prefix.
func SplitQName(qname string) (prefix, local string) {
	if i := strings.IndexByte(qname, ':'); i >= 0 {
		return qname[:i], qname[i+1:]
	}
	return "", qname
}
