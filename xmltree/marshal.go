package xmltree

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"io"
	"strings"
)

const xmlURL = "http://www.w3.org/XML/1998/namespace"

// Marshal produces the XML encoding of an Element as a self-contained
// document. Namespace declarations for every prefix in scope are
// written on the outermost element, and nested elements only declare
// the bindings that differ from their parent's, so that the document
// produced by Marshal is a valid XML document even if the Element has
// been modified or moved between documents.
func Marshal(el *Element) []byte {
	var buf bytes.Buffer
	if err := Encode(&buf, el); err != nil {
		// bytes.Buffer.Write should never return an error
		panic(err)
	}
	return buf.Bytes()
}

// MarshalIndent is like Marshal, but begins each element on a new
// line, starting with prefix followed by one copy of indent per level
// of nesting. Elements without children are written on a single line.
func MarshalIndent(el *Element, prefix, indent string) []byte {
	var buf bytes.Buffer
	enc := encoder{w: bufio.NewWriter(&buf), prefix: prefix, indent: indent, pretty: true}
	if err := enc.encode(el, nil, 0); err != nil {
		panic(err)
	}
	enc.w.WriteByte('\n')
	if err := enc.w.Flush(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// Encode writes the XML encoding of the Element to w.
// Encode returns any errors encountered writing to w.
func Encode(w io.Writer, el *Element) error {
	enc := encoder{w: bufio.NewWriter(w)}
	if err := enc.encode(el, nil, 0); err != nil {
		return err
	}
	return enc.w.Flush()
}

// String returns the XML encoding of an Element
// and its children as a string.
func (el *Element) String() string {
	return string(Marshal(el))
}

type encoder struct {
	w              *bufio.Writer
	prefix, indent string
	pretty         bool
}

func (e *encoder) newline(depth int) {
	if !e.pretty {
		return
	}
	e.w.WriteByte('\n')
	e.w.WriteString(e.prefix)
	for i := 0; i < depth; i++ {
		e.w.WriteString(e.indent)
	}
}

func (e *encoder) encode(el, parent *Element, depth int) error {
	if depth > recursionLimit {
		return errDeepXML
	}
	name := e.qualify(el, el.Name, true)
	e.w.WriteByte('<')
	e.w.WriteString(name)
	for _, a := range el.StartElement.Attr {
		if a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns") {
			continue
		}
		e.w.WriteByte(' ')
		e.w.WriteString(e.qualify(el, a.Name, false))
		e.w.WriteString(`="`)
		if err := xml.EscapeText(e.w, []byte(a.Value)); err != nil {
			return err
		}
		e.w.WriteByte('"')
	}
	for _, ns := range declarations(parent, el) {
		e.w.WriteString(" xmlns")
		if ns.Local != "" {
			e.w.WriteByte(':')
			e.w.WriteString(ns.Local)
		}
		e.w.WriteString(`="`)
		if err := xml.EscapeText(e.w, []byte(ns.Space)); err != nil {
			return err
		}
		e.w.WriteByte('"')
	}
	if len(el.Children) == 0 {
		if len(bytes.TrimSpace(el.Content)) == 0 {
			_, err := e.w.WriteString(" />")
			return err
		}
		e.w.WriteByte('>')
		e.w.Write(el.Content)
	} else {
		e.w.WriteByte('>')
		for i := range el.Children {
			e.newline(depth + 1)
			if err := e.encode(&el.Children[i], el, depth+1); err != nil {
				return err
			}
		}
		e.newline(depth)
	}
	e.w.WriteString("</")
	e.w.WriteString(name)
	_, err := e.w.WriteString(">")
	return err
}

// qualify renders name using the prefixes in scope at el. Unprefixed
// attributes stay unprefixed, and names in unknown namespaces fall
// back to their local part.
func (e *encoder) qualify(el *Element, name xml.Name, isElement bool) string {
	if name.Space == "" {
		return name.Local
	}
	if name.Space == xmlURL || name.Space == "xml" {
		return "xml:" + name.Local
	}
	if !isElement {
		for i := len(el.ns) - 1; i >= 0; i-- {
			if ns := el.ns[i]; ns.Space == name.Space && ns.Local != "" {
				return ns.Local + ":" + name.Local
			}
		}
		if !strings.Contains(name.Space, "/") && !strings.Contains(name.Space, ":") {
			return name.Space + ":" + name.Local
		}
		return name.Local
	}
	if qname := el.Prefix(name); qname != "" {
		return qname
	}
	return name.Local
}

// declarations returns the namespace bindings el must declare: all of
// them at the outermost element, otherwise those whose prefix is bound
// differently, or not at all, at the parent.
func declarations(parent, el *Element) []xml.Name {
	var result []xml.Name
	seen := make(map[string]int)
	for _, ns := range el.ns {
		if i, ok := seen[ns.Local]; ok {
			result[i] = ns
			continue
		}
		seen[ns.Local] = len(result)
		result = append(result, ns)
	}
	if parent == nil {
		return result
	}
	diff := result[:0:0]
	for _, ns := range result {
		if uri, ok := parent.LookupPrefix(ns.Local); ok && uri == ns.Space {
			continue
		}
		diff = append(diff, ns)
	}
	return diff
}
