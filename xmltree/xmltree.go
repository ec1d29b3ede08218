// Package xmltree converts XML documents as a tree of Go structs.
//
// The xmltree package provides routines for accessing an XML document
// as a tree, along with functionality to resolve namespace-prefixed
// strings at any point in the tree. Trees may be modified, cloned and
// re-encoded; namespace declarations follow the elements they are
// attached to.
package xmltree // import "github.com/CognitoIQ/xsd2gml/xmltree"

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

const recursionLimit = 3000

var errDeepXML = errors.New("xmltree: xml document too deeply nested")

// An Element represents a single element in an XML document. Elements
// may have zero or more children. The byte array used by the Content
// field is shared among all elements in the document, and should not
// be modified. An Element also captures xml namespace prefixes, so
// that arbitrary QNames in attribute values can be resolved.
//
// Content is only written by the encoder for elements without
// children; it holds the raw, still-escaped text of the element.
type Element struct {
	xml.StartElement
	Content  []byte
	Children []Element
	Scope
}

// Attr gets the value of the first attribute whose name matches the
// space and local arguments. If space is the empty string, only
// attributes' local names are considered when looking for a match.
// If an attribute could not be found, the empty string is returned.
func (el *Element) Attr(space, local string) string {
	for _, v := range el.StartElement.Attr {
		if v.Name.Local != local {
			continue
		}
		if space == "" || space == v.Name.Space {
			return v.Value
		}
	}
	return ""
}

// HasAttr reports whether the Element carries an attribute with the
// given local name, regardless of its value.
func (el *Element) HasAttr(local string) bool {
	for _, v := range el.StartElement.Attr {
		if v.Name.Local == local && v.Name.Space != "xmlns" {
			return true
		}
	}
	return false
}

// SetAttr adds an XML attribute to an Element's existing Attributes.
// If the attribute already exists, it is replaced.
func (el *Element) SetAttr(space, local, value string) {
	for i, a := range el.StartElement.Attr {
		if a.Name.Local != local {
			continue
		}
		if space == "" || a.Name.Space == space {
			el.StartElement.Attr[i].Value = value
			return
		}
	}
	el.StartElement.Attr = append(el.StartElement.Attr, xml.Attr{
		Name:  xml.Name{Space: space, Local: local},
		Value: value,
	})
}

// RemoveAttr deletes every attribute with the given local name.
func (el *Element) RemoveAttr(local string) {
	attrs := el.StartElement.Attr[:0]
	for _, a := range el.StartElement.Attr {
		if a.Name.Local != local {
			attrs = append(attrs, a)
		}
	}
	el.StartElement.Attr = attrs
}

// Append adds child as the last child of el. The child inherits the
// namespace scope of el unless it already defines its own bindings.
func (el *Element) Append(child Element) *Element {
	el.Children = append(el.Children, child)
	return &el.Children[len(el.Children)-1]
}

// RemoveFunc removes every direct child of el for which fn returns
// true, and returns the number of removed children.
func (el *Element) RemoveFunc(fn func(*Element) bool) int {
	kept := el.Children[:0]
	n := 0
	for i := range el.Children {
		if fn(&el.Children[i]) {
			n++
			continue
		}
		kept = append(kept, el.Children[i])
	}
	el.Children = kept
	return n
}

// ChildrenFunc returns the direct children of el for which fn returns
// true, in document order.
func (el *Element) ChildrenFunc(fn func(*Element) bool) []*Element {
	var result []*Element
	for i := range el.Children {
		if fn(&el.Children[i]) {
			result = append(result, &el.Children[i])
		}
	}
	return result
}

// Clone returns a deep copy of el. Content is copied as well, so
// the clone shares no memory with the original document.
func (el *Element) Clone() *Element {
	c := el.clone(0)
	return &c
}

func (el *Element) clone(depth int) Element {
	c := Element{
		StartElement: el.StartElement.Copy(),
		Scope:        el.Scope.clone(),
	}
	if el.Content != nil {
		c.Content = append([]byte(nil), el.Content...)
	}
	if depth > recursionLimit {
		return c
	}
	if len(el.Children) > 0 {
		c.Children = make([]Element, len(el.Children))
		for i := range el.Children {
			c.Children[i] = el.Children[i].clone(depth + 1)
		}
	}
	return c
}

// SetScope replaces the namespace scope of el and all of its
// descendants. It is used when moving a subtree into a document
// with different namespace bindings.
func (el *Element) SetScope(scope Scope) {
	el.Scope = scope.clone()
	for i := range el.Children {
		el.Children[i].SetScope(scope)
	}
}

// Rescope removes the namespace declarations attached to el and its
// descendants and replaces their scope with scope. Use it before
// inserting a subtree into another document; the encoder declares
// whatever bindings the new scope requires.
func (el *Element) Rescope(scope Scope) {
	el.Walk(func(n *Element) bool {
		attrs := n.StartElement.Attr[:0]
		for _, a := range n.StartElement.Attr {
			if a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns") {
				continue
			}
			attrs = append(attrs, a)
		}
		n.StartElement.Attr = attrs
		return true
	})
	el.SetScope(scope)
}

// Save some typing when scanning xml
type scanner struct {
	*xml.Decoder
	tok xml.Token
	err error
}

func (s *scanner) scan() bool {
	if s.err != nil {
		return false
	}
	s.tok, s.err = s.Token()
	return s.err == nil
}

// Parse builds a tree of Elements by reading an XML document. The
// byte slice passed to Parse is expected to be a valid XML document
// with a single root element. Documents declaring a non-UTF-8
// encoding are transcoded first, so Content is always UTF-8.
func Parse(doc []byte) (*Element, error) {
	doc, err := toUTF8(doc)
	if err != nil {
		return nil, err
	}
	d := xml.NewDecoder(bytes.NewReader(doc))
	d.CharsetReader = func(_ string, r io.Reader) (io.Reader, error) { return r, nil }
	scanner := scanner{Decoder: d}
	root := new(Element)

	for scanner.scan() {
		if start, ok := scanner.tok.(xml.StartElement); ok {
			root.StartElement = start.Copy()
			break
		}
	}
	if scanner.err != nil {
		return nil, scanner.err
	}
	if err := root.parse(&scanner, doc, 0); err != nil {
		return nil, err
	}
	return root, nil
}

func toUTF8(doc []byte) ([]byte, error) {
	label := declaredEncoding(doc)
	switch strings.ToLower(label) {
	case "", "utf-8", "utf8":
		return doc, nil
	}
	r, err := charset.NewReaderLabel(label, bytes.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("xmltree: %w", err)
	}
	return io.ReadAll(r)
}

// declaredEncoding returns the encoding named in the XML declaration
// of doc, if it has one.
func declaredEncoding(doc []byte) string {
	tok, err := xml.NewDecoder(bytes.NewReader(doc)).RawToken()
	if err != nil {
		return ""
	}
	pi, ok := tok.(xml.ProcInst)
	if !ok || pi.Target != "xml" {
		return ""
	}
	inst := string(pi.Inst)
	i := strings.Index(inst, "encoding=")
	if i < 0 {
		return ""
	}
	v := inst[i+len("encoding="):]
	if len(v) < 2 {
		return ""
	}
	quote := v[0]
	if quote != '"' && quote != '\'' {
		return ""
	}
	if j := strings.IndexByte(v[1:], quote); j >= 0 {
		return v[1 : j+1]
	}
	return ""
}

func (el *Element) parse(scanner *scanner, data []byte, depth int) error {
	if depth > recursionLimit {
		return errDeepXML
	}
	el.pushNS(el.StartElement)

	begin := scanner.InputOffset()
	end := begin
walk:
	for scanner.scan() {
		switch tok := scanner.tok.(type) {
		case xml.StartElement:
			child := Element{StartElement: tok.Copy(), Scope: el.Scope}
			if err := child.parse(scanner, data, depth+1); err != nil {
				return err
			}
			el.Children = append(el.Children, child)
		case xml.EndElement:
			if tok.Name != el.Name {
				return fmt.Errorf("expecting </%s>, got </%s>", el.Prefix(el.Name), el.Prefix(tok.Name))
			}
			if int(end) <= len(data) {
				el.Content = data[int(begin):int(end)]
			}
			break walk
		}
		end = scanner.InputOffset()
	}
	return scanner.err
}

// SearchFunc traverses the Element tree in depth-first order and returns
// a slice of Elements for which the function fn returns true. The root
// element itself is not considered.
func (root *Element) SearchFunc(fn func(*Element) bool) []*Element {
	var results []*Element
	var search func(el *Element, depth int)

	search = func(el *Element, depth int) {
		if depth > recursionLimit {
			return
		}
		for i := range el.Children {
			child := &el.Children[i]
			if fn(child) {
				results = append(results, child)
			}
			search(child, depth+1)
		}
	}
	search(root, 0)
	return results
}

// Search searches the Element tree for Elements with an xml tag
// matching the name and xml namespace. If space is the empty string,
// any namespace is matched.
func (root *Element) Search(space, local string) []*Element {
	return root.SearchFunc(func(el *Element) bool {
		if local != el.Name.Local {
			return false
		}
		return space == "" || space == el.Name.Space
	})
}

// Walk calls fn for el and every descendant of el, parents before
// children. Returning false from fn skips the children of that element.
func (el *Element) Walk(fn func(*Element) bool) {
	el.walk(fn, 0)
}

func (el *Element) walk(fn func(*Element) bool, depth int) {
	if depth > recursionLimit || !fn(el) {
		return
	}
	for i := range el.Children {
		el.Children[i].walk(fn, depth+1)
	}
}
