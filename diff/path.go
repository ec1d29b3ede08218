package diff

import (
	"errors"
	"fmt"
	"strings"

	"github.com/CognitoIQ/xsd2gml/xmltree"
)

// Attributes that identify a node among its siblings, in order of
// preference.
var identityAttrs = [...]string{"name", "base", "type", "ref"}

// A Segment selects the children of a node with a given tag name
// and, if Attr is set, the given value for attribute Attr.
type Segment struct {
	Tag         string
	Attr, Value string
}

// SegmentOf returns the segment identifying el among its siblings.
func SegmentOf(el *xmltree.Element) Segment {
	seg := Segment{Tag: el.Name.Local}
	for _, attr := range identityAttrs {
		if v := el.Attr("", attr); v != "" {
			seg.Attr, seg.Value = attr, v
			break
		}
	}
	return seg
}

// Match reports whether el is selected by the segment.
func (seg Segment) Match(el *xmltree.Element) bool {
	if el.Name.Local != seg.Tag {
		return false
	}
	return seg.Attr == "" || el.Attr("", seg.Attr) == seg.Value
}

func (seg Segment) String() string {
	if seg.Attr == "" {
		return seg.Tag
	}
	quote := "'"
	if strings.Contains(seg.Value, "'") {
		quote = `"`
	}
	return seg.Tag + "[@" + seg.Attr + "=" + quote + seg.Value + quote + "]"
}

// A Path is a root-anchored sequence of segments. Its string form
// looks like
//
//	/schema/complexType[@name='Situation']/sequence/element[@name='record']
type Path []Segment

// PathOf returns the canonical path of el given the path of its
// parent.
func PathOf(parent Path, el *xmltree.Element) Path {
	p := make(Path, len(parent), len(parent)+1)
	copy(p, parent)
	return append(p, SegmentOf(el))
}

func (p Path) String() string {
	var buf strings.Builder
	for _, seg := range p {
		buf.WriteByte('/')
		buf.WriteString(seg.String())
	}
	return buf.String()
}

// Parent returns the path of the parent node. The parent of the root
// path is nil.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return nil
	}
	return p[:len(p)-1]
}

// Find returns the nodes in the tree rooted at root selected by p, in
// document order.
func (p Path) Find(root *xmltree.Element) []*xmltree.Element {
	if len(p) == 0 || !p[0].Match(root) {
		return nil
	}
	nodes := []*xmltree.Element{root}
	for _, seg := range p[1:] {
		var next []*xmltree.Element
		for _, n := range nodes {
			next = append(next, n.ChildrenFunc(seg.Match)...)
		}
		if len(next) == 0 {
			return nil
		}
		nodes = next
	}
	return nodes
}

var errEmptyPath = errors.New("empty path")

// ParsePath parses the string form of a Path. Tag names may carry a
// namespace prefix, which is ignored.
func ParsePath(s string) (Path, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "/") {
		return nil, fmt.Errorf("path %q is not absolute", s)
	}
	var p Path
	for _, part := range splitPath(s[1:]) {
		seg, err := parseSegment(part)
		if err != nil {
			return nil, fmt.Errorf("path %q: %w", s, err)
		}
		p = append(p, seg)
	}
	if len(p) == 0 {
		return nil, errEmptyPath
	}
	return p, nil
}

// splitPath splits s on slashes outside of quoted values.
func splitPath(s string) []string {
	var parts []string
	var quote byte
	start := 0
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '/':
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}

func parseSegment(s string) (Segment, error) {
	var seg Segment
	tag, pred, hasPred := strings.Cut(s, "[")
	if _, local, ok := strings.Cut(tag, ":"); ok {
		tag = local
	}
	if tag == "" {
		return seg, fmt.Errorf("empty step in %q", s)
	}
	seg.Tag = tag
	if !hasPred {
		return seg, nil
	}
	if !strings.HasSuffix(pred, "]") || !strings.HasPrefix(pred, "@") {
		return seg, fmt.Errorf("malformed predicate in %q", s)
	}
	attr, value, ok := strings.Cut(pred[1:len(pred)-1], "=")
	if !ok || len(value) < 2 || value[0] != value[len(value)-1] || (value[0] != '\'' && value[0] != '"') {
		return seg, fmt.Errorf("malformed predicate in %q", s)
	}
	seg.Attr, seg.Value = strings.TrimSpace(attr), value[1:len(value)-1]
	return seg, nil
}
