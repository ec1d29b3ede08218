package xmltree

import (
	"bytes"
	"encoding/xml"
	"sort"
)

// Equal returns true if two xmltree.Elements are equal, ignoring
// differences in white space, sub-element order, and namespace prefixes.
// Neither element is modified.
func Equal(a, b *Element) bool {
	return equal(a, b, 0)
}

// sortKey orders siblings by tag name, then by the first identifying
// attribute, so that reordered declarations still compare equal.
func sortKey(el *Element) string {
	key := el.Name.Space + " " + el.Name.Local
	for _, attr := range [...]string{"name", "base", "type", "ref"} {
		if v := el.Attr("", attr); v != "" {
			return key + " " + attr + "=" + v
		}
	}
	return key
}

func sorted(children []Element) []*Element {
	result := make([]*Element, len(children))
	for i := range children {
		result[i] = &children[i]
	}
	sort.SliceStable(result, func(i, j int) bool {
		return sortKey(result[i]) < sortKey(result[j])
	})
	return result
}

func equal(a, b *Element, depth int) bool {
	const maxDepth = 1000
	if depth > maxDepth {
		return false
	}
	if !equalElement(a, b) {
		return false
	}
	if len(a.Children) != len(b.Children) {
		return false
	}
	if len(a.Children) == 0 {
		return bytes.Equal(bytes.TrimSpace(a.Content), bytes.TrimSpace(b.Content))
	}
	ac, bc := sorted(a.Children), sorted(b.Children)
	for i := range ac {
		if !equal(ac[i], bc[i], depth+1) {
			return false
		}
	}
	return true
}

func attrMap(el *Element) map[xml.Name]string {
	attrs := make(map[xml.Name]string)
	for _, a := range el.StartElement.Attr {
		if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
			continue
		}
		attrs[a.Name] = a.Value
	}
	return attrs
}

func equalElement(a, b *Element) bool {
	if a.Name != b.Name {
		return false
	}
	am, bm := attrMap(a), attrMap(b)
	if len(am) != len(bm) {
		return false
	}
	for k, v := range am {
		if w, ok := bm[k]; !ok || v != w {
			return false
		}
	}
	return true
}
