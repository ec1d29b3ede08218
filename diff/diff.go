// Package diff computes structural differences between two schema
// trees as a list of canonical paths, and grafts the missing subtrees
// from one tree into the other.
//
// A canonical path names a node by the tag names of its ancestors and
// the first identifying attribute (name, base, type or ref) of each:
//
//	/schema/complexType[@name='X']/complexContent/extension[@base='gml:AbstractFeatureType']
//
// Reports are newline-delimited lists of such paths.
package diff // import "github.com/CognitoIQ/xsd2gml/diff"

import (
	"strings"

	"github.com/CognitoIQ/xsd2gml/xmltree"
)

// Diff returns the canonical paths of the nodes in target that have
// no counterpart in origin. A missing node is reported once; its
// descendants are not examined. Paths are returned in document order
// of target, without duplicates.
func Diff(target, origin *xmltree.Element) []string {
	var (
		result []string
		seen   = make(map[string]bool)
	)
	var walk func(el *xmltree.Element, parent Path, matches []*xmltree.Element)
	walk = func(el *xmltree.Element, parent Path, matches []*xmltree.Element) {
		path := PathOf(parent, el)
		seg := path[len(path)-1]
		var found []*xmltree.Element
		for _, m := range matches {
			found = append(found, m.ChildrenFunc(seg.Match)...)
		}
		if len(found) == 0 {
			if s := path.String(); !seen[s] {
				seen[s] = true
				result = append(result, s)
			}
			return
		}
		for i := range el.Children {
			walk(&el.Children[i], path, found)
		}
	}
	root := Path{SegmentOf(target)}
	if !root[0].Match(origin) {
		return []string{root.String()}
	}
	for i := range target.Children {
		walk(&target.Children[i], root, []*xmltree.Element{origin})
	}
	return result
}

// ParseReport splits a newline-delimited report into paths. Blank
// lines and repeated paths are dropped.
func ParseReport(text string) []string {
	var paths []string
	seen := make(map[string]bool)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || seen[line] {
			continue
		}
		seen[line] = true
		paths = append(paths, line)
	}
	return paths
}

// FormatReport joins paths into a newline-delimited report.
func FormatReport(paths []string) string {
	if len(paths) == 0 {
		return ""
	}
	return strings.Join(paths, "\n") + "\n"
}
