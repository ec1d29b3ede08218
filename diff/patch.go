package diff

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/CognitoIQ/xsd2gml/xmltree"
)

// A Logger receives informational messages about paths and rules that
// could not be applied. *log.Logger satisfies the Logger interface.
type Logger interface {
	Printf(format string, v ...interface{})
}

// A Fixup sets attribute Attr to Value on every node selected by
// Path. Fixups run after all paths of a report have been applied.
type Fixup struct {
	Path        string
	Attr, Value string
}

// GroupOfLocations redirects the groupOfLocations property of the
// situation record feature to the wrapper type declared under prefix.
func GroupOfLocations(prefix string) Fixup {
	return Fixup{
		Path: "/schema/complexType[@name='SituationRecordType']" +
			"/complexContent/extension[@base='gml:AbstractFeatureType']" +
			"/sequence/element[@name='groupOfLocations']",
		Attr:  "type",
		Value: prefix + ":GroupOfLocationsType",
	}
}

// Attributes whose prefix is moved from the template prefix to the
// working prefix in grafted subtrees.
var graftedAttrs = []string{"type", "base"}

// A Patcher grafts subtrees of a reference schema into a working
// schema.
type Patcher struct {
	// Prefix used for references in the reference schema.
	TemplatePrefix string
	// Prefix used for the same namespace in the working schema.
	WorkingPrefix string
	Fixups        []Fixup
	// Optional; if nil, skipped paths are not reported.
	Logger Logger
}

func (p *Patcher) logf(format string, v ...interface{}) {
	if p.Logger != nil {
		p.Logger.Printf(format, v...)
	}
}

// Apply returns a copy of origin with the nodes of target named by
// paths appended to their parents. A path is applied only if its
// parent resolves to exactly one node in origin. Same-named <element>
// siblings are replaced by the grafted node. After grafting, repeated
// properties of a complex type are reduced to the one typed as a
// property type, and the fixups are applied. Malformed paths are
// logged and skipped; only a malformed fixup path is an error.
// Neither origin nor target is modified.
func (p *Patcher) Apply(paths []string, origin, target *xmltree.Element) (*xmltree.Element, error) {
	result := origin.Clone()
	for _, s := range paths {
		path, err := ParsePath(s)
		if err != nil {
			p.logf("%v, skipping", err)
			continue
		}
		if len(path) < 2 {
			p.logf("%s: cannot graft the document root", s)
			continue
		}
		parents := path.Parent().Find(result)
		if len(parents) != 1 {
			p.logf("%s: parent matches %d nodes, skipping", s, len(parents))
			continue
		}
		nodes := path.Find(target)
		if len(nodes) == 0 {
			p.logf("%s: not found in reference schema, skipping", s)
			continue
		}
		p.graft(parents[0], nodes[0])
	}
	dedupeProperties(result)
	for _, fix := range p.Fixups {
		path, err := ParsePath(fix.Path)
		if err != nil {
			return nil, fmt.Errorf("fixup: %w", err)
		}
		nodes := path.Find(result)
		if len(nodes) == 0 {
			p.logf("fixup %s matched nothing", fix.Path)
		}
		for _, n := range nodes {
			n.SetAttr("", fix.Attr, fix.Value)
		}
	}
	return result, nil
}

func (p *Patcher) graft(parent, node *xmltree.Element) {
	if name := node.Attr("", "name"); name != "" {
		parent.RemoveFunc(func(el *xmltree.Element) bool {
			return el.Name.Local == "element" && el.Attr("", "name") == name
		})
	}
	c := node.Clone()
	if p.TemplatePrefix != "" && p.WorkingPrefix != "" {
		c.Walk(func(n *xmltree.Element) bool {
			for i, a := range n.StartElement.Attr {
				if a.Name.Space != "" || !slices.Contains(graftedAttrs, a.Name.Local) {
					continue
				}
				if prefix, local, ok := strings.Cut(a.Value, ":"); ok && prefix == p.TemplatePrefix {
					n.StartElement.Attr[i].Value = p.WorkingPrefix + ":" + local
				}
			}
			return true
		})
	}
	scope := parent.Scope
	for _, b := range node.Bindings() {
		if _, ok := scope.LookupPrefix(b.Local); ok || declared(scope, b.Space) {
			continue
		}
		scope = scope.Add(b.Local, b.Space)
	}
	c.Rescope(scope)
	parent.Append(*c)
}

func declared(scope xmltree.Scope, uri string) bool {
	for _, b := range scope.Bindings() {
		if b.Space == uri {
			return true
		}
	}
	return false
}

// dedupeProperties removes, within each top-level complex type, the
// <element> declarations sharing a name with another one typed as a
// property type.
func dedupeProperties(root *xmltree.Element) {
	for _, ct := range root.ChildrenFunc(isComplexType) {
		count := make(map[string]int)
		preferred := make(map[string]bool)
		for _, el := range ct.SearchFunc(isNamedElement) {
			name := el.Attr("", "name")
			count[name]++
			if isPropertyType(el) {
				preferred[name] = true
			}
		}
		ct.Walk(func(n *xmltree.Element) bool {
			n.RemoveFunc(func(el *xmltree.Element) bool {
				if !isNamedElement(el) {
					return false
				}
				name := el.Attr("", "name")
				return count[name] > 1 && preferred[name] && !isPropertyType(el)
			})
			return true
		})
	}
}

func isComplexType(el *xmltree.Element) bool { return el.Name.Local == "complexType" }

func isNamedElement(el *xmltree.Element) bool {
	return el.Name.Local == "element" && el.Attr("", "name") != ""
}

func isPropertyType(el *xmltree.Element) bool {
	return strings.HasSuffix(el.Attr("", "type"), "PropertyType")
}
