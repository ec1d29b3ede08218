package xsd

import "github.com/CognitoIQ/xsd2gml/xmltree"

// Search predicates for the xmltree.Element.SearchFunc and
// ChildrenFunc methods
type predicate func(el *xmltree.Element) bool

func and(fns ...predicate) predicate {
	return func(el *xmltree.Element) bool {
		for _, f := range fns {
			if !f(el) {
				return false
			}
		}
		return true
	}
}

func or(fns ...predicate) predicate {
	return func(el *xmltree.Element) bool {
		for _, f := range fns {
			if f(el) {
				return true
			}
		}
		return false
	}
}

func isElem(local string) predicate {
	return func(el *xmltree.Element) bool {
		return el.Name.Local == local && el.Name.Space == SchemaNS
	}
}

func hasAttr(local string) predicate {
	return func(el *xmltree.Element) bool {
		return el.Attr("", local) != ""
	}
}

var (
	isAnnotation    = isElem("annotation")
	isDocumentation = isElem("documentation")
	isAttribute     = isElem("attribute")
	isParticle      = and(isElem("element"), or(hasAttr("name"), hasAttr("ref")))
	isExtension     = isElem("extension")
	isDerivation    = or(isExtension, isElem("restriction"))
	isContent       = or(isElem("complexContent"), isElem("simpleContent"))
	isTypeDef       = or(isElem("complexType"), isElem("simpleType"))
)

// children returns the direct children of el matching fn.
func children(el *xmltree.Element, fn predicate) []*xmltree.Element {
	return el.ChildrenFunc(fn)
}

// particles collects the <element> particles of a content model in
// document order. Annotations and the bodies of nested elements are
// not searched.
func particles(el *xmltree.Element) []*xmltree.Element {
	var result []*xmltree.Element
	for i := range el.Children {
		c := &el.Children[i]
		switch {
		case isAnnotation(c), isAttribute(c):
		case isParticle(c):
			result = append(result, c)
		default:
			result = append(result, particles(c)...)
		}
	}
	return result
}

// inline calls fn for every descendant of el, parents first, skipping
// annotations and the bodies of nested element declarations.
func inline(el *xmltree.Element, fn func(*xmltree.Element)) {
	for i := range el.Children {
		c := &el.Children[i]
		if isAnnotation(c) || isParticle(c) {
			continue
		}
		fn(c)
		inline(c, fn)
	}
}
