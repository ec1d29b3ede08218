package gmlgen

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"

	"github.com/CognitoIQ/xsd2gml/closure"
	"github.com/CognitoIQ/xsd2gml/diff"
	"github.com/CognitoIQ/xsd2gml/gml"
	"github.com/CognitoIQ/xsd2gml/internal/ordered"
	"github.com/CognitoIQ/xsd2gml/merge"
	"github.com/CognitoIQ/xsd2gml/xmltree"
	"github.com/CognitoIQ/xsd2gml/xsd"
)

var (
	errNoInput = errors.New("no input schema")
	errNoRoots = errors.New("no root types configured")
)

// lookupTarget returns the target namespace of the first document
// declaring one, with the prefix that document binds it to.
func lookupTarget(docs ...*xmltree.Element) (xsd.Namespace, error) {
	for _, doc := range docs {
		uri := doc.Attr("", "targetNamespace")
		if uri == "" {
			continue
		}
		for _, ns := range xsd.Bindings(doc) {
			if ns.URI == uri && ns.Prefix != "" {
				return ns, nil
			}
		}
		return xsd.Namespace{}, fmt.Errorf("target namespace %s has no prefix", uri)
	}
	return xsd.Namespace{}, errors.New("no target namespace configured or declared")
}

// resolveTarget returns the namespace of the generated schema. Parts
// not configured are taken from the inputs; cfg is left unchanged.
func (cfg *Config) resolveTarget(docs ...*xmltree.Element) (xsd.Namespace, error) {
	target := cfg.target
	if target.URI != "" && target.Prefix != "" {
		return target, nil
	}
	if target.Prefix != "" {
		for _, doc := range docs {
			if uri := doc.Attr("", "targetNamespace"); uri != "" {
				target.URI = uri
				cfg.debugf("using target namespace %s:%s", target.Prefix, target.URI)
				return target, nil
			}
		}
	}
	found, err := lookupTarget(docs...)
	if err != nil {
		return xsd.Namespace{}, err
	}
	cfg.debugf("using target namespace %s:%s", found.Prefix, found.URI)
	return found, nil
}

// Merge combines docs into one schema in the target namespace.
func (cfg *Config) Merge(docs ...*xmltree.Element) (*xmltree.Element, error) {
	if len(docs) == 0 {
		return nil, errNoInput
	}
	target, err := cfg.resolveTarget(docs...)
	if err != nil {
		return nil, err
	}
	return cfg.merge(target, docs...)
}

func (cfg *Config) merge(target xsd.Namespace, docs ...*xmltree.Element) (*xmltree.Element, error) {
	m := merge.Merger{Target: target, Logger: printfFunc(cfg.logf)}
	return m.Merge(docs...)
}

// Convert merges docs and converts every type reachable from the
// configured root types into a GML feature. The result imports GML
// and holds, in order, the declarations of each feature, copies of
// the simple types they use, and the multilingual string feature.
func (cfg *Config) Convert(docs ...*xmltree.Element) (*xmltree.Element, error) {
	if len(cfg.roots) == 0 {
		return nil, errNoRoots
	}
	if len(docs) == 0 {
		return nil, errNoInput
	}
	target, err := cfg.resolveTarget(docs...)
	if err != nil {
		return nil, err
	}
	merged, err := cfg.merge(target, docs...)
	if err != nil {
		return nil, err
	}
	s, err := xsd.Parse(merged)
	if err != nil {
		return nil, err
	}

	exclude := append([]string(nil), cfg.exclude...)
	exclude = append(exclude, ordered.Keys(cfg.substitute)...)
	w, err := closure.New(s, exclude...)
	if err != nil {
		return nil, err
	}
	if !cfg.multilingual {
		for _, name := range closure.Multilingual {
			delete(w.Exclude, name)
		}
		for _, name := range exclude {
			w.Exclude[name] = true
		}
	}
	c, err := w.Walk(cfg.roots...)
	if err != nil {
		return nil, err
	}
	cfg.logf("converting %d complex types and %d simple types", len(c.Roots), len(c.SimpleTypes))

	var (
		flattener = gml.Flattener{Schema: s, Target: target, Substitute: cfg.substitute}
		emitter   = gml.Emitter{Target: target}
		out       = newSchema(target)
		seen      = make(map[string]bool)
	)
	add := func(decls ...*xmltree.Element) {
		for _, d := range decls {
			if kind, name, ok := xsd.DeclarationKey(d); ok {
				key := kind.String() + " " + name
				if seen[key] {
					cfg.logf("%s %s declared twice, dropping the second", kind, name)
					continue
				}
				seen[key] = true
			}
			out.Append(*d)
		}
	}
	for _, r := range c.Roots {
		flat, err := flattener.Merge(r.Root, r.Types)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", r.Root.Name, err)
		}
		cfg.debugf("%s: %d related types, %d properties", r.Root.Name, len(r.Types), len(flat.Properties))
		add(emitter.Emit(flat).Declarations()...)
	}
	for _, st := range c.SimpleTypes {
		add(flattener.Copy(st.Source()))
	}
	if cfg.multilingual {
		add(emitter.Multilingual().Declarations()...)
	}
	return out, nil
}

// newSchema returns an empty GML application schema for target.
func newSchema(target xsd.Namespace) *xmltree.Element {
	scope := gml.Scope(target)
	root := &xmltree.Element{
		StartElement: xml.StartElement{Name: xml.Name{Space: xsd.SchemaNS, Local: "schema"}},
		Scope:        scope,
	}
	root.SetAttr("", "targetNamespace", target.URI)
	root.SetAttr("", "elementFormDefault", "qualified")
	imp := xmltree.Element{
		StartElement: xml.StartElement{Name: xml.Name{Space: xsd.SchemaNS, Local: "import"}},
		Scope:        scope,
	}
	imp.SetAttr("", "namespace", xsd.GMLNS)
	imp.SetAttr("", "schemaLocation", xsd.GMLLocation)
	root.Append(imp)
	return root
}

// Diff returns the paths of the nodes of reference that generated
// lacks.
func (cfg *Config) Diff(reference, generated *xmltree.Element) []string {
	paths := diff.Diff(reference, generated)
	cfg.logf("%d differences with the reference schema", len(paths))
	return paths
}

// Patch grafts the nodes of reference named by report into a copy of
// generated, then applies the configured fixups. If report is nil,
// it is computed with Diff. The groupOfLocations fixup, when enabled,
// uses the prefix of the target namespace.
func (cfg *Config) Patch(report []string, generated, reference *xmltree.Element) (*xmltree.Element, error) {
	target, err := cfg.resolveTarget(generated)
	if err != nil {
		return nil, err
	}
	if report == nil {
		report = cfg.Diff(reference, generated)
	}
	fixups := append([]diff.Fixup(nil), cfg.fixups...)
	if cfg.groupOfLocations {
		fixups = append(fixups, diff.GroupOfLocations(target.Prefix))
	}
	p := diff.Patcher{
		TemplatePrefix: cfg.templatePrefix,
		WorkingPrefix:  target.Prefix,
		Fixups:         fixups,
		Logger:         printfFunc(cfg.errorf),
	}
	return p.Apply(report, generated, reference)
}

// Output serializes tree with an XML declaration and two-space
// indentation, and applies the configured rename rules.
func (cfg *Config) Output(tree *xmltree.Element) []byte {
	return cfg.rename.Apply(Serialize(tree, false, "  "))
}

// Serialize encodes tree as a document. Unless omitDeclaration is
// set, the document starts with an XML declaration. If indent is
// empty, the document is written on a single line.
func Serialize(tree *xmltree.Element, omitDeclaration bool, indent string) []byte {
	var buf bytes.Buffer
	if !omitDeclaration {
		buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	}
	if indent == "" {
		buf.Write(xmltree.Marshal(tree))
		buf.WriteByte('\n')
	} else {
		buf.Write(xmltree.MarshalIndent(tree, "", indent))
	}
	return buf.Bytes()
}
