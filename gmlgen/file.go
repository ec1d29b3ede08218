package gmlgen

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/CognitoIQ/xsd2gml/diff"
	"github.com/CognitoIQ/xsd2gml/internal/ordered"
)

// A File is a conversion configuration as stored on disk:
//
//	roots: [Situation, ElaboratedData]
//	prefix: npra
//	namespace: http://www.vegvesen.no/datex/1.0
//	substitute:
//	  GMLPolygon: gml:GeometryPropertyType
//	groupOfLocations: true
//	rename:
//	  - "D2LogicalModel: -> npra:"
//
// Fields left out keep the value of DefaultOptions.
type File struct {
	Roots     []string `yaml:"roots"`
	Prefix    string   `yaml:"prefix"`
	Namespace string   `yaml:"namespace"`
	Exclude   []string `yaml:"exclude"`
	// Added to the default substitutions.
	Substitute     map[string]string `yaml:"substitute"`
	Multilingual   *bool             `yaml:"multilingual"`
	TemplatePrefix string            `yaml:"templatePrefix"`
	// Redirect groupOfLocations to GroupOfLocationsType after
	// patching.
	GroupOfLocations bool         `yaml:"groupOfLocations"`
	Fixups           []FixupEntry `yaml:"fixups"`
	// "regex -> replacement" rules applied to the output.
	Rename []string `yaml:"rename"`
}

// A FixupEntry is the stored form of a diff.Fixup.
type FixupEntry struct {
	Path  string `yaml:"path"`
	Attr  string `yaml:"attr"`
	Value string `yaml:"value"`
}

// ParseFile decodes a configuration file. Unknown fields are an error.
func ParseFile(data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &f, nil
}

// ReadFile reads and decodes the configuration file called name.
func ReadFile(name string) (*File, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	f, err := ParseFile(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return f, nil
}

// Options returns the options described by f.
func (f *File) Options() ([]Option, error) {
	var opts []Option
	if len(f.Roots) > 0 {
		opts = append(opts, RootTypes(f.Roots...))
	}
	if f.Prefix != "" || f.Namespace != "" {
		if f.Prefix == "" || f.Namespace == "" {
			return nil, fmt.Errorf("config: prefix and namespace must be set together")
		}
		opts = append(opts, TargetNamespace(f.Prefix, f.Namespace))
	}
	if len(f.Exclude) > 0 {
		opts = append(opts, ExcludeTypes(f.Exclude...))
	}
	ordered.Range(f.Substitute, func(name, qname string) {
		opts = append(opts, SubstituteType(name, qname))
	})
	if f.Multilingual != nil {
		opts = append(opts, BuiltinMultilingual(*f.Multilingual))
	}
	if f.TemplatePrefix != "" {
		opts = append(opts, TemplatePrefix(f.TemplatePrefix))
	}
	if f.GroupOfLocations {
		opts = append(opts, GroupOfLocations(true))
	}
	var fixups []diff.Fixup
	for _, e := range f.Fixups {
		if e.Path == "" || e.Attr == "" {
			return nil, fmt.Errorf("config: fixup needs a path and an attr")
		}
		fixups = append(fixups, diff.Fixup{Path: e.Path, Attr: e.Attr, Value: e.Value})
	}
	if len(fixups) > 0 {
		opts = append(opts, Fixups(fixups...))
	}
	for _, rule := range f.Rename {
		r, err := parseRule(rule)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		opts = append(opts, r)
	}
	return opts, nil
}
