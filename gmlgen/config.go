package gmlgen

import (
	"regexp"

	"github.com/CognitoIQ/xsd2gml/diff"
	"github.com/CognitoIQ/xsd2gml/gml"
	"github.com/CognitoIQ/xsd2gml/internal/commandline"
	"github.com/CognitoIQ/xsd2gml/xsd"
)

// A Config holds the settings used when converting schema documents
// into a GML application schema.
type Config struct {
	logger   Logger
	loglevel int
	// Names of the complex types the conversion starts from.
	roots  []string
	target xsd.Namespace
	// Types that are never walked.
	exclude []string
	// Local type names replaced by a qualified type.
	substitute map[string]string
	// Emit the built-in multilingual string feature.
	multilingual bool
	// Prefix of the target namespace in reference schemas.
	templatePrefix string
	fixups         []diff.Fixup
	// Retype groupOfLocations after patching.
	groupOfLocations bool
	// Applied to the serialized output.
	rename commandline.ReplaceRuleList
}

func (cfg *Config) errorf(format string, v ...interface{}) {
	if cfg.logger != nil {
		cfg.logger.Printf(format, v...)
	}
}
func (cfg *Config) logf(format string, v ...interface{}) {
	if cfg.logger != nil && cfg.loglevel > 0 {
		cfg.logger.Printf(format, v...)
	}
}
func (cfg *Config) debugf(format string, v ...interface{}) {
	if cfg.logger != nil && cfg.loglevel > 3 {
		cfg.logger.Printf(format, v...)
	}
}

// printfFunc adapts a Config log method to the Logger interface.
type printfFunc func(format string, v ...interface{})

func (fn printfFunc) Printf(format string, v ...interface{}) { fn(format, v...) }

// An Option is used to customize a Config.
type Option func(*Config) Option

// DefaultOptions are the default options for schema conversion. They
// replace the DATEX II geometry types by gml:GeometryPropertyType and
// emit the built-in multilingual string feature. The template prefix
// is the one used by the NPRA reference schema.
var DefaultOptions = []Option{
	BuiltinMultilingual(true),
	SubstituteTypes(gml.Substitutions()),
	TemplatePrefix("npra"),
}

// The Option method is used to configure an existing configuration.
// The return value of the Option method can be used to revert the
// final option to its previous setting.
func (cfg *Config) Option(opts ...Option) (previous Option) {
	for _, opt := range opts {
		previous = opt(cfg)
	}
	return previous
}

// Types implementing the Logger interface can receive
// debug information from the conversion process.
// The Logger interface is implemented by *log.Logger.
type Logger interface {
	Printf(format string, v ...interface{})
}

// LogOutput specifies an optional Logger for warnings and debug
// information about the conversion process.
func LogOutput(l Logger) Option {
	return func(cfg *Config) Option {
		prev := cfg.logger
		cfg.logger = l
		return LogOutput(prev)
	}
}

// LogLevel sets the verbosity of messages sent to the error log
// configured with the LogOutput option. The level parameter should
// be a positive integer between 1 and 5, with 5 providing the greatest
// verbosity.
func LogLevel(level int) Option {
	return func(cfg *Config) Option {
		prev := cfg.loglevel
		cfg.loglevel = level
		return LogLevel(prev)
	}
}

// RootTypes sets the complex types the conversion starts from. Names
// may be prefixed; only their local part is used.
func RootTypes(names ...string) Option {
	return func(cfg *Config) Option {
		prev := cfg.roots
		cfg.roots = names
		return RootTypes(prev...)
	}
}

// TargetNamespace sets the namespace, and its prefix, of the
// generated schema. If it is not set, the target namespace of the
// first input document is used.
func TargetNamespace(prefix, uri string) Option {
	return func(cfg *Config) Option {
		prev := cfg.target
		cfg.target = xsd.Namespace{Prefix: prefix, URI: uri}
		return TargetNamespace(prev.Prefix, prev.URI)
	}
}

// ExcludeTypes defines a list of types that are not converted, nor
// walked into.
func ExcludeTypes(names ...string) Option {
	return func(cfg *Config) Option {
		prev := cfg.exclude
		cfg.exclude = names
		return ExcludeTypes(prev...)
	}
}

// SubstituteType replaces every property of the local type name by a
// property of type qname. The named type is not converted. The
// SubstituteType option is additive.
func SubstituteType(name, qname string) Option {
	return func(cfg *Config) Option {
		prev, ok := cfg.substitute[name]
		if cfg.substitute == nil {
			cfg.substitute = make(map[string]string)
		}
		cfg.substitute[name] = qname
		if !ok {
			return removeSubstitute(name)
		}
		return SubstituteType(name, prev)
	}
}

func removeSubstitute(name string) Option {
	return func(cfg *Config) Option {
		prev := cfg.substitute[name]
		delete(cfg.substitute, name)
		return SubstituteType(name, prev)
	}
}

// SubstituteTypes replaces the full substitution table.
func SubstituteTypes(table map[string]string) Option {
	return func(cfg *Config) Option {
		prev := cfg.substitute
		cfg.substitute = make(map[string]string, len(table))
		for k, v := range table {
			cfg.substitute[k] = v
		}
		return SubstituteTypes(prev)
	}
}

// BuiltinMultilingual controls whether the multilingual string family
// of types is replaced by a built-in MultilingualString feature. When
// disabled, those types are converted like any other.
func BuiltinMultilingual(enabled bool) Option {
	return func(cfg *Config) Option {
		prev := cfg.multilingual
		cfg.multilingual = enabled
		return BuiltinMultilingual(prev)
	}
}

// TemplatePrefix sets the prefix of the target namespace in reference
// schemas. References using it are moved to the target prefix when
// subtrees of a reference schema are grafted into the output.
func TemplatePrefix(prefix string) Option {
	return func(cfg *Config) Option {
		prev := cfg.templatePrefix
		cfg.templatePrefix = prefix
		return TemplatePrefix(prev)
	}
}

// Fixups sets the rules applied after a reference schema has been
// grafted into the output.
func Fixups(rules ...diff.Fixup) Option {
	return func(cfg *Config) Option {
		prev := cfg.fixups
		cfg.fixups = rules
		return Fixups(prev...)
	}
}

// GroupOfLocations enables the fixup redirecting the groupOfLocations
// property of SituationRecordType to GroupOfLocationsType in the
// target namespace, after a reference schema has been grafted.
func GroupOfLocations(enabled bool) Option {
	return func(cfg *Config) Option {
		prev := cfg.groupOfLocations
		cfg.groupOfLocations = enabled
		return GroupOfLocations(prev)
	}
}

// Rename adds a substitution rule applied to the serialized output. If
// an invalid regular expression is given, no action is taken. The
// Rename option is additive; rules are applied in the order that each
// option was applied in.
func Rename(pat, repl string) Option {
	reg, err := regexp.Compile(pat)

	return func(cfg *Config) Option {
		if err != nil {
			cfg.errorf("invalid regex %q passed to Rename: %v", pat, err)
			return func(*Config) Option { return Rename(pat, repl) }
		}
		prev := cfg.rename
		cfg.rename = append(prev[:len(prev):len(prev)], commandline.ReplaceRule{From: reg, To: repl})
		return replaceRenameRules(prev)
	}
}

func replaceRenameRules(rules commandline.ReplaceRuleList) Option {
	return func(cfg *Config) Option {
		prev := cfg.rename
		cfg.rename = rules
		return replaceRenameRules(prev)
	}
}
