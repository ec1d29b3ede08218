// Package commandline contains helper types for collecting
// command-line arguments. Both types implement pflag.Value.
package commandline // import "github.com/CognitoIQ/xsd2gml/internal/commandline"

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
)

// A ReplaceRule maps a pattern to its replacement. On the
// command line, ReplaceRules are provided as strings separated
// by "->".
type ReplaceRule struct {
	From *regexp.Regexp
	To   string
}

// ParseReplaceRule parses a rule of the form "regex -> replacement".
func ParseReplaceRule(s string) (ReplaceRule, error) {
	parts := strings.SplitN(s, "->", 2)
	if len(parts) != 2 {
		return ReplaceRule{}, fmt.Errorf("invalid replace rule %q. must be \"regex -> replacement\"", s)
	}
	from, to := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	reg, err := regexp.Compile(from)
	if err != nil {
		return ReplaceRule{}, fmt.Errorf("invalid regex %q: %w", from, err)
	}
	return ReplaceRule{reg, to}, nil
}

// A ReplaceRuleList is used to collect multiple replacement rules
// from the command line.
type ReplaceRuleList []ReplaceRule

func (r *ReplaceRuleList) String() string {
	var buf bytes.Buffer
	for i, item := range *r {
		if i > 0 {
			buf.WriteString(", ")
		}
		fmt.Fprintf(&buf, "%s -> %s", item.From, item.To)
	}
	return buf.String()
}

// Set adds a replacement rule to the ReplaceRuleList, in the order
// provided on the command line.
func (r *ReplaceRuleList) Set(s string) error {
	rule, err := ParseReplaceRule(s)
	if err != nil {
		return err
	}
	*r = append(*r, rule)
	return nil
}

func (r *ReplaceRuleList) Type() string { return "rule" }

// Apply runs every rule over text, in order.
func (r ReplaceRuleList) Apply(text []byte) []byte {
	for _, rule := range r {
		text = rule.From.ReplaceAll(text, []byte(rule.To))
	}
	return text
}

// The Strings type can be used to collect multiple command-line options,
// in the order provided. A single option may hold several
// comma-separated values.
type Strings []string

func (s *Strings) String() string {
	return strings.Join(*s, ",")
}

func (s *Strings) Set(val string) error {
	for _, v := range strings.Split(val, ",") {
		if v = strings.TrimSpace(v); v != "" {
			*s = append(*s, v)
		}
	}
	return nil
}

func (s *Strings) Type() string { return "strings" }
