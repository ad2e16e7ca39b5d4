package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"

	"github.com/GriffinCanCode/specfn/internal/rules"
)

// ErrRuleFileFormat is returned for rule files with an unrecognised extension.
var ErrRuleFileFormat = errors.New("unsupported rule file format")

// RuleEntry is one rule declared in a rule file.
type RuleEntry struct {
	Function string `yaml:"function" toml:"function"`
	Pattern  string `yaml:"pattern" toml:"pattern"`
	Result   string `yaml:"result" toml:"result"`
}

// RuleFile is the document layout shared by the YAML and TOML forms:
//
//	rules:
//	  - function: Zeta
//	    pattern: Zeta[2]
//	    result: Pi^2/6
//
// Patterns for functions with argument preparation are written on the
// prepared form (see PrepareFunc).
type RuleFile struct {
	Rules []RuleEntry `yaml:"rules" toml:"rules"`
}

// ParseRuleFile decodes a rule document. Format is "yaml" or "toml".
func ParseRuleFile(data []byte, format string) ([]rules.Rule, error) {
	var doc RuleFile
	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode yaml rules: %w", err)
		}
	case "toml":
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode toml rules: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrRuleFileFormat, format)
	}

	out := make([]rules.Rule, 0, len(doc.Rules))
	for i, e := range doc.Rules {
		if e.Function == "" || e.Pattern == "" || e.Result == "" {
			return nil, fmt.Errorf("%w: entry %d needs function, pattern and result", rules.ErrInvalidRule, i+1)
		}
		r, err := rules.Compile(e.Function, e.Pattern, e.Result)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i+1, err)
		}
		out = append(out, r)
	}
	return out, nil
}

// LoadRuleFile reads rules from a .yaml, .yml or .toml file.
func LoadRuleFile(path string) ([]rules.Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule file: %w", err)
	}
	rs, err := ParseRuleFile(data, strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rs, nil
}

// LoadRuleFile adds the rules of a rule file to registered functions.
func (b *Builder) LoadRuleFile(path string) error {
	rs, err := LoadRuleFile(path)
	if err != nil {
		return err
	}
	return b.AddRules(rs...)
}
