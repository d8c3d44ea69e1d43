package compliance

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rules configures which compliance issues stop the pipeline. Issues
// matching any fatal keyword fail the job; everything else is carried
// forward as a warning.
type Rules struct {
	FatalKeywords []string `yaml:"fatal_keywords"`
}

func DefaultRules() Rules {
	return Rules{
		FatalKeywords: []string{
			"declaration",
			"missing tool handler",
			"transport",
			"syntax error",
			"import",
		},
	}
}

// LoadRules reads a rules file, falling back to the defaults when path is
// empty. A file with no fatal_keywords entry keeps the default set.
func LoadRules(path string) (Rules, error) {
	if path == "" {
		return DefaultRules(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("read rules file: %w", err)
	}

	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return Rules{}, fmt.Errorf("parse rules file: %w", err)
	}
	if len(rules.FatalKeywords) == 0 {
		rules.FatalKeywords = DefaultRules().FatalKeywords
	}
	return rules, nil
}

// Classifier decides issue severity against a rule set.
type Classifier struct {
	keywords []string
}

func NewClassifier(rules Rules) *Classifier {
	keywords := make([]string, len(rules.FatalKeywords))
	for i, kw := range rules.FatalKeywords {
		keywords[i] = strings.ToLower(kw)
	}
	return &Classifier{keywords: keywords}
}

// AnyFatal reports whether any issue matches a fatal keyword.
func (c *Classifier) AnyFatal(issues []string) bool {
	for _, issue := range issues {
		if c.Fatal(issue) {
			return true
		}
	}
	return false
}

func (c *Classifier) Fatal(issue string) bool {
	lowered := strings.ToLower(issue)
	for _, kw := range c.keywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}
