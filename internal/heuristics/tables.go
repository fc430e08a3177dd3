// Package heuristics holds the versioned keyword and weight tables that drive the rule-based
// stages of the pipeline. Tables are embedded at compile time and can be replaced from a file.
package heuristics

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed tables.yaml
var defaultTables []byte

var (
	defaultOnce sync.Once
	defaultVal  *Tables
	defaultErr  error
)

// Tables is the full set of heuristic tables.
type Tables struct {
	Version           string            `yaml:"version"`
	Complexity        ComplexityRules   `yaml:"complexity"`
	Frameworks        []Framework       `yaml:"frameworks"`
	FallbackFramework string            `yaml:"fallback_framework"`
	FallbackLibraries []string          `yaml:"fallback_libraries"`
	LibraryIntents    []LibraryIntent   `yaml:"library_intents"`
	LibraryNameMatch  int               `yaml:"library_name_match"`
	LibraryTopicMatch int               `yaml:"library_topic_match"`
	LibraryTopicExact int               `yaml:"library_topic_literal"`
	StopWords         []string          `yaml:"stop_words"`
	Sections          SectionWeights    `yaml:"sections"`
	LibraryBoosts     []LibraryBoost    `yaml:"library_boosts"`
	FallbackDocs      []FallbackDoc     `yaml:"fallback_docs"`
	GeneralDoc        string            `yaml:"general_doc"`
	Quality           QualityRules      `yaml:"quality"`
	Decomposition     DecompositionRule `yaml:"decomposition"`

	stopWords map[string]bool
}

// ComplexityRules are the classifier weights and patterns.
type ComplexityRules struct {
	Under20Bonus           float64       `yaml:"under_20_bonus"`
	Under50Bonus           float64       `yaml:"under_50_bonus"`
	Over200Penalty         float64       `yaml:"over_200_penalty"`
	SimpleMatchWeight      float64       `yaml:"simple_match_weight"`
	ComplexMatchWeight     float64       `yaml:"complex_match_weight"`
	FrameworkKeywordWeight float64       `yaml:"framework_keyword_weight"`
	SimplePatterns         []TaggedRegex `yaml:"simple_patterns"`
	ComplexPatterns        []TaggedRegex `yaml:"complex_patterns"`
	FrameworkKeywords      []string      `yaml:"framework_keywords"`

	keywordRes []*regexp.Regexp
}

// MatchFrameworkKeywords returns the framework keywords that appear in s as whole words.
func (c ComplexityRules) MatchFrameworkKeywords(s string) []string {
	var found []string
	for i, re := range c.keywordRes {
		if re.MatchString(s) {
			found = append(found, c.FrameworkKeywords[i])
		}
	}
	return found
}

// TaggedRegex is a pattern with the indicator tag reported when it fires.
type TaggedRegex struct {
	Tag     string `yaml:"tag"`
	Pattern string `yaml:"pattern"`

	re *regexp.Regexp
}

// MatchString reports whether the compiled pattern matches s.
func (t TaggedRegex) MatchString(s string) bool {
	return t.re != nil && t.re.MatchString(s)
}

// Framework is one catalogue entry used for detection.
type Framework struct {
	Name        string   `yaml:"name"`
	Families    []string `yaml:"families"`
	Aliases     []string `yaml:"aliases"`
	Patterns    []string `yaml:"patterns"`
	Suggestions []string `yaml:"suggestions"`

	res []*regexp.Regexp
}

// CountMatches returns how many of the framework's patterns match s.
func (f Framework) CountMatches(s string) int {
	n := 0
	for _, re := range f.res {
		if re.MatchString(s) {
			n++
		}
	}
	return n
}

// HasFamily reports whether the framework belongs to family.
func (f Framework) HasFamily(family string) bool {
	for _, fam := range f.Families {
		if fam == family {
			return true
		}
	}
	return false
}

// LibraryIntent adds weight when the prompt mentions a word and the library name fits the intent.
type LibraryIntent struct {
	PromptWord   string   `yaml:"prompt_word"`
	NameContains []string `yaml:"name_contains"`
	Weight       int      `yaml:"weight"`
}

// SectionWeights scores documentation sections.
type SectionWeights struct {
	KeywordWeight    int      `yaml:"keyword_weight"`
	ExampleBonus     int      `yaml:"example_bonus"`
	ExampleTerms     []string `yaml:"example_terms"`
	APIBonus         int      `yaml:"api_bonus"`
	APITerms         []string `yaml:"api_terms"`
	SetupBonus       int      `yaml:"setup_bonus"`
	SetupTerms       []string `yaml:"setup_terms"`
	ErrorBonus       int      `yaml:"error_bonus"`
	ErrorTerms       []string `yaml:"error_terms"`
	MinPartialTokens int      `yaml:"min_partial_tokens"`
}

// LibraryBoost adds a bonus to sections matching the acting library's domain.
type LibraryBoost struct {
	LibraryContains []string `yaml:"library_contains"`
	Terms           []string `yaml:"terms"`
	Bonus           int      `yaml:"bonus"`
}

// FallbackDoc is canned documentation for a domain.
type FallbackDoc struct {
	Domain   string   `yaml:"domain"`
	Keywords []string `yaml:"keywords"`
	Content  string   `yaml:"content"`
}

// QualityRules are the requirement extraction rules.
type QualityRules struct {
	PromptRules    []PromptRule    `yaml:"prompt_rules"`
	FrameworkRules []FrameworkRule `yaml:"framework_rules"`
	ProjectRules   []ProjectRule   `yaml:"project_rules"`
}

// PromptRule fires when any keyword appears in the prompt.
type PromptRule struct {
	Type        string   `yaml:"type"`
	Priority    string   `yaml:"priority"`
	Keywords    []string `yaml:"keywords"`
	Description string   `yaml:"description"`
}

// FrameworkRule fires for a framework family, optionally gated on prompt keywords.
// An empty PromptKeywords list always fires.
type FrameworkRule struct {
	Families       []string `yaml:"families"`
	PromptKeywords []string `yaml:"prompt_keywords"`
	Type           string   `yaml:"type"`
	Priority       string   `yaml:"priority"`
	Description    string   `yaml:"description"`
}

// ProjectRule fires when a keyword appears in project facts or code snippets.
type ProjectRule struct {
	Type        string   `yaml:"type"`
	Priority    string   `yaml:"priority"`
	Source      string   `yaml:"source"` // facts, snippets or any
	Keywords    []string `yaml:"keywords"`
	Description string   `yaml:"description"`
}

// DecompositionRule gates todo decomposition.
type DecompositionRule struct {
	MinLength int `yaml:"min_length"`
	MinParts  int `yaml:"min_parts"`
	MaxItems  int `yaml:"max_items"`
}

// Default returns the embedded tables, parsed and compiled once.
// It panics if the embedded file is invalid, which is a build defect.
func Default() *Tables {
	defaultOnce.Do(func() {
		defaultVal, defaultErr = Parse(defaultTables)
	})
	if defaultErr != nil {
		panic(fmt.Sprintf("embedded heuristic tables are invalid: %v", defaultErr))
	}
	return defaultVal
}

// Load reads and compiles tables from a YAML file.
func Load(path string) (*Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tables file %s: %w", path, err)
	}
	tables, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid tables file %s: %w", path, err)
	}
	return tables, nil
}

// Parse decodes and compiles tables from YAML bytes.
func Parse(data []byte) (*Tables, error) {
	var t Tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse tables YAML: %w", err)
	}
	if err := t.Compile(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Compile validates the tables and compiles every pattern.
// Patterns are matched case-insensitively.
func (t *Tables) Compile() error {
	if t.Version == "" {
		return fmt.Errorf("tables: version is required")
	}
	for i := range t.Complexity.SimplePatterns {
		if err := t.Complexity.SimplePatterns[i].compile(); err != nil {
			return err
		}
	}
	for i := range t.Complexity.ComplexPatterns {
		if err := t.Complexity.ComplexPatterns[i].compile(); err != nil {
			return err
		}
	}
	t.Complexity.keywordRes = make([]*regexp.Regexp, 0, len(t.Complexity.FrameworkKeywords))
	for _, kw := range t.Complexity.FrameworkKeywords {
		t.Complexity.keywordRes = append(t.Complexity.keywordRes, WordPattern(kw))
	}
	for i := range t.Frameworks {
		fw := &t.Frameworks[i]
		if fw.Name == "" {
			return fmt.Errorf("tables: framework %d has no name", i)
		}
		fw.res = make([]*regexp.Regexp, 0, len(fw.Patterns))
		for _, p := range fw.Patterns {
			re, err := regexp.Compile("(?i)" + p)
			if err != nil {
				return fmt.Errorf("tables: framework %s: bad pattern %q: %w", fw.Name, p, err)
			}
			fw.res = append(fw.res, re)
		}
	}
	t.stopWords = make(map[string]bool, len(t.StopWords))
	for _, w := range t.StopWords {
		t.stopWords[strings.ToLower(w)] = true
	}
	return nil
}

// WordPattern compiles a case-insensitive whole-word matcher for a literal term.
func WordPattern(term string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(^|[^\w])` + regexp.QuoteMeta(term) + `($|[^\w])`)
}

func (r *TaggedRegex) compile() error {
	re, err := regexp.Compile("(?i)" + r.Pattern)
	if err != nil {
		return fmt.Errorf("tables: pattern %s %q: %w", r.Tag, r.Pattern, err)
	}
	r.re = re
	return nil
}

// IsStopWord reports whether w is a stop word.
func (t *Tables) IsStopWord(w string) bool {
	return t.stopWords[strings.ToLower(w)]
}

// Framework looks up a catalogue entry by name or alias.
func (t *Tables) Framework(name string) (Framework, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, fw := range t.Frameworks {
		if fw.Name == name {
			return fw, true
		}
	}
	for _, fw := range t.Frameworks {
		for _, alias := range fw.Aliases {
			if strings.ToLower(alias) == name {
				return fw, true
			}
		}
	}
	return Framework{}, false
}

// FrameworkHasFamily reports whether the named framework belongs to family.
// Unknown frameworks belong to no family.
func (t *Tables) FrameworkHasFamily(name, family string) bool {
	fw, ok := t.Framework(name)
	return ok && fw.HasFamily(family)
}
