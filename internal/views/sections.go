package views

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ajramos/mailcore/internal/mail"
)

// Navigation section keys. Custom labels use the "custom-label-<id>" form,
// system labels "label-<id>".
const (
	SectionInbox   = "inbox"
	SectionStarred = "starred"
	SectionSnoozed = "snoozed"
	SectionBin     = "bin"

	systemLabelPrefix = "label-"
	customLabelPrefix = "custom-label-"
)

// SystemLabelSection returns the section key for a system label id.
func SystemLabelSection(labelID string) string { return systemLabelPrefix + labelID }

// CustomLabelSection returns the section key for a custom label id.
func CustomLabelSection(labelID string) string { return customLabelPrefix + labelID }

// SectionRule is the declarative heuristic for one system label. A rule
// matches an email when the label id is in the email's label list, the
// sender address contains one of the domain substrings, or the subject
// contains one of the keywords (case-insensitive). MatchStarred extends the
// match to starred mail (used by "important").
type SectionRule struct {
	LabelID      string   `yaml:"label"`
	Domains      []string `yaml:"domains"`
	Keywords     []string `yaml:"keywords"`
	MatchStarred bool     `yaml:"match_starred"`
}

// Matches applies the rule to one email.
func (r SectionRule) Matches(e *mail.Email) bool {
	if e.HasLabel(r.LabelID) {
		return true
	}
	from := strings.ToLower(e.From)
	for _, d := range r.Domains {
		if strings.Contains(from, strings.ToLower(d)) {
			return true
		}
	}
	subject := strings.ToLower(e.Subject)
	for _, k := range r.Keywords {
		if strings.Contains(subject, strings.ToLower(k)) {
			return true
		}
	}
	return r.MatchStarred && e.IsStarred
}

// SectionRules maps system label ids to their heuristics.
type SectionRules map[string]SectionRule

// DefaultSectionRules returns the built-in heuristics for the four system
// labels.
func DefaultSectionRules() SectionRules {
	return SectionRules{
		"work": {
			LabelID:  "work",
			Domains:  []string{"company.com", "techcorp.com", "consulting.com", "design.studio"},
			Keywords: []string{"project", "meeting", "campaign"},
		},
		"personal": {
			LabelID:  "personal",
			Domains:  []string{"startup.io"},
			Keywords: []string{"welcome"},
		},
		"important": {
			LabelID:      "important",
			Keywords:     []string{"urgent", "important"},
			MatchStarred: true,
		},
		"travel": {
			LabelID: "travel",
		},
	}
}

// LoadSectionRules reads rule overrides from a YAML file and merges them
// over the defaults. A rule for an unknown label id is added as-is.
func LoadSectionRules(path string) (SectionRules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read section rules: %w", err)
	}
	var file struct {
		Rules []SectionRule `yaml:"rules"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse section rules: %w", err)
	}
	rules := DefaultSectionRules()
	for _, r := range file.Rules {
		if strings.TrimSpace(r.LabelID) == "" {
			continue
		}
		rules[r.LabelID] = r
	}
	return rules, nil
}

// SectionPredicate reports section membership for one email. Predicates
// only apply to active mail; the bin section is served from the deleted
// collection directly.
type SectionPredicate func(e *mail.Email) bool

// Predicate resolves a section key to its membership predicate. The second
// return is false for the bin section (handled separately) and for unknown
// keys.
func (rules SectionRules) Predicate(section string) (SectionPredicate, bool) {
	switch section {
	case SectionInbox:
		return func(e *mail.Email) bool { return !e.IsDeleted }, true
	case SectionStarred:
		return func(e *mail.Email) bool { return e.IsStarred }, true
	case SectionSnoozed:
		// Snoozing is intentionally unimplemented; the section is always
		// empty.
		return func(e *mail.Email) bool { return false }, true
	case SectionBin:
		return nil, false
	}
	if id, ok := strings.CutPrefix(section, customLabelPrefix); ok {
		return func(e *mail.Email) bool { return e.HasLabel(id) }, true
	}
	if id, ok := strings.CutPrefix(section, systemLabelPrefix); ok {
		rule, found := rules[id]
		if !found {
			return func(e *mail.Email) bool { return false }, true
		}
		return rule.Matches, true
	}
	return nil, false
}
