/*
Package validate is the gatekeeper that decides whether a downloaded document
belongs to the target entity. The verdict is a hard boolean computed from the
document's lead text only.
*/
package validate

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/shanehull/labourscan/internal/types"
)

const DefaultLeadWindow = 5000

var (
	ErrEncrypted            = errors.New("document is encrypted")
	ErrPoisonMatch          = errors.New("poison term found in lead text")
	ErrIdentityNotConfirmed = errors.New("target identity not found in lead text")
)

var (
	whitespace   = regexp.MustCompile(`\s+`)
	legalSuffix  = regexp.MustCompile(`\b(limited|ltd)\b\.?`)
	sentinelName = map[error]string{
		ErrEncrypted:            "Encrypted",
		ErrPoisonMatch:          "PoisonMatch",
		ErrIdentityNotConfirmed: "IdentityNotConfirmed",
	}
)

// Rejection is the error returned for a rejected document. It unwraps to one
// of the package sentinels.
type Rejection struct {
	Reason error
	Term   string
}

func (r *Rejection) Error() string {
	if r.Term != "" {
		return fmt.Sprintf("%s(%q)", sentinelName[r.Reason], r.Term)
	}
	return sentinelName[r.Reason]
}

func (r *Rejection) Unwrap() error {
	return r.Reason
}

type Validator struct {
	aliases    []types.AliasRule
	leadWindow int
}

func New(aliases []types.AliasRule, leadWindow int) *Validator {
	if leadWindow <= 0 {
		leadWindow = DefaultLeadWindow
	}

	copied := make([]types.AliasRule, 0, len(aliases))
	for _, a := range aliases {
		rule := types.AliasRule{Root: strings.ToLower(strings.TrimSpace(a.Root))}
		for _, alias := range a.Aliases {
			if alias = Normalize(alias); alias != "" {
				rule.Aliases = append(rule.Aliases, alias)
			}
		}
		copied = append(copied, rule)
	}
	return &Validator{aliases: copied, leadWindow: leadWindow}
}

// LeadText is the identity zone: the first leadWindow characters of the text,
// whitespace collapsed and lower-cased.
func (v *Validator) LeadText(raw string) string {
	runes := []rune(raw)
	if len(runes) > v.leadWindow {
		runes = runes[:v.leadWindow]
	}
	return Normalize(string(runes))
}

// Validate returns nil when the document is accepted. Poison screening runs
// before identity confirmation, so a poison hit always wins.
func (v *Validator) Validate(ext types.Extraction, target types.TargetEntity, exclusions []string) *Rejection {
	if ext.Encrypted {
		return &Rejection{Reason: ErrEncrypted}
	}

	lead := v.LeadText(ext.Text)

	for _, term := range screeningTerms(target.PoisonTerms, exclusions) {
		if ContainsTerm(lead, term) {
			return &Rejection{Reason: ErrPoisonMatch, Term: term}
		}
	}

	for _, alias := range v.Aliases(target) {
		if strings.Contains(lead, alias) {
			return nil
		}
	}
	return &Rejection{Reason: ErrIdentityNotConfirmed}
}

// Aliases lists every accepted identity form for the target, core name first.
func (v *Validator) Aliases(target types.TargetEntity) []string {
	lower := strings.ToLower(target.CanonicalName)

	var aliases []string
	seen := make(map[string]bool)
	add := func(a string) {
		if a != "" && !seen[a] {
			seen[a] = true
			aliases = append(aliases, a)
		}
	}

	add(CoreName(target.CanonicalName))
	for _, rule := range v.aliases {
		if rule.Root != "" && strings.Contains(lower, rule.Root) {
			for _, a := range rule.Aliases {
				add(a)
			}
		}
	}
	return aliases
}

// CoreName strips limited/ltd tokens from a legal name.
func CoreName(name string) string {
	return Normalize(legalSuffix.ReplaceAllString(strings.ToLower(name), " "))
}

func Normalize(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(strings.ToLower(s), " "))
}

// ContainsTerm reports whether term occurs in text as a whole word or phrase.
// Single words also match on their root, so "electricals" hits "electrical".
func ContainsTerm(text, term string) bool {
	term = Normalize(term)
	if term == "" {
		return false
	}
	return termPattern(term).MatchString(text)
}

func termPattern(term string) *regexp.Regexp {
	quoted := regexp.QuoteMeta(term)
	if !strings.Contains(term, " ") {
		if root := strings.TrimSuffix(term, "s"); root != term && len(root) >= 4 {
			quoted = regexp.QuoteMeta(root) + "s?"
		}
	}
	return regexp.MustCompile(`(^|[^\p{L}\p{N}])` + quoted + `($|[^\p{L}\p{N}])`)
}

// screeningTerms is the sorted union of static poison terms and run
// exclusions.
func screeningTerms(poison, exclusions []string) []string {
	set := make(map[string]struct{}, len(poison)+len(exclusions))
	for _, t := range append(append([]string(nil), poison...), exclusions...) {
		if t = Normalize(t); t != "" {
			set[t] = struct{}{}
		}
	}
	terms := make([]string, 0, len(set))
	for t := range set {
		terms = append(terms, t)
	}
	sort.Strings(terms)
	return terms
}
