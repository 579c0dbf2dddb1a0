// Package extract resolves listing fields from rendered markup using ordered
// fallback strategy tables, first match wins. A field that no strategy can
// resolve becomes null; extraction never fails a card.
package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Strategy describes one way to pull a raw string out of a card or document.
type Strategy struct {
	// Selector is evaluated relative to the card root.
	Selector string
	// Attr names an attribute to read; empty reads the element text.
	Attr string
	// Index selects the nth match (0-based) after filtering.
	Index int
	// Contains keeps only matches whose text contains this substring.
	Contains string
	// TrimPrefix is removed from the front of the value ("ref:", "Cód.").
	TrimPrefix string
	// Pattern extracts capture group 1 (or the whole match) from the value.
	Pattern string
}

// Rule is an ordered fallback chain of strategies for one field.
type Rule []Strategy

// Apply evaluates the chain against sel and returns the first non-empty
// result. The boolean reports whether any strategy yielded a value.
func (r Rule) Apply(sel *goquery.Selection) (string, bool) {
	for _, s := range r {
		if value, ok := s.apply(sel); ok {
			return value, true
		}
	}
	return "", false
}

func (s Strategy) apply(sel *goquery.Selection) (string, bool) {
	matches := sel.Find(s.Selector)
	if s.Contains != "" {
		needle := s.Contains
		matches = matches.FilterFunction(func(_ int, m *goquery.Selection) bool {
			return strings.Contains(m.Text(), needle)
		})
	}
	target := matches.Eq(s.Index)
	if target.Length() == 0 {
		return "", false
	}

	var value string
	if s.Attr != "" {
		attr, ok := target.Attr(s.Attr)
		if !ok {
			return "", false
		}
		value = attr
	} else {
		value = target.Text()
	}

	value = strings.TrimSpace(value)
	if s.TrimPrefix != "" {
		value = strings.TrimSpace(strings.TrimPrefix(value, s.TrimPrefix))
	}
	if s.Pattern != "" {
		re, err := regexp.Compile(s.Pattern)
		if err != nil {
			return "", false
		}
		groups := re.FindStringSubmatch(value)
		switch {
		case len(groups) > 1:
			value = groups[1]
		case len(groups) == 1:
			value = groups[0]
		default:
			return "", false
		}
	}
	if value == "" {
		return "", false
	}
	return value, true
}

// RuleSet maps every listing field to its fallback chain. A nil rule means
// the source never exposes that field on index cards.
type RuleSet struct {
	Name      Rule
	Link      Rule
	Image     Rule
	Address   Rule
	Price     Rule
	Type      Rule
	Area      Rule
	Bedrooms  Rule
	Bathrooms Rule
	Parking   Rule
	Ref       Rule
}
