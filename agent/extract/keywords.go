package extract

import (
	"regexp"
	"strings"

	statex "github.com/tanpawarit/Chative-Travel-Planner/agent/state"
)

type keywordRule[T any] struct {
	value    T
	patterns []*regexp.Regexp
}

func newRule[T any](value T, keywords ...string) keywordRule[T] {
	pats := make([]*regexp.Regexp, 0, len(keywords))
	for _, kw := range keywords {
		pats = append(pats, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(kw)+`(?:s|es)?\b`))
	}
	return keywordRule[T]{value: value, patterns: pats}
}

func (r keywordRule[T]) matches(text string) bool {
	for _, p := range r.patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// Table order is significant: the first matching rule wins. Keywords match whole words
// with an optional plural suffix, so hyphenated compounds match too ("kid-friendly").
var themeRules = []keywordRule[statex.Theme]{
	newRule(statex.ThemeFamily, "family", "kid", "children", "parent"),
	newRule(statex.ThemeCouple, "couple", "honeymoon", "romantic", "partner", "anniversary", "wife", "husband"),
	newRule(statex.ThemeAdventure, "adventure", "trek", "hiking", "backpacking", "thrill", "adrenaline"),
	newRule(statex.ThemeSolo, "solo", "alone", "by myself"),
}

var budgetRules = []keywordRule[statex.Budget]{
	newRule(statex.BudgetLuxury, "luxury", "luxurious", "premium", "5-star", "five star", "splurge"),
	newRule(statex.BudgetStandard, "standard", "moderate", "mid-range", "midrange", "comfortable"),
	newRule(statex.BudgetEconomy, "economy", "on a budget", "tight budget", "low budget", "cheap", "affordable", "backpacker"),
}

// Every matching activity is collected in table order. Short keywords over-match:
// "third-party booking" and "chocolate bars" both read as nightlife, "fort" matches "Fort Kochi".
var activityRules = []keywordRule[string]{
	newRule("beach", "beach", "seaside", "snorkel", "surf"),
	newRule("temple", "temple", "shrine", "monastery"),
	newRule("museum", "museum", "gallery", "galleries"),
	newRule("hiking", "hike", "hiking", "trekking", "trek"),
	newRule("food", "food", "cuisine", "street food", "foodie"),
	newRule("shopping", "shopping", "market", "bazaar"),
	newRule("nightlife", "nightlife", "club", "party", "bar"),
	newRule("wildlife", "wildlife", "safari", "zoo"),
	newRule("history", "history", "historical", "heritage", "fort", "palace"),
	newRule("nature", "nature", "mountain", "waterfall", "lake"),
	newRule("spa", "spa", "wellness", "yoga"),
	newRule("sightseeing", "sightseeing", "landmark"),
}

func firstMatch[T any](rules []keywordRule[T], text string) (T, bool) {
	for _, r := range rules {
		if r.matches(text) {
			return r.value, true
		}
	}
	var zero T
	return zero, false
}

func allMatches(rules []keywordRule[string], text string) []string {
	var out []string
	for _, r := range rules {
		if r.matches(text) {
			out = append(out, r.value)
		}
	}
	return out
}

// returnMarkers flag the date that follows them as the return date.
var returnMarkers = regexp.MustCompile(`(?i)\b(?:return(?:ing)?|back|until|till|through|to)\b\W*(?:on\W*)?$`)

func precededByReturnMarker(prefix string) bool {
	prefix = strings.TrimRight(prefix, " ")
	if len(prefix) > 32 {
		prefix = prefix[len(prefix)-32:]
	}
	return returnMarkers.MatchString(prefix + " ")
}
