package extract

import (
	"context"
	"regexp"
	"strconv"
	"time"

	"github.com/samber/lo"
	contractx "github.com/tanpawarit/Chative-Travel-Planner/agent/contract"
	statex "github.com/tanpawarit/Chative-Travel-Planner/agent/state"
	"golang.org/x/text/unicode/norm"
)

var (
	fromCodePattern = regexp.MustCompile(`(?i:\bfrom)\s+\(([A-Z]{3})\)`)
	toCodePattern   = regexp.MustCompile(`(?i:\bto)\s+\(([A-Z]{3})\)`)
	anyCodePattern  = regexp.MustCompile(`\(([A-Z]{3})\)`)
	datePattern     = regexp.MustCompile(`\b(?:(\d{4})-(\d{1,2})-(\d{1,2})|(\d{1,2})[/.-](\d{1,2})[/.-](\d{4}))\b`)
)

// Heuristic extracts fields with ordered pattern and keyword rules. It never calls out.
type Heuristic struct {
	defaults Defaults
}

var _ contractx.Extractor = (*Heuristic)(nil)

func NewHeuristic(defaults Defaults) *Heuristic {
	return &Heuristic{defaults: defaults.normalized()}
}

// Extract reads only req.Text; earlier turns are already merged into the slots.
func (h *Heuristic) Extract(_ context.Context, req contractx.ExtractRequest) (statex.Updates, error) {
	text := norm.NFKC.String(req.Text)
	fields := FieldsFor(req.Fields...)
	wants := func(f statex.Field) bool { return lo.Contains(fields, f) }

	var u statex.Updates
	if wants(statex.FieldSource) || wants(statex.FieldDestination) {
		u.Source, u.Destination = extractCodes(text, wants(statex.FieldSource), wants(statex.FieldDestination))
	}
	if wants(statex.FieldDepartureDate) || wants(statex.FieldReturnDate) {
		dep, ret := extractDates(text, h.defaults.DayFirst)
		if wants(statex.FieldDepartureDate) {
			u.DepartureDate = dep
		}
		if wants(statex.FieldReturnDate) {
			u.ReturnDate = ret
		}
	}
	if wants(statex.FieldTravelTheme) {
		u.TravelTheme, _ = firstMatch(themeRules, text)
	}
	if wants(statex.FieldBudget) {
		u.Budget, _ = firstMatch(budgetRules, text)
	}
	if wants(statex.FieldActivities) {
		u.Activities = allMatches(activityRules, text)
	}

	req.Fields = fields
	h.defaults.complete(req, &u)
	return u, nil
}

// extractCodes applies the code rules in order: "from (XXX)", "to (XXX)", then any bare
// parenthesized code fills the remaining requested field, destination first.
func extractCodes(text string, wantSource, wantDest bool) (source, dest string) {
	claimed := map[int]bool{}

	if wantSource {
		if m := fromCodePattern.FindStringSubmatchIndex(text); m != nil {
			source = text[m[2]:m[3]]
			claimed[m[2]] = true
		}
	}
	if wantDest {
		if m := toCodePattern.FindStringSubmatchIndex(text); m != nil {
			dest = text[m[2]:m[3]]
			claimed[m[2]] = true
		}
	}

	for _, m := range anyCodePattern.FindAllStringSubmatchIndex(text, -1) {
		if claimed[m[2]] {
			continue
		}
		code := text[m[2]:m[3]]
		switch {
		case wantDest && dest == "":
			dest = code
		case wantSource && source == "":
			source = code
		default:
			continue
		}
		claimed[m[2]] = true
	}
	return source, dest
}

// extractDates returns the departure and return dates found in text. A date preceded by a
// return marker is the return date; otherwise the first date departs and the second returns.
func extractDates(text string, dayFirst bool) (dep, ret *time.Time) {
	var plain []time.Time
	prevEnd := 0
	for _, m := range datePattern.FindAllStringSubmatchIndex(text, -1) {
		d, ok := parseDateMatch(text, m, dayFirst)
		prefix := text[prevEnd:m[0]]
		prevEnd = m[1]
		if !ok {
			continue
		}
		if ret == nil && precededByReturnMarker(prefix) && (len(plain) > 0 || isReturnOnly(prefix)) {
			ret = &d
			continue
		}
		plain = append(plain, d)
	}

	if len(plain) > 0 {
		dep = &plain[0]
	}
	if ret == nil && len(plain) > 1 {
		ret = &plain[1]
	}
	return dep, ret
}

var returnOnlyPattern = regexp.MustCompile(`(?i)\b(?:return(?:ing)?|back)\b`)

// isReturnOnly distinguishes "returning 20/06" from "to 20/06" when no departure came first.
func isReturnOnly(prefix string) bool {
	return returnOnlyPattern.MatchString(prefix)
}

func parseDateMatch(text string, m []int, dayFirst bool) (time.Time, bool) {
	group := func(i int) int {
		if m[2*i] < 0 {
			return -1
		}
		n, err := strconv.Atoi(text[m[2*i]:m[2*i+1]])
		if err != nil {
			return -1
		}
		return n
	}

	var year, month, day int
	if y := group(1); y >= 0 {
		year, month, day = y, group(2), group(3)
	} else {
		a, b := group(4), group(5)
		year = group(6)
		switch {
		case a > 12:
			day, month = a, b
		case b > 12:
			month, day = a, b
		case dayFirst:
			day, month = a, b
		default:
			month, day = a, b
		}
	}
	return validDate(year, month, day)
}

func validDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}
	d := statex.Date(year, time.Month(month), day)
	if d.Day() != day || int(d.Month()) != month {
		return time.Time{}, false
	}
	return d, true
}
