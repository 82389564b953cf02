package extract

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	contractx "github.com/tanpawarit/Chative-Travel-Planner/agent/contract"
	statex "github.com/tanpawarit/Chative-Travel-Planner/agent/state"
)

const isoDate = "2006-01-02"

// stripFence removes a surrounding code fence. The rest of the opening fence line is a
// language tag, never content.
func stripFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// cleanReply strips code fences and any prose around a JSON object.
func cleanReply(raw string) string {
	s := stripFence(raw)

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}

// firstLine returns the first non-empty line of a fenced or plain reply.
func firstLine(raw string) string {
	s := stripFence(raw)
	for _, line := range strings.Split(s, "\n") {
		line = strings.Trim(strings.TrimSpace(line), "`\"'.")
		if line != "" {
			return line
		}
	}
	return ""
}

type extractedPayload map[string]any

func parseObject(raw string) (statex.Updates, error) {
	var payload extractedPayload
	if err := json.Unmarshal([]byte(cleanReply(raw)), &payload); err != nil {
		return statex.Updates{}, fmt.Errorf("%w: decode extraction object: %v", contractx.ErrSchemaViolation, err)
	}

	var u statex.Updates
	u.Source = parseCode(payload.str("source"))
	u.Destination = parseCode(payload.str("destination"))
	u.DepartureDate = parseISODate(payload.str("departure_date"))
	u.ReturnDate = parseISODate(payload.str("return_date"))
	if theme, ok := statex.ParseTheme(payload.str("travel_theme")); ok {
		u.TravelTheme = theme
	}
	if budget, ok := statex.ParseBudget(payload.str("budget")); ok {
		u.Budget = budget
	}
	u.Activities = payload.list("activities")
	return u, nil
}

func (p extractedPayload) str(key string) string {
	v, ok := p[key].(string)
	if !ok || statex.IsAbsent(v) {
		return ""
	}
	return strings.TrimSpace(v)
}

func (p extractedPayload) list(key string) []string {
	switch v := p[key].(type) {
	case string:
		return splitList(v)
	case []any:
		items := lo.FilterMap(v, func(item any, _ int) (string, bool) {
			s, ok := item.(string)
			return strings.TrimSpace(s), ok && !statex.IsAbsent(s)
		})
		return lo.Uniq(items)
	}
	return nil
}

func splitList(raw string) []string {
	if statex.IsAbsent(raw) {
		return nil
	}
	parts := lo.Map(strings.Split(raw, ","), func(s string, _ int) string {
		return strings.TrimSpace(s)
	})
	return lo.Uniq(lo.Reject(parts, func(s string, _ int) bool {
		return statex.IsAbsent(s)
	}))
}

func parseCode(raw string) string {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if !statex.ValidCode(code) {
		return ""
	}
	return code
}

func parseISODate(raw string) *time.Time {
	if statex.IsAbsent(raw) {
		return nil
	}
	d, err := time.Parse(isoDate, strings.TrimSpace(raw))
	if err != nil {
		return nil
	}
	d = statex.Date(d.Year(), d.Month(), d.Day())
	return &d
}

// parseField reads a single-line answer for one field. Dates arrive as exactly two tokens.
func parseField(field statex.Field, raw string) statex.Updates {
	line := firstLine(raw)
	var u statex.Updates
	if statex.IsAbsent(line) {
		return u
	}

	switch field {
	case statex.FieldSource:
		u.Source = parseCode(line)
	case statex.FieldDestination:
		u.Destination = parseCode(line)
	case statex.FieldDepartureDate, statex.FieldReturnDate:
		tokens := strings.Fields(line)
		if len(tokens) != 2 {
			return u
		}
		u.DepartureDate = parseISODate(tokens[0])
		u.ReturnDate = parseISODate(tokens[1])
	case statex.FieldTravelTheme:
		if theme, ok := statex.ParseTheme(line); ok {
			u.TravelTheme = theme
		}
	case statex.FieldBudget:
		if budget, ok := statex.ParseBudget(line); ok {
			u.Budget = budget
		}
	case statex.FieldActivities:
		u.Activities = splitList(line)
	}
	return u
}
