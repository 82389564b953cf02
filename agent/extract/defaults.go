package extract

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
	contractx "github.com/tanpawarit/Chative-Travel-Planner/agent/contract"
	statex "github.com/tanpawarit/Chative-Travel-Planner/agent/state"
)

// Defaults is the single table of fallback values used by every extraction strategy.
type Defaults struct {
	TripDays            int
	DepartureOffsetDays int
	Theme               statex.Theme
	Budget              statex.Budget
	Activities          []string
	// DayFirst resolves dates like 03/04/2025 as DD/MM when neither component exceeds 12.
	DayFirst bool
}

var DefaultDefaults = Defaults{
	TripDays:            statex.DefaultTripDays,
	DepartureOffsetDays: 7,
	Theme:               statex.ThemeSolo,
	Budget:              statex.BudgetStandard,
	Activities:          []string{"sightseeing", "local cuisine", "cultural experiences"},
	DayFirst:            true,
}

type Config struct {
	Strategy            string   `envconfig:"STRATEGY" split_words:"true" default:"heuristic"`
	TripDays            int      `envconfig:"TRIP_DAYS" split_words:"true" default:"7"`
	DepartureOffsetDays int      `envconfig:"DEPARTURE_OFFSET_DAYS" split_words:"true" default:"7"`
	Theme               string   `envconfig:"THEME" split_words:"true" default:"Solo Exploration"`
	Budget              string   `envconfig:"BUDGET" split_words:"true" default:"Standard"`
	Activities          []string `envconfig:"ACTIVITIES" split_words:"true" default:"sightseeing,local cuisine,cultural experiences"`
	DayFirst            bool     `envconfig:"DAY_FIRST" split_words:"true" default:"true"`
}

func (c Config) Defaults() (Defaults, error) {
	theme, ok := statex.ParseTheme(c.Theme)
	if !ok {
		return Defaults{}, fmt.Errorf("%w: unknown default theme %q", contractx.ErrValidation, c.Theme)
	}
	budget, ok := statex.ParseBudget(c.Budget)
	if !ok {
		return Defaults{}, fmt.Errorf("%w: unknown default budget %q", contractx.ErrValidation, c.Budget)
	}
	if c.TripDays <= 0 || c.DepartureOffsetDays < 0 {
		return Defaults{}, fmt.Errorf("%w: trip days and departure offset must be positive", contractx.ErrValidation)
	}
	activities := lo.Compact(lo.Map(c.Activities, func(a string, _ int) string {
		return strings.TrimSpace(a)
	}))
	if len(activities) == 0 {
		activities = DefaultDefaults.Activities
	}
	return Defaults{
		TripDays:            c.TripDays,
		DepartureOffsetDays: c.DepartureOffsetDays,
		Theme:               theme,
		Budget:              budget,
		Activities:          activities,
		DayFirst:            c.DayFirst,
	}, nil
}

func (d Defaults) normalized() Defaults {
	if d.TripDays <= 0 {
		d.TripDays = DefaultDefaults.TripDays
	}
	if d.DepartureOffsetDays < 0 {
		d.DepartureOffsetDays = DefaultDefaults.DepartureOffsetDays
	}
	if !d.Theme.Valid() {
		d.Theme = DefaultDefaults.Theme
	}
	if !d.Budget.Valid() {
		d.Budget = DefaultDefaults.Budget
	}
	if len(d.Activities) == 0 {
		d.Activities = DefaultDefaults.Activities
	}
	return d
}

// complete fills the gaps shared by every strategy: a lone departure implies a default-length
// trip unless the session already holds a return that still fits, and with ApplyDefaults each
// requested field that is still absent gets its fallback.
func (d Defaults) complete(req contractx.ExtractRequest, u *statex.Updates) {
	wants := func(f statex.Field) bool { return lo.Contains(req.Fields, f) }

	if req.ApplyDefaults && wants(statex.FieldDepartureDate) && u.DepartureDate == nil && u.ReturnDate == nil {
		now := req.Now
		if now.IsZero() {
			now = time.Now()
		}
		dep := statex.Date(now.Year(), now.Month(), now.Day()).AddDate(0, 0, d.DepartureOffsetDays)
		u.DepartureDate = &dep
	}
	keepReturn := req.KnownReturn != nil && u.DepartureDate != nil && !req.KnownReturn.Before(*u.DepartureDate)
	if wants(statex.FieldReturnDate) && u.DepartureDate != nil && u.ReturnDate == nil && !keepReturn {
		ret := u.DepartureDate.AddDate(0, 0, d.TripDays)
		u.ReturnDate = &ret
	}
	if !req.ApplyDefaults {
		return
	}
	if wants(statex.FieldTravelTheme) && u.TravelTheme == "" {
		u.TravelTheme = d.Theme
	}
	if wants(statex.FieldBudget) && u.Budget == "" {
		u.Budget = d.Budget
	}
	if wants(statex.FieldActivities) && len(u.Activities) == 0 {
		u.Activities = append([]string(nil), d.Activities...)
	}
}

// FieldsFor returns fields, or every required field when none are given.
func FieldsFor(fields ...statex.Field) []statex.Field {
	if len(fields) == 0 {
		return append([]statex.Field(nil), statex.RequiredFields...)
	}
	return fields
}
