package state

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"
)

// DefaultTripDays is used for NumDays whenever it cannot be derived from the dates.
const DefaultTripDays = 7

type Field string

const (
	FieldSource        Field = "source"
	FieldDestination   Field = "destination"
	FieldDepartureDate Field = "departure_date"
	FieldReturnDate    Field = "return_date"
	FieldTravelTheme   Field = "travel_theme"
	FieldBudget        Field = "budget"
	FieldActivities    Field = "activities"
)

// RequiredFields is the canonical order used for completeness checks and follow-up questions.
var RequiredFields = []Field{
	FieldSource,
	FieldDestination,
	FieldDepartureDate,
	FieldReturnDate,
	FieldTravelTheme,
	FieldBudget,
	FieldActivities,
}

type Stage string

const (
	StageInitial            Stage = "initial"
	StageGatheringInfo      Stage = "gathering_info"
	StageCollectDestination Stage = "collect_destination"
	StageCollectSource      Stage = "collect_source"
	StageCollectDates       Stage = "collect_dates"
	StageCollectTheme       Stage = "collect_theme"
	StageCollectBudget      Stage = "collect_budget"
	StageCollectActivities  Stage = "collect_activities"
	StageConfirmation       Stage = "confirmation"
	StagePostPlan           Stage = "post_plan"
)

func (s Stage) Valid() bool {
	switch s {
	case StageInitial, StageGatheringInfo,
		StageCollectDestination, StageCollectSource, StageCollectDates,
		StageCollectTheme, StageCollectBudget, StageCollectActivities,
		StageConfirmation, StagePostPlan:
		return true
	}
	return false
}

type Theme string

const (
	ThemeFamily    Theme = "Family Vacation"
	ThemeCouple    Theme = "Couple Getaway"
	ThemeAdventure Theme = "Adventure Trip"
	ThemeSolo      Theme = "Solo Exploration"
)

var themeDecorations = map[Theme]string{
	ThemeFamily:    "👨‍👩‍👧‍👦",
	ThemeCouple:    "💑",
	ThemeAdventure: "🏔️",
	ThemeSolo:      "🧳",
}

// ParseTheme accepts the display name (with or without decoration) or a one-word alias.
func ParseTheme(raw string) (Theme, bool) {
	s := strings.TrimSpace(raw)
	for _, deco := range themeDecorations {
		s = strings.TrimSpace(strings.TrimPrefix(s, deco))
	}
	switch strings.ToLower(s) {
	case "family vacation", "family":
		return ThemeFamily, true
	case "couple getaway", "couple":
		return ThemeCouple, true
	case "adventure trip", "adventure":
		return ThemeAdventure, true
	case "solo exploration", "solo":
		return ThemeSolo, true
	}
	return "", false
}

func (t Theme) Valid() bool {
	_, ok := themeDecorations[t]
	return ok
}

// Decorated returns the theme prefixed with its display emoji.
func (t Theme) Decorated() string {
	if deco, ok := themeDecorations[t]; ok {
		return deco + " " + string(t)
	}
	return string(t)
}

type Budget string

const (
	BudgetEconomy  Budget = "Economy"
	BudgetStandard Budget = "Standard"
	BudgetLuxury   Budget = "Luxury"
)

func ParseBudget(raw string) (Budget, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "economy":
		return BudgetEconomy, true
	case "standard":
		return BudgetStandard, true
	case "luxury":
		return BudgetLuxury, true
	}
	return "", false
}

func (b Budget) Valid() bool {
	return b == BudgetEconomy || b == BudgetStandard || b == BudgetLuxury
}

var codePattern = regexp.MustCompile(`^[A-Z]{3}$`)

// ValidCode reports whether s is a 3-letter uppercase location code.
func ValidCode(s string) bool {
	return codePattern.MatchString(s)
}

// IsAbsent reports whether a raw extracted token marks an explicitly unknown value.
func IsAbsent(raw string) bool {
	switch strings.TrimSpace(raw) {
	case "", "None", "null", "Unknown":
		return true
	}
	return false
}

// Updates is a partial set of field values produced by extraction.
// Zero values mean "not extracted".
type Updates struct {
	Source        string     `json:"source,omitempty"`
	Destination   string     `json:"destination,omitempty"`
	DepartureDate *time.Time `json:"departure_date,omitempty"`
	ReturnDate    *time.Time `json:"return_date,omitempty"`
	TravelTheme   Theme      `json:"travel_theme,omitempty"`
	Budget        Budget     `json:"budget,omitempty"`
	Activities    []string   `json:"activities,omitempty"`
}

func (u Updates) Has(f Field) bool {
	switch f {
	case FieldSource:
		return u.Source != ""
	case FieldDestination:
		return u.Destination != ""
	case FieldDepartureDate:
		return u.DepartureDate != nil
	case FieldReturnDate:
		return u.ReturnDate != nil
	case FieldTravelTheme:
		return u.TravelTheme != ""
	case FieldBudget:
		return u.Budget != ""
	case FieldActivities:
		return len(u.Activities) > 0
	}
	return false
}

func (u Updates) IsEmpty() bool {
	for _, f := range RequiredFields {
		if u.Has(f) {
			return false
		}
	}
	return true
}

// SlotState is the record of trip parameters collected so far plus the dialogue position.
type SlotState struct {
	Source        string     `json:"source,omitempty"`
	Destination   string     `json:"destination,omitempty"`
	DepartureDate *time.Time `json:"departure_date,omitempty"`
	ReturnDate    *time.Time `json:"return_date,omitempty"`
	NumDays       *int       `json:"num_days,omitempty"`
	TravelTheme   Theme      `json:"travel_theme,omitempty"`
	Budget        Budget     `json:"budget,omitempty"`
	Activities    []string   `json:"activities,omitempty"`

	Stage           Stage `json:"stage"`
	ReadyToGenerate bool  `json:"ready_to_generate"`
	PlanGenerated   bool  `json:"plan_generated"`
}

func NewSlotState() SlotState {
	return SlotState{Stage: StageInitial}
}

// Merge applies present, valid updates. A return date earlier than the departure is dropped,
// and a new departure after the stored return clears the stale return.
func (s *SlotState) Merge(u Updates) {
	if code := strings.TrimSpace(u.Source); ValidCode(code) {
		s.Source = code
	}
	if code := strings.TrimSpace(u.Destination); ValidCode(code) {
		s.Destination = code
	}
	if u.TravelTheme.Valid() {
		s.TravelTheme = u.TravelTheme
	}
	if u.Budget.Valid() {
		s.Budget = u.Budget
	}
	if acts := cleanActivities(u.Activities); len(acts) > 0 {
		s.Activities = acts
	}

	if u.DepartureDate != nil {
		dep := civil(*u.DepartureDate)
		s.DepartureDate = &dep
	}
	if u.ReturnDate != nil {
		ret := civil(*u.ReturnDate)
		if s.DepartureDate == nil || !ret.Before(*s.DepartureDate) {
			s.ReturnDate = &ret
		}
	}
	// A stored return that now precedes the departure is stale.
	if s.DepartureDate != nil && s.ReturnDate != nil && s.ReturnDate.Before(*s.DepartureDate) {
		s.ReturnDate = nil
		s.NumDays = nil
	}
	s.recomputeDays()
}

func (s *SlotState) recomputeDays() {
	if s.DepartureDate == nil || s.ReturnDate == nil {
		return
	}
	days := int(s.ReturnDate.Sub(*s.DepartureDate).Hours() / 24)
	if days < 0 {
		days = DefaultTripDays
	}
	s.NumDays = &days
}

// TripDays returns NumDays, or DefaultTripDays when it has not been derived.
func (s SlotState) TripDays() int {
	if s.NumDays == nil {
		return DefaultTripDays
	}
	return *s.NumDays
}

func (s SlotState) Has(f Field) bool {
	switch f {
	case FieldSource:
		return s.Source != ""
	case FieldDestination:
		return s.Destination != ""
	case FieldDepartureDate:
		return s.DepartureDate != nil
	case FieldReturnDate:
		return s.ReturnDate != nil
	case FieldTravelTheme:
		return s.TravelTheme != ""
	case FieldBudget:
		return s.Budget != ""
	case FieldActivities:
		return len(s.Activities) > 0
	}
	return false
}

// MissingFields returns the unset required fields in canonical order.
func (s SlotState) MissingFields() []Field {
	var missing []Field
	for _, f := range RequiredFields {
		if !s.Has(f) {
			missing = append(missing, f)
		}
	}
	return missing
}

func (s SlotState) IsComplete() bool {
	return len(s.MissingFields()) == 0
}

// Reset restores the initial values: every field unset, stage initial, flags cleared.
func (s *SlotState) Reset() {
	*s = NewSlotState()
}

func (s SlotState) Clone() SlotState {
	out := s
	if s.DepartureDate != nil {
		d := *s.DepartureDate
		out.DepartureDate = &d
	}
	if s.ReturnDate != nil {
		d := *s.ReturnDate
		out.ReturnDate = &d
	}
	if s.NumDays != nil {
		n := *s.NumDays
		out.NumDays = &n
	}
	out.Activities = slices.Clone(s.Activities)
	return out
}

func (s SlotState) Validate() error {
	if !s.Stage.Valid() {
		return fmt.Errorf("%w: unknown stage %q", ErrInvalidSlots, s.Stage)
	}
	if s.Source != "" && !ValidCode(s.Source) {
		return fmt.Errorf("%w: source %q", ErrInvalidSlots, s.Source)
	}
	if s.Destination != "" && !ValidCode(s.Destination) {
		return fmt.Errorf("%w: destination %q", ErrInvalidSlots, s.Destination)
	}
	if s.DepartureDate != nil && s.ReturnDate != nil && s.ReturnDate.Before(*s.DepartureDate) {
		return fmt.Errorf("%w: return date before departure", ErrInvalidSlots)
	}
	if s.TravelTheme != "" && !s.TravelTheme.Valid() {
		return fmt.Errorf("%w: travel theme %q", ErrInvalidSlots, s.TravelTheme)
	}
	if s.Budget != "" && !s.Budget.Valid() {
		return fmt.Errorf("%w: budget %q", ErrInvalidSlots, s.Budget)
	}
	if s.NumDays != nil && *s.NumDays < 0 {
		return fmt.Errorf("%w: negative num_days", ErrInvalidSlots)
	}
	return nil
}

// civil truncates t to a UTC calendar date.
func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Date builds a UTC calendar date.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func cleanActivities(in []string) []string {
	out := make([]string, 0, len(in))
	for _, a := range in {
		a = strings.TrimSpace(a)
		if IsAbsent(a) || slices.Contains(out, a) {
			continue
		}
		out = append(out, a)
	}
	return out
}
