package state

import (
	"slices"
	"testing"
	"time"
)

func datePtr(y int, m time.Month, d int) *time.Time {
	t := Date(y, m, d)
	return &t
}

func TestMergeIgnoresAbsentAndInvalidValues(t *testing.T) {
	t.Parallel()

	s := NewSlotState()
	s.Merge(Updates{Source: "DEL", Destination: "BOM"})
	s.Merge(Updates{Source: "None", Destination: "bombay", TravelTheme: "Space Trip", Budget: "cheap"})

	if s.Source != "DEL" || s.Destination != "BOM" {
		t.Fatalf("codes = %q/%q, want DEL/BOM", s.Source, s.Destination)
	}
	if s.TravelTheme != "" || s.Budget != "" {
		t.Fatalf("invalid enums merged: theme=%q budget=%q", s.TravelTheme, s.Budget)
	}
}

func TestMergeDerivesNumDays(t *testing.T) {
	t.Parallel()

	s := NewSlotState()
	if got := s.TripDays(); got != DefaultTripDays {
		t.Fatalf("TripDays() = %d, want %d", got, DefaultTripDays)
	}

	s.Merge(Updates{DepartureDate: datePtr(2025, time.June, 15)})
	if s.NumDays != nil {
		t.Fatalf("NumDays = %d, want unset with one date", *s.NumDays)
	}

	s.Merge(Updates{ReturnDate: datePtr(2025, time.June, 20)})
	if s.NumDays == nil || *s.NumDays != 5 {
		t.Fatalf("NumDays = %v, want 5", s.NumDays)
	}
}

func TestMergeKeepsDepartureBeforeReturn(t *testing.T) {
	t.Parallel()

	s := NewSlotState()
	s.Merge(Updates{DepartureDate: datePtr(2025, time.June, 15), ReturnDate: datePtr(2025, time.June, 10)})
	if s.ReturnDate != nil {
		t.Fatalf("ReturnDate = %v, want discarded", s.ReturnDate)
	}

	s.Merge(Updates{ReturnDate: datePtr(2025, time.June, 20)})
	s.Merge(Updates{DepartureDate: datePtr(2025, time.July, 1)})
	if s.ReturnDate != nil || s.NumDays != nil {
		t.Fatalf("stale return kept: return=%v days=%v", s.ReturnDate, s.NumDays)
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestMergeDropsStaleReturnWhenCorrectionReturnIsEarlier(t *testing.T) {
	t.Parallel()

	s := NewSlotState()
	s.Merge(Updates{DepartureDate: datePtr(2025, time.June, 15), ReturnDate: datePtr(2025, time.June, 20)})
	s.Merge(Updates{DepartureDate: datePtr(2025, time.July, 1), ReturnDate: datePtr(2025, time.June, 25)})

	if s.DepartureDate == nil || !s.DepartureDate.Equal(*datePtr(2025, time.July, 1)) {
		t.Fatalf("DepartureDate = %v, want 2025-07-01", s.DepartureDate)
	}
	if s.ReturnDate != nil || s.NumDays != nil {
		t.Fatalf("return=%v days=%v, want both cleared", s.ReturnDate, s.NumDays)
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if missing := s.MissingFields(); !slices.Contains(missing, FieldReturnDate) {
		t.Fatalf("MissingFields() = %v, want return_date", missing)
	}
}

func TestMissingFieldsCanonicalOrder(t *testing.T) {
	t.Parallel()

	s := NewSlotState()
	if got := s.MissingFields(); !slices.Equal(got, RequiredFields) {
		t.Fatalf("MissingFields() = %v, want %v", got, RequiredFields)
	}

	s.Merge(Updates{
		Destination:   "BOM",
		DepartureDate: datePtr(2025, time.June, 15),
		ReturnDate:    datePtr(2025, time.June, 20),
		TravelTheme:   ThemeFamily,
		Budget:        BudgetLuxury,
		Activities:    []string{"beach", "temple"},
	})
	if got := s.MissingFields(); !slices.Equal(got, []Field{FieldSource}) {
		t.Fatalf("MissingFields() = %v, want [source]", got)
	}
	if s.IsComplete() {
		t.Fatal("IsComplete() = true without source")
	}

	s.Merge(Updates{Source: "DEL"})
	if !s.IsComplete() {
		t.Fatalf("IsComplete() = false, missing %v", s.MissingFields())
	}
}

func TestResetRestoresInitialValues(t *testing.T) {
	t.Parallel()

	s := NewSlotState()
	s.Merge(Updates{Source: "DEL", Activities: []string{"food"}})
	s.Stage = StagePostPlan
	s.ReadyToGenerate = true
	s.PlanGenerated = true

	s.Reset()
	if len(s.MissingFields()) != len(RequiredFields) {
		t.Fatalf("MissingFields() after Reset = %v", s.MissingFields())
	}
	if s.Stage != StageInitial || s.ReadyToGenerate || s.PlanGenerated {
		t.Fatalf("Reset() left stage=%s ready=%v generated=%v", s.Stage, s.ReadyToGenerate, s.PlanGenerated)
	}
}

func TestMergeDeduplicatesActivities(t *testing.T) {
	t.Parallel()

	s := NewSlotState()
	s.Merge(Updates{Activities: []string{" beach ", "beach", "Unknown", "temple"}})
	if !slices.Equal(s.Activities, []string{"beach", "temple"}) {
		t.Fatalf("Activities = %v, want [beach temple]", s.Activities)
	}
}

func TestParseThemeAcceptsDecoratedNames(t *testing.T) {
	t.Parallel()

	cases := map[string]Theme{
		ThemeFamily.Decorated(): ThemeFamily,
		"couple getaway":        ThemeCouple,
		"Adventure":             ThemeAdventure,
		" solo exploration ":    ThemeSolo,
	}
	for in, want := range cases {
		got, ok := ParseTheme(in)
		if !ok || got != want {
			t.Fatalf("ParseTheme(%q) = %q, %v, want %q", in, got, ok, want)
		}
	}
	if _, ok := ParseTheme("business"); ok {
		t.Fatal("ParseTheme(business) ok = true")
	}
}

func TestSessionCloneIsDeep(t *testing.T) {
	t.Parallel()

	now := time.Now()
	orig := NewSession("s", "strict", now)
	orig.Slots.Merge(Updates{DepartureDate: datePtr(2025, time.March, 1), Activities: []string{"museum"}})
	orig.Log.Append(RoleUser, "hi", now)

	cp := orig.Clone()
	*cp.Slots.DepartureDate = Date(2030, time.January, 1)
	cp.Slots.Activities[0] = "x"
	cp.Log.Append(RoleAssistant, "hello", now)

	if orig.Slots.DepartureDate.Year() != 2025 || orig.Slots.Activities[0] != "museum" || orig.Log.Len() != 1 {
		t.Fatalf("Clone() shares memory with original: %+v", orig)
	}
}

func TestRenderLastCapsTurns(t *testing.T) {
	t.Parallel()

	var l ConversationLog
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	l.Append(RoleAssistant, "hello", now)
	l.Append(RoleUser, "to (GOI)", now)
	l.Append(RoleAssistant, "from where?", now)

	if got := l.RenderLast(2); got != "user: to (GOI)\nassistant: from where?" {
		t.Fatalf("RenderLast(2) = %q", got)
	}
	if got := l.RenderLast(PromptTurns); got != "assistant: hello\nuser: to (GOI)\nassistant: from where?" {
		t.Fatalf("RenderLast(PromptTurns) = %q", got)
	}
}
