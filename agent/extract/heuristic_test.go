package extract

import (
	"context"
	"slices"
	"testing"
	"time"

	contractx "github.com/tanpawarit/Chative-Travel-Planner/agent/contract"
	statex "github.com/tanpawarit/Chative-Travel-Planner/agent/state"
)

func TestHeuristicEndToEndExample(t *testing.T) {
	t.Parallel()

	h := NewHeuristic(DefaultDefaults)
	text := "I want to fly from DEL to (BOM) on 15/06/2025 returning 20/06/2025, luxury family trip, love beaches and temples"

	u, err := h.Extract(context.Background(), contractx.ExtractRequest{Text: text})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	s := statex.NewSlotState()
	s.Merge(u)

	if s.Destination != "BOM" {
		t.Fatalf("Destination = %q, want BOM", s.Destination)
	}
	if s.Source != "" {
		t.Fatalf("Source = %q, want unset", s.Source)
	}
	if got := s.DepartureDate.Format(isoDate); got != "2025-06-15" {
		t.Fatalf("DepartureDate = %s, want 2025-06-15", got)
	}
	if got := s.ReturnDate.Format(isoDate); got != "2025-06-20" {
		t.Fatalf("ReturnDate = %s, want 2025-06-20", got)
	}
	if s.NumDays == nil || *s.NumDays != 5 {
		t.Fatalf("NumDays = %v, want 5", s.NumDays)
	}
	if s.TravelTheme != statex.ThemeFamily || s.TravelTheme.Decorated() != "👨‍👩‍👧‍👦 Family Vacation" {
		t.Fatalf("TravelTheme = %q", s.TravelTheme.Decorated())
	}
	if s.Budget != statex.BudgetLuxury {
		t.Fatalf("Budget = %q, want Luxury", s.Budget)
	}
	if !slices.Equal(s.Activities, []string{"beach", "temple"}) {
		t.Fatalf("Activities = %v, want [beach temple]", s.Activities)
	}

	s.Merge(statex.Updates{Source: "DEL"})
	if !s.IsComplete() {
		t.Fatalf("IsComplete() = false, missing %v", s.MissingFields())
	}
}

func TestHeuristicCodes(t *testing.T) {
	t.Parallel()

	h := NewHeuristic(DefaultDefaults)
	cases := []struct {
		name     string
		text     string
		fields   []statex.Field
		wantSrc  string
		wantDest string
	}{
		{"bare code fills single field", "Mumbai (BOM) please", []statex.Field{statex.FieldSource}, "BOM", ""},
		{"bare code prefers destination", "(GOI) and (DEL)", nil, "DEL", "GOI"},
		{"from and to rules", "to (GOI) from (DEL)", nil, "DEL", "GOI"},
		{"lowercase code ignored", "(bom)", []statex.Field{statex.FieldDestination}, "", ""},
		{"no code", "somewhere warm", nil, "", ""},
		{"four letters ignored", "(BOMB)", nil, "", ""},
	}
	for _, tc := range cases {
		u, err := h.Extract(context.Background(), contractx.ExtractRequest{Text: tc.text, Fields: tc.fields})
		if err != nil {
			t.Fatalf("%s: Extract() error = %v", tc.name, err)
		}
		if u.Source != tc.wantSrc || u.Destination != tc.wantDest {
			t.Fatalf("%s: got source=%q dest=%q, want %q/%q", tc.name, u.Source, u.Destination, tc.wantSrc, tc.wantDest)
		}
	}
}

func TestHeuristicDates(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		text     string
		dayFirst bool
		wantDep  string
		wantRet  string
	}{
		{"month first when day exceeds 12", "06/15/2025 to 06/20/2025", true, "2025-06-15", "2025-06-20"},
		{"ambiguous uses day first", "03/04/2025", true, "2025-04-03", "2025-04-10"},
		{"ambiguous uses month first", "03/04/2025", false, "2025-03-04", "2025-03-11"},
		{"iso dates", "leaving 2025-12-24 back 2026-01-02", true, "2025-12-24", "2026-01-02"},
		{"invalid date skipped", "31/02/2025 and 01/03/2025", true, "2025-03-01", "2025-03-08"},
	}
	for _, tc := range cases {
		d := DefaultDefaults
		d.DayFirst = tc.dayFirst
		u, err := NewHeuristic(d).Extract(context.Background(), contractx.ExtractRequest{
			Text:   tc.text,
			Fields: []statex.Field{statex.FieldDepartureDate, statex.FieldReturnDate},
		})
		if err != nil {
			t.Fatalf("%s: Extract() error = %v", tc.name, err)
		}
		if u.DepartureDate == nil || u.DepartureDate.Format(isoDate) != tc.wantDep {
			t.Fatalf("%s: DepartureDate = %v, want %s", tc.name, u.DepartureDate, tc.wantDep)
		}
		if u.ReturnDate == nil || u.ReturnDate.Format(isoDate) != tc.wantRet {
			t.Fatalf("%s: ReturnDate = %v, want %s", tc.name, u.ReturnDate, tc.wantRet)
		}
	}
}

func TestHeuristicDefaultsOnlyWhenRequested(t *testing.T) {
	t.Parallel()

	h := NewHeuristic(DefaultDefaults)
	now := time.Date(2025, time.May, 1, 15, 30, 0, 0, time.UTC)

	u, err := h.Extract(context.Background(), contractx.ExtractRequest{Text: "no idea", Now: now})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !u.IsEmpty() {
		t.Fatalf("Extract() without defaults = %+v, want empty", u)
	}

	u, err = h.Extract(context.Background(), contractx.ExtractRequest{Text: "no idea", Now: now, ApplyDefaults: true})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if u.TravelTheme != statex.ThemeSolo || u.Budget != statex.BudgetStandard {
		t.Fatalf("defaults theme=%q budget=%q", u.TravelTheme, u.Budget)
	}
	if !slices.Equal(u.Activities, DefaultDefaults.Activities) {
		t.Fatalf("default activities = %v", u.Activities)
	}
	if u.DepartureDate.Format(isoDate) != "2025-05-08" || u.ReturnDate.Format(isoDate) != "2025-05-15" {
		t.Fatalf("default dates = %s..%s", u.DepartureDate.Format(isoDate), u.ReturnDate.Format(isoDate))
	}
	if u.Source != "" || u.Destination != "" {
		t.Fatalf("codes must never be defaulted: %q/%q", u.Source, u.Destination)
	}
}

func TestHeuristicKeywordTableOrder(t *testing.T) {
	t.Parallel()

	h := NewHeuristic(DefaultDefaults)
	u, err := h.Extract(context.Background(), contractx.ExtractRequest{
		Text:   "A romantic family holiday, cheap but premium food and shopping",
		Fields: []statex.Field{statex.FieldTravelTheme, statex.FieldBudget, statex.FieldActivities},
	})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if u.TravelTheme != statex.ThemeFamily {
		t.Fatalf("TravelTheme = %q, want Family Vacation", u.TravelTheme)
	}
	if u.Budget != statex.BudgetLuxury {
		t.Fatalf("Budget = %q, want Luxury", u.Budget)
	}
	if !slices.Equal(u.Activities, []string{"food", "shopping"}) {
		t.Fatalf("Activities = %v, want [food shopping]", u.Activities)
	}
}

func TestHeuristicNormalizesFullWidthInput(t *testing.T) {
	t.Parallel()

	h := NewHeuristic(DefaultDefaults)
	u, err := h.Extract(context.Background(), contractx.ExtractRequest{
		Text:   "to （ＢＯＭ）",
		Fields: []statex.Field{statex.FieldDestination},
	})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if u.Destination != "BOM" {
		t.Fatalf("Destination = %q, want BOM", u.Destination)
	}
}

func TestHeuristicLoneDepartureKeepsKnownReturn(t *testing.T) {
	t.Parallel()

	h := NewHeuristic(DefaultDefaults)
	s := statex.NewSlotState()

	first, err := h.Extract(context.Background(), contractx.ExtractRequest{
		Text: "to (BOM) on 15/06/2025 returning 30/06/2025",
	})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	s.Merge(first)

	second, err := h.Extract(context.Background(), contractx.ExtractRequest{
		Text:        "actually I'll leave on 20/06/2025",
		KnownReturn: s.ReturnDate,
	})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if second.ReturnDate != nil {
		t.Fatalf("ReturnDate = %v, want no defaulted return", second.ReturnDate)
	}
	s.Merge(second)

	if got := s.DepartureDate.Format(isoDate); got != "2025-06-20" {
		t.Fatalf("DepartureDate = %s, want 2025-06-20", got)
	}
	if got := s.ReturnDate.Format(isoDate); got != "2025-06-30" {
		t.Fatalf("ReturnDate = %s, want 2025-06-30", got)
	}
	if s.NumDays == nil || *s.NumDays != 10 {
		t.Fatalf("NumDays = %v, want 10", s.NumDays)
	}
}

func TestHeuristicLoneDepartureAfterKnownReturnDefaultsTrip(t *testing.T) {
	t.Parallel()

	known := statex.Date(2025, time.June, 20)
	u, err := NewHeuristic(DefaultDefaults).Extract(context.Background(), contractx.ExtractRequest{
		Text:        "leaving 01/07/2025",
		Fields:      []statex.Field{statex.FieldDepartureDate, statex.FieldReturnDate},
		KnownReturn: &known,
	})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if u.ReturnDate == nil || u.ReturnDate.Format(isoDate) != "2025-07-08" {
		t.Fatalf("ReturnDate = %v, want 2025-07-08", u.ReturnDate)
	}
}

func TestHeuristicKeywordsMatchInsideCompounds(t *testing.T) {
	t.Parallel()

	u, err := NewHeuristic(DefaultDefaults).Extract(context.Background(), contractx.ExtractRequest{
		Text:   "a kid-friendly stay, third-party booking is fine",
		Fields: []statex.Field{statex.FieldTravelTheme, statex.FieldActivities},
	})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if u.TravelTheme != statex.ThemeFamily {
		t.Fatalf("TravelTheme = %q, want Family Vacation", u.TravelTheme)
	}
	if !slices.Equal(u.Activities, []string{"nightlife"}) {
		t.Fatalf("Activities = %v, want [nightlife]", u.Activities)
	}
}
