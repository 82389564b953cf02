package dialogue

import (
	"errors"
	"testing"

	contractx "github.com/tanpawarit/Chative-Travel-Planner/agent/contract"
	statex "github.com/tanpawarit/Chative-Travel-Planner/agent/state"
)

func fullUpdates() statex.Updates {
	dep := statex.Date(2025, 6, 15)
	ret := statex.Date(2025, 6, 20)
	return statex.Updates{
		Source:        "DEL",
		Destination:   "BOM",
		DepartureDate: &dep,
		ReturnDate:    &ret,
		TravelTheme:   statex.ThemeFamily,
		Budget:        statex.BudgetLuxury,
		Activities:    []string{"beach", "temple"},
	}
}

func TestKeywordDetection(t *testing.T) {
	t.Parallel()

	cases := []struct {
		text    string
		reset   bool
		trigger bool
	}{
		{"Let's START OVER please", true, false},
		{"I want a different trip", true, false},
		{"Yes, go ahead", false, true},
		{"Show me the itinerary", false, true},
		{"new plan", true, true},
		{"hello there", false, false},
	}
	for _, tc := range cases {
		if got := IsResetRequest(tc.text); got != tc.reset {
			t.Errorf("IsResetRequest(%q) = %v, want %v", tc.text, got, tc.reset)
		}
		if got := HasPlanTrigger(tc.text); got != tc.trigger {
			t.Errorf("HasPlanTrigger(%q) = %v, want %v", tc.text, got, tc.trigger)
		}
	}
}

func TestOpportunisticAdvancesThroughStages(t *testing.T) {
	t.Parallel()

	p, err := NewPolicy(PolicyOpportunistic, PostPlanDefault)
	if err != nil {
		t.Fatalf("NewPolicy() error = %v", err)
	}
	fields, defaults := p.Request(statex.NewSlotState())
	if len(fields) != len(statex.RequiredFields) || defaults {
		t.Fatalf("Request() = %v, %v", fields, defaults)
	}

	slots := statex.NewSlotState()
	d := p.Advance(&slots, statex.Updates{Budget: statex.BudgetEconomy}, "cheap trip")
	if slots.Stage != statex.StageInitial || d.Move != MoveAsk || d.Ask[0] != statex.FieldDestination {
		t.Fatalf("stage=%s decision=%+v, want initial asking destination", slots.Stage, d)
	}

	d = p.Advance(&slots, statex.Updates{Destination: "BOM"}, "to (BOM)")
	if slots.Stage != statex.StageGatheringInfo {
		t.Fatalf("stage = %s, want gathering_info", slots.Stage)
	}
	if d.Move != MoveAsk || len(d.Ask) != 2 || d.Ask[0] != statex.FieldSource || d.Ask[1] != statex.FieldDepartureDate {
		t.Fatalf("decision = %+v", d)
	}

	d = p.Advance(&slots, fullUpdates(), "from DEL, dates and all")
	if slots.Stage != statex.StageConfirmation || !slots.ReadyToGenerate || d.Move != MoveConfirm {
		t.Fatalf("stage=%s ready=%v decision=%+v", slots.Stage, slots.ReadyToGenerate, d)
	}

	d = p.Advance(&slots, statex.Updates{}, "Yes, proceed")
	if d.Move != MoveGenerate {
		t.Fatalf("decision = %+v, want generate", d)
	}
	p.AfterPlan(&slots)
	if !slots.PlanGenerated || slots.Stage != statex.StagePostPlan || slots.Destination != "BOM" {
		t.Fatalf("after plan slots = %+v", slots)
	}

	d = p.Advance(&slots, statex.Updates{}, "yes generate the plan again")
	if d.Move != MoveFollowUp {
		t.Fatalf("decision after plan = %+v, want follow_up", d)
	}
}

func TestOpportunisticNeedsTriggerKeyword(t *testing.T) {
	t.Parallel()

	p, _ := NewPolicy(PolicyOpportunistic, PostPlanDefault)
	slots := statex.NewSlotState()
	p.Advance(&slots, fullUpdates(), "here are the details")
	d := p.Advance(&slots, statex.Updates{}, "hmm, not sure")
	if d.Move != MoveConfirm {
		t.Fatalf("decision = %+v, want confirm", d)
	}
}

func TestOpportunisticCompleteInOneTurnTriggers(t *testing.T) {
	t.Parallel()

	p, _ := NewPolicy(PolicyOpportunistic, PostPlanDefault)
	slots := statex.NewSlotState()
	d := p.Advance(&slots, fullUpdates(), "plan a trip from (DEL) to (BOM)")
	if d.Move != MoveGenerate || slots.Stage != statex.StageConfirmation {
		t.Fatalf("stage=%s decision=%+v", slots.Stage, d)
	}
}

func TestOpportunisticResetPostPlanOverride(t *testing.T) {
	t.Parallel()

	p, _ := NewPolicy(PolicyOpportunistic, PostPlanReset)
	slots := statex.NewSlotState()
	p.Advance(&slots, fullUpdates(), "yes")
	p.AfterPlan(&slots)
	if slots.Stage != statex.StageInitial || slots.Has(statex.FieldDestination) || slots.PlanGenerated {
		t.Fatalf("slots = %+v, want reset", slots)
	}
}

func TestStrictStepsInOrder(t *testing.T) {
	t.Parallel()

	p, err := NewPolicy(PolicyStrict, PostPlanDefault)
	if err != nil {
		t.Fatalf("NewPolicy() error = %v", err)
	}
	all := fullUpdates()
	slots := statex.NewSlotState()

	steps := []struct {
		wantStage statex.Stage
		wantAsk   statex.Field
	}{
		{statex.StageCollectSource, statex.FieldSource},
		{statex.StageCollectDates, statex.FieldDepartureDate},
		{statex.StageCollectTheme, statex.FieldTravelTheme},
		{statex.StageCollectBudget, statex.FieldBudget},
		{statex.StageCollectActivities, statex.FieldActivities},
	}
	for _, s := range steps {
		fields, defaults := p.Request(slots)
		if !defaults || len(fields) == 0 {
			t.Fatalf("Request() = %v, %v", fields, defaults)
		}
		d := p.Advance(&slots, all, "")
		if slots.Stage != s.wantStage || d.Move != MoveAsk || d.Ask[0] != s.wantAsk {
			t.Fatalf("stage=%s decision=%+v, want %s asking %s", slots.Stage, d, s.wantStage, s.wantAsk)
		}
	}
	if slots.Has(statex.FieldActivities) {
		t.Fatal("strict merged a field ahead of its step")
	}

	d := p.Advance(&slots, all, "")
	if d.Move != MoveGenerate || !slots.IsComplete() {
		t.Fatalf("decision=%+v complete=%v", d, slots.IsComplete())
	}
	p.AfterPlan(&slots)
	if slots.Stage != statex.StageInitial || slots.Has(statex.FieldSource) {
		t.Fatalf("slots after plan = %+v, want reset", slots)
	}
}

func TestStrictRepromptsOnMiss(t *testing.T) {
	t.Parallel()

	p, _ := NewPolicy(PolicyStrict, PostPlanDefault)
	slots := statex.NewSlotState()
	d := p.Advance(&slots, statex.Updates{Source: "DEL"}, "from (DEL)")
	if !d.Reprompt || d.Ask[0] != statex.FieldDestination || slots.Stage != statex.StageCollectDestination {
		t.Fatalf("stage=%s decision=%+v", slots.Stage, d)
	}
	if slots.Has(statex.FieldSource) {
		t.Fatal("source merged during destination step")
	}
}

func TestStrictKeepPostPlanFollowsUp(t *testing.T) {
	t.Parallel()

	p, _ := NewPolicy(PolicyStrict, PostPlanKeep)
	slots := statex.NewSlotState()
	slots.Stage = statex.StageCollectActivities
	p.Advance(&slots, statex.Updates{Activities: []string{"food"}}, "")
	p.AfterPlan(&slots)

	if fields, _ := p.Request(slots); len(fields) != 0 {
		t.Fatalf("Request() = %v, want none", fields)
	}
	if d := p.Advance(&slots, statex.Updates{}, "yes"); d.Move != MoveFollowUp {
		t.Fatalf("decision = %+v, want follow_up", d)
	}
}

func TestNewPolicyUnknown(t *testing.T) {
	t.Parallel()

	if _, err := NewPolicy("chaotic", PostPlanDefault); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("NewPolicy() error = %v, want ErrValidation", err)
	}
	if _, err := ParsePostPlan("sometimes"); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("ParsePostPlan() error = %v, want ErrValidation", err)
	}
}
