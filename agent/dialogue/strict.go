package dialogue

import (
	"github.com/samber/lo"
	statex "github.com/tanpawarit/Chative-Travel-Planner/agent/state"
)

type step struct {
	stage  statex.Stage
	fields []statex.Field
}

var strictSteps = []step{
	{statex.StageCollectDestination, []statex.Field{statex.FieldDestination}},
	{statex.StageCollectSource, []statex.Field{statex.FieldSource}},
	{statex.StageCollectDates, []statex.Field{statex.FieldDepartureDate, statex.FieldReturnDate}},
	{statex.StageCollectTheme, []statex.Field{statex.FieldTravelTheme}},
	{statex.StageCollectBudget, []statex.Field{statex.FieldBudget}},
	{statex.StageCollectActivities, []statex.Field{statex.FieldActivities}},
}

// strict asks for exactly one step per turn in a fixed order. The last step triggers the plan.
type strict struct {
	postPlan PostPlan
}

func newStrict(postPlan PostPlan) *strict {
	if postPlan == PostPlanDefault {
		postPlan = PostPlanReset
	}
	return &strict{postPlan: postPlan}
}

func (p *strict) Name() string { return PolicyStrict }

func (p *strict) Request(slots statex.SlotState) ([]statex.Field, bool) {
	i, ok := stepIndex(slots.Stage)
	if !ok {
		return nil, false
	}
	return strictSteps[i].fields, true
}

func (p *strict) Advance(slots *statex.SlotState, updates statex.Updates, _ string) Decision {
	i, ok := stepIndex(slots.Stage)
	if !ok {
		return Decision{Move: MoveFollowUp}
	}
	current := strictSteps[i]
	slots.Stage = current.stage

	slots.Merge(restrict(updates, current.fields))
	filled := lo.EveryBy(current.fields, func(f statex.Field) bool {
		return updates.Has(f) && slots.Has(f)
	})
	if !filled {
		return Decision{Move: MoveAsk, Ask: current.fields, Reprompt: true}
	}

	if i == len(strictSteps)-1 {
		slots.ReadyToGenerate = true
		return Decision{Move: MoveGenerate}
	}
	next := strictSteps[i+1]
	slots.Stage = next.stage
	return Decision{Move: MoveAsk, Ask: next.fields}
}

func (p *strict) AfterPlan(slots *statex.SlotState) {
	markPlanned(slots, p.postPlan)
}

// stepIndex maps a stage to its step. The initial stage is the destination step.
func stepIndex(stage statex.Stage) (int, bool) {
	if stage == statex.StageInitial {
		return 0, true
	}
	_, i, ok := lo.FindIndexOf(strictSteps, func(s step) bool { return s.stage == stage })
	return i, ok
}
