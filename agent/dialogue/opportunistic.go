package dialogue

import (
	statex "github.com/tanpawarit/Chative-Travel-Planner/agent/state"
)

const maxAsksPerTurn = 2

// opportunistic extracts every field on every turn and advances as soon as the slots allow.
type opportunistic struct {
	postPlan PostPlan
}

func newOpportunistic(postPlan PostPlan) *opportunistic {
	if postPlan == PostPlanDefault {
		postPlan = PostPlanKeep
	}
	return &opportunistic{postPlan: postPlan}
}

func (p *opportunistic) Name() string { return PolicyOpportunistic }

func (p *opportunistic) Request(statex.SlotState) ([]statex.Field, bool) {
	return statex.RequiredFields, false
}

func (p *opportunistic) Advance(slots *statex.SlotState, updates statex.Updates, utterance string) Decision {
	slots.Merge(updates)

	if slots.Stage == statex.StagePostPlan {
		return Decision{Move: MoveFollowUp}
	}
	if slots.Stage == statex.StageInitial && slots.Has(statex.FieldDestination) {
		slots.Stage = statex.StageGatheringInfo
	}
	// A date correction can clear the return date after confirmation.
	if slots.Stage == statex.StageConfirmation && !slots.IsComplete() {
		slots.Stage = statex.StageGatheringInfo
		slots.ReadyToGenerate = false
	}
	if slots.Stage == statex.StageGatheringInfo && slots.IsComplete() {
		slots.Stage = statex.StageConfirmation
		slots.ReadyToGenerate = true
	}

	if slots.ReadyToGenerate && !slots.PlanGenerated && HasPlanTrigger(utterance) {
		return Decision{Move: MoveGenerate}
	}
	if slots.Stage == statex.StageConfirmation {
		return Decision{Move: MoveConfirm}
	}
	if slots.Stage == statex.StageInitial {
		return Decision{Move: MoveAsk, Ask: []statex.Field{statex.FieldDestination}}
	}

	ask := slots.MissingFields()
	if len(ask) > maxAsksPerTurn {
		ask = ask[:maxAsksPerTurn]
	}
	return Decision{Move: MoveAsk, Ask: ask}
}

func (p *opportunistic) AfterPlan(slots *statex.SlotState) {
	markPlanned(slots, p.postPlan)
}
