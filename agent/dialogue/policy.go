package dialogue

import (
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/Chative-Travel-Planner/agent/contract"
	statex "github.com/tanpawarit/Chative-Travel-Planner/agent/state"
)

const (
	PolicyOpportunistic = "opportunistic"
	PolicyStrict        = "strict"
)

type Move string

const (
	MoveAsk      Move = "ask"
	MoveConfirm  Move = "confirm"
	MoveGenerate Move = "generate"
	MoveFollowUp Move = "follow_up"
)

// Decision is the controller's next conversational move after a turn's updates were merged.
type Decision struct {
	Move     Move
	Ask      []statex.Field
	Reprompt bool
}

// Policy owns the stage transitions. Implementations mutate only the slots they are handed.
type Policy interface {
	Name() string
	// Request lists the fields to extract this turn and whether extraction defaults apply.
	// An empty list means no extraction is needed.
	Request(slots statex.SlotState) (fields []statex.Field, applyDefaults bool)
	Advance(slots *statex.SlotState, updates statex.Updates, utterance string) Decision
	// AfterPlan runs once a report was produced for the slots.
	AfterPlan(slots *statex.SlotState)
}

// PostPlan selects what happens to the slots after a plan was produced.
type PostPlan string

const (
	PostPlanDefault PostPlan = ""
	PostPlanKeep    PostPlan = "keep"
	PostPlanReset   PostPlan = "reset"
)

func ParsePostPlan(raw string) (PostPlan, error) {
	switch p := PostPlan(strings.ToLower(strings.TrimSpace(raw))); p {
	case PostPlanDefault, PostPlanKeep, PostPlanReset:
		return p, nil
	default:
		return "", fmt.Errorf("%w: unknown post-plan mode %q", contractx.ErrValidation, raw)
	}
}

func NewPolicy(name string, postPlan PostPlan) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case PolicyOpportunistic:
		return newOpportunistic(postPlan), nil
	case PolicyStrict:
		return newStrict(postPlan), nil
	default:
		return nil, fmt.Errorf("%w: unknown dialogue policy %q", contractx.ErrValidation, name)
	}
}

func markPlanned(slots *statex.SlotState, mode PostPlan) {
	if mode == PostPlanReset {
		slots.Reset()
		return
	}
	slots.PlanGenerated = true
	slots.Stage = statex.StagePostPlan
}

// restrict drops every update outside fields.
func restrict(u statex.Updates, fields []statex.Field) statex.Updates {
	var out statex.Updates
	for _, f := range fields {
		switch f {
		case statex.FieldSource:
			out.Source = u.Source
		case statex.FieldDestination:
			out.Destination = u.Destination
		case statex.FieldDepartureDate:
			out.DepartureDate = u.DepartureDate
		case statex.FieldReturnDate:
			out.ReturnDate = u.ReturnDate
		case statex.FieldTravelTheme:
			out.TravelTheme = u.TravelTheme
		case statex.FieldBudget:
			out.Budget = u.Budget
		case statex.FieldActivities:
			out.Activities = u.Activities
		}
	}
	return out
}
