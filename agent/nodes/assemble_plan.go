package orchestratornode

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/Chative-Travel-Planner/agent/contract"
	dialoguex "github.com/tanpawarit/Chative-Travel-Planner/agent/dialogue"
)

// AssemblePlan produces the report when the decision asks for it. The report is
// the turn's second reply; the policy then decides what happens to the slots.
func AssemblePlan(ctx context.Context, in *GraphState, assembler contractx.Assembler) (*GraphState, error) {
	if in == nil || in.Session == nil || in.Policy == nil {
		return nil, fmt.Errorf("%w: graph state is incomplete", contractx.ErrValidation)
	}
	if in.Decision.Move != dialoguex.MoveGenerate {
		return in, nil
	}

	report, err := assembler.Assemble(ctx, in.Session.Slots)
	if err != nil {
		return nil, fmt.Errorf("assemble plan: %w", err)
	}
	in.Replies = append(in.Replies, report)
	in.Planned = true
	in.PlannedSlots = in.Session.Slots.Clone()
	in.Policy.AfterPlan(&in.Session.Slots)
	return in, nil
}
