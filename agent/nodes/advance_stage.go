package orchestratornode

import (
	"fmt"

	contractx "github.com/tanpawarit/Chative-Travel-Planner/agent/contract"
)

func AdvanceStage(in *GraphState) (*GraphState, error) {
	if in == nil || in.Session == nil || in.Policy == nil {
		return nil, fmt.Errorf("%w: graph state is incomplete", contractx.ErrValidation)
	}
	in.Decision = in.Policy.Advance(&in.Session.Slots, in.Updates, in.Text)
	return in, nil
}
