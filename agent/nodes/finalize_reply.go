package orchestratornode

import (
	"fmt"

	contractx "github.com/tanpawarit/Chative-Travel-Planner/agent/contract"
)

func FinalizeReply(in *GraphState) (GraphOutput, error) {
	if in == nil || in.Session == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	if len(in.Replies) == 0 {
		return GraphOutput{}, fmt.Errorf("%w: turn produced no reply", contractx.ErrValidation)
	}
	return GraphOutput{
		Replies:      in.Replies,
		Session:      in.Session,
		Planned:      in.Planned,
		PlannedSlots: in.PlannedSlots,
	}, nil
}
