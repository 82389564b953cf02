package orchestratornode

import (
	"fmt"

	contractx "github.com/tanpawarit/Chative-Travel-Planner/agent/contract"
	dialoguex "github.com/tanpawarit/Chative-Travel-Planner/agent/dialogue"
)

func ApplyReset(in *GraphState) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}
	in.Session.Slots.Reset()
	in.Replies = append(in.Replies, dialoguex.ResetConfirmation)
	return in, nil
}
