package orchestratornode

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/Chative-Travel-Planner/agent/contract"
	dialoguex "github.com/tanpawarit/Chative-Travel-Planner/agent/dialogue"
)

func ComposeReply(ctx context.Context, in *GraphState, responder dialoguex.Responder) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	reply, err := responder.Respond(ctx, dialoguex.ReplyContext{
		Decision: in.Decision,
		Slots:    in.Session.Slots,
		Log:      in.Session.Log,
	})
	if err != nil {
		return nil, fmt.Errorf("compose reply: %w", err)
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return nil, fmt.Errorf("%w: responder returned empty reply", contractx.ErrSchemaViolation)
	}
	in.Replies = append(in.Replies, reply)
	return in, nil
}
