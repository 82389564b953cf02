package orchestratornode

import (
	"errors"
	"strings"
	"time"

	dialoguex "github.com/tanpawarit/Chative-Travel-Planner/agent/dialogue"
	statex "github.com/tanpawarit/Chative-Travel-Planner/agent/state"
)

var (
	ErrInvalidMessage = errors.New("message is empty")
	ErrInvalidSession = errors.New("session id is empty")
)

type GraphInput struct {
	SessionID string
	Text      string
}

type GraphOutput struct {
	Replies []string
	Session *statex.Session
	Planned bool
	// PlannedSlots are the slots the report was built from, before any post-plan reset.
	PlannedSlots statex.SlotState
}

// GraphState carries one turn through the graph. Session is a working copy;
// the stored session changes only when save_session runs.
type GraphState struct {
	SessionID string
	Text      string
	Now       time.Time

	Session  *statex.Session
	Policy   dialoguex.Policy
	Reset    bool
	Updates  statex.Updates
	Decision dialoguex.Decision

	Replies      []string
	Planned      bool
	PlannedSlots statex.SlotState
}

func ValidateRequest(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		return nil, ErrInvalidSession
	}

	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, ErrInvalidMessage
	}

	return &GraphState{
		SessionID: sessionID,
		Text:      text,
		Now:       nowFn().UTC(),
	}, nil
}
