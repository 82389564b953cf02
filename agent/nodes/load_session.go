package orchestratornode

import (
	"context"
	"errors"
	"fmt"

	contractx "github.com/tanpawarit/Chative-Travel-Planner/agent/contract"
	dialoguex "github.com/tanpawarit/Chative-Travel-Planner/agent/dialogue"
	statex "github.com/tanpawarit/Chative-Travel-Planner/agent/state"
)

// PolicyResolver returns the policy registered under a session's policy name.
type PolicyResolver func(name string) (dialoguex.Policy, error)

func LoadSession(
	ctx context.Context,
	in *GraphState,
	store statex.Store,
	defaultPolicy string,
	resolve PolicyResolver,
) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	sess, err := store.Load(ctx, in.SessionID)
	switch {
	case errors.Is(err, statex.ErrStateNotFound):
		sess = statex.NewSession(in.SessionID, defaultPolicy, in.Now)
	case err != nil:
		return nil, err
	default:
		sess = sess.Clone()
	}

	policy, err := resolve(sess.Policy)
	if err != nil {
		return nil, err
	}

	sess.Log.Append(statex.RoleUser, in.Text, in.Now)
	in.Session = sess
	in.Policy = policy
	in.Reset = dialoguex.IsResetRequest(in.Text)
	return in, nil
}
