package orchestratornode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Travel-Planner/agent/contract"
	metricsx "github.com/tanpawarit/Chative-Travel-Planner/pkg/metrics"
)

func ExtractFields(
	ctx context.Context,
	in *GraphState,
	extractor contractx.Extractor,
	strategy string,
	metrics *metricsx.Metrics,
) (*GraphState, error) {
	if in == nil || in.Session == nil || in.Policy == nil {
		return nil, fmt.Errorf("%w: graph state is incomplete", contractx.ErrValidation)
	}

	fields, applyDefaults := in.Policy.Request(in.Session.Slots)
	if len(fields) == 0 {
		return in, nil
	}

	updates, err := extractor.Extract(ctx, contractx.ExtractRequest{
		Fields:        fields,
		Text:          in.Text,
		Log:           in.Session.Log,
		ApplyDefaults: applyDefaults,
		Now:           in.Now,
		KnownReturn:   in.Session.Slots.ReturnDate,
	})
	if err != nil {
		metrics.ExternalError("extractor")
		return nil, fmt.Errorf("extract fields: %w", err)
	}
	if updates.IsEmpty() {
		metrics.ExtractionMiss(strategy)
	}

	log.Debug().
		Str("session_id", in.SessionID).
		Str("stage", string(in.Session.Slots.Stage)).
		Interface("updates", updates).
		Msg("fields extracted")

	in.Updates = updates
	return in, nil
}
