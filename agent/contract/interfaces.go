package contract

import (
	"context"

	statex "github.com/tanpawarit/Chative-Travel-Planner/agent/state"
)

// Completer is the prompt-in, text-out completion capability.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Registry hands out one completer per agent role.
type Registry interface {
	Conversation() Completer
	Extractor() Completer
	Researcher() Completer
	Planner() Completer
	Finder() Completer
}

// Extractor pulls trip fields out of free text. Errors are reserved for capability failures;
// anything it cannot read stays absent in the returned updates.
type Extractor interface {
	Extract(ctx context.Context, req ExtractRequest) (statex.Updates, error)
}

type Assembler interface {
	Assemble(ctx context.Context, slots statex.SlotState) (string, error)
}

type FlightSearcher interface {
	SearchFlights(ctx context.Context, q FlightQuery) (FlightResults, error)
}

type ToolGateway interface {
	Execute(ctx context.Context, agentType AgentType, reqs []ToolRequest) ([]ToolResult, error)
}

// PlanSink receives every generated plan. Failures never fail the turn.
type PlanSink interface {
	Publish(ctx context.Context, rec PlanRecord) error
}
