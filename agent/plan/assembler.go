package plan

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	contractx "github.com/tanpawarit/Chative-Travel-Planner/agent/contract"
	promptx "github.com/tanpawarit/Chative-Travel-Planner/agent/prompt"
	statex "github.com/tanpawarit/Chative-Travel-Planner/agent/state"
	toolx "github.com/tanpawarit/Chative-Travel-Planner/agent/tool"
	metricsx "github.com/tanpawarit/Chative-Travel-Planner/pkg/metrics"
)

const (
	researchEvidenceLimit = 5
	placesEvidenceLimit   = 3
)

type Option func(*Assembler)

func WithFlightSearcher(f contractx.FlightSearcher) Option {
	return func(a *Assembler) {
		a.flights = f
	}
}

func WithTools(g contractx.ToolGateway) Option {
	return func(a *Assembler) {
		a.tools = g
	}
}

func WithMetrics(m *metricsx.Metrics) Option {
	return func(a *Assembler) {
		a.metrics = m
	}
}

// WithCurrency sets the label printed after flight prices.
func WithCurrency(code string) Option {
	return func(a *Assembler) {
		a.currency = strings.TrimSpace(code)
	}
}

// Assembler turns a complete SlotState into the final travel report.
type Assembler struct {
	researcher contractx.Completer
	finder     contractx.Completer
	planner    contractx.Completer
	flights    contractx.FlightSearcher
	tools      contractx.ToolGateway
	metrics    *metricsx.Metrics
	prompts    promptx.PromptSet
	currency   string
}

var _ contractx.Assembler = (*Assembler)(nil)

func NewAssembler(researcher, finder, planner contractx.Completer, opts ...Option) (*Assembler, error) {
	if researcher == nil || finder == nil || planner == nil {
		return nil, fmt.Errorf("%w: researcher, finder and planner completers are required", contractx.ErrValidation)
	}
	a := &Assembler{
		researcher: researcher,
		finder:     finder,
		planner:    planner,
		prompts:    promptx.LoadPromptSet(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Assemble runs research, lodging, flights and itinerary in that order. Completion failures
// fail the call; flight and evidence failures degrade to empty data.
func (a *Assembler) Assemble(ctx context.Context, slots statex.SlotState) (string, error) {
	if !slots.IsComplete() {
		return "", fmt.Errorf("%w: missing %v", contractx.ErrIncompleteSlots, slots.MissingFields())
	}

	vars := map[string]any{
		"destination": slots.Destination,
		"days":        slots.TripDays(),
		"theme":       string(slots.TravelTheme),
		"budget":      string(slots.Budget),
		"activities":  strings.Join(slots.Activities, ", "),
	}

	vars["evidence"] = a.researchEvidence(ctx, slots)
	research, err := a.complete(ctx, a.researcher, promptx.Research, vars)
	if err != nil {
		return "", err
	}

	vars["hotels"], vars["restaurants"] = a.placeEvidence(ctx, slots)
	lodging, err := a.complete(ctx, a.finder, promptx.Lodging, vars)
	if err != nil {
		return "", err
	}

	flights := a.searchFlights(ctx, slots)

	vars["research"] = strings.TrimSpace(research)
	vars["lodging"] = strings.TrimSpace(lodging)
	itinerary, err := a.complete(ctx, a.planner, promptx.Itinerary, vars)
	if err != nil {
		return "", err
	}

	return renderReport(reportInput{
		slots:     slots,
		flights:   flights,
		currency:  a.currency,
		lodging:   lodging,
		itinerary: itinerary,
	}), nil
}

func (a *Assembler) complete(ctx context.Context, c contractx.Completer, name promptx.Name, vars map[string]any) (string, error) {
	prompt, err := a.prompts.Render(ctx, name, vars)
	if err != nil {
		return "", err
	}
	out, err := c.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

func (a *Assembler) searchFlights(ctx context.Context, slots statex.SlotState) []contractx.Flight {
	if a.flights == nil {
		return nil
	}
	res, err := a.flights.SearchFlights(ctx, contractx.FlightQuery{
		Source:        slots.Source,
		Destination:   slots.Destination,
		DepartureDate: *slots.DepartureDate,
		ReturnDate:    *slots.ReturnDate,
		Currency:      a.currency,
	})
	if err != nil {
		a.metrics.ExternalError("flights")
		log.Warn().Err(err).Str("destination", slots.Destination).Msg("flight search failed")
		return nil
	}
	return RankFlights(res.BestFlights, maxFlightOptions)
}

func (a *Assembler) researchEvidence(ctx context.Context, slots statex.SlotState) []contractx.Snippet {
	results := a.runTools(ctx, contractx.AgentTypeResearcher, []contractx.ToolRequest{{
		Tool: toolx.ToolWebSearch,
		Args: map[string]any{
			"query": fmt.Sprintf("top attractions in %s for %s travelers", slots.Destination, strings.ToLower(string(slots.TravelTheme))),
			"limit": researchEvidenceLimit,
		},
	}})
	return lo.FlatMap(results, func(r contractx.ToolResult, _ int) []contractx.Snippet {
		snippets, _ := r.Result.([]contractx.Snippet)
		return snippets
	})
}

func (a *Assembler) placeEvidence(ctx context.Context, slots statex.SlotState) ([]contractx.Place, []contractx.Place) {
	results := a.runTools(ctx, contractx.AgentTypeFinder, []contractx.ToolRequest{
		{
			Tool: toolx.ToolPlacesSearch,
			Args: map[string]any{"query": "hotels in " + slots.Destination, "kind": "lodging", "limit": placesEvidenceLimit},
		},
		{
			Tool: toolx.ToolPlacesSearch,
			Args: map[string]any{"query": "restaurants in " + slots.Destination, "kind": "restaurant", "limit": placesEvidenceLimit},
		},
	})
	var hotels, restaurants []contractx.Place
	for i, r := range results {
		places, _ := r.Result.([]contractx.Place)
		if i == 0 {
			hotels = places
		} else {
			restaurants = places
		}
	}
	return hotels, restaurants
}

func (a *Assembler) runTools(ctx context.Context, agentType contractx.AgentType, reqs []contractx.ToolRequest) []contractx.ToolResult {
	if a.tools == nil {
		return nil
	}
	results, err := a.tools.Execute(ctx, agentType, reqs)
	if err != nil {
		log.Warn().Err(err).Str("agent", string(agentType)).Msg("evidence tools failed")
		return nil
	}
	for _, r := range results {
		if r.Error != "" {
			a.metrics.ExternalError(r.Tool)
			log.Debug().Str("tool", r.Tool).Str("error", r.Error).Msg("evidence tool returned error")
		}
	}
	return results
}
