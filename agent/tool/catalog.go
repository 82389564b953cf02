package tool

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/samber/lo"
	contractx "github.com/tanpawarit/Chative-Travel-Planner/agent/contract"
	placesx "github.com/tanpawarit/Chative-Travel-Planner/pkg/places"
	serpapix "github.com/tanpawarit/Chative-Travel-Planner/pkg/serpapi"
)

const (
	ToolWebSearch    = "web.search"
	ToolPlacesSearch = "places.search"

	defaultLimit = 5
)

type Executor func(ctx context.Context, tool string, args map[string]any) (contractx.ToolResult, error)

type WebSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]serpapix.OrganicResult, error)
}

type PlaceSearcher interface {
	Search(ctx context.Context, query string, kind placesx.Kind, limit int) ([]placesx.Place, error)
}

type Option func(*Gateway)

func WithWebSearch(s WebSearcher) Option {
	return func(g *Gateway) {
		g.web = s
	}
}

func WithPlaceSearch(s PlaceSearcher) Option {
	return func(g *Gateway) {
		g.places = s
	}
}

// Gateway runs evidence tools on behalf of an agent role. Tools a role does not
// own, or whose backend is not configured, come back as result errors.
type Gateway struct {
	web    WebSearcher
	places PlaceSearcher
}

var _ contractx.ToolGateway = (*Gateway)(nil)

func NewGateway(opts ...Option) *Gateway {
	g := &Gateway{}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Gateway) Execute(ctx context.Context, agentType contractx.AgentType, reqs []contractx.ToolRequest) ([]contractx.ToolResult, error) {
	_, executor := g.BuildForAgent(agentType)
	results := make([]contractx.ToolResult, 0, len(reqs))
	for _, req := range reqs {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := executor(ctx, req.Tool, req.Args)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// BuildForAgent returns the tool names a role owns and an executor limited to them.
func (g *Gateway) BuildForAgent(agentType contractx.AgentType) ([]string, Executor) {
	allowed := toolsForAgent(agentType)
	return allowed, g.NewExecutor(agentType, allowed)
}

func (g *Gateway) NewExecutor(agentType contractx.AgentType, allowed []string) Executor {
	fallback := DefaultExecutor(agentType)
	return func(ctx context.Context, tool string, args map[string]any) (contractx.ToolResult, error) {
		if !lo.Contains(allowed, tool) {
			return fallback(ctx, tool, args)
		}
		if errMsg := validateArgs(toolParams[tool], args); errMsg != "" {
			return contractx.ToolResult{Tool: tool, Error: errMsg}, nil
		}
		switch {
		case tool == ToolWebSearch && g.web != nil:
			return g.executeWebSearch(ctx, tool, args), nil
		case tool == ToolPlacesSearch && g.places != nil:
			return g.executePlacesSearch(ctx, tool, args), nil
		default:
			return fallback(ctx, tool, args)
		}
	}
}

func DefaultExecutor(agentType contractx.AgentType) Executor {
	return func(ctx context.Context, tool string, _ map[string]any) (contractx.ToolResult, error) {
		return contractx.ToolResult{
			Tool:  tool,
			Error: fmt.Sprintf("tool=%s is unavailable for agent=%s", tool, agentType),
		}, nil
	}
}

func (g *Gateway) executeWebSearch(ctx context.Context, tool string, args map[string]any) contractx.ToolResult {
	query := strings.TrimSpace(args["query"].(string))
	found, err := g.web.Search(ctx, query, intArg(args, "limit", defaultLimit))
	if err != nil {
		return contractx.ToolResult{Tool: tool, Error: err.Error()}
	}
	snippets := lo.Map(found, func(r serpapix.OrganicResult, _ int) contractx.Snippet {
		return contractx.Snippet{Title: r.Title, Link: r.Link, Snippet: r.Snippet}
	})
	return contractx.ToolResult{Tool: tool, Result: snippets}
}

func (g *Gateway) executePlacesSearch(ctx context.Context, tool string, args map[string]any) contractx.ToolResult {
	query := strings.TrimSpace(args["query"].(string))
	kind := placesx.Kind(strings.TrimSpace(args["kind"].(string)))
	found, err := g.places.Search(ctx, query, kind, intArg(args, "limit", defaultLimit))
	if err != nil {
		return contractx.ToolResult{Tool: tool, Error: err.Error()}
	}
	places := lo.Map(found, func(p placesx.Place, _ int) contractx.Place {
		return contractx.Place{
			Name:        p.Name,
			Address:     p.Address,
			Rating:      p.Rating,
			RatingCount: p.UserRatingsTotal,
			PlaceID:     p.PlaceID,
		}
	})
	return contractx.ToolResult{Tool: tool, Result: places}
}

// validateArgs checks required string parameters and enums. Integer parameters are
// optional and read leniently by intArg.
func validateArgs(params map[string]*schema.ParameterInfo, args map[string]any) string {
	names := lo.Keys(params)
	slices.Sort(names)
	for _, name := range names {
		p := params[name]
		raw, ok := args[name]
		if !ok || raw == nil {
			if p.Required {
				return name + " is required"
			}
			continue
		}
		if p.Type != schema.String {
			continue
		}
		v, ok := raw.(string)
		if !ok {
			return name + " must be a string"
		}
		v = strings.TrimSpace(v)
		if v == "" && p.Required {
			return name + " is required"
		}
		if len(p.Enum) > 0 && !lo.Contains(p.Enum, v) {
			return fmt.Sprintf("%s must be one of %s", name, strings.Join(p.Enum, ", "))
		}
	}
	return ""
}

func intArg(args map[string]any, key string, fallback int) int {
	switch v := args[key].(type) {
	case int:
		if v > 0 {
			return v
		}
	case float64:
		if v > 0 {
			return int(v)
		}
	}
	return fallback
}

func toolsForAgent(agentType contractx.AgentType) []string {
	switch agentType {
	case contractx.AgentTypeResearcher:
		return []string{ToolWebSearch}
	case contractx.AgentTypeFinder:
		return []string{ToolPlacesSearch}
	default:
		return nil
	}
}

var toolParams = map[string]map[string]*schema.ParameterInfo{
	ToolWebSearch: {
		"query": {Type: schema.String, Required: true},
		"limit": {Type: schema.Integer},
	},
	ToolPlacesSearch: {
		"query": {Type: schema.String, Required: true},
		"kind": {
			Type:     schema.String,
			Enum:     []string{string(placesx.KindLodging), string(placesx.KindRestaurant)},
			Required: true,
		},
		"limit": {Type: schema.Integer},
	},
}
