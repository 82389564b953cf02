package specialist

import (
	"context"
	"errors"
	"fmt"

	contractx "github.com/tanpawarit/Chative-Travel-Planner/agent/contract"
	llmx "github.com/tanpawarit/Chative-Travel-Planner/agent/llm"
	promptx "github.com/tanpawarit/Chative-Travel-Planner/agent/prompt"
	geminix "github.com/tanpawarit/Chative-Travel-Planner/pkg/gemini"
	openrouterx "github.com/tanpawarit/Chative-Travel-Planner/pkg/openrouter"
)

type registryImpl struct {
	completers map[contractx.AgentType]contractx.Completer
	closers    []func() error
}

func (r *registryImpl) Conversation() contractx.Completer {
	return r.completers[contractx.AgentTypeConversation]
}

func (r *registryImpl) Extractor() contractx.Completer {
	return r.completers[contractx.AgentTypeExtractor]
}

func (r *registryImpl) Researcher() contractx.Completer {
	return r.completers[contractx.AgentTypeResearcher]
}

func (r *registryImpl) Planner() contractx.Completer {
	return r.completers[contractx.AgentTypePlanner]
}

func (r *registryImpl) Finder() contractx.Completer {
	return r.completers[contractx.AgentTypeFinder]
}

// Close releases provider clients that hold connections.
func (r *registryImpl) Close() error {
	var errs []error
	for _, c := range r.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

func NewRegistry(ctx context.Context, cfg llmx.Config) (contractx.Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	prompts := promptx.LoadPromptSet()
	personas := map[contractx.AgentType]string{
		contractx.AgentTypeConversation: prompts.Conversation,
		contractx.AgentTypeExtractor:    prompts.Extractor,
		contractx.AgentTypeResearcher:   prompts.Researcher,
		contractx.AgentTypePlanner:      prompts.Planner,
		contractx.AgentTypeFinder:       prompts.Finder,
	}

	reg := &registryImpl{completers: make(map[contractx.AgentType]contractx.Completer, len(personas))}
	for agentType, persona := range personas {
		c, err := newCompleter(ctx, cfg, agentType, persona, reg)
		if err != nil {
			_ = reg.Close()
			return nil, err
		}
		reg.completers[agentType] = c
	}
	return reg, nil
}

func newCompleter(
	ctx context.Context,
	cfg llmx.Config,
	agentType contractx.AgentType,
	persona string,
	reg *registryImpl,
) (contractx.Completer, error) {
	switch cfg.Provider {
	case llmx.ProviderGemini:
		client, err := geminix.NewClient(ctx, cfg.GeminiFor(agentType), persona)
		if err != nil {
			return nil, fmt.Errorf("%w: create %s model: %v", contractx.ErrModelInvoke, agentType, err)
		}
		reg.closers = append(reg.closers, client.Close)
		return client, nil
	case llmx.ProviderOpenAI:
		c, err := openrouterx.NewCompleter(cfg.OpenRouterFor(agentType), persona)
		if err != nil {
			return nil, fmt.Errorf("%w: create %s model: %v", contractx.ErrModelInvoke, agentType, err)
		}
		return c, nil
	default:
		modelCfg := cfg.OpenRouterFor(agentType)
		chatModel, err := modelCfg.New(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: create %s model: %v", contractx.ErrModelInvoke, agentType, err)
		}
		return newGraphCompleter(ctx, agentType, chatModel, persona)
	}
}
