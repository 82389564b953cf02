package specialist

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/Chative-Travel-Planner/agent/contract"
)

// graphCompleter runs one role's persona prompt and chat model as an eino graph.
type graphCompleter struct {
	agentType contractx.AgentType
	runner    compose.Runnable[map[string]any, *schema.Message]
}

var _ contractx.Completer = (*graphCompleter)(nil)

func newGraphCompleter(
	ctx context.Context,
	agentType contractx.AgentType,
	chatModel einomodel.BaseChatModel,
	systemPrompt string,
) (*graphCompleter, error) {
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, fmt.Errorf("%w: system prompt for agent=%s", contractx.ErrPromptMissing, agentType)
	}
	runner, err := compileCompletionGraph(ctx, chatModel, systemPrompt, "specialist."+string(agentType))
	if err != nil {
		return nil, fmt.Errorf("%w: compile %s graph: %v", contractx.ErrModelInvoke, agentType, err)
	}
	return &graphCompleter{agentType: agentType, runner: runner}, nil
}

func (c *graphCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("%w: prompt is empty", contractx.ErrValidation)
	}

	msg, err := c.runner.Invoke(ctx, map[string]any{
		"input": prompt,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %s invoke: %v", contractx.ErrModelInvoke, c.agentType, err)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return "", fmt.Errorf("%w: %s returned empty content", contractx.ErrSchemaViolation, c.agentType)
	}
	return strings.TrimSpace(msg.Content), nil
}
