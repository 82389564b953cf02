package prompt

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/Chative-Travel-Planner/agent/contract"
)

var (
	//go:embed template/conversation.txt
	conversationRaw string

	//go:embed template/extractor.txt
	extractorRaw string

	//go:embed template/researcher.txt
	researcherRaw string

	//go:embed template/planner.txt
	plannerRaw string

	//go:embed template/finder.txt
	finderRaw string

	//go:embed template/extract_all.tmpl
	extractAllRaw string

	//go:embed template/extract_field.tmpl
	extractFieldRaw string

	//go:embed template/converse.tmpl
	converseRaw string

	//go:embed template/research.tmpl
	researchRaw string

	//go:embed template/lodging.tmpl
	lodgingRaw string

	//go:embed template/itinerary.tmpl
	itineraryRaw string
)

type Name string

const (
	ExtractAll   Name = "extract_all"
	ExtractField Name = "extract_field"
	Converse     Name = "converse"
	Research     Name = "research"
	Lodging      Name = "lodging"
	Itinerary    Name = "itinerary"
)

// PromptSet holds the per-role system prompts and the task templates.
type PromptSet struct {
	Conversation string
	Extractor    string
	Researcher   string
	Planner      string
	Finder       string

	templates map[Name]string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Conversation: strings.TrimSpace(conversationRaw),
		Extractor:    strings.TrimSpace(extractorRaw),
		Researcher:   strings.TrimSpace(researcherRaw),
		Planner:      strings.TrimSpace(plannerRaw),
		Finder:       strings.TrimSpace(finderRaw),
		templates: map[Name]string{
			ExtractAll:   strings.TrimSpace(extractAllRaw),
			ExtractField: strings.TrimSpace(extractFieldRaw),
			Converse:     strings.TrimSpace(converseRaw),
			Research:     strings.TrimSpace(researchRaw),
			Lodging:      strings.TrimSpace(lodgingRaw),
			Itinerary:    strings.TrimSpace(itineraryRaw),
		},
	}
}

// Render executes the named Go template against vars and returns the prompt text.
func (p PromptSet) Render(ctx context.Context, name Name, vars map[string]any) (string, error) {
	raw, ok := p.templates[name]
	if !ok || raw == "" {
		return "", fmt.Errorf("%w: %s", contractx.ErrPromptMissing, name)
	}

	msgs, err := einoprompt.FromMessages(schema.GoTemplate, schema.UserMessage(raw)).Format(ctx, vars)
	if err != nil {
		return "", fmt.Errorf("render prompt %s: %w", name, err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("render prompt %s: empty output", name)
	}
	return strings.TrimSpace(msgs[0].Content), nil
}
