package llm

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/Chative-Travel-Planner/agent/contract"
	geminix "github.com/tanpawarit/Chative-Travel-Planner/pkg/gemini"
	openrouterx "github.com/tanpawarit/Chative-Travel-Planner/pkg/openrouter"
)

type Provider string

const (
	ProviderOpenRouter Provider = "openrouter"
	ProviderOpenAI     Provider = "openai"
	ProviderGemini     Provider = "gemini"
)

type Config struct {
	Provider           Provider      `envconfig:"PROVIDER" split_words:"true" default:"openrouter"`
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.5"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"60s"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`

	ConversationModel       string  `envconfig:"CONVERSATION_MODEL" split_words:"true"`
	ExtractorModel          string  `envconfig:"EXTRACTOR_MODEL" split_words:"true"`
	ResearcherModel         string  `envconfig:"RESEARCHER_MODEL" split_words:"true"`
	PlannerModel            string  `envconfig:"PLANNER_MODEL" split_words:"true"`
	FinderModel             string  `envconfig:"FINDER_MODEL" split_words:"true"`
	ConversationTemperature float32 `envconfig:"CONVERSATION_TEMPERATURE" split_words:"true" default:"-1"`
	ExtractorTemperature    float32 `envconfig:"EXTRACTOR_TEMPERATURE" split_words:"true" default:"0"`
	ResearcherTemperature   float32 `envconfig:"RESEARCHER_TEMPERATURE" split_words:"true" default:"-1"`
	PlannerTemperature      float32 `envconfig:"PLANNER_TEMPERATURE" split_words:"true" default:"-1"`
	FinderTemperature       float32 `envconfig:"FINDER_TEMPERATURE" split_words:"true" default:"-1"`
}

func (c Config) Validate() error {
	switch c.Provider {
	case ProviderOpenRouter, ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("%w: unknown llm provider %q", contractx.ErrValidation, c.Provider)
	}
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: %s api key is required", contractx.ErrValidation, c.Provider)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: default model is required", contractx.ErrValidation)
	}
	return nil
}

// ModelFor returns the model name and temperature for a role. A negative role
// temperature falls back to the default.
func (c Config) ModelFor(agentType contractx.AgentType) (string, float32) {
	modelName := strings.TrimSpace(c.Model)
	temp := c.Temperature

	var override string
	roleTemp := float32(-1)
	switch agentType {
	case contractx.AgentTypeConversation:
		override, roleTemp = c.ConversationModel, c.ConversationTemperature
	case contractx.AgentTypeExtractor:
		override, roleTemp = c.ExtractorModel, c.ExtractorTemperature
	case contractx.AgentTypeResearcher:
		override, roleTemp = c.ResearcherModel, c.ResearcherTemperature
	case contractx.AgentTypePlanner:
		override, roleTemp = c.PlannerModel, c.PlannerTemperature
	case contractx.AgentTypeFinder:
		override, roleTemp = c.FinderModel, c.FinderTemperature
	}
	if v := strings.TrimSpace(override); v != "" {
		modelName = v
	}
	if roleTemp >= 0 {
		temp = roleTemp
	}
	return modelName, temp
}

func (c Config) OpenRouterFor(agentType contractx.AgentType) openrouterx.Config {
	modelName, temp := c.ModelFor(agentType)
	maxCompletionToken := c.MaxCompletionToken
	return openrouterx.Config{
		BaseURL:            strings.TrimSpace(c.BaseURL),
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              modelName,
		MaxCompletionToken: &maxCompletionToken,
		Temperature:        temp,
		Timeout:            c.Timeout,
		SiteURL:            strings.TrimSpace(c.SiteURL),
		SiteName:           strings.TrimSpace(c.SiteName),
	}
}

func (c Config) GeminiFor(agentType contractx.AgentType) geminix.Config {
	modelName, temp := c.ModelFor(agentType)
	return geminix.Config{
		APIKey:      strings.TrimSpace(c.APIKey),
		Model:       modelName,
		Temperature: temp,
	}
}
