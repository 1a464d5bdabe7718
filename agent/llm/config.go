package llm

import (
	"fmt"
	"strings"
	"time"

	openaisdk "github.com/openai/openai-go"
	contractx "github.com/tanpawarit/chative-coordinator/agent/contract"
	openrouterx "github.com/tanpawarit/chative-coordinator/pkg/openrouter"
)

// Config drives the optional model collaborators. An empty APIKey disables
// both the model planner and remote embeddings.
type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"600"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.5"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`

	PlannerModel       string  `envconfig:"PLANNER_MODEL" split_words:"true"`
	PlannerTemperature float32 `envconfig:"PLANNER_TEMPERATURE" split_words:"true" default:"0.1"`
	EmbeddingModel     string  `envconfig:"EMBEDDING_MODEL" split_words:"true" default:"text-embedding-3-small"`
}

func (c Config) Enabled() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

func (c Config) Validate() error {
	if !c.Enabled() {
		return nil
	}
	if strings.TrimSpace(c.Model) == "" && strings.TrimSpace(c.PlannerModel) == "" {
		return fmt.Errorf("%w: a model is required when an api key is set", contractx.ErrValidation)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout must be >= 0", contractx.ErrValidation)
	}
	return nil
}

// OpenRouterFor returns the chat model settings for the given agent id.
func (c Config) OpenRouterFor(agentID string) openrouterx.Config {
	modelName := strings.TrimSpace(c.Model)
	temp := c.Temperature
	jsonMode := false

	switch agentID {
	case contractx.AgentCoordinator:
		if v := strings.TrimSpace(c.PlannerModel); v != "" {
			modelName = v
		}
		if c.PlannerTemperature >= 0 {
			temp = c.PlannerTemperature
		}
		jsonMode = true
	}

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
		JSONMode:           jsonMode,
	}
}

// OpenAIClient returns an SDK client for the embeddings endpoint, or nil
// when no api key is configured.
func (c Config) OpenAIClient() *openaisdk.Client {
	return openrouterx.NewClient(c.OpenRouterFor(contractx.AgentMemory))
}
