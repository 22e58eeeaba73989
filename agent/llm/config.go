package llm

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/Chative-Slot-Filling-Dialogue/agent/contract"
	openrouterx "github.com/tanpawarit/Chative-Slot-Filling-Dialogue/pkg/openrouter"
)

const (
	BackendGraph  = "graph"
	BackendTool   = "tool"
	BackendOpenAI = "openai"
)

type Config struct {
	Enabled            bool          `envconfig:"ENABLED" default:"true"`
	Backend            string        `envconfig:"BACKEND" default:"graph"`
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://api.openai.com/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true"`
	Model              string        `envconfig:"MODEL" default:"gpt-4o-mini"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"800"`
	Temperature        float32       `envconfig:"TEMPERATURE" default:"0"`
	Timeout            time.Duration `envconfig:"TIMEOUT" default:"20s"`
	HistoryLimit       int           `envconfig:"HISTORY_LIMIT" split_words:"true" default:"20"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`
}

// Active reports whether the remote service should be wired at all. Without
// an API key the engine runs on pattern extraction alone.
func (c Config) Active() bool {
	return c.Enabled && strings.TrimSpace(c.APIKey) != ""
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: llm api key is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: llm model is required", contractx.ErrValidation)
	}
	switch c.backend() {
	case BackendGraph, BackendTool, BackendOpenAI:
	default:
		return fmt.Errorf("%w: unknown llm backend=%q", contractx.ErrValidation, c.Backend)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: llm timeout must be > 0", contractx.ErrValidation)
	}
	return nil
}

func (c Config) backend() string {
	b := strings.ToLower(strings.TrimSpace(c.Backend))
	if b == "" {
		return BackendGraph
	}
	return b
}

func (c Config) OpenRouter() openrouterx.Config {
	maxCompletionToken := c.MaxCompletionToken
	return openrouterx.Config{
		BaseURL:            strings.TrimSpace(c.BaseURL),
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              strings.TrimSpace(c.Model),
		MaxCompletionToken: &maxCompletionToken,
		Temperature:        c.Temperature,
		Timeout:            c.Timeout,
		SiteURL:            strings.TrimSpace(c.SiteURL),
		SiteName:           strings.TrimSpace(c.SiteName),
		ExcludeReasoning:   true,
	}
}
