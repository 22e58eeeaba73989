package openrouter

import (
	"context"
	"fmt"
	"strings"
	"time"

	openaimodel "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type LLMBuilder interface {
	New(ctx context.Context) (model.ToolCallingChatModel, error)
}

var _ LLMBuilder = (*Config)(nil)

// Config targets any OpenAI-compatible endpoint: OpenAI itself, OpenRouter,
// or a local gateway.
type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" required:"true"`
	MaxCompletionToken *int          `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.5"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`
	// ExcludeReasoning disables reasoning tokens on OpenRouter endpoints.
	ExcludeReasoning bool `envconfig:"EXCLUDE_REASONING" split_words:"true" default:"true"`
}

func (c Config) endpoint() string { return strings.TrimRight(strings.TrimSpace(c.BaseURL), "/") }
func (c Config) apiKey() string   { return strings.TrimSpace(c.APIKey) }

func (c Config) openRouter() bool {
	return strings.Contains(strings.ToLower(c.BaseURL), "openrouter.ai")
}

// headers returns the OpenRouter attribution headers that are configured.
func (c Config) headers() map[string]string {
	out := map[string]string{}
	if c.SiteURL != "" {
		out["HTTP-Referer"] = c.SiteURL
	}
	if c.SiteName != "" {
		out["X-Title"] = c.SiteName
	}
	return out
}

func (c *Config) New(ctx context.Context) (model.ToolCallingChatModel, error) {
	temperature := c.Temperature
	conf := &openaimodel.ChatModelConfig{
		BaseURL:     c.endpoint(),
		APIKey:      c.apiKey(),
		Model:       strings.TrimSpace(c.Model),
		MaxTokens:   c.MaxCompletionToken,
		Temperature: &temperature,
		Timeout:     c.Timeout,
	}
	if c.ExcludeReasoning && c.openRouter() {
		conf.ExtraFields = map[string]any{
			"reasoning": map[string]any{"exclude": true, "effort": "none"},
		}
	}

	m, err := openaimodel.NewChatModel(ctx, conf)
	if err != nil {
		return nil, fmt.Errorf("openrouter: create chat model: %w", err)
	}
	return m, nil
}

// NewClient creates an OpenAI SDK client for the configured endpoint. It
// returns nil when no API key is set.
func NewClient(cfg Config, opts ...option.RequestOption) *openaisdk.Client {
	key := cfg.apiKey()
	if key == "" {
		return nil
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(key)}
	if base := cfg.endpoint(); base != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(base))
	}
	if cfg.Timeout > 0 {
		reqOpts = append(reqOpts, option.WithRequestTimeout(cfg.Timeout))
	}
	for name, value := range cfg.headers() {
		reqOpts = append(reqOpts, option.WithHeader(name, value))
	}

	client := openaisdk.NewClient(append(reqOpts, opts...)...)
	return &client
}
