package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/puzpuzpuz/xsync/v3"
	contractx "github.com/tanpawarit/Chative-Slot-Filling-Dialogue/agent/contract"
	promptx "github.com/tanpawarit/Chative-Slot-Filling-Dialogue/agent/prompt"
	"github.com/tanpawarit/Chative-Slot-Filling-Dialogue/agent/slot"
	statex "github.com/tanpawarit/Chative-Slot-Filling-Dialogue/agent/state"
	openrouterx "github.com/tanpawarit/Chative-Slot-Filling-Dialogue/pkg/openrouter"
)

// call is one backend request: the system prompt (rendered, and as template
// variables for backends that render it themselves), the trimmed transcript,
// and the JSON payload for the latest turn.
type call struct {
	System  string
	Vars    map[string]any
	History []statex.Turn
	Input   string
}

type backend interface {
	generate(ctx context.Context, c call) (pipelineOutput, error)
}

// Service is the remote extraction strategy. Transport failures and timeouts
// are reported as Unavailable, unusable replies as Invalid.
type Service struct {
	name          string
	backend       backend
	prompts       promptx.PromptSet
	confirmations []string
	timeout       time.Duration
	historyLimit  int
	systemPrompts *xsync.MapOf[string, string]
}

var _ contractx.Strategy = (*Service)(nil)

func New(ctx context.Context, cfg Config, confirmations []string) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	modelCfg := cfg.OpenRouter()

	var (
		b   backend
		err error
	)
	switch cfg.backend() {
	case BackendOpenAI:
		client := openrouterx.NewClient(modelCfg)
		if client == nil {
			return nil, fmt.Errorf("%w: openai client needs an api key", contractx.ErrValidation)
		}
		b = newOpenAIBackend(client, modelCfg.Model, cfg.Temperature, cfg.MaxCompletionToken)
	case BackendTool:
		chatModel, mErr := modelCfg.New(ctx)
		if mErr != nil {
			return nil, fmt.Errorf("%w: create chat model: %v", contractx.ErrModelInvoke, mErr)
		}
		b, err = newToolBackend(chatModel)
	default:
		chatModel, mErr := modelCfg.New(ctx)
		if mErr != nil {
			return nil, fmt.Errorf("%w: create chat model: %v", contractx.ErrModelInvoke, mErr)
		}
		system, tErr := promptx.LoadPromptSet().ExtractionTemplate()
		if tErr != nil {
			return nil, tErr
		}
		b, err = newGraphBackend(ctx, chatModel, system)
	}
	if err != nil {
		return nil, err
	}

	return newService("remote:"+cfg.backend(), b, cfg, confirmations), nil
}

func newService(name string, b backend, cfg Config, confirmations []string) *Service {
	return &Service{
		name:          name,
		backend:       b,
		prompts:       promptx.LoadPromptSet(),
		confirmations: confirmations,
		timeout:       cfg.Timeout,
		historyLimit:  cfg.HistoryLimit,
		systemPrompts: xsync.NewMapOf[string, string](),
	}
}

func (s *Service) Name() string { return s.name }

func (s *Service) Extract(ctx context.Context, req contractx.ExtractionRequest) contractx.Outcome {
	if req.Schema == nil {
		return contractx.Invalid(s.name, fmt.Errorf("%w: schema is required", contractx.ErrValidation))
	}

	system, err := s.systemPrompt(req.Schema)
	if err != nil {
		return contractx.Invalid(s.name, err)
	}
	input, err := buildInput(req)
	if err != nil {
		return contractx.Invalid(s.name, err)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	out, err := s.backend.generate(ctx, call{
		System:  system,
		Vars:    promptx.ExtractionVars(req.Schema, s.confirmations),
		History: statex.LastTurns(req.Transcript, s.historyLimit),
		Input:   input,
	})
	if err != nil {
		if errors.Is(err, contractx.ErrSchemaViolation) {
			return contractx.Invalid(s.name, err)
		}
		return contractx.Unavailable(s.name, fmt.Errorf("%w: %w", contractx.ErrServiceUnavailable, err))
	}
	return toOutcome(s.name, req.Schema, out)
}

func (s *Service) systemPrompt(schema *slot.Schema) (string, error) {
	if p, ok := s.systemPrompts.Load(schema.Domain()); ok {
		return p, nil
	}
	p, err := s.prompts.RenderExtraction(schema, s.confirmations)
	if err != nil {
		return "", err
	}
	s.systemPrompts.Store(schema.Domain(), p)
	return p, nil
}

func buildInput(req contractx.ExtractionRequest) (string, error) {
	payload := map[string]any{
		"current": req.Schema.Merge(nil, req.Current),
		"message": req.Message,
	}
	input, err := sonic.MarshalString(payload)
	if err != nil {
		return "", fmt.Errorf("%w: marshal extraction payload: %v", contractx.ErrValidation, err)
	}
	return input, nil
}
