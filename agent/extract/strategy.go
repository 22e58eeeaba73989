package extract

import (
	"context"

	"github.com/puzpuzpuz/xsync/v3"
	contractx "github.com/tanpawarit/Chative-Slot-Filling-Dialogue/agent/contract"
)

const StrategyName = "pattern"

// Strategy is the always-available extraction strategy. It produces values
// only; the decision is left to the local policy.
type Strategy struct {
	extractors *xsync.MapOf[string, *Extractor]
}

var _ contractx.Strategy = (*Strategy)(nil)

func NewStrategy() *Strategy {
	return &Strategy{extractors: xsync.NewMapOf[string, *Extractor]()}
}

func (s *Strategy) Name() string { return StrategyName }

func (s *Strategy) Extract(_ context.Context, req contractx.ExtractionRequest) contractx.Outcome {
	if req.Schema == nil {
		return contractx.Invalid(StrategyName, contractx.ErrValidation)
	}
	ex, _ := s.extractors.LoadOrCompute(req.Schema.Domain(), func() *Extractor {
		return New(req.Schema)
	})
	return contractx.Outcome{
		Status: contractx.OutcomeOK,
		Source: StrategyName,
		Values: ex.ExtractAll(req.Message),
	}
}
