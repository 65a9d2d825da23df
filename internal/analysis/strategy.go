package analysis

import (
	"context"
	"errors"
)

// Stage produces a result for one invocation.
type Stage func(ctx context.Context, inv Invocation) (Result, error)

// FallbackStrategy runs Primary and, if it fails, runs Secondary and tags the
// result with fallback provenance. The primary error is never returned.
type FallbackStrategy struct {
	Primary   Stage
	Secondary Stage
	// OnFallback is called with the primary error before Secondary runs.
	OnFallback func(ctx context.Context, err error)
}

// Execute runs the strategy. An error is returned only when Secondary fails.
func (s FallbackStrategy) Execute(ctx context.Context, inv Invocation) (Result, error) {
	if s.Secondary == nil {
		return Result{}, errors.New("fallback strategy: secondary stage required")
	}
	primaryErr := errors.New("primary stage not configured")
	if s.Primary != nil {
		result, err := s.Primary(ctx, inv)
		if err == nil {
			return result, nil
		}
		primaryErr = err
	}
	if s.OnFallback != nil {
		s.OnFallback(ctx, primaryErr)
	}

	result, err := s.Secondary(ctx, inv)
	if err != nil {
		return Result{}, err
	}
	result.AnalysisMode = ModeMockFallback
	result.RequestedMode = ModeRealLLM
	if !inv.UseRealLLM {
		result.RequestedMode = ModeMock
	}
	result.FallbackReason = primaryErr.Error()
	return result, nil
}
