package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"aura/internal/llmconfig"
	"aura/internal/logging"
	"aura/internal/services/gateway"
)

// Remote is the live analysis backend.
type Remote interface {
	Analyze(ctx context.Context, req gateway.Request) (json.RawMessage, error)
}

// Invocation is one pipeline call.
type Invocation struct {
	SystemPrompt string
	UserPrompt   string
	Level        Level
	HasImage     bool
	UseRealLLM   bool
	ImageData    string
	ImageType    string
	// Credentials select the gateway provider and model.
	Credentials llmconfig.Credentials
}

// Pipeline routes invocations to the gateway or the mock analyzer.
type Pipeline struct {
	remote Remote
	mock   *MockAnalyzer
	logger *slog.Logger
}

// NewPipeline builds a pipeline. A nil remote makes every real-LLM request
// fall back to the mock.
func NewPipeline(remote Remote, mock *MockAnalyzer, logger *slog.Logger) *Pipeline {
	if mock == nil {
		mock = NewMockAnalyzer(DefaultMockDelay)
	}
	return &Pipeline{
		remote: remote,
		mock:   mock,
		logger: logging.NewComponentLogger(logger, "analysis-pipeline"),
	}
}

// Invoke returns an analysis for inv. Gateway failures are absorbed; an error
// means the offline path itself failed.
func (p *Pipeline) Invoke(ctx context.Context, inv Invocation) (Result, error) {
	logger := logging.WithContext(ctx, p.logger).With(
		logging.String(logging.FieldAnalysisLevel, string(inv.Level)),
		logging.Bool("use_real_llm", inv.UseRealLLM),
	)
	if !inv.UseRealLLM {
		logger.Debug("running mock analysis")
		return p.runMock(ctx, inv)
	}

	strategy := FallbackStrategy{
		Primary:   p.runGateway,
		Secondary: p.runMock,
		OnFallback: func(ctx context.Context, err error) {
			logging.WarnWithContext(logger, "gateway analysis failed; using mock result",
				"analysis_fallback",
				"check that the LLM gateway is reachable at the configured gateway.url",
				logging.Error(err),
				logging.String(logging.FieldProvider, inv.Credentials.Provider),
				logging.String(logging.FieldModel, inv.Credentials.Model),
			)
		},
	}
	start := time.Now()
	result, err := strategy.Execute(ctx, inv)
	if err != nil {
		return Result{}, err
	}
	logger.Info("design analysis completed",
		logging.String("analysis_mode", modeLabel(result)),
		logging.Duration("duration", time.Since(start)),
	)
	return result, nil
}

func (p *Pipeline) runGateway(ctx context.Context, inv Invocation) (Result, error) {
	if p.remote == nil {
		return Result{}, errors.New("llm gateway not configured")
	}
	data, err := p.remote.Analyze(ctx, gateway.Request{
		SystemPrompt:  inv.SystemPrompt,
		UserPrompt:    inv.UserPrompt,
		AnalysisLevel: string(inv.Level),
		HasImage:      inv.HasImage,
		ImageData:     inv.ImageData,
		ImageType:     inv.ImageType,
		Provider:      inv.Credentials.Provider,
		Model:         inv.Credentials.Model,
		APIKey:        inv.Credentials.APIKey,
	})
	if err != nil {
		return Result{}, err
	}
	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		return Result{}, fmt.Errorf("decode gateway analysis: %w", err)
	}
	if result.AnalysisDepth == "" {
		result.AnalysisDepth = string(inv.Level)
	}
	return result, nil
}

func (p *Pipeline) runMock(ctx context.Context, inv Invocation) (Result, error) {
	return p.mock.Analyze(ctx, inv.Level, inv.HasImage), nil
}

func modeLabel(result Result) string {
	if result.AnalysisMode != "" {
		return result.AnalysisMode
	}
	return ModeRealLLM
}
