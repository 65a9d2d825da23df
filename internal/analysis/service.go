package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"aura/internal/llmconfig"
	"aura/internal/logging"
	"aura/internal/prompt"
	"aura/internal/services"
)

// CredentialResolver supplies the provider, model, and key for the design track.
type CredentialResolver interface {
	ResolveReverseEngineering(kind llmconfig.Kind) llmconfig.Credentials
}

// Service reverse engineers designs into work items.
type Service struct {
	resolver CredentialResolver
	pipeline *Pipeline
	logger   *slog.Logger
}

// NewService wires a service to its resolver and pipeline.
func NewService(resolver CredentialResolver, pipeline *Pipeline, logger *slog.Logger) *Service {
	return &Service{
		resolver: resolver,
		pipeline: pipeline,
		logger:   logging.NewComponentLogger(logger, "design-service"),
	}
}

// ReverseEngineerDesign validates req, builds prompts, and runs the pipeline.
// Only *RequestShapeError and unexpected failures are returned; gateway
// failures come back as a degraded Result.
func (s *Service) ReverseEngineerDesign(ctx context.Context, req Request) (result Result, err error) {
	if err := req.Validate(); err != nil {
		return Result{}, err
	}
	ctx = services.WithModule(ctx, string(llmconfig.ModuleDesign))
	ctx = services.WithOperation(ctx, "reverse_engineer_design")
	logger := logging.WithContext(ctx, s.logger)

	defer func() {
		if recovered := recover(); recovered != nil {
			result = Result{}
			err = services.Wrap(services.ErrTransient, "analysis", "reverse engineer design", "unexpected failure", fmt.Errorf("%v", recovered))
			logger.Error("design analysis panicked", logging.Error(err))
		}
	}()

	inputs := prompt.Inputs{
		InputType:            req.InputType,
		FigmaURL:             req.FigmaURL,
		DesignData:           req.DesignData,
		ImageData:            req.ImageData,
		ImageType:            req.ImageType,
		Files:                req.Files,
		Level:                string(req.Level),
		ExtractUserFlows:     req.ExtractUserFlows,
		IncludeAccessibility: req.IncludeAccessibility,
	}
	systemPrompt := prompt.SystemPrompt(string(req.Level))
	userPrompt := prompt.UserPrompt(inputs)

	var creds llmconfig.Credentials
	if s.resolver != nil {
		creds = s.resolver.ResolveReverseEngineering(llmconfig.KindDesign)
	}
	logger.Info("design reverse engineering requested",
		logging.String(logging.FieldAnalysisLevel, string(req.Level)),
		logging.String("input_type", string(req.InputType)),
		logging.Bool("use_real_llm", req.UseRealLLM),
		logging.Int("system_prompt_len", len(systemPrompt)),
		logging.Int("user_prompt_len", len(userPrompt)),
	)

	result, err = s.pipeline.Invoke(ctx, Invocation{
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
		Level:        req.Level,
		HasImage:     req.ImageData != "",
		UseRealLLM:   req.UseRealLLM,
		ImageData:    req.ImageData,
		ImageType:    req.ImageType,
		Credentials:  creds,
	})
	if err != nil {
		return Result{}, services.Wrap(services.ErrTransient, "analysis", "reverse engineer design", "", err)
	}
	return result, nil
}

// AsRequestShapeError reports whether err carries field-level request errors.
func AsRequestShapeError(err error) (*RequestShapeError, bool) {
	var shape *RequestShapeError
	if errors.As(err, &shape) {
		return shape, true
	}
	return nil, false
}
