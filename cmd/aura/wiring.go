package main

import (
	"log/slog"
	"time"

	"aura/internal/analysis"
	"aura/internal/config"
	"aura/internal/llmconfig"
	"aura/internal/services/gateway"
)

func buildDesignService(cfg *config.Config, resolver *llmconfig.Resolver, logger *slog.Logger) *analysis.Service {
	gw := cfg.GetGateway()
	var remote analysis.Remote
	if gw.URL != "" {
		remote = gateway.NewClient(gateway.Config{
			URL:            gw.URL,
			TimeoutSeconds: gw.TimeoutSeconds,
		}, gateway.WithRetryMaxAttempts(gw.RetryAttempts))
	}
	mock := analysis.NewMockAnalyzer(time.Duration(cfg.Mock.DelayMS) * time.Millisecond)
	pipeline := analysis.NewPipeline(remote, mock, logger)
	return analysis.NewService(resolver, pipeline, logger)
}
