package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"aura/internal/config"
	"aura/internal/llmconfig"
	"aura/internal/logging"
	"aura/internal/workitems"
)

type commandContext struct {
	configFlag *string
	jsonFlag   *bool

	configOnce sync.Once
	config     *config.Config
	configPath string
	configSeen bool
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger

	store *workitems.Store
}

func newCommandContext(configFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		jsonFlag:   jsonFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configSeen = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// cliLogger writes to the log file only so command output stays clean.
func (c *commandContext) cliLogger() *slog.Logger {
	c.loggerOnce.Do(func() {
		c.logger = logging.NewNop()
		cfg, err := c.ensureConfig()
		if err != nil || cfg == nil || cfg.Paths.LogDir == "" {
			return
		}
		logger, err := logging.New(logging.Options{
			Level:       cfg.Logging.Level,
			Format:      "json",
			OutputPaths: []string{filepath.Join(cfg.Paths.LogDir, "cli.log")},
		})
		if err == nil {
			c.logger = logger
		}
	})
	return c.logger
}

// openResolver builds the resolver from config, restores the persisted
// snapshot, and fills an empty API key from the environment.
func (c *commandContext) openResolver(ctx context.Context, logger *slog.Logger) (*llmconfig.Resolver, *llmconfig.SnapshotStore, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	return buildResolver(ctx, cfg, logger)
}

func buildResolver(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*llmconfig.Resolver, *llmconfig.SnapshotStore, error) {
	catalog := llmconfig.DefaultCatalog()
	if cfg.Paths.CatalogFile != "" {
		loaded, err := llmconfig.LoadCatalog(cfg.Paths.CatalogFile)
		if err != nil {
			return nil, nil, fmt.Errorf("load provider catalog: %w", err)
		}
		catalog = loaded
	}

	resolver := llmconfig.NewResolver(
		llmconfig.WithCatalog(catalog),
		llmconfig.WithLogger(logger),
		llmconfig.WithStrictModels(cfg.LLM.StrictModels),
		llmconfig.WithDefaults(llmconfig.Settings{
			Provider:    cfg.LLM.Provider,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			MaxTokens:   cfg.LLM.MaxTokens,
		}),
		llmconfig.WithReverseEngineeringDefaults(llmconfig.ReverseEngineering{
			Design: llmconfig.Selection{Provider: cfg.ReverseEngineering.DesignProvider, Model: cfg.ReverseEngineering.DesignModel},
			Code:   llmconfig.Selection{Provider: cfg.ReverseEngineering.CodeProvider, Model: cfg.ReverseEngineering.CodeModel},
		}),
	)

	snapshots := llmconfig.NewSnapshotStore(cfg.Paths.SettingsFile, logger)
	if _, err := snapshots.Load(ctx, resolver); err != nil {
		return nil, nil, err
	}
	resolver.InitializeFromEnvironment()
	return resolver, snapshots, nil
}

// openStore opens the work-item database once per invocation.
func (c *commandContext) openStore(ctx context.Context) (*workitems.Store, error) {
	if c.store != nil {
		return c.store, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := workitems.Open(ctx, cfg.Paths.DatabaseFile)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	c.store = store
	return store, nil
}

func (c *commandContext) close() {
	if c.store != nil {
		_ = c.store.Close()
		c.store = nil
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
