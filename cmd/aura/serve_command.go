package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"aura/internal/api"
	"aura/internal/logging"
	"aura/internal/preflight"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bindFlag string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), ctx, bindFlag)
		},
	}
	cmd.Flags().StringVar(&bindFlag, "bind", "", "Listen address (overrides paths.api_bind)")
	return cmd
}

func runServe(cmdCtx context.Context, ctx *commandContext, bind string) error {
	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logPath := logging.RunLogPath(cfg.Paths.LogDir, time.Now())
	logger, err := logging.NewFromConfig(cfg, logPath)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays,
		logging.RetentionTarget{Dir: cfg.Paths.LogDir, Pattern: "aura-*.log", Exclude: []string{logPath}},
	)

	resolver, snapshots, err := buildResolver(signalCtx, cfg, logger)
	if err != nil {
		return err
	}
	store, err := ctx.openStore(signalCtx)
	if err != nil {
		logger.Error("open database", logging.Error(err))
		return err
	}

	for _, result := range preflight.Failed(preflight.RunAll(signalCtx, cfg, resolver.Catalog(), nil)) {
		logging.WarnWithContext(logger, "preflight check failed", "preflight_failed", result.Detail,
			logging.String("check", result.Name))
	}

	go func() {
		if err := snapshots.Watch(signalCtx, resolver); err != nil {
			logging.WarnWithContext(logger, "settings watch unavailable", "settings_watch_failed",
				"settings changed from the CLI apply after a server restart",
				logging.Error(err),
			)
		}
	}()

	if bind == "" {
		bind = cfg.Paths.APIBind
	}
	server, err := api.NewServer(api.Options{
		Bind:        bind,
		Token:       cfg.Paths.APIToken,
		Resolver:    resolver,
		Settings:    snapshots,
		Design:      buildDesignService(cfg, resolver, logger),
		Initiatives: store,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("create api server: %w", err)
	}

	logger.Info("aura server starting",
		logging.String("bind", bind),
		logging.String("log_file", logPath),
		logging.String("settings_file", snapshots.Path()),
		logging.String("database_file", store.Path()),
		logging.Bool("global_settings_valid", resolver.ValidateGlobal()),
	)
	if err := server.Run(signalCtx); err != nil {
		return err
	}
	logger.Info("aura server shut down")
	return nil
}
