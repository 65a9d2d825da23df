package main

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"aura/internal/llmconfig"
)

func newSettingsCommand(ctx *commandContext) *cobra.Command {
	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect and change LLM settings",
	}

	settingsCmd.AddCommand(newSettingsShowCommand(ctx))
	settingsCmd.AddCommand(newSettingsMutationCommand(ctx, "set-provider <provider>", "Select the global provider (resets the model)", 1,
		func(r *llmconfig.Resolver, args []string) (llmconfig.Change, error) {
			return r.SetProvider(args[0]), nil
		}))
	settingsCmd.AddCommand(newSettingsMutationCommand(ctx, "set-model <model>", "Set the global model", 1,
		func(r *llmconfig.Resolver, args []string) (llmconfig.Change, error) {
			return r.SetModel(args[0]), nil
		}))
	settingsCmd.AddCommand(newSettingsMutationCommand(ctx, "set-key <api-key>", "Store the shared API key", 1,
		func(r *llmconfig.Resolver, args []string) (llmconfig.Change, error) {
			return r.SetAPIKey(args[0]), nil
		}))
	settingsCmd.AddCommand(newSettingsMutationCommand(ctx, "set-temperature <value>", "Set the sampling temperature (0-2)", 1,
		func(r *llmconfig.Resolver, args []string) (llmconfig.Change, error) {
			value, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return llmconfig.Change{}, fmt.Errorf("parse temperature: %w", err)
			}
			return r.SetTemperature(value), nil
		}))
	settingsCmd.AddCommand(newSettingsMutationCommand(ctx, "set-max-tokens <value>", "Set the response token budget", 1,
		func(r *llmconfig.Resolver, args []string) (llmconfig.Change, error) {
			value, err := strconv.Atoi(args[0])
			if err != nil {
				return llmconfig.Change{}, fmt.Errorf("parse max tokens: %w", err)
			}
			return r.SetMaxTokens(value), nil
		}))
	settingsCmd.AddCommand(newSettingsMutationCommand(ctx, "set-module <module> <tier> <provider> <model>", "Set one tier of a module", 4,
		func(r *llmconfig.Resolver, args []string) (llmconfig.Change, error) {
			module, err := llmconfig.ParseModule(args[0])
			if err != nil {
				return llmconfig.Change{}, err
			}
			tier, err := llmconfig.ParseTier(args[1])
			if err != nil {
				return llmconfig.Change{}, err
			}
			return r.SetModuleTier(module, tier, args[2], args[3]), nil
		}))
	settingsCmd.AddCommand(newSettingsMutationCommand(ctx, "set-reverse <design|code> <provider> <model>", "Set a reverse-engineering selection", 3,
		func(r *llmconfig.Resolver, args []string) (llmconfig.Change, error) {
			kind, err := llmconfig.ParseKind(args[0])
			if err != nil {
				return llmconfig.Change{}, err
			}
			return r.SetReverseEngineeringLLM(kind, args[1], args[2]), nil
		}))
	settingsCmd.AddCommand(newSettingsMutationCommand(ctx, "init-env", "Fill an empty API key from the environment", 0,
		func(r *llmconfig.Resolver, _ []string) (llmconfig.Change, error) {
			change := r.InitializeFromEnvironment()
			if !change.Applied && change.Reason == llmconfig.ReasonAPIKeyAlreadySet {
				// Nothing to do is not a failure here.
				return llmconfig.Change{Applied: true, Field: change.Field, Reason: change.Reason}, nil
			}
			return change, nil
		}))
	settingsCmd.AddCommand(newSettingsResolveCommand(ctx))
	settingsCmd.AddCommand(newSettingsValidateCommand(ctx))
	settingsCmd.AddCommand(newSettingsResetCommand(ctx))

	return settingsCmd
}

type settingsMutation func(r *llmconfig.Resolver, args []string) (llmconfig.Change, error)

// newSettingsMutationCommand runs mutate as one locked read-modify-write of
// the persisted snapshot, so a running server's changes are not overwritten.
func newSettingsMutationCommand(ctx *commandContext, use, short string, nargs int, mutate settingsMutation) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(nargs),
		RunE: func(cmd *cobra.Command, args []string) error {
			var change llmconfig.Change
			var mutateErr error
			err := withSavedResolver(cmd.Context(), ctx, func(r *llmconfig.Resolver) []llmconfig.Change {
				change, mutateErr = mutate(r, args)
				if mutateErr != nil {
					return nil
				}
				return []llmconfig.Change{change}
			})
			if mutateErr != nil {
				return mutateErr
			}
			if err != nil {
				return err
			}
			if !change.Applied {
				if ctx.jsonOutput() {
					_ = writeJSON(cmd, change)
				}
				return change.Err()
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, change)
			}
			if change.Reason != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "%s unchanged (%s)\n", change.Field, change.Reason)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", change.Field)
			return nil
		},
	}
}

func newSettingsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current LLM settings (API key masked)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver, _, err := ctx.openResolver(cmd.Context(), ctx.cliLogger())
			if err != nil {
				return err
			}
			snap := resolver.Snapshot()
			snap.LLMSettings = snap.LLMSettings.Masked()
			if ctx.jsonOutput() {
				return writeJSON(cmd, snap)
			}

			out := cmd.OutOrStdout()
			color := colorEnabled(out)
			s := snap.LLMSettings
			apiKey := s.APIKey
			if apiKey == "" {
				apiKey = "(not set)"
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Setting", "Value"},
				[][]string{
					{"Provider", s.Provider},
					{"Model", s.Model},
					{"Temperature", strconv.FormatFloat(s.Temperature, 'f', -1, 64)},
					{"Max tokens", strconv.Itoa(s.MaxTokens)},
					{"API key", apiKey},
					{"Valid", yesNo(resolver.ValidateGlobal())},
				},
				nil, color,
			))

			rows := make([][]string, 0, len(snap.ModuleLLMSettings))
			for _, module := range llmconfig.Modules() {
				cfg, ok := snap.ModuleLLMSettings[module]
				if !ok {
					continue
				}
				rows = append(rows, []string{string(module), cfg.Primary.String(), cfg.Backup.String(), yesNo(resolver.ValidateModule(module))})
			}
			fmt.Fprintln(out, renderTable([]string{"Module", "Primary", "Backup", "Valid"}, rows, nil, color))

			re := snap.ReverseEngineeringLLMSettings
			fmt.Fprintln(out, renderTable(
				[]string{"Reverse engineering", "Selection"},
				[][]string{{"design", re.Design.String()}, {"code", re.Code.String()}},
				nil, color,
			))
			return nil
		},
	}
}

func newSettingsResolveCommand(ctx *commandContext) *cobra.Command {
	var tierFlag string
	cmd := &cobra.Command{
		Use:   "resolve <module>",
		Short: "Show the credentials a module tier resolves to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			module, err := llmconfig.ParseModule(args[0])
			if err != nil {
				return err
			}
			tier, err := llmconfig.ParseTier(tierFlag)
			if err != nil {
				return err
			}
			resolver, _, err := ctx.openResolver(cmd.Context(), ctx.cliLogger())
			if err != nil {
				return err
			}
			creds, err := resolver.ResolveModule(module, tier)
			if err != nil {
				return err
			}
			creds = creds.Masked()
			if ctx.jsonOutput() {
				return writeJSON(cmd, creds)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Field", "Value"},
				[][]string{
					{"Module", string(module)},
					{"Tier", string(tier)},
					{"Provider", creds.Provider},
					{"Model", creds.Model},
					{"API key", creds.APIKey},
					{"Temperature", strconv.FormatFloat(creds.Temperature, 'f', -1, 64)},
					{"Max tokens", strconv.Itoa(creds.MaxTokens)},
				},
				nil, colorEnabled(cmd.OutOrStdout()),
			))
			return nil
		},
	}
	cmd.Flags().StringVar(&tierFlag, "tier", string(llmconfig.TierPrimary), "Tier to resolve: primary or backup")
	return cmd
}

type validationReport struct {
	Global  bool                      `json:"global"`
	Modules map[llmconfig.Module]bool `json:"modules"`
}

func newSettingsValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Report whether the global setting and each module are usable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver, _, err := ctx.openResolver(cmd.Context(), ctx.cliLogger())
			if err != nil {
				return err
			}
			report := buildValidationReport(resolver)
			if ctx.jsonOutput() {
				if err := writeJSON(cmd, report); err != nil {
					return err
				}
			} else {
				modules := make([]string, 0, len(report.Modules))
				for module := range report.Modules {
					modules = append(modules, string(module))
				}
				sort.Strings(modules)
				rows := [][]string{{"global", yesNo(report.Global)}}
				for _, module := range modules {
					rows = append(rows, []string{module, yesNo(report.Modules[llmconfig.Module(module)])})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Scope", "Valid"}, rows, nil, colorEnabled(cmd.OutOrStdout())))
			}
			if !report.Global {
				return fmt.Errorf("global LLM settings are incomplete; set an API key with `aura settings set-key` or the provider's environment variable")
			}
			return nil
		},
	}
}

func buildValidationReport(resolver *llmconfig.Resolver) validationReport {
	report := validationReport{
		Global:  resolver.ValidateGlobal(),
		Modules: make(map[llmconfig.Module]bool),
	}
	for _, module := range llmconfig.Modules() {
		report.Modules[module] = resolver.ValidateModule(module)
	}
	return report
}

func newSettingsResetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restore the global LLM setting to its defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := withSavedResolver(cmd.Context(), ctx, func(r *llmconfig.Resolver) []llmconfig.Change {
				r.ResetSettings()
				return []llmconfig.Change{{Applied: true, Field: "llmSettings"}}
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Global LLM settings reset to defaults")
			return nil
		},
	}
}

// withSavedResolver applies mutate through the snapshot store's locked
// update, saving only when a change applied.
func withSavedResolver(ctx context.Context, cc *commandContext, mutate func(*llmconfig.Resolver) []llmconfig.Change) error {
	resolver, snapshots, err := cc.openResolver(ctx, cc.cliLogger())
	if err != nil {
		return err
	}
	if _, err := snapshots.Update(ctx, resolver, mutate); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}
