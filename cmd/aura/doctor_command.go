package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"aura/internal/preflight"
)

type doctorReport struct {
	ConfigPath string             `json:"configPath"`
	Errors     []string           `json:"errors"`
	Warnings   []string           `json:"warnings"`
	Checks     []preflight.Result `json:"checks"`
	Settings   validationReport   `json:"settings"`
}

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, storage, gateway, and credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			resolver, _, err := ctx.openResolver(cmd.Context(), ctx.cliLogger())
			if err != nil {
				return err
			}
			diag := cfg.Diagnose()
			report := doctorReport{
				ConfigPath: ctx.configPath,
				Errors:     diag.Errors,
				Warnings:   diag.Warnings,
				Checks:     preflight.RunAll(cmd.Context(), cfg, resolver.Catalog(), nil),
				Settings:   buildValidationReport(resolver),
			}
			failed := len(preflight.Failed(report.Checks))

			if ctx.jsonOutput() {
				if err := writeJSON(cmd, report); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Config: %s\n", report.ConfigPath)
				rows := make([][]string, 0, len(report.Checks)+1)
				for _, check := range report.Checks {
					status := "ok"
					if !check.Passed {
						status = "FAIL"
					}
					rows = append(rows, []string{check.Name, status, check.Detail})
				}
				rows = append(rows, []string{"Global LLM settings", okFail(report.Settings.Global), ""})
				fmt.Fprintln(out, renderTable([]string{"Check", "Status", "Detail"}, rows, nil, colorEnabled(out)))
				for _, warning := range report.Warnings {
					fmt.Fprintf(out, "warning: %s\n", warning)
				}
				for _, problem := range report.Errors {
					fmt.Fprintf(out, "error: %s\n", problem)
				}
			}

			if len(report.Errors) > 0 || failed > 0 {
				return fmt.Errorf("doctor found %d configuration error(s) and %d failed check(s)", len(report.Errors), failed)
			}
			return nil
		},
	}
}

func okFail(value bool) string {
	if value {
		return "ok"
	}
	return "FAIL"
}
