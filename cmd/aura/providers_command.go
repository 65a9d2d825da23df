package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newProvidersCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List LLM providers and their models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver, _, err := ctx.openResolver(cmd.Context(), ctx.cliLogger())
			if err != nil {
				return err
			}
			providers := resolver.Catalog().Providers()
			if ctx.jsonOutput() {
				return writeJSON(cmd, providers)
			}

			current := resolver.Settings()
			var rows [][]string
			for _, provider := range providers {
				for _, model := range provider.Models {
					marker := ""
					if provider.ID == current.Provider && model.ID == current.Model {
						marker = "*"
					}
					maxTokens := ""
					if model.MaxTokens > 0 {
						maxTokens = strconv.Itoa(model.MaxTokens)
					}
					rows = append(rows, []string{marker, provider.ID, model.ID, model.Name, maxTokens})
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"", "Provider", "Model", "Name", "Max tokens"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
				colorEnabled(cmd.OutOrStdout()),
			))
			return nil
		},
	}
}
