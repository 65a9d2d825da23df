package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"aura/internal/workitems"
)

func newInitiativesCommand(ctx *commandContext) *cobra.Command {
	initiativesCmd := &cobra.Command{
		Use:   "initiatives",
		Short: "List and add stored initiatives",
	}
	initiativesCmd.AddCommand(newInitiativesListCommand(ctx))
	initiativesCmd.AddCommand(newInitiativesAddCommand(ctx))
	return initiativesCmd
}

func newInitiativesListCommand(ctx *commandContext) *cobra.Command {
	var filter workitems.InitiativeFilter
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List initiatives, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore(cmd.Context())
			if err != nil {
				return err
			}
			rows, err := store.ListInitiatives(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, rows)
			}
			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				fmt.Fprintln(out, "No initiatives found")
				return nil
			}
			table := make([][]string, 0, len(rows))
			for _, row := range rows {
				table = append(table, []string{
					cell(row, "id"),
					cell(row, "title"),
					cell(row, "status"),
					cell(row, "priority"),
					cell(row, "business_brief_id"),
					cell(row, "created_at"),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Title", "Status", "Priority", "Business brief", "Created"},
				table, nil, colorEnabled(out),
			))
			return nil
		},
	}
	cmd.Flags().StringVar(&filter.BusinessBriefID, "brief", "", "Only initiatives under this business brief id")
	cmd.Flags().StringVar(&filter.Status, "status", "", "Only initiatives with this status")
	return cmd
}

func newInitiativesAddCommand(ctx *commandContext) *cobra.Command {
	var item workitems.Initiative
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add an initiative",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore(cmd.Context())
			if err != nil {
				return err
			}
			item.Title = args[0]
			id, err := store.CreateInitiative(cmd.Context(), item)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, map[string]string{"id": id})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added initiative %s\n", id)
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&item.Description, "description", "", "Initiative description")
	flags.StringVar(&item.BusinessBriefID, "brief", "", "Parent business brief id")
	flags.StringVar(&item.Priority, "priority", "medium", "Priority: low, medium, high, critical")
	flags.StringVar(&item.Status, "status", "draft", "Status")
	flags.StringVar(&item.Category, "category", "", "Category")
	flags.StringVar(&item.BusinessValue, "business-value", "", "Business value statement")
	flags.StringArrayVar(&item.AcceptanceCriteria, "criterion", nil, "Acceptance criterion (repeatable)")
	return cmd
}

func cell(row workitems.Row, key string) string {
	value, ok := row[key]
	if !ok || value == nil {
		return ""
	}
	return fmt.Sprint(value)
}
