package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func tracesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "traces",
		Short: "Inspect immutable decision traces",
	}

	cmd.AddCommand(tracesListCmd())
	cmd.AddCommand(tracesShowCmd())

	return cmd
}

func tracesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <application-id>",
		Short: "List decision traces for an application, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, cleanup, err := openStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			traces, err := store.ListDecisionTraces(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if len(traces) == 0 {
				fmt.Printf("No traces for application %s.\n", args[0])
				return nil
			}

			for _, t := range traces {
				eligible := 0
				for _, r := range t.Results {
					if r.Eligible {
						eligible++
					}
				}
				fmt.Printf("%s  %s  variant=%-10s products=%d eligible=%d rule_hits=%d\n",
					t.CreatedAt.Format("2006-01-02 15:04:05"), t.ID, t.Variant,
					len(t.Results), eligible, len(t.RulesApplied))
			}
			return nil
		},
	}
}

func tracesShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <trace-id>",
		Short: "Show one decision trace as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, cleanup, err := openStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			trace, err := store.GetDecisionTrace(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(trace)
		},
	}
}
