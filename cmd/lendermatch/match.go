package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/calderbank/lendermatch/internal/common"
	"github.com/calderbank/lendermatch/internal/config"
	"github.com/calderbank/lendermatch/internal/engine"
	"github.com/calderbank/lendermatch/internal/model"
)

func matchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match <application-id>",
		Short: "Match an application against the lender-product catalog",
		Long: `Run the matching engine for one application under a named scoring
variant. The full per-product result set is computed, eligible products are
ranked by weighted score, and an immutable decision trace is recorded.`,
		Args: cobra.ExactArgs(1),
		RunE: runMatch,
	}

	cmd.Flags().String("variant", engine.DefaultVariant, "scoring variant to apply")
	cmd.Flags().Bool("json", false, "print the full decision as JSON")
	cmd.Flags().Int("retries", 1, "attempts for the whole invocation on transient store failures")

	return cmd
}

func runMatch(cmd *cobra.Command, args []string) error {
	applicationID := args[0]
	variant, _ := cmd.Flags().GetString("variant")
	asJSON, _ := cmd.Flags().GetBool("json")
	retries, _ := cmd.Flags().GetInt("retries")

	store, cleanup, err := openStorage(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	eng := engine.NewWithConfig(store, config.LoadEngineConfig())

	// The engine is side-effect-free except for the trace append, which is
	// safe to re-attempt, so the whole call can be retried from here.
	var decision *model.DecisionResult
	err = common.WithRetry(cmd.Context(), func() error {
		var runErr error
		decision, runErr = eng.Run(cmd.Context(), applicationID, variant)
		return runErr
	}, common.RetryOptions{
		MaxAttempts:  retries,
		InitialDelay: 250 * time.Millisecond,
	})
	if err != nil {
		return err
	}

	if asJSON {
		return printJSON(decision)
	}

	printDecision(decision)
	return nil
}

func printDecision(decision *model.DecisionResult) {
	fmt.Printf("Application %s (variant %q)\n", decision.ApplicationID, decision.Variant)
	fmt.Printf("Weights: amount=%.2f mrr=%.2f tib=%.2f cs=%.2f\n\n",
		decision.Weights.Amount, decision.Weights.MRR,
		decision.Weights.TIB, decision.Weights.CS)

	if len(decision.Top) == 0 {
		fmt.Println("No eligible products.")
	} else {
		fmt.Println("Top matches:")
		for i, r := range decision.Top {
			fmt.Printf("  %d. %s (%s) score=%.2f apr=%.2f%% term=%dmo\n",
				i+1, r.ProductName, r.ProductKey, r.Score,
				r.Offer.APR, r.Offer.TermMonths)
		}
	}

	fmt.Printf("\nAll products (%d evaluated):\n", len(decision.All))
	for _, r := range decision.All {
		if r.Eligible {
			fmt.Printf("  %-20s eligible   score=%.2f\n", r.ProductKey, r.Score)
			continue
		}
		fmt.Printf("  %-20s ineligible\n", r.ProductKey)
		for _, reason := range r.Reasons {
			fmt.Printf("      - %s\n", reason)
		}
	}

	failed := 0
	for _, hit := range decision.RulesApplied {
		if !hit.Passed {
			failed++
		}
	}
	fmt.Printf("\nPolicy rule hits: %d (%d failed)\n", len(decision.RulesApplied), failed)
}
