package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/calderbank/lendermatch/internal/model"
)

func variantsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "variants",
		Short: "Manage scoring-variant weight vectors",
	}

	cmd.AddCommand(variantsSetCmd())
	cmd.AddCommand(variantsListCmd())

	return cmd
}

func variantsSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <key>",
		Short: "Create or update a variant's weights",
		Long: `Store weight coefficients for a named variant. Unset weights are left
NULL and resolve to the engine defaults at run time, not to zero.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amountStr, _ := cmd.Flags().GetString("amount")
			mrrStr, _ := cmd.Flags().GetString("mrr")
			tibStr, _ := cmd.Flags().GetString("tib")
			csStr, _ := cmd.Flags().GetString("cs")

			amount, err := floatFlag(amountStr)
			if err != nil {
				return err
			}
			mrr, err := floatFlag(mrrStr)
			if err != nil {
				return err
			}
			tib, err := floatFlag(tibStr)
			if err != nil {
				return err
			}
			cs, err := floatFlag(csStr)
			if err != nil {
				return err
			}

			variant := &model.EngineVariant{
				Key:    args[0],
				Amount: amount,
				MRR:    mrr,
				TIB:    tib,
				CS:     cs,
			}

			if err := validate.Struct(variant); err != nil {
				return fmt.Errorf("invalid variant: %w", err)
			}

			store, cleanup, err := openStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			if err := store.SaveVariant(cmd.Context(), variant); err != nil {
				return err
			}

			resolved := variant.Resolve(model.DefaultWeights())
			fmt.Printf("Saved variant %q: amount=%.2f mrr=%.2f tib=%.2f cs=%.2f\n",
				variant.Key, resolved.Amount, resolved.MRR, resolved.TIB, resolved.CS)
			return nil
		},
	}

	cmd.Flags().String("amount", "", "weight for the amount feature")
	cmd.Flags().String("mrr", "", "weight for the monthly-revenue feature")
	cmd.Flags().String("tib", "", "weight for the time-in-business feature")
	cmd.Flags().String("cs", "", "weight for the credit-score feature")

	return cmd
}

func variantsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored variants with resolved weights",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, cleanup, err := openStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			variants, err := store.ListVariants(cmd.Context())
			if err != nil {
				return err
			}

			defaults := model.DefaultWeights()
			fmt.Printf("%-16s amount=%.2f mrr=%.2f tib=%.2f cs=%.2f (defaults)\n",
				"(fallback)", defaults.Amount, defaults.MRR, defaults.TIB, defaults.CS)

			for _, v := range variants {
				resolved := v.Resolve(defaults)
				fmt.Printf("%-16s amount=%.2f mrr=%.2f tib=%.2f cs=%.2f\n",
					v.Key, resolved.Amount, resolved.MRR, resolved.TIB, resolved.CS)
			}
			return nil
		},
	}
}
