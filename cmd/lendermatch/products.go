package main

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/calderbank/lendermatch/internal/model"
)

func productsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Manage the lender-product catalog",
	}

	cmd.AddCommand(productsAddCmd())
	cmd.AddCommand(productsListCmd())

	return cmd
}

func productsAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <key>",
		Short: "Add or update a lender product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			minAmountStr, _ := cmd.Flags().GetString("min-amount")
			maxAmountStr, _ := cmd.Flags().GetString("max-amount")
			minRevenueStr, _ := cmd.Flags().GetString("min-monthly-revenue")
			minTibStr, _ := cmd.Flags().GetString("min-time-in-business")
			minCsStr, _ := cmd.Flags().GetString("min-credit-score")
			allowed, _ := cmd.Flags().GetString("industries-allowed")
			blocked, _ := cmd.Flags().GetString("industries-blocked")
			apr, _ := cmd.Flags().GetFloat64("apr")
			term, _ := cmd.Flags().GetInt("term-months")
			boost, _ := cmd.Flags().GetFloat64("score-boost")
			penalty, _ := cmd.Flags().GetFloat64("out-of-box-penalty")
			inactive, _ := cmd.Flags().GetBool("inactive")

			minAmount, err := floatFlag(minAmountStr)
			if err != nil {
				return err
			}
			maxAmount, err := floatFlag(maxAmountStr)
			if err != nil {
				return err
			}
			minRevenue, err := floatFlag(minRevenueStr)
			if err != nil {
				return err
			}
			minTib, err := intFlag(minTibStr)
			if err != nil {
				return err
			}
			minCs, err := intFlag(minCsStr)
			if err != nil {
				return err
			}

			product := &model.LenderProduct{
				Key:                     args[0],
				Name:                    name,
				MinAmount:               minAmount,
				MaxAmount:               maxAmount,
				MinMonthlyRevenue:       minRevenue,
				MinTimeInBusinessMonths: minTib,
				MinCreditScore:          minCs,
				IndustriesAllowed:       splitList(allowed),
				IndustriesBlocked:       splitList(blocked),
				RateAPR:                 apr,
				TermMonths:              term,
				Knobs: model.ProductKnobs{
					ScoreBoost:      boost,
					OutOfBoxPenalty: penalty,
				},
				IsActive: !inactive,
			}

			if err := validate.Struct(product); err != nil {
				return fmt.Errorf("invalid product: %w", err)
			}

			store, cleanup, err := openStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			if err := store.SaveProduct(cmd.Context(), product); err != nil {
				return err
			}

			fmt.Printf("Saved product %s\n", product.Key)
			return nil
		},
	}

	cmd.Flags().String("name", "", "product display name (required)")
	cmd.Flags().String("min-amount", "", "minimum loan amount")
	cmd.Flags().String("max-amount", "", "maximum loan amount")
	cmd.Flags().String("min-monthly-revenue", "", "monthly revenue floor")
	cmd.Flags().String("min-time-in-business", "", "time-in-business floor, months")
	cmd.Flags().String("min-credit-score", "", "credit score floor")
	cmd.Flags().String("industries-allowed", "", "comma-separated industry allow list")
	cmd.Flags().String("industries-blocked", "", "comma-separated industry block list")
	cmd.Flags().Float64("apr", 0, "offer APR")
	cmd.Flags().Int("term-months", 0, "offer term in months")
	cmd.Flags().Float64("score-boost", 0, "score boost knob")
	cmd.Flags().Float64("out-of-box-penalty", 0, "out-of-box penalty knob")
	cmd.Flags().Bool("inactive", false, "store as inactive")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func productsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List catalog products",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, cleanup, err := openStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			products, err := store.ListProducts(cmd.Context())
			if err != nil {
				return err
			}

			if len(products) == 0 {
				fmt.Println("No products in catalog.")
				return nil
			}

			for _, p := range products {
				state := "active"
				if !p.IsActive {
					state = "inactive"
				}
				apr := decimal.NewFromFloat(p.RateAPR).Round(2)
				fmt.Printf("%-20s %-30s %s apr=%s%% term=%dmo boost=%+.2f penalty=%+.2f\n",
					p.Key, p.Name, state, apr, p.TermMonths,
					p.Knobs.ScoreBoost, p.Knobs.OutOfBoxPenalty)
			}
			return nil
		},
	}
}
