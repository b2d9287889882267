package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/calderbank/lendermatch/internal/model"
)

func applicationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "applications",
		Aliases: []string{"apps"},
		Short:   "Manage loan application snapshots",
	}

	cmd.AddCommand(applicationsAddCmd())
	cmd.AddCommand(applicationsListCmd())
	cmd.AddCommand(applicationsShowCmd())

	return cmd
}

func applicationsAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <id>",
		Short: "Add or update an application snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, _ := cmd.Flags().GetFloat64("amount")
			category, _ := cmd.Flags().GetString("category")
			revenue, _ := cmd.Flags().GetFloat64("monthly-revenue")
			tib, _ := cmd.Flags().GetInt("time-in-business")
			industry, _ := cmd.Flags().GetString("industry")
			creditScore, _ := cmd.Flags().GetInt("credit-score")

			app := &model.Application{
				ID:                   args[0],
				AmountRequested:      amount,
				ProductCategory:      category,
				MonthlyRevenue:       revenue,
				TimeInBusinessMonths: tib,
				Industry:             industry,
				CreditScore:          creditScore,
			}

			if err := validate.Struct(app); err != nil {
				return fmt.Errorf("invalid application: %w", err)
			}

			store, cleanup, err := openStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			if err := store.SaveApplication(cmd.Context(), app); err != nil {
				return err
			}

			fmt.Printf("Saved application %s\n", app.ID)
			return nil
		},
	}

	cmd.Flags().Float64("amount", 0, "amount requested (required)")
	cmd.Flags().String("category", "", "product category")
	cmd.Flags().Float64("monthly-revenue", 0, "monthly revenue")
	cmd.Flags().Int("time-in-business", 0, "time in business, months")
	cmd.Flags().String("industry", "", "industry")
	cmd.Flags().Int("credit-score", 0, "credit score (300-850)")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("credit-score")

	return cmd
}

func applicationsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored applications",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, cleanup, err := openStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			apps, err := store.ListApplications(cmd.Context())
			if err != nil {
				return err
			}

			if len(apps) == 0 {
				fmt.Println("No applications stored.")
				return nil
			}

			for _, app := range apps {
				fmt.Printf("%-16s amount=%.2f revenue=%.2f tib=%dmo industry=%q cs=%d\n",
					app.ID, app.AmountRequested, app.MonthlyRevenue,
					app.TimeInBusinessMonths, app.Industry, app.CreditScore)
			}
			return nil
		},
	}
}

func applicationsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one application as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, cleanup, err := openStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			app, err := store.GetApplication(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(app)
		},
	}
}
