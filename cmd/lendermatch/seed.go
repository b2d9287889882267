package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/calderbank/lendermatch/internal/model"
	"github.com/calderbank/lendermatch/internal/service"
)

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load a small demo dataset",
		Long: `Populate the database with demo applications, products, policy rules
and variants for local evaluation. Existing rows with the same keys are
overwritten; decision traces are never touched.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, cleanup, err := openStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			if err := seedDemoData(cmd.Context(), store); err != nil {
				return err
			}

			slog.Info("Demo dataset loaded")
			return nil
		},
	}
}

func seedDemoData(ctx context.Context, store service.Storage) error {
	f := func(v float64) *float64 { return &v }
	n := func(v int) *int { return &v }

	applications := []model.Application{
		{
			ID:                   "app-retail-1",
			AmountRequested:      50000,
			ProductCategory:      "working_capital",
			MonthlyRevenue:       20000,
			TimeInBusinessMonths: 18,
			Industry:             "retail",
			CreditScore:          680,
		},
		{
			ID:                   "app-startup-1",
			AmountRequested:      15000,
			ProductCategory:      "term_loan",
			MonthlyRevenue:       4000,
			TimeInBusinessMonths: 4,
			Industry:             "software",
			CreditScore:          710,
		},
	}
	for i := range applications {
		if err := store.SaveApplication(ctx, &applications[i]); err != nil {
			return fmt.Errorf("failed to seed application: %w", err)
		}
	}

	products := []model.LenderProduct{
		{
			Key:                     "capital-flex",
			Name:                    "Capital Flex Line",
			MinAmount:               f(10000),
			MaxAmount:               f(100000),
			MinMonthlyRevenue:       f(5000),
			MinTimeInBusinessMonths: n(6),
			MinCreditScore:          n(600),
			RateAPR:                 18.9,
			TermMonths:              12,
			IsActive:                true,
		},
		{
			Key:                     "growth-term",
			Name:                    "Growth Term Loan",
			MinAmount:               f(25000),
			MaxAmount:               f(250000),
			MinMonthlyRevenue:       f(15000),
			MinTimeInBusinessMonths: n(24),
			MinCreditScore:          n(660),
			RateAPR:                 11.5,
			TermMonths:              36,
			Knobs:                   model.ProductKnobs{ScoreBoost: 0.05},
			IsActive:                true,
		},
		{
			Key:               "merchant-advance",
			Name:              "Merchant Cash Advance",
			MinAmount:         f(5000),
			MaxAmount:         f(50000),
			MinMonthlyRevenue: f(8000),
			IndustriesBlocked: []string{"gambling", "cannabis"},
			RateAPR:           32.0,
			TermMonths:        9,
			Knobs:             model.ProductKnobs{OutOfBoxPenalty: 0.10},
			IsActive:          true,
		},
	}
	for i := range products {
		if err := store.SaveProduct(ctx, &products[i]); err != nil {
			return fmt.Errorf("failed to seed product: %w", err)
		}
	}

	rules := []model.PolicyRule{
		{Scope: model.ScopeGlobal, Rule: "min_credit_score>=550", IsActive: true},
		{Scope: model.ProductScope("growth-term"), Rule: "min_monthly_revenue>=12000", IsActive: true},
		{Scope: model.ScopeGlobal, Rule: `block_industries=["weapons"]`, IsActive: true},
	}
	for i := range rules {
		if err := store.SavePolicyRule(ctx, &rules[i]); err != nil {
			return fmt.Errorf("failed to seed rule: %w", err)
		}
	}

	aggressive := model.EngineVariant{
		Key:    "exp-revenue-heavy",
		Amount: f(0.15),
		MRR:    f(0.50),
	}
	if err := store.SaveVariant(ctx, &aggressive); err != nil {
		return fmt.Errorf("failed to seed variant: %w", err)
	}

	return nil
}
