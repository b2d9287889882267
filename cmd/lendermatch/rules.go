package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/calderbank/lendermatch/internal/model"
	"github.com/calderbank/lendermatch/internal/policy"
)

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage policy rules",
	}

	cmd.AddCommand(rulesAddCmd())
	cmd.AddCommand(rulesListCmd())

	return cmd
}

func rulesAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <rule-string>",
		Short: "Add a policy rule in a given scope",
		Long: `Store one policy rule. The supported forms are:

  min_credit_score>=N
  min_monthly_revenue>=N
  block_industries=["industry", ...]

Anything else is stored as-is and treated as a passthrough at evaluation
time: recorded in the audit trace but with no eligibility effect.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, _ := cmd.Flags().GetString("scope")

			rule := &model.PolicyRule{
				Scope:    scope,
				Rule:     args[0],
				IsActive: true,
			}

			if err := validate.Struct(rule); err != nil {
				return fmt.Errorf("invalid rule: %w", err)
			}
			if err := model.ValidateScope(scope); err != nil {
				return err
			}

			store, cleanup, err := openStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			if err := store.SavePolicyRule(cmd.Context(), rule); err != nil {
				return err
			}

			parsed := policy.Parse(rule.Rule)
			fmt.Printf("Saved rule #%d in scope %q (recognized as %s)\n",
				rule.ID, rule.Scope, parsed.Kind())
			if parsed.Kind() == policy.KindPassthrough {
				fmt.Println("Note: this rule is not a recognized form and will have no eligibility effect.")
			}
			return nil
		},
	}

	cmd.Flags().String("scope", model.ScopeGlobal, "rule scope: global, product:<key>, or application:<id>")

	return cmd
}

func rulesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List policy rules",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, cleanup, err := openStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			rules, err := store.ListPolicyRules(cmd.Context())
			if err != nil {
				return err
			}

			if len(rules) == 0 {
				fmt.Println("No policy rules stored.")
				return nil
			}

			for _, rule := range rules {
				state := "active"
				if !rule.IsActive {
					state = "inactive"
				}
				fmt.Printf("#%-4d %-30s %-8s %s (%s)\n",
					rule.ID, rule.Scope, state, rule.Rule, policy.Parse(rule.Rule).Kind())
			}
			return nil
		},
	}
}
