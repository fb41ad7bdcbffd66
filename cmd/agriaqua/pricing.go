package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/knbiosciences/agriaqua-go/pkg/pricing"
)

var (
	priceRulesFile string
	priceQuantity  int
	priceBase      float64
	priceProductID string
	priceUserID    string
	priceUserRole  string
	priceRegion    string
)

var priceCmd = &cobra.Command{
	Use:   "price",
	Short: "Calculate a price locally from a rules file",
	Long:  `Evaluates the smart pricing engine against a JSON rules file and prints the resulting price breakdown.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(priceRulesFile)
		if err != nil {
			return fmt.Errorf("failed to read rules file: %w", err)
		}

		var rules []pricing.Rule
		if err := json.Unmarshal(data, &rules); err != nil {
			return fmt.Errorf("failed to parse rules file: %w", err)
		}

		product := pricing.Product{
			ID:        priceProductID,
			BasePrice: priceBase,
		}
		user := pricing.UserProfile{
			ID:   priceUserID,
			Role: priceUserRole,
			Location: pricing.Location{
				Region: priceRegion,
			},
		}

		result := pricing.CalculateLocal(product, user, priceQuantity, rules)

		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

var marginCmd = &cobra.Command{
	Use:   "margin <cost> <sale>",
	Short: "Calculate profit margin percentage",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cost, err := parseFloatArg(args[0], "cost")
		if err != nil {
			return err
		}
		sale, err := parseFloatArg(args[1], "sale")
		if err != nil {
			return err
		}
		fmt.Printf("%.2f%%\n", pricing.Margin(cost, sale))
		return nil
	},
}

var (
	demandElasticity float64
)

var demandCmd = &cobra.Command{
	Use:   "demand <price-change-percent> <current-demand>",
	Short: "Project demand after a price change",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		change, err := parseFloatArg(args[0], "price-change-percent")
		if err != nil {
			return err
		}
		demand, err := parseFloatArg(args[1], "current-demand")
		if err != nil {
			return err
		}
		fmt.Printf("%.2f\n", pricing.PredictDemand(change, demand, demandElasticity))
		return nil
	},
}

func parseFloatArg(raw, name string) (float64, error) {
	var v float64
	if _, err := fmt.Sscanf(raw, "%g", &v); err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return v, nil
}

func init() {
	priceCmd.Flags().StringVar(&priceRulesFile, "rules", "rules.json", "path to the pricing rules JSON file")
	priceCmd.Flags().IntVar(&priceQuantity, "quantity", 1, "order quantity")
	priceCmd.Flags().Float64Var(&priceBase, "base-price", 0, "product base price")
	priceCmd.Flags().StringVar(&priceProductID, "product", "", "product ID")
	priceCmd.Flags().StringVar(&priceUserID, "user", "", "user ID")
	priceCmd.Flags().StringVar(&priceUserRole, "role", "farmer", "user role")
	priceCmd.Flags().StringVar(&priceRegion, "region", "", "user region")

	demandCmd.Flags().Float64Var(&demandElasticity, "elasticity", pricing.DefaultElasticity, "demand elasticity coefficient")
}
