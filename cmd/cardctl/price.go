package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codyseavey/card-resolver/internal/config"
	"github.com/codyseavey/card-resolver/internal/models"
	"github.com/codyseavey/card-resolver/internal/pricing"
)

// pricingService builds the pricing service from config.yaml and
// CARDRESOLVER_PRICING_* variables.
func pricingService() (*pricing.Service, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if !cfg.PricingEnabled() {
		return nil, fmt.Errorf("%w: set %s_PRICING_API_KEY", models.ErrPricingDisabled, config.EnvPrefix)
	}

	client := func(baseURL, name string) *pricing.Client {
		return pricing.NewClient(pricing.ClientConfig{
			APIKey:      cfg.Pricing.APIKey,
			BaseURL:     baseURL,
			Timeout:     cfg.Pricing.Timeout,
			Retries:     cfg.Pricing.Retries,
			MinInterval: cfg.Pricing.MinInterval,
			Name:        name,
		})
	}
	return pricing.NewService(
		client(cfg.Pricing.SportsBaseURL, "sportscardspro"),
		client(cfg.Pricing.TCGBaseURL, "pricecharting"),
	), nil
}

func newPriceCmd() *cobra.Command {
	var (
		flags   queryFlags
		product string
	)

	cmd := &cobra.Command{
		Use:   "price <game>",
		Short: "Match a card to a pricing catalog product and print its prices",
		Example: `  cardctl price sports --name "CJ Stroud" --year 2023 --set "Panini Prizm" --number 339
  cardctl price mtg --name "Lightning Bolt" --set "Magic 2011" --foil
  cardctl price pokemon --product 12345`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			game, err := parseGameArg(args[0])
			if err != nil {
				return err
			}
			svc, err := pricingService()
			if err != nil {
				return err
			}

			if product != "" {
				m, err := svc.For(game)
				if err != nil {
					return err
				}
				prices, err := m.PricesForProduct(cmd.Context(), product)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), prices)
			}

			q, err := flags.query()
			if err != nil {
				return err
			}
			match, err := svc.MatchAndPrice(cmd.Context(), game, q)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), match)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&product, "product", "", "Price a known product id instead of searching")

	return cmd
}

func newParallelsCmd() *cobra.Command {
	var flags queryFlags

	cmd := &cobra.Command{
		Use:   "parallels <game>",
		Short: "List the catalog parallels of a card, priced ones first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			game, err := parseGameArg(args[0])
			if err != nil {
				return err
			}
			q, err := flags.query()
			if err != nil {
				return err
			}
			svc, err := pricingService()
			if err != nil {
				return err
			}
			m, err := svc.For(game)
			if err != nil {
				return err
			}

			parallels, err := m.AvailableParallels(cmd.Context(), q)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), parallels)
		},
	}

	flags.register(cmd)
	return cmd
}

func newEstimateCmd() *cobra.Command {
	var (
		raw   float64
		tiers []string
		grade float64
	)

	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate a card's value at a grade from known prices",
		Example: `  # Interpolate between raw and the 9 tier
  cardctl estimate --raw 10 --tier 9=100 --grade 9`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if grade < 1 || grade > 10 {
				return fmt.Errorf("grade must be between 1 and 10, got %g", grade)
			}
			byTier, err := parseTiers(tiers)
			if err != nil {
				return err
			}

			prices := &models.NormalizedPriceSet{ByTier: byTier}
			if raw > 0 {
				prices.Raw = &raw
			}

			value := pricing.EstimateValueAtGrade(prices, grade)
			if value == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "no estimate: no raw or graded prices given")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%.2f\n", *value)
			return nil
		},
	}

	cmd.Flags().Float64Var(&raw, "raw", 0, "Ungraded price")
	cmd.Flags().StringArrayVar(&tiers, "tier", nil, "Graded tier price as tier=price, repeatable (e.g. 9=100)")
	cmd.Flags().Float64Var(&grade, "grade", 0, "Grade to estimate (1-10)")
	_ = cmd.MarkFlagRequired("grade")

	return cmd
}

// parseTiers turns "9=100" pairs into primary-scheme tier prices
func parseTiers(pairs []string) (map[models.GradeTier]float64, error) {
	out := make(map[models.GradeTier]float64, len(pairs))
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --tier %q: want tier=price", pair)
		}
		tier, ok := models.ParseGradeTier(k)
		if !ok {
			return nil, fmt.Errorf("invalid --tier %q: unknown grade tier %q", pair, k)
		}
		price, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || price < 0 {
			return nil, fmt.Errorf("invalid --tier %q: bad price", pair)
		}
		out[tier] = price
	}
	return out, nil
}
