package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/codyseavey/card-resolver/internal/logging"
	"github.com/codyseavey/card-resolver/internal/models"
)

func newRootCmd() *cobra.Command {
	var logLevel, logFormat string

	cmd := &cobra.Command{
		Use:   "cardctl",
		Short: "Identify trading cards and look up market prices",
		Long: `cardctl works against the same catalog and pricing APIs as the server.

Import catalog seed files into the database, resolve scanned attributes to a
catalog record, and price cards against PriceCharting and SportsCardsPro.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
			return logging.Setup(logLevel, logFormat)
		},
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format (text or json)")

	cmd.AddCommand(newImportCmd())
	cmd.AddCommand(newIdentifyCmd())
	cmd.AddCommand(newPriceCmd())
	cmd.AddCommand(newParallelsCmd())
	cmd.AddCommand(newEstimateCmd())

	return cmd
}

// queryFlags are the scanned attributes shared by identify, price and parallels
type queryFlags struct {
	name    string
	setCode string
	setName string
	number  string
	cardID  string
	rarity  string
	year    string
	variant string
	serial  string
	sport   string
	foil    bool
}

func (f *queryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "Card or player name")
	cmd.Flags().StringVar(&f.setCode, "set-code", "", "Set code (e.g. MKM, TFC)")
	cmd.Flags().StringVar(&f.setName, "set", "", "Set name")
	cmd.Flags().StringVar(&f.number, "number", "", "Collector number, \"4/102\" accepted")
	cmd.Flags().StringVar(&f.cardID, "id", "", "Printed card id (e.g. OP01-001)")
	cmd.Flags().StringVar(&f.rarity, "rarity", "", "Rarity")
	cmd.Flags().StringVar(&f.year, "year", "", "Release year (pricing only)")
	cmd.Flags().StringVar(&f.variant, "variant", "", "Variant or parallel name (pricing only)")
	cmd.Flags().StringVar(&f.serial, "serial", "", "Serial numbering such as 12/99 (pricing only)")
	cmd.Flags().StringVar(&f.sport, "sport", "", "Sport (sports cards only)")
	cmd.Flags().BoolVar(&f.foil, "foil", false, "Card is foil (pricing only)")
}

func (f *queryFlags) query() (models.QueryAttributes, error) {
	q := models.QueryAttributes{
		Name:            f.name,
		SetCode:         f.setCode,
		SetName:         f.setName,
		CollectorNumber: f.number,
		CardID:          f.cardID,
		Rarity:          f.rarity,
		Year:            f.year,
		Variant:         f.variant,
		SerialNumbering: f.serial,
		Sport:           f.sport,
		Foil:            f.foil,
	}.Trimmed()
	if q.IsEmpty() {
		return q, fmt.Errorf("%w: set at least one of --name, --set, --set-code, --number or --id", models.ErrInvalidQuery)
	}
	return q, nil
}

func parseGameArg(arg string) (models.Game, error) {
	game, ok := models.ParseGame(arg)
	if !ok {
		return "", fmt.Errorf("%w: %q", models.ErrUnknownGame, arg)
	}
	return game, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
