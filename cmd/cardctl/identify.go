package main

import (
	"github.com/spf13/cobra"

	"github.com/codyseavey/card-resolver/internal/catalog"
	"github.com/codyseavey/card-resolver/internal/database"
	"github.com/codyseavey/card-resolver/internal/matching"
)

func newIdentifyCmd() *cobra.Command {
	var (
		flags      queryFlags
		dbPath     string
		seedDir    string
		tuningFile string
	)

	cmd := &cobra.Command{
		Use:   "identify <game>",
		Short: "Resolve scanned attributes to a catalog record",
		Long: `Runs the same identification as POST /api/identify/:game and prints the
match result as JSON. The catalog is read from the database, or from seed
files when --seed is given.`,
		Example: `  cardctl identify onepiece --id OP01-001
  cardctl identify lorcana --name Elsa --set-code TFC --number 42 --seed ./seed`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			game, err := parseGameArg(args[0])
			if err != nil {
				return err
			}
			q, err := flags.query()
			if err != nil {
				return err
			}

			store, err := openCatalog(dbPath, seedDir)
			if err != nil {
				return err
			}
			tuning, err := matching.LoadTuning(tuningFile)
			if err != nil {
				return err
			}
			registry, err := matching.NewRegistry(store, tuning, nil)
			if err != nil {
				return err
			}

			result, err := registry.Resolve(cmd.Context(), game, q)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&dbPath, "db", "./card_resolver.db", "Path to SQLite database")
	cmd.Flags().StringVar(&seedDir, "seed", "", "Read the catalog from seed files in this directory instead of the database")
	cmd.Flags().StringVar(&tuningFile, "tuning", "", "TOML file overriding field weights and thresholds")

	return cmd
}

func openCatalog(dbPath, seedDir string) (catalog.Store, error) {
	if seedDir != "" {
		records, err := catalog.LoadDir(seedDir)
		if err != nil {
			return nil, err
		}
		store := catalog.NewMemoryStore()
		if _, err := store.Upsert(records...); err != nil {
			return nil, err
		}
		return store, nil
	}

	db, err := database.Open(dbPath, false)
	if err != nil {
		return nil, err
	}
	return database.NewStore(db), nil
}
