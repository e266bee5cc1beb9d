package main

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/codyseavey/card-resolver/internal/catalog"
	"github.com/codyseavey/card-resolver/internal/database"
	"github.com/codyseavey/card-resolver/internal/models"
)

func newImportCmd() *cobra.Command {
	var (
		dbPath  string
		file    string
		dir     string
		execute bool
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import catalog seed files into the database",
		Long: `Reads JSON or YAML catalog seed files and upserts their records.

Without --execute the files are only validated: records are normalized and
counted per game, and invalid records are reported.`,
		Example: `  # Validate every seed file in a directory
  cardctl import --dir ./seed

  # Write one file into the database
  cardctl import --db ./card_resolver.db --file ./seed/lorcana.yaml --execute`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (file == "") == (dir == "") {
				return errors.New("exactly one of --file or --dir is required")
			}

			records, err := loadSeed(file, dir)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			counts := map[models.Game]int{}
			invalid := 0
			for _, r := range records {
				rec, err := catalog.NormalizeRecord(r)
				if err != nil {
					invalid++
					fmt.Fprintf(out, "invalid record %q: %v\n", r.ID, err)
					continue
				}
				counts[rec.Game]++
			}
			printCounts(cmd, counts)

			if !execute {
				fmt.Fprintf(out, "DRY RUN: %d records valid, %d invalid. Run with --execute to import.\n", len(records)-invalid, invalid)
				return nil
			}
			if invalid > 0 {
				return fmt.Errorf("%d invalid records, nothing imported", invalid)
			}

			db, err := database.Open(dbPath, false)
			if err != nil {
				return err
			}
			n, err := database.NewStore(db).Upsert(cmd.Context(), records)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Imported %d records into %s\n", n, dbPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "./card_resolver.db", "Path to SQLite database")
	cmd.Flags().StringVar(&file, "file", "", "Seed file to import")
	cmd.Flags().StringVar(&dir, "dir", "", "Directory of seed files to import")
	cmd.Flags().BoolVar(&execute, "execute", false, "Write records (default is a dry run)")

	return cmd
}

func loadSeed(file, dir string) ([]models.CatalogRecord, error) {
	if file != "" {
		return catalog.LoadFile(file)
	}
	return catalog.LoadDir(dir)
}

func printCounts(cmd *cobra.Command, counts map[models.Game]int) {
	games := make([]string, 0, len(counts))
	for g := range counts {
		games = append(games, string(g))
	}
	sort.Strings(games)
	for _, g := range games {
		fmt.Fprintf(cmd.OutOrStdout(), "  %-10s %d\n", g, counts[models.Game(g)])
	}
}
