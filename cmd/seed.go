package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cantina/internal/database"
)

var seedFile string

// seedCmd loads menu items into the catalog, updating existing ones by name
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the menu into the catalog database",
	Long: `Load menu items into the catalog database.

Items are read from --file, or from database.menu_file in the configuration,
or the built-in menu when neither is set. Existing items are updated by name.`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "Menu YAML file")
}

func runSeed(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	db, err := database.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		return err
	}

	path := seedFile
	if path == "" {
		path = cfg.Database.MenuFile
	}
	items := database.DefaultMenu()
	if path != "" {
		if items, err = database.LoadMenuFile(path); err != nil {
			return err
		}
	}

	n, err := database.Seed(cmd.Context(), db, items)
	if err != nil {
		return err
	}
	log.Info("Menu seeded", zap.Int("created", n), zap.Int("items", len(items)), zap.String("source", sourceName(path)))
	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d menu items (%d new)\n", len(items), n)
	return nil
}

func sourceName(path string) string {
	if path == "" {
		return "built-in"
	}
	return path
}
