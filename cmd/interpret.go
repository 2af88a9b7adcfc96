package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"cantina/internal/database"
	"cantina/internal/interpreter"
	"cantina/internal/ledger"
	"cantina/internal/models"
)

var interpretMenu string

// interpretCmd runs utterances through the interpreter without a database
var interpretCmd = &cobra.Command{
	Use:   "interpret [utterance...]",
	Short: "Run utterances through the interpreter offline",
	Long: `Classify and parse each utterance and apply its commands to a scratch order.

Every argument is one utterance; they share the same order, so
  cantina interpret "two crunchy tacos" "remove one crunchy taco"
ends with a single taco.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInterpret,
}

func init() {
	interpretCmd.Flags().StringVarP(&interpretMenu, "menu", "m", "", "Menu YAML file (defaults to database.menu_file or the built-in menu)")
}

func runInterpret(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	in, err := loadInterpreter(cfg.Interpreter)
	if err != nil {
		return fmt.Errorf("failed to load interpreter rules: %w", err)
	}

	path := interpretMenu
	if path == "" {
		path = cfg.Database.MenuFile
	}
	catalog := database.DefaultMenu()
	if path != "" {
		if catalog, err = database.LoadMenuFile(path); err != nil {
			return err
		}
	}

	l := ledger.New()
	out := cmd.OutOrStdout()
	for _, utterance := range args {
		interpretOne(out, in, l, catalog, utterance)
	}

	fmt.Fprintf(out, "order:\n")
	if l.IsEmpty() {
		fmt.Fprintf(out, "  (empty)\n")
	} else {
		for _, line := range strings.Split(l.Summary(), "\n\n") {
			fmt.Fprintf(out, "  %s\n", line)
		}
	}
	fmt.Fprintf(out, "total: $%s\n", l.Total().StringFixed(2))
	return nil
}

func interpretOne(out io.Writer, in *interpreter.Interpreter, l *ledger.Ledger, catalog []models.MenuItem, utterance string) {
	intent := in.Classify(utterance)
	fmt.Fprintf(out, "> %s\n", utterance)
	fmt.Fprintf(out, "intent: %s\n", intent)
	if !intent.IsOrderIntent() {
		return
	}

	commands := in.Parse(utterance, catalog)
	for _, cmd := range commands {
		name := "(not on the menu)"
		if cmd.Item != nil {
			name = ledger.Key(cmd.Item.Name, cmd.Size, cmd.Modifications)
		}
		fmt.Fprintf(out, "  %s %d x %s\n", cmd.Intent, cmd.Quantity, name)
	}
	if summary, _ := ledger.Apply(l, commands); summary != "" {
		fmt.Fprintf(out, "summary: %s\n", summary)
	}
}
