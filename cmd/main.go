package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cantina/internal/config"
	"cantina/internal/interpreter"
	"cantina/internal/logger"
)

var configFile string

// rootCmd is the cantina command line
var rootCmd = &cobra.Command{
	Use:   "cantina",
	Short: "Conversational food ordering assistant",
	Long: `Cantina takes food orders in plain English.

Available subcommands:
  serve     - Run the HTTP and websocket API
  seed      - Load the menu into the catalog database
  interpret - Run one utterance through the interpreter offline
  token     - Sign an API bearer token`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "configs/config.yaml", "Path to configuration file")
	rootCmd.AddCommand(serveCmd, seedCmd, interpretCmd, tokenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads the configuration and builds the logger shared by all commands
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	log, err := logger.New(cfg.LogLevel, cfg.Development)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

// loadInterpreter compiles the configured rule file, or the built-in rules
// when none is configured.
func loadInterpreter(cfg config.InterpreterConfig) (*interpreter.Interpreter, error) {
	if cfg.RulesFile == "" {
		return interpreter.Default(), nil
	}
	rules, err := interpreter.LoadRules(cfg.RulesFile)
	if err != nil {
		return nil, err
	}
	return interpreter.New(rules)
}
