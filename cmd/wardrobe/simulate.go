package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"wardrobe/internal/logging"
	"wardrobe/internal/simulate"
)

func simulateCmd() *cobra.Command {
	var logLevel string
	cmd := &cobra.Command{
		Use:   "simulate <scenario.yaml>",
		Short: "Replay a scripted scenario against an in-memory world",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(args[0], logLevel)
		},
	}
	cmd.Flags().StringVar(&logLevel, "log-level", "warn", "Log level")
	return cmd
}

func runSimulate(path, logLevel string) error {
	logger, err := logging.New(logging.Options{Level: logLevel, Format: "console"})
	if err != nil {
		return err
	}
	defer logger.Sync()

	sc, err := simulate.Load(path)
	if err != nil {
		return err
	}
	report, err := simulate.Run(sc, logger)
	if err != nil {
		return err
	}
	report.Print(os.Stdout)

	if failed := report.Failed(); failed > 0 {
		return fmt.Errorf("simulation failed: %d expectation(s) not met", failed)
	}
	fmt.Fprintln(os.Stdout, "All expectations met.")
	return nil
}
