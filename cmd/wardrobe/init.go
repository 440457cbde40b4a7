package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"wardrobe/internal/config"
)

func initCmd() *cobra.Command {
	var projectName string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a new wardrobe project",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(projectName) == "" {
				return fmt.Errorf("--name is required")
			}
			return runInit(projectName)
		},
	}
	cmd.Flags().StringVar(&projectName, "name", "", "Project name")
	return cmd
}

func runInit(projectName string) error {
	if _, err := os.Stat(config.FileName); err == nil {
		return fmt.Errorf("%s already exists", config.FileName)
	}
	if err := os.WriteFile(config.FileName, []byte(config.Scaffold(projectName)), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", config.FileName, err)
	}
	fmt.Fprintf(os.Stdout, "Wrote %s\n", config.FileName)
	return nil
}
