package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the whole outfit state with an exported JSON document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening %s: %w", args[0], err)
			}
			defer f.Close()

			return withSession(true, func(ctx context.Context, s *session) error {
				if err := s.svc.Import(f); err != nil {
					return err
				}
				fmt.Fprintf(os.Stdout, "Imported %d outfits for %d characters.\n", len(s.svc.ListOutfits(false)), len(s.svc.Tracked()))
				return nil
			})
		},
	}
}
