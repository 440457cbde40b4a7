package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func classifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <character>",
		Short: "Show which situation a character is in and the outfit it maps to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(false, func(ctx context.Context, s *session) error {
				c := characterArg(args[0])
				category, ok := s.svc.Classify(c)
				if !ok {
					return fmt.Errorf("%s is not tracked or not loaded", c)
				}
				outfit, mapped := s.svc.SituationOutfit(c, category)
				if !mapped {
					outfit = "(unmapped)"
				}
				sig := s.svc.Signals(c)
				fmt.Fprintf(os.Stdout, "Situation: %s\n", category)
				fmt.Fprintf(os.Stdout, "Outfit: %s\n", outfit)
				fmt.Fprintf(os.Stdout, "Interior: %t, snowy: %t, rainy: %t, %s\n", sig.Interior, sig.Snowy, sig.Rainy, sig.DayPart)
				return nil
			})
		},
	}
}
