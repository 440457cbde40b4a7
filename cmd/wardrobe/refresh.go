package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"wardrobe/internal/item"
)

func refreshCmd() *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Resolve and reconcile every tracked character once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(true, func(ctx context.Context, s *session) error {
				if !s.svc.Enabled() {
					fmt.Fprintln(os.Stdout, "Outfit system is disabled.")
					return nil
				}
				report := s.svc.Refresh(reason)
				fmt.Fprintf(os.Stdout, "Pass %s\n", report.ID)
				for _, res := range report.Results {
					if res.Skipped {
						fmt.Fprintf(os.Stdout, "  %s: skipped\n", res.Character)
						continue
					}
					fmt.Fprintf(os.Stdout, "  %s (%s): equipped [%s] unequipped [%s] added [%s] removed [%s]",
						res.Character, res.Policy,
						joinIDs(res.Equipped), joinIDs(res.Unequipped), joinIDs(res.Added), joinIDs(res.Removed))
					if res.Failures > 0 {
						fmt.Fprintf(os.Stdout, " failures %d", res.Failures)
					}
					fmt.Fprintln(os.Stdout)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "manual refresh", "Reason recorded in the logs")
	return cmd
}

func joinIDs(items []item.ID) string {
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = it.String()
	}
	return strings.Join(parts, " ")
}
