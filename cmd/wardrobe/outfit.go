package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func outfitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "outfit",
		Short: "Manage outfits",
	}
	cmd.AddCommand(outfitCreateCmd())
	cmd.AddCommand(outfitDeleteCmd())
	cmd.AddCommand(outfitRenameCmd())
	cmd.AddCommand(outfitFavoriteCmd())
	cmd.AddCommand(outfitListCmd())
	cmd.AddCommand(outfitShowCmd())
	cmd.AddCommand(outfitAddCmd())
	cmd.AddCommand(outfitRemoveCmd())
	return cmd
}

func outfitCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create an empty outfit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(true, func(ctx context.Context, s *session) error {
				return s.svc.CreateOutfit(args[0])
			})
		},
	}
}

func outfitDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete an outfit and clear every reference to it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(true, func(ctx context.Context, s *session) error {
				if !s.svc.OutfitExists(args[0]) {
					fmt.Fprintf(os.Stdout, "No outfit named %q.\n", args[0])
					return nil
				}
				s.svc.DeleteOutfit(args[0])
				return nil
			})
		},
	}
}

func outfitRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <name> <new-name>",
		Short: "Rename an outfit",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(true, func(ctx context.Context, s *session) error {
				return s.svc.RenameOutfit(args[0], args[1])
			})
		},
	}
}

func outfitFavoriteCmd() *cobra.Command {
	var off bool
	cmd := &cobra.Command{
		Use:   "favorite <name>",
		Short: "Mark an outfit as favorite",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(true, func(ctx context.Context, s *session) error {
				return s.svc.SetFavorite(args[0], !off)
			})
		},
	}
	cmd.Flags().BoolVar(&off, "off", false, "Clear the favorite flag instead")
	return cmd
}
