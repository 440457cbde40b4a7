package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"wardrobe/internal/item"
)

func outfitListCmd() *cobra.Command {
	var favorites bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List outfits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(false, func(ctx context.Context, s *session) error {
				names := s.svc.ListOutfits(favorites)
				if len(names) == 0 {
					fmt.Fprintln(os.Stdout, "No outfits found.")
					return nil
				}
				for _, name := range names {
					marker := ""
					if s.svc.IsFavorite(name) {
						marker = " *"
					}
					fmt.Fprintf(os.Stdout, "%s%s\n", name, marker)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&favorites, "favorites", false, "Only list favorite outfits")
	return cmd
}

func outfitShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show the items of an outfit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(false, func(ctx context.Context, s *session) error {
				items, err := s.svc.OutfitContents(args[0])
				if err != nil {
					return err
				}
				if len(items) == 0 {
					fmt.Fprintln(os.Stdout, "Outfit is empty.")
					return nil
				}
				for _, it := range items {
					fmt.Fprintf(os.Stdout, "%s (%s)\n", s.svc.ItemName(it), it)
				}
				return nil
			})
		},
	}
}

func outfitAddCmd() *cobra.Command {
	var create, replace bool
	var worn string
	cmd := &cobra.Command{
		Use:   "add <name> [item...]",
		Short: "Add items to an outfit",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(true, func(ctx context.Context, s *session) error {
				return runOutfitAdd(s, args[0], itemArgs(args[1:]), create, replace, worn)
			})
		},
	}
	cmd.Flags().BoolVar(&create, "create", false, "Create the outfit if it does not exist")
	cmd.Flags().BoolVar(&replace, "replace", false, "Remove outfit items that share a slot with the new ones")
	cmd.Flags().StringVar(&worn, "worn-by", "", "Also add everything this character is wearing")
	return cmd
}

func runOutfitAdd(s *session, name string, items []item.ID, create, replace bool, worn string) error {
	report, err := s.svc.AddItemsChecked(name, items, create, replace)
	if err != nil {
		return err
	}
	if len(report.Conflicts) > 0 {
		for _, it := range report.Conflicts {
			fmt.Fprintf(os.Stdout, "%s (%s) shares a slot with an item in %q\n", s.svc.ItemName(it), it, name)
		}
		return fmt.Errorf("%d item(s) conflict with outfit %q, rerun with --replace to swap them in", len(report.Conflicts), name)
	}
	for _, it := range report.Removed {
		fmt.Fprintf(os.Stdout, "Removed %s (%s)\n", s.svc.ItemName(it), it)
	}
	for _, it := range report.Added {
		fmt.Fprintf(os.Stdout, "Added %s (%s)\n", s.svc.ItemName(it), it)
	}
	if worn == "" {
		return nil
	}
	return s.svc.AddWornItems(name, characterArg(worn))
}

func outfitRemoveCmd() *cobra.Command {
	var conflicting bool
	cmd := &cobra.Command{
		Use:   "remove <name> <item...>",
		Short: "Remove items from an outfit",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(true, func(ctx context.Context, s *session) error {
				if !conflicting {
					return s.svc.RemoveItems(args[0], itemArgs(args[1:])...)
				}
				for _, candidate := range itemArgs(args[1:]) {
					removed, err := s.svc.RemoveConflicting(args[0], candidate)
					if err != nil {
						return err
					}
					for _, it := range removed {
						fmt.Fprintf(os.Stdout, "Removed %s (%s)\n", s.svc.ItemName(it), it)
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&conflicting, "conflicting", false, "Remove the items that share a body slot with the given items")
	return cmd
}

func itemArgs(args []string) []item.ID {
	out := make([]item.ID, 0, len(args))
	for _, arg := range args {
		out = append(out, item.ID(arg))
	}
	return out
}
