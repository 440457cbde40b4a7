package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"wardrobe/internal/host"
	"wardrobe/internal/situation"
)

func characterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "character",
		Short: "Manage tracked characters and their outfit assignments",
	}
	cmd.AddCommand(characterAddCmd())
	cmd.AddCommand(characterRemoveCmd())
	cmd.AddCommand(characterListCmd())
	cmd.AddCommand(characterSelectCmd())
	cmd.AddCommand(characterAssignCmd())
	cmd.AddCommand(characterUnassignCmd())
	return cmd
}

func characterArg(arg string) host.CharacterID {
	return host.CharacterID(arg)
}

func characterAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <character>",
		Short: "Start managing a character's outfits",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(true, func(ctx context.Context, s *session) error {
				if !s.svc.AddCharacter(characterArg(args[0])) {
					fmt.Fprintf(os.Stdout, "%s is already tracked.\n", args[0])
				}
				return nil
			})
		},
	}
}

func characterRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <character>",
		Short: "Stop managing a character's outfits",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(true, func(ctx context.Context, s *session) error {
				removed, err := s.svc.RemoveCharacter(characterArg(args[0]))
				if err != nil {
					return err
				}
				if !removed {
					fmt.Fprintf(os.Stdout, "%s is not tracked.\n", args[0])
				}
				return nil
			})
		},
	}
}

func characterListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tracked characters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(false, func(ctx context.Context, s *session) error {
				for _, c := range s.svc.Tracked() {
					current := s.svc.CurrentOutfit(c)
					if current == "" {
						current = "(none)"
					}
					fmt.Fprintf(os.Stdout, "%s (%s): %s\n", s.svc.CharacterName(c), c, current)

					a, _ := s.svc.Assignment(c)
					categories := make([]situation.Category, 0, len(a.Situations))
					for category := range a.Situations {
						categories = append(categories, category)
					}
					sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })
					for _, category := range categories {
						fmt.Fprintf(os.Stdout, "  %s -> %s\n", category, a.Situations[category])
					}
				}
				return nil
			})
		},
	}
}

func characterSelectCmd() *cobra.Command {
	var none bool
	cmd := &cobra.Command{
		Use:   "select <character> [outfit]",
		Short: "Set a character's current outfit",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			switch {
			case none:
			case len(args) == 2:
				name = args[1]
			default:
				return fmt.Errorf("an outfit or --none is required")
			}
			return withSession(true, func(ctx context.Context, s *session) error {
				return s.svc.SelectOutfit(characterArg(args[0]), name)
			})
		},
	}
	cmd.Flags().BoolVar(&none, "none", false, "Clear the current outfit")
	return cmd
}

func characterAssignCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "assign <character> <situation> <outfit>",
		Short: "Use an outfit whenever the character is in a situation",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := situation.ParseCategory(args[1])
			if err != nil {
				return err
			}
			return withSession(true, func(ctx context.Context, s *session) error {
				if !s.svc.OutfitExists(args[2]) {
					fmt.Fprintf(os.Stdout, "Warning: outfit %q does not exist yet.\n", args[2])
				}
				return s.svc.SetSituationOutfit(characterArg(args[0]), category, args[2])
			})
		},
	}
}

func characterUnassignCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unassign <character> <situation>",
		Short: "Remove a situation mapping",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := situation.ParseCategory(args[1])
			if err != nil {
				return err
			}
			return withSession(true, func(ctx context.Context, s *session) error {
				return s.svc.UnsetSituationOutfit(characterArg(args[0]), category)
			})
		},
	}
}
