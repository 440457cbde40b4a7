package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"wardrobe/internal/reconcile"
)

func modeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mode",
		Short: "Inspect or change the inventory modes and system switches",
	}
	cmd.AddCommand(modeGetCmd())
	cmd.AddCommand(modeSetCmd())
	return cmd
}

func modeGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Print the current settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(false, func(ctx context.Context, s *session) error {
				settings := s.svc.Settings()
				fmt.Fprintf(os.Stdout, "enabled: %t\n", settings.Enabled)
				fmt.Fprintf(os.Stdout, "player mode: %s\n", settings.PlayerMode)
				fmt.Fprintf(os.Stdout, "npc mode: %s\n", settings.NPCMode)
				fmt.Fprintf(os.Stdout, "climate priority: %t\n", settings.ClimatePriority)
				fmt.Fprintf(os.Stdout, "quick slot: %t\n", settings.QuickSlotEnabled)
				return nil
			})
		},
	}
}

func modeSetCmd() *cobra.Command {
	var player, npc string
	var enabled, climate, quickSlot bool
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change settings; only the flags given are applied",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(true, func(ctx context.Context, s *session) error {
				settings := s.svc.Settings()
				playerMode, npcMode := settings.PlayerMode, settings.NPCMode
				var err error
				if cmd.Flags().Changed("player") {
					if playerMode, err = reconcile.ParsePolicy(player); err != nil {
						return err
					}
				}
				if cmd.Flags().Changed("npc") {
					if npcMode, err = reconcile.ParsePolicy(npc); err != nil {
						return err
					}
				}
				if err := s.svc.SetModes(playerMode, npcMode); err != nil {
					return err
				}
				if cmd.Flags().Changed("enabled") {
					s.svc.SetEnabled(enabled)
				}
				if cmd.Flags().Changed("climate-priority") {
					s.svc.SetClimatePriority(climate)
				}
				if cmd.Flags().Changed("quick-slot") {
					s.svc.SetQuickSlotEnabled(quickSlot)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&player, "player", "", "Player inventory mode: disabled, automatic or immersive")
	cmd.Flags().StringVar(&npc, "npc", "", "NPC inventory mode: disabled, automatic or immersive")
	cmd.Flags().BoolVar(&enabled, "enabled", true, "Enable outfit management")
	cmd.Flags().BoolVar(&climate, "climate-priority", false, "Check weather before places")
	cmd.Flags().BoolVar(&quickSlot, "quick-slot", false, "Enable the quick slot menu")
	return cmd
}
