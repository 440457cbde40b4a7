package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "wardrobe",
		Short: "Situation-aware outfit manager",
	}
	root.Version = version
	root.SetVersionTemplate("{{.Version}}\n")
	root.AddCommand(initCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(outfitCmd())
	root.AddCommand(characterCmd())
	root.AddCommand(classifyCmd())
	root.AddCommand(refreshCmd())
	root.AddCommand(exportCmd())
	root.AddCommand(importCmd())
	root.AddCommand(modeCmd())
	root.AddCommand(validateCmd())
	root.AddCommand(simulateCmd())
	root.AddCommand(versionCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
