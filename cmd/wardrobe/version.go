package main

import (
	"runtime/debug"

	"github.com/spf13/cobra"
)

// version is set at link time with -ldflags "-X main.version=...".
var version = "dev"

func versionCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print wardrobe version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(version)
			if !verbose {
				return
			}
			info, ok := debug.ReadBuildInfo()
			if !ok {
				return
			}
			cmd.Printf("go: %s\n", info.GoVersion)
			for _, setting := range info.Settings {
				if setting.Key == "vcs.revision" || setting.Key == "vcs.time" {
					cmd.Printf("%s: %s\n", setting.Key, setting.Value)
				}
			}
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Also print the toolchain and source revision")
	return cmd
}
