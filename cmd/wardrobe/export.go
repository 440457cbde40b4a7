package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"wardrobe/internal/store"
)

func exportCmd() *cobra.Command {
	var format string
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the whole outfit state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(format, output)
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "Output format: json or yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	return cmd
}

func runExport(format, output string) error {
	var encode func(io.Writer, *store.State) error
	switch format {
	case "json":
		encode = store.EncodeJSON
	case "yaml":
		encode = store.EncodeYAML
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}

	return withSession(false, func(ctx context.Context, s *session) error {
		var w io.Writer = os.Stdout
		if output != "" {
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("creating %s: %w", output, err)
			}
			defer f.Close()
			w = f
		}
		return encode(w, s.svc.Snapshot())
	})
}
