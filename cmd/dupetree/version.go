package main

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the version information",
		Long:  "Displays the build version and Go version used to build this tool.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()

			info, ok := debug.ReadBuildInfo()
			if !ok || info.Main.Version == "" {
				fmt.Fprintln(out, "version: unknown")
				return
			}

			fmt.Fprintln(out, "tool version\t", info.Main.Version)
			fmt.Fprintln(out, "go version\t", info.GoVersion)
		},
	}
}
