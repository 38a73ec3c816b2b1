package main

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"dupetree/internal/hash"
)

func newAlgorithmsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "algorithms",
		Short: "List supported content digest algorithms",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"Name", "Bytes", "Cryptographic", "Default"})
			table.SetBorder(false)
			table.SetCenterSeparator("")

			for _, algo := range hash.Algorithms() {
				def := ""
				if algo.Name == hash.DefaultAlgorithm {
					def = "*"
				}
				table.Append([]string{
					algo.Name,
					fmt.Sprintf("%d", algo.Size),
					fmt.Sprintf("%t", algo.Cryptographic),
					def,
				})
			}

			table.Render()
		},
	}
}
