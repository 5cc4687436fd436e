package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "playmatchctl",
		Short:         "Offline playlist matching tools",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.AddCommand(newMatchCommand())
	rootCmd.AddCommand(newHashCommand())
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}
