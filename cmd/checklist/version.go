package main

import (
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  "Print the version number of the checklist CLI",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("checklist version %s\n", version)
		},
	}
}
