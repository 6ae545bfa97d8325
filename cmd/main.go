package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cmsctl",
	Short: "ConsultCMS server and admin tool",
	Long: `ConsultCMS serves the content API for the public site and the staff dashboard.

Run without a sub-command to start the server. Configuration comes from the
environment and an optional .env file in the working directory.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
