package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "todox",
		Short: "Multi-tenant todo tracking with a full audit trail",
	}

	rootCmd.AddCommand(
		NewServeCommand(),
		NewTokenCommand(),
		NewVersionCommand(),
	)

	return rootCmd
}
