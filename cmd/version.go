package cmd

import (
	"runtime"

	"github.com/spf13/cobra"
)

var (
	Version   = "development"
	CommitSHA = "unknown"
)

func NewVersion() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Check the version info",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.Printf("storeit %s\n", Version)
			cmd.Printf("- commit: %s\n", CommitSHA)
			cmd.Printf("- os/type: %s\n", runtime.GOOS)
			cmd.Printf("- os/arch: %s\n", runtime.GOARCH)
			cmd.Printf("- go/version: %s\n", runtime.Version())
			return nil
		},
	}
}
