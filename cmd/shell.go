package cmd

import (
	"github.com/spf13/cobra"
	"github.com/storeit-dev/storeit/pkg/client"
	"github.com/storeit-dev/storeit/pkg/shell"
)

func NewShell() *cobra.Command {
	var serverURL string

	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Browse and manage files interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			sh := shell.New(client.New(serverURL))
			return sh.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&serverURL, "server", "s", "http://localhost:8080", "Server base URL")
	return cmd
}
