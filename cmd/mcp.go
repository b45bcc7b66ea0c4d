package cmd

import (
	"github.com/spf13/cobra"

	"github.com/awxmon/awxmon/internal/mcp"
	"github.com/awxmon/awxmon/internal/version"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server on stdio",
	Long: `Start an MCP (Model Context Protocol) server on stdio.

This allows AI agents to inspect and manage controller jobs through the MCP
protocol.

Example configuration for .mcp.json:
  {
    "mcpServers": {
      "awxmon": {
        "command": "awxmon",
        "args": ["mcp"]
      }
    }
  }`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		server := mcp.NewServer(client, version.Version)
		return server.Serve()
	},
}

func init() {
	RootCmd.AddCommand(mcpCmd)
}
