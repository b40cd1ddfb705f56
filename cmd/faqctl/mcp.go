package main

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/dgallion1/faqdesk/internal/mcpserver"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the FAQ tools over MCP on stdin/stdout",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log.Info("serving mcp over stdio")
		return server.ServeStdio(mcpserver.NewServer(ws, log))
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
