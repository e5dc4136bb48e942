package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/QinMou000/SuiJi/pkg/mcp"
)

var serverCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Suiji MCP server (stdio)",
	Long: `Start a Model Context Protocol (MCP) server that exposes notes, tags, search,
transactions, and countdowns as MCP tools via STDIO.

The --dbpath flag is optional. If not provided, a system-specific default location is used:
- Windows: %USERPROFILE%\AppData\Roaming\suiji\suiji.db
- macOS: ~/Library/Application Support/suiji/suiji.db
- Linux: ~/.local/share/suiji/suiji.db

Example:

  suiji mcp --dbpath suiji.db | tee server.log

  # Or simply use the default location:
  suiji mcp`,
	RunE: func(cmd *cobra.Command, args []string) error {
		srv, err := mcp.NewSuijiMCPServer(dbPath)
		if err != nil {
			return err
		}
		defer srv.Close()

		srv.RegisterAllTools()

		// Log to stderr so we don't contaminate the JSON-RPC stream on stdout.
		fmt.Fprintf(os.Stderr, "Suiji MCP server started. DB: %s\n", srv.DbPath)
		fmt.Fprintln(os.Stderr, "Available tools: ping, save_note, get_note, list_notes, search_notes, delete_note, list_tags, save_transaction, list_transactions, list_categories, list_accounts, save_countdown, list_countdowns")
		fmt.Fprintln(os.Stderr, "Listening for MCP JSON-RPC on STDIN/STDOUT ... (Ctrl+C to quit)")

		// Run the server (blocks until stdio closes).
		return srv.Start()
	},
}
