package cli

import (
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/litdb/litdb/internal/adapters/driving/mcp"
	"github.com/litdb/litdb/internal/logger"
)

// mcpRoot is the database directory reported to MCP clients.
var mcpRoot string

var (
	mcpPort int
	mcpHost string
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the database to MCP clients",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the read-only MCP server",
	Long: `Serve vector, full-text and similarity search, source details,
citations and tags to an MCP client.

The server speaks JSON-RPC on stdin and stdout unless --port is given, in
which case it serves the streamable HTTP transport.

An assistant configuration looks like:

  {"mcpServers": {"litdb": {
      "command": "litdb",
      "args": ["mcp", "serve"],
      "env": {"LITDB_ROOT": "/path/to/database"}}}}`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntVarP(&mcpPort, "port", "p", 0, "serve HTTP on this port instead of stdio")
	mcpServeCmd.Flags().StringVar(&mcpHost, "host", "localhost", "HTTP listen host")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	server, err := mcp.NewServer(&mcp.Ports{
		Search: searchService,
		Ingest: ingestService,
		Tags:   tagService,
		Root:   mcpRoot,
	})
	if err != nil {
		return err
	}

	if mcpPort == 0 {
		logger.Debug("MCP server on stdio for %s", mcpRoot)
		return server.Run(cmd.Context())
	}
	addr := net.JoinHostPort(mcpHost, strconv.Itoa(mcpPort))
	cmd.PrintErrf("MCP server listening on http://%s\n", addr)
	return server.RunHTTP(cmd.Context(), addr)
}
