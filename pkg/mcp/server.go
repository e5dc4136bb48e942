package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	suiji "github.com/QinMou000/SuiJi/pkg"
	"github.com/QinMou000/SuiJi/pkg/store"
	"github.com/QinMou000/SuiJi/pkg/utils"
)

type SuijiMCPServer struct {
	mcpServer *server.MCPServer
	store     *store.Store
	DbPath    string
}

// NewSuijiMCPServer spins up an MCP server backed by the SQLite database at dbPath.
func NewSuijiMCPServer(dbPath string) (*SuijiMCPServer, error) {
	resolvedPath, err := utils.ResolveAndEnsureDBPath(dbPath)
	if err != nil {
		return nil, err
	}

	// Create base MCP server.
	s := server.NewMCPServer(
		"Suiji MCP Server",
		suiji.Version,
		server.WithResourceCapabilities(true, true),
		server.WithLogging(),
		server.WithRecovery(),
	)

	// Open applies pending schema migrations before returning.
	st, err := store.Open(resolvedPath)
	if err != nil {
		return nil, err
	}

	return &SuijiMCPServer{
		mcpServer: s,
		store:     st,
		DbPath:    resolvedPath,
	}, nil
}

// RegisterAllTools wires the full tool surface onto the raw server.
func (s *SuijiMCPServer) RegisterAllTools() {
	RegisterPingTool(s.mcpServer)
	RegisterSaveNoteTool(s.mcpServer, s.store)
	RegisterGetNoteTool(s.mcpServer, s.store)
	RegisterListNotesTool(s.mcpServer, s.store)
	RegisterSearchNotesTool(s.mcpServer, s.store)
	RegisterDeleteNoteTool(s.mcpServer, s.store)
	RegisterListTagsTool(s.mcpServer, s.store)
	RegisterSaveTransactionTool(s.mcpServer, s.store)
	RegisterListTransactionsTool(s.mcpServer, s.store)
	RegisterListCategoriesTool(s.mcpServer, s.store)
	RegisterListAccountsTool(s.mcpServer, s.store)
	RegisterSaveCountdownTool(s.mcpServer, s.store)
	RegisterListCountdownsTool(s.mcpServer, s.store)
}

// Start runs the stdio event loop. Make sure to register tools beforehand.
func (s *SuijiMCPServer) Start() error {
	return server.ServeStdio(s.mcpServer)
}

// Store returns the underlying document store.
func (s *SuijiMCPServer) Store() *store.Store {
	return s.store
}

// MCPRawServer exposes the raw mcp-go server (useful for additional configuration).
func (s *SuijiMCPServer) MCPRawServer() *server.MCPServer {
	return s.mcpServer
}

// Close cleans up allocated resources.
func (s *SuijiMCPServer) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}
