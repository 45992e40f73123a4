package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/litdb/litdb/internal/adapters/driving/mcp"
)

func TestMCPServe_RequiresSearchService(t *testing.T) {
	cleanup := setupTestServices(t)
	defer cleanup()
	searchService = nil

	_, err := execute(t, "mcp", "serve")
	assert.ErrorIs(t, err, mcp.ErrMissingSearchService)
}

func TestMCPServe_Flags(t *testing.T) {
	port := mcpServeCmd.Flags().Lookup("port")
	if assert.NotNil(t, port) {
		assert.Equal(t, "p", port.Shorthand)
		assert.Equal(t, "0", port.DefValue)
	}
	host := mcpServeCmd.Flags().Lookup("host")
	if assert.NotNil(t, host) {
		assert.Equal(t, "localhost", host.DefValue)
	}
}
