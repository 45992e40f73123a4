// Package driving lists the operations the CLI and the MCP server call.
// internal/core/services provides the implementations.
package driving
