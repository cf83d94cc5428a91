package mcpserver

import (
	"context"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rhuss/vrmaction/pkg/engine"
	"github.com/rhuss/vrmaction/pkg/transport"
)

// ServerName is the implementation name reported to MCP clients.
const ServerName = "vrmaction"

// MetaActionID is the result _meta key that carries the history ID of a
// generated action. MetaActionIDs carries the IDs of a sequence.
const (
	MetaActionID  = "vrmaction/action_id"
	MetaActionIDs = "vrmaction/action_ids"
)

const instructions = `Generates pose actions (facial expressions and bone rotations) for VRM avatars.
Call get_model_capabilities or pass the model's own expression and bone names as
model_capabilities so that generated actions only reference what the model has.`

// Options configures the MCP server.
type Options struct {
	Version string
	Logger  *slog.Logger
}

// New creates an MCP server with all vrmaction tools registered and the
// standard middleware installed.
func New(eng *engine.Engine, opts Options) *mcp.Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	version := opts.Version
	if version == "" {
		version = "dev"
	}

	server := mcp.NewServer(
		&mcp.Implementation{Name: ServerName, Version: version},
		&mcp.ServerOptions{Instructions: instructions},
	)

	registerTools(server, &tools{eng: eng})

	middleware := append(transport.Defaults(logger), Tenant())
	server.AddReceivingMiddleware(middleware...)

	return server
}

// RunStdio serves the server on stdin/stdout until the client disconnects
// or ctx is cancelled.
func RunStdio(ctx context.Context, server *mcp.Server) error {
	slog.Info("serving MCP over stdio")
	return server.Run(ctx, &mcp.StdioTransport{})
}
