package mcpserver

import (
	"errors"
	"log/slog"

	"github.com/rhuss/vrmaction/pkg/api"
	"github.com/rhuss/vrmaction/pkg/engine"
)

// toolError converts an engine error into the APIError returned to the
// client. Errors that are not already API errors are logged and replaced
// by a generic server error.
func toolError(err error) error {
	if errors.Is(err, engine.ErrMissingCapabilities) {
		return api.NewMissingCapabilitiesError()
	}
	if apiErr, ok := api.AsError(err); ok {
		return apiErr
	}
	slog.Error("tool call failed", "error", err)
	return api.NewServerError("internal error")
}
