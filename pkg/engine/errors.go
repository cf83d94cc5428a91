package engine

import "errors"

// ErrMissingCapabilities is returned when an action is composed without a
// capability descriptor.
var ErrMissingCapabilities = errors.New("engine: model capabilities are required")
