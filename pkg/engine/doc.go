// Package engine turns action requests into concrete action records for a
// specific model.
//
// Compose is the pure core: it looks up the action template, resolves each
// expression and bone against the model's capabilities, scales and clamps
// the result, and synthesizes bones from keywords when no template exists.
// Engine wraps Compose with request defaults, logging, metrics and an
// optional action history.
package engine
