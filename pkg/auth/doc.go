// Package auth provides pluggable authentication for the vrmaction HTTP
// transport. The stdio transport is trusted and never authenticates.
//
// Authentication uses a chain-of-responsibility pattern with three-outcome
// voting: each authenticator returns Yes (identity found), No (credentials
// invalid), or Abstain (can't handle). A configurable default voter decides
// when all authenticators abstain.
//
// Auth is implemented as HTTP middleware in front of the MCP handler. The
// middleware injects the tenant into the request context so that the
// action history is scoped per tenant.
package auth
