// Package storage defines the action history contract shared by the
// storage adapters (memory, postgres), together with sentinel errors and
// tenant context helpers.
//
// The history is optional. Components that record actions accept a nil
// Store and skip persistence.
package storage
