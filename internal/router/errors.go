// Package router classifies inbound platform events and turns each one into
// at most one reply call, plus any follow-up platform action such as leaving
// a group.
package router

import "errors"

// Sentinel errors for router operations.
var (
	// ErrUnknownEvent indicates an event variant the router has no handler
	// for. It points at a converter or platform version skew, not at bad
	// user input.
	ErrUnknownEvent = errors.New("router: unknown event")

	// ErrUnknownMessage indicates a message content variant with no handler.
	ErrUnknownMessage = errors.New("router: unknown message")

	// ErrUnknownSource indicates an event whose source is missing or of an
	// unknown kind where the handler needs to branch on it.
	ErrUnknownSource = errors.New("router: unknown source")

	// ErrNoPlatform indicates no platform client has been configured.
	ErrNoPlatform = errors.New("router: no platform configured")

	// ErrNoBuilder indicates no reply builder has been configured.
	ErrNoBuilder = errors.New("router: no reply builder configured")
)
