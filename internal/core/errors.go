package core

import "errors"

var (
	// ErrUnknownToken is returned when a request carries a token that is not registered.
	ErrUnknownToken = errors.New("unknown session token")
	// ErrUnknownBroadcastMode is returned for an unsupported broadcast mode.
	ErrUnknownBroadcastMode = errors.New("unknown broadcast mode")
)
