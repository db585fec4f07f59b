package core

import "errors"

var (
	// ErrHandlerNotFound is returned when a handler type is not registered,
	// or when a channel handler entry is neither a handler config nor a
	// constructed handler.
	ErrHandlerNotFound = errors.New("handler not found")
	// ErrLoggerNotFound is returned when a channel has no live logger.
	ErrLoggerNotFound = errors.New("logger not found")
	// ErrInvalidConfiguration covers duplicate channels, non-callable
	// processors, formatters that do not implement Formatter and malformed
	// parameter bags.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrNotResolved is returned by a Resolver for an unknown name.
	ErrNotResolved = errors.New("name not resolved")
	// ErrUnknownLevel indicates an unrecognized level name.
	ErrUnknownLevel = errors.New("unknown log level")
)
