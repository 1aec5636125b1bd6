package world

import "errors"

var (
	// ErrOutOfRange is returned when a block or chunk is addressed outside
	// the container that must hold it.
	ErrOutOfRange = errors.New("coordinate out of range")

	// ErrPrematureAccess is returned when block data is read before the
	// owning chunk finished generating.
	ErrPrematureAccess = errors.New("chunk accessed before generation completed")

	// ErrConfiguration is returned for world settings that cannot be built.
	ErrConfiguration = errors.New("invalid world configuration")
)
