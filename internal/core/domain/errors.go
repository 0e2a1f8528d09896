package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrLookup indicates a value could not be looked up in a response tree.
	// It covers missing keys, missing attributes and failed invariants.
	ErrLookup = errors.New("ews: lookup failed")

	// ErrAbsent indicates the response tree ran out before the path was exhausted.
	ErrAbsent = fmt.Errorf("%w: value absent", ErrLookup)

	// ErrNodeType indicates a path segment did not fit the node it was applied to,
	// such as an index into a leaf value. It is not a lookup failure.
	ErrNodeType = errors.New("ews: unexpected node type")

	// ErrIDMismatch indicates a response entry carried a different item id
	// than the request entry at the same position.
	ErrIDMismatch = fmt.Errorf("%w: item id mismatch", ErrLookup)

	// ErrInvalidInput indicates a caller supplied an unusable argument.
	ErrInvalidInput = errors.New("ews: invalid input")

	// ErrSessionClosed indicates a call on a session that was already closed.
	ErrSessionClosed = errors.New("ews: session closed")
)
