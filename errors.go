// errors.go - sentinel error kinds, wrapped with github.com/pkg/errors
// so callers can errors.Is/errors.Cause them.

package main

import "github.com/pkg/errors"

// Sentinel error kinds. Components wrap one of these with context via
// errors.Wrapf so the CLI can print the full chain while call sites can
// still errors.Is against the kind.
var (
	// ErrInvalidImage is returned when a loaded file's signature, size, or
	// geometry does not match the expected format.
	ErrInvalidImage = errors.New("invalid image")

	// ErrIO is returned when an underlying read/write to a host file fails.
	ErrIO = errors.New("io failure")

	// ErrUnsupportedTapeBlock is returned when the tape engine encounters a
	// TZX block type it does not implement.
	ErrUnsupportedTapeBlock = errors.New("unsupported tape block")

	// ErrUnknownOpcode marks a Z80 prefix path the core has not modeled.
	// Callers treat it as NOP-equivalent timing rather than aborting.
	ErrUnknownOpcode = errors.New("unknown opcode")
)

// wrapInvalidImage annotates ErrInvalidImage with the failing detail.
func wrapInvalidImage(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidImage, format, args...)
}

// wrapIO annotates ErrIO with the failing operation, preserving the
// underlying cause via errors.Cause while keeping ErrIO in the chain.
func wrapIO(cause error, format string, args ...interface{}) error {
	if cause == nil {
		cause = ErrIO
	}
	return errors.Wrapf(cause, format, args...)
}
