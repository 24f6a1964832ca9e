package decoder

import (
	"errors"
	"fmt"
)

// Runtime decode errors. They are wrapped in a *Failure.
var (
	ErrUnknownOpcode     = errors.New("unknown opcode")
	ErrInsufficientBytes = errors.New("insufficient bytes")
)

// Failure is returned when no instruction could be decoded at an address.
// The caller is expected to output a placeholder for the consumed bytes and
// to advance by at least one byte.
type Failure struct {
	Address uint32 // address the decoding started at
	Bytes   []byte // bytes consumed before the failure was detected
	Err     error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("decoding instruction at address 0x%04x: %s", f.Address, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}
