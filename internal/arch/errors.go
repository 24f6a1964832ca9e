package arch

import (
	"errors"
	"fmt"
)

// Table consistency faults. They describe a broken architecture definition,
// not a bad input stream, and are wrapped in a ConsistencyError.
var (
	ErrDuplicateKey          = errors.New("duplicate opcode key")
	ErrInvalidEntry          = errors.New("invalid opcode entry")
	ErrInvalidKey            = errors.New("invalid opcode key")
	ErrInvalidMetadata       = errors.New("invalid architecture metadata")
	ErrLeadinCollision       = errors.New("leadin collision")
	ErrLengthExceedsMax      = errors.New("instruction length exceeds maximum")
	ErrMalformedTemplate     = errors.New("malformed template")
	ErrMissingTemplate       = errors.New("missing template")
	ErrNegativeOperandLength = errors.New("negative operand length")
	ErrOperandMismatch       = errors.New("template references more operand bytes than available")
	ErrUnknownMode           = errors.New("unknown addressing mode")
)

// ConsistencyError is a table consistency fault found while loading an
// architecture definition.
type ConsistencyError struct {
	Subject string // offending element, for example "opcode 0x18a9" or "mode indirecty"
	Err     error
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("%s: %s", e.Subject, e.Err)
}

func (e *ConsistencyError) Unwrap() error {
	return e.Err
}

func opcodeFault(key OpcodeKey, err error) error {
	return &ConsistencyError{Subject: "opcode " + key.String(), Err: err}
}

func modeFault(name string, err error) error {
	return &ConsistencyError{Subject: "mode " + name, Err: err}
}

func leadinFault(value uint, err error) error {
	return &ConsistencyError{Subject: fmt.Sprintf("leadin 0x%02x", value), Err: err}
}

func metadataFault(field string, err error) error {
	return &ConsistencyError{Subject: "architecture " + field, Err: err}
}
