// Package arch contains the validated, immutable architecture tables used
// by the decoder: the opcode table, the addressing mode templates and the
// set of leadin bytes that start multi byte opcodes.
//
// An Architecture is created from a Definition by New, which checks the
// whole definition up front. A broken definition never produces an
// Architecture, so decoding never proceeds with inconsistent tables.
// Architectures hold no mutable state and can be shared between goroutines.
package arch

import (
	"fmt"

	"github.com/retroenv/retrogolib/set"
	"github.com/retroenv/tabledisasm/internal/operand"
	"golang.org/x/exp/slices"
)

// OpcodeKey is an opcode of 1 to 3 bytes combined into one number, the
// first byte read from the stream being the most significant.
type OpcodeKey uint32

// String returns the key as hex number with an even number of digits.
func (k OpcodeKey) String() string {
	switch {
	case k <= 0xff:
		return fmt.Sprintf("0x%02x", uint32(k))
	case k <= 0xffff:
		return fmt.Sprintf("0x%04x", uint32(k))
	default:
		return fmt.Sprintf("0x%06x", uint32(k))
	}
}

// Entry is a validated opcode table row.
type Entry struct {
	Length   int // total instruction length in bytes, including opcode bytes
	Mnemonic string
	Mode     Mode
}

// Architecture contains the tables and constants of one CPU.
type Architecture struct {
	name         string
	description  string
	dataWidth    int
	addressWidth int
	maxLength    int

	leadins     set.Set[byte]
	leadinPairs set.Set[uint16]
	opcodes     map[OpcodeKey]Entry
	templates   map[Mode]operand.Template
}

// Name returns the short architecture identifier.
func (a *Architecture) Name() string {
	return a.name
}

// Description returns the human readable architecture description.
func (a *Architecture) Description() string {
	return a.description
}

// DataWidth returns the data bus width in bits.
func (a *Architecture) DataWidth() int {
	return a.dataWidth
}

// AddressWidth returns the address bus width in bits.
func (a *Architecture) AddressWidth() int {
	return a.addressWidth
}

// MaxLength returns the maximum instruction length in bytes.
func (a *Architecture) MaxLength() int {
	return a.maxLength
}

// MaxAddress returns the highest address of the address space.
func (a *Architecture) MaxAddress() uint32 {
	return uint32(1<<uint(a.addressWidth) - 1)
}

// IsLeadin returns whether the byte starts a multi byte opcode.
func (a *Architecture) IsLeadin(b byte) bool {
	return a.leadins.Contains(b)
}

// IsLeadinPair returns whether the two byte prefix is followed by a third
// opcode byte.
func (a *Architecture) IsLeadinPair(prefix uint16) bool {
	return a.leadinPairs.Contains(prefix)
}

// Lookup returns the opcode table entry for the key.
func (a *Architecture) Lookup(key OpcodeKey) (Entry, bool) {
	entry, ok := a.opcodes[key]
	return entry, ok
}

// Keys returns all opcode keys in ascending order.
func (a *Architecture) Keys() []OpcodeKey {
	keys := make([]OpcodeKey, 0, len(a.opcodes))
	for key := range a.opcodes {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

// Template returns the operand template of an addressing mode.
func (a *Architecture) Template(mode Mode) (operand.Template, bool) {
	t, ok := a.templates[mode]
	return t, ok
}

// FormatOperand renders the operand bytes of an instruction using the
// template of the addressing mode.
func (a *Architecture) FormatOperand(mode Mode, operands []byte) (string, error) {
	t, ok := a.templates[mode]
	if !ok {
		return "", fmt.Errorf("%w for mode %s", ErrMissingTemplate, mode)
	}
	return t.Format(operands)
}

// OpcodeSize returns the number of opcode bytes that the decoder reads to
// build the key: 1 for plain opcodes, 2 after a leadin byte and 3 after a
// leadin pair.
func OpcodeSize(key OpcodeKey) int {
	switch {
	case key <= 0xff:
		return 1
	case key <= 0xffff:
		return 2
	default:
		return 3
	}
}
