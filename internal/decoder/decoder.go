// Package decoder decodes single instructions from memory using the tables
// of an architecture.
package decoder

import (
	"fmt"

	"github.com/retroenv/tabledisasm/internal/arch"
)

// Decoder decodes instructions of one architecture. It keeps no state
// between calls and can be used concurrently.
type Decoder struct {
	arch *arch.Architecture
}

// New returns a decoder for the architecture.
func New(ar *arch.Architecture) *Decoder {
	return &Decoder{
		arch: ar,
	}
}

// Architecture returns the architecture used for decoding.
func (d *Decoder) Architecture() *arch.Architecture {
	return d.arch
}

// Decode decodes the instruction that starts at the address. Unknown opcodes
// and instructions that are cut off by the end of the memory return a
// *Failure that wraps ErrUnknownOpcode or ErrInsufficientBytes.
func (d *Decoder) Decode(mem Memory, address uint32) (Instruction, error) {
	r := &reader{
		mem:     mem,
		address: address,
		limit:   d.arch.MaxAddress(),
		bytes:   make([]byte, 0, d.arch.MaxLength()),
	}

	entry, err := d.lookup(r)
	if err != nil {
		return Instruction{}, err
	}

	opcodeSize := len(r.bytes)
	for range entry.Length - opcodeSize {
		if _, err := r.next(); err != nil {
			return Instruction{}, r.failure(ErrInsufficientBytes, err)
		}
	}

	operand, err := d.arch.FormatOperand(entry.Mode, r.bytes[opcodeSize:])
	if err != nil {
		return Instruction{}, fmt.Errorf("formatting operand at address 0x%04x: %w", address, err)
	}

	return Instruction{
		Address:  address,
		Bytes:    r.bytes,
		Mnemonic: entry.Mnemonic,
		Mode:     entry.Mode,
		Operand:  operand,
	}, nil
}

// lookup reads the opcode bytes and returns the matching table entry.
// A leadin byte is combined with the following byte, a leadin pair with
// the byte after it.
func (d *Decoder) lookup(r *reader) (arch.Entry, error) {
	b, err := r.next()
	if err != nil {
		return arch.Entry{}, r.failure(ErrInsufficientBytes, err)
	}
	key := arch.OpcodeKey(b)

	if d.arch.IsLeadin(b) {
		b, err = r.next()
		if err != nil {
			return arch.Entry{}, r.failure(ErrInsufficientBytes, err)
		}
		key = key<<8 | arch.OpcodeKey(b)

		if d.arch.IsLeadinPair(uint16(key)) {
			b, err = r.next()
			if err != nil {
				return arch.Entry{}, r.failure(ErrInsufficientBytes, err)
			}
			key = key<<8 | arch.OpcodeKey(b)
		}
	}

	entry, ok := d.arch.Lookup(key)
	if !ok {
		return arch.Entry{}, r.failure(ErrUnknownOpcode, nil)
	}
	return entry, nil
}

// reader reads the bytes of a single instruction.
type reader struct {
	mem     Memory
	address uint32
	limit   uint32 // highest address of the address space
	bytes   []byte
}

func (r *reader) next() (byte, error) {
	offset := uint64(len(r.bytes))
	if uint64(r.address)+offset > uint64(r.limit) {
		return 0, fmt.Errorf("%w: end of address space", ErrOutOfRange)
	}

	address := r.address + uint32(offset)
	b, err := r.mem.ReadMemory(address)
	if err != nil {
		return 0, fmt.Errorf("reading memory at address 0x%04x: %w", address, err)
	}
	r.bytes = append(r.bytes, b)
	return b, nil
}

func (r *reader) failure(kind, cause error) *Failure {
	err := kind
	if cause != nil {
		err = fmt.Errorf("%w: %w", kind, cause)
	}

	consumed := make([]byte, len(r.bytes))
	copy(consumed, r.bytes)
	return &Failure{
		Address: r.address,
		Bytes:   consumed,
		Err:     err,
	}
}
