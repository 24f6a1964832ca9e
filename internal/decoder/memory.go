package decoder

import (
	"errors"
	"fmt"
)

// ErrOutOfRange is returned when reading outside of the readable memory.
var ErrOutOfRange = errors.New("address out of range")

// Memory provides random access reads. Decoding only reads through this
// interface, so the caller owns the cursor and different goroutines can
// decode disjoint address ranges of the same memory.
type Memory interface {
	// ReadMemory reads a byte from the memory at the given address.
	ReadMemory(address uint32) (byte, error)
}

// Buffer is a memory image that starts at a base address.
type Buffer struct {
	base uint32
	data []byte
}

// NewBuffer returns a memory image of the data mapped at the base address.
// The data is not copied and must not be modified while it is decoded.
func NewBuffer(base uint32, data []byte) *Buffer {
	return &Buffer{
		base: base,
		data: data,
	}
}

// ReadMemory reads a byte from the memory at the given address.
func (b *Buffer) ReadMemory(address uint32) (byte, error) {
	if address < b.base || uint64(address-b.base) >= uint64(len(b.data)) {
		return 0, fmt.Errorf("%w: 0x%04x", ErrOutOfRange, address)
	}
	return b.data[address-b.base], nil
}

// Base returns the address of the first byte.
func (b *Buffer) Base() uint32 {
	return b.base
}

// End returns the address following the last byte.
func (b *Buffer) End() uint64 {
	return uint64(b.base) + uint64(len(b.data))
}

// Len returns the number of bytes.
func (b *Buffer) Len() int {
	return len(b.data)
}

// Slice returns the bytes of the address range [start, end).
func (b *Buffer) Slice(start uint32, end uint64) ([]byte, error) {
	if start < b.base || end < uint64(start) || end > b.End() {
		return nil, fmt.Errorf("%w: 0x%04x-0x%04x", ErrOutOfRange, start, end)
	}
	return b.data[start-b.base : end-uint64(b.base)], nil
}

// Window restricts reads of a memory to the address range [start, end).
type Window struct {
	mem   Memory
	start uint32
	end   uint64
}

// NewWindow returns a view of the memory that only allows reads in the
// address range [start, end).
func NewWindow(mem Memory, start uint32, end uint64) Window {
	return Window{
		mem:   mem,
		start: start,
		end:   end,
	}
}

// ReadMemory reads a byte from the memory at the given address.
func (w Window) ReadMemory(address uint32) (byte, error) {
	if address < w.start || uint64(address) >= w.end {
		return 0, fmt.Errorf("%w: 0x%04x", ErrOutOfRange, address)
	}
	return w.mem.ReadMemory(address)
}
