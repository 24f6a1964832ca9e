package decoder

import (
	"errors"
	"sync"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/tabledisasm/internal/arch"
	"github.com/retroenv/tabledisasm/internal/arch/hc11"
)

func newTestDecoder(t *testing.T) *Decoder {
	t.Helper()

	def := arch.Definition{
		Name:         "test",
		DataWidth:    8,
		AddressWidth: 16,
		MaxLength:    5,
		Leadins:      []uint{0x18, 0xcd},
		LeadinPairs:  []uint{0xcd01},
		Opcodes: []arch.OpcodeDefinition{
			{Key: 0x01, Length: 1, Mnemonic: "nop", Mode: "inherent"},
			{Key: 0x02, Length: 3, Mnemonic: "ora", Mode: "direct"},
			{Key: 0x86, Length: 2, Mnemonic: "ldaa", Mode: "immediate"},
			{Key: 0x183a, Length: 2, Mnemonic: "aby", Mode: "inherent"},
			{Key: 0x18a9, Length: 3, Mnemonic: "adca", Mode: "indirecty"},
			{Key: 0xcd0142, Length: 4, Mnemonic: "ldy", Mode: "immediate"},
		},
		Modes: map[string]string{
			"inherent":  "",
			"immediate": "#${0:02X}",
			"direct":    "${0:02X}{1:02X}",
			"indirecty": "(${0:02X}),Y",
		},
	}

	ar, err := arch.New(def)
	assert.NoError(t, err)
	return New(ar)
}

func TestDecode(t *testing.T) {
	dec := newTestDecoder(t)

	tests := []struct {
		name     string
		data     []byte
		mnemonic string
		mode     arch.Mode
		operand  string
		bytes    []byte
	}{
		{
			name:     "single byte opcode with word operand",
			data:     []byte{0x02, 0x10, 0x20},
			mnemonic: "ora",
			mode:     arch.Direct,
			operand:  "$1020",
			bytes:    []byte{0x02, 0x10, 0x20},
		},
		{
			name:     "leadin opcode without operand",
			data:     []byte{0x18, 0x3a},
			mnemonic: "aby",
			mode:     arch.Inherent,
			operand:  "",
			bytes:    []byte{0x18, 0x3a},
		},
		{
			name:     "leadin opcode with operand",
			data:     []byte{0x18, 0xa9, 0x44},
			mnemonic: "adca",
			mode:     arch.IndirectY,
			operand:  "($44),Y",
			bytes:    []byte{0x18, 0xa9, 0x44},
		},
		{
			name:     "three byte opcode",
			data:     []byte{0xcd, 0x01, 0x42, 0x7f},
			mnemonic: "ldy",
			mode:     arch.Immediate,
			operand:  "#$7F",
			bytes:    []byte{0xcd, 0x01, 0x42, 0x7f},
		},
		{
			name:     "trailing bytes are not consumed",
			data:     []byte{0x86, 0x0a, 0x01, 0x01},
			mnemonic: "ldaa",
			mode:     arch.Immediate,
			operand:  "#$0A",
			bytes:    []byte{0x86, 0x0a},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := NewBuffer(0x1000, tt.data)

			ins, err := dec.Decode(mem, 0x1000)
			assert.NoError(t, err)
			assert.Equal(t, uint32(0x1000), ins.Address)
			assert.Equal(t, tt.mnemonic, ins.Mnemonic)
			assert.Equal(t, tt.mode, ins.Mode)
			assert.Equal(t, tt.operand, ins.Operand)
			assert.Equal(t, tt.bytes, ins.Bytes)
			assert.Equal(t, len(tt.bytes), ins.Len())
		})
	}
}

func TestDecode_Failures(t *testing.T) {
	dec := newTestDecoder(t)

	tests := []struct {
		name     string
		data     []byte
		expected error
		bytes    []byte
	}{
		{"unknown opcode", []byte{0xff}, ErrUnknownOpcode, []byte{0xff}},
		{"unknown leadin opcode", []byte{0x18, 0x00}, ErrUnknownOpcode, []byte{0x18, 0x00}},
		{"unknown three byte opcode", []byte{0xcd, 0x01, 0x00}, ErrUnknownOpcode, []byte{0xcd, 0x01, 0x00}},
		{"leadin at end of stream", []byte{0x18}, ErrInsufficientBytes, []byte{0x18}},
		{"leadin pair at end of stream", []byte{0xcd, 0x01}, ErrInsufficientBytes, []byte{0xcd, 0x01}},
		{"missing operand byte", []byte{0x02, 0x10}, ErrInsufficientBytes, []byte{0x02, 0x10}},
		{"missing all operand bytes", []byte{0x02}, ErrInsufficientBytes, []byte{0x02}},
		{"empty stream", []byte{}, ErrInsufficientBytes, []byte{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := NewBuffer(0x1000, tt.data)

			_, err := dec.Decode(mem, 0x1000)
			assert.True(t, errors.Is(err, tt.expected))

			var failure *Failure
			assert.True(t, errors.As(err, &failure))
			assert.Equal(t, uint32(0x1000), failure.Address)
			assert.Equal(t, tt.bytes, failure.Bytes)
		})
	}
}

func TestDecode_EndOfAddressSpace(t *testing.T) {
	dec := newTestDecoder(t)

	data := make([]byte, 0x10002)
	data[0xffff] = 0x86
	data[0x10000] = 0x0a
	mem := NewBuffer(0, data)

	_, err := dec.Decode(mem, 0xffff)
	assert.True(t, errors.Is(err, ErrInsufficientBytes))
	assert.True(t, errors.Is(err, ErrOutOfRange))
}

func TestDecode_AllTableEntries(t *testing.T) {
	dec := newTestDecoder(t)
	ar := dec.Architecture()

	for _, key := range ar.Keys() {
		entry, ok := ar.Lookup(key)
		assert.True(t, ok)

		opcodeSize := arch.OpcodeSize(key)
		data := make([]byte, entry.Length)
		for i := range opcodeSize {
			data[i] = byte(key >> (8 * (opcodeSize - 1 - i)))
		}

		ins, err := dec.Decode(NewBuffer(0, data), 0)
		assert.NoError(t, err, key.String())
		assert.Equal(t, entry.Mnemonic, ins.Mnemonic)
		assert.Equal(t, entry.Mode, ins.Mode)
		assert.Equal(t, entry.Length, ins.Len())

		// every shorter stream fails instead of returning a truncated instruction
		for length := range entry.Length {
			_, err := dec.Decode(NewBuffer(0, data[:length]), 0)
			assert.True(t, errors.Is(err, ErrInsufficientBytes), key.String())
		}
	}
}

func TestDecode_Idempotent(t *testing.T) {
	dec := newTestDecoder(t)
	mem := NewBuffer(0x1000, []byte{0x18, 0xa9, 0x44})

	first, err := dec.Decode(mem, 0x1000)
	assert.NoError(t, err)
	second, err := dec.Decode(mem, 0x1000)
	assert.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDecode_Concurrent(t *testing.T) {
	dec := newTestDecoder(t)
	data := []byte{0x02, 0x10, 0x20, 0x18, 0x3a, 0x86, 0x0a, 0x01}
	mem := NewBuffer(0, data)
	addresses := []uint32{0, 3, 5, 7}

	expected := make([]Instruction, len(addresses))
	for i, address := range addresses {
		ins, err := dec.Decode(mem, address)
		assert.NoError(t, err)
		expected[i] = ins
	}

	var wg sync.WaitGroup
	results := make([][]Instruction, 8)
	for worker := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, address := range addresses {
				ins, err := dec.Decode(mem, address)
				if err == nil {
					results[worker] = append(results[worker], ins)
				}
			}
		}()
	}
	wg.Wait()

	for _, result := range results {
		assert.Equal(t, expected, result)
	}
}

func TestDecode_HC11(t *testing.T) {
	def := hc11.Definition().WithModeTemplates(map[string]string{
		"indirecty": "(${0:02X}),Y",
	})
	ar, err := arch.New(def)
	assert.NoError(t, err)
	dec := New(ar)

	ins, err := dec.Decode(NewBuffer(0x1000, []byte{0x02, 0x10, 0x20}), 0x1000)
	assert.NoError(t, err)
	assert.Equal(t, "ora $1020", ins.String())

	ins, err = dec.Decode(NewBuffer(0x1000, []byte{0x18, 0x3a}), 0x1000)
	assert.NoError(t, err)
	assert.Equal(t, "aby", ins.String())
	assert.Equal(t, 2, ins.Len())

	ins, err = dec.Decode(NewBuffer(0x1000, []byte{0x03, 0xc0, 0x00}), 0x1000)
	assert.NoError(t, err)
	assert.Equal(t, "jmp", ins.String())
	assert.Equal(t, 3, ins.Len())

	_, err = dec.Decode(NewBuffer(0x1000, []byte{0xff}), 0x1000)
	var failure *Failure
	assert.True(t, errors.As(err, &failure))
	assert.Equal(t, []byte{0xff}, failure.Bytes)
	assert.Equal(t, uint32(0x1000), failure.Address)
}

func TestBuffer(t *testing.T) {
	buf := NewBuffer(0x8000, []byte{1, 2, 3})

	b, err := buf.ReadMemory(0x8002)
	assert.NoError(t, err)
	assert.Equal(t, byte(3), b)

	_, err = buf.ReadMemory(0x7fff)
	assert.True(t, errors.Is(err, ErrOutOfRange))
	_, err = buf.ReadMemory(0x8003)
	assert.True(t, errors.Is(err, ErrOutOfRange))

	assert.Equal(t, uint32(0x8000), buf.Base())
	assert.Equal(t, uint64(0x8003), buf.End())
	assert.Equal(t, 3, buf.Len())

	data, err := buf.Slice(0x8001, 0x8003)
	assert.NoError(t, err)
	assert.Equal(t, []byte{2, 3}, data)
	_, err = buf.Slice(0x8001, 0x8004)
	assert.True(t, errors.Is(err, ErrOutOfRange))

	window := NewWindow(buf, 0x8000, 0x8002)
	_, err = window.ReadMemory(0x8002)
	assert.True(t, errors.Is(err, ErrOutOfRange))
	b, err = window.ReadMemory(0x8001)
	assert.NoError(t, err)
	assert.Equal(t, byte(2), b)
}
