package decoder

import (
	"github.com/retroenv/tabledisasm/internal/arch"
)

// Instruction is a decoded instruction.
type Instruction struct {
	Address  uint32
	Bytes    []byte // opcode and operand bytes in stream order
	Mnemonic string
	Mode     arch.Mode
	Operand  string // formatted operand, empty for modes without operand text
}

// Len returns the length of the instruction in bytes.
func (i Instruction) Len() int {
	return len(i.Bytes)
}

// String returns the instruction as assembly text.
func (i Instruction) String() string {
	if i.Operand == "" {
		return i.Mnemonic
	}
	return i.Mnemonic + " " + i.Operand
}
