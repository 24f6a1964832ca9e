// Package hc11 contains the architecture definition of the FreeScale
// 68HC11 8-bit microcontroller.
//
// The 68HC11 uses the prefix bytes 0x18, 0x1a and 0xcd to select additional
// opcode pages, resulting in 2 byte opcodes for these pages.
//
// The operand template of the indirecty mode is malformed in the table this
// definition was taken from. It is kept as is, loading the definition fails
// until a corrected template is supplied:
//
//	def := hc11.Definition().WithModeTemplates(map[string]string{
//		"indirecty": "(${0:02X}),Y",
//	})
//	ar, err := arch.New(def)
package hc11

import "github.com/retroenv/tabledisasm/internal/arch"

// Name of the architecture.
const Name = "6811"

// Definition returns a new copy of the 68HC11 architecture definition.
func Definition() arch.Definition {
	return arch.Definition{
		Name:         Name,
		Description:  "FreeScale 68HC11 8-bit microcontroller.",
		DataWidth:    8,
		AddressWidth: 16,
		MaxLength:    5,

		Leadins: []uint{0x18, 0x1a, 0xcd},

		Opcodes: []arch.OpcodeDefinition{
			{Key: 0x00, Length: 1, Mnemonic: "test", Mode: "inherent"},
			{Key: 0x01, Length: 1, Mnemonic: "nop", Mode: "inherent"},
			{Key: 0x02, Length: 3, Mnemonic: "ora", Mode: "direct"},
			{Key: 0x03, Length: 3, Mnemonic: "jmp", Mode: "extended"},
			{Key: 0x183a, Length: 2, Mnemonic: "aby", Mode: "inherent"},
			{Key: 0x18a9, Length: 5, Mnemonic: "adca", Mode: "indirecty"},
		},

		Modes: map[string]string{
			"inherent":  "",
			"immediate": "#${0:02X}",
			"direct":    "${0:02X}{1:02X}",
			"extended":  "",
			"indirectx": "",
			"indirecty": "($:0:02X)),Y",
			"relative":  "",
		},
	}
}
