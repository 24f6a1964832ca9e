package arch

import (
	"fmt"

	"golang.org/x/exp/maps"
)

// Definition is the serializable description of an architecture. It is
// untrusted until it was validated by New.
type Definition struct {
	Name         string `yaml:"name" json:"name" jsonschema:"title=Name,description=Short architecture identifier"`
	Description  string `yaml:"description" json:"description,omitempty" jsonschema:"title=Description,description=Human readable architecture description"`
	DataWidth    int    `yaml:"data_width" json:"data_width" jsonschema:"title=Data width,description=Data bus width in bits,minimum=1,maximum=32"`
	AddressWidth int    `yaml:"address_width" json:"address_width" jsonschema:"title=Address width,description=Address bus width in bits,minimum=1,maximum=32"`
	MaxLength    int    `yaml:"max_length" json:"max_length" jsonschema:"title=Maximum length,description=Maximum instruction length in bytes,minimum=1"`

	// Leadins are the first byte values that start a multi byte opcode.
	Leadins []uint `yaml:"leadins" json:"leadins,omitempty" jsonschema:"title=Leadin bytes,description=First bytes of multi byte opcodes"`
	// LeadinPairs are two byte opcode prefixes that are followed by a third opcode byte.
	LeadinPairs []uint `yaml:"leadin_pairs" json:"leadin_pairs,omitempty" jsonschema:"title=Leadin pairs,description=Two byte prefixes of three byte opcodes"`

	Opcodes []OpcodeDefinition `yaml:"opcodes" json:"opcodes" jsonschema:"title=Opcodes"`
	// Modes maps addressing mode names to operand templates.
	Modes map[string]string `yaml:"modes" json:"modes" jsonschema:"title=Addressing modes,description=Operand template per addressing mode"`
}

// OpcodeDefinition is a single opcode table row.
type OpcodeDefinition struct {
	Key      uint32 `yaml:"key" json:"key" jsonschema:"title=Key,description=Opcode bytes combined into one number with the first byte most significant"`
	Length   int    `yaml:"length" json:"length" jsonschema:"title=Length,description=Total instruction length in bytes including the opcode,minimum=1"`
	Mnemonic string `yaml:"mnemonic" json:"mnemonic" jsonschema:"title=Mnemonic"`
	Mode     string `yaml:"mode" json:"mode" jsonschema:"title=Addressing mode,enum=inherent,enum=immediate,enum=direct,enum=extended,enum=indirectx,enum=indirecty,enum=relative"`
}

// WithModeTemplates returns a copy of the definition with the given
// addressing mode templates replacing or adding to the existing ones.
// This is used to supply corrected templates for a broken definition.
func (d Definition) WithModeTemplates(templates map[string]string) Definition {
	modes := make(map[string]string, len(d.Modes)+len(templates))
	maps.Copy(modes, d.Modes)
	maps.Copy(modes, templates)
	d.Modes = modes
	return d
}

// String returns a short description used in log output.
func (d Definition) String() string {
	return fmt.Sprintf("%s (%d opcodes, %d modes)", d.Name, len(d.Opcodes), len(d.Modes))
}
