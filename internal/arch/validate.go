package arch

import (
	"errors"
	"fmt"

	"github.com/retroenv/retrogolib/set"
	"github.com/retroenv/tabledisasm/internal/operand"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

const maxWidth = 32

// New validates the definition and returns the architecture. All table
// consistency faults found are returned joined, each one as a
// *ConsistencyError that names the offending opcode key or mode.
func New(def Definition) (*Architecture, error) {
	a := &Architecture{
		name:         def.Name,
		description:  def.Description,
		dataWidth:    def.DataWidth,
		addressWidth: def.AddressWidth,
		maxLength:    def.MaxLength,
		leadins:      set.New[byte](),
		leadinPairs:  set.New[uint16](),
		opcodes:      make(map[OpcodeKey]Entry, len(def.Opcodes)),
		templates:    make(map[Mode]operand.Template, len(def.Modes)),
	}

	var faults []error
	faults = append(faults, validateMetadata(def)...)
	faults = append(faults, a.loadLeadins(def)...)
	faults = append(faults, a.loadTemplates(def)...)
	faults = append(faults, a.loadOpcodes(def)...)

	if len(faults) > 0 {
		return nil, fmt.Errorf("loading architecture '%s': %w", def.Name, errors.Join(faults...))
	}
	return a, nil
}

func validateMetadata(def Definition) []error {
	var faults []error
	if def.Name == "" {
		faults = append(faults, metadataFault("name", fmt.Errorf("%w: empty name", ErrInvalidMetadata)))
	}
	if def.DataWidth < 1 || def.DataWidth > maxWidth {
		faults = append(faults, metadataFault("data width",
			fmt.Errorf("%w: %d bits not in range 1-%d", ErrInvalidMetadata, def.DataWidth, maxWidth)))
	}
	if def.AddressWidth < 1 || def.AddressWidth > maxWidth {
		faults = append(faults, metadataFault("address width",
			fmt.Errorf("%w: %d bits not in range 1-%d", ErrInvalidMetadata, def.AddressWidth, maxWidth)))
	}
	if def.MaxLength < 1 {
		faults = append(faults, metadataFault("max length",
			fmt.Errorf("%w: %d bytes", ErrInvalidMetadata, def.MaxLength)))
	}
	return faults
}

func (a *Architecture) loadLeadins(def Definition) []error {
	var faults []error

	for _, value := range def.Leadins {
		switch {
		case value > 0xff:
			faults = append(faults, leadinFault(value, fmt.Errorf("%w: not a byte value", ErrInvalidKey)))
		case value == 0:
			// a 0x00 leadin makes 2 byte keys indistinguishable from 1 byte keys
			faults = append(faults, leadinFault(value, fmt.Errorf("%w: zero can not start a multi byte opcode", ErrLeadinCollision)))
		default:
			a.leadins.Add(byte(value))
		}
	}

	for _, value := range def.LeadinPairs {
		if value <= 0xff || value > 0xffff {
			faults = append(faults, leadinFault(value, fmt.Errorf("%w: leadin pair is not a 2 byte value", ErrInvalidKey)))
			continue
		}
		if !a.leadins.Contains(byte(value >> 8)) {
			faults = append(faults, leadinFault(value, fmt.Errorf("%w: first byte of leadin pair is not a leadin", ErrInvalidKey)))
			continue
		}
		a.leadinPairs.Add(uint16(value))
	}

	return faults
}

func (a *Architecture) loadTemplates(def Definition) []error {
	var faults []error

	names := maps.Keys(def.Modes)
	slices.Sort(names)
	for _, name := range names {
		mode, err := ParseMode(name)
		if err != nil {
			faults = append(faults, modeFault(name, err))
			continue
		}

		t, err := operand.Parse(def.Modes[name])
		if err != nil {
			faults = append(faults, modeFault(name, fmt.Errorf("%w %q: %w", ErrMalformedTemplate, def.Modes[name], err)))
			continue
		}
		a.templates[mode] = t
	}

	return faults
}

func (a *Architecture) loadOpcodes(def Definition) []error {
	var faults []error

	rows := make(map[OpcodeKey]OpcodeDefinition, len(def.Opcodes))
	for _, row := range def.Opcodes {
		key := OpcodeKey(row.Key)
		if _, ok := rows[key]; ok {
			faults = append(faults, opcodeFault(key, ErrDuplicateKey))
			continue
		}
		rows[key] = row
	}

	keys := maps.Keys(rows)
	slices.Sort(keys)
	for _, key := range keys {
		entry, err := a.validateOpcode(key, rows[key], def.Modes)
		if err != nil {
			faults = append(faults, opcodeFault(key, err))
			continue
		}
		a.opcodes[key] = entry
	}

	return faults
}

// validateOpcode checks a single opcode row against the key structure
// defined by the leadins and against the template of its mode.
func (a *Architecture) validateOpcode(key OpcodeKey, row OpcodeDefinition, modes map[string]string) (Entry, error) {
	if err := a.validateKey(key); err != nil {
		return Entry{}, err
	}
	if row.Mnemonic == "" {
		return Entry{}, fmt.Errorf("%w: empty mnemonic", ErrInvalidEntry)
	}

	opcodeSize := OpcodeSize(key)
	operandCount := row.Length - opcodeSize
	if operandCount < 0 {
		return Entry{}, fmt.Errorf("%w: length %d is less than the %d opcode bytes",
			ErrNegativeOperandLength, row.Length, opcodeSize)
	}
	if row.Length > a.maxLength && a.maxLength > 0 {
		return Entry{}, fmt.Errorf("%w: length %d, maximum %d", ErrLengthExceedsMax, row.Length, a.maxLength)
	}

	mode, err := ParseMode(row.Mode)
	if err != nil {
		return Entry{}, err
	}
	t, ok := a.templates[mode]
	if !ok {
		if _, defined := modes[row.Mode]; defined {
			// the template itself is broken and reported as mode fault
			return Entry{}, fmt.Errorf("%w: mode %s has no usable template", ErrMissingTemplate, mode)
		}
		return Entry{}, fmt.Errorf("%w for mode %s", ErrMissingTemplate, mode)
	}
	if required := t.OperandsRequired(); required > operandCount {
		return Entry{}, fmt.Errorf("%w: mode %s template %q needs %d operand bytes, instruction has %d",
			ErrOperandMismatch, mode, t.String(), required, operandCount)
	}

	return Entry{
		Length:   row.Length,
		Mnemonic: row.Mnemonic,
		Mode:     mode,
	}, nil
}

func (a *Architecture) validateKey(key OpcodeKey) error {
	switch OpcodeSize(key) {
	case 1:
		if a.leadins.Contains(byte(key)) {
			return fmt.Errorf("%w: leadin byte used as single byte opcode", ErrLeadinCollision)
		}

	case 2:
		if !a.leadins.Contains(byte(key >> 8)) {
			return fmt.Errorf("%w: first byte 0x%02x is not a leadin", ErrInvalidKey, byte(key>>8))
		}
		if a.leadinPairs.Contains(uint16(key)) {
			return fmt.Errorf("%w: leadin pair used as two byte opcode", ErrLeadinCollision)
		}

	default:
		if key > 0xffffff {
			return fmt.Errorf("%w: more than 3 opcode bytes", ErrInvalidKey)
		}
		if !a.leadinPairs.Contains(uint16(key >> 8)) {
			return fmt.Errorf("%w: prefix 0x%04x is not a leadin pair", ErrInvalidKey, uint16(key>>8))
		}
	}
	return nil
}
