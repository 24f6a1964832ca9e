package arch

import (
	"fmt"
)

// Mode is an addressing mode. The set of modes is closed, a definition
// referencing any other name fails to load.
type Mode int

// Addressing modes.
const (
	Inherent Mode = iota + 1
	Immediate
	Direct
	Extended
	IndirectX
	IndirectY
	Relative
)

var modeNames = map[Mode]string{
	Inherent:  "inherent",
	Immediate: "immediate",
	Direct:    "direct",
	Extended:  "extended",
	IndirectX: "indirectx",
	IndirectY: "indirecty",
	Relative:  "relative",
}

var modesByName = func() map[string]Mode {
	m := make(map[string]Mode, len(modeNames))
	for mode, name := range modeNames {
		m[name] = mode
	}
	return m
}()

// ParseMode returns the addressing mode for the given definition name.
func ParseMode(name string) (Mode, error) {
	mode, ok := modesByName[name]
	if !ok {
		return 0, fmt.Errorf("%w '%s'", ErrUnknownMode, name)
	}
	return mode, nil
}

// String returns the definition name of the mode.
func (m Mode) String() string {
	name, ok := modeNames[m]
	if !ok {
		return fmt.Sprintf("mode(%d)", int(m))
	}
	return name
}
