// Package options contains the program options.
package options

// Parameters contains file path options.
type Parameters struct {
	Input      string // file to disassemble
	Output     string // output .asm file, stdout if empty
	Definition string // YAML architecture definition file
	Batch      string // batch process files matching a glob pattern
}

// Flags contains behavior options.
type Flags struct {
	Arch          string            // architecture name, auto-detected if empty
	Base          string            // address the input image is loaded at
	Ranges        []string          // address ranges to disassemble, whole image if empty
	ModeTemplates map[string]string // addressing mode template overrides
	AssembleTest  bool              // verify that the listing recreates the input
	Debug         bool
	Quiet         bool
}

// OutputFlags contains output formatting options.
type OutputFlags struct {
	NoHexBytes  bool // omit the instruction bytes column
	NoAddresses bool // omit the address column
}

// Program options of the disassembler.
type Program struct {
	Parameters
	Flags
	OutputFlags
}
