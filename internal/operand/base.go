package operand

// Base is the numeric base used to render an operand byte. Its value is the
// format spec character used in templates.
type Base byte

// Supported bases.
const (
	HexUpper Base = 'X'
	HexLower Base = 'x'
	Decimal  Base = 'd'
	Octal    Base = 'o'
	Binary   Base = 'b'
)

func (b Base) valid() bool {
	switch b {
	case HexUpper, HexLower, Decimal, Octal, Binary:
		return true
	default:
		return false
	}
}
