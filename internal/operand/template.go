// Package operand renders the operand bytes of an instruction as text
// using an addressing mode template.
//
// A template is literal text with placeholders in braces. Each placeholder
// references an operand byte by its index and optionally a format spec:
//
//	{index}            operand byte as two upper case hex digits
//	{index:02X}        zero padded to width 2, upper case hex
//	{index:x}          lower case hex, no padding
//	{index:3d}         decimal, space padded to width 3
//
// Supported bases are X, x, d, o and b. The sequences {{ and }} produce
// literal braces. A template with literal text such as "#${0:02X}" or
// "(${0:02X}),Y" emits the text verbatim around the rendered bytes. A
// template without any placeholder renders no operand text at all.
package operand

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrMalformed is returned by Parse for templates that can not be compiled.
	ErrMalformed = errors.New("malformed template")
	// ErrMissingOperand is returned by Format if a placeholder references an
	// operand byte that was not supplied.
	ErrMissingOperand = errors.New("missing operand byte")
)

// Placeholder binds an operand byte to its text representation.
type Placeholder struct {
	Index   int  // index of the operand byte, 0 is the first byte after the opcode
	Width   int  // minimum number of digits, 0 for no padding
	ZeroPad bool // pad with zeros instead of spaces
	Base    Base
}

// Template is a compiled addressing mode template. The zero value is the
// empty template that renders no operand text.
type Template struct {
	source       string
	format       string // fmt format string with one verb per placeholder
	placeholders []Placeholder
}

// Parse compiles a template.
func Parse(source string) (Template, error) {
	t := Template{source: source}
	format := &strings.Builder{}
	depth := 0

	for i := 0; i < len(source); i++ {
		c := source[i]
		switch c {
		case '{':
			if i+1 < len(source) && source[i+1] == '{' {
				format.WriteByte('{')
				i++
				continue
			}

			end := strings.IndexByte(source[i+1:], '}')
			if end < 0 {
				return Template{}, fmt.Errorf("%w: unclosed '{' at offset %d", ErrMalformed, i)
			}
			field := source[i+1 : i+1+end]
			p, err := parsePlaceholder(field)
			if err != nil {
				return Template{}, fmt.Errorf("placeholder at offset %d: %w", i, err)
			}
			t.placeholders = append(t.placeholders, p)
			format.WriteString(p.verb())
			i += end + 1

		case '}':
			if i+1 < len(source) && source[i+1] == '}' {
				format.WriteByte('}')
				i++
				continue
			}
			return Template{}, fmt.Errorf("%w: unmatched '}' at offset %d", ErrMalformed, i)

		case '(':
			depth++
			format.WriteByte(c)

		case ')':
			depth--
			if depth < 0 {
				return Template{}, fmt.Errorf("%w: unbalanced ')' at offset %d", ErrMalformed, i)
			}
			format.WriteByte(c)

		case '%':
			format.WriteString("%%")

		default:
			format.WriteByte(c)
		}
	}

	if depth != 0 {
		return Template{}, fmt.Errorf("%w: %d unclosed '('", ErrMalformed, depth)
	}

	t.format = format.String()
	return t, nil
}

// MustParse is like Parse but panics if the template can not be compiled.
func MustParse(source string) Template {
	t, err := Parse(source)
	if err != nil {
		panic(err)
	}
	return t
}

// String returns the template source.
func (t Template) String() string {
	return t.source
}

// Placeholders returns the placeholders in declaration order.
func (t Template) Placeholders() []Placeholder {
	placeholders := make([]Placeholder, len(t.placeholders))
	copy(placeholders, t.placeholders)
	return placeholders
}

// OperandsRequired returns the minimum number of operand bytes that have
// to be passed to Format.
func (t Template) OperandsRequired() int {
	required := 0
	for _, p := range t.placeholders {
		required = max(required, p.Index+1)
	}
	return required
}

// Format renders the operand bytes. Templates without placeholders return
// an empty string regardless of the passed operands.
func (t Template) Format(operands []byte) (string, error) {
	if len(t.placeholders) == 0 {
		return "", nil
	}

	args := make([]any, len(t.placeholders))
	for i, p := range t.placeholders {
		if p.Index >= len(operands) {
			return "", fmt.Errorf("%w: template %q references byte %d of %d",
				ErrMissingOperand, t.source, p.Index, len(operands))
		}
		args[i] = operands[p.Index]
	}
	return fmt.Sprintf(t.format, args...), nil
}

func parsePlaceholder(field string) (Placeholder, error) {
	index, spec, hasSpec := strings.Cut(field, ":")
	if index == "" {
		return Placeholder{}, fmt.Errorf("%w: empty operand index", ErrMalformed)
	}
	if !isDigits(index) {
		return Placeholder{}, fmt.Errorf("%w: invalid operand index %q", ErrMalformed, index)
	}
	i, err := strconv.Atoi(index)
	if err != nil {
		return Placeholder{}, fmt.Errorf("%w: invalid operand index %q", ErrMalformed, index)
	}

	if !hasSpec {
		return Placeholder{
			Index:   i,
			Width:   2,
			ZeroPad: true,
			Base:    HexUpper,
		}, nil
	}

	if spec == "" {
		return Placeholder{}, fmt.Errorf("%w: empty format spec for operand %d", ErrMalformed, i)
	}
	base := Base(spec[len(spec)-1])
	if !base.valid() {
		return Placeholder{}, fmt.Errorf("%w: unsupported base %q", ErrMalformed, string(base))
	}

	p := Placeholder{
		Index: i,
		Base:  base,
	}
	width := spec[:len(spec)-1]
	if width == "" {
		return p, nil
	}
	if !isDigits(width) {
		return Placeholder{}, fmt.Errorf("%w: invalid width %q", ErrMalformed, width)
	}
	p.ZeroPad = width[0] == '0'
	p.Width, err = strconv.Atoi(width)
	if err != nil {
		return Placeholder{}, fmt.Errorf("%w: invalid width %q", ErrMalformed, width)
	}
	return p, nil
}

// verb returns the fmt verb that renders the placeholder.
func (p Placeholder) verb() string {
	buf := &strings.Builder{}
	buf.WriteByte('%')
	if p.ZeroPad {
		buf.WriteByte('0')
	}
	if p.Width > 0 {
		buf.WriteString(strconv.Itoa(p.Width))
	}
	buf.WriteByte(byte(p.Base))
	return buf.String()
}

func isDigits(s string) bool {
	for i := range len(s) {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
