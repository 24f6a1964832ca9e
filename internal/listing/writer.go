package listing

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/retroenv/tabledisasm/internal/arch"
	"github.com/retroenv/tabledisasm/internal/decoder"
)

// Options of the writer.
type Options struct {
	Addresses bool // prefix every line with its address
	HexBytes  bool // output the instruction bytes as hex values
}

// Writer writes sweep records as assembly listing.
type Writer struct {
	arch    *arch.Architecture
	options Options
	writer  io.Writer

	addressDigits int
	bytesColumn   int
}

// NewWriter returns a listing writer. The column widths are derived from
// the address width and maximum instruction length of the architecture.
func NewWriter(ar *arch.Architecture, writer io.Writer, options Options) *Writer {
	return &Writer{
		arch:          ar,
		options:       options,
		writer:        writer,
		addressDigits: (ar.AddressWidth() + 3) / 4,
		bytesColumn:   ar.MaxLength() * 3,
	}
}

// Write writes the header and the records of all ranges.
func (w *Writer) Write(ranges []Range, records [][]Record) error {
	if _, err := fmt.Fprintf(w.writer, "; %s - %s\n", w.arch.Name(), w.arch.Description()); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, rng := range ranges {
		if _, err := fmt.Fprintf(w.writer, "\n.org $%0*X\n", w.addressDigits, rng.Start); err != nil {
			return fmt.Errorf("writing origin: %w", err)
		}
		if err := w.writeRecords(records[i]); err != nil {
			return fmt.Errorf("writing range %s: %w", rng, err)
		}
	}
	return nil
}

func (w *Writer) writeRecords(records []Record) error {
	for i := 0; i < len(records); {
		if records[i].IsCode() {
			if err := w.writeInstruction(records[i]); err != nil {
				return err
			}
			i++
			continue
		}

		// bundle consecutive data bytes of the same failure kind,
		// at most one instruction length per line
		reason := failureReason(records[i].Failure)
		end := i
		for end < len(records) && !records[end].IsCode() && end-i < w.arch.MaxLength() &&
			failureReason(records[end].Failure) == reason {
			end++
		}
		if err := w.writeData(records[i:end]); err != nil {
			return err
		}
		i = end
	}
	return nil
}

func (w *Writer) writeInstruction(record Record) error {
	ins := record.Instruction
	line := fmt.Sprintf("%-6s %s", ins.Mnemonic, ins.Operand)
	line = strings.TrimRight(line, " ")

	if _, err := fmt.Fprintf(w.writer, "%s%s\n", w.prefix(record.Address, record.Bytes), line); err != nil {
		return fmt.Errorf("writing instruction: %w", err)
	}
	return nil
}

func (w *Writer) writeData(records []Record) error {
	buf := &strings.Builder{}
	buf.WriteString(".byte ")
	data := make([]byte, 0, len(records))
	for i, record := range records {
		if i > 0 {
			buf.WriteString(", ")
		}
		fmt.Fprintf(buf, "$%02X", record.Bytes[0])
		data = append(data, record.Bytes[0])
	}

	if reason := failureReason(records[0].Failure); reason != "" {
		buf.WriteString(" ; ")
		buf.WriteString(reason)
	}

	prefix := w.prefix(records[0].Address, data)
	if _, err := fmt.Fprintf(w.writer, "%s%s\n", prefix, buf.String()); err != nil {
		return fmt.Errorf("writing data line: %w", err)
	}
	return nil
}

// failureReason returns the listing comment describing why bytes were
// written as data.
func failureReason(failure *decoder.Failure) string {
	switch {
	case failure == nil:
		return ""
	case errors.Is(failure, decoder.ErrUnknownOpcode):
		return "unknown opcode"
	case errors.Is(failure, decoder.ErrInsufficientBytes):
		return "insufficient bytes"
	default:
		return "decoding failed"
	}
}

// prefix returns the address and hex bytes columns of a line.
func (w *Writer) prefix(address uint32, data []byte) string {
	buf := &strings.Builder{}
	if w.options.Addresses {
		fmt.Fprintf(buf, "%0*X  ", w.addressDigits, address)
	}
	if w.options.HexBytes {
		hex := make([]string, len(data))
		for i, b := range data {
			hex[i] = fmt.Sprintf("%02X", b)
		}
		fmt.Fprintf(buf, "%-*s ", w.bytesColumn, strings.Join(hex, " "))
	}
	if buf.Len() == 0 {
		return "    "
	}
	return buf.String()
}
