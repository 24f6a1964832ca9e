// Package listing implements a linear sweep over address ranges and writes
// the decoded instructions as an assembly listing.
package listing

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/tabledisasm/internal/decoder"
	"golang.org/x/sync/errgroup"
)

// cancelCheckInterval is the number of records after which a sweep checks
// for context cancellation.
const cancelCheckInterval = 1024

// Range is an address range [Start, End).
type Range struct {
	Start uint32
	End   uint64
}

// String returns the range in the notation accepted by ParseRange.
func (r Range) String() string {
	return fmt.Sprintf("$%04x:$%04x", r.Start, r.End)
}

// ParseRange parses a range in the form start:end, the end being exclusive.
// Numbers can use a 0x or $ prefix for hex values.
func ParseRange(s string) (Range, error) {
	startText, endText, ok := strings.Cut(s, ":")
	if !ok {
		return Range{}, fmt.Errorf("invalid range '%s': missing ':' separator", s)
	}
	start, err := ParseAddress(startText)
	if err != nil {
		return Range{}, fmt.Errorf("invalid range start: %w", err)
	}
	end, err := ParseAddress(endText)
	if err != nil {
		return Range{}, fmt.Errorf("invalid range end: %w", err)
	}
	if uint64(end) <= uint64(start) {
		return Range{}, fmt.Errorf("invalid range '%s': end is not after start", s)
	}
	return Range{Start: start, End: uint64(end)}, nil
}

// ParseAddress parses an address. Numbers can use a 0x or $ prefix for hex
// values, all other numbers are decimal, including those with leading zeros.
func ParseAddress(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	base := 10
	switch {
	case strings.HasPrefix(s, "$"):
		s = s[1:]
		base = 16
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		s = s[2:]
		base = 16
	}
	value, err := strconv.ParseUint(s, base, 32)
	if err != nil {
		return 0, fmt.Errorf("parsing address '%s': %w", s, err)
	}
	return uint32(value), nil
}

// Record is a decoded instruction or, if decoding failed, a single data byte.
type Record struct {
	Address     uint32
	Bytes       []byte
	Instruction *decoder.Instruction // nil for data bytes
	Failure     *decoder.Failure     // reason why the byte was output as data
}

// IsCode returns whether the record contains a decoded instruction.
func (r Record) IsCode() bool {
	return r.Instruction != nil
}

// Sweep decodes every range linearly from its start to its end. The ranges
// are processed concurrently and the records are returned in range order.
// A byte that does not start a decodable instruction is returned as data
// record and the sweep continues with the next byte.
func Sweep(ctx context.Context, logger *log.Logger, dec *decoder.Decoder, mem decoder.Memory, ranges []Range) ([][]Record, error) {
	results := make([][]Record, len(ranges))

	group, ctx := errgroup.WithContext(ctx)
	for i, rng := range ranges {
		group.Go(func() error {
			records, err := sweepRange(ctx, logger, dec, mem, rng)
			if err != nil {
				return fmt.Errorf("sweeping range %s: %w", rng, err)
			}
			results[i] = records
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func sweepRange(ctx context.Context, logger *log.Logger, dec *decoder.Decoder, mem decoder.Memory, rng Range) ([]Record, error) {
	window := decoder.NewWindow(mem, rng.Start, rng.End)
	var records []Record

	for address := uint64(rng.Start); address < rng.End; {
		if len(records)%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		ins, err := dec.Decode(window, uint32(address))
		if err == nil {
			records = append(records, Record{
				Address:     ins.Address,
				Bytes:       ins.Bytes,
				Instruction: &ins,
			})
			address += uint64(ins.Len())
			continue
		}

		var failure *decoder.Failure
		if !errors.As(err, &failure) {
			return nil, err
		}

		b, err := window.ReadMemory(uint32(address))
		if err != nil {
			return nil, fmt.Errorf("reading data byte: %w", err)
		}
		logger.Debug("Decoding failed, writing data byte",
			log.Hex("address", address),
			log.Hex("value", b),
			log.Err(failure.Err))

		records = append(records, Record{
			Address: uint32(address),
			Bytes:   []byte{b},
			Failure: failure,
		})
		address++
	}

	return records, nil
}
