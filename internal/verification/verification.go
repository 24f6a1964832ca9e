// Package verification verifies that the generated listing recreates the input.
package verification

import (
	"fmt"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/tabledisasm/internal/decoder"
	"github.com/retroenv/tabledisasm/internal/listing"
)

// maxLoggedMismatches is the number of mismatching bytes that are logged.
const maxLoggedMismatches = 10

// VerifyOutput verifies that the bytes of the records of every range recreate
// the exact memory contents of the range, without gaps or overlaps.
func VerifyOutput(logger *log.Logger, image *decoder.Buffer, ranges []listing.Range, records [][]listing.Record) error {
	if len(ranges) != len(records) {
		return fmt.Errorf("mismatched range count, %d ranges but %d record lists", len(ranges), len(records))
	}

	for i, rng := range ranges {
		input, err := image.Slice(rng.Start, rng.End)
		if err != nil {
			return fmt.Errorf("reading range %s: %w", rng, err)
		}

		output, err := reassemble(rng, records[i])
		if err != nil {
			return fmt.Errorf("range %s: %w", rng, err)
		}

		if err := checkBufferEqual(logger, rng.Start, input, output); err != nil {
			return fmt.Errorf("range %s mismatch: %w", rng, err)
		}
	}
	return nil
}

// reassemble concatenates the record bytes, checking that every record
// starts where the previous one ended.
func reassemble(rng listing.Range, records []listing.Record) ([]byte, error) {
	output := make([]byte, 0, rng.End-uint64(rng.Start))
	next := uint64(rng.Start)

	for _, record := range records {
		if uint64(record.Address) != next {
			return nil, fmt.Errorf("record at $%04x does not follow previous record ending at $%04x", record.Address, next)
		}
		output = append(output, record.Bytes...)
		next += uint64(len(record.Bytes))
	}
	return output, nil
}

func checkBufferEqual(logger *log.Logger, base uint32, input, output []byte) error {
	if len(input) != len(output) {
		return fmt.Errorf("mismatched lengths, %d != %d", len(input), len(output))
	}

	var diffs uint64
	for i := range input {
		if input[i] == output[i] {
			continue
		}

		diffs++
		if diffs <= maxLoggedMismatches {
			logger.Error("Address mismatch",
				log.Hex("address", uint64(base)+uint64(i)),
				log.Hex("expected", input[i]),
				log.Hex("got", output[i]))
		}
	}
	if diffs == 0 {
		return nil
	}
	return fmt.Errorf("%d address mismatches", diffs)
}
