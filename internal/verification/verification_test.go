package verification

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/tabledisasm/internal/decoder"
	"github.com/retroenv/tabledisasm/internal/listing"
)

func TestVerifyOutput(t *testing.T) {
	logger := log.NewTestLogger(t)
	image := decoder.NewBuffer(0x1000, []byte{0x02, 0x10, 0x20, 0xff})
	ranges := []listing.Range{{Start: 0x1000, End: 0x1004}}

	records := [][]listing.Record{{
		{Address: 0x1000, Bytes: []byte{0x02, 0x10, 0x20}},
		{Address: 0x1003, Bytes: []byte{0xff}},
	}}
	assert.NoError(t, VerifyOutput(logger, image, ranges, records))

	gap := [][]listing.Record{{
		{Address: 0x1000, Bytes: []byte{0x02, 0x10, 0x20}},
	}}
	assert.Error(t, VerifyOutput(logger, image, ranges, gap))

	overlap := [][]listing.Record{{
		{Address: 0x1000, Bytes: []byte{0x02, 0x10, 0x20}},
		{Address: 0x1002, Bytes: []byte{0x20, 0xff}},
	}}
	assert.Error(t, VerifyOutput(logger, image, ranges, overlap))

	changed := [][]listing.Record{{
		{Address: 0x1000, Bytes: []byte{0x02, 0x10, 0x21}},
		{Address: 0x1003, Bytes: []byte{0xff}},
	}}
	assert.Error(t, VerifyOutput(logger, image, ranges, changed))

	assert.Error(t, VerifyOutput(logger, image, ranges, nil))
}

func TestCheckBufferEqual(t *testing.T) {
	logger := log.NewTestLogger(t)

	assert.NoError(t, checkBufferEqual(logger, 0, []byte{1, 2}, []byte{1, 2}))

	err := checkBufferEqual(logger, 0, []byte{1, 2}, []byte{1})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "mismatched lengths")

	err = checkBufferEqual(logger, 0, []byte{1, 2, 3}, []byte{0, 2, 0})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "2 address mismatches")
}
