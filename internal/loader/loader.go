// Package loader handles loading of memory images.
package loader

import (
	"errors"
	"fmt"
	"os"

	"github.com/retroenv/tabledisasm/internal/arch"
	"github.com/retroenv/tabledisasm/internal/decoder"
	"github.com/retroenv/tabledisasm/internal/listing"
	"github.com/retroenv/tabledisasm/internal/options"
)

// ErrEmptyImage is returned for input files without any data.
var ErrEmptyImage = errors.New("empty image")

// Loader handles loading raw binary files from disk.
type Loader struct{}

// New creates a new image loader.
func New() *Loader {
	return &Loader{}
}

// Load reads the input file as raw binary and maps it at the base address
// given by the options.
func (l *Loader) Load(opts options.Program, ar *arch.Architecture) (*decoder.Buffer, error) {
	data, err := os.ReadFile(opts.Input)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", opts.Input, err)
	}

	var base uint32
	if opts.Base != "" {
		base, err = listing.ParseAddress(opts.Base)
		if err != nil {
			return nil, fmt.Errorf("parsing base address: %w", err)
		}
	}

	return l.LoadFromBytes(data, base, ar)
}

// LoadFromBytes maps the data at the base address. The image has to fit
// into the address space of the architecture.
func (l *Loader) LoadFromBytes(data []byte, base uint32, ar *arch.Architecture) (*decoder.Buffer, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}

	end := uint64(base) + uint64(len(data))
	if limit := uint64(ar.MaxAddress()) + 1; end > limit {
		return nil, fmt.Errorf("image of %d bytes at base $%04x exceeds the %d bit address space of %s",
			len(data), base, ar.AddressWidth(), ar.Name())
	}

	return decoder.NewBuffer(base, data), nil
}
