// Package pipeline orchestrates the disassembly workflow stages.
package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/tabledisasm/internal/arch"
	"github.com/retroenv/tabledisasm/internal/config"
	"github.com/retroenv/tabledisasm/internal/decoder"
	"github.com/retroenv/tabledisasm/internal/detector"
	"github.com/retroenv/tabledisasm/internal/listing"
	"github.com/retroenv/tabledisasm/internal/loader"
	"github.com/retroenv/tabledisasm/internal/options"
	"github.com/retroenv/tabledisasm/internal/verification"
)

// Pipeline orchestrates the complete disassembly workflow.
type Pipeline struct {
	logger   *log.Logger
	detector *detector.Detector
	loader   *loader.Loader
}

// Result contains the output of a pipeline run.
type Result struct {
	Architecture *arch.Architecture
	Image        *decoder.Buffer
	Ranges       []listing.Range
	Records      [][]listing.Record
}

// New creates a new disassembly pipeline.
func New(logger *log.Logger) *Pipeline {
	return &Pipeline{
		logger:   logger,
		detector: detector.New(logger),
		loader:   loader.New(),
	}
}

// Execute runs the complete disassembly pipeline.
func (p *Pipeline) Execute(ctx context.Context, opts options.Program, writer io.Writer) (*Result, error) {
	ar, err := p.createArchitecture(opts)
	if err != nil {
		return nil, err
	}

	image, err := p.loader.Load(opts, ar)
	if err != nil {
		return nil, fmt.Errorf("loading image: %w", err)
	}

	return p.ExecuteWithImage(ctx, ar, image, opts, writer)
}

// ExecuteWithImage runs the disassembly pipeline with a pre-loaded image.
// This is useful for testing and programmatic usage where the image is already in memory.
func (p *Pipeline) ExecuteWithImage(ctx context.Context, ar *arch.Architecture, image *decoder.Buffer,
	opts options.Program, writer io.Writer) (*Result, error) {

	ranges, err := parseRanges(opts.Ranges, image)
	if err != nil {
		return nil, err
	}

	p.printInfo(opts, ar, image)

	dec := decoder.New(ar)
	records, err := listing.Sweep(ctx, p.logger, dec, image, ranges)
	if err != nil {
		return nil, fmt.Errorf("disassembling: %w", err)
	}

	listingOptions := listing.Options{
		Addresses: !opts.NoAddresses,
		HexBytes:  !opts.NoHexBytes,
	}
	w := listing.NewWriter(ar, writer, listingOptions)
	if err := w.Write(ranges, records); err != nil {
		return nil, fmt.Errorf("writing listing: %w", err)
	}

	if opts.AssembleTest {
		if err := verification.VerifyOutput(p.logger, image, ranges, records); err != nil {
			return nil, fmt.Errorf("verification failed: %w", err)
		}
		p.logger.Info("Verification successful")
	}

	return &Result{
		Architecture: ar,
		Image:        image,
		Ranges:       ranges,
		Records:      records,
	}, nil
}

// createArchitecture loads and validates the architecture selected by the options.
func (p *Pipeline) createArchitecture(opts options.Program) (*arch.Architecture, error) {
	name := p.detector.Detect(opts)

	def, err := config.LoadDefinition(opts, name)
	if err != nil {
		return nil, fmt.Errorf("loading architecture definition: %w", err)
	}

	ar, err := config.CreateArchitecture(p.logger, def)
	if err != nil {
		return nil, fmt.Errorf("creating architecture: %w", err)
	}
	return ar, nil
}

// parseRanges parses the address ranges to disassemble. Without any range
// the whole image is disassembled. Every range has to be inside the image.
func parseRanges(values []string, image *decoder.Buffer) ([]listing.Range, error) {
	if len(values) == 0 {
		return []listing.Range{{Start: image.Base(), End: image.End()}}, nil
	}

	ranges := make([]listing.Range, 0, len(values))
	for _, value := range values {
		rng, err := listing.ParseRange(value)
		if err != nil {
			return nil, fmt.Errorf("parsing range: %w", err)
		}
		if rng.Start < image.Base() || rng.End > image.End() {
			return nil, fmt.Errorf("range %s is outside of the image $%04x:$%04x", rng, image.Base(), image.End())
		}
		ranges = append(ranges, rng)
	}
	return ranges, nil
}

// printInfo prints information about the image being processed.
func (p *Pipeline) printInfo(opts options.Program, ar *arch.Architecture, image *decoder.Buffer) {
	if opts.Quiet {
		return
	}

	p.logger.Info("Processing image",
		log.String("file", opts.Input),
		log.String("arch", ar.Name()),
		log.Hex("base", image.Base()),
		log.Int("size", image.Len()),
	)
}
