// Package detector handles architecture detection.
package detector

import (
	"path/filepath"
	"strings"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/tabledisasm/internal/arch/hc11"
	"github.com/retroenv/tabledisasm/internal/options"
)

// Detector handles architecture detection from file extensions and options.
type Detector struct {
	logger *log.Logger
}

// New creates a new architecture detector.
func New(logger *log.Logger) *Detector {
	return &Detector{
		logger: logger,
	}
}

// Detect determines the architecture name from options or file auto-detection.
// It first checks if an architecture is explicitly specified in options,
// otherwise attempts to detect it from the input filename extension.
func (d *Detector) Detect(opts options.Program) string {
	if opts.Arch != "" {
		return strings.ToLower(opts.Arch)
	}

	name, known := d.detectFromFile(opts.Input)
	if !known {
		d.logger.Debug("Unknown file extension, using default architecture",
			log.String("arch", name),
			log.String("file", opts.Input))
		return name
	}

	d.logger.Debug("Auto-detected architecture",
		log.String("arch", name),
		log.String("file", opts.Input))
	return name
}

// detectFromFile determines the architecture based on file extension.
// For unknown extensions the 68HC11 is returned, as it is the only
// built-in architecture, and known is false.
func (d *Detector) detectFromFile(filename string) (name string, known bool) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".hc11", ".s11", ".6811":
		return hc11.Name, true
	default:
		return hc11.Name, false
	}
}
