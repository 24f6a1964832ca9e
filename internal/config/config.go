// Package config handles application configuration and setup
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/tabledisasm/internal/arch"
	"github.com/retroenv/tabledisasm/internal/arch/hc11"
	"github.com/retroenv/tabledisasm/internal/options"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"
)

var builtinDefinitions = map[string]func() arch.Definition{
	hc11.Name: hc11.Definition,
	"hc11":    hc11.Definition,
}

// CreateLogger creates a logger with appropriate settings
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

// BuiltinNames returns the sorted names of all built-in architectures.
func BuiltinNames() []string {
	names := maps.Keys(builtinDefinitions)
	slices.Sort(names)
	return names
}

// LoadDefinition returns the architecture definition selected by the
// options, with the addressing mode template overrides applied. A definition
// file takes precedence over the architecture name.
func LoadDefinition(opts options.Program, name string) (arch.Definition, error) {
	var (
		def arch.Definition
		err error
	)

	if opts.Definition != "" {
		def, err = LoadDefinitionFile(opts.Definition)
		if err != nil {
			return arch.Definition{}, err
		}
	} else {
		constructor, ok := builtinDefinitions[strings.ToLower(name)]
		if !ok {
			return arch.Definition{}, fmt.Errorf("unsupported architecture '%s'. Valid options: %s",
				name, strings.Join(BuiltinNames(), ", "))
		}
		def = constructor()
	}

	if len(opts.ModeTemplates) > 0 {
		def = def.WithModeTemplates(opts.ModeTemplates)
	}
	return def, nil
}

// LoadDefinitionFile reads an architecture definition from a YAML file.
// Unknown fields are rejected to catch typos in the definition.
func LoadDefinitionFile(path string) (arch.Definition, error) {
	file, err := os.Open(path)
	if err != nil {
		return arch.Definition{}, fmt.Errorf("opening definition file %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	var def arch.Definition
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&def); err != nil {
		return arch.Definition{}, fmt.Errorf("decoding definition file %s: %w", path, err)
	}
	return def, nil
}

// CreateArchitecture validates the definition and returns the architecture.
// Every table consistency fault is logged before the error is returned.
func CreateArchitecture(logger *log.Logger, def arch.Definition) (*arch.Architecture, error) {
	ar, err := arch.New(def)
	if err == nil {
		logger.Debug("Architecture loaded",
			log.String("name", ar.Name()),
			log.Int("opcodes", len(def.Opcodes)),
			log.Int("modes", len(def.Modes)))
		return ar, nil
	}

	for _, fault := range ConsistencyFaults(err) {
		logger.Error("Architecture definition fault",
			log.String("architecture", def.Name),
			log.String("subject", fault.Subject),
			log.Err(fault.Err))
	}
	return nil, err
}

// ConsistencyFaults returns all consistency errors contained in the error tree.
func ConsistencyFaults(err error) []*arch.ConsistencyError {
	var faults []*arch.ConsistencyError
	switch e := err.(type) {
	case *arch.ConsistencyError:
		return []*arch.ConsistencyError{e}
	case interface{ Unwrap() []error }:
		for _, inner := range e.Unwrap() {
			faults = append(faults, ConsistencyFaults(inner)...)
		}
	case interface{ Unwrap() error }:
		faults = append(faults, ConsistencyFaults(e.Unwrap())...)
	}
	return faults
}
