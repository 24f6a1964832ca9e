// Package cli handles command line interface logic
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/x/term"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/tabledisasm/internal/config"
	"github.com/retroenv/tabledisasm/internal/fileprocessor"
	"github.com/retroenv/tabledisasm/internal/options"
	"github.com/spf13/cobra"
)

// Execute runs the command line interface. A styled help and error output
// is only used when writing to a terminal, in both cases the error has
// already been printed when it is returned.
func Execute(ctx context.Context, version, commit, date string) error {
	rootCmd := NewRootCommand(version, commit, date)

	if !term.IsTerminal(os.Stdout.Fd()) {
		if err := rootCmd.ExecuteContext(ctx); err != nil {
			rootCmd.PrintErrln("Error:", err)
			return fmt.Errorf("executing command: %w", err)
		}
		return nil
	}

	if err := fang.Execute(ctx, rootCmd, fang.WithNotifySignal(os.Interrupt)); err != nil {
		return fmt.Errorf("executing command: %w", err)
	}
	return nil
}

// NewRootCommand returns the disassembler command with all subcommands.
func NewRootCommand(version, commit, date string) *cobra.Command {
	var (
		opts  options.Program
		modes []string
	)

	rootCmd := &cobra.Command{
		Use:   "tabledisasm [flags] <file to disassemble>",
		Short: "Table driven disassembler for 8-bit microcontrollers",
		Long: `tabledisasm disassembles raw binary images using an architecture definition
that describes the opcode table and the operand formats of the addressing modes.`,
		Example: `
# Disassemble a 68HC11 image loaded at $E000
tabledisasm -b '$e000' -o boot.asm boot.hc11

# Disassemble two ranges with a corrected operand template
tabledisasm --mode 'indirecty=(${0:02X}),Y' -r '$e000:$e100' -r '$ff00:$10000' boot.hc11

# Use an architecture definition file
tabledisasm -d mycpu.yaml image.bin
  `,
		Version:       buildinfo.Version(version, commit, date),
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			templates, err := parseModeTemplates(modes)
			if err != nil {
				return err
			}
			opts.ModeTemplates = templates
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && opts.Batch == "" {
				return cmd.Help()
			}
			if len(args) > 0 {
				opts.Input = args[0]
			}
			if err := validateOptions(opts); err != nil {
				return err
			}
			return run(cmd.Context(), opts, version, commit, date)
		},
	}

	readOptionFlags(rootCmd, &opts, &modes)
	readOutputFlags(rootCmd, &opts)

	rootCmd.AddCommand(newArchCommand(&opts))
	rootCmd.AddCommand(newSchemaCommand())
	return rootCmd
}

// run disassembles all input files.
func run(ctx context.Context, opts options.Program, version, commit, date string) error {
	logger := config.CreateLogger(opts.Debug, opts.Quiet)
	fileprocessor.PrintBanner(logger, opts, version, commit, date)

	files, err := fileprocessor.GetFilesToProcess(&opts)
	if err != nil {
		return err
	}

	var failed int
	for _, file := range files {
		fileOpts := opts
		fileOpts.Input = file
		if len(files) > 1 || (opts.Batch != "" && opts.Output == "") {
			fileOpts.Output = fileprocessor.GenerateOutputFilename(file)
		}

		if err := fileprocessor.ProcessFile(ctx, logger, fileOpts); err != nil {
			if errors.Is(err, context.Canceled) {
				logger.Info("Operation cancelled")
				return err
			}
			logger.Error("Disassembling failed", log.String("file", file), log.Err(err))
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(files))
	}
	return nil
}

// validateOptions checks for conflicting option values.
func validateOptions(opts options.Program) error {
	if opts.Batch != "" && opts.Input != "" {
		return errors.New("a file to disassemble can not be combined with batch processing")
	}
	if opts.Batch != "" && opts.Output != "" {
		return errors.New("an output file can not be combined with batch processing")
	}
	return nil
}

// parseModeTemplates parses name=template values. Templates can contain
// commas and equal signs, only the first equal sign separates the name.
func parseModeTemplates(values []string) (map[string]string, error) {
	templates := make(map[string]string, len(values))
	for _, value := range values {
		name, template, ok := strings.Cut(value, "=")
		name = strings.ToLower(strings.TrimSpace(name))
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid mode template '%s', expected name=template", value)
		}
		templates[name] = template
	}
	return templates, nil
}

func readOptionFlags(cmd *cobra.Command, opts *options.Program, modes *[]string) {
	flags := cmd.Flags()
	flags.StringVarP(&opts.Output, "output", "o", "", "name of the output .asm file, printed on console if no name given")
	flags.StringVar(&opts.Batch, "batch", "", "process a batch of given path and file mask and automatically .asm file naming, for example *.bin")
	flags.StringVarP(&opts.Base, "base", "b", "", "address the image is loaded at, for example $e000 or 0xe000")
	flags.StringArrayVarP(&opts.Ranges, "range", "r", nil, "address range start:end to disassemble, end exclusive, can be repeated")
	flags.BoolVar(&opts.AssembleTest, "verify", false, "verify that the generated listing recreates the input")

	persistent := cmd.PersistentFlags()
	persistent.StringVarP(&opts.Arch, "arch", "a", "", "architecture to disassemble for, auto-detected from file extension if not given")
	persistent.StringVarP(&opts.Definition, "definition", "d", "", "YAML architecture definition file to use instead of a built-in architecture")
	persistent.StringArrayVar(modes, "mode", nil, "override an addressing mode operand template as name=template, can be repeated")
	persistent.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	persistent.BoolVarP(&opts.Quiet, "quiet", "q", false, "perform operations quietly")
}

func readOutputFlags(cmd *cobra.Command, opts *options.Program) {
	flags := cmd.Flags()
	flags.BoolVar(&opts.NoHexBytes, "nohexbytes", false, "do not output instruction bytes as hex values")
	flags.BoolVar(&opts.NoAddresses, "noaddresses", false, "do not output addresses")
}
