package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/retroenv/tabledisasm/internal/arch"
	"github.com/retroenv/tabledisasm/internal/config"
	"github.com/retroenv/tabledisasm/internal/options"
	"github.com/spf13/cobra"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

func newArchCommand(opts *options.Program) *cobra.Command {
	var dump bool

	cmd := &cobra.Command{
		Use:   "arch [name]",
		Short: "Show architecture definitions",
		Long: `Show the built-in architectures or the metadata, addressing modes and opcode
table of an architecture, including all consistency faults of its definition.`,
		Example: `
# List the built-in architectures
tabledisasm arch

# Show the 68HC11 opcode table
tabledisasm arch 6811

# Check a definition file
tabledisasm arch -d mycpu.yaml
  `,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			name := opts.Arch
			if len(args) > 0 {
				name = args[0]
			}
			if name == "" && opts.Definition == "" {
				return listArchitectures(out)
			}

			def, err := config.LoadDefinition(*opts, name)
			if err != nil {
				return err
			}
			if dump {
				spew.Fdump(out, def)
				return nil
			}
			return describeArchitecture(out, def)
		},
	}

	cmd.Flags().BoolVar(&dump, "dump", false, "dump the raw definition structure")
	return cmd
}

func listArchitectures(out io.Writer) error {
	if _, err := fmt.Fprintln(out, "Built-in architectures:"); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	for _, name := range config.BuiltinNames() {
		if _, err := fmt.Fprintf(out, "  %s\n", name); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
	}
	return nil
}

// describeArchitecture writes the definition in a human readable form,
// followed by its validation result.
func describeArchitecture(out io.Writer, def arch.Definition) error {
	buf := &strings.Builder{}

	fmt.Fprintf(buf, "Name:          %s\n", def.Name)
	fmt.Fprintf(buf, "Description:   %s\n", def.Description)
	fmt.Fprintf(buf, "Data width:    %d bits\n", def.DataWidth)
	fmt.Fprintf(buf, "Address width: %d bits\n", def.AddressWidth)
	fmt.Fprintf(buf, "Max length:    %d bytes\n", def.MaxLength)
	fmt.Fprintf(buf, "Leadins:       %s\n", formatValues(def.Leadins, 2))
	if len(def.LeadinPairs) > 0 {
		fmt.Fprintf(buf, "Leadin pairs:  %s\n", formatValues(def.LeadinPairs, 4))
	}

	buf.WriteString("\nAddressing modes:\n")
	names := maps.Keys(def.Modes)
	slices.Sort(names)
	for _, name := range names {
		fmt.Fprintf(buf, "  %-10s %q\n", name, def.Modes[name])
	}

	buf.WriteString("\nOpcodes:\n")
	rows := slices.Clone(def.Opcodes)
	slices.SortFunc(rows, func(a, b arch.OpcodeDefinition) bool {
		return a.Key < b.Key
	})
	for _, row := range rows {
		fmt.Fprintf(buf, "  %-8s %-6s %d  %s\n", arch.OpcodeKey(row.Key), row.Mnemonic, row.Length, row.Mode)
	}

	if _, err := arch.New(def); err != nil {
		buf.WriteString("\nConsistency faults:\n")
		for _, fault := range config.ConsistencyFaults(err) {
			fmt.Fprintf(buf, "  %s\n", fault)
		}
	} else {
		buf.WriteString("\nDefinition is consistent.\n")
	}

	if _, err := io.WriteString(out, buf.String()); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

func formatValues(values []uint, digits int) string {
	if len(values) == 0 {
		return "none"
	}
	formatted := make([]string, len(values))
	for i, value := range values {
		formatted[i] = fmt.Sprintf("0x%0*x", digits, value)
	}
	return strings.Join(formatted, ", ")
}
