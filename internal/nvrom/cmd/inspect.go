package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [rom]",
	Short: "Parse a ROM dump non-interactively",
	Long: `Inspect parses a ROM dump and prints the result without the TUI.
The full parse is available as JSON; the summary lists the identity of
each firmware unit.`,
	Example: `
# Per-unit summary
nvrom inspect /path/to/vbios.rom

# Full parse as JSON
nvrom inspect --output json /path/to/vbios.rom

# Summary plus the first 16 instructions of the init stub
nvrom inspect --disasm 16 /path/to/vbios.rom
  `,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		disasmN, _ := cmd.Flags().GetInt("disasm")

		switch output {
		case "json":
			return runJSON(args[0])
		case "summary":
			return runSummary(args[0], disasmN)
		default:
			return fmt.Errorf("unknown output format %q (want json or summary)", output)
		}
	},
}

func init() {
	inspectCmd.Flags().StringP("output", "o", "summary", "Output format: json or summary")
	inspectCmd.Flags().Int("disasm", 0, "Disassemble N instructions at the init vector")
}
