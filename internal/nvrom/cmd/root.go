package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	pathpkg "path/filepath"
	"runtime/pprof"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"nvrom/internal/nvrom/log"
)

func init() {
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Debug logging")

	rootCmd.Flags().BoolP("help", "h", false, "Help")
	rootCmd.Flags().BoolP("no-tui", "n", false, "Print the summary without the TUI")
	rootCmd.Flags().BoolP("json", "j", false, "Print the full parse as JSON")
	rootCmd.Flags().Int("disasm", 0, "Disassemble N instructions at the init vector (implies --no-tui)")
	rootCmd.Flags().String("cpuprofile", "", "Write CPU profile to file")
	rootCmd.Flags().String("memprofile", "", "Write memory profile to file")

	rootCmd.AddCommand(inspectCmd)
}

var rootCmd = &cobra.Command{
	Use:   "nvrom [rom]",
	Short: "GPU firmware ROM inspector",
	Long: `Nvrom parses raw GPU firmware ROM dumps into their sub-images and
pointer-linked tables. It provides an interactive TUI for browsing the
firmware units of a dump and non-interactive JSON and summary output.`,
	Example: `
# Browse a ROM dump interactively
nvrom /path/to/vbios.rom

# Print the parse as JSON
nvrom -j /path/to/vbios.rom
  `,
	Args: cobra.ExactArgs(1),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		debug, _ := cmd.Flags().GetBool("debug")
		log.Setup(debug)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cpuprofile, _ := cmd.Flags().GetString("cpuprofile")
		if cpuprofile != "" {
			f, err := os.Create(cpuprofile)
			if err != nil {
				return fmt.Errorf("could not create CPU profile: %v", err)
			}
			defer f.Close()
			if err := pprof.StartCPUProfile(f); err != nil {
				return fmt.Errorf("could not start CPU profile: %v", err)
			}
			defer pprof.StopCPUProfile()
		}

		memprofile, _ := cmd.Flags().GetString("memprofile")
		if memprofile != "" {
			defer func() {
				f, err := os.Create(memprofile)
				if err != nil {
					fmt.Fprintf(os.Stderr, "could not create memory profile: %v\n", err)
					return
				}
				defer f.Close()
				if err := pprof.WriteHeapProfile(f); err != nil {
					fmt.Fprintf(os.Stderr, "could not write memory profile: %v\n", err)
				}
			}()
		}

		absPath, err := pathpkg.Abs(args[0])
		if err != nil {
			return fmt.Errorf("failed to resolve path: %v", err)
		}
		if _, err := os.Stat(absPath); err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("file not found: %s", args[0])
			}
			return fmt.Errorf("cannot access file: %v", err)
		}

		noTUI, _ := cmd.Flags().GetBool("no-tui")
		jsonOutput, _ := cmd.Flags().GetBool("json")
		disasmN, _ := cmd.Flags().GetInt("disasm")
		if disasmN > 0 {
			noTUI = true
		}

		// Coloring through a pipe garbles the output.
		if !term.IsTerminal(os.Stdout.Fd()) {
			noTUI = true
			os.Setenv("NVROM_NO_COLOR", "1")
		}

		if jsonOutput {
			return runJSON(absPath)
		}
		if noTUI {
			return runSummary(absPath, disasmN)
		}

		program := tea.NewProgram(
			NewModel(absPath),
			tea.WithAltScreen(),
			tea.WithContext(cmd.Context()),
		)
		if _, err := program.Run(); err != nil {
			slog.Error("TUI run error", "error", err)
			return fmt.Errorf("TUI error: %v", err)
		}
		return nil
	},
}

func Execute() {
	// Bypass fang's markdown rendering for non-interactive invocations.
	noTUI := false
	for _, arg := range os.Args[1:] {
		switch arg {
		case "--no-tui", "-n", "--json", "-j", "inspect", "schema":
			noTUI = true
		}
	}
	if !noTUI && !term.IsTerminal(os.Stdout.Fd()) {
		noTUI = true
	}

	if noTUI {
		if err := rootCmd.Execute(); err != nil {
			os.Exit(1)
		}
	} else {
		if err := fang.Execute(
			context.Background(),
			rootCmd,
			fang.WithNotifySignal(os.Interrupt),
		); err != nil {
			os.Exit(1)
		}
	}
}
