package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/agenthands/stackc/pkg/compiler"
	"github.com/agenthands/stackc/pkg/compiler/diag"
	"github.com/agenthands/stackc/pkg/core/config"
	"github.com/agenthands/stackc/pkg/core/logging"
	"github.com/agenthands/stackc/pkg/source"
)

// exitStatus carries a program's own exit status out of "run".
type exitStatus int

func (e exitStatus) Error() string {
	return fmt.Sprintf("exit status %d", int(e))
}

// app holds state shared by all subcommands of one invocation.
type app struct {
	cfgFile string
	verbose bool
	output  string
	gas     int

	cfg    *config.Config
	logger *slog.Logger
	fs     *source.FS
}

// Execute runs the command line against the process arguments and
// returns the exit status.
func Execute() int {
	return Run(os.Args[1:], os.Stdout, os.Stderr)
}

// Run executes the command tree with the given arguments and streams.
func Run(args []string, stdout, stderr io.Writer) int {
	a := &app{}
	root := a.newRootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if err == nil {
		return 0
	}

	var status exitStatus
	if errors.As(err, &status) {
		return int(status)
	}
	a.printError(stderr, err)
	return 1
}

func (a *app) newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "stackc <file>",
		Short: "Compile a stack language program to x86-64 assembly",
		Long: `stackc compiles a program in a small concatenative stack language
into FASM assembly for 64-bit Linux and writes it to standard output.

Words:
  integers, true, false       push a value
  + - * / = > <               arithmetic and comparison
  dup drop swp rot over       stack shuffling
  dump asciidump              print a number or a character
  if else end                 conditional
  while do end                loop
  rem                         ignore the rest of the line`,
		Args:              cobra.ExactArgs(1),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		RunE:              a.compile,
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (.toml, .yaml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log pipeline stages to stderr")
	root.Flags().StringVarP(&a.output, "output", "o", "", "write assembly to file instead of stdout")

	root.AddCommand(a.newRunCommand())
	root.AddCommand(a.newTokensCommand())
	root.AddCommand(newVersionCommand())
	return root
}

// setup resolves configuration: defaults, then the config file, then flags.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if a.cfgFile != "" {
		loaded, err := config.Load(a.cfgFile)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	if f := cmd.Flags().Lookup("output"); f != nil && f.Changed {
		cfg.Output.Path = a.output
	}
	if f := cmd.Flags().Lookup("gas"); f != nil && f.Changed {
		cfg.Run.GasLimit = a.gas
	}
	if a.verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logging.NewLogger(logging.LoggerConfig{
		Name:   "stackc",
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cmd.ErrOrStderr(),
	})
	a.fs = source.NewFS(cfg.Input.MaxSize)
	return nil
}

func (a *app) compile(cmd *cobra.Command, args []string) error {
	path := args[0]
	src, err := a.fs.Read(path)
	if err != nil {
		return err
	}

	asm, err := compiler.New(a.logger).Compile(path, src)
	if err != nil {
		return err
	}

	if a.cfg.Output.Path != "" {
		if err := a.fs.WriteFile(a.cfg.Output.Path, []byte(asm)); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		a.logger.Info("wrote assembly", "path", a.cfg.Output.Path, "bytes", len(asm))
		return nil
	}

	_, err = io.WriteString(cmd.OutOrStdout(), asm)
	return err
}

// printError renders "file:line:col: error: message" with a styled prefix.
func (a *app) printError(w io.Writer, err error) {
	color := a.cfg == nil || a.cfg.Diagnostics.Color

	prefix := "error:"
	if color {
		style := lipgloss.NewRenderer(w).NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
		prefix = style.Render(prefix)
	}

	var d *diag.Error
	switch {
	case errors.As(err, &d) && d.HasPos:
		fmt.Fprintf(w, "%s: %s %s\n", d.Pos, prefix, d.Message())
	default:
		fmt.Fprintf(w, "%s %v\n", prefix, err)
	}
}
