package cmd

import (
	"bufio"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agenthands/stackc/pkg/compiler"
	"github.com/agenthands/stackc/pkg/vm"
)

func (a *app) newRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Execute a program on the reference VM",
		Long: `run compiles the program for the built-in stack machine and executes it.
Output and exit status match the native executable.`,
		Args: cobra.ExactArgs(1),
		RunE: a.run,
	}
	cmd.Flags().IntVar(&a.gas, "gas", 0, "maximum number of instructions to execute")
	return cmd
}

func (a *app) run(cmd *cobra.Command, args []string) error {
	path := args[0]
	src, err := a.fs.Read(path)
	if err != nil {
		return err
	}

	bc, err := compiler.New(a.logger).Bytecode(path, src)
	if err != nil {
		return err
	}

	out := bufio.NewWriter(cmd.OutOrStdout())
	m := &vm.Machine{Out: out}
	m.Load(bc)
	runErr := m.Run(a.cfg.Run.GasLimit)
	if err := out.Flush(); err != nil && runErr == nil {
		runErr = err
	}
	if runErr != nil {
		return fmt.Errorf("%s: %w", path, runErr)
	}

	a.logger.Debug("program finished", "file", path, "exit", m.ExitCode)
	if m.ExitCode != 0 {
		return exitStatus(m.ExitCode)
	}
	return nil
}
