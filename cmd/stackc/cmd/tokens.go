package cmd

import (
	"bufio"

	"github.com/spf13/cobra"

	"github.com/agenthands/stackc/pkg/compiler"
)

func (a *app) newTokensCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tokens <file>",
		Short: "List the classified token stream with block ids",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := a.fs.Read(args[0])
			if err != nil {
				return err
			}
			tokens, err := compiler.New(a.logger).Tokens(args[0], src)
			if err != nil {
				return err
			}

			w := bufio.NewWriter(cmd.OutOrStdout())
			for _, tok := range tokens {
				w.WriteString(tok.String())
				w.WriteByte('\n')
			}
			return w.Flush()
		},
	}
}
