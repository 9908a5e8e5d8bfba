package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gogpu/nir/ir"
)

func newDumpCmd() *cobra.Command {
	var validate bool

	cmd := &cobra.Command{
		Use:   "dump <file>",
		Short: "Print the IR listing of a shader blob",
		Long:  "Dump reads a serialized shader blob (raw or cache-entry-wrapped) and prints its IR listing in text form.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := readShaderFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if validate {
				errs, err := ir.Validate(s)
				if err != nil {
					return fmt.Errorf("%s: %w", args[0], err)
				}
				for _, verr := range errs {
					loggerFromContext(cmd.Context()).Warn("validation", "err", verr.Error())
				}
			}

			fmt.Fprint(cmd.OutOrStdout(), ir.Sprint(s))
			return nil
		},
	}
	cmd.Flags().BoolVar(&validate, "validate", true, "report structural problems in the graph")
	return cmd
}
