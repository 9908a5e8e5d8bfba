package main

import (
	"os"

	"github.com/spf13/cobra"
)

func newCanonCmd() *cobra.Command {
	var output string
	var strip bool

	cmd := &cobra.Command{
		Use:   "canon <file>",
		Short: "Rewrite a shader blob to canonical bytes",
		Long:  "Canon deserializes a blob and serializes it again, producing the canonical byte form. With --strip, debug names and non-interface locations are dropped, yielding the form cache keys are computed over.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := readShaderFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			data := encodeShader(s, strip)
			loggerFromContext(cmd.Context()).Debug("canonicalized", "file", args[0], "bytes", len(data))

			if output != "" {
				return os.WriteFile(output, data, 0o644)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&strip, "strip", false, "drop debug names and non-interface locations")
	return cmd
}
