package main

import (
	"context"
	"fmt"
	"io"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/gogpu/nir"
	"github.com/gogpu/nir/blob"
	"github.com/gogpu/nir/cache"
	"github.com/gogpu/nir/ir"
	"github.com/gogpu/nir/serialize"
)

// ctxKey is the type for context keys used in this package.
type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *charmlog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger attached by the root
// command, falling back to the default logger so commands always
// have one.
func loggerFromContext(ctx context.Context) *charmlog.Logger {
	if l, ok := ctx.Value(loggerKey).(*charmlog.Logger); ok {
		return l
	}
	return charmlog.Default()
}

func newLogger(w io.Writer, level charmlog.Level) *charmlog.Logger {
	return charmlog.NewWithOptions(w, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

func execute() error {
	var verbose bool

	root := &cobra.Command{
		Use:          "nir",
		Short:        "nir inspects and manages serialized shader blobs",
		Long:         "nir reads the binary shader IR format: it prints blob contents as IR listings, rewrites blobs to canonical stripped form, and manages the on-disk shader cache.",
		Version:      nir.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newDumpCmd())
	root.AddCommand(newCanonCmd())
	root.AddCommand(newCacheCmd())

	return root.ExecuteContext(context.Background())
}

// readShaderFile loads a blob file, unwrapping it first when it is a
// cache entry, and rebuilds the shader graph.
func readShaderFile(ctx context.Context, path string) (*ir.Shader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if cache.IsEntry(data) {
		loggerFromContext(ctx).Debug("unwrapping cache entry", "file", path)
		data, err = cache.ReadEntry(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	s, err := decodeShader(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// decodeShader gates the deserializer for untrusted input: the codec
// panics on malformed bytes, and a CLI fed an arbitrary file must
// report an error instead.
func decodeShader(data []byte) (s *ir.Shader, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("not a valid shader blob: %v", r)
		}
	}()
	return serialize.Deserialize(blob.NewReader(data)), nil
}

// encodeShader serializes s to its blob form.
func encodeShader(s *ir.Shader, strip bool) []byte {
	w := blob.NewWriter()
	serialize.Serialize(w, s, serialize.Options{Strip: strip})
	return w.Bytes()
}
