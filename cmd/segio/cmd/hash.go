package cmd

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/javi11/segio"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var hashXX64 bool

func init() {
	hashCmd := &cobra.Command{
		Use:   "hash FILE...",
		Short: "Print a digest of each file",
		Long:  `Print a SHA-256 (or, with --xx64, a 64-bit xxHash) digest of each file.`,
		Args:  cobra.MinimumNArgs(1),
		RunE:  runHash,
	}
	hashCmd.Flags().BoolVar(&hashXX64, "xx64", false, "use 64-bit xxHash instead of SHA-256")
	rootCmd.AddCommand(hashCmd)
}

func runHash(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	fs := afero.NewOsFs()

	for _, name := range args {
		src, err := segio.OpenSource(ctx, fs, name)
		if err != nil {
			return err
		}
		var sink *segio.HashingSink
		discard := segio.NewSink(ctx, io.Discard)
		if hashXX64 {
			sink = segio.NewXXHash64Sink(discard)
		} else {
			sink = segio.NewSHA256Sink(discard)
		}
		reader := segio.NewReader(src)
		_, err = reader.TransferTo(sink)
		if cerr := reader.Close(); cerr != nil && err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("hash %s: %w", name, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", hex.EncodeToString(sink.Sum()), name)
	}
	return nil
}
