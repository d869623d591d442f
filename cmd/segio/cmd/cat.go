package cmd

import (
	"log/slog"
	"os"

	"github.com/javi11/segio"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var catInflate bool

func init() {
	catCmd := &cobra.Command{
		Use:   "cat FILE...",
		Short: "Stream files to standard output",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runCat,
	}
	catCmd.Flags().BoolVar(&catInflate, "inflate", false, "decompress DEFLATE input while streaming")
	rootCmd.AddCommand(catCmd)
}

func runCat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := slog.Default().With("component", "cat")
	fs := afero.NewOsFs()

	out := segio.NewWriter(segio.NewSink(ctx, os.Stdout))
	defer func() {
		if err := out.Flush(); err != nil {
			log.Error("flush stdout", "err", err)
		}
	}()

	for _, name := range args {
		src, err := segio.OpenSource(ctx, fs, name)
		if err != nil {
			return err
		}
		if catInflate {
			src = segio.NewInflateSource(src)
		}
		n, err := out.TransferFrom(src)
		if cerr := src.Close(); cerr != nil && err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}
		log.Debug("streamed file", "file", name, "bytes", n)
	}
	return nil
}
