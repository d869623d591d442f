package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/javi11/segio"
	"github.com/klauspost/compress/zlib"
	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
)

var (
	copyWorkers   int
	copyRetries   int
	copyRateLimit int
	copyDeflate   bool
	copyInflate   bool
	copyTimeout   time.Duration
)

func init() {
	copyCmd := &cobra.Command{
		Use:   "copy SOURCE... DEST_DIR",
		Short: "Copy files into a directory through segmented buffers",
		Long: `Copy one or more files into a destination directory. Sources are
processed in parallel, each streamed through a segmented buffer with
optional compression, decompression, and rate limiting.`,
		Args: cobra.MinimumNArgs(2),
		RunE: runCopy,
	}
	copyCmd.Flags().IntVar(&copyWorkers, "workers", 0, "parallel copies (default from config)")
	copyCmd.Flags().IntVar(&copyRetries, "retries", -1, "retries for transient open failures (default from config)")
	copyCmd.Flags().IntVar(&copyRateLimit, "rate-limit", -1, "bytes per second per file, 0 = unlimited (default from config)")
	copyCmd.Flags().BoolVar(&copyDeflate, "deflate", false, "compress while copying; destinations get a .z suffix")
	copyCmd.Flags().BoolVar(&copyInflate, "inflate", false, "decompress while copying; a .z suffix is stripped")
	copyCmd.Flags().DurationVar(&copyTimeout, "timeout", 0, "per-file timeout, 0 = none")
	rootCmd.AddCommand(copyCmd)
}

func runCopy(cmd *cobra.Command, args []string) error {
	if copyDeflate && copyInflate {
		return fmt.Errorf("--deflate and --inflate are mutually exclusive")
	}
	sources, destDir := args[:len(args)-1], args[len(args)-1]
	cfg := currentConfig.Copy
	if copyWorkers > 0 {
		cfg.Workers = copyWorkers
	}
	if copyRetries >= 0 {
		cfg.Retries = copyRetries
	}
	if copyRateLimit >= 0 {
		cfg.RateLimit = copyRateLimit
	}

	ctx := cmd.Context()
	log := slog.Default().With("component", "copy")
	fs := afero.NewOsFs()
	if ok, err := afero.DirExists(fs, destDir); err != nil {
		return err
	} else if !ok {
		return fmt.Errorf("destination directory %s does not exist", destDir)
	}

	p := pool.New().WithErrors().WithContext(ctx).WithMaxGoroutines(cfg.Workers)
	for _, name := range sources {
		p.Go(func(ctx context.Context) error {
			return copyFile(ctx, log, fs, cfg, name, destDir)
		})
	}
	return p.Wait()
}

func copyFile(ctx context.Context, log *slog.Logger, fs afero.Fs, cfg CopyConfig, name, destDir string) error {
	if copyTimeout > 0 {
		var scope *segio.CancelScope
		ctx, scope = segio.WithCancelScope(ctx, segio.WithDeadline(time.Now().Add(copyTimeout)))
		defer scope.Cancel()
	}

	src, err := retry.DoWithData(
		func() (segio.Source, error) { return segio.OpenSource(ctx, fs, name) },
		retry.Context(ctx),
		retry.Attempts(uint(cfg.Retries)+1),
		retry.Delay(100*time.Millisecond),
	)
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer func() { _ = src.Close() }()

	destName := filepath.Base(name)
	if copyDeflate {
		destName += ".z"
	} else if copyInflate {
		src = segio.NewInflateSource(src)
		if ext := filepath.Ext(destName); ext == ".z" {
			destName = destName[:len(destName)-len(ext)]
		}
	}

	dst, err := segio.CreateSink(ctx, fs, filepath.Join(destDir, destName))
	if err != nil {
		return fmt.Errorf("create %s: %w", destName, err)
	}
	if cfg.RateLimit > 0 {
		dst = segio.NewThrottleSink(ctx, dst, rate.Limit(cfg.RateLimit), cfg.RateLimit)
	}
	if copyDeflate {
		dst, err = segio.NewDeflateSink(dst, zlib.DefaultCompression)
		if err != nil {
			return err
		}
	}

	start := time.Now()
	reader := segio.NewReader(src)
	n, err := reader.TransferTo(dst)
	if cerr := dst.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("copy %s: %w", name, err)
	}
	log.Info("copied file",
		"file", name,
		"dest", destName,
		"bytes", n,
		"elapsed", time.Since(start))
	return nil
}
