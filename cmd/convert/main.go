package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gilangaryo/converter-files/internal/client"
	"github.com/gilangaryo/converter-files/internal/config"
	"github.com/gilangaryo/converter-files/internal/domain"
	"github.com/gilangaryo/converter-files/internal/logging"
	"go.uber.org/zap"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "convert: %v\n", err)
		return 2
	}

	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	serverURL := fs.String("server", cfg.Client.ServerURL, "converter API base URL")
	formatFlag := fs.String("format", string(domain.DefaultFormat), "output format: jpg, jpeg, png or webp")
	quality := fs.Int("quality", domain.DefaultQuality, "output quality 1-100")
	outDir := fs.String("out", ".", "directory for converted files")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: convert [-server URL] [-format jpg|png|webp] [-quality N] [-out DIR] files...")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	format, err := domain.ParseFormat(*formatFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "convert: %v\n", err)
		return 2
	}

	logger, err := logging.New(logging.Config{Level: cfg.Log.Level, Format: "console", Name: "convert"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "convert: %v\n", err)
		return 2
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	files, readErr := readFiles(fs.Args())
	if readErr != nil {
		logger.Warn("some inputs could not be read", zap.Error(readErr))
	}

	c := client.NewClient(client.Config{
		BaseURL: *serverURL,
		Timeout: cfg.Client.Timeout,
		Logger:  logger,
	})

	results, convErr := c.ConvertAll(ctx, files, client.Options{Format: format, Quality: *quality}, func(index int, loading bool) {
		if loading {
			logger.Info("converting", zap.String("file", files[index].Name), zap.Int("index", index+1), zap.Int("total", len(files)))
		}
	})

	writeErr := writeResults(logger, *outDir, results)

	if err := errors.Join(readErr, convErr, writeErr); err != nil {
		logger.Error("batch finished with failures",
			zap.Int("converted", len(results)),
			zap.Int("requested", fs.NArg()),
			zap.Error(err),
		)
		return 1
	}
	logger.Info("batch finished", zap.Int("converted", len(results)))
	return 0
}

func readFiles(paths []string) ([]client.File, error) {
	files := make([]client.File, 0, len(paths))
	var errs []error
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			errs = append(errs, fmt.Errorf("read %s: %w", path, err))
			continue
		}
		files = append(files, client.File{Name: filepath.Base(path), Data: data})
	}
	return files, errors.Join(errs...)
}

func writeResults(logger *zap.Logger, dir string, results []client.Converted) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	var errs []error
	for _, result := range results {
		target := filepath.Join(dir, result.ConvertedName)
		if err := os.WriteFile(target, result.Data, 0o644); err != nil {
			errs = append(errs, fmt.Errorf("write %s: %w", target, err))
			continue
		}
		logger.Info("wrote converted image",
			zap.String("from", result.OriginalName),
			zap.String("to", target),
			zap.Int("original_bytes", result.OriginalSize),
			zap.Int("bytes", result.Size),
		)
	}
	return errors.Join(errs...)
}
