// Command filexfer uploads files, downloads them into the local cache and
// clears the cache, using the transfer controller.
//
//	filexfer [-config path] [-key storage_key] upload <file> [name]
//	filexfer [-config path] [-key storage_key] download <name> [url]
//	filexfer [-config path] clear-cache
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rise-and-shine/filexfer/cfgloader"
	"github.com/rise-and-shine/filexfer/filestate"
	"github.com/rise-and-shine/filexfer/observability/logger"
	"github.com/rise-and-shine/filexfer/observability/tracing"
	"github.com/rise-and-shine/filexfer/transfer"
)

const (
	serviceName    = "filexfer"
	serviceVersion = "0.1.0"

	cmdUpload     = "upload"
	cmdDownload   = "download"
	cmdClearCache = "clear-cache"
)

var (
	stdOut io.Writer = os.Stdout
	stdErr io.Writer = os.Stderr

	errUsage = errors.New("usage: filexfer [-config path] [-key storage_key] upload <file> [name] | download <name> [url] | clear-cache")
)

type cliOptions struct {
	configPath string
	storageKey string
	command    string
	args       []string
}

func main() {
	opts, err := parseCLIFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(stdErr, err.Error())
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, opts)
	stop()
	os.Exit(code)
}

func parseCLIFlags(args []string) (cliOptions, error) {
	fs := flag.NewFlagSet(serviceName, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var opts cliOptions
	fs.StringVar(&opts.configPath, "config", "", "config file path (default ./config/${ENVIRONMENT}.yaml or ./config.yaml)")
	fs.StringVar(&opts.storageKey, "key", "", "storage key, routes the file to the direct-storage backend")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, fmt.Errorf("parse flags: %w", err)
	}

	rest := fs.Args()
	if len(rest) == 0 {
		return cliOptions{}, errUsage
	}
	opts.command, opts.args = rest[0], rest[1:]

	switch {
	case opts.command == cmdUpload && (len(opts.args) == 1 || len(opts.args) == 2):
	case opts.command == cmdDownload && (len(opts.args) == 1 || len(opts.args) == 2):
	case opts.command == cmdClearCache && len(opts.args) == 0:
	default:
		return cliOptions{}, errUsage
	}

	if opts.command == cmdDownload && len(opts.args) == 1 && opts.storageKey == "" {
		return cliOptions{}, errors.New("download needs a url or -key")
	}

	return opts, nil
}

func run(ctx context.Context, opts cliOptions) int {
	loadOpts := []cfgloader.Option{cfgloader.WithSilent()}
	if opts.configPath != "" {
		loadOpts = append(loadOpts, cfgloader.WithPath(opts.configPath))
	}

	cfg, err := cfgloader.Load[transfer.Config](loadOpts...)
	if err != nil {
		fmt.Fprintf(stdErr, "load config: %v\n", err)
		return 1
	}

	logger.SetGlobal(cfg.Logger)
	defer func() { _ = logger.Sync() }()

	shutdown, err := tracing.InitGlobalTracer(cfg.Tracing, serviceName, serviceVersion)
	if err != nil {
		logger.Errorx(err)
		return 1
	}
	defer func() { _ = shutdown() }()

	controller, err := transfer.NewFromConfig(ctx, cfg)
	if err != nil {
		logger.Errorx(err)
		return 1
	}

	err = execute(ctx, controller, opts)
	switch {
	case err == nil:
		return 0
	case transfer.IsCancelled(err):
		fmt.Fprintln(stdErr, "cancelled")
		return 130
	default:
		logger.Errorx(err)
		return 1
	}
}

func execute(ctx context.Context, controller *transfer.Controller, opts cliOptions) error {
	log := logger.Named("cli")

	switch opts.command {
	case cmdUpload:
		src := opts.args[0]
		name := filepath.Base(src)
		if len(opts.args) == 2 {
			name = opts.args[1]
		}

		state := filestate.NewBuilder().Name(name).StorageKey(opts.storageKey).Build()
		saved, err := controller.Save(ctx, state, transfer.FilePayload(src), progressLogger(log, name))
		if err != nil {
			return err
		}
		fmt.Fprintf(stdOut, "%s\t%s\n", saved.Name(), saved.URL())

	case cmdDownload:
		b := filestate.NewBuilder().Name(opts.args[0]).StorageKey(opts.storageKey)
		if len(opts.args) == 2 {
			b.URL(opts.args[1])
		}

		path, err := controller.Fetch(ctx, b.Build(), progressLogger(log, opts.args[0]))
		if err != nil {
			return err
		}
		fmt.Fprintln(stdOut, path)

	case cmdClearCache:
		if err := controller.ClearCache(); err != nil {
			return err
		}
		log.Info("cache cleared")
	}

	return nil
}

func progressLogger(log logger.Logger, name string) transfer.ProgressFunc {
	return func(done, total int64) {
		log.With("file", name, "done", done, "total", total).Debug("progress")
	}
}
