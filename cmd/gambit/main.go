// FILE: cmd/gambit/main.go
// Command gambit is a UCI chess engine. It speaks the protocol on standard
// input and output; logs go to stderr or a file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gambit/cmd/gambit/cli"
	"gambit/internal/config"
	"gambit/internal/core"
	"gambit/internal/engine/proxy"
	"gambit/internal/engine/random"
	"gambit/internal/logx"
	"gambit/internal/monitor"
	"gambit/internal/processor"
	"gambit/internal/response"
	"gambit/internal/search"
	"gambit/internal/storage"
	"gambit/internal/transport"

	"github.com/rs/zerolog"
)

const gracefulShutdownTimeout = 2 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Sub-applications share the logger but not the engine config
	if len(os.Args) > 1 && (os.Args[1] == "journal" || os.Args[1] == "match") {
		log, closer, err := logx.New(logx.Options{Level: os.Getenv("GAMBIT_LOG_LEVEL")})
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		defer closer.Close()
		if err := cli.Run(ctx, os.Args[1], os.Args[2:], log); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", os.Args[1], err)
			return 1
		}
		return 0
	}

	cfg, err := config.Load(os.Args[1:], os.Getenv, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	log, logCloser, err := logx.New(logx.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	defer logCloser.Close()

	eng, engCloser, err := newEngine(cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("engine failed to start")
		return 1
	}
	defer engCloser.Close()

	opts := []processor.Option{
		processor.WithLogger(log),
		processor.WithQuitTimeout(cfg.QuitTimeout),
	}

	var store *storage.Store
	if cfg.JournalPath != "" {
		store, err = storage.NewStore(cfg.JournalPath, log)
		if err != nil {
			log.Error().Err(err).Msg("journal failed to open")
			return 1
		}
		if err := store.InitDB(); err != nil {
			store.Close()
			log.Error().Err(err).Msg("journal schema")
			return 1
		}
		defer func() {
			if err := store.Close(); err != nil {
				log.Warn().Err(err).Msg("journal did not close cleanly")
			}
		}()
		opts = append(opts, processor.WithRecorder(search.Recorder(store)))
		log.Info().Str("path", cfg.JournalPath).Msg("journal enabled")
	}

	out := response.NewWriter(os.Stdout)
	if log.GetLevel() <= zerolog.TraceLevel {
		out.Tap(func(line string) { log.Trace().Str("line", line).Msg("out") })
	}
	proc := processor.New(eng, out, opts...)

	if cfg.MonitorAddr != "" {
		var journal monitor.Journal
		if store != nil {
			journal = store
		}
		mon := monitor.New(proc, journal, log)
		if err := mon.Start(cfg.MonitorAddr); err != nil {
			log.Error().Err(err).Str("addr", cfg.MonitorAddr).Msg("monitor failed to listen")
			return 1
		}
		defer func() {
			if err := mon.Shutdown(gracefulShutdownTimeout); err != nil {
				log.Warn().Err(err).Msg("monitor forced to shutdown")
			}
		}()
	}

	in, err := transport.Open(transport.Mode(cfg.Interactive), cfg.HistoryFile)
	if err != nil {
		log.Error().Err(err).Msg("input failed to open")
		return 1
	}
	defer in.Close()

	name, _ := eng.Identify()
	log.Info().Str("engine", name).Str("backend", cfg.Engine).Msg("session started")

	err = proc.Run(ctx, in)
	if werr := out.Err(); werr != nil {
		log.Error().Err(werr).Msg("output failed")
		return 1
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("session ended")
		return 1
	}
	log.Info().Msg("session ended")
	return 0
}

func newEngine(cfg *config.Config, log zerolog.Logger) (core.Engine, io.Closer, error) {
	switch cfg.Engine {
	case config.EngineProxy:
		eng, err := proxy.New(cfg.EnginePath,
			proxy.WithArgs(cfg.EngineArgs...),
			proxy.WithLogger(log.With().Str("component", "proxy").Logger()),
		)
		if err != nil {
			return nil, nil, err
		}
		return eng, eng, nil
	default:
		opts := []random.Option{
			random.WithIdentity(cfg.Name, cfg.Author),
			random.WithLogger(log.With().Str("component", "engine").Logger()),
			random.WithTick(cfg.Tick),
		}
		if cfg.Seed != 0 {
			opts = append(opts, random.WithSeed(cfg.Seed))
		}
		return random.New(opts...), nopCloser{}, nil
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
