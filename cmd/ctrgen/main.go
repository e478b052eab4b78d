// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Command ctrgen writes pseudorandom bytes from a counter mode generator to
// standard output.
package main

import (
	"bufio"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/decred/ctrrand/ctr"
	"github.com/decred/ctrrand/internal/version"
	"github.com/decred/ctrrand/reseeder"
	"github.com/decred/ctrrand/seedsource"
	"github.com/jessevdk/go-flags"
)

// chunkSize is the number of bytes drawn from the generator per read.
const chunkSize = 4096

// closer is implemented by seed sources that hold open resources.
type closer interface {
	Close() error
}

// seedSource returns the seed source selected by the configuration along with
// any member sources that must be closed on shutdown.
func seedSource(cfg *config) (seedsource.Source, []closer, error) {
	var src seedsource.Source
	var closers []closer
	switch cfg.Source {
	case "os":
		src = seedsource.OS
	case "prng":
		src = seedsource.PRNG
	case "device":
		dev := seedsource.NewDevice(cfg.Device)
		closers = append(closers, dev)
		src = dev
	default:
		dev := seedsource.NewDevice(cfg.Device)
		closers = append(closers, dev)
		chain, err := seedsource.NewChain(dev, seedsource.OS, seedsource.PRNG)
		if err != nil {
			return nil, nil, err
		}
		src = chain
	}
	if cfg.RetryInterval > 0 {
		src = seedsource.NewThrottle(src, cfg.RetryInterval)
	}
	return src, closers, nil
}

// newGenerator creates the generator described by the configuration.  A
// coordinator is returned when the generator reseeds in the background, and
// the caller is responsible for stopping it.
func newGenerator(cfg *config) (*ctr.Generator, *reseeder.Coordinator, []closer, error) {
	// A fixed seed yields reproducible output, so nothing may reseed it.
	if cfg.seed != nil {
		g, err := ctr.New(cfg.algorithm, &ctr.Config{
			Seed:           cfg.seed,
			Blocking:       cfg.Blocking,
			MinimumEntropy: cfg.MinEntropy,
		})
		return g, nil, nil, err
	}

	src, closers, err := seedSource(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	coord, err := reseeder.New(&reseeder.Config{
		Source:       src,
		IdleTimeout:  cfg.IdleTimeout,
		PollInterval: cfg.PollInterval,
	})
	if err != nil {
		return nil, nil, closers, err
	}
	var fallback seedsource.Source
	if cfg.Blocking && !cfg.NoFallback {
		fallback = seedsource.PRNG
	}
	g, err := ctr.New(cfg.algorithm, &ctr.Config{
		Coordinator:    coord,
		Fallback:       fallback,
		Blocking:       cfg.Blocking,
		MinimumEntropy: cfg.MinEntropy,
		ReseedTimeout:  cfg.ReseedTimeout,
	})
	if err != nil {
		coord.Stop()
		return nil, nil, closers, err
	}
	return g, coord, closers, nil
}

// generate writes count bytes read from r to w in the given format, or
// until the context is canceled when count is zero.  It returns the number of
// generated bytes.
func generate(ctx context.Context, r io.Reader, w io.Writer, count int64, format string) (int64, error) {
	out := w
	if format == formatHex {
		out = hex.NewEncoder(w)
	}

	buf := make([]byte, chunkSize)
	var written int64
	for count == 0 || written < count {
		if shutdownRequested(ctx) {
			return written, ctx.Err()
		}
		n := len(buf)
		if count > 0 {
			n = int(min(int64(n), count-written))
		}
		if _, err := io.ReadFull(r, buf[:n]); err != nil {
			return written, fmt.Errorf("unable to generate output: %w", err)
		}
		if _, err := out.Write(buf[:n]); err != nil {
			return written, fmt.Errorf("unable to write output: %w", err)
		}
		written += int64(n)
	}
	clear(buf)
	return written, nil
}

// ctrgenMain is the real main function for ctrgen.  It is necessary to work
// around the fact that deferred functions do not run when os.Exit() is called.
func ctrgenMain() error {
	// Load configuration and parse command line.  This function also
	// initializes logging and configures it accordingly.
	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		// Parser errors have already been printed.
		var e *flags.Error
		if !errors.As(err, &e) {
			fmt.Fprintln(os.Stderr, err)
		}
		return err
	}
	if cfg.ShowVersion {
		fmt.Printf("%s version %s\n", filepath.Base(os.Args[0]),
			version.String())
		return nil
	}
	if !cfg.NoFileLogging {
		err := initLogRotator(filepath.Join(cfg.LogDir, defaultLogFilename))
		if err != nil {
			ctrgLog.Error(err)
			return err
		}
		defer logRotator.Close()
	}

	// Get a context that will be canceled when a shutdown signal has been
	// triggered either from an OS signal such as SIGINT (Ctrl+C) or from
	// another subsystem such as a failed write.
	ctx := shutdownListener()
	defer ctrgLog.Debug("Shutdown complete")

	g, coord, closers, err := newGenerator(cfg)
	for _, c := range closers {
		defer c.Close()
	}
	if err != nil {
		ctrgLog.Errorf("Unable to create generator: %v", err)
		return err
	}
	if coord != nil {
		defer coord.Stop()
	}
	ctrgLog.Infof("Generating with %v (%d bits of entropy)", g,
		g.EntropyBits())

	stdout := bufio.NewWriterSize(os.Stdout, chunkSize*2)
	n, err := generate(ctx, g, stdout, cfg.Count, cfg.Format)
	if err == nil && cfg.Format == formatHex {
		err = stdout.WriteByte('\n')
	}
	if flushErr := stdout.Flush(); err == nil {
		err = flushErr
	}
	ctrgLog.Debugf("Generated %d bytes, %d bits of entropy remain", n,
		g.EntropyBits())
	switch {
	case errors.Is(err, context.Canceled):
		return nil
	case err != nil:
		requestShutdown()
		ctrgLog.Errorf("%v", err)
		return err
	}
	return nil
}

func main() {
	if err := ctrgenMain(); err != nil {
		var e *flags.Error
		if errors.As(err, &e) && e.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}
}
