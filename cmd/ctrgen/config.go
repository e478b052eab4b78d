// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/decred/ctrrand/ctr"
	"github.com/decred/ctrrand/seedsource"
	"github.com/decred/dcrd/dcrutil/v4"
	"github.com/jessevdk/go-flags"
)

const (
	defaultConfigFilename = "ctrgen.conf"
	defaultLogDirname     = "logs"
	defaultLogFilename    = "ctrgen.log"
	defaultLogLevel       = "info"
	defaultAlgorithm      = "aes"
	defaultFormat         = "hex"
	defaultSource         = "default"
	defaultCount          = 32
	defaultRetryInterval  = time.Second
	defaultIdleTimeout    = time.Minute
	defaultPollInterval   = 5 * time.Second

	formatHex = "hex"
	formatRaw = "raw"
)

var (
	defaultHomeDir    = dcrutil.AppDataDir("ctrgen", false)
	defaultConfigFile = filepath.Join(defaultHomeDir, defaultConfigFilename)
	defaultLogDir     = filepath.Join(defaultHomeDir, defaultLogDirname)
)

// config defines the configuration options for ctrgen.
//
// See loadConfig for details on the configuration load process.
type config struct {
	ShowVersion bool   `short:"V" long:"version" description:"Display version information and exit"`
	ConfigFile  string `short:"C" long:"configfile" description:"Path to configuration file"`

	// Output options.
	Algorithm string `short:"a" long:"algorithm" description:"Generator algorithm {aes, twofish, chacha20}"`
	Count     int64  `short:"n" long:"count" description:"Number of bytes to generate; 0 generates until interrupted"`
	Format    string `short:"f" long:"format" description:"Output format {hex, raw}"`
	Seed      string `long:"seed" description:"Hex encoded initial seed for reproducible output; disables reseeding"`

	// Seeding options.
	Source        string        `long:"source" description:"Seed source {default, os, device, prng}"`
	Device        string        `long:"device" description:"Entropy device read by the default and device seed sources"`
	RetryInterval time.Duration `long:"retryinterval" description:"Minimum time between attempts to use a failed seed source; 0 disables"`
	IdleTimeout   time.Duration `long:"idletimeout" description:"Time the reseed worker stays running with nothing to reseed"`
	PollInterval  time.Duration `long:"pollinterval" description:"Maximum time between reseed checks"`
	Blocking      bool          `long:"blocking" description:"Wait for reseeding rather than spend entropy below the floor"`
	MinEntropy    int64         `long:"minentropy" description:"Entropy floor in bits used in blocking mode; zero or negative"`
	ReseedTimeout time.Duration `long:"reseedtimeout" description:"Maximum time to wait for a reseed in blocking mode; 0 waits indefinitely"`
	NoFallback    bool          `long:"nofallback" description:"Fail instead of reseeding from the process PRNG when blocking mode runs out of entropy"`

	// Logging options.
	LogDir        string `long:"logdir" description:"Directory to log output"`
	NoFileLogging bool   `long:"nofilelogging" description:"Disable file logging"`
	DebugLevel    string `short:"d" long:"debuglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems -- Use show to list available subsystems"`

	// seed and algorithm are the decoded forms of Seed and Algorithm.
	seed      []byte
	algorithm *ctr.Algorithm
}

// cleanAndExpandPath expands environment variables and leading ~ in the
// passed path, cleans the result, and returns it.
func cleanAndExpandPath(path string) string {
	// Nothing to do when no path is given.
	if path == "" {
		return path
	}

	// NOTE: The os.ExpandEnv doesn't work with Windows cmd.exe-style
	// %VARIABLE%, but the variables can still be expanded via POSIX-style
	// $VARIABLE.
	path = os.ExpandEnv(path)
	if !strings.HasPrefix(path, "~") {
		return filepath.Clean(path)
	}

	// Expand initial ~ to the current user's home directory, or ~otheruser to
	// otheruser's home directory.  On Windows, both forward and backward
	// slashes can be used.
	path = path[1:]
	var pathSeparators string
	if filepath.Separator == '/' {
		pathSeparators = "/"
	} else {
		pathSeparators = "/\\"
	}
	if i := strings.IndexAny(path, pathSeparators); i != -1 && i != 0 {
		// Only the current user is supported.
		return filepath.Clean("~" + path)
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Clean("~" + path)
	}
	return filepath.Join(homeDir, path)
}

// fileExists reports whether the named file or directory exists.
func fileExists(name string) bool {
	_, err := os.Stat(name)
	return !errors.Is(err, fs.ErrNotExist)
}

// newConfigParser returns a new command line flags parser.
func newConfigParser(cfg *config, options flags.Options) *flags.Parser {
	return flags.NewParser(cfg, options)
}

// newDefaultConfig returns a config populated with the default values.
func newDefaultConfig() config {
	return config{
		ConfigFile:    defaultConfigFile,
		Algorithm:     defaultAlgorithm,
		Count:         defaultCount,
		Format:        defaultFormat,
		Source:        defaultSource,
		Device:        seedsource.DefaultDevicePath(),
		RetryInterval: defaultRetryInterval,
		IdleTimeout:   defaultIdleTimeout,
		PollInterval:  defaultPollInterval,
		LogDir:        defaultLogDir,
		DebugLevel:    defaultLogLevel,
	}
}

// loadConfig initializes and parses the config using a config file and command
// line options.
//
// The configuration proceeds as follows:
//  1. Start with a default config with sane settings
//  2. Pre-parse the command line to check for an alternative config file
//  3. Load configuration file overwriting defaults with any specified options
//  4. Parse CLI options and overwrite/add any specified options
//
// The above results in ctrgen functioning properly without any config settings
// while still allowing the user to override settings with config files and
// command line options.  Command line options always take precedence.
//
// A flags.Error of type flags.ErrHelp is returned when help was requested and
// the usage message has already been printed.
func loadConfig(args []string) (*config, error) {
	// Pre-parse the command line options to see if an alternative config
	// file or the version flag was specified.  Any errors aside from the
	// help message error can be ignored here since they will be caught by
	// the final parse below.
	preCfg := newDefaultConfig()
	preParser := newConfigParser(&preCfg, flags.HelpFlag)
	_, err := preParser.ParseArgs(args)
	if err != nil {
		var e *flags.Error
		if errors.As(err, &e) && e.Type == flags.ErrHelp {
			fmt.Fprintln(os.Stdout, err)
			return nil, err
		}
	}

	// Show the version and exit if the version flag was specified.
	appName := filepath.Base(os.Args[0])
	appName = strings.TrimSuffix(appName, filepath.Ext(appName))
	if preCfg.ShowVersion {
		return &preCfg, nil
	}

	// Load additional config from file.  A missing file is only an error
	// when it was explicitly requested.
	cfg := newDefaultConfig()
	parser := newConfigParser(&cfg, flags.Default)
	configFile := cleanAndExpandPath(preCfg.ConfigFile)
	if preCfg.ConfigFile != defaultConfigFile || fileExists(configFile) {
		err := flags.NewIniParser(parser).ParseFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error parsing config file %s: %w",
				configFile, err)
		}
	}

	// Parse command line options again to ensure they take precedence.
	remainingArgs, err := parser.ParseArgs(args)
	if err != nil {
		return nil, err
	}
	if len(remainingArgs) > 0 {
		str := "%s: unexpected arguments %v -- use --help to show usage"
		return nil, fmt.Errorf(str, appName, remainingArgs)
	}

	// Special show command to list supported subsystems and exit.
	if cfg.DebugLevel == "show" {
		fmt.Println("Supported subsystems", supportedSubsystems())
		os.Exit(0)
	}

	if err := cfg.normalize(); err != nil {
		return nil, fmt.Errorf("%s: %w", appName, err)
	}

	// Parse, validate, and set debug log level(s).
	if err := parseAndSetDebugLevels(cfg.DebugLevel); err != nil {
		return nil, fmt.Errorf("%s: %w", appName, err)
	}

	return &cfg, nil
}

// normalize validates the parsed options and fills in the derived fields.
func (cfg *config) normalize() error {
	cfg.LogDir = cleanAndExpandPath(cfg.LogDir)
	cfg.Device = cleanAndExpandPath(cfg.Device)

	cfg.Algorithm = strings.ToLower(cfg.Algorithm)
	alg, ok := ctr.Algorithms()[cfg.Algorithm]
	if !ok {
		return fmt.Errorf("unknown algorithm %q", cfg.Algorithm)
	}
	cfg.algorithm = alg

	cfg.Format = strings.ToLower(cfg.Format)
	switch cfg.Format {
	case formatHex, formatRaw:
	default:
		return fmt.Errorf("unknown output format %q", cfg.Format)
	}

	switch cfg.Source {
	case "default", "os", "device", "prng":
	default:
		return fmt.Errorf("unknown seed source %q", cfg.Source)
	}

	if cfg.Count < 0 {
		return fmt.Errorf("count %d must not be negative", cfg.Count)
	}
	if cfg.MinEntropy > 0 {
		return fmt.Errorf("minimum entropy %d must not be positive",
			cfg.MinEntropy)
	}
	if cfg.ReseedTimeout < 0 || cfg.RetryInterval < 0 {
		return errors.New("timeouts and intervals must not be negative")
	}
	if cfg.IdleTimeout <= 0 || cfg.PollInterval <= 0 {
		return errors.New("the idle timeout and poll interval must be " +
			"positive")
	}

	if cfg.Seed != "" {
		seed, err := hex.DecodeString(cfg.Seed)
		if err != nil {
			return fmt.Errorf("malformed seed: %w", err)
		}
		cfg.seed = seed
	}
	return nil
}
