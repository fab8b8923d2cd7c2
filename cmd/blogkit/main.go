// Command blogkit serves a blog whose posts embed product blocks, and
// imports posts from Markdown, HTML and JSONL files.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/randalmurphal/blogkit/config"
	"github.com/randalmurphal/blogkit/store"
	"github.com/randalmurphal/blogkit/store/boltstore"
	"github.com/randalmurphal/blogkit/store/memstore"
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	return e.Message
}

const usage = `blogkit - a blog server with embedded product blocks.

Usage:
  blogkit serve [options]
  blogkit import [options] PATH...

Run "blogkit <command> -h" for the options of a command.
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := &cli{stdout: os.Stdout, stderr: os.Stderr}
	if err := c.run(ctx, os.Args[1:]); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			if exitErr.Message != "" {
				fmt.Fprintln(os.Stderr, exitErr.Message)
			}
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// cli holds the process surroundings a command runs in.
type cli struct {
	stdout io.Writer
	stderr io.Writer

	// ready, if set, receives the server address once serve is listening.
	ready chan<- net.Addr
}

func (c *cli) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(c.stderr, usage)
		return &ExitError{Code: 2}
	}

	switch args[0] {
	case "serve":
		return c.serve(ctx, args[1:])
	case "import":
		return c.importPosts(ctx, args[1:])
	case "-h", "-help", "--help", "help":
		fmt.Fprint(c.stdout, usage)
		return nil
	default:
		fmt.Fprint(c.stderr, usage)
		return &ExitError{Code: 2, Message: fmt.Sprintf("unknown command %q", args[0])}
	}
}

// commonFlags are the configuration flags shared by every command. They
// override the config file and the environment when set.
type commonFlags struct {
	configPath string
	store      string
	boltPath   string
	logLevel   string
	logFormat  string
}

func (f *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.configPath, "config", "", "Path to a YAML, TOML or JSON config file.")
	fs.StringVar(&f.store, "store", "", "Storage backend: 'memory' or 'bolt'.")
	fs.StringVar(&f.boltPath, "bolt-path", "", "Database file for the bolt store.")
	fs.StringVar(&f.logLevel, "log-level", "", "Logging level: 'debug', 'info', 'warn' or 'error'.")
	fs.StringVar(&f.logFormat, "log-format", "", "Log output format: 'text' or 'json'.")
}

// parseFlags parses args into fs. A help request yields (true, nil).
func parseFlags(fs *flag.FlagSet, args []string) (bool, error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return true, nil
		}
		return false, &ExitError{Code: 2, Message: err.Error()}
	}
	return false, nil
}

// loadConfig layers the config file, the environment and the flags set on
// fs over the defaults, in that order.
func loadConfig(fs *flag.FlagSet, common *commonFlags, apply func(cfg *config.Config, name string)) (config.Config, error) {
	cfg := config.Default()
	if common.configPath != "" {
		var err error
		cfg, err = config.Load(common.configPath)
		if err != nil {
			return cfg, &ExitError{Code: 2, Message: err.Error()}
		}
	}
	cfg.LoadFromEnv()

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "store":
			cfg.Store = common.store
		case "bolt-path":
			cfg.BoltPath = common.boltPath
		case "log-level":
			cfg.LogLevel = common.logLevel
		case "log-format":
			cfg.LogFormat = common.logFormat
		default:
			if apply != nil {
				apply(&cfg, f.Name)
			}
		}
	})

	if err := cfg.Validate(); err != nil {
		return cfg, &ExitError{Code: 2, Message: "invalid configuration: " + err.Error()}
	}
	return cfg, nil
}

// newLogger builds the process logger from the logging settings.
func newLogger(w io.Writer, cfg config.Config) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if cfg.LogFormat == config.FormatJSON {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h), nil
}

// openStore opens the configured backend.
func openStore(cfg config.Config) (store.Store, error) {
	switch cfg.Store {
	case config.StoreBolt:
		return boltstore.Open(cfg.BoltPath)
	default:
		return memstore.New(), nil
	}
}
