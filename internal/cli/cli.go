// Package cli implements the gobarber command line client.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/gobarber/gobarber-client/config"
	"github.com/gobarber/gobarber-client/internal/app"
	"github.com/gobarber/gobarber-client/internal/services"
	"github.com/gobarber/gobarber-client/internal/session"
	"github.com/gobarber/gobarber-client/pkg/logger"
	"github.com/gobarber/gobarber-client/pkg/tracing"
)

// Exit codes
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// errUsage marks an error caused by how the command was invoked
var errUsage = errors.New("usage error")

type command struct {
	name    string
	summary string
	flags   func(fs *pflag.FlagSet)
	run     func(ctx context.Context, env *env) error
	// authenticated commands refuse to run without a restored session
	authenticated bool
}

// env is what a command runs with
type env struct {
	app   *app.App
	flags *pflag.FlagSet
	out   io.Writer
}

var commands = map[string]command{}

func register(c command) {
	commands[c.name] = c
}

// CLI runs commands against the configured API
type CLI struct {
	Stdout io.Writer
	Stderr io.Writer
	// Options are handed to app.New; tests use them to swap dependencies
	Options []app.Option
}

// Run executes args[0] with the remaining arguments and returns the exit code
func (c *CLI) Run(ctx context.Context, args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		c.usage()
		if len(args) == 0 {
			return ExitUsage
		}
		return ExitOK
	}

	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(c.Stderr, "unknown command %q\n\n", args[0])
		c.usage()
		return ExitUsage
	}

	fs := pflag.NewFlagSet(cmd.name, pflag.ContinueOnError)
	fs.SetOutput(c.Stderr)
	config.RegisterFlags(fs)
	if cmd.flags != nil {
		cmd.flags(fs)
	}
	if err := fs.Parse(args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return ExitOK
		}
		return ExitUsage
	}

	cfg, err := config.Load(fs)
	if err != nil {
		fmt.Fprintf(c.Stderr, "Failed to load configuration: %v\n", err)
		return ExitFailure
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(c.Stderr, "Invalid configuration: %v\n", err)
		return ExitFailure
	}

	if err := logger.Initialize(logger.Config{
		Level:       cfg.Logging.Level,
		LogDir:      cfg.Logging.Dir,
		Environment: cfg.Client.AppEnv,
		ServiceName: cfg.Observability.ServiceName,
		MaxSizeMB:   cfg.Logging.MaxSizeMB,
		MaxBackups:  cfg.Logging.MaxBackups,
	}); err != nil {
		fmt.Fprintf(c.Stderr, "Failed to initialize logger: %v\n", err)
		return ExitFailure
	}
	defer logger.Sync()

	shutdownTracer, err := tracing.InitTracer(
		cfg.Observability.ServiceName,
		cfg.Observability.ServiceVersion,
		cfg.Client.AppEnv,
		cfg.Observability.ExporterEndpoint,
	)
	if err != nil {
		logger.Warn("Tracing unavailable", zap.Error(err))
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTracer(shutdownCtx); err != nil {
				logger.Warn("Failed to flush traces", zap.Error(err))
			}
		}()
	}

	a, err := app.New(cfg, c.Options...)
	if err != nil {
		fmt.Fprintf(c.Stderr, "Failed to start: %v\n", err)
		return ExitFailure
	}

	if err := a.Sessions.Restore(ctx); err != nil {
		logger.Warn("Failed to restore session", zap.Error(err))
	}
	if cmd.authenticated && session.Gate(a.Sessions.State()) != session.RouteApp {
		fmt.Fprintln(c.Stderr, "You are not signed in. Run `gobarber signin` first.")
		return ExitFailure
	}

	if err := cmd.run(ctx, &env{app: a, flags: fs, out: c.Stdout}); err != nil {
		fmt.Fprintln(c.Stderr, userMessage(err))
		logger.Debug("Command failed", zap.String("command", cmd.name), zap.Error(err))
		if errors.Is(err, errUsage) {
			return ExitUsage
		}
		return ExitFailure
	}
	return ExitOK
}

func (c *CLI) usage() {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(c.Stderr, "Usage: gobarber <command> [flags]")
	fmt.Fprintln(c.Stderr)
	fmt.Fprintln(c.Stderr, "Commands:")
	for _, name := range names {
		fmt.Fprintf(c.Stderr, "  %-13s %s\n", name, commands[name].summary)
	}
}

// userMessage renders err the way the user should see it
func userMessage(err error) string {
	if ce, ok := session.AsCredentialError(err); ok {
		if ce.Kind != session.KindValidation || len(ce.Fields) <= 1 {
			return ce.UserMessage()
		}
		msgs := make([]string, 0, len(ce.Fields))
		for _, f := range ce.Fields {
			msgs = append(msgs, f.Message)
		}
		return strings.Join(msgs, "\n")
	}

	var be *services.BookingError
	if errors.As(err, &be) {
		return be.UserMessage()
	}

	return err.Error()
}

func usageErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{errUsage}, args...)...)
}
