package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	catalog2pdf "github.com/alnah/go-catalog2pdf"
	"github.com/alnah/go-catalog2pdf/internal/config"
	"github.com/alnah/go-catalog2pdf/internal/hints"
	"github.com/alnah/go-catalog2pdf/internal/store"
)

// ErrUnknownCommand is returned for an unrecognized subcommand.
var ErrUnknownCommand = errors.New("unknown command")

// runMain dispatches to a command and returns the process exit code.
// With no command, or when the first argument is a flag, generate runs.
func runMain(args []string, env *Environment) int {
	ctx, stop := notifyContext(context.Background())
	defer stop()

	cmd, rest := "generate", args[1:]
	if len(rest) > 0 && (rest[0] == "-h" || rest[0] == "--help") {
		printUsage(env.Stdout)
		return ExitSuccess
	}
	if len(rest) > 0 && !isFlag(rest[0]) {
		cmd, rest = rest[0], rest[1:]
	}

	var err error
	switch cmd {
	case "generate":
		err = runGenerateCmd(ctx, rest, env)
	case "serve":
		err = runServeCmd(ctx, rest, env)
	case "import":
		err = runImportCmd(ctx, rest, env)
	case "version":
		fmt.Fprintf(env.Stdout, "catalog2pdf %s\n", Version)
		return ExitSuccess
	case "help":
		runHelp(rest, env)
		return ExitSuccess
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownCommand, cmd)
		printUsage(env.Stderr)
	}

	if errors.Is(err, flag.ErrHelp) {
		runHelp([]string{cmd}, env)
		return ExitSuccess
	}
	if err != nil {
		fmt.Fprintln(env.Stderr, describeError(err, env.Config))
	}
	return exitCodeFor(err)
}

func isFlag(arg string) bool {
	return len(arg) > 1 && arg[0] == '-'
}

// describeError renders err for the terminal, in the wording users of the
// catalog already know, followed by an actionable hint when one applies.
func describeError(err error, cfg *config.Config) string {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	switch {
	case errors.Is(err, store.ErrDataNotFound):
		path := absPath(cfg.Data.Path)
		return "Arquivo de dados não encontrado: " + path + hints.ForDataFile(path)
	case errors.Is(err, catalog2pdf.ErrNoProducts):
		return fmt.Sprintf(`Nenhum produto encontrado em %s (esperado array ou campo "produtos")`,
			filepath.Base(cfg.Data.Path)) + hints.ForNoProducts()
	case errors.Is(err, catalog2pdf.ErrBrowserConnect):
		return err.Error() + hints.ForBrowserConnect()
	case errors.Is(err, catalog2pdf.ErrPageLoad):
		return err.Error() + hints.ForTimeout()
	case errors.Is(err, config.ErrConfigNotFound):
		return err.Error() + hints.ForConfigNotFound(nil)
	case errors.Is(err, ErrWriteOutput):
		return err.Error() + hints.ForOutputDirectory()
	}
	return err.Error()
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// loadConfig builds the effective config for a command and records it in env.
func loadConfig(common commonFlags, env *Environment) (*config.Config, error) {
	cfg, err := config.Load(common.config)
	if err != nil {
		return nil, err
	}
	env.Config = cfg
	return cfg, nil
}

// newLogger builds the CLI logger: console output at warn level, or debug
// with --verbose. JSON output is used by the long-running service.
func newLogger(w io.Writer, verbose, jsonOutput bool) *zap.Logger {
	level := zapcore.WarnLevel
	if jsonOutput {
		level = zapcore.InfoLevel
	}
	if verbose {
		level = zapcore.DebugLevel
	}

	var enc zapcore.Encoder
	if jsonOutput {
		enc = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	} else {
		encCfg := zap.NewDevelopmentEncoderConfig()
		encCfg.TimeKey = ""
		enc = zapcore.NewConsoleEncoder(encCfg)
	}
	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), level))
}

// openStore returns the PostgreSQL store when a DSN is configured and the
// file store otherwise.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	if cfg.Postgres.DSN != "" {
		return store.OpenPostgres(ctx, cfg.Postgres.DSN)
	}
	return store.NewJSONStore(cfg.Data.Path), nil
}
