package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/reportkit/go-docfill/internal/config"
	"github.com/reportkit/go-docfill/internal/logger"
	"github.com/reportkit/go-docfill/pkg/docfill"
)

const appName = "docfill"

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

// initializeAppContext loads configuration and logging after the command
// line has been parsed.
func initializeAppContext(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	var err error

	if cmd.NArg() == 0 {
		return ctx, nil
	}

	env := envFromContext(ctx)

	configFile := cmd.String("config")
	if env.cfg, err = config.Load(configFile); err != nil {
		return ctx, fmt.Errorf("unable to prepare configuration: %w", err)
	}
	if cmd.Bool("debug") {
		env.cfg.Log.Level = "debug"
	}
	if env.log, err = logger.New(&logger.Config{
		Level:  env.cfg.Log.Level,
		Format: env.cfg.Log.Format,
		Output: env.cfg.Log.Output,
	}); err != nil {
		return ctx, fmt.Errorf("unable to prepare logs: %w", err)
	}
	docfill.SetLogger(env.log)

	env.log.Debug("Program started", zap.Strings("args", os.Args), zap.String("ver", version), zap.String("runtime", runtime.Version()))
	if configFile == "" {
		env.log.Info("Using defaults (no configuration file)")
	}
	return ctx, nil
}

func destroyAppContext(ctx context.Context, cmd *cli.Command) (err error) {
	env := envFromContext(ctx)

	if env.renderer != nil {
		if er := env.renderer.Close(); er != nil {
			err = multierr.Append(err, fmt.Errorf("unable to close renderer: %w", er))
		}
	}
	if env.log != nil {
		env.log.Debug("Program ended", zap.Duration("elapsed", env.uptime()), zap.Strings("parsed args", cmd.Args().Slice()))
		// stderr and stdout cannot always be synced
		_ = env.log.Sync()
	}
	return
}

var errWasHandled bool

func exitErrHandler(ctx context.Context, _ *cli.Command, err error) {
	env := envFromContext(ctx)

	if env.log != nil {
		env.log.Error("Program ended with error", zap.Error(err))
		errWasHandled = true
	}
}

func usageErrorHandler(_ context.Context, _ *cli.Command, err error, _ bool) error {
	return err
}

func main() {
	ctx, stop := signal.NotifyContext(contextWithEnv(context.Background()), os.Interrupt, syscall.SIGTERM)

	app := &cli.Command{
		Name:            appName,
		Usage:           "fills DOCX report templates and renders them to PDF",
		Version:         version + " (" + runtime.Version() + ")",
		HideHelpCommand: true,
		Before:          initializeAppContext,
		After:           destroyAppContext,
		OnUsageError:    usageErrorHandler,
		ExitErrHandler:  exitErrHandler,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "load configuration from `FILE` (YAML)"},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "log at debug level"},
		},
		Commands: []*cli.Command{
			{
				Name:         "render",
				Usage:        "Fills a template and writes the report",
				OnUsageError: usageErrorHandler,
				Action:       runRender,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "template", Aliases: []string{"t"}, Usage: "DOCX template `FILE`; without it the configured report is produced from storage"},
					&cli.StringFlag{Name: "payload", Aliases: []string{"p"}, Usage: "JSON or YAML payload `FILE`"},
					&cli.StringSliceFlag{Name: "image", Aliases: []string{"i"}, Usage: "image for a placeholder as `KEY=FILE`, may be repeated"},
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "write the report to `FILE`"},
					&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "output `TYPE` (pdf, docx)"},
				},
			},
			{
				Name:         "serve",
				Usage:        "Serves report generation over HTTP",
				OnUsageError: usageErrorHandler,
				Action:       runServe,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "addr", Usage: "listen on `ADDRESS` instead of the configured one"},
				},
			},
			{
				Name:  "version",
				Usage: "Shows version information",
				Action: func(_ context.Context, cmd *cli.Command) error {
					_, err := fmt.Fprintf(cmd.Root().Writer, "%s version %s\n", appName, cmd.Root().Version)
					return err
				},
			},
		},
	}

	var err error
	defer func() {
		stop()
		if err != nil {
			if !errWasHandled {
				fmt.Fprintf(os.Stderr, "Program ended with error: %v\n", err)
			}
			os.Exit(1)
		}
	}()
	err = app.Run(ctx, os.Args)
}
