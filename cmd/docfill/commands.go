package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/reportkit/go-docfill/internal/server"
	"github.com/reportkit/go-docfill/internal/service"
	"github.com/reportkit/go-docfill/internal/storage"
	"github.com/reportkit/go-docfill/pkg/docfill"
)

func runRender(ctx context.Context, cmd *cli.Command) error {
	env := envFromContext(ctx)

	formatName := cmd.String("format")
	if formatName == "" {
		formatName = env.cfg.Report.Format
	}
	format, err := docfill.ParseOutputFormat(formatName)
	if err != nil {
		return err
	}
	env.cfg.Report.Format = string(format)

	engine, err := env.newEngine(format == docfill.FormatPDF)
	if err != nil {
		return fmt.Errorf("unable to prepare engine: %w", err)
	}

	var (
		report docfill.Report
		out    = cmd.String("out")
	)
	if templateFile := cmd.String("template"); templateFile != "" {
		in, err := readInputs(templateFile, cmd.String("payload"), cmd.StringSlice("image"))
		if err != nil {
			return err
		}
		svc := service.New(engine, nil, env.cfg.Report, env.log)
		if report, err = svc.Generate(ctx, in); err != nil {
			return err
		}
		if out == "" {
			out = strings.TrimSuffix(filepath.Base(templateFile), filepath.Ext(templateFile)) + "." + format.Extension()
		}
	} else {
		store, err := storage.New(ctx, env.cfg.Storage, env.log)
		if err != nil {
			return fmt.Errorf("unable to open storage: %w", err)
		}
		svc := service.New(engine, store, env.cfg.Report, env.log)
		if report, err = svc.GenerateConfigured(ctx); err != nil {
			return err
		}
	}

	for _, w := range report.Warnings {
		env.log.Warn("Report warning", zap.Error(w))
	}
	if out == "" {
		return nil
	}
	if err := os.WriteFile(out, report.Output, 0o644); err != nil {
		return fmt.Errorf("unable to write report '%s': %w", out, err)
	}
	env.log.Info("Report written", zap.String("file", out), zap.String("format", string(report.Format)), zap.Int("bytes", len(report.Output)))
	return nil
}

// readInputs reads the local files named on the command line. Images are
// given as key=path.
func readInputs(templateFile, payloadFile string, images []string) (service.Inputs, error) {
	in := service.Inputs{Images: make(map[string]docfill.Image, len(images))}

	var err error
	if in.Template, err = os.ReadFile(templateFile); err != nil {
		return in, fmt.Errorf("unable to read template: %w", err)
	}
	if payloadFile != "" {
		if in.Payload, err = os.ReadFile(payloadFile); err != nil {
			return in, fmt.Errorf("unable to read payload: %w", err)
		}
	}
	for _, spec := range images {
		key, file, ok := strings.Cut(spec, "=")
		if !ok || key == "" || file == "" {
			return in, errors.New("image must be given as KEY=FILE: " + spec)
		}
		data, err := os.ReadFile(file)
		if err != nil {
			return in, fmt.Errorf("unable to read image '%s': %w", key, err)
		}
		in.Images[key] = docfill.Image{Name: filepath.Base(file), Data: data}
	}
	return in, nil
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	env := envFromContext(ctx)
	if addr := cmd.String("addr"); addr != "" {
		env.cfg.HTTP.Addr = addr
	}

	if env.cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// uploads may ask for either format
	engine, err := env.newEngine(true)
	if err != nil {
		return fmt.Errorf("unable to prepare engine: %w", err)
	}
	store, err := storage.New(ctx, env.cfg.Storage, env.log)
	if err != nil {
		return fmt.Errorf("unable to open storage: %w", err)
	}

	svc := service.New(engine, store, env.cfg.Report, env.log)
	return server.New(svc, env.cfg.HTTP, env.log).Run(ctx)
}
