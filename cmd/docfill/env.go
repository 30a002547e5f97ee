package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/reportkit/go-docfill/internal/config"
	"github.com/reportkit/go-docfill/pkg/docfill"
	"github.com/reportkit/go-docfill/pkg/docfill/fonts"
	"github.com/reportkit/go-docfill/pkg/docfill/render"
)

// appEnv is the program state shared by all commands.
type appEnv struct {
	cfg      *config.Config
	log      *zap.Logger
	renderer *render.ChromedpRenderer
	start    time.Time
}

type envKey struct{}

func contextWithEnv(ctx context.Context) context.Context {
	return context.WithValue(ctx, envKey{}, &appEnv{
		cfg:   config.Default(),
		log:   zap.NewNop(),
		start: time.Now(),
	})
}

func envFromContext(ctx context.Context) *appEnv {
	if env, ok := ctx.Value(envKey{}).(*appEnv); ok {
		return env
	}
	panic("program environment is missing from context")
}

func (e *appEnv) uptime() time.Duration {
	return time.Since(e.start)
}

// newEngine builds the engine from configuration. The PDF renderer is only
// started when withRenderer is set.
func (e *appEnv) newEngine(withRenderer bool) (*docfill.Engine, error) {
	store, err := fonts.NewDirStore(e.cfg.Fonts.Dirs...)
	if err != nil {
		e.log.Warn("Some font directories could not be scanned", zap.Error(err))
	}
	if len(store.Skipped) > 0 {
		e.log.Debug("Unreadable font files skipped", zap.Strings("files", store.Skipped))
	}

	engineCfg := docfill.DefaultConfig()
	engineCfg.FallbackFont = e.cfg.Fonts.Fallback

	opts := []docfill.Option{
		docfill.WithConfig(engineCfg),
		docfill.WithFontStore(store),
		docfill.WithLogger(e.log),
	}
	if withRenderer {
		if e.renderer, err = render.NewChromedpRenderer(&render.ChromedpConfig{
			DefaultTimeout: e.cfg.Render.Timeout,
			RemoteURL:      e.cfg.Render.RemoteURL,
			NoSandbox:      e.cfg.Render.NoSandbox,
			Paper:          render.Paper(e.cfg.Render.Paper),
			Logger:         e.log,
		}); err != nil {
			return nil, err
		}
		opts = append(opts, docfill.WithRenderer(e.renderer))
	}
	return docfill.New(opts...)
}
