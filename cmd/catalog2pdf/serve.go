package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	catalog2pdf "github.com/alnah/go-catalog2pdf"
	"github.com/alnah/go-catalog2pdf/internal/config"
	"github.com/alnah/go-catalog2pdf/internal/metrics"
	"github.com/alnah/go-catalog2pdf/internal/server"
)

func runServeCmd(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseServeFlags(args)
	if err != nil {
		return err
	}
	if len(positional) > 0 {
		return fmt.Errorf("%w: unexpected argument %q", ErrInvalidFlags, positional[0])
	}
	return runServe(ctx, flags, env)
}

// runServe wires the product store, browser pool, cache, backups and
// metrics into the HTTP service and blocks until ctx is canceled.
func runServe(ctx context.Context, flags *serveFlags, env *Environment) error {
	cfg, err := loadConfig(flags.common, env)
	if err != nil {
		return err
	}
	mergeServeFlags(flags, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(env.Stderr, flags.common.verbose, true)
	defer func() { _ = logger.Sync() }()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	m := metrics.New()

	opts, err := converterOptions(cfg, logger)
	if err != nil {
		return err
	}
	opts = append(opts, catalog2pdf.WithObserver(m))
	cache, closeCache, err := newCache(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closeCache() }()
	if cache != nil {
		opts = append(opts, catalog2pdf.WithCache(cache))
	}

	size := catalog2pdf.ResolvePoolSize(cfg.Render.Workers)
	pool := catalog2pdf.NewConverterPool(size, opts...)
	defer func() {
		if err := pool.Close(); err != nil {
			logger.Warn("closing browser pool", zap.Error(err))
		}
	}()
	logger.Debug("browser pool ready", zap.Int("size", size))

	archiver, err := newArchiver(ctx, cfg, cfg.Backup.Dir)
	if err != nil {
		return err
	}

	srv := server.New(server.Deps{
		Store:    st,
		Renderer: server.PoolRenderer{Pool: pool},
		Archiver: archiver,
		Metrics:  m,
		Logger:   logger,
	}, server.Options{
		OutputPath:  cfg.Output.Path,
		WriteHTML:   cfg.Output.HTML,
		ImagesDir:   cfg.Data.Images,
		Title:       cfg.Catalog.Title,
		Columns:     cfg.Catalog.Columns,
		StaticDir:   cfg.Server.StaticDir,
		CORSOrigins: cfg.Server.CORSOrigins,
		RateLimit:   cfg.Server.RateLimit,
		RateBurst:   cfg.Server.RateBurst,
	})
	return srv.Run(ctx, cfg.Server.Addr)
}

// mergeServeFlags overrides cfg with flags the user actually set.
func mergeServeFlags(flags *serveFlags, cfg *config.Config) {
	if flags.source.data != "" {
		cfg.Data.Path = flags.source.data
	}
	if flags.source.images != "" {
		cfg.Data.Images = flags.source.images
	}
	if flags.out != "" {
		cfg.Output.Path = flags.out
	}
	if flags.addr != "" {
		cfg.Server.Addr = flags.addr
	}
	if flags.staticDir != "" {
		cfg.Server.StaticDir = flags.staticDir
	}
	if flags.workers > 0 {
		cfg.Render.Workers = flags.workers
	}
	if flags.timeout != "" {
		cfg.Render.Timeout = flags.timeout
	}
	if flags.assetPath != "" {
		cfg.Render.AssetPath = flags.assetPath
	}
}
