package main

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	catalog2pdf "github.com/alnah/go-catalog2pdf"
	"github.com/alnah/go-catalog2pdf/internal/backup"
	"github.com/alnah/go-catalog2pdf/internal/config"
)

// converterOptions maps the render section of cfg to converter options.
func converterOptions(cfg *config.Config, logger *zap.Logger) ([]catalog2pdf.Option, error) {
	timeout, err := cfg.Render.TimeoutDuration()
	if err != nil {
		return nil, err
	}

	opts := []catalog2pdf.Option{
		catalog2pdf.WithTimeout(timeout),
		catalog2pdf.WithLogger(logger),
	}
	if cfg.Render.AssetPath != "" {
		opts = append(opts, catalog2pdf.WithAssetPath(cfg.Render.AssetPath))
	}
	if cfg.Render.Style != "" {
		opts = append(opts, catalog2pdf.WithStyle(cfg.Render.Style))
	}
	if cfg.Render.TemplateSet != "" {
		opts = append(opts, catalog2pdf.WithTemplateSet(cfg.Render.TemplateSet))
	}
	return opts, nil
}

// newCache connects the Redis PDF cache when redis.addr is set. The returned
// close function is never nil.
func newCache(cfg *config.Config) (catalog2pdf.Cache, func() error, error) {
	noop := func() error { return nil }
	if cfg.Redis.Addr == "" {
		return nil, noop, nil
	}

	ttl, err := cfg.Redis.TTLDuration()
	if err != nil {
		return nil, noop, err
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	return catalog2pdf.NewRedisCache(client, ttl), client.Close, nil
}

// newArchiver returns the MinIO archiver when an endpoint is configured,
// otherwise a directory archiver for dir. An empty dir disables backups.
func newArchiver(ctx context.Context, cfg *config.Config, dir string) (backup.Archiver, error) {
	if m := cfg.Backup.MinIO; m.Enabled() {
		archiver, err := backup.NewMinIOArchiver(backup.MinIOOptions{
			Endpoint:  m.Endpoint,
			AccessKey: m.AccessKey,
			SecretKey: m.SecretKey,
			Bucket:    m.Bucket,
			UseSSL:    m.UseSSL,
		})
		if err != nil {
			return nil, err
		}
		if err := archiver.EnsureBucket(ctx); err != nil {
			return nil, fmt.Errorf("preparing bucket %s: %w", m.Bucket, err)
		}
		return archiver, nil
	}
	if dir == "" {
		return nil, nil
	}
	return backup.NewDirArchiver(dir), nil
}
