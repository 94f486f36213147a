package main

import (
	"context"
	"errors"
	"fmt"

	catalog2pdf "github.com/alnah/go-catalog2pdf"
	"github.com/alnah/go-catalog2pdf/internal/store"
)

// ErrMissingDSN is returned by import when no PostgreSQL DSN is configured.
var ErrMissingDSN = errors.New("postgres DSN required (--postgres-dsn or CATALOG_POSTGRES_DSN)")

// productImporter replaces the contents of a product table.
type productImporter interface {
	Import(ctx context.Context, products []catalog2pdf.Product) error
	Close() error
}

// openImporter is replaced in tests.
var openImporter = func(ctx context.Context, dsn string) (productImporter, error) {
	return store.OpenPostgres(ctx, dsn)
}

func runImportCmd(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseImportFlags(args)
	if err != nil {
		return err
	}
	if len(positional) > 0 {
		return fmt.Errorf("%w: unexpected argument %q", ErrInvalidFlags, positional[0])
	}
	return runImport(ctx, flags, env)
}

// runImport copies the product file into PostgreSQL, keeping file order.
func runImport(ctx context.Context, flags *importFlags, env *Environment) error {
	cfg, err := loadConfig(flags.common, env)
	if err != nil {
		return err
	}
	if flags.data != "" {
		cfg.Data.Path = flags.data
	}
	if flags.postgresDSN != "" {
		cfg.Postgres.DSN = flags.postgresDSN
	}
	if cfg.Postgres.DSN == "" {
		return ErrMissingDSN
	}

	products, err := store.NewJSONStore(cfg.Data.Path).List(ctx)
	if err != nil {
		return err
	}
	if len(products) == 0 {
		return catalog2pdf.ErrNoProducts
	}

	dst, err := openImporter(ctx, cfg.Postgres.DSN)
	if err != nil {
		return err
	}
	defer func() { _ = dst.Close() }()

	if err := dst.Import(ctx, products); err != nil {
		return err
	}
	if !flags.common.quiet {
		fmt.Fprintf(env.Stdout, "%d produtos importados\n", len(products))
	}
	return nil
}
