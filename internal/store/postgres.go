package store

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/alnah/go-catalog2pdf/internal/catalog"
)

//go:embed migrations/*.sql
var migrations embed.FS

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// PostgresStore keeps products in the produtos table, ordered by insertion.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPool opens a connection pool for dsn and checks it with a ping.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing postgres dsn: %w", err)
	}

	poolConfig.MaxConns = 10
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	return pool, nil
}

// Migrate applies the embedded schema migrations.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return err
	}

	db := stdlib.OpenDBFromPool(pool)
	defer func() { _ = db.Close() }()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, fsys)
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}
	return nil
}

// OpenPostgres connects to dsn, migrates the schema and returns a store
// that owns the pool.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := NewPool(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return NewPostgresStore(pool), nil
}

// NewPostgresStore creates a store over an existing pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const selectColumns = `id, nome, descricao, especificacoes`

// List returns all products in insertion order.
func (s *PostgresStore) List(ctx context.Context) ([]catalog.Product, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+selectColumns+` FROM produtos ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := make([]catalog.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// Get returns the product with id.
func (s *PostgresStore) Get(ctx context.Context, id catalog.ID) (catalog.Product, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+selectColumns+` FROM produtos WHERE id = $1`, string(id))
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return catalog.Product{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return p, err
}

// Create inserts p at the end of the catalog.
func (s *PostgresStore) Create(ctx context.Context, p catalog.Product) error {
	specs, err := json.Marshal(p.Especificacoes)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidData, err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO produtos (id, nome, descricao, especificacoes)
		VALUES ($1, $2, $3, $4::json)`,
		string(p.ID), p.Nome, p.Descricao, specs)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return fmt.Errorf("%w: %q", ErrDuplicateID, p.ID)
		}
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

// Update replaces the product with id in place.
func (s *PostgresStore) Update(ctx context.Context, id catalog.ID, p catalog.Product) error {
	specs, err := json.Marshal(p.Especificacoes)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidData, err)
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE produtos
		SET nome = $2, descricao = $3, especificacoes = $4::json, updated_at = now()
		WHERE id = $1`,
		string(id), p.Nome, p.Descricao, specs)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return nil
}

// Delete removes the product with id.
func (s *PostgresStore) Delete(ctx context.Context, id catalog.ID) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM produtos WHERE id = $1`, string(id)); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

// Import replaces the table content with products, keeping their order.
func (s *PostgresStore) Import(ctx context.Context, products []catalog.Product) error {
	if err := catalog.CheckUnique(products); err != nil {
		return err
	}

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM produtos`); err != nil {
			return fmt.Errorf("clearing products: %w", err)
		}
		batch := &pgx.Batch{}
		for _, p := range products {
			specs, err := json.Marshal(p.Especificacoes)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidData, err)
			}
			batch.Queue(`INSERT INTO produtos (id, nome, descricao, especificacoes) VALUES ($1, $2, $3, $4::json)`,
				string(p.ID), p.Nome, p.Descricao, specs)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("importing products: %w", err)
		}
		return nil
	})
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func scanProduct(row pgx.Row) (catalog.Product, error) {
	var (
		p     catalog.Product
		id    string
		specs []byte
	)
	if err := row.Scan(&id, &p.Nome, &p.Descricao, &specs); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return catalog.Product{}, err
		}
		return catalog.Product{}, fmt.Errorf("scan product: %w", err)
	}
	p.ID = catalog.ID(id)
	if len(specs) > 0 {
		if err := json.Unmarshal(specs, &p.Especificacoes); err != nil {
			return catalog.Product{}, fmt.Errorf("%w: especificacoes of %q: %v", ErrInvalidData, id, err)
		}
	}
	return p, nil
}
