package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/summitfloors/pricebook/internal/model"
	"github.com/summitfloors/pricebook/internal/profile"
)

// Pool is the subset of pgxpool.Pool the store uses; pgxmock satisfies it
// in tests.
type Pool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresFromPool wraps an existing pool; used by tests.
func NewPostgresFromPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS manufacturers (
	id                   BIGSERIAL PRIMARY KEY,
	name                 TEXT NOT NULL,
	default_product_type TEXT NOT NULL DEFAULT '',
	created_at           TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS products (
	id              BIGSERIAL PRIMARY KEY,
	manufacturer_id BIGINT NOT NULL DEFAULT 0,
	name            TEXT NOT NULL,
	product_type    TEXT NOT NULL DEFAULT '',
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS variants (
	id           BIGSERIAL PRIMARY KEY,
	product_id   BIGINT NOT NULL REFERENCES products(id),
	name         TEXT NOT NULL DEFAULT '',
	sku          TEXT NOT NULL DEFAULT '',
	size         TEXT NOT NULL DEFAULT '',
	carton_size  DOUBLE PRECISION,
	unit_cost    DOUBLE PRECISION NOT NULL,
	retail_price DOUBLE PRECISION,
	has_sample   BOOLEAN NOT NULL DEFAULT FALSE,
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS mapping_profiles (
	id         BIGSERIAL PRIMARY KEY,
	name       TEXT NOT NULL UNIQUE,
	rules      JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS import_runs (
	id          TEXT PRIMARY KEY,
	strategy    TEXT NOT NULL,
	updates     INTEGER NOT NULL,
	created     INTEGER NOT NULL,
	executed_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_products_lower_name ON products(lower(name));
CREATE INDEX IF NOT EXISTS idx_variants_product_id ON variants(product_id);
CREATE INDEX IF NOT EXISTS idx_manufacturers_lower_name ON manufacturers(lower(name));
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// Mapping profiles

func (s *PostgresStore) ListProfiles(ctx context.Context) ([]model.MappingProfile, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, rules, created_at, updated_at FROM mapping_profiles ORDER BY name`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list profiles")
	}
	defer rows.Close()

	var profiles []model.MappingProfile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *p)
	}
	return profiles, eris.Wrap(rows.Err(), "postgres: list profiles iterate")
}

func (s *PostgresStore) GetProfile(ctx context.Context, name string) (*model.MappingProfile, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, name, rules, created_at, updated_at FROM mapping_profiles WHERE name = $1`, name)
	p, err := scanProfile(row)
	if eris.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrProfileNotFound, "%s", name)
	}
	return p, err
}

func (s *PostgresStore) SaveProfile(ctx context.Context, name string, rules model.MappingRules) (*model.MappingProfile, error) {
	raw, err := profile.EncodeRules(rules)
	if err != nil {
		return nil, err
	}

	p := model.MappingProfile{Name: name, Rules: rules}
	err = s.pool.QueryRow(ctx,
		`INSERT INTO mapping_profiles (name, rules) VALUES ($1, $2)
		 ON CONFLICT (name) DO UPDATE SET rules = EXCLUDED.rules, updated_at = now()
		 RETURNING id, created_at, updated_at`,
		name, raw,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: save profile %s", name)
	}
	return &p, nil
}

type scannable interface {
	Scan(dest ...any) error
}

// scanProfile decodes a profile row. A rules payload that fails to decode
// falls back to an empty mapping so one corrupt profile cannot take down
// the import flow; the user re-maps manually.
func scanProfile(row scannable) (*model.MappingProfile, error) {
	var p model.MappingProfile
	var raw []byte
	if err := row.Scan(&p.ID, &p.Name, &raw, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if eris.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, eris.Wrap(err, "scan profile")
	}

	rules, err := profile.DecodeRules(raw)
	if err != nil {
		zap.L().Warn("profile rules unreadable, falling back to empty mapping",
			zap.String("profile", p.Name),
			zap.Error(err),
		)
		rules = model.MappingRules{Version: profile.CurrentVersion, Mapping: model.ColumnMapping{}}
	}
	p.Rules = rules
	return &p, nil
}

// Vendor directory

func (s *PostgresStore) ListManufacturers(ctx context.Context) ([]model.Manufacturer, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, default_product_type FROM manufacturers ORDER BY name`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list manufacturers")
	}
	defer rows.Close()

	var out []model.Manufacturer
	for rows.Next() {
		var m model.Manufacturer
		if err := rows.Scan(&m.ID, &m.Name, &m.DefaultProductType); err != nil {
			return nil, eris.Wrap(err, "postgres: scan manufacturer")
		}
		out = append(out, m)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list manufacturers iterate")
}

func (s *PostgresStore) GetManufacturer(ctx context.Context, id int64) (*model.Manufacturer, error) {
	var m model.Manufacturer
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, default_product_type FROM manufacturers WHERE id = $1`, id,
	).Scan(&m.ID, &m.Name, &m.DefaultProductType)
	if eris.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrManufacturerNotFound, "id %d", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get manufacturer %d", id)
	}
	return &m, nil
}

// AddManufacturer seeds the vendor directory; used by the CLI.
func (s *PostgresStore) AddManufacturer(ctx context.Context, name, defaultProductType string) (*model.Manufacturer, error) {
	m := model.Manufacturer{Name: name, DefaultProductType: defaultProductType}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO manufacturers (name, default_product_type) VALUES ($1, $2) RETURNING id`,
		name, defaultProductType,
	).Scan(&m.ID)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: add manufacturer %s", name)
	}
	return &m, nil
}

// Import pipeline

// Snapshot loads the whole catalog read-only; products and variants load in
// parallel.
func (s *PostgresStore) Snapshot(ctx context.Context) (*Snapshot, error) {
	var products []model.Product
	var variants []model.Variant

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := s.pool.Query(gctx,
			`SELECT id, manufacturer_id, name, product_type FROM products ORDER BY id`)
		if err != nil {
			return eris.Wrap(err, "postgres: snapshot products")
		}
		defer rows.Close()
		for rows.Next() {
			var p model.Product
			if err := rows.Scan(&p.ID, &p.ManufacturerID, &p.Name, &p.ProductType); err != nil {
				return eris.Wrap(err, "postgres: scan product")
			}
			products = append(products, p)
		}
		return eris.Wrap(rows.Err(), "postgres: snapshot products iterate")
	})
	g.Go(func() error {
		rows, err := s.pool.Query(gctx,
			`SELECT id, product_id, name, sku, size, carton_size, unit_cost, retail_price, has_sample, updated_at FROM variants ORDER BY id`)
		if err != nil {
			return eris.Wrap(err, "postgres: snapshot variants")
		}
		defer rows.Close()
		for rows.Next() {
			var v model.Variant
			if err := rows.Scan(&v.ID, &v.ProductID, &v.Name, &v.SKU, &v.Size,
				&v.CartonSize, &v.UnitCost, &v.RetailPrice, &v.HasSample, &v.UpdatedAt); err != nil {
				return eris.Wrap(err, "postgres: scan variant")
			}
			variants = append(variants, v)
		}
		return eris.Wrap(rows.Err(), "postgres: snapshot variants iterate")
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return newSnapshot(products, variants), nil
}

// Apply commits the whole plan in one transaction. Any failure rolls the
// entire batch back; nothing is partially applied.
func (s *PostgresStore) Apply(ctx context.Context, plan *Plan) (model.ExecuteSummary, error) {
	var summary model.ExecuteSummary

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return summary, eris.Wrap(err, "postgres: apply: begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	createdProducts := make(map[string]int64)

	for _, op := range plan.Ops {
		switch op := op.(type) {
		case CreateProduct:
			pid, err := s.createProduct(ctx, tx, op)
			if err != nil {
				return model.ExecuteSummary{}, err
			}
			createdProducts[op.Key] = pid

		case CreateVariant:
			pid := op.ProductID
			if pid == 0 {
				var ok bool
				if pid, ok = createdProducts[op.ProductKey]; !ok {
					return model.ExecuteSummary{}, eris.Errorf("postgres: apply: variant %q references unknown product key %q", op.Name, op.ProductKey)
				}
			}
			if _, err := tx.Exec(ctx,
				`INSERT INTO variants (product_id, name, sku, size, carton_size, unit_cost, retail_price, has_sample)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
				pid, op.Name, op.SKU, op.Size, op.CartonSize, op.UnitCost, op.RetailPrice, op.HasSample,
			); err != nil {
				return model.ExecuteSummary{}, eris.Wrapf(err, "postgres: apply: create variant %q", op.Name)
			}
			summary.Created++

		case UpdateVariant:
			sql, args := buildVariantUpdate(op)
			tag, err := tx.Exec(ctx, sql, args...)
			if err != nil {
				return model.ExecuteSummary{}, eris.Wrapf(err, "postgres: apply: update variant %d", op.VariantID)
			}
			if tag.RowsAffected() == 0 {
				return model.ExecuteSummary{}, eris.Errorf("postgres: apply: variant %d not found", op.VariantID)
			}
			summary.Updates++
		}
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO import_runs (id, strategy, updates, created) VALUES ($1, $2, $3, $4)`,
		plan.RunID, string(plan.Strategy), summary.Updates, summary.Created,
	); err != nil {
		return model.ExecuteSummary{}, eris.Wrap(err, "postgres: apply: record import run")
	}

	if err := tx.Commit(ctx); err != nil {
		return model.ExecuteSummary{}, eris.Wrap(err, "postgres: apply: commit tx")
	}
	return summary, nil
}

// createProduct resolves the manufacturer (find-or-create by spreadsheet
// name, falling back to the import default id) and inserts the product.
func (s *PostgresStore) createProduct(ctx context.Context, tx pgx.Tx, op CreateProduct) (int64, error) {
	mid := op.ManufacturerID
	if op.ManufacturerName != "" {
		err := tx.QueryRow(ctx,
			`SELECT id FROM manufacturers WHERE lower(name) = lower($1) ORDER BY id LIMIT 1`,
			op.ManufacturerName,
		).Scan(&mid)
		if eris.Is(err, pgx.ErrNoRows) {
			err = tx.QueryRow(ctx,
				`INSERT INTO manufacturers (name) VALUES ($1) RETURNING id`,
				op.ManufacturerName,
			).Scan(&mid)
		}
		if err != nil {
			return 0, eris.Wrapf(err, "postgres: apply: resolve manufacturer %q", op.ManufacturerName)
		}
	}

	var pid int64
	if err := tx.QueryRow(ctx,
		`INSERT INTO products (manufacturer_id, name, product_type) VALUES ($1, $2, $3) RETURNING id`,
		mid, op.Name, op.ProductType,
	).Scan(&pid); err != nil {
		return 0, eris.Wrapf(err, "postgres: apply: create product %q", op.Name)
	}
	return pid, nil
}

// buildVariantUpdate assembles the SET clause from the op's non-nil fields.
func buildVariantUpdate(op UpdateVariant) (string, []any) {
	set := []string{"updated_at = now()"}
	var args []any
	n := 1

	add := func(col string, val any) {
		set = append(set, fmt.Sprintf("%s = $%d", col, n))
		args = append(args, val)
		n++
	}
	if op.UnitCost != nil {
		add("unit_cost", *op.UnitCost)
	}
	if op.Size != nil {
		add("size", *op.Size)
	}
	if op.CartonSize != nil {
		add("carton_size", *op.CartonSize)
	}
	if op.RetailPrice != nil {
		add("retail_price", *op.RetailPrice)
	}
	if op.HasSample != nil {
		add("has_sample", *op.HasSample)
	}

	args = append(args, op.VariantID)
	return fmt.Sprintf("UPDATE variants SET %s WHERE id = $%d", strings.Join(set, ", "), n), args
}
