package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/summitfloors/pricebook/internal/model"
	"github.com/summitfloors/pricebook/internal/profile"
)

// SQLiteStore implements Store using modernc.org/sqlite. It serves
// single-host deployments and the test suite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL
// mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS manufacturers (
	id                   INTEGER PRIMARY KEY AUTOINCREMENT,
	name                 TEXT NOT NULL,
	default_product_type TEXT NOT NULL DEFAULT '',
	created_at           DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS products (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	manufacturer_id INTEGER NOT NULL DEFAULT 0,
	name            TEXT NOT NULL,
	product_type    TEXT NOT NULL DEFAULT '',
	created_at      DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS variants (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	product_id   INTEGER NOT NULL REFERENCES products(id),
	name         TEXT NOT NULL DEFAULT '',
	sku          TEXT NOT NULL DEFAULT '',
	size         TEXT NOT NULL DEFAULT '',
	carton_size  REAL,
	unit_cost    REAL NOT NULL,
	retail_price REAL,
	has_sample   INTEGER NOT NULL DEFAULT 0,
	updated_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS mapping_profiles (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT NOT NULL UNIQUE,
	rules      TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS import_runs (
	id          TEXT PRIMARY KEY,
	strategy    TEXT NOT NULL,
	updates     INTEGER NOT NULL,
	created     INTEGER NOT NULL,
	executed_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_products_name ON products(name COLLATE NOCASE);
CREATE INDEX IF NOT EXISTS idx_variants_product_id ON variants(product_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Mapping profiles

func (s *SQLiteStore) ListProfiles(ctx context.Context) ([]model.MappingProfile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, rules, created_at, updated_at FROM mapping_profiles ORDER BY name`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list profiles")
	}
	defer rows.Close()

	var profiles []model.MappingProfile
	for rows.Next() {
		p, err := scanSQLiteProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *p)
	}
	return profiles, eris.Wrap(rows.Err(), "sqlite: list profiles iterate")
}

func (s *SQLiteStore) GetProfile(ctx context.Context, name string) (*model.MappingProfile, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, rules, created_at, updated_at FROM mapping_profiles WHERE name = ?`, name)
	p, err := scanSQLiteProfile(row)
	if eris.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrProfileNotFound, "%s", name)
	}
	return p, err
}

func (s *SQLiteStore) SaveProfile(ctx context.Context, name string, rules model.MappingRules) (*model.MappingProfile, error) {
	raw, err := profile.EncodeRules(rules)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO mapping_profiles (name, rules, created_at, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET rules = excluded.rules, updated_at = excluded.updated_at`,
		name, string(raw), now, now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: save profile %s", name)
	}
	return s.GetProfile(ctx, name)
}

func scanSQLiteProfile(row scannable) (*model.MappingProfile, error) {
	var p model.MappingProfile
	var raw string
	if err := row.Scan(&p.ID, &p.Name, &raw, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if eris.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, eris.Wrap(err, "sqlite: scan profile")
	}

	rules, err := profile.DecodeRules([]byte(raw))
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

func (s *SQLiteStore) ListManufacturers(ctx context.Context) ([]model.Manufacturer, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, default_product_type FROM manufacturers ORDER BY name`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list manufacturers")
	}
	defer rows.Close()

	var out []model.Manufacturer
	for rows.Next() {
		var m model.Manufacturer
		if err := rows.Scan(&m.ID, &m.Name, &m.DefaultProductType); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan manufacturer")
		}
		out = append(out, m)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list manufacturers iterate")
}

func (s *SQLiteStore) GetManufacturer(ctx context.Context, id int64) (*model.Manufacturer, error) {
	var m model.Manufacturer
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, default_product_type FROM manufacturers WHERE id = ?`, id,
	).Scan(&m.ID, &m.Name, &m.DefaultProductType)
	if eris.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrManufacturerNotFound, "id %d", id)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get manufacturer %d", id)
	}
	return &m, nil
}

// AddManufacturer seeds the vendor directory; used by tests and the CLI.
func (s *SQLiteStore) AddManufacturer(ctx context.Context, name, defaultProductType string) (*model.Manufacturer, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO manufacturers (name, default_product_type) VALUES (?, ?)`,
		name, defaultProductType,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: add manufacturer %s", name)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: manufacturer id")
	}
	return &model.Manufacturer{ID: id, Name: name, DefaultProductType: defaultProductType}, nil
}

// Import pipeline

func (s *SQLiteStore) Snapshot(ctx context.Context) (*Snapshot, error) {
	products, err := s.loadProducts(ctx)
	if err != nil {
		return nil, err
	}
	variants, err := s.loadVariants(ctx)
	if err != nil {
		return nil, err
	}
	return newSnapshot(products, variants), nil
}

func (s *SQLiteStore) loadProducts(ctx context.Context) ([]model.Product, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, manufacturer_id, name, product_type FROM products ORDER BY id`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: snapshot products")
	}
	defer rows.Close()

	var out []model.Product
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.ManufacturerID, &p.Name, &p.ProductType); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan product")
		}
		out = append(out, p)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: snapshot products iterate")
}

func (s *SQLiteStore) loadVariants(ctx context.Context) ([]model.Variant, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, product_id, name, sku, size, carton_size, unit_cost, retail_price, has_sample, updated_at FROM variants ORDER BY id`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: snapshot variants")
	}
	defer rows.Close()

	var out []model.Variant
	for rows.Next() {
		var v model.Variant
		var carton, retail sql.NullFloat64
		if err := rows.Scan(&v.ID, &v.ProductID, &v.Name, &v.SKU, &v.Size,
			&carton, &v.UnitCost, &retail, &v.HasSample, &v.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan variant")
		}
		if carton.Valid {
			v.CartonSize = &carton.Float64
		}
		if retail.Valid {
			v.RetailPrice = &retail.Float64
		}
		out = append(out, v)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: snapshot variants iterate")
}

// Apply commits the whole plan in one transaction; any failure rolls the
// batch back.
func (s *SQLiteStore) Apply(ctx context.Context, plan *Plan) (model.ExecuteSummary, error) {
	var summary model.ExecuteSummary

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return summary, eris.Wrap(err, "sqlite: apply: begin tx")
	}
	defer func() { _ = tx.Rollback() }()

	createdProducts := make(map[string]int64)

	for _, op := range plan.Ops {
		switch op := op.(type) {
		case CreateProduct:
			pid, err := createSQLiteProduct(ctx, tx, op)
			if err != nil {
				return model.ExecuteSummary{}, err
			}
			createdProducts[op.Key] = pid

		case CreateVariant:
			pid := op.ProductID
			if pid == 0 {
				var ok bool
				if pid, ok = createdProducts[op.ProductKey]; !ok {
					return model.ExecuteSummary{}, eris.Errorf("sqlite: apply: variant %q references unknown product key %q", op.Name, op.ProductKey)
				}
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO variants (product_id, name, sku, size, carton_size, unit_cost, retail_price, has_sample, updated_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				pid, op.Name, op.SKU, op.Size, nullFloat(op.CartonSize), op.UnitCost, nullFloat(op.RetailPrice), op.HasSample, time.Now().UTC(),
			); err != nil {
				return model.ExecuteSummary{}, eris.Wrapf(err, "sqlite: apply: create variant %q", op.Name)
			}
			summary.Created++

		case UpdateVariant:
			query, args := buildSQLiteVariantUpdate(op)
			res, err := tx.ExecContext(ctx, query, args...)
			if err != nil {
				return model.ExecuteSummary{}, eris.Wrapf(err, "sqlite: apply: update variant %d", op.VariantID)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return model.ExecuteSummary{}, eris.Wrap(err, "sqlite: apply: rows affected")
			}
			if n == 0 {
				return model.ExecuteSummary{}, eris.Errorf("sqlite: apply: variant %d not found", op.VariantID)
			}
			summary.Updates++
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO import_runs (id, strategy, updates, created) VALUES (?, ?, ?, ?)`,
		plan.RunID, string(plan.Strategy), summary.Updates, summary.Created,
	); err != nil {
		return model.ExecuteSummary{}, eris.Wrap(err, "sqlite: apply: record import run")
	}

	if err := tx.Commit(); err != nil {
		return model.ExecuteSummary{}, eris.Wrap(err, "sqlite: apply: commit tx")
	}
	return summary, nil
}

func createSQLiteProduct(ctx context.Context, tx *sql.Tx, op CreateProduct) (int64, error) {
	mid := op.ManufacturerID
	if op.ManufacturerName != "" {
		err := tx.QueryRowContext(ctx,
			`SELECT id FROM manufacturers WHERE name = ? COLLATE NOCASE ORDER BY id LIMIT 1`,
			op.ManufacturerName,
		).Scan(&mid)
		if eris.Is(err, sql.ErrNoRows) {
			var res sql.Result
			res, err = tx.ExecContext(ctx,
				`INSERT INTO manufacturers (name) VALUES (?)`, op.ManufacturerName)
			if err == nil {
				mid, err = res.LastInsertId()
			}
		}
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: apply: resolve manufacturer %q", op.ManufacturerName)
		}
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO products (manufacturer_id, name, product_type) VALUES (?, ?, ?)`,
		mid, op.Name, op.ProductType,
	)
	if err != nil {
		return 0, eris.Wrapf(err, "sqlite: apply: create product %q", op.Name)
	}
	pid, err := res.LastInsertId()
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: apply: product id")
	}
	return pid, nil
}

func buildSQLiteVariantUpdate(op UpdateVariant) (string, []any) {
	set := []string{"updated_at = ?"}
	args := []any{time.Now().UTC()}

	if op.UnitCost != nil {
		set = append(set, "unit_cost = ?")
		args = append(args, *op.UnitCost)
	}
	if op.Size != nil {
		set = append(set, "size = ?")
		args = append(args, *op.Size)
	}
	if op.CartonSize != nil {
		set = append(set, "carton_size = ?")
		args = append(args, *op.CartonSize)
	}
	if op.RetailPrice != nil {
		set = append(set, "retail_price = ?")
		args = append(args, *op.RetailPrice)
	}
	if op.HasSample != nil {
		set = append(set, "has_sample = ?")
		args = append(args, *op.HasSample)
	}

	args = append(args, op.VariantID)
	return fmt.Sprintf("UPDATE variants SET %s WHERE id = ?", strings.Join(set, ", ")), args
}

func nullFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}
