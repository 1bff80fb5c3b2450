package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/baltlens/registry-cli/internal/db"
	"github.com/baltlens/registry-cli/internal/model"
	"github.com/baltlens/registry-cli/internal/mvk"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool db.Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
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

const postgresMigration = `
CREATE TABLE IF NOT EXISTS payload_cache (
	kind       TEXT NOT NULL,
	regcode    TEXT NOT NULL,
	payload    JSONB NOT NULL,
	cached_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	expires_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (kind, regcode)
);

CREATE TABLE IF NOT EXISTS watchlist (
	regcode  TEXT PRIMARY KEY,
	name     TEXT NOT NULL,
	note     TEXT NOT NULL DEFAULT '',
	added_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS company_index (
	regcode   TEXT PRIMARY KEY,
	name      TEXT NOT NULL,
	status    TEXT NOT NULL DEFAULT '',
	nace_code TEXT NOT NULL DEFAULT '',
	address   TEXT NOT NULL DEFAULT '',
	synced_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_payload_cache_expires ON payload_cache(expires_at);
CREATE INDEX IF NOT EXISTS idx_company_index_name ON company_index(lower(name));
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) getCached(ctx context.Context, kind, regcode string, out any) (bool, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT payload FROM payload_cache WHERE kind = $1 AND regcode = $2 AND expires_at > now()`,
		kind, regcode,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, eris.Wrapf(err, "postgres: get cached %s", kind)
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return false, eris.Wrapf(err, "postgres: unmarshal cached %s", kind)
	}
	return true, nil
}

func (s *PostgresStore) setCached(ctx context.Context, kind, regcode string, v any, ttl time.Duration) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return eris.Wrapf(err, "postgres: marshal %s", kind)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO payload_cache (kind, regcode, payload, cached_at, expires_at) VALUES ($1, $2, $3, now(), $4)
		 ON CONFLICT (kind, regcode) DO UPDATE SET payload = EXCLUDED.payload, cached_at = now(), expires_at = EXCLUDED.expires_at`,
		kind, regcode, payload, time.Now().UTC().Add(ttl),
	)
	return eris.Wrapf(err, "postgres: set cached %s", kind)
}

func (s *PostgresStore) GetCachedScenario(ctx context.Context, regcode string) (*mvk.Scenario, error) {
	var scenario mvk.Scenario
	ok, err := s.getCached(ctx, cacheKindScenario, regcode, &scenario)
	if err != nil || !ok {
		return nil, err
	}
	return &scenario, nil
}

func (s *PostgresStore) SetCachedScenario(ctx context.Context, regcode string, scenario *mvk.Scenario, ttl time.Duration) error {
	return s.setCached(ctx, cacheKindScenario, regcode, scenario, ttl)
}

func (s *PostgresStore) GetCachedProfile(ctx context.Context, regcode string) (*model.CompanyProfile, error) {
	var profile model.CompanyProfile
	ok, err := s.getCached(ctx, cacheKindProfile, regcode, &profile)
	if err != nil || !ok {
		return nil, err
	}
	return &profile, nil
}

func (s *PostgresStore) SetCachedProfile(ctx context.Context, regcode string, profile *model.CompanyProfile, ttl time.Duration) error {
	return s.setCached(ctx, cacheKindProfile, regcode, profile, ttl)
}

func (s *PostgresStore) DeleteExpiredCache(ctx context.Context) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM payload_cache WHERE expires_at <= now()`)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: delete expired cache")
	}
	return int(tag.RowsAffected()), nil
}

func (s *PostgresStore) AddWatch(ctx context.Context, entry WatchEntry) error {
	addedAt := entry.AddedAt
	if addedAt.IsZero() {
		addedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO watchlist (regcode, name, note, added_at) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (regcode) DO UPDATE SET name = EXCLUDED.name, note = EXCLUDED.note`,
		entry.Regcode, entry.Name, entry.Note, addedAt,
	)
	return eris.Wrap(err, "postgres: add watch")
}

func (s *PostgresStore) RemoveWatch(ctx context.Context, regcode string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM watchlist WHERE regcode = $1`, regcode)
	return eris.Wrap(err, "postgres: remove watch")
}

func (s *PostgresStore) ListWatches(ctx context.Context) ([]WatchEntry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT regcode, name, note, added_at FROM watchlist ORDER BY added_at DESC`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list watches")
	}
	defer rows.Close()

	var entries []WatchEntry
	for rows.Next() {
		var e WatchEntry
		if err := rows.Scan(&e.Regcode, &e.Name, &e.Note, &e.AddedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan watch")
		}
		entries = append(entries, e)
	}
	return entries, eris.Wrap(rows.Err(), "postgres: iterate watches")
}

var companyIndexColumns = []string{"regcode", "name", "status", "nace_code", "address", "synced_at"}

// UpsertCompanies bulk-loads index rows. An empty index takes the COPY
// fast path (initial dump load); otherwise rows go through a temp table
// and INSERT ... ON CONFLICT (db.BulkUpsert), which is much faster than
// per-row statements for full dump syncs.
func (s *PostgresStore) UpsertCompanies(ctx context.Context, companies []IndexedCompany) (int, error) {
	if len(companies) == 0 {
		return 0, nil
	}

	rows := make([][]any, 0, len(companies))
	for _, c := range companies {
		if c.Regcode == "" {
			continue
		}
		syncedAt := c.SyncedAt
		if syncedAt.IsZero() {
			syncedAt = time.Now().UTC()
		}
		rows = append(rows, []any{c.Regcode, c.Name, c.Status, c.NACECode, c.Address, syncedAt})
	}

	if existing, err := s.CountIndex(ctx); err == nil && existing == 0 {
		n, err := db.CopyFrom(ctx, s.pool, "company_index", companyIndexColumns, rows)
		if err != nil {
			return 0, eris.Wrap(err, "postgres: copy companies")
		}
		return int(n), nil
	}

	n, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "company_index",
		Columns:      companyIndexColumns,
		ConflictKeys: []string{"regcode"},
	}, rows)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: upsert companies")
	}
	return int(n), nil
}

func (s *PostgresStore) SearchIndex(ctx context.Context, query string, limit int) ([]IndexedCompany, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.pool.Query(ctx,
		`SELECT regcode, name, status, nace_code, address, synced_at FROM company_index
		 WHERE regcode = $1 OR lower(name) LIKE lower($2)
		 ORDER BY name LIMIT $3`,
		query, query+"%", limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: search index")
	}
	defer rows.Close()

	var out []IndexedCompany
	for rows.Next() {
		var c IndexedCompany
		if err := rows.Scan(&c.Regcode, &c.Name, &c.Status, &c.NACECode, &c.Address, &c.SyncedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan indexed company")
		}
		out = append(out, c)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate index")
}

func (s *PostgresStore) CountIndex(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM company_index`).Scan(&n); err != nil {
		return 0, eris.Wrap(err, "postgres: count index")
	}
	return n, nil
}
