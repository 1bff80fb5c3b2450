package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/baltlens/registry-cli/internal/model"
	"github.com/baltlens/registry-cli/internal/mvk"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS payload_cache (
	kind       TEXT NOT NULL,
	regcode    TEXT NOT NULL,
	payload    TEXT NOT NULL,
	cached_at  DATETIME NOT NULL DEFAULT (datetime('now')),
	expires_at DATETIME NOT NULL,
	PRIMARY KEY (kind, regcode)
);

CREATE TABLE IF NOT EXISTS watchlist (
	regcode  TEXT PRIMARY KEY,
	name     TEXT NOT NULL,
	note     TEXT NOT NULL DEFAULT '',
	added_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS company_index (
	regcode   TEXT PRIMARY KEY,
	name      TEXT NOT NULL,
	status    TEXT NOT NULL DEFAULT '',
	nace_code TEXT NOT NULL DEFAULT '',
	address   TEXT NOT NULL DEFAULT '',
	synced_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_payload_cache_expires ON payload_cache(expires_at);
CREATE INDEX IF NOT EXISTS idx_company_index_name ON company_index(name COLLATE NOCASE);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Cache kinds in payload_cache.
const (
	cacheKindScenario = "scenario"
	cacheKindProfile  = "profile"
)

func (s *SQLiteStore) getCached(ctx context.Context, kind, regcode string, out any) (bool, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM payload_cache WHERE kind = ? AND regcode = ? AND expires_at > datetime('now')`,
		kind, regcode,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, eris.Wrapf(err, "sqlite: get cached %s", kind)
	}
	if err := json.Unmarshal([]byte(payload), out); err != nil {
		return false, eris.Wrapf(err, "sqlite: unmarshal cached %s", kind)
	}
	return true, nil
}

func (s *SQLiteStore) setCached(ctx context.Context, kind, regcode string, v any, ttl time.Duration) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return eris.Wrapf(err, "sqlite: marshal %s", kind)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO payload_cache (kind, regcode, payload, cached_at, expires_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (kind, regcode) DO UPDATE SET payload = excluded.payload, cached_at = excluded.cached_at, expires_at = excluded.expires_at`,
		kind, regcode, string(payload), time.Now().UTC(), time.Now().UTC().Add(ttl),
	)
	return eris.Wrapf(err, "sqlite: set cached %s", kind)
}

func (s *SQLiteStore) GetCachedScenario(ctx context.Context, regcode string) (*mvk.Scenario, error) {
	var scenario mvk.Scenario
	ok, err := s.getCached(ctx, cacheKindScenario, regcode, &scenario)
	if err != nil || !ok {
		return nil, err
	}
	return &scenario, nil
}

func (s *SQLiteStore) SetCachedScenario(ctx context.Context, regcode string, scenario *mvk.Scenario, ttl time.Duration) error {
	return s.setCached(ctx, cacheKindScenario, regcode, scenario, ttl)
}

func (s *SQLiteStore) GetCachedProfile(ctx context.Context, regcode string) (*model.CompanyProfile, error) {
	var profile model.CompanyProfile
	ok, err := s.getCached(ctx, cacheKindProfile, regcode, &profile)
	if err != nil || !ok {
		return nil, err
	}
	return &profile, nil
}

func (s *SQLiteStore) SetCachedProfile(ctx context.Context, regcode string, profile *model.CompanyProfile, ttl time.Duration) error {
	return s.setCached(ctx, cacheKindProfile, regcode, profile, ttl)
}

func (s *SQLiteStore) DeleteExpiredCache(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM payload_cache WHERE expires_at <= datetime('now')`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: delete expired cache")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: rows affected")
	}
	return int(n), nil
}

func (s *SQLiteStore) AddWatch(ctx context.Context, entry WatchEntry) error {
	addedAt := entry.AddedAt
	if addedAt.IsZero() {
		addedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO watchlist (regcode, name, note, added_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (regcode) DO UPDATE SET name = excluded.name, note = excluded.note`,
		entry.Regcode, entry.Name, entry.Note, addedAt,
	)
	return eris.Wrap(err, "sqlite: add watch")
}

func (s *SQLiteStore) RemoveWatch(ctx context.Context, regcode string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM watchlist WHERE regcode = ?`, regcode)
	return eris.Wrap(err, "sqlite: remove watch")
}

func (s *SQLiteStore) ListWatches(ctx context.Context) ([]WatchEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT regcode, name, note, added_at FROM watchlist ORDER BY added_at DESC`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list watches")
	}
	defer rows.Close()

	var entries []WatchEntry
	for rows.Next() {
		var e WatchEntry
		if err := rows.Scan(&e.Regcode, &e.Name, &e.Note, &e.AddedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan watch")
		}
		entries = append(entries, e)
	}
	return entries, eris.Wrap(rows.Err(), "sqlite: iterate watches")
}

func (s *SQLiteStore) UpsertCompanies(ctx context.Context, companies []IndexedCompany) (int, error) {
	if len(companies) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin upsert tx")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO company_index (regcode, name, status, nace_code, address, synced_at) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (regcode) DO UPDATE SET name = excluded.name, status = excluded.status,
		   nace_code = excluded.nace_code, address = excluded.address, synced_at = excluded.synced_at`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare upsert")
	}
	defer stmt.Close()

	count := 0
	for _, c := range companies {
		if c.Regcode == "" {
			continue
		}
		syncedAt := c.SyncedAt
		if syncedAt.IsZero() {
			syncedAt = time.Now().UTC()
		}
		if _, err := stmt.ExecContext(ctx, c.Regcode, c.Name, c.Status, c.NACECode, c.Address, syncedAt); err != nil {
			return 0, eris.Wrapf(err, "sqlite: upsert company %s", c.Regcode)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit upsert tx")
	}
	return count, nil
}

func (s *SQLiteStore) SearchIndex(ctx context.Context, query string, limit int) ([]IndexedCompany, error) {
	if limit <= 0 {
		limit = 20
	}
	query = strings.TrimSpace(query)

	rows, err := s.db.QueryContext(ctx,
		`SELECT regcode, name, status, nace_code, address, synced_at FROM company_index
		 WHERE regcode = ? OR name LIKE ? COLLATE NOCASE
		 ORDER BY name LIMIT ?`,
		query, query+"%", limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: search index")
	}
	defer rows.Close()

	var out []IndexedCompany
	for rows.Next() {
		var c IndexedCompany
		if err := rows.Scan(&c.Regcode, &c.Name, &c.Status, &c.NACECode, &c.Address, &c.SyncedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan indexed company")
		}
		out = append(out, c)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate index")
}

func (s *SQLiteStore) CountIndex(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM company_index`).Scan(&n); err != nil {
		return 0, eris.Wrap(err, "sqlite: count index")
	}
	return n, nil
}
