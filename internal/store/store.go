// Package store persists the portal's local data: short-lived caches of
// register payloads, user watchlists, and the offline company index built
// from the register's open-data dump. SQLite is the default backend;
// postgres is available for shared deployments.
package store

import (
	"context"
	"time"

	"github.com/baltlens/registry-cli/internal/model"
	"github.com/baltlens/registry-cli/internal/mvk"
)

// WatchEntry is a company a user monitors.
type WatchEntry struct {
	Regcode string    `json:"regcode"`
	Name    string    `json:"name"`
	Note    string    `json:"note,omitempty"`
	AddedAt time.Time `json:"added_at"`
}

// IndexedCompany is one row of the offline company index synced from the
// register's open-data dump.
type IndexedCompany struct {
	Regcode  string    `json:"regcode"`
	Name     string    `json:"name"`
	Status   string    `json:"status,omitempty"`
	NACECode string    `json:"nace_code,omitempty"`
	Address  string    `json:"address,omitempty"`
	SyncedAt time.Time `json:"synced_at"`
}

// Store defines the local persistence interface.
type Store interface {
	// Scenario cache. Get returns (nil, nil) on miss or expiry.
	GetCachedScenario(ctx context.Context, regcode string) (*mvk.Scenario, error)
	SetCachedScenario(ctx context.Context, regcode string, scenario *mvk.Scenario, ttl time.Duration) error

	// Profile cache. Get returns (nil, nil) on miss or expiry.
	GetCachedProfile(ctx context.Context, regcode string) (*model.CompanyProfile, error)
	SetCachedProfile(ctx context.Context, regcode string, profile *model.CompanyProfile, ttl time.Duration) error
	DeleteExpiredCache(ctx context.Context) (int, error)

	// Watchlist.
	AddWatch(ctx context.Context, entry WatchEntry) error
	RemoveWatch(ctx context.Context, regcode string) error
	ListWatches(ctx context.Context) ([]WatchEntry, error)

	// Open-data company index.
	UpsertCompanies(ctx context.Context, companies []IndexedCompany) (int, error)
	SearchIndex(ctx context.Context, query string, limit int) ([]IndexedCompany, error)
	CountIndex(ctx context.Context) (int, error)

	// Lifecycle.
	Migrate(ctx context.Context) error
	Close() error
}
