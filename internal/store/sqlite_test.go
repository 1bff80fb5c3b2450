package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baltlens/registry-cli/internal/model"
	"github.com/baltlens/registry-cli/internal/mvk"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

// --- Scenario cache ---

func TestSQLite_ScenarioCache_SetAndGet(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	scenario := &mvk.Scenario{
		CompanyType: mvk.TypePartner,
		CompanyNACE: "62.01",
		SectionA: mvk.SectionA{Partners: []mvk.RelatedEntity{
			{Regcode: "40001111111", Name: "Partner A", NACECode: "62.09", OwnershipPercent: 30},
		}},
	}
	require.NoError(t, st.SetCachedScenario(ctx, "40009999999", scenario, time.Hour))

	got, err := st.GetCachedScenario(ctx, "40009999999")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, mvk.TypePartner, got.CompanyType)
	require.Len(t, got.SectionA.Partners, 1)
	assert.Equal(t, "Partner A", got.SectionA.Partners[0].Name)
}

func TestSQLite_ScenarioCache_Miss(t *testing.T) {
	st := newTestSQLiteStore(t)

	got, err := st.GetCachedScenario(context.Background(), "unknown")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLite_ScenarioCache_Expired(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.SetCachedScenario(ctx, "1", &mvk.Scenario{CompanyType: mvk.TypeAutonomous}, -time.Minute))

	got, err := st.GetCachedScenario(ctx, "1")
	require.NoError(t, err)
	assert.Nil(t, got)

	n, err := st.DeleteExpiredCache(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSQLite_ScenarioCache_Overwrite(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.SetCachedScenario(ctx, "1", &mvk.Scenario{CompanyType: mvk.TypeAutonomous}, time.Hour))
	require.NoError(t, st.SetCachedScenario(ctx, "1", &mvk.Scenario{CompanyType: mvk.TypeLinked}, time.Hour))

	got, err := st.GetCachedScenario(ctx, "1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, mvk.TypeLinked, got.CompanyType)
}

// --- Profile cache ---

func TestSQLite_ProfileCache_SetAndGet(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	profile := &model.CompanyProfile{Regcode: "1", Name: "Balta Tech SIA", NACECode: "62.01"}
	require.NoError(t, st.SetCachedProfile(ctx, "1", profile, time.Hour))

	got, err := st.GetCachedProfile(ctx, "1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Balta Tech SIA", got.Name)
}

// --- Watchlist ---

func TestSQLite_Watchlist_AddListRemove(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.AddWatch(ctx, WatchEntry{Regcode: "1", Name: "A", Note: "competitor"}))
	require.NoError(t, st.AddWatch(ctx, WatchEntry{Regcode: "2", Name: "B"}))

	entries, err := st.ListWatches(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	require.NoError(t, st.RemoveWatch(ctx, "1"))
	entries, err = st.ListWatches(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "2", entries[0].Regcode)
}

func TestSQLite_Watchlist_UpsertKeepsOneRow(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.AddWatch(ctx, WatchEntry{Regcode: "1", Name: "Old Name"}))
	require.NoError(t, st.AddWatch(ctx, WatchEntry{Regcode: "1", Name: "New Name", Note: "renamed"}))

	entries, err := st.ListWatches(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "New Name", entries[0].Name)
	assert.Equal(t, "renamed", entries[0].Note)
}

// --- Open-data index ---

func TestSQLite_Index_UpsertAndSearch(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	n, err := st.UpsertCompanies(ctx, []IndexedCompany{
		{Regcode: "40001111111", Name: "Balta Tech SIA", Status: "active", NACECode: "62.01"},
		{Regcode: "40002222222", Name: "Baltic Foods SIA", Status: "active", NACECode: "10.71"},
		{Regcode: "40003333333", Name: "Ziemeli AS", Status: "liquidated"},
		{Name: "no regcode"}, // skipped
	})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	count, err := st.CountIndex(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	// By name prefix, case-insensitive.
	hits, err := st.SearchIndex(ctx, "balt", 10)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "Balta Tech SIA", hits[0].Name)
	assert.Equal(t, "Baltic Foods SIA", hits[1].Name)

	// By exact regcode.
	hits, err = st.SearchIndex(ctx, "40003333333", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "Ziemeli AS", hits[0].Name)
}

func TestSQLite_Index_UpsertOverwrites(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.UpsertCompanies(ctx, []IndexedCompany{{Regcode: "1", Name: "Old", Status: "active"}})
	require.NoError(t, err)
	_, err = st.UpsertCompanies(ctx, []IndexedCompany{{Regcode: "1", Name: "New", Status: "liquidated"}})
	require.NoError(t, err)

	hits, err := st.SearchIndex(ctx, "1", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "New", hits[0].Name)
	assert.Equal(t, "liquidated", hits[0].Status)
}

func TestSQLite_Index_EmptyUpsert(t *testing.T) {
	st := newTestSQLiteStore(t)

	n, err := st.UpsertCompanies(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}
