package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBulkUpsert_EmptyRows(t *testing.T) {
	n, err := BulkUpsert(nil, nil, UpsertConfig{
		Table:        "company_index",
		Columns:      []string{"regcode", "name"},
		ConflictKeys: []string{"regcode"},
	}, nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestBulkUpsert_NoColumns(t *testing.T) {
	_, err := BulkUpsert(nil, nil, UpsertConfig{
		Table:        "company_index",
		ConflictKeys: []string{"regcode"},
	}, [][]any{{1, "a"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no columns specified")
}

func TestBulkUpsert_NoConflictKeys(t *testing.T) {
	_, err := BulkUpsert(nil, nil, UpsertConfig{
		Table:   "company_index",
		Columns: []string{"regcode", "name"},
	}, [][]any{{1, "a"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no conflict keys specified")
}

func TestUpdateColumns_DefaultsToNonKeys(t *testing.T) {
	cfg := UpsertConfig{
		Columns:      []string{"regcode", "name", "status"},
		ConflictKeys: []string{"regcode"},
	}
	assert.Equal(t, []string{"name", "status"}, cfg.updateColumns())
}

func TestUpdateColumns_ExplicitListWins(t *testing.T) {
	cfg := UpsertConfig{
		Columns:      []string{"regcode", "name", "status"},
		ConflictKeys: []string{"regcode"},
		UpdateCols:   []string{"status"},
	}
	assert.Equal(t, []string{"status"}, cfg.updateColumns())
}

func TestMergeSQL(t *testing.T) {
	cfg := UpsertConfig{
		Table:        "company_index",
		Columns:      []string{"regcode", "name"},
		ConflictKeys: []string{"regcode"},
	}
	got := cfg.mergeSQL("_staging_company_index")
	assert.Equal(t,
		`INSERT INTO "company_index" ("regcode", "name") SELECT "regcode", "name" FROM "_staging_company_index" ON CONFLICT ("regcode") DO UPDATE SET "name" = EXCLUDED."name"`,
		got)
}

func TestIdentList(t *testing.T) {
	assert.Equal(t, `"regcode", "name", "status"`, identList([]string{"regcode", "name", "status"}))
}
