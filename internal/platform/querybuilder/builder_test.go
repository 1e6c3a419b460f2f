package querybuilder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectToSQL(t *testing.T) {
	query, args, err := Select("body").
		From("snapshots").
		Where(Eq("key", "games/2026-03-14")).
		ToSQL()
	require.NoError(t, err)
	assert.Equal(t, "SELECT body FROM snapshots WHERE key = $1", query)
	assert.Equal(t, []any{"games/2026-03-14"}, args)
}

func TestSelectOrderByAndLimit(t *testing.T) {
	query, _, err := Select("key").
		From("snapshots").
		OrderBy("updated_at DESC").
		Limit(1).
		ToSQL()
	require.NoError(t, err)
	assert.Equal(t, "SELECT key FROM snapshots ORDER BY updated_at DESC LIMIT 1", query)
}

func TestSelectRequiresTable(t *testing.T) {
	_, _, err := Select("body").ToSQL()
	assert.Error(t, err)
}

func TestInsertWithSuffix(t *testing.T) {
	query, args, err := InsertInto("snapshots").
		Columns("key", "body").
		Values("games/latest", []byte(`{}`)).
		Suffix("ON CONFLICT (key) DO UPDATE SET body = EXCLUDED.body").
		ToSQL()
	require.NoError(t, err)
	assert.Equal(t,
		"INSERT INTO snapshots (key, body) VALUES ($1, $2) ON CONFLICT (key) DO UPDATE SET body = EXCLUDED.body",
		query)
	require.Len(t, args, 2)
	assert.Equal(t, "games/latest", args[0])
}

func TestInsertRejectsColumnValueMismatch(t *testing.T) {
	_, _, err := InsertInto("snapshots").
		Columns("key", "body").
		Values("games/latest").
		ToSQL()
	assert.Error(t, err)
}
