package postgres

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

func TestLoadMigrations_SortedPairs(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"sql/migrations/0002_idx.up.sql":   {Data: []byte("CREATE INDEX a_idx ON a (id);")},
		"sql/migrations/0002_idx.down.sql": {Data: []byte("DROP INDEX a_idx;")},
		"sql/migrations/0001_init.up.sql":   {Data: []byte("CREATE TABLE a (id INT);")},
		"sql/migrations/0001_init.down.sql": {Data: []byte("DROP TABLE a;")},
	}

	set, err := loadMigrations(fsys)
	require.NoError(t, err)
	require.Len(t, set, 2)
	require.Equal(t, int64(1), set[0].Version)
	require.Equal(t, "init", set[0].Name)
	require.Equal(t, "CREATE TABLE a (id INT);", set[0].scripts[up])
	require.Equal(t, int64(2), set[1].Version)
	require.Equal(t, "DROP INDEX a_idx;", set[1].scripts[down])
}

func TestLoadMigrations_Errors(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		fsys    fstest.MapFS
		wantMsg string
	}{
		"missing down": {
			fsys: fstest.MapFS{
				"sql/migrations/0001_init.up.sql": {Data: []byte("SELECT 1;")},
			},
			wantMsg: "both up and down",
		},
		"bad file name": {
			fsys: fstest.MapFS{
				"sql/migrations/not_a_migration.sql": {Data: []byte("SELECT 1;")},
			},
			wantMsg: "invalid migration file name",
		},
		"empty body": {
			fsys: fstest.MapFS{
				"sql/migrations/0001_init.up.sql":   {Data: []byte("   \n")},
				"sql/migrations/0001_init.down.sql": {Data: []byte("SELECT 1;")},
			},
			wantMsg: "empty",
		},
		"name mismatch": {
			fsys: fstest.MapFS{
				"sql/migrations/0001_init.up.sql":  {Data: []byte("SELECT 1;")},
				"sql/migrations/0001_other.down.sql": {Data: []byte("SELECT 1;")},
			},
			wantMsg: "name mismatch",
		},
		"no files": {
			fsys:    fstest.MapFS{},
			wantMsg: "no migration files",
		},
	}

	for name, tc := range cases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := loadMigrations(tc.fsys)
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.wantMsg)
		})
	}
}

func TestEmbeddedMigrationsCreateKVTable(t *testing.T) {
	t.Parallel()

	set, err := loadMigrations(embeddedMigrations)
	require.NoError(t, err)
	require.NotEmpty(t, set)
	require.Equal(t, "kv_entries", set[0].Name)
	require.Contains(t, set[0].scripts[up], "CREATE TABLE IF NOT EXISTS kv_entries")
}
