package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/carrinho/internal/presenter"
)

func testLogger(name string) *log.Entry {
	return log.WithField("test", name)
}

func TestInitRuntimeDependencies_Memory(t *testing.T) {
	t.Parallel()

	deps, err := initRuntimeDependencies(context.Background(), Config{StorageDriver: StorageDriverMemory}, testLogger("memory"))
	require.NoError(t, err)
	defer deps.close(testLogger("memory"))

	require.NotNil(t, deps.kv)
	require.NoError(t, deps.kv.Ping(context.Background()))
	require.Nil(t, deps.producer)
	require.Nil(t, deps.notifier())
}

func TestInitRuntimeDependencies_EmptyDriverFallsBackToMemory(t *testing.T) {
	t.Parallel()

	deps, err := initRuntimeDependencies(context.Background(), Config{}, testLogger("empty-driver"))
	require.NoError(t, err)
	require.NotNil(t, deps.kv)
}

func TestInitRuntimeDependencies_Errors(t *testing.T) {
	t.Parallel()

	cases := map[string]Config{
		"postgres without dsn": {StorageDriver: StorageDriverPostgres},
		"redis without addr":   {StorageDriver: StorageDriverRedis},
		"unsupported driver":   {StorageDriver: "sqlite"},
		"missing catalog file": {StorageDriver: StorageDriverMemory, CatalogPath: "/nonexistent/catalogo.html"},
	}
	for name, cfg := range cases {
		cfg := cfg
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := initRuntimeDependencies(context.Background(), cfg, testLogger(name))
			require.Error(t, err)
		})
	}
}

func TestDefaultCatalogHasCartRegions(t *testing.T) {
	t.Parallel()

	tpl, err := loadCatalog("")
	require.NoError(t, err)

	page := tpl.Page()
	require.Len(t, page.AddTriggers(), 4)
	_, err = presenter.NewDocumentRegions(page.Document())
	require.NoError(t, err)
}

func TestLoadCatalogFromFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "vitrine.html")
	markup := `<html><body><div class="produto" data-id="9"><button class="adicionar-ao-carrinho"></button></div></body></html>`
	require.NoError(t, os.WriteFile(path, []byte(markup), 0o600))

	tpl, err := loadCatalog(path)
	require.NoError(t, err)
	require.Len(t, tpl.Page().AddTriggers(), 1)
}
