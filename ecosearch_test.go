package ecosearch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datamere/ecosearch/config"
)

func TestNewApp_WiresPipeline(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.FilesDir = t.TempDir()

	app, err := NewApp(cfg, WithInMemoryStorage())
	require.NoError(t, err)
	defer app.Close()

	assert.NotNil(t, app.Datasets())
	assert.NotNil(t, app.NewRunner())

	retrieval, err := app.NewRetrieval()
	require.NoError(t, err)
	assert.NotNil(t, retrieval)

	srv, err := app.NewServer()
	require.NoError(t, err)
	assert.NotNil(t, srv)
}

func TestNewApp_NilConfigUsesDefaults(t *testing.T) {
	app, err := NewApp(nil, WithInMemoryStorage())
	require.NoError(t, err)
	defer app.Close()
}
