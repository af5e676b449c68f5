package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/sitestock/internal/site"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "data", cfg.DataDir)
	assert.False(t, cfg.Production)
	assert.Equal(t, 5, cfg.LowStockThreshold)
	assert.Equal(t, site.DefaultWarehousePartition, cfg.WarehousePartition)
	assert.Equal(t, site.DefaultSites(), cfg.Sites)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := writeFile(t, "sitestock.yaml", `
addr: ":9000"
data_dir: /var/lib/sitestock
low_stock_threshold: 3
sites:
  - key: NORTH
    name: North
    partition: inventory_north
  - key: SOUTHEAST
    name: South-East
    partition: inventory_south_east
`)
	t.Setenv("SITESTOCK_ADDR", ":9100")
	t.Setenv("SITESTOCK_PRODUCTION", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9100", cfg.Addr, "env wins over file")
	assert.Equal(t, "/var/lib/sitestock", cfg.DataDir)
	assert.True(t, cfg.Production)
	assert.Equal(t, 3, cfg.LowStockThreshold)
	require.Len(t, cfg.Sites, 2)

	reg, err := cfg.Registry()
	require.NoError(t, err)
	s, err := reg.Resolve("south east")
	require.NoError(t, err)
	assert.Equal(t, "inventory_south_east", s.Partition)
}

func TestLoadRejectsBadSites(t *testing.T) {
	path := writeFile(t, "sitestock.yaml", `
sites:
  - key: ENAM
    name: ENAM
    partition: inventory_enam
  - key: ENAM2
    name: ENAM 2
    partition: inventory_enam
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
