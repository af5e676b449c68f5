package site

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/sitestock/internal/apperr"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"ENAM", "ENAM"},
		{"enam", "ENAM"},
		{"SUP'PTIC", "SUPPTIC"},
		{"  sup ptic ", "SUPPTIC"},
		{"Minfopra!", "MINFOPRA"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), "Normalize(%q)", tt.in)
	}
}

func TestResolve(t *testing.T) {
	r, err := NewRegistry(DefaultSites(), "")
	require.NoError(t, err)

	s, err := r.Resolve("SUP'PTIC")
	require.NoError(t, err)
	assert.Equal(t, "SUPPTIC", s.Key)
	assert.Equal(t, "SUP'PTIC", s.Name)
	assert.Equal(t, "inventory_supptic", s.Partition)

	s, err = r.Resolve("ismp")
	require.NoError(t, err)
	assert.Equal(t, "inventory_ismp", s.Partition)

	_, err = r.Resolve("ATLANTIS")
	assert.True(t, apperr.Is(err, apperr.InvalidSite))

	_, err = r.Resolve(WarehouseKey)
	assert.True(t, apperr.Is(err, apperr.InvalidSite), "warehouse is not a site")

	w, err := r.ResolveAny("warehouse")
	require.NoError(t, err)
	assert.Equal(t, DefaultWarehousePartition, w.Partition)
}

func TestPartitions(t *testing.T) {
	r, err := NewRegistry(DefaultSites(), "main")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"inventory_enam", "inventory_minfopra", "inventory_supptic", "inventory_ismp", "main",
	}, r.Partitions())
	assert.Len(t, r.Sites(), 4)
}

func TestNewRegistryRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name  string
		sites []Site
	}{
		{"empty", nil},
		{"non-canonical key", []Site{{Key: "Enam", Partition: "p1"}}},
		{"reserved key", []Site{{Key: WarehouseKey, Partition: "p1"}}},
		{"duplicate key", []Site{{Key: "A", Partition: "p1"}, {Key: "A", Partition: "p2"}}},
		{"duplicate partition", []Site{{Key: "A", Partition: "p1"}, {Key: "B", Partition: "p1"}}},
		{"partition clashes with warehouse", []Site{{Key: "A", Partition: DefaultWarehousePartition}}},
		{"unsafe partition", []Site{{Key: "A", Partition: "../etc"}}},
		{"name does not match key", []Site{{Key: "A", Name: "B", Partition: "p1"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.sites, "")
			assert.Error(t, err)
		})
	}
}
