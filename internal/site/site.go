// Package site holds the closed set of sites and the data partition each
// one maps to.
package site

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/erazemk/sitestock/internal/apperr"
)

// WarehouseKey is the key of the shared admin partition.
const WarehouseKey = "WAREHOUSE"

// DefaultWarehousePartition is the partition name of the shared warehouse.
const DefaultWarehousePartition = "inventory_warehouse_main"

// Site is one entry of the registry.
type Site struct {
	Key       string `json:"key" mapstructure:"key"`
	Name      string `json:"name" mapstructure:"name"`
	Partition string `json:"partition" mapstructure:"partition"`
}

// DefaultSites returns the built-in site list.
func DefaultSites() []Site {
	return []Site{
		{Key: "ENAM", Name: "ENAM", Partition: "inventory_enam"},
		{Key: "MINFOPRA", Name: "MINFOPRA", Partition: "inventory_minfopra"},
		{Key: "SUPPTIC", Name: "SUP'PTIC", Partition: "inventory_supptic"},
		{Key: "ISMP", Name: "ISMP", Partition: "inventory_ismp"},
	}
}

var partitionPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Normalize strips everything but letters and digits and uppercases the
// rest, so "Sup'ptic" and "SUPPTIC" yield the same key.
func Normalize(id string) string {
	var b strings.Builder
	for _, r := range id {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}

// Registry resolves site identifiers to sites.
type Registry struct {
	sites     []Site
	byKey     map[string]Site
	warehouse Site
}

// NewRegistry validates sites and builds a registry. Keys must already be
// canonical, and no two sites may share a key, a partition, or a
// normalized display name.
func NewRegistry(sites []Site, warehousePartition string) (*Registry, error) {
	if len(sites) == 0 {
		return nil, fmt.Errorf("no sites configured")
	}
	if warehousePartition == "" {
		warehousePartition = DefaultWarehousePartition
	}
	if !partitionPattern.MatchString(warehousePartition) {
		return nil, fmt.Errorf("invalid warehouse partition name %q", warehousePartition)
	}

	r := &Registry{
		byKey:     make(map[string]Site, len(sites)),
		warehouse: Site{Key: WarehouseKey, Name: "Warehouse", Partition: warehousePartition},
	}
	partitions := map[string]string{warehousePartition: WarehouseKey}

	for _, s := range sites {
		if s.Key == "" || Normalize(s.Key) != s.Key {
			return nil, fmt.Errorf("site key %q is not canonical (want %q)", s.Key, Normalize(s.Key))
		}
		if s.Key == WarehouseKey {
			return nil, fmt.Errorf("site key %q is reserved", s.Key)
		}
		if s.Name == "" {
			s.Name = s.Key
		}
		if Normalize(s.Name) != s.Key {
			return nil, fmt.Errorf("site %s: display name %q does not normalize to its key", s.Key, s.Name)
		}
		if !partitionPattern.MatchString(s.Partition) {
			return nil, fmt.Errorf("site %s: invalid partition name %q", s.Key, s.Partition)
		}
		if _, dup := r.byKey[s.Key]; dup {
			return nil, fmt.Errorf("duplicate site key %q", s.Key)
		}
		if owner, dup := partitions[s.Partition]; dup {
			return nil, fmt.Errorf("partition %q used by both %s and %s", s.Partition, owner, s.Key)
		}
		partitions[s.Partition] = s.Key
		r.byKey[s.Key] = s
		r.sites = append(r.sites, s)
	}

	return r, nil
}

// Resolve looks a site up by key or display name.
func (r *Registry) Resolve(id string) (Site, error) {
	key := Normalize(id)
	if s, ok := r.byKey[key]; ok {
		return s, nil
	}
	return Site{}, apperr.New(apperr.InvalidSite, "unknown site %q", id)
}

// ResolveAny is Resolve that also accepts the warehouse key.
func (r *Registry) ResolveAny(id string) (Site, error) {
	if Normalize(id) == WarehouseKey {
		return r.warehouse, nil
	}
	return r.Resolve(id)
}

// Sites returns the configured sites in configuration order.
func (r *Registry) Sites() []Site {
	out := make([]Site, len(r.sites))
	copy(out, r.sites)
	return out
}

// Warehouse returns the shared admin partition.
func (r *Registry) Warehouse() Site { return r.warehouse }

// Partitions returns every partition name, sites first then the warehouse.
func (r *Registry) Partitions() []string {
	out := make([]string, 0, len(r.sites)+1)
	for _, s := range r.sites {
		out = append(out, s.Partition)
	}
	return append(out, r.warehouse.Partition)
}
