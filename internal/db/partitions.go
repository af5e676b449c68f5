package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/jmoiron/sqlx"
)

// Partitions hands out one database handle per partition. Each handle is
// opened and migrated on first use, reused for the life of the process and
// released by Close.
type Partitions struct {
	dir string

	mu     sync.Mutex
	conns  map[string]*lazyConn
	closed bool
}

// lazyConn guards one partition's handle. mu is held for the whole open, so
// concurrent callers wait for it and Close waits for it to finish.
type lazyConn struct {
	mu     sync.Mutex
	db     *sqlx.DB
	closed bool
}

// NewPartitions stores partition databases as <dir>/<partition>.sqlite3.
func NewPartitions(dir string) *Partitions {
	return &Partitions{dir: dir, conns: make(map[string]*lazyConn)}
}

// Path returns the database file backing a partition.
func (p *Partitions) Path(partition string) string {
	return filepath.Join(p.dir, partition+".sqlite3")
}

// Get returns the handle for partition, opening it on first use. A failed
// open is returned to the caller and retried by the next Get.
func (p *Partitions) Get(ctx context.Context, partition string) (*sqlx.DB, error) {
	if partition == "" {
		return nil, fmt.Errorf("empty partition name")
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, errPartitionsClosed
	}
	lc, ok := p.conns[partition]
	if !ok {
		lc = &lazyConn{}
		p.conns[partition] = lc
	}
	p.mu.Unlock()

	lc.mu.Lock()
	defer lc.mu.Unlock()
	if lc.closed {
		return nil, errPartitionsClosed
	}
	if lc.db != nil {
		return lc.db, nil
	}

	database, err := p.open(ctx, partition)
	if err != nil {
		return nil, err
	}
	lc.db = database
	return database, nil
}

var errPartitionsClosed = errors.New("partitions closed")

func (p *Partitions) open(ctx context.Context, partition string) (*sqlx.DB, error) {
	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	path := p.Path(partition)
	database, err := Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening partition %s: %w", partition, err)
	}

	// Migrations must not be cancelled halfway by the request that happened
	// to trigger the open.
	if err := Migrate(context.WithoutCancel(ctx), database); err != nil {
		database.Close()
		return nil, fmt.Errorf("migrating partition %s: %w", partition, err)
	}

	slog.Info("partition opened", "partition", partition, "path", path)
	return database, nil
}

// Close closes every opened handle, waiting for opens in progress. Get
// fails after Close.
func (p *Partitions) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true
	var errs []error
	for name, lc := range p.conns {
		lc.mu.Lock()
		lc.closed = true
		if lc.db != nil {
			if err := lc.db.Close(); err != nil {
				errs = append(errs, fmt.Errorf("closing partition %s: %w", name, err))
			}
			lc.db = nil
		}
		lc.mu.Unlock()
	}
	p.conns = map[string]*lazyConn{}
	return errors.Join(errs...)
}
