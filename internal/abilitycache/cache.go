package abilitycache

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"go.uber.org/zap"

	"github.com/samijaber1/bloomwatch/internal/rotation"
)

var keyPrefix = []byte("ability/")

// Known names seeded into every cache
var builtinNames = map[int]string{
	rotation.Lifebloom:        "Lifebloom",
	rotation.Rejuvenation:     "Rejuvenation",
	rotation.TreeOfLife:       "Tree of Life",
	rotation.Swiftmend:        "Swiftmend",
	rotation.NaturesSwiftness: "Nature's Swiftness",
	rotation.Innervate:        "Innervate",
	26994:                     "Rebirth",
	26979:                     "Healing Touch",
	28499:                     "Restore Mana",
}

// Cache persists ability id to display name lookups
type Cache struct {
	db     *badger.DB
	logger *zap.Logger
}

// Open opens the cache at path. An empty path keeps the cache in memory.
func Open(path string, logger *zap.Logger) (*Cache, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := badger.DefaultOptions(path).
		WithCompression(options.ZSTD).
		WithNumVersionsToKeep(1).
		WithLogger(badgerLogger{logger.Sugar()})
	if path == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open ability cache: %w", err)
	}

	c := &Cache{db: db, logger: logger}
	if err := c.seed(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Debug("ability cache opened", zap.String("path", path), zap.Bool("in_memory", path == ""))
	return c, nil
}

func (c *Cache) seed() error {
	names := make(map[int]string, len(builtinNames)+len(rotation.RegrowthRanks))
	for id, name := range builtinNames {
		names[id] = name
	}
	for id, rank := range rotation.RegrowthRanks {
		names[id] = "Regrowth (" + rank + ")"
	}
	return c.PutAll(names)
}

func key(id int) []byte {
	k := make([]byte, len(keyPrefix)+4)
	copy(k, keyPrefix)
	binary.BigEndian.PutUint32(k[len(keyPrefix):], uint32(id))
	return k
}

// Get returns the cached name of an ability
func (c *Cache) Get(id int) (string, bool, error) {
	var name string
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			name = string(val)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read ability %d: %w", id, err)
	}
	return name, true, nil
}

// Put stores one name
func (c *Cache) Put(id int, name string) error {
	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(id), []byte(name))
	})
	if err != nil {
		return fmt.Errorf("failed to store ability %d: %w", id, err)
	}
	return nil
}

// PutAll stores names in one write batch
func (c *Cache) PutAll(names map[int]string) error {
	wb := c.db.NewWriteBatch()
	defer wb.Cancel()

	for id, name := range names {
		if err := wb.Set(key(id), []byte(name)); err != nil {
			return fmt.Errorf("write batch error: %w", err)
		}
	}

	if err := wb.Flush(); err != nil {
		return fmt.Errorf("batch flush error: %w", err)
	}
	return nil
}

// Name returns a display name, falling back to "Unknown (id)". Lookup
// errors are logged and treated as misses.
func (c *Cache) Name(id int) string {
	name, ok, err := c.Get(id)
	if err != nil {
		c.logger.Warn("ability lookup failed", zap.Int("ability", id), zap.Error(err))
	}
	if !ok {
		return fmt.Sprintf("Unknown (%d)", id)
	}
	return name
}

// Len counts the cached names
func (c *Cache) Len() (int, error) {
	n := 0
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = keyPrefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

// Close closes the underlying database
func (c *Cache) Close() error {
	if err := c.db.Close(); err != nil {
		return fmt.Errorf("failed to close ability cache: %w", err)
	}
	return nil
}

// badgerLogger routes badger's logging through zap
type badgerLogger struct {
	s *zap.SugaredLogger
}

func (l badgerLogger) Errorf(f string, v ...interface{})   { l.s.Errorf(f, v...) }
func (l badgerLogger) Warningf(f string, v ...interface{}) { l.s.Warnf(f, v...) }
func (l badgerLogger) Infof(f string, v ...interface{})    { l.s.Debugf(f, v...) }
func (l badgerLogger) Debugf(f string, v ...interface{})   { l.s.Debugf(f, v...) }
