package docstore

import (
	"log/slog"

	"github.com/chaisql/ion/lib/pebbleutil"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
)

type pebbleBackend struct {
	db *pebble.DB
}

func openPebble(path string, inMemory bool, logger *slog.Logger) (*pebbleBackend, error) {
	opts := pebble.Options{
		Logger: pebbleutil.NewLogger(logger),
	}
	if inMemory {
		opts.FS = vfs.NewMem()
		path = ""
	}

	db, err := pebble.Open(path, &opts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open pebble")
	}

	return &pebbleBackend{db: db}, nil
}

func (p *pebbleBackend) get(key []byte) ([]byte, error) {
	value, closer, err := p.db.Get(key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, errors.WithStack(ErrNotFound)
		}
		return nil, err
	}

	cp := make([]byte, len(value))
	copy(cp, value)

	err = closer.Close()
	if err != nil {
		return nil, err
	}
	return cp, nil
}

func (p *pebbleBackend) put(key, value []byte) error {
	return p.db.Set(key, value, pebble.Sync)
}

func (p *pebbleBackend) delete(key []byte) error {
	_, closer, err := p.db.Get(key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return errors.WithStack(ErrNotFound)
		}
		return err
	}
	err = closer.Close()
	if err != nil {
		return err
	}

	return p.db.Delete(key, pebble.Sync)
}

func (p *pebbleBackend) iterate(prefix []byte, fn func(key []byte) error) error {
	it := p.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: successor(prefix),
	})

	for it.First(); it.Valid(); it.Next() {
		if err := fn(it.Key()); err != nil {
			_ = it.Close()
			return err
		}
	}

	return it.Close()
}

func (p *pebbleBackend) close() error {
	return p.db.Close()
}
