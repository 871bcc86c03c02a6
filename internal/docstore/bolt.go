package docstore

import (
	"bytes"
	"time"

	"github.com/cockroachdb/errors"
	"go.etcd.io/bbolt"
)

var documentsBucket = []byte("documents")

type boltBackend struct {
	db *bbolt.DB
}

func openBolt(path string) (*boltBackend, error) {
	opts := *bbolt.DefaultOptions
	opts.Timeout = 10 * time.Second

	db, err := bbolt.Open(path, 0o600, &opts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open bolt")
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(documentsBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.WithStack(err)
	}

	return &boltBackend{db: db}, nil
}

func (b *boltBackend) get(key []byte) ([]byte, error) {
	var value []byte
	err := b.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(documentsBucket).Get(key)
		if v == nil {
			return errors.WithStack(ErrNotFound)
		}
		// v is only valid during the transaction
		value = bytes.Clone(v)
		return nil
	})
	return value, err
}

func (b *boltBackend) put(key, value []byte) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(documentsBucket).Put(key, value)
	})
}

func (b *boltBackend) delete(key []byte) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(documentsBucket)
		if bucket.Get(key) == nil {
			return errors.WithStack(ErrNotFound)
		}
		return bucket.Delete(key)
	})
}

func (b *boltBackend) iterate(prefix []byte, fn func(key []byte) error) error {
	return b.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(documentsBucket).Cursor()
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			if err := fn(k); err != nil {
				return err
			}
		}
		return nil
	})
}

func (b *boltBackend) close() error {
	return b.db.Close()
}
