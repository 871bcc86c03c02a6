package docstore

import (
	"bytes"

	"go.etcd.io/bbolt"
)

// CorruptForTest flips the last byte of the record stored under name
// in the bolt database at path.
func CorruptForTest(path, name string) error {
	b, err := openBolt(path)
	if err != nil {
		return err
	}
	defer b.close()

	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(documentsBucket)
		rec := bytes.Clone(bucket.Get(docKey(name)))
		if len(rec) == 0 {
			return ErrNotFound
		}
		rec[len(rec)-1] ^= 0xFF
		return bucket.Put(docKey(name), rec)
	})
}

// PutRecordForTest stores rec as is under name in the bolt database at path.
func PutRecordForTest(path, name string, rec []byte) error {
	b, err := openBolt(path)
	if err != nil {
		return err
	}
	defer b.close()

	return b.put(docKey(name), rec)
}
