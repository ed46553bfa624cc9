package vecstore

import (
	"encoding/json"
	"fmt"
	"strconv"

	"go.etcd.io/bbolt"

	"todoc/internal/domain"
)

// Create writes a complete index file in one transaction. The serving path
// never calls this; it exists for the offline ingestion tooling and for
// test fixtures.
func Create(path, source string, metric domain.Metric, dimension int, records []domain.VectorRecord) error {
	db, err := bbolt.Open(path, 0644, nil)
	if err != nil {
		return fmt.Errorf("failed to create index %s: %w", path, err)
	}
	defer db.Close()

	return db.Update(func(tx *bbolt.Tx) error {
		mb, err := tx.CreateBucketIfNotExists(bucketManifest)
		if err != nil {
			return err
		}
		if err := mb.Put(keyMetric, []byte(metric)); err != nil {
			return err
		}
		if err := mb.Put(keyDimension, []byte(strconv.Itoa(dimension))); err != nil {
			return err
		}
		if err := mb.Put(keySource, []byte(source)); err != nil {
			return err
		}

		rb, err := tx.CreateBucketIfNotExists(bucketRecords)
		if err != nil {
			return err
		}
		for _, rec := range records {
			if len(rec.Embedding) != dimension {
				return fmt.Errorf("record %s: embedding dimension %d, want %d", rec.ChunkID, len(rec.Embedding), dimension)
			}
			data, err := json.Marshal(rec)
			if err != nil {
				return err
			}
			if err := rb.Put([]byte(rec.ChunkID), data); err != nil {
				return err
			}
		}
		return nil
	})
}
