package database

import (
	"context"
	"encoding/json"
	"fmt"

	bolt "go.etcd.io/bbolt"

	"samstream/internal/database"
	"samstream/internal/eval/model"
)

const bucketResults = "eval:results"

type FilterFn func(result model.Result) bool

func New(db *database.DB) *DB {
	return &DB{sDB: db}
}

type DB struct {
	sDB *database.DB
}

// Store persists one evaluation run keyed by its id.
func (db *DB) Store(_ context.Context, result model.Result) error {
	bytes, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("unable to marshal result: %w", err)
	}
	return db.sDB.DB.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(bucketResults))
		if err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
		if err := b.Put([]byte(result.ID.String()), bytes); err != nil {
			return fmt.Errorf("put to bucket error: %w", err)
		}
		return nil
	})
}

// FindAll returns every stored run passing the optional filter.
func (db *DB) FindAll(_ context.Context, filter FilterFn) ([]model.Result, error) {
	var results []model.Result
	err := db.sDB.DB.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketResults))
		if b == nil {
			return nil
		}
		return b.ForEach(func(_, v []byte) error {
			var result model.Result
			if err := json.Unmarshal(v, &result); err != nil {
				return fmt.Errorf("unable to unmarshal result: %w", err)
			}
			if filter == nil || filter(result) {
				results = append(results, result)
			}
			return nil
		})
	})
	return results, err
}

// Count returns the number of stored runs.
func (db *DB) Count(_ context.Context) (int, error) {
	var n int
	err := db.sDB.DB.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketResults))
		if b == nil {
			return nil
		}
		n = b.Stats().KeyN
		return nil
	})
	return n, err
}
