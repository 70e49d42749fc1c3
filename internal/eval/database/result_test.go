package database

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	bolt "go.etcd.io/bbolt"

	"samstream/internal/database"
	"samstream/internal/eval/model"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	dir, err := ioutil.TempDir("", "samstream-eval")
	if err != nil {
		t.Fatalf("unable to create temp dir: %v", err)
	}
	bdb, err := bolt.Open(filepath.Join(dir, "eval.db"), 0600, nil)
	if err != nil {
		t.Fatalf("unable to open test database: %v", err)
	}
	t.Cleanup(func() {
		bdb.Close()
		os.RemoveAll(dir)
	})
	return New(&database.DB{DB: bdb})
}

func TestStoreAndFindAll(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	first := model.NewResult("sea", "samknn", time.Now())
	first.Steps = 1000
	first.Correct = 900
	first.Accuracy = 0.9
	second := model.NewResult("sea", "ensemble", time.Now())
	second.Steps = 1000
	second.Correct = 950
	second.Accuracy = 0.95

	if err := db.Store(ctx, first); err != nil {
		t.Fatalf("unable to store result: %v", err)
	}
	if err := db.Store(ctx, second); err != nil {
		t.Fatalf("unable to store result: %v", err)
	}

	all, err := db.FindAll(ctx, nil)
	if err != nil {
		t.Fatalf("unable to fetch results: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 results, got %d", len(all))
	}

	ensembleOnly, err := db.FindAll(ctx, func(r model.Result) bool { return r.Learner == "ensemble" })
	if err != nil {
		t.Fatalf("unable to fetch filtered results: %v", err)
	}
	if len(ensembleOnly) != 1 || ensembleOnly[0].Accuracy != 0.95 {
		t.Errorf("unexpected filtered results: %+v", ensembleOnly)
	}

	n, err := db.Count(ctx)
	if err != nil || n != 2 {
		t.Errorf("count got %d (err %v), expected 2", n, err)
	}
}

func TestFindAllEmpty(t *testing.T) {
	db := newTestDB(t)
	all, err := db.FindAll(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("expected no results, got %d", len(all))
	}
}
