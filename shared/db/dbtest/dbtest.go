// Package dbtest holds behaviour checks that every db.Database engine must pass.
package dbtest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/dfryer1193/keta/shared/db"
)

// Factory returns a connected database. Cleanup is the caller's job via t.Cleanup.
type Factory func(t *testing.T) db.Database

// RunDatabaseTests runs the engine conformance checks against databases built by newDB.
func RunDatabaseTests(t *testing.T, newDB Factory) {
	t.Run("GetMissing", func(t *testing.T) { testGetMissing(t, newDB(t)) })
	t.Run("PutGet", func(t *testing.T) { testPutGet(t, newDB(t)) })
	t.Run("PutOverwrites", func(t *testing.T) { testPutOverwrites(t, newDB(t)) })
	t.Run("ForEachKeyOrder", func(t *testing.T) { testForEachKeyOrder(t, newDB(t)) })
	t.Run("ForEachStop", func(t *testing.T) { testForEachStop(t, newDB(t)) })
	t.Run("ForEachCallbackError", func(t *testing.T) { testForEachCallbackError(t, newDB(t)) })
	t.Run("ValueIsCopied", func(t *testing.T) { testValueIsCopied(t, newDB(t)) })
	t.Run("ConcurrentPuts", func(t *testing.T) { testConcurrentPuts(t, newDB(t)) })
}

func testGetMissing(t *testing.T, database db.Database) {
	value, err := database.Get(context.Background(), []byte("missing"))
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if value != nil {
		t.Errorf("Get() = %q, want nil", value)
	}
}

func testPutGet(t *testing.T, database db.Database) {
	ctx := context.Background()
	if err := database.Put(ctx, []byte("img1"), []byte(`{"id":"img1"}`)); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	value, err := database.Get(ctx, []byte("img1"))
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !bytes.Equal(value, []byte(`{"id":"img1"}`)) {
		t.Errorf("Get() = %q, want %q", value, `{"id":"img1"}`)
	}
}

func testPutOverwrites(t *testing.T, database db.Database) {
	ctx := context.Background()
	if err := database.Put(ctx, []byte("k"), []byte("first-and-longer")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := database.Put(ctx, []byte("k"), []byte("second")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	value, err := database.Get(ctx, []byte("k"))
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(value) != "second" {
		t.Errorf("Get() = %q, want %q", value, "second")
	}
}

func testForEachKeyOrder(t *testing.T, database db.Database) {
	ctx := context.Background()
	for _, key := range []string{"c", "a", "b", "aa"} {
		if err := database.Put(ctx, []byte(key), []byte("v-"+key)); err != nil {
			t.Fatalf("Put(%q) error = %v", key, err)
		}
	}

	var keys []string
	err := database.ForEach(ctx, func(key, value []byte) error {
		if string(value) != "v-"+string(key) {
			t.Errorf("value for %q = %q", key, value)
		}
		keys = append(keys, string(key))
		return nil
	})
	if err != nil {
		t.Fatalf("ForEach() error = %v", err)
	}

	want := []string{"a", "aa", "b", "c"}
	if fmt.Sprint(keys) != fmt.Sprint(want) {
		t.Errorf("ForEach() keys = %v, want %v", keys, want)
	}
}

func testForEachStop(t *testing.T, database db.Database) {
	ctx := context.Background()
	for _, key := range []string{"a", "b", "c"} {
		if err := database.Put(ctx, []byte(key), []byte("v")); err != nil {
			t.Fatalf("Put(%q) error = %v", key, err)
		}
	}

	visited := 0
	err := database.ForEach(ctx, func(key, value []byte) error {
		visited++
		if visited == 2 {
			return db.ErrStopIteration
		}
		return nil
	})
	if err != nil {
		t.Fatalf("ForEach() error = %v, want nil", err)
	}
	if visited != 2 {
		t.Errorf("visited = %d, want 2", visited)
	}
}

func testForEachCallbackError(t *testing.T, database db.Database) {
	ctx := context.Background()
	if err := database.Put(ctx, []byte("a"), []byte("v")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	errBoom := errors.New("boom")
	err := database.ForEach(ctx, func(key, value []byte) error {
		return errBoom
	})
	if !errors.Is(err, errBoom) {
		t.Errorf("ForEach() error = %v, want %v", err, errBoom)
	}
	if errors.Is(err, db.ErrStoreIO) {
		t.Errorf("callback error must not be reported as a store i/o error: %v", err)
	}
}

func testValueIsCopied(t *testing.T, database db.Database) {
	ctx := context.Background()
	input := []byte("original")
	if err := database.Put(ctx, []byte("k"), input); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	copy(input, "mutated!")

	value, err := database.Get(ctx, []byte("k"))
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(value) != "original" {
		t.Errorf("Get() = %q, want %q", value, "original")
	}
}

func testConcurrentPuts(t *testing.T, database db.Database) {
	ctx := context.Background()
	const writers = 8

	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%02d", i)
			if err := database.Put(ctx, []byte(key), []byte(key)); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent Put() error = %v", err)
	}

	count := 0
	if err := database.ForEach(ctx, func(key, value []byte) error {
		count++
		return nil
	}); err != nil {
		t.Fatalf("ForEach() error = %v", err)
	}
	if count != writers {
		t.Errorf("entries = %d, want %d", count, writers)
	}
}
