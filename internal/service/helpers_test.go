package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/msomdec/praylude/internal/domain"
	"github.com/msomdec/praylude/internal/repository/sqlite"
)

func newTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

var errStorageDown = errors.New("storage unavailable")

// memStorage is an in-memory StorageProvider whose reads and writes can be
// made to fail, either entirely or for a single key.
type memStorage struct {
	mu        sync.Mutex
	data      map[string]map[string]string
	failGet   bool
	failSet   bool
	failKey   string
	setCalled int
}

func newMemStorage() *memStorage {
	return &memStorage{data: make(map[string]map[string]string)}
}

func (m *memStorage) Storage(deviceID string) domain.KeyValueStore {
	return &memKV{m: m, device: deviceID}
}

func (m *memStorage) raw(deviceID, key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[deviceID][key]
	return v, ok
}

type memKV struct {
	m      *memStorage
	device string
}

func (kv *memKV) Get(_ context.Context, key string) (string, error) {
	kv.m.mu.Lock()
	defer kv.m.mu.Unlock()
	if kv.m.failGet {
		return "", errStorageDown
	}
	v, ok := kv.m.data[kv.device][key]
	if !ok {
		return "", domain.ErrNotFound
	}
	return v, nil
}

func (kv *memKV) Set(ctx context.Context, key, value string) error {
	return kv.SetMany(ctx, map[string]string{key: value})
}

func (kv *memKV) SetMany(_ context.Context, entries map[string]string) error {
	kv.m.mu.Lock()
	defer kv.m.mu.Unlock()
	kv.m.setCalled++
	if kv.m.failSet {
		return errStorageDown
	}
	if _, ok := entries[kv.m.failKey]; ok {
		return errStorageDown
	}
	if kv.m.data[kv.device] == nil {
		kv.m.data[kv.device] = make(map[string]string)
	}
	for key, value := range entries {
		kv.m.data[kv.device][key] = value
	}
	return nil
}

func (kv *memKV) Delete(_ context.Context, keys ...string) error {
	kv.m.mu.Lock()
	defer kv.m.mu.Unlock()
	if kv.m.failSet {
		return errStorageDown
	}
	for _, key := range keys {
		delete(kv.m.data[kv.device], key)
	}
	return nil
}
