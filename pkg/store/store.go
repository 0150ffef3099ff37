// Package store provides a persistent registry of fitted PCA models.
//
// Models are kept in a BadgerDB keyspace under a single-byte prefix, one
// JSON value per model, keyed by model ID. The registry lets a fit from
// one CLI invocation be reused by later project/inverse runs without
// shuffling model files around.
//
// Example:
//
//	reg, err := store.Open("/path/to/data")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer reg.Close()
//
//	id, err := reg.Put(m)
//	...
//	m, err := reg.Get(id)
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/orneryd/huginn/pkg/model"
)

// Key prefixes for storage organization.
// Using single-byte prefixes for efficiency.
const (
	prefixModel = byte(0x01) // model:modelID -> JSON(Model)
)

var (
	// ErrModelNotFound indicates no model exists under the given ID.
	ErrModelNotFound = errors.New("model not found")
	// ErrClosed indicates use of a registry after Close.
	ErrClosed = errors.New("registry is closed")
)

// ModelInfo is the metadata returned by List, without the basis payload.
type ModelInfo struct {
	ID            string    `json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	NumComponents int       `json:"n_components"`
	NumFeatures   int       `json:"n_features"`
}

// Registry stores fitted models in BadgerDB.
//
// All operations run inside Badger transactions, so a Registry is safe
// for concurrent use.
type Registry struct {
	db     *badger.DB
	mu     sync.RWMutex
	closed bool
}

// Open opens (creating if needed) a registry at the given directory.
func Open(dir string) (*Registry, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening registry at %s: %w", dir, err)
	}
	return &Registry{db: db}, nil
}

// OpenInMemory opens a registry backed by memory only. Used in tests.
func OpenInMemory() (*Registry, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening in-memory registry: %w", err)
	}
	return &Registry{db: db}, nil
}

// Put stores a model, assigning a fresh ID when the model has none.
// Returns the ID the model is stored under.
func (r *Registry) Put(m *model.Model) (string, error) {
	if err := r.check(); err != nil {
		return "", err
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	value, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("encoding model %s: %w", m.ID, err)
	}
	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(modelKey(m.ID), value)
	})
	if err != nil {
		return "", fmt.Errorf("storing model %s: %w", m.ID, err)
	}
	return m.ID, nil
}

// Get loads the model stored under the given ID.
func (r *Registry) Get(id string) (*model.Model, error) {
	if err := r.check(); err != nil {
		return nil, err
	}
	var m model.Model
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(modelKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &m)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("model %s: %w", id, ErrModelNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading model %s: %w", id, err)
	}
	return &m, nil
}

// List returns metadata for every stored model.
func (r *Registry) List() ([]ModelInfo, error) {
	if err := r.check(); err != nil {
		return nil, err
	}
	var infos []ModelInfo
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte{prefixModel}
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var info ModelInfo
				if err := json.Unmarshal(val, &info); err != nil {
					return err
				}
				infos = append(infos, info)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing models: %w", err)
	}
	return infos, nil
}

// Delete removes the model stored under the given ID.
// Deleting a missing model returns ErrModelNotFound.
func (r *Registry) Delete(id string) error {
	if err := r.check(); err != nil {
		return err
	}
	err := r.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(modelKey(id)); err != nil {
			return err
		}
		return txn.Delete(modelKey(id))
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("model %s: %w", id, ErrModelNotFound)
	}
	if err != nil {
		return fmt.Errorf("deleting model %s: %w", id, err)
	}
	return nil
}

// Close releases the underlying database. Further calls fail with ErrClosed.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	return r.db.Close()
}

func (r *Registry) check() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return ErrClosed
	}
	return nil
}

func modelKey(id string) []byte {
	return append([]byte{prefixModel}, id...)
}
