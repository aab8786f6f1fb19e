// Package store persists the catalog, collection, deck and battle
// configurations as whole JSON files in a data directory.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// File names inside the data directory.
const (
	CardsFile        = "cards.json"
	CollectionFile   = "playerCollection.json"
	DeckFile         = "playerDeck.json"
	BattleConfigFile = "battleConfig.json"
)

// jsonFile reads and replaces one JSON document. Every read goes back to disk
// so hand edits to the data directory are picked up without a restart.
type jsonFile[T any] struct {
	mu     sync.RWMutex
	path   string
	logger *zap.Logger
}

func newJSONFile[T any](dir, name string, logger *zap.Logger) *jsonFile[T] {
	return &jsonFile[T]{
		path:   filepath.Join(dir, name),
		logger: logger.With(zap.String("file", name)),
	}
}

func (f *jsonFile[T]) read() (T, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.readLocked()
}

// readLocked returns the zero value when the file does not exist yet.
func (f *jsonFile[T]) readLocked() (T, error) {
	var v T
	b, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return v, nil
		}
		return v, fmt.Errorf("read %s: %w", f.path, err)
	}
	if len(b) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(b, &v); err != nil {
		return v, fmt.Errorf("decode %s: %w", f.path, err)
	}
	return v, nil
}

func (f *jsonFile[T]) writeLocked(v T) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", f.path, err)
	}
	if err := os.WriteFile(f.path, b, 0o644); err != nil {
		f.logger.Error("write failed", zap.Error(err))
		return fmt.Errorf("write %s: %w", f.path, err)
	}
	f.logger.Debug("file written", zap.Int("bytes", len(b)))
	return nil
}

// update applies fn to the current document and writes the result back.
// The in-memory result is returned even when the write fails.
func (f *jsonFile[T]) update(fn func(T) (T, error)) (T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, err := f.readLocked()
	if err != nil {
		return cur, err
	}
	next, err := fn(cur)
	if err != nil {
		return cur, err
	}
	return next, f.writeLocked(next)
}

func (f *jsonFile[T]) replace(v T) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writeLocked(v)
}
