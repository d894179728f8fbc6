package repository

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/noah-isme/section-portal-api/internal/models"
)

// Document is one named JSON collection, stored as a single file per scope.
// Every mutation in the system runs read-entire-document, mutate in memory,
// write-entire-document; Update wraps that cycle in the per-(kind, scope)
// critical section.
type Document[T any] struct {
	store    *Store
	kind     string
	filename string
	defaults func() T
}

func newDocument[T any](store *Store, kind string, defaults func() T) *Document[T] {
	return &Document[T]{store: store, kind: kind, filename: fileNames[kind], defaults: defaults}
}

// Load reads the document for one scope. A missing file yields the default
// and persists it; an empty or malformed file yields the default without
// failing the caller (the decode error is only logged).
func (d *Document[T]) Load(scope models.Scope) (T, error) {
	path := d.path(scope)
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			value := d.defaults()
			if saveErr := d.Save(scope, value); saveErr != nil {
				return value, saveErr
			}
			return value, nil
		}
		var zero T
		return zero, fmt.Errorf("read %s %s: %w", d.kind, scope.Key(), err)
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return d.defaults(), nil
	}

	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		d.store.logger.Warn("corrupt collection document, using default",
			zap.String("kind", d.kind),
			zap.String("scope", scope.Key()),
			zap.Error(err))
		return d.defaults(), nil
	}
	return value, nil
}

// Save overwrites the whole document, creating scope directories as needed.
func (d *Document[T]) Save(scope models.Scope, value T) error {
	path := d.path(scope)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("prepare scope %s: %w", scope.Key(), err)
	}
	raw, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s %s: %w", d.kind, scope.Key(), err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write %s %s: %w", d.kind, scope.Key(), err)
	}
	return nil
}

// Update runs a load-mutate-save cycle under the document's scope lock.
// The mutation result is persisted only when fn returns nil.
func (d *Document[T]) Update(scope models.Scope, fn func(*T) error) (T, error) {
	lock := d.store.lock(d.kind, scope)
	lock.Lock()
	defer lock.Unlock()

	value, err := d.Load(scope)
	if err != nil {
		var zero T
		return zero, err
	}
	if err := fn(&value); err != nil {
		var zero T
		return zero, err
	}
	if err := d.Save(scope, value); err != nil {
		var zero T
		return zero, err
	}
	return value, nil
}

// View runs fn against a loaded document under the same lock as Update,
// without writing anything back.
func (d *Document[T]) View(scope models.Scope, fn func(T) error) error {
	lock := d.store.lock(d.kind, scope)
	lock.Lock()
	defer lock.Unlock()

	value, err := d.Load(scope)
	if err != nil {
		return err
	}
	return fn(value)
}

func (d *Document[T]) path(scope models.Scope) string {
	return filepath.Join(d.store.scopeDir(scope), d.filename)
}
