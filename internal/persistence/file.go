package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rasayana/storefront/internal/domain"
)

func NewFileAdapter(dir string) (*FileAdapter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create state dir: %w", err)
	}
	return &FileAdapter{dir: dir}, nil
}

// FileAdapter keeps one JSON file per owner under a state directory. It is
// the zero-infrastructure backend for local runs, playing the role browser
// localStorage plays for the storefront UI.
type FileAdapter struct {
	dir string
}

func (f FileAdapter) Read(ctx context.Context, ownerID string) (*domain.PersistedState, error) {
	data, err := os.ReadFile(f.path(ownerID))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read state file failed: %w", err)
	}

	var state domain.PersistedState
	if err2 := json.Unmarshal(data, &state); err2 != nil {
		return nil, fmt.Errorf("unmarshal state failed: %w", err2)
	}

	return &state, nil
}

func (f FileAdapter) Write(ctx context.Context, ownerID string, state *domain.PersistedState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal state failed: %w", err)
	}

	// Write to a temp file then rename, so a crash mid-write never leaves a
	// truncated blob behind.
	tmp, err := os.CreateTemp(f.dir, "state-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp state file failed: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write state file failed: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close state file failed: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path(ownerID)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename state file failed: %w", err)
	}
	return nil
}

func (f FileAdapter) Delete(ctx context.Context, ownerID string) error {
	err := os.Remove(f.path(ownerID))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete state file failed: %w", err)
	}
	return nil
}

func (f FileAdapter) path(ownerID string) string {
	return filepath.Join(f.dir, ownerID+".json")
}
