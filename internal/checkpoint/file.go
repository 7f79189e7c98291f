package checkpoint

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dbsmedya/ytcomments/internal/logger"
	"github.com/dbsmedya/ytcomments/internal/types"
)

// FileStore keeps a single checkpoint as an indented JSON document.
// A file holding another video or order is reported as absent on Load.
type FileStore struct {
	path   string
	logger *logger.Logger
}

// NewFileStore creates a store at path.
func NewFileStore(path string, log *logger.Logger) *FileStore {
	if log == nil {
		log = logger.NewDefault()
	}
	return &FileStore{path: path, logger: log}
}

// Location returns the file path.
func (f *FileStore) Location() string {
	return f.path
}

func (f *FileStore) read() (*types.TraversalState, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoint %s: %w", f.path, err)
	}

	var st types.TraversalState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, f.path, err)
	}
	return &st, nil
}

// Load returns the stored state if it belongs to videoID and order.
func (f *FileStore) Load(_ context.Context, videoID string, order types.Order) (*types.TraversalState, error) {
	st, err := f.read()
	if err != nil || st == nil {
		return nil, err
	}
	if !st.Matches(videoID, order) {
		f.logger.Debugf("Checkpoint %s belongs to %s/%s, ignoring", f.path, st.VideoID, st.Order)
		return nil, nil
	}
	return st, nil
}

// Save writes the state atomically: a temp file in the same directory is
// synced and renamed over the target.
func (f *FileStore) Save(_ context.Context, state *types.TraversalState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode checkpoint: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp checkpoint: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to sync checkpoint: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close checkpoint: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace checkpoint %s: %w", f.path, err)
	}

	f.logger.Debugf("Checkpoint saved to %s (%d threads processed)", f.path, state.Processed.Len())
	return nil
}

// Clear removes the file when it holds the state for videoID and order.
// A corrupt file is removed as well.
func (f *FileStore) Clear(_ context.Context, videoID string, order types.Order) error {
	st, err := f.read()
	if err != nil && !errors.Is(err, ErrCorrupt) {
		return err
	}
	if err == nil && (st == nil || !st.Matches(videoID, order)) {
		return nil
	}
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove checkpoint %s: %w", f.path, err)
	}
	f.logger.Infof("Removed checkpoint %s", f.path)
	return nil
}
