package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/netweave/netweave/pkg/errors"
)

// FileStore persists entries as JSON files in a directory, one file per
// network. Suitable for CLI usage where networks live alongside the user's
// other files.
type FileStore struct {
	dir string
}

// NewFileStore creates a file-based store in the given directory.
// The directory will be created if it doesn't exist.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "create store directory %s", dir)
	}
	return &FileStore{dir: dir}, nil
}

// Save writes the entry to <dir>/<name>.json.
func (s *FileStore) Save(ctx context.Context, entry Entry) error {
	if err := errors.ValidateNetworkName(entry.Name); err != nil {
		return err
	}
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "encode entry %s", entry.Name)
	}
	if err := os.WriteFile(s.path(entry.Name), data, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "write entry %s", entry.Name)
	}
	return nil
}

// Load reads an entry back from disk.
func (s *FileStore) Load(ctx context.Context, name string) (Entry, error) {
	if err := errors.ValidateNetworkName(name); err != nil {
		return Entry{}, err
	}
	data, err := os.ReadFile(s.path(name))
	if os.IsNotExist(err) {
		return Entry{}, notFound(name)
	}
	if err != nil {
		return Entry{}, errors.Wrap(errors.ErrCodeStore, err, "read entry %s", name)
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return Entry{}, errors.Wrap(errors.ErrCodeStore, err, "decode entry %s", name)
	}
	return entry, nil
}

// List returns all entries in the directory sorted by name.
func (s *FileStore) List(ctx context.Context) ([]Entry, error) {
	files, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "read store directory")
	}

	var entries []Entry
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}
		name := strings.TrimSuffix(f.Name(), ".json")
		entry, err := s.Load(ctx, name)
		if err != nil {
			// Skip files that are not valid entries.
			continue
		}
		entries = append(entries, entry)
	}
	slices.SortFunc(entries, func(a, b Entry) int {
		return strings.Compare(a.Name, b.Name)
	})
	return entries, nil
}

// Delete removes the entry file. Missing entries are not an error.
func (s *FileStore) Delete(ctx context.Context, name string) error {
	if err := errors.ValidateNetworkName(name); err != nil {
		return err
	}
	err := os.Remove(s.path(name))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "delete entry %s", name)
	}
	return nil
}

// Close does nothing for the file store.
func (s *FileStore) Close() error { return nil }

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

var _ Store = (*FileStore)(nil)
