package store

import "context"

// NullStore discards everything. Useful for tests or when persistence is
// disabled.
type NullStore struct{}

// NewNullStore creates a null store.
func NewNullStore() *NullStore { return &NullStore{} }

// Save does nothing.
func (*NullStore) Save(ctx context.Context, entry Entry) error { return nil }

// Load always reports the entry as missing.
func (*NullStore) Load(ctx context.Context, name string) (Entry, error) {
	return Entry{}, notFound(name)
}

// List always returns no entries.
func (*NullStore) List(ctx context.Context) ([]Entry, error) { return nil, nil }

// Delete does nothing.
func (*NullStore) Delete(ctx context.Context, name string) error { return nil }

// Close does nothing.
func (*NullStore) Close() error { return nil }

var _ Store = (*NullStore)(nil)
