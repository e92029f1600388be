// Package store persists named network documents.
//
// A store holds serialized networks together with enough metadata to list
// and inspect them without parsing: format, element counts and a checksum.
// Four backends are provided:
//
//   - [FileStore]: JSON files in a directory, for CLI usage
//   - [RedisStore]: Redis hash of entries, for shared short-lived storage
//   - [MongoStore]: MongoDB collection, for durable multi-user storage
//   - [NullStore]: discards everything, for tests and disabled persistence
//
// All backends key entries by network name. Names are validated by
// [github.com/netweave/netweave/pkg/errors.ValidateNetworkName] before use.
package store

import (
	"context"
	"time"

	"github.com/netweave/netweave/pkg/errors"
	"github.com/netweave/netweave/pkg/network"
)

// Entry is a stored network document with its metadata envelope.
type Entry struct {
	Name      string    `json:"name" bson:"name"`
	Format    string    `json:"format" bson:"format"`
	Data      []byte    `json:"data" bson:"data"`
	Nodes     int       `json:"nodes" bson:"nodes"`
	Edges     int       `json:"edges" bson:"edges"`
	Checksum  string    `json:"checksum" bson:"checksum"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// NewEntry builds an entry for a serialized network. The checksum and
// timestamp are filled in; node and edge counts come from the network.
func NewEntry(name, format string, data []byte, net *network.Network) Entry {
	e := Entry{
		Name:      name,
		Format:    format,
		Data:      data,
		Checksum:  Hash(data),
		UpdatedAt: time.Now().UTC(),
	}
	if net != nil {
		e.Nodes = net.NodeCount()
		e.Edges = net.EdgeCount()
	}
	return e
}

// Store persists network entries by name.
type Store interface {
	// Save stores an entry, overwriting any previous entry with the same name.
	Save(ctx context.Context, entry Entry) error
	// Load retrieves an entry. Returns an error with code NETWORK_NOT_FOUND
	// if no entry exists under the name.
	Load(ctx context.Context, name string) (Entry, error)
	// List returns all stored entries sorted by name. Implementations may
	// omit Data from listed entries; use Load for the document itself.
	List(ctx context.Context) ([]Entry, error)
	// Delete removes an entry. Deleting a missing entry is not an error.
	Delete(ctx context.Context, name string) error
	// Close releases backend resources.
	Close() error
}

// notFound builds the standard missing-network error.
func notFound(name string) error {
	return errors.New(errors.ErrCodeNetworkNotFound, "network %q not found", name)
}
