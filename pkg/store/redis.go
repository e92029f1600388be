package store

import (
	"context"
	"encoding/json"
	"slices"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/netweave/netweave/pkg/errors"
)

// RedisStore persists entries in Redis. Each entry is a JSON value under
// <prefix><name>, and an index set under <prefix>__names__ supports listing.
// Round trips are retried with [RetryWithBackoff]; Redis serves over the
// network, so transient connection errors are expected.
type RedisStore struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithTTL sets an expiration on stored entries. Zero means no expiration.
func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) { s.ttl = ttl }
}

// WithPrefix sets the key prefix for entries.
func WithPrefix(prefix string) RedisOption {
	return func(s *RedisStore) { s.prefix = prefix }
}

// NewRedisStore creates a store connecting to the given Redis address.
func NewRedisStore(addr string, opts ...RedisOption) *RedisStore {
	client := backend.NewClient(&backend.Options{Addr: addr})
	return NewRedisStoreFromClient(client, opts...)
}

// NewRedisStoreFromClient creates a store over an existing client.
// The caller keeps ownership of the client's lifecycle if it is shared;
// Close closes the client.
func NewRedisStoreFromClient(client *backend.Client, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		client: client,
		prefix: "netweave:network:",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save stores the entry and registers its name in the index set.
func (s *RedisStore) Save(ctx context.Context, entry Entry) error {
	if err := errors.ValidateNetworkName(entry.Name); err != nil {
		return err
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "encode entry %s", entry.Name)
	}

	return RetryWithBackoff(ctx, func() error {
		pipe := s.client.TxPipeline()
		pipe.Set(ctx, s.key(entry.Name), data, s.ttl)
		pipe.SAdd(ctx, s.indexKey(), entry.Name)
		if _, err := pipe.Exec(ctx); err != nil {
			return Retryable(errors.Wrap(errors.ErrCodeStore, err, "save entry %s", entry.Name))
		}
		return nil
	})
}

// Load retrieves an entry by name.
func (s *RedisStore) Load(ctx context.Context, name string) (Entry, error) {
	if err := errors.ValidateNetworkName(name); err != nil {
		return Entry{}, err
	}
	var entry Entry
	err := RetryWithBackoff(ctx, func() error {
		data, err := s.client.Get(ctx, s.key(name)).Bytes()
		if err == backend.Nil {
			return notFound(name)
		}
		if err != nil {
			return Retryable(errors.Wrap(errors.ErrCodeStore, err, "load entry %s", name))
		}
		if err := json.Unmarshal(data, &entry); err != nil {
			return errors.Wrap(errors.ErrCodeStore, err, "decode entry %s", name)
		}
		return nil
	})
	if err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// List returns all live entries sorted by name. Names whose entries have
// expired are pruned from the index as a side effect.
func (s *RedisStore) List(ctx context.Context) ([]Entry, error) {
	names, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "list entries")
	}
	slices.Sort(names)

	var entries []Entry
	for _, name := range names {
		entry, err := s.Load(ctx, name)
		if errors.Is(err, errors.ErrCodeNetworkNotFound) {
			_ = s.client.SRem(ctx, s.indexKey(), name).Err()
			continue
		}
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Delete removes an entry and its index membership.
func (s *RedisStore) Delete(ctx context.Context, name string) error {
	if err := errors.ValidateNetworkName(name); err != nil {
		return err
	}
	return RetryWithBackoff(ctx, func() error {
		pipe := s.client.TxPipeline()
		pipe.Del(ctx, s.key(name))
		pipe.SRem(ctx, s.indexKey(), name)
		if _, err := pipe.Exec(ctx); err != nil {
			return Retryable(errors.Wrap(errors.ErrCodeStore, err, "delete entry %s", name))
		}
		return nil
	})
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) key(name string) string {
	return s.prefix + name
}

func (s *RedisStore) indexKey() string {
	return s.prefix + "__names__"
}

var _ Store = (*RedisStore)(nil)
