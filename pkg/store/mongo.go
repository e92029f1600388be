package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/netweave/netweave/pkg/errors"
)

// MongoStore persists entries in a MongoDB collection, one document per
// network, keyed by name. Round trips are retried with [RetryWithBackoff]
// since transient network failures are expected against a remote database.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection

	// ownsClient controls whether Close disconnects the client.
	ownsClient bool
}

// NewMongoStore connects to MongoDB and uses the given database and
// collection. A unique index on the name field is created on first use.
func NewMongoStore(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "connect to mongodb")
	}
	s := newMongoStore(client, database, collection)
	s.ownsClient = true

	if err := s.ensureIndex(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

// NewMongoStoreFromClient wraps an existing client. Close will not
// disconnect it.
func NewMongoStoreFromClient(client *mongo.Client, database, collection string) *MongoStore {
	return newMongoStore(client, database, collection)
}

func newMongoStore(client *mongo.Client, database, collection string) *MongoStore {
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}
}

func (s *MongoStore) ensureIndex(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "create name index")
	}
	return nil
}

// Save upserts the entry by name.
func (s *MongoStore) Save(ctx context.Context, entry Entry) error {
	if err := errors.ValidateNetworkName(entry.Name); err != nil {
		return err
	}
	return RetryWithBackoff(ctx, func() error {
		_, err := s.coll.ReplaceOne(ctx,
			bson.D{{Key: "name", Value: entry.Name}},
			entry,
			options.Replace().SetUpsert(true),
		)
		if err != nil {
			return Retryable(errors.Wrap(errors.ErrCodeStore, err, "save entry %s", entry.Name))
		}
		return nil
	})
}

// Load retrieves an entry by name.
func (s *MongoStore) Load(ctx context.Context, name string) (Entry, error) {
	if err := errors.ValidateNetworkName(name); err != nil {
		return Entry{}, err
	}
	var entry Entry
	err := RetryWithBackoff(ctx, func() error {
		err := s.coll.FindOne(ctx, bson.D{{Key: "name", Value: name}}).Decode(&entry)
		if err == mongo.ErrNoDocuments {
			return notFound(name)
		}
		if err != nil {
			return Retryable(errors.Wrap(errors.ErrCodeStore, err, "load entry %s", name))
		}
		return nil
	})
	if err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// List returns all entries sorted by name, without their document data.
func (s *MongoStore) List(ctx context.Context) ([]Entry, error) {
	cursor, err := s.coll.Find(ctx, bson.D{},
		options.Find().
			SetSort(bson.D{{Key: "name", Value: 1}}).
			SetProjection(bson.D{{Key: "data", Value: 0}}),
	)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "list entries")
	}
	defer cursor.Close(ctx)

	var entries []Entry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "decode entries")
	}
	return entries, nil
}

// Delete removes an entry. Missing entries are not an error.
func (s *MongoStore) Delete(ctx context.Context, name string) error {
	if err := errors.ValidateNetworkName(name); err != nil {
		return err
	}
	return RetryWithBackoff(ctx, func() error {
		_, err := s.coll.DeleteOne(ctx, bson.D{{Key: "name", Value: name}})
		if err != nil {
			return Retryable(errors.Wrap(errors.ErrCodeStore, err, "delete entry %s", name))
		}
		return nil
	})
}

// Close disconnects the client when this store created it.
func (s *MongoStore) Close() error {
	if !s.ownsClient {
		return nil
	}
	return s.client.Disconnect(context.Background())
}

var _ Store = (*MongoStore)(nil)
