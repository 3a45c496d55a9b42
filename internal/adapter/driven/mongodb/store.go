// Package mongodb implements the credential store on a MongoDB collection.
package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/ericfisherdev/loginpanel/internal/domain/model"
	"github.com/ericfisherdev/loginpanel/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.CredentialStore = (*Store)(nil)

// Config locates the users collection.
type Config struct {
	URI        string
	Database   string
	Collection string
}

// collection is the subset of collection behaviour the store needs.
type collection interface {
	Exists(ctx context.Context, filter bson.D) (bool, error)
	Insert(ctx context.Context, cred model.Credential) error
	Count(ctx context.Context) (int64, error)
	EnsureUniqueIndex(ctx context.Context, field string) error
}

// Store verifies and registers credentials as {username, password} documents.
type Store struct {
	coll   collection
	client *mongo.Client
}

// Connect dials MongoDB, pings the primary and returns a Store over the
// configured collection.
func Connect(ctx context.Context, cfg Config) (*Store, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	coll := client.Database(cfg.Database).Collection(cfg.Collection)
	return &Store{coll: &driverCollection{coll: coll}, client: client}, nil
}

func newStore(coll collection) *Store {
	return &Store{coll: coll}
}

// EnsureIndexes creates a unique index on username so two concurrent
// registrations of the same name cannot both be inserted.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	if err := s.coll.EnsureUniqueIndex(ctx, "username"); err != nil {
		return fmt.Errorf("ensure username index: %w", err)
	}
	return nil
}

// Verify reports whether a document matches both username and password.
func (s *Store) Verify(ctx context.Context, username, password string) (bool, error) {
	found, err := s.coll.Exists(ctx, bson.D{
		{Key: "username", Value: username},
		{Key: "password", Value: password},
	})
	if err != nil {
		return false, fmt.Errorf("verify user %q: %w", username, err)
	}
	return found, nil
}

// Register rejects a taken username with ErrDuplicateUsername, otherwise
// inserts the credential. The password is not considered for the duplicate test.
func (s *Store) Register(ctx context.Context, cred model.Credential) error {
	taken, err := s.coll.Exists(ctx, bson.D{{Key: "username", Value: cred.Username}})
	if err != nil {
		return fmt.Errorf("lookup user %q: %w", cred.Username, err)
	}
	if taken {
		return fmt.Errorf("register user %q: %w", cred.Username, driven.ErrDuplicateUsername)
	}

	if err := s.coll.Insert(ctx, cred); err != nil {
		return fmt.Errorf("register user %q: %w", cred.Username, insertError(err))
	}
	return nil
}

// insertError maps a unique-index violation, which happens when another
// registration for the same username lands between the lookup and the
// insert, to ErrDuplicateUsername.
func insertError(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return driven.ErrDuplicateUsername
	}
	return err
}

// Count returns the number of documents in the collection.
func (s *Store) Count(ctx context.Context) (int, error) {
	n, err := s.coll.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return int(n), nil
}

// Close disconnects the underlying client. It is a no-op for stores not
// created by Connect.
func (s *Store) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnect mongodb: %w", err)
	}
	return nil
}

// driverCollection adapts *mongo.Collection to collection.
type driverCollection struct {
	coll *mongo.Collection
}

func (c *driverCollection) Exists(ctx context.Context, filter bson.D) (bool, error) {
	err := c.coll.FindOne(ctx, filter).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (c *driverCollection) Insert(ctx context.Context, cred model.Credential) error {
	_, err := c.coll.InsertOne(ctx, cred)
	return err
}

func (c *driverCollection) Count(ctx context.Context) (int64, error) {
	return c.coll.CountDocuments(ctx, bson.D{})
}

func (c *driverCollection) EnsureUniqueIndex(ctx context.Context, field string) error {
	_, err := c.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: field, Value: 1}},
		Options: options.Index().SetUnique(true).SetName(field + "_unique"),
	})
	return err
}
