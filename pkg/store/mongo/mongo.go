// Package mongo implements a MongoDB-backed spec store for multi-instance
// deployments.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/chartflow/chartflow/pkg/errors"
	"github.com/chartflow/chartflow/pkg/observability"
	"github.com/chartflow/chartflow/pkg/spec"
	"github.com/chartflow/chartflow/pkg/store"
)

// Config holds MongoDB connection settings.
type Config struct {
	// URI is the connection string, e.g. "mongodb://localhost:27017".
	URI string

	// Database defaults to "chartflow".
	Database string

	// Collection defaults to "specs".
	Collection string

	// ConnectTimeout defaults to 10 seconds.
	ConnectTimeout time.Duration
}

// specDoc is the stored document shape.
type specDoc struct {
	Name      string    `bson:"_id"`
	Spec      []byte    `bson:"spec"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// Store is a MongoDB-backed spec store.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewStore connects to MongoDB and returns a spec store.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.URI == "" {
		return nil, errors.New(errors.ErrCodeStoreUnavailable, "mongo URI is required")
	}
	if cfg.Database == "" {
		cfg.Database = "chartflow"
	}
	if cfg.Collection == "" {
		cfg.Collection = "specs"
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "connect to %s", cfg.URI)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "ping %s", cfg.URI)
	}

	return &Store{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

// Get returns the named spec.
func (s *Store) Get(ctx context.Context, name string) (*spec.Spec, error) {
	if err := errors.ValidateSpecName(name); err != nil {
		return nil, err
	}

	var doc specDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": name}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		observability.Store().OnGet(name, false)
		return nil, errors.New(errors.ErrCodeSpecNotFound, "no spec named %q", name)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "find spec %q", name)
	}

	observability.Store().OnGet(name, true)
	return store.Unmarshal(doc.Spec)
}

// Set writes the named spec, replacing any previous version.
func (s *Store) Set(ctx context.Context, name string, sp *spec.Spec) error {
	if err := errors.ValidateSpecName(name); err != nil {
		return err
	}
	data, err := store.Marshal(sp)
	if err != nil {
		return err
	}

	doc := specDoc{Name: name, Spec: data, UpdatedAt: time.Now().UTC()}
	_, err = s.coll.ReplaceOne(ctx, bson.M{"_id": name}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Wrap(errors.ErrCodeStoreUnavailable, err, "upsert spec %q", name)
	}

	observability.Store().OnSet(name)
	return nil
}

// List returns stored spec names in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	cursor, err := s.coll.Find(ctx, bson.M{},
		options.Find().SetProjection(bson.M{"_id": 1}).SetSort(bson.M{"_id": 1}))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "list specs")
	}
	defer cursor.Close(ctx)

	var names []string
	for cursor.Next(ctx) {
		var doc struct {
			Name string `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode spec name: %w", err)
		}
		names = append(names, doc.Name)
	}
	if err := cursor.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "iterate specs")
	}
	return names, nil
}

// Delete removes the named spec. Deleting a missing spec is not an error.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := errors.ValidateSpecName(name); err != nil {
		return err
	}
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": name}); err != nil {
		return errors.Wrap(errors.ErrCodeStoreUnavailable, err, "delete spec %q", name)
	}

	observability.Store().OnDelete(name)
	return nil
}

// Close disconnects from MongoDB.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// Ensure Store implements store.Store.
var _ store.Store = (*Store)(nil)
