package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/akshayg147/metadata-inventory-service/internal/domain"
	"github.com/akshayg147/metadata-inventory-service/internal/platform/logger"
	"github.com/akshayg147/metadata-inventory-service/internal/platform/retry"
)

// CollectionName is the single collection the service operates on.
const CollectionName = "metadata"

// MongoStore implements Store against a MongoDB collection.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	log    logger.Logger
}

// recordDoc mirrors domain.Record with a proper BSON ObjectID for _id,
// since the domain type carries the store-facing ID as a plain string.
type recordDoc struct {
	ID         bson.ObjectID     `bson:"_id,omitempty"`
	URL        string            `bson:"url"`
	Status     domain.Status     `bson:"status"`
	Headers    map[string]string `bson:"headers"`
	Cookies    map[string]string `bson:"cookies"`
	PageSource string            `bson:"page_source"`
	StatusCode int               `bson:"status_code"`
	Error      string            `bson:"error,omitempty"`
	CreatedAt  time.Time         `bson:"created_at"`
	UpdatedAt  time.Time         `bson:"updated_at"`
}

func (d recordDoc) toRecord() *domain.Record {
	return &domain.Record{
		ID:           d.ID.Hex(),
		CanonicalURL: d.URL,
		Status:       d.Status,
		Headers:      d.Headers,
		Cookies:      d.Cookies,
		PageSource:   d.PageSource,
		StatusCode:   d.StatusCode,
		Error:        d.Error,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// Connect dials MongoDB with the startup backoff (base 1s, factor 2, up
// to 5 attempts) and returns a MongoStore bound to dbName's "metadata"
// collection.
func Connect(ctx context.Context, uri, dbName string, log logger.Logger) (*MongoStore, error) {
	var client *mongo.Client

	err := retry.Do(ctx, retry.DefaultConfig(), func() error {
		c, connectErr := mongo.Connect(options.Client().ApplyURI(uri))
		if connectErr != nil {
			return connectErr
		}

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		if pingErr := c.Ping(pingCtx, readpref.Primary()); pingErr != nil {
			_ = c.Disconnect(ctx)
			return pingErr
		}

		client = c
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}

	log.Info("connected to mongo", logger.String("db", dbName))

	return &MongoStore{
		client: client,
		coll:   client.Database(dbName).Collection(CollectionName),
		log:    log,
	}, nil
}

// EnsureIndexes creates the unique index on url and secondary index on
// status, idempotently -- "already exists" is not an error.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "url", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}},
		},
	})
	if err != nil {
		return fail("ensure_indexes", err)
	}
	return nil
}

// Close disconnects the underlying client.
func (s *MongoStore) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		return fail("close", err)
	}
	return nil
}

// FindByURL returns the record for canonicalURL or ErrNotFound.
func (s *MongoStore) FindByURL(ctx context.Context, canonicalURL string) (*domain.Record, error) {
	var doc recordDoc

	err := s.coll.FindOne(ctx, bson.D{{Key: "url", Value: canonicalURL}}).Decode(&doc)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return nil, ErrNotFound
	case err != nil:
		return nil, fail("find_by_url", err)
	}

	return doc.toRecord(), nil
}

// Upsert atomically sets fields plus status: completed and updated_at,
// and created_at only on insert. A duplicate-key error from a racing
// concurrent insert is retried exactly once by re-issuing the same
// conditional write, which now finds the just-inserted document and
// updates it in place.
func (s *MongoStore) Upsert(ctx context.Context, canonicalURL string, fields domain.Fields) (string, error) {
	now := time.Now().UTC()
	filter := bson.D{{Key: "url", Value: canonicalURL}}
	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "status", Value: domain.StatusCompleted},
			{Key: "headers", Value: fields.Headers},
			{Key: "cookies", Value: fields.Cookies},
			{Key: "page_source", Value: fields.PageSource},
			{Key: "status_code", Value: fields.StatusCode},
			{Key: "updated_at", Value: now},
		}},
		{Key: "$setOnInsert", Value: bson.D{
			{Key: "url", Value: canonicalURL},
			{Key: "created_at", Value: now},
		}},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc recordDoc
	err := s.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err != nil && mongo.IsDuplicateKeyError(err) {
		err = s.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	}
	if err != nil {
		return "", fail("upsert", err)
	}

	return doc.ID.Hex(), nil
}

// MarkPending conditionally inserts a pending record (none->pending) or
// flips an existing failed record to pending (failed->pending). The
// filter's status $nin excludes completed and pending documents; when
// such a document already exists, the upsert attempt collides with the
// unique index on url and the resulting duplicate-key error is treated
// as "already scheduled" -- this is the single round trip that serves as
// the cross-replica single-flight primitive.
func (s *MongoStore) MarkPending(ctx context.Context, canonicalURL string) (bool, error) {
	now := time.Now().UTC()
	filter := bson.D{
		{Key: "url", Value: canonicalURL},
		{Key: "status", Value: bson.D{{Key: "$nin", Value: bson.A{domain.StatusCompleted, domain.StatusPending}}}},
	}
	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "status", Value: domain.StatusPending},
			{Key: "updated_at", Value: now},
		}},
		{Key: "$setOnInsert", Value: bson.D{
			{Key: "url", Value: canonicalURL},
			{Key: "created_at", Value: now},
		}},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc recordDoc
	err := s.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	switch {
	case err == nil:
		return true, nil
	case mongo.IsDuplicateKeyError(err):
		return false, nil
	default:
		return false, fail("mark_pending", err)
	}
}

// MarkFailed unconditionally sets status: failed and error: reason. A
// no-op if no record exists -- workers never create records this way.
func (s *MongoStore) MarkFailed(ctx context.Context, canonicalURL string, reason string) error {
	filter := bson.D{{Key: "url", Value: canonicalURL}}
	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "status", Value: domain.StatusFailed},
			{Key: "error", Value: reason},
			{Key: "updated_at", Value: time.Now().UTC()},
		}},
	}

	if _, err := s.coll.UpdateOne(ctx, filter, update); err != nil {
		return fail("mark_failed", err)
	}
	return nil
}
