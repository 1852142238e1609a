package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/webimoveis/internal/listing/domain"
	"github.com/Abdurahmanit/webimoveis/internal/platform/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const DefaultListingCollection = "imoveis"

type ListingRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
	now        func() time.Time
}

func NewListingRepository(db *mongo.Database, collection string, log *logger.Logger) *ListingRepository {
	if collection == "" {
		collection = DefaultListingCollection
	}
	return &ListingRepository{
		collection: db.Collection(collection),
		logger:     log,
		now:        time.Now,
	}
}

// EnsureIndexes creates the indexes backing the home, dashboard and city queries.
func (r *ListingRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: domain.FieldCreated, Value: -1}}},
		{Keys: bson.D{{Key: domain.FieldUID, Value: 1}, {Key: domain.FieldCreated, Value: -1}}},
		{Keys: bson.D{{Key: domain.FieldCity, Value: 1}}},
		{Keys: bson.D{{Key: domain.FieldPrice, Value: 1}}},
	})
	if err != nil {
		r.logger.Error("ListingRepository.EnsureIndexes: failed to create indexes", "error", err.Error())
		return fmt.Errorf("create listing indexes: %w", err)
	}
	return nil
}

func (r *ListingRepository) Find(ctx context.Context, q domain.Query) (domain.Snapshot, error) {
	filter, opts, err := buildFilter(q)
	if err != nil {
		return domain.Snapshot{}, err
	}

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("ListingRepository.Find: query failed", "query", q.String(), "error", err.Error())
		return domain.Snapshot{}, err
	}
	defer cursor.Close(ctx)

	var docs []domain.Document
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return domain.Snapshot{}, fmt.Errorf("decode listing: %w", err)
		}
		docs = append(docs, toDocument(raw))
	}
	if err := cursor.Err(); err != nil {
		return domain.Snapshot{}, err
	}
	return domain.Snapshot{Docs: docs}, nil
}

func (r *ListingRepository) Get(ctx context.Context, id string) (*domain.Document, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	var raw bson.M
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&raw)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("ListingRepository.Get: failed to find listing", "listing_id", id, "error", err.Error())
		return nil, err
	}
	doc := toDocument(raw)
	return &doc, nil
}

// Add inserts the listing and writes the assigned ID and Created back.
func (r *ListingRepository) Add(ctx context.Context, listing *domain.Listing) error {
	doc, err := toListingDocument(listing)
	if err != nil {
		return err
	}
	doc.ID = primitive.NewObjectID()
	// Mongo keeps millisecond precision.
	doc.Created = r.now().UTC().Truncate(time.Millisecond)

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		r.logger.Error("ListingRepository.Add: failed to insert listing", "uid", listing.UID, "error", err.Error())
		return err
	}
	listing.ID = doc.ID.Hex()
	listing.Created = doc.Created
	return nil
}

// Delete is idempotent: removing a missing listing is not an error.
func (r *ListingRepository) Delete(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrNotFound
	}
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		r.logger.Error("ListingRepository.Delete: failed to delete listing", "listing_id", id, "error", err.Error())
		return err
	}
	if res.DeletedCount == 0 {
		r.logger.Warn("ListingRepository.Delete: listing was already gone", "listing_id", id)
	}
	return nil
}

var _ domain.ListingRepository = (*ListingRepository)(nil)

// Connect opens a client and verifies it with a ping.
func Connect(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}
