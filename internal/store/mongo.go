package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/barcode-generator/backend/internal/models"
)

const barcodeCollection = "barcodes"

// MongoStore implements RecordStore on a MongoDB collection.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// mongoBarcode mirrors models.Barcode with a typed ObjectID so the driver
// generates ids; the public model keeps ids as hex strings.
type mongoBarcode struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Format     string             `bson:"format"`
	Text       string             `bson:"text"`
	Options    map[string]any     `bson:"options"`
	MimeType   string             `bson:"mimeType"`
	FilePath   string             `bson:"filePath,omitempty"`
	CreatedBy  string             `bson:"createdBy,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt"`
	UsageCount int64              `bson:"usageCount"`
}

// NewMongoStore connects to MongoDB and verifies the connection.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("pinging mongodb: %w", err)
	}

	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(barcodeCollection),
	}, nil
}

// Insert stores a new record and returns its assigned id.
func (s *MongoStore) Insert(ctx context.Context, rec *models.Barcode) (string, error) {
	doc := mongoBarcode{
		Format:     rec.Format,
		Text:       rec.Text,
		Options:    rec.Options,
		MimeType:   rec.MimeType,
		FilePath:   rec.FilePath,
		CreatedBy:  rec.CreatedBy,
		CreatedAt:  rec.CreatedAt,
		UsageCount: rec.UsageCount,
	}

	res, err := s.coll.InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("inserting barcode record: %w", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}

	rec.ID = oid.Hex()
	return rec.ID, nil
}

// FindByID looks up a record by its hex id.
func (s *MongoStore) FindByID(ctx context.Context, id string) (*models.Barcode, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var doc mongoBarcode
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("finding barcode record: %w", err)
	}

	return doc.toModel(), nil
}

// IncrementUsage bumps the usage counter for a record.
func (s *MongoStore) IncrementUsage(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$inc": bson.M{"usageCount": 1}})
	if err != nil {
		return fmt.Errorf("incrementing usage count: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Ping reports whether the connection is alive.
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (d *mongoBarcode) toModel() *models.Barcode {
	return &models.Barcode{
		ID:         d.ID.Hex(),
		Format:     d.Format,
		Text:       d.Text,
		Options:    d.Options,
		MimeType:   d.MimeType,
		FilePath:   d.FilePath,
		CreatedBy:  d.CreatedBy,
		CreatedAt:  d.CreatedAt,
		UsageCount: d.UsageCount,
	}
}
