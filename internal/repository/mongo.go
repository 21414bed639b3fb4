package repository

import (
	"context"
	"fmt"
	"time"

	"leasebot/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mongoCollection = "requirement_records"

// MongoRepository stores records as documents keyed by conversation id.
type MongoRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// mongoRecord is the document shape; required fields are stored flat with
// omitempty so unset fields stay absent from the document.
type mongoRecord struct {
	ConversationID string         `bson:"conversation_id"`
	Budget         *string        `bson:"budget,omitempty"`
	TotalSize      *string        `bson:"total_size,omitempty"`
	PropertyType   *string        `bson:"property_type,omitempty"`
	City           *string        `bson:"city,omitempty"`
	Additional     map[string]any `bson:"additional_fields"`
	CreatedAt      time.Time      `bson:"created_at"`
	UpdatedAt      time.Time      `bson:"updated_at"`
}

// NewMongoRepository connects to MongoDB and verifies the connection.
func NewMongoRepository(ctx context.Context, uri, database string) (*MongoRepository, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &MongoRepository{
		client:     client,
		collection: client.Database(database).Collection(mongoCollection),
	}, nil
}

// Save upserts the record document under its conversation id.
func (r *MongoRepository) Save(ctx context.Context, record *model.RequirementRecord) error {
	doc := mongoRecord{
		ConversationID: record.ConversationID,
		Budget:         record.Required[model.FieldBudget],
		TotalSize:      record.Required[model.FieldTotalSize],
		PropertyType:   record.Required[model.FieldPropertyType],
		City:           record.Required[model.FieldCity],
		Additional:     record.Additional,
		CreatedAt:      record.CreatedAt,
		UpdatedAt:      record.UpdatedAt,
	}
	filter := bson.M{"conversation_id": record.ConversationID}
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)
	if _, err := r.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}
	return nil
}

// Load fetches the record, or returns (nil, nil) when absent.
func (r *MongoRepository) Load(ctx context.Context, conversationID string) (*model.RequirementRecord, error) {
	var doc mongoRecord
	err := r.collection.FindOne(ctx, bson.M{"conversation_id": conversationID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load record: %w", err)
	}

	record := model.NewRequirementRecord(doc.ConversationID)
	record.Required[model.FieldBudget] = doc.Budget
	record.Required[model.FieldTotalSize] = doc.TotalSize
	record.Required[model.FieldPropertyType] = doc.PropertyType
	record.Required[model.FieldCity] = doc.City
	if doc.Additional != nil {
		record.Additional = doc.Additional
	}
	normalizeMongoAdditional(record.Additional)
	record.CreatedAt = doc.CreatedAt
	record.UpdatedAt = doc.UpdatedAt
	return record, nil
}

// Close disconnects from MongoDB.
func (r *MongoRepository) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return r.client.Disconnect(ctx)
}

// normalizeMongoAdditional restores int typing for values BSON decodes as
// int32/int64.
func normalizeMongoAdditional(additional map[string]any) {
	for key, value := range additional {
		switch v := value.(type) {
		case int32:
			additional[key] = int(v)
		case int64:
			additional[key] = int(v)
		case float64:
			if v == float64(int(v)) {
				additional[key] = int(v)
			}
		}
	}
}
