package orders

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/craftandcart/storefront/models"
)

// MongoHistoryRepository stores one OrderHistory document per
// customer, keyed by email.
type MongoHistoryRepository struct {
	collection *mongo.Collection
}

func NewMongoHistoryRepository(db *mongo.Database) *MongoHistoryRepository {
	return &MongoHistoryRepository{
		collection: db.Collection("order_histories"),
	}
}

func (r *MongoHistoryRepository) Get(ctx context.Context, email string) (*models.OrderHistory, error) {
	var history models.OrderHistory
	err := r.collection.FindOne(ctx, bson.M{"_id": email}).Decode(&history)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &history, nil
}

func (r *MongoHistoryRepository) Create(ctx context.Context, history *models.OrderHistory) error {
	_, err := r.collection.InsertOne(ctx, history)
	return err
}

// Append pushes the order and bumps the count in one upserting update,
// so concurrent appends for the same customer interleave instead of
// overwriting each other.
func (r *MongoHistoryRepository) Append(ctx context.Context, email string, order models.Order) error {
	now := time.Now().UTC()
	update := bson.M{
		"$push":        bson.M{"orders": order},
		"$inc":         bson.M{"total_orders": 1},
		"$set":         bson.M{"updated_at": now},
		"$setOnInsert": bson.M{"created_at": now},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": email}, update, options.Update().SetUpsert(true))
	return err
}
