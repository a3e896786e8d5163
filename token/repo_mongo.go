package token

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/centralhq/shopify-relay/internal/apperrors"
)

// MongoRepo is a MongoDB-backed implementation of the Repo interface.
type MongoRepo struct {
	tokens *mongo.Collection
}

var _ Repo = (*MongoRepo)(nil)

func NewMongoRepo(db *mongo.Database) *MongoRepo {
	return &MongoRepo{tokens: db.Collection("oauth_tokens")}
}

// Get selects the most recently issued record for the pair, ordering by
// access-token expiry descending.
func (r *MongoRepo) Get(ctx context.Context, userID, clientID string) (*Record, error) {
	filter := bson.M{"user_id": userID, "client_id": clientID}
	opts := options.FindOne().SetSort(bson.D{{Key: "access_token_expires_at", Value: -1}})

	var record Record
	err := r.tokens.FindOne(ctx, filter, opts).Decode(&record)
	if err == mongo.ErrNoDocuments {
		return nil, apperrors.ErrNoToken
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *MongoRepo) Upsert(ctx context.Context, record *Record) error {
	_, err := r.tokens.InsertOne(ctx, record)
	return err
}
