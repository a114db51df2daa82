package repository

import (
	"context"
	"fmt"

	"eta-worker-service/internal/domain/entity"
	"eta-worker-service/internal/domain/repository"
	"eta-worker-service/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoTripRepository implements TripRepository on a MongoDB collection
type MongoTripRepository struct {
	collection *mongo.Collection
	logger     logger.Logger
}

// NewMongoTripRepository creates a new trip repository
func NewMongoTripRepository(db *mongo.Database, collectionName string, logger logger.Logger) repository.TripRepository {
	collection := db.Collection(collectionName)

	// Index the fields the worker filters on
	ctx := context.Background()
	indexModel := mongo.IndexModel{
		Keys: bson.D{
			{Key: "date", Value: 1},
			{Key: "tripType", Value: 1},
		},
	}
	if _, err := collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		logger.Warn("Failed to create trip index", "collection", collectionName, "error", err)
	}

	return &MongoTripRepository{
		collection: collection,
		logger:     logger,
	}
}

// ReadAll reads every trip. Documents that fail to decode are skipped.
func (r *MongoTripRepository) ReadAll(ctx context.Context) (map[string]*entity.Trip, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetProjection(bson.M{
		"tripType":     1,
		"status":       1,
		"date":         1,
		"time":         1,
		"pickup":       1,
		"flightNumber": 1,
		"ETA":          1,
	}))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query trips: %v", entity.ErrStoreUnavailable, err)
	}
	defer cursor.Close(ctx)

	result := make(map[string]*entity.Trip)
	for cursor.Next(ctx) {
		var trip entity.Trip
		if err := cursor.Decode(&trip); err != nil {
			r.logger.Warn("Skipping undecodable trip", "id", cursor.Current.Lookup("_id").String(), "error", err)
			continue
		}
		result[trip.TripID] = &trip
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to read trips: %v", entity.ErrStoreUnavailable, err)
	}

	return result, nil
}

// PatchETA replaces the ETA sub-document of one trip
func (r *MongoTripRepository) PatchETA(ctx context.Context, tripID string, eta entity.ETA) error {
	result, err := r.collection.UpdateOne(
		ctx,
		idFilter(tripID),
		bson.M{"$set": bson.M{
			"ETA": eta,
		}},
	)
	if err != nil {
		return fmt.Errorf("%w: failed to update ETA: %v", entity.ErrStoreUnavailable, err)
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", entity.ErrTripNotFound, tripID)
	}

	return nil
}

// idFilter matches string ids and, for hex ids, ObjectIDs decoded as hex on read
func idFilter(tripID string) bson.M {
	if oid, err := primitive.ObjectIDFromHex(tripID); err == nil {
		return bson.M{"_id": bson.M{"$in": bson.A{tripID, oid}}}
	}
	return bson.M{"_id": tripID}
}
