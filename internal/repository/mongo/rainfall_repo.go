package mongo

import (
	"context"
	"time"

	"github.com/calebc9298-pixel/fencepost/internal/domain"
	"github.com/calebc9298-pixel/fencepost/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const rainfallCollectionName = "rainfall"

// mongoRainfallRepository keeps one running-total document per
// (user, year, month); Record upserts into it.
type mongoRainfallRepository struct {
	collection *mongo.Collection
}

// NewMongoRainfallRepository creates a new instance of mongoRainfallRepository.
func NewMongoRainfallRepository(db *mongo.Database) repository.RainfallRepository {
	return &mongoRainfallRepository{
		collection: db.Collection(rainfallCollectionName),
	}
}

// Record adds a rainfall amount to the user's total for the month.
func (r *mongoRainfallRepository) Record(ctx context.Context, userID primitive.ObjectID, year, month int, amount float64) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"userId": userID, "year": year, "month": month},
		bson.M{
			"$inc": bson.M{"total": amount},
			"$set": bson.M{"updatedAt": time.Now().UTC()},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

// GetByYear lists the user's monthly totals for one year, January first.
func (r *mongoRainfallRepository) GetByYear(ctx context.Context, userID primitive.ObjectID, year int) ([]domain.RainfallRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "month", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID, "year": year}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []domain.RainfallRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// ClearYear deletes the user's rainfall records for one year.
func (r *mongoRainfallRepository) ClearYear(ctx context.Context, userID primitive.ObjectID, year int) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"userId": userID, "year": year})
	return err
}
