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

const fieldCostCollectionName = "fieldCosts"

// mongoFieldCostRepository keeps one running-total document per
// (user, field, year); AddCost upserts into it.
type mongoFieldCostRepository struct {
	collection *mongo.Collection
}

// NewMongoFieldCostRepository creates a new instance of mongoFieldCostRepository.
func NewMongoFieldCostRepository(db *mongo.Database) repository.FieldCostRepository {
	return &mongoFieldCostRepository{
		collection: db.Collection(fieldCostCollectionName),
	}
}

// AddCost adds an amount to the field's total for the year. The filter's
// equality fields seed the document on first insert.
func (r *mongoFieldCostRepository) AddCost(ctx context.Context, userID, fieldID primitive.ObjectID, year int, amount float64) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"userId": userID, "fieldId": fieldID, "year": year},
		bson.M{
			"$inc": bson.M{"totalCost": amount},
			"$set": bson.M{"updatedAt": time.Now().UTC()},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

// GetByYear lists the per-field totals a farmer has recorded for one year.
func (r *mongoFieldCostRepository) GetByYear(ctx context.Context, userID primitive.ObjectID, year int) ([]domain.FieldCost, error) {
	opts := options.Find().SetSort(bson.D{{Key: "fieldId", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID, "year": year}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var costs []domain.FieldCost
	if err := cursor.All(ctx, &costs); err != nil {
		return nil, err
	}
	return costs, nil
}

// ClearYear deletes the farmer's cost totals for one year across all fields.
func (r *mongoFieldCostRepository) ClearYear(ctx context.Context, userID primitive.ObjectID, year int) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"userId": userID, "year": year})
	return err
}

// ClearField deletes every year's totals for one field, for use when the
// field itself is removed.
func (r *mongoFieldCostRepository) ClearField(ctx context.Context, userID, fieldID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"userId": userID, "fieldId": fieldID})
	return err
}
