package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/calebc9298-pixel/fencepost/internal/domain"
	"github.com/calebc9298-pixel/fencepost/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const fieldCollectionName = "fields"

// mongoFieldRepository implements the repository.FieldRepository interface using MongoDB.
type mongoFieldRepository struct {
	collection *mongo.Collection
}

// NewMongoFieldRepository creates a new instance of mongoFieldRepository.
func NewMongoFieldRepository(db *mongo.Database) repository.FieldRepository {
	return &mongoFieldRepository{
		collection: db.Collection(fieldCollectionName),
	}
}

// Create stores a new field for a farmer.
func (r *mongoFieldRepository) Create(ctx context.Context, field *domain.Field) (primitive.ObjectID, error) {
	if field.UserID == primitive.NilObjectID || field.Name == "" {
		return primitive.NilObjectID, errors.New("field user ID and name are required")
	}

	field.ID = primitive.NewObjectID()
	if field.CreatedAt.IsZero() {
		field.CreatedAt = time.Now().UTC()
	}

	result, err := r.collection.InsertOne(ctx, field)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByID fetches a single field.
func (r *mongoFieldRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Field, error) {
	var field domain.Field
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&field)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &field, nil
}

// GetByUserID lists a farmer's fields in creation order.
func (r *mongoFieldRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Field, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var fields []domain.Field
	if err := cursor.All(ctx, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// Delete removes a field.
func (r *mongoFieldRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
