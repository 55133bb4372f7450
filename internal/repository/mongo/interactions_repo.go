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

const interactionsCollectionName = "userInteractions"

// mongoInteractionsRepository stores one document per user keyed by the
// user's ID, holding the sets of liked posts and comments.
type mongoInteractionsRepository struct {
	collection *mongo.Collection
}

// NewMongoInteractionsRepository creates a new instance of mongoInteractionsRepository.
func NewMongoInteractionsRepository(db *mongo.Database) repository.InteractionsRepository {
	return &mongoInteractionsRepository{
		collection: db.Collection(interactionsCollectionName),
	}
}

// Get fetches the user's interactions document, returning an empty one when
// the user has never liked anything.
func (r *mongoInteractionsRepository) Get(ctx context.Context, userID primitive.ObjectID) (*domain.Interactions, error) {
	var interactions domain.Interactions
	err := r.collection.FindOne(ctx, bson.M{"_id": userID}).Decode(&interactions)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return &domain.Interactions{UserID: userID}, nil
		}
		return nil, err
	}
	return &interactions, nil
}

// AddLikedPost records a post like; $addToSet keeps likes idempotent.
func (r *mongoInteractionsRepository) AddLikedPost(ctx context.Context, userID, postID primitive.ObjectID) error {
	return r.upsert(ctx, userID, bson.M{"$addToSet": bson.M{"likedPosts": postID}})
}

// RemoveLikedPost clears a post like.
func (r *mongoInteractionsRepository) RemoveLikedPost(ctx context.Context, userID, postID primitive.ObjectID) error {
	return r.upsert(ctx, userID, bson.M{"$pull": bson.M{"likedPosts": postID}})
}

// AddLikedComment records a comment like.
func (r *mongoInteractionsRepository) AddLikedComment(ctx context.Context, userID, commentID primitive.ObjectID) error {
	return r.upsert(ctx, userID, bson.M{"$addToSet": bson.M{"likedComments": commentID}})
}

func (r *mongoInteractionsRepository) upsert(ctx context.Context, userID primitive.ObjectID, update bson.M) error {
	update["$set"] = bson.M{"updatedAt": time.Now().UTC()}
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": userID},
		update,
		options.Update().SetUpsert(true),
	)
	return err
}
