package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Interactions tracks which posts/comments a user has liked, one document
// per user, so likes are idempotent per account.
type Interactions struct {
	UserID        primitive.ObjectID   `bson:"_id" json:"userId"`
	LikedPosts    []primitive.ObjectID `bson:"likedPosts,omitempty" json:"likedPosts,omitempty"`
	LikedComments []primitive.ObjectID `bson:"likedComments,omitempty" json:"likedComments,omitempty"`
	UpdatedAt     time.Time            `bson:"updatedAt" json:"updatedAt"`
}
