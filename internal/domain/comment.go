package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment is attached to a post; replies carry the parent comment's ID
// (one level deep, matching the comment thread UI).
type Comment struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	PostID          primitive.ObjectID  `bson:"postId" json:"postId"`
	UserID          primitive.ObjectID  `bson:"userId" json:"userId"`
	Username        string              `bson:"username,omitempty" json:"username,omitempty"`
	Text            string              `bson:"text" json:"text"`
	Likes           int64               `bson:"likes" json:"likes"`
	ParentCommentID *primitive.ObjectID `bson:"parentCommentId,omitempty" json:"parentCommentId,omitempty"`
	Timestamp       time.Time           `bson:"timestamp" json:"timestamp"`
}
