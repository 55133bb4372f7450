package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationType classifies why a notification was created.
type NotificationType string

const (
	NotifyLike        NotificationType = "like"
	NotifyComment     NotificationType = "comment"
	NotifyReply       NotificationType = "reply"
	NotifyCommentLike NotificationType = "comment_like"
)

// Notification is delivered to a post/comment owner when someone else
// interacts with their content. Senders never notify themselves.
type Notification struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	RecipientID     primitive.ObjectID  `bson:"recipientId" json:"recipientId"`
	SenderID        primitive.ObjectID  `bson:"senderId" json:"senderId"`
	SenderName      string              `bson:"senderName,omitempty" json:"senderName,omitempty"`
	Type            NotificationType    `bson:"type" json:"type"`
	Message         string              `bson:"message" json:"message"`
	PostID          *primitive.ObjectID `bson:"postId,omitempty" json:"postId,omitempty"`
	ParentCommentID *primitive.ObjectID `bson:"parentCommentId,omitempty" json:"parentCommentId,omitempty"`
	Read            bool                `bson:"read" json:"read"`
	Timestamp       time.Time           `bson:"timestamp" json:"timestamp"`
}
