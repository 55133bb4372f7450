package repository

import (
	"context"

	"github.com/calebc9298-pixel/fencepost/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	UpdateProfile(ctx context.Context, user *domain.User) error
	SetBanned(ctx context.Context, id primitive.ObjectID, banned bool) error
}

// PostRepository defines the interface for interacting with feed posts.
type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Post, error)
	GetFeed(ctx context.Context, room domain.ChatRoom, limit int64) ([]domain.Post, error)
	IncrementLikes(ctx context.Context, id primitive.ObjectID, delta int64) error
	IncrementCommentCount(ctx context.Context, id primitive.ObjectID, delta int64) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// CommentRepository defines the interface for interacting with comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Comment, error)
	GetByPostID(ctx context.Context, postID primitive.ObjectID) ([]domain.Comment, error)
	IncrementLikes(ctx context.Context, id primitive.ObjectID, delta int64) error
	DeleteByPostID(ctx context.Context, postID primitive.ObjectID) error
}

// InteractionsRepository tracks per-user liked posts/comments.
type InteractionsRepository interface {
	Get(ctx context.Context, userID primitive.ObjectID) (*domain.Interactions, error)
	AddLikedPost(ctx context.Context, userID, postID primitive.ObjectID) error
	RemoveLikedPost(ctx context.Context, userID, postID primitive.ObjectID) error
	AddLikedComment(ctx context.Context, userID, commentID primitive.ObjectID) error
}

// FieldRepository defines the interface for interacting with a farmer's fields.
type FieldRepository interface {
	Create(ctx context.Context, field *domain.Field) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Field, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Field, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// FieldCostRepository accumulates per-field input costs by year.
type FieldCostRepository interface {
	AddCost(ctx context.Context, userID, fieldID primitive.ObjectID, year int, amount float64) error
	GetByYear(ctx context.Context, userID primitive.ObjectID, year int) ([]domain.FieldCost, error)
	ClearYear(ctx context.Context, userID primitive.ObjectID, year int) error
	ClearField(ctx context.Context, userID, fieldID primitive.ObjectID) error
}

// RainfallRepository accumulates monthly rainfall totals per user.
type RainfallRepository interface {
	Record(ctx context.Context, userID primitive.ObjectID, year, month int, amount float64) error
	GetByYear(ctx context.Context, userID primitive.ObjectID, year int) ([]domain.RainfallRecord, error)
	ClearYear(ctx context.Context, userID primitive.ObjectID, year int) error
}

// NotificationRepository defines the interface for interacting with notifications.
type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) (primitive.ObjectID, error)
	GetByRecipient(ctx context.Context, recipientID primitive.ObjectID, limit int64) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id, recipientID primitive.ObjectID) error
	MarkAllRead(ctx context.Context, recipientID primitive.ObjectID) error
	CountUnread(ctx context.Context, recipientID primitive.ObjectID) (int64, error)
}

// UploadRepository defines the interface for interacting with upload records.
type UploadRepository interface {
	Create(ctx context.Context, upload *domain.Upload) (primitive.ObjectID, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Upload, error)
}
