package service

import (
	"context"
	"errors"

	"github.com/calebc9298-pixel/fencepost/internal/domain"
	"github.com/calebc9298-pixel/fencepost/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrNotificationNotFound = errors.New("notification not found")

// Inbox page size; older notifications simply age out of the list.
const notificationLimit = 100

// NotificationService exposes a user's notification inbox.
type NotificationService interface {
	List(ctx context.Context, recipientID primitive.ObjectID) ([]domain.Notification, error)
	MarkRead(ctx context.Context, recipientID, notificationID primitive.ObjectID) error
	MarkAllRead(ctx context.Context, recipientID primitive.ObjectID) error
	UnreadCount(ctx context.Context, recipientID primitive.ObjectID) (int64, error)
}

type notificationService struct {
	notificationRepo repository.NotificationRepository
}

// NewNotificationService creates a new instance of notificationService.
func NewNotificationService(notificationRepo repository.NotificationRepository) NotificationService {
	return &notificationService{notificationRepo: notificationRepo}
}

func (s *notificationService) List(ctx context.Context, recipientID primitive.ObjectID) ([]domain.Notification, error) {
	return s.notificationRepo.GetByRecipient(ctx, recipientID, notificationLimit)
}

func (s *notificationService) MarkRead(ctx context.Context, recipientID, notificationID primitive.ObjectID) error {
	err := s.notificationRepo.MarkRead(ctx, notificationID, recipientID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotificationNotFound
	}
	return err
}

func (s *notificationService) MarkAllRead(ctx context.Context, recipientID primitive.ObjectID) error {
	return s.notificationRepo.MarkAllRead(ctx, recipientID)
}

func (s *notificationService) UnreadCount(ctx context.Context, recipientID primitive.ObjectID) (int64, error) {
	return s.notificationRepo.CountUnread(ctx, recipientID)
}
