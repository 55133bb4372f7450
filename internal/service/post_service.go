package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/calebc9298-pixel/fencepost/internal/domain"
	"github.com/calebc9298-pixel/fencepost/internal/repository"

	"github.com/charmbracelet/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrPostNotFound    = errors.New("post not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrUserBanned      = errors.New("your account is banned and cannot post or comment")
	ErrNotPostOwner    = errors.New("only the post owner or an admin can delete a post")
	ErrInvalidRoom     = errors.New("unknown chat room")
	ErrEmptyPost       = errors.New("post text cannot be empty")
	ErrInvalidRainfall = errors.New("rainfall must be zero or a positive amount")
)

// Feed page size; the client shows at most this many posts per room.
const feedLimit = 200

// RainGaugeInput is a rainfall reading to record and share.
type RainGaugeInput struct {
	Rainfall    float64 // Inches
	Notes       string
	PostToState bool // Also post to the statewide room
}

// --- Service Interface ---
type PostService interface {
	CreatePost(ctx context.Context, userID primitive.ObjectID, post *domain.Post) (*domain.Post, error)
	CreateRainGauge(ctx context.Context, userID primitive.ObjectID, input RainGaugeInput) ([]domain.Post, error)
	GetFeed(ctx context.Context, room domain.ChatRoom) ([]domain.Post, error)
	DeletePost(ctx context.Context, userID, postID primitive.ObjectID) error
	ToggleLikePost(ctx context.Context, userID, postID primitive.ObjectID) (liked bool, err error)

	AddComment(ctx context.Context, userID, postID primitive.ObjectID, text string, parentCommentID *primitive.ObjectID) (*domain.Comment, error)
	GetComments(ctx context.Context, postID primitive.ObjectID) ([]domain.Comment, error)
	LikeComment(ctx context.Context, userID, commentID primitive.ObjectID) error
}

// --- Service Implementation ---

type postService struct {
	postRepo         repository.PostRepository
	commentRepo      repository.CommentRepository
	interactionsRepo repository.InteractionsRepository
	notificationRepo repository.NotificationRepository
	userRepo         repository.UserRepository
	rainfallRepo     repository.RainfallRepository
	logger           *log.Logger
}

// NewPostService creates a new instance of postService.
func NewPostService(
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	interactionsRepo repository.InteractionsRepository,
	notificationRepo repository.NotificationRepository,
	userRepo repository.UserRepository,
	rainfallRepo repository.RainfallRepository,
	logger *log.Logger,
) PostService {
	return &postService{
		postRepo:         postRepo,
		commentRepo:      commentRepo,
		interactionsRepo: interactionsRepo,
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		rainfallRepo:     rainfallRepo,
		logger:           logger,
	}
}

// requireActiveUser loads the user and rejects banned accounts (admins are
// exempt so moderation remains possible).
func (s *postService) requireActiveUser(ctx context.Context, userID primitive.ObjectID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Banned && !user.IsAdmin() {
		return nil, ErrUserBanned
	}
	return user, nil
}

// CreatePost validates and stores a new feed post on behalf of userID.
func (s *postService) CreatePost(ctx context.Context, userID primitive.ObjectID, post *domain.Post) (*domain.Post, error) {
	user, err := s.requireActiveUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if post.Text == "" && len(post.MediaURLs) == 0 {
		return nil, ErrEmptyPost
	}
	switch post.ChatRoom {
	case domain.RoomRegional, domain.RoomStatewide, domain.RoomNational:
	default:
		return nil, ErrInvalidRoom
	}
	if post.Type == "" {
		post.Type = domain.PostSimple
	}
	if post.Type == domain.PostFencePost && post.FencePost == nil {
		return nil, errors.New("fencepost posts require activity details")
	}
	if post.Type == domain.PostRainGauge {
		// Rain gauge readings also update the profile's rainfall ledger,
		// so they go through CreateRainGauge.
		return nil, errors.New("rain gauge readings are posted through the rain gauge flow")
	}

	post.UserID = userID
	post.Username = user.Name
	post.Likes = 0
	post.CommentCount = 0

	postID, err := s.postRepo.Create(ctx, post)
	if err != nil {
		return nil, err
	}
	post.ID = postID
	return post, nil
}

// CreateRainGauge records a rainfall reading on the caller's profile ledger
// and posts it to the national room, duplicating it to the statewide room
// when requested. Returns the created posts.
func (s *postService) CreateRainGauge(ctx context.Context, userID primitive.ObjectID, input RainGaugeInput) ([]domain.Post, error) {
	user, err := s.requireActiveUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if input.Rainfall < 0 || math.IsNaN(input.Rainfall) || math.IsInf(input.Rainfall, 0) {
		return nil, ErrInvalidRainfall
	}

	now := time.Now().UTC()
	// The monthly ledger total feeds the profile views; a bookkeeping failure
	// does not block sharing the reading.
	if err := s.rainfallRepo.Record(ctx, userID, now.Year(), int(now.Month()), input.Rainfall); err != nil {
		s.logger.Warn("failed to record rainfall", "userId", userID.Hex(), "err", err)
	}

	details := domain.RainGaugeDetails{
		Rainfall: input.Rainfall,
		Notes:    strings.TrimSpace(input.Notes),
		Date:     now,
		City:     user.Address.City,
		State:    user.Address.State,
	}

	rooms := []domain.ChatRoom{domain.RoomNational}
	if input.PostToState && user.Address.State != "" {
		rooms = append(rooms, domain.RoomStatewide)
	}

	created := make([]domain.Post, 0, len(rooms))
	for _, room := range rooms {
		d := details
		post := &domain.Post{
			UserID:    userID,
			Username:  user.Name,
			Type:      domain.PostRainGauge,
			ChatRoom:  room,
			RainGauge: &d,
		}
		postID, err := s.postRepo.Create(ctx, post)
		if err != nil {
			return created, err
		}
		post.ID = postID
		created = append(created, *post)
	}
	return created, nil
}

// GetFeed returns the newest posts in a room.
func (s *postService) GetFeed(ctx context.Context, room domain.ChatRoom) ([]domain.Post, error) {
	switch room {
	case domain.RoomRegional, domain.RoomStatewide, domain.RoomNational:
	default:
		return nil, ErrInvalidRoom
	}
	return s.postRepo.GetFeed(ctx, room, feedLimit)
}

// DeletePost removes a post and its comments. Only the owner or an admin may delete.
func (s *postService) DeletePost(ctx context.Context, userID, postID primitive.ObjectID) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPostNotFound
		}
		return err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if post.UserID != userID && !user.IsAdmin() {
		return ErrNotPostOwner
	}

	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return err
	}
	// Orphaned comments are useless; best effort cleanup.
	if err := s.commentRepo.DeleteByPostID(ctx, postID); err != nil {
		s.logger.Warn("failed to delete comments of removed post", "postId", postID.Hex(), "err", err)
	}
	return nil
}

// ToggleLikePost likes or unlikes a post for userID and reports the new state.
func (s *postService) ToggleLikePost(ctx context.Context, userID, postID primitive.ObjectID) (bool, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, ErrPostNotFound
		}
		return false, err
	}

	interactions, err := s.interactionsRepo.Get(ctx, userID)
	if err != nil {
		return false, err
	}

	alreadyLiked := false
	for _, id := range interactions.LikedPosts {
		if id == postID {
			alreadyLiked = true
			break
		}
	}

	if alreadyLiked {
		if err := s.interactionsRepo.RemoveLikedPost(ctx, userID, postID); err != nil {
			return true, err
		}
		if err := s.postRepo.IncrementLikes(ctx, postID, -1); err != nil {
			return true, err
		}
		return false, nil
	}

	if err := s.interactionsRepo.AddLikedPost(ctx, userID, postID); err != nil {
		return false, err
	}
	if err := s.postRepo.IncrementLikes(ctx, postID, 1); err != nil {
		return false, err
	}

	s.notify(ctx, &domain.Notification{
		RecipientID: post.UserID,
		SenderID:    userID,
		Type:        domain.NotifyLike,
		Message:     "liked your post",
		PostID:      &postID,
	})
	return true, nil
}

// AddComment stores a comment (or a reply when parentCommentID is set),
// bumps the post's comment counter and notifies the relevant owner.
func (s *postService) AddComment(ctx context.Context, userID, postID primitive.ObjectID, text string, parentCommentID *primitive.ObjectID) (*domain.Comment, error) {
	user, err := s.requireActiveUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, errors.New("comment text cannot be empty")
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	comment := &domain.Comment{
		PostID:          postID,
		UserID:          userID,
		Username:        user.Name,
		Text:            text,
		ParentCommentID: parentCommentID,
	}

	commentID, err := s.commentRepo.Create(ctx, comment)
	if err != nil {
		return nil, err
	}
	comment.ID = commentID

	if err := s.postRepo.IncrementCommentCount(ctx, postID, 1); err != nil {
		s.logger.Warn("failed to bump comment count", "postId", postID.Hex(), "err", err)
	}

	// Replies notify the parent comment's author; top-level comments notify
	// the post owner.
	if parentCommentID != nil {
		parent, err := s.commentRepo.GetByID(ctx, *parentCommentID)
		if err == nil {
			s.notify(ctx, &domain.Notification{
				RecipientID:     parent.UserID,
				SenderID:        userID,
				SenderName:      user.Name,
				Type:            domain.NotifyReply,
				Message:         fmt.Sprintf("%s replied to your comment", user.Name),
				PostID:          &postID,
				ParentCommentID: parentCommentID,
			})
		}
	} else {
		s.notify(ctx, &domain.Notification{
			RecipientID: post.UserID,
			SenderID:    userID,
			SenderName:  user.Name,
			Type:        domain.NotifyComment,
			Message:     fmt.Sprintf("%s commented on your post", user.Name),
			PostID:      &postID,
		})
	}

	return comment, nil
}

// GetComments lists a post's comments oldest-first.
func (s *postService) GetComments(ctx context.Context, postID primitive.ObjectID) ([]domain.Comment, error) {
	return s.commentRepo.GetByPostID(ctx, postID)
}

// LikeComment records a like on a comment (idempotent per user).
func (s *postService) LikeComment(ctx context.Context, userID, commentID primitive.ObjectID) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCommentNotFound
		}
		return err
	}

	interactions, err := s.interactionsRepo.Get(ctx, userID)
	if err != nil {
		return err
	}
	for _, id := range interactions.LikedComments {
		if id == commentID {
			return nil // already liked
		}
	}

	if err := s.interactionsRepo.AddLikedComment(ctx, userID, commentID); err != nil {
		return err
	}
	if err := s.commentRepo.IncrementLikes(ctx, commentID, 1); err != nil {
		return err
	}

	s.notify(ctx, &domain.Notification{
		RecipientID: comment.UserID,
		SenderID:    userID,
		Type:        domain.NotifyCommentLike,
		Message:     "liked your comment",
		PostID:      &comment.PostID,
	})
	return nil
}

// notify creates a notification unless the sender is also the recipient.
// Notification failures never fail the interaction that produced them.
func (s *postService) notify(ctx context.Context, n *domain.Notification) {
	if n.RecipientID == n.SenderID || n.RecipientID == primitive.NilObjectID {
		return
	}
	if _, err := s.notificationRepo.Create(ctx, n); err != nil {
		s.logger.Warn("failed to create notification", "type", n.Type, "err", err)
	}
}
