package service

import (
	"context"
	"errors"
	"time"

	"github.com/calebc9298-pixel/fencepost/internal/domain"
	"github.com/calebc9298-pixel/fencepost/internal/repository"
	"github.com/calebc9298-pixel/fencepost/internal/uploader"

	"github.com/charmbracelet/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MediaService runs the upload pipeline for an authenticated farmer and
// records successful uploads for the account's media history.
type MediaService interface {
	Upload(ctx context.Context, userID primitive.ObjectID, src uploader.SourceReference, folder string) (*uploader.Result, error)
	UploadBatch(ctx context.Context, userID primitive.ObjectID, srcs []uploader.SourceReference, folder string) ([]string, error)
	History(ctx context.Context, userID primitive.ObjectID) ([]domain.Upload, error)
}

type mediaService struct {
	uploader   *uploader.Uploader
	uploadRepo repository.UploadRepository
	userRepo   repository.UserRepository
	logger     *log.Logger
}

// NewMediaService creates a new instance of mediaService.
func NewMediaService(up *uploader.Uploader, uploadRepo repository.UploadRepository, userRepo repository.UserRepository, logger *log.Logger) MediaService {
	return &mediaService{
		uploader:   up,
		uploadRepo: uploadRepo,
		userRepo:   userRepo,
		logger:     logger,
	}
}

func (s *mediaService) Upload(ctx context.Context, userID primitive.ObjectID, src uploader.SourceReference, folder string) (*uploader.Result, error) {
	if err := s.checkNotBanned(ctx, userID); err != nil {
		return nil, err
	}

	// The REST fallback mints its bearer token from the caller's identity.
	ctx = ContextWithIdentity(ctx, userID.Hex())

	res, err := s.uploader.UploadWithResult(ctx, src, folder)
	if err != nil {
		return nil, err
	}

	s.record(ctx, userID, folder, res)
	return res, nil
}

func (s *mediaService) UploadBatch(ctx context.Context, userID primitive.ObjectID, srcs []uploader.SourceReference, folder string) ([]string, error) {
	if err := s.checkNotBanned(ctx, userID); err != nil {
		return nil, err
	}
	ctx = ContextWithIdentity(ctx, userID.Hex())
	return s.uploader.UploadBatch(ctx, srcs, folder)
}

func (s *mediaService) History(ctx context.Context, userID primitive.ObjectID) ([]domain.Upload, error) {
	return s.uploadRepo.GetByUserID(ctx, userID)
}

func (s *mediaService) checkNotBanned(ctx context.Context, userID primitive.ObjectID) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if user.Banned && !user.IsAdmin() {
		return ErrUserBanned
	}
	return nil
}

// record persists the upload for the user's media history. A bookkeeping
// failure never fails an upload that already succeeded.
func (s *mediaService) record(ctx context.Context, userID primitive.ObjectID, folder string, res *uploader.Result) {
	_, err := s.uploadRepo.Create(ctx, &domain.Upload{
		UserID:      userID,
		ObjectKey:   res.ObjectPath,
		URL:         res.DownloadURL,
		Folder:      folder,
		ContentType: res.ContentType,
		Size:        res.Size,
		UploadedAt:  time.Now().UTC(),
	})
	if err != nil {
		s.logger.Warn("failed to record upload", "key", res.ObjectPath, "err", err)
	}
}
