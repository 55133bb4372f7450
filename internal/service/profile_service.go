package service

import (
	"context"
	"errors"
	"strings"

	"github.com/calebc9298-pixel/fencepost/internal/domain"
	"github.com/calebc9298-pixel/fencepost/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrAdminOnly    = errors.New("administrator privileges required")
)

// ProfileUpdate carries the fields a farmer may change on their own profile.
// Nil pointers mean "leave unchanged".
type ProfileUpdate struct {
	Name        *string
	Address     *domain.Address
	AcresFarmed *float64
	PhotoURL    *string
}

// RainfallSummary is one year of rainfall on a farmer's profile: the monthly
// running totals plus the sum for the year.
type RainfallSummary struct {
	Year   int                     `json:"year"`
	Months []domain.RainfallRecord `json:"months"`
	Total  float64                 `json:"total"` // Inches
}

// ProfileService manages farmer profiles, their rainfall records and admin
// moderation actions.
type ProfileService interface {
	Get(ctx context.Context, userID primitive.ObjectID) (*domain.User, error)
	Update(ctx context.Context, userID primitive.ObjectID, update ProfileUpdate) (*domain.User, error)
	SetBanned(ctx context.Context, adminID, targetID primitive.ObjectID, banned bool) error

	RainfallYear(ctx context.Context, userID primitive.ObjectID, year int) (*RainfallSummary, error)
	ClearYearRainfall(ctx context.Context, userID primitive.ObjectID, year int) error
}

type profileService struct {
	userRepo     repository.UserRepository
	rainfallRepo repository.RainfallRepository
}

// NewProfileService creates a new instance of profileService.
func NewProfileService(userRepo repository.UserRepository, rainfallRepo repository.RainfallRepository) ProfileService {
	return &profileService{userRepo: userRepo, rainfallRepo: rainfallRepo}
}

func (s *profileService) Get(ctx context.Context, userID primitive.ObjectID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

func (s *profileService) Update(ctx context.Context, userID primitive.ObjectID, update ProfileUpdate) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if update.Name != nil && *update.Name != "" {
		user.Name = *update.Name
	}
	if update.Address != nil {
		user.Address = *update.Address
		user.Region = regionForState(update.Address.State)
	}
	if update.AcresFarmed != nil {
		user.AcresFarmed = *update.AcresFarmed
	}
	if update.PhotoURL != nil {
		user.PhotoURL = *update.PhotoURL
	}

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *profileService) SetBanned(ctx context.Context, adminID, targetID primitive.ObjectID, banned bool) error {
	admin, err := s.userRepo.GetByID(ctx, adminID)
	if err != nil {
		return err
	}
	if !admin.IsAdmin() {
		return ErrAdminOnly
	}
	err = s.userRepo.SetBanned(ctx, targetID, banned)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}

// RainfallYear returns the caller's rainfall records for one year, summed.
func (s *profileService) RainfallYear(ctx context.Context, userID primitive.ObjectID, year int) (*RainfallSummary, error) {
	records, err := s.rainfallRepo.GetByYear(ctx, userID, year)
	if err != nil {
		return nil, err
	}

	summary := &RainfallSummary{Year: year, Months: records}
	for _, r := range records {
		summary.Total += r.Total
	}
	return summary, nil
}

// ClearYearRainfall wipes the caller's rainfall records for one year.
func (s *profileService) ClearYearRainfall(ctx context.Context, userID primitive.ObjectID, year int) error {
	return s.rainfallRepo.ClearYear(ctx, userID, year)
}

// regionForState maps a US state to the broad farming region used for the
// regional chat room grouping.
func regionForState(state string) string {
	switch strings.ToUpper(strings.TrimSpace(state)) {
	case "IL", "IN", "IA", "KS", "MI", "MN", "MO", "NE", "ND", "OH", "SD", "WI":
		return "Midwest"
	case "CT", "ME", "MA", "NH", "NJ", "NY", "PA", "RI", "VT":
		return "Northeast"
	case "AL", "AR", "DE", "FL", "GA", "KY", "LA", "MD", "MS", "NC", "OK", "SC", "TN", "TX", "VA", "WV":
		return "South"
	case "AK", "AZ", "CA", "CO", "HI", "ID", "MT", "NV", "NM", "OR", "UT", "WA", "WY":
		return "West"
	default:
		return ""
	}
}
