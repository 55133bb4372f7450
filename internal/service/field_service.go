package service

import (
	"context"
	"errors"

	"github.com/calebc9298-pixel/fencepost/internal/domain"
	"github.com/calebc9298-pixel/fencepost/internal/repository"

	"github.com/charmbracelet/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrFieldNotFound     = errors.New("field not found")
	ErrNotFieldOwner     = errors.New("only the field owner can change it")
	ErrFieldNameRequired = errors.New("field name is required")
	ErrInvalidCost       = errors.New("cost must be a positive amount")
)

// FieldYearTotals is one year's input costs: per-field running totals plus
// the sum across all fields.
type FieldYearTotals struct {
	Year   int                `json:"year"`
	Fields []domain.FieldCost `json:"fields"`
	Total  float64            `json:"total"`
}

// --- Service Interface ---

// FieldService manages a farmer's fields and their per-year input-cost ledger.
type FieldService interface {
	AddField(ctx context.Context, userID primitive.ObjectID, name string, acres float64) (*domain.Field, error)
	ListFields(ctx context.Context, userID primitive.ObjectID) ([]domain.Field, error)
	DeleteField(ctx context.Context, userID, fieldID primitive.ObjectID) error

	RecordCost(ctx context.Context, userID, fieldID primitive.ObjectID, year int, amount float64) error
	YearTotals(ctx context.Context, userID primitive.ObjectID, year int) (*FieldYearTotals, error)
	ClearYearCosts(ctx context.Context, userID primitive.ObjectID, year int) error
}

// --- Service Implementation ---

type fieldService struct {
	fieldRepo repository.FieldRepository
	costRepo  repository.FieldCostRepository
	logger    *log.Logger
}

// NewFieldService creates a new instance of fieldService.
func NewFieldService(fieldRepo repository.FieldRepository, costRepo repository.FieldCostRepository, logger *log.Logger) FieldService {
	return &fieldService{
		fieldRepo: fieldRepo,
		costRepo:  costRepo,
		logger:    logger,
	}
}

// AddField registers a new field on the caller's account.
func (s *fieldService) AddField(ctx context.Context, userID primitive.ObjectID, name string, acres float64) (*domain.Field, error) {
	if name == "" {
		return nil, ErrFieldNameRequired
	}
	if acres < 0 {
		return nil, errors.New("acres cannot be negative")
	}

	field := &domain.Field{
		UserID: userID,
		Name:   name,
		Acres:  acres,
	}
	fieldID, err := s.fieldRepo.Create(ctx, field)
	if err != nil {
		return nil, err
	}
	field.ID = fieldID
	return field, nil
}

// ListFields returns the caller's fields.
func (s *fieldService) ListFields(ctx context.Context, userID primitive.ObjectID) ([]domain.Field, error) {
	return s.fieldRepo.GetByUserID(ctx, userID)
}

// DeleteField removes a field and its accumulated cost data. Only the owner
// may delete.
func (s *fieldService) DeleteField(ctx context.Context, userID, fieldID primitive.ObjectID) error {
	field, err := s.requireOwnedField(ctx, userID, fieldID)
	if err != nil {
		return err
	}

	if err := s.fieldRepo.Delete(ctx, field.ID); err != nil {
		return err
	}
	// Cost totals for a removed field are unreachable; best effort cleanup.
	if err := s.costRepo.ClearField(ctx, userID, fieldID); err != nil {
		s.logger.Warn("failed to clear costs of removed field", "fieldId", fieldID.Hex(), "err", err)
	}
	return nil
}

// RecordCost adds an input cost to the field's running total for the year.
func (s *fieldService) RecordCost(ctx context.Context, userID, fieldID primitive.ObjectID, year int, amount float64) error {
	if amount <= 0 {
		return ErrInvalidCost
	}
	if _, err := s.requireOwnedField(ctx, userID, fieldID); err != nil {
		return err
	}
	return s.costRepo.AddCost(ctx, userID, fieldID, year, amount)
}

// YearTotals returns the caller's per-field totals for one year, summed.
func (s *fieldService) YearTotals(ctx context.Context, userID primitive.ObjectID, year int) (*FieldYearTotals, error) {
	costs, err := s.costRepo.GetByYear(ctx, userID, year)
	if err != nil {
		return nil, err
	}

	totals := &FieldYearTotals{Year: year, Fields: costs}
	for _, c := range costs {
		totals.Total += c.TotalCost
	}
	return totals, nil
}

// ClearYearCosts wipes the caller's cost totals for one year across all fields.
func (s *fieldService) ClearYearCosts(ctx context.Context, userID primitive.ObjectID, year int) error {
	return s.costRepo.ClearYear(ctx, userID, year)
}

func (s *fieldService) requireOwnedField(ctx context.Context, userID, fieldID primitive.ObjectID) (*domain.Field, error) {
	field, err := s.fieldRepo.GetByID(ctx, fieldID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrFieldNotFound
		}
		return nil, err
	}
	if field.UserID != userID {
		return nil, ErrNotFieldOwner
	}
	return field, nil
}
