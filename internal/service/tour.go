package service

import (
	"context"
	"errors"

	"github.com/deppfellow/natours/internal/errs"
	"github.com/deppfellow/natours/internal/model"
	"github.com/deppfellow/natours/internal/repository"
	"github.com/deppfellow/natours/internal/validation"
)

// TourStore is the persistence the tour service needs.
// *repository.TourRepository implements it.
type TourStore interface {
	Insert(ctx context.Context, tour *model.Tour) error
	Find(ctx context.Context, opts ...repository.ReadOption) ([]model.Tour, error)
	FindByID(ctx context.Context, id string, opts ...repository.ReadOption) (*model.Tour, error)
	Update(ctx context.Context, id string, patch *model.TourPatch, opts ...repository.ReadOption) (*model.Tour, error)
	Delete(ctx context.Context, id string, opts ...repository.ReadOption) error
}

type TourService struct {
	store TourStore
}

func NewTourService(store TourStore) *TourService {
	return &TourService{store: store}
}

// Create validates and stores a new tour.
func (s *TourService) Create(ctx context.Context, tour *model.Tour) (*model.Tour, error) {
	if err := model.TourSchema.Prepare(tour, validation.OpCreate); err != nil {
		return nil, err
	}

	if err := s.store.Insert(ctx, tour); err != nil {
		return nil, err
	}

	tour.ComputeDurationWeeks()
	return tour, nil
}

func (s *TourService) List(ctx context.Context) ([]model.Tour, error) {
	return s.store.Find(ctx)
}

func (s *TourService) Get(ctx context.Context, id string) (*model.Tour, error) {
	tour, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, tourNotFound(err)
	}
	return tour, nil
}

// Update validates the fields present in patch and applies them.
// The price/discount ordering is not re-checked on updates.
func (s *TourService) Update(ctx context.Context, id string, patch *model.TourPatch) (*model.Tour, error) {
	if err := model.TourPatchSchema.Prepare(patch, validation.OpUpdate); err != nil {
		return nil, err
	}

	tour, err := s.store.Update(ctx, id, patch)
	if err != nil {
		return nil, tourNotFound(err)
	}
	return tour, nil
}

func (s *TourService) Delete(ctx context.Context, id string) error {
	return tourNotFound(s.store.Delete(ctx, id))
}

func tourNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return errs.NewNotFoundError("tour")
	}
	return err
}
