package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sciportal/sciportal-api/internal/models"
	"github.com/sciportal/sciportal-api/internal/repository"
	appErrors "github.com/sciportal/sciportal-api/pkg/errors"
)

type eventRepository interface {
	List(ctx context.Context) ([]models.Event, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	Create(ctx context.Context, event *models.Event) error
}

// CreateEventRequest describes the payload for registering an occasion.
type CreateEventRequest struct {
	Code string `json:"code" validate:"required"`
	Name string `json:"name" validate:"required"`
}

// EventService manages the event reference data.
type EventService struct {
	repo      eventRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEventService creates a new event service instance.
func NewEventService(repo eventRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *EventService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns every registered event.
func (s *EventService) List(ctx context.Context) ([]models.Event, error) {
	var cached []models.Event
	if s.cache.Get(ctx, CacheKeyEvents, &cached) {
		return cached, nil
	}

	events, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list events")
	}

	s.cache.Set(ctx, CacheKeyEvents, events)
	return events, nil
}

// Create registers an event; duplicate short codes surface as a conflict
// whether caught by the pre-check or by the unique constraint.
func (s *EventService) Create(ctx context.Context, req CreateEventRequest) (*models.Event, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid event payload")
	}

	taken, err := s.repo.ExistsByCode(ctx, req.Code)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check event code")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, "event code already registered")
	}

	event := &models.Event{Code: req.Code, Name: req.Name}
	if err := s.repo.Create(ctx, event); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "event code already registered")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create event")
	}

	s.cache.Invalidate(ctx, CacheKeyEvents)
	return event, nil
}
