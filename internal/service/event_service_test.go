package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sciportal/sciportal-api/internal/models"
	appErrors "github.com/sciportal/sciportal-api/pkg/errors"
)

type mockEventRepo struct {
	list         func(ctx context.Context) ([]models.Event, error)
	existsByCode func(ctx context.Context, code string) (bool, error)
	create       func(ctx context.Context, event *models.Event) error
}

func (m *mockEventRepo) List(ctx context.Context) ([]models.Event, error) {
	return m.list(ctx)
}

func (m *mockEventRepo) ExistsByCode(ctx context.Context, code string) (bool, error) {
	return m.existsByCode(ctx, code)
}

func (m *mockEventRepo) Create(ctx context.Context, event *models.Event) error {
	return m.create(ctx, event)
}

func TestCreateEvent(t *testing.T) {
	repo := &mockEventRepo{
		existsByCode: func(ctx context.Context, code string) (bool, error) { return false, nil },
		create: func(ctx context.Context, event *models.Event) error {
			event.ID = 5
			return nil
		},
	}
	svc := NewEventService(repo, nil, nil, nil)

	event, err := svc.Create(context.Background(), CreateEventRequest{Code: "sict-2024", Name: "Science and Technology Week 2024"})
	require.NoError(t, err)
	assert.Equal(t, int64(5), event.ID)
	assert.Equal(t, "sict-2024", event.Code)
}

func TestCreateEventMissingCode(t *testing.T) {
	svc := NewEventService(&mockEventRepo{}, nil, nil, nil)

	_, err := svc.Create(context.Background(), CreateEventRequest{Name: "Science Week"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCreateEventCodeTaken(t *testing.T) {
	repo := &mockEventRepo{
		existsByCode: func(ctx context.Context, code string) (bool, error) { return true, nil },
	}
	svc := NewEventService(repo, nil, nil, nil)

	_, err := svc.Create(context.Background(), CreateEventRequest{Code: "sict-2024", Name: "Science Week"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Equal(t, "event code already registered", appErr.Message)
}

func TestListEvents(t *testing.T) {
	repo := &mockEventRepo{
		list: func(ctx context.Context) ([]models.Event, error) {
			return []models.Event{{ID: 1, Code: "sict-2024", Name: "Science Week"}}, nil
		},
	}
	svc := NewEventService(repo, nil, nil, nil)

	events, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "sict-2024", events[0].Code)
}
