package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sciportal/sciportal-api/internal/models"
)

// EventRepository manages persistence for academic occasions.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository creates a new instance of EventRepository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// List returns all events ordered by code.
func (r *EventRepository) List(ctx context.Context) ([]models.Event, error) {
	const query = `SELECT id, code, name FROM events ORDER BY code`
	events := []models.Event{}
	if err := r.db.SelectContext(ctx, &events, query); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// ExistsByCode reports whether an event with the short code already exists.
func (r *EventRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM events WHERE code = $1)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, code); err != nil {
		return false, fmt.Errorf("check event code: %w", err)
	}
	return exists, nil
}

// Create inserts a new event, mapping the unique code constraint to
// ErrDuplicate when a concurrent insert wins the race.
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	const query = `INSERT INTO events (code, name) VALUES ($1, $2) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, event.Code, event.Name).Scan(&event.ID); err != nil {
		if translated := translateConstraint(err); translated != nil {
			return translated
		}
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}
