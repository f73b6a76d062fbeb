package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sciportal/sciportal-api/internal/models"
)

func TestListEventsOrderedByCode(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	rows := sqlmock.NewRows([]string{"id", "code", "name"}).
		AddRow(2, "sict-2023", "Science Week 2023").
		AddRow(1, "sict-2024", "Science Week 2024")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, code, name FROM events ORDER BY code")).
		WillReturnRows(rows)

	events, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "sict-2023", events[0].Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateEventDuplicateCode(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	mock.ExpectQuery("INSERT INTO events").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "events_code_key"})

	err := repo.Create(context.Background(), &models.Event{Code: "sict-2024", Name: "Science Week 2024"})
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}
