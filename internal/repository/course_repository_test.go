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

func TestListCourses(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name"}).
		AddRow(2, "Computer Science").
		AddRow(1, "Physics")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name FROM courses ORDER BY name")).
		WillReturnRows(rows)

	courses, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, "Computer Science", courses[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCourse(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO courses (name) VALUES ($1) RETURNING id")).
		WithArgs("Computer Science").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))

	course := &models.Course{Name: "Computer Science"}
	err := repo.Create(context.Background(), course)
	require.NoError(t, err)
	assert.Equal(t, int64(3), course.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCourseDuplicateName(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery("INSERT INTO courses").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "courses_name_key"})

	err := repo.Create(context.Background(), &models.Course{Name: "Computer Science"})
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}
