package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/sciportal/sciportal-api/internal/models"
)

// CourseRepository manages persistence for academic programs.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository creates a new instance of CourseRepository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// List returns all courses ordered by name.
func (r *CourseRepository) List(ctx context.Context) ([]models.Course, error) {
	const query = `SELECT id, name FROM courses ORDER BY name`
	courses := []models.Course{}
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// ExistsByName reports whether a course with the name already exists.
func (r *CourseRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM courses WHERE name = $1)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, name); err != nil {
		return false, fmt.Errorf("check course name: %w", err)
	}
	return exists, nil
}

// Create inserts a new course, mapping the unique name constraint to
// ErrDuplicate when a concurrent insert wins the race.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	const query = `INSERT INTO courses (name) VALUES ($1) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, course.Name).Scan(&course.ID); err != nil {
		if translated := translateConstraint(err); translated != nil {
			return translated
		}
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}
