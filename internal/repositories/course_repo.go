package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/aula-platform/aula/internal/database"
	"github.com/aula-platform/aula/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CourseRepository struct {
	pool *pgxpool.Pool
}

func NewCourseRepository(db *database.DB) *CourseRepository {
	return &CourseRepository{pool: db.Pool}
}

func scanCourseRow(scanner rowScanner) (*models.Course, error) {
	var course models.Course

	err := scanner.Scan(
		&course.ID, &course.Title, &course.Description, &course.Published,
		&course.CreatedAt, &course.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &course, nil
}

func scanCourseRows(rows pgx.Rows) ([]*models.Course, error) {
	defer rows.Close()

	courses := make([]*models.Course, 0)

	for rows.Next() {
		course, err := scanCourseRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}
		courses = append(courses, course)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return courses, nil
}

func (r *CourseRepository) GetByID(ctx context.Context, id string) (*models.Course, error) {
	query := `
		SELECT id, title, description, published, created_at, updated_at
		FROM courses WHERE id = $1
	`

	return scanCourseRow(r.pool.QueryRow(ctx, query, id))
}

// List returns courses ordered by creation time. When publishedOnly is set,
// unpublished courses are filtered out (the student-facing view).
func (r *CourseRepository) List(ctx context.Context, publishedOnly bool, limit, offset int) ([]*models.Course, error) {
	query := `
		SELECT id, title, description, published, created_at, updated_at
		FROM courses
		WHERE ($1 = false OR published = true)
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, publishedOnly, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query courses: %w", err)
	}

	return scanCourseRows(rows)
}

func (r *CourseRepository) Create(ctx context.Context, course *models.Course) (*models.Course, error) {
	course.ID = uuid.New().String()

	now := time.Now()
	course.CreatedAt = now
	course.UpdatedAt = now

	query := `
		INSERT INTO courses (id, title, description, published, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, title, description, published, created_at, updated_at
	`

	return scanCourseRow(r.pool.QueryRow(ctx, query,
		course.ID, course.Title, course.Description, course.Published,
		course.CreatedAt, course.UpdatedAt,
	))
}

func (r *CourseRepository) Update(ctx context.Context, id string, course *models.Course) (*models.Course, error) {
	course.UpdatedAt = time.Now()

	query := `
		UPDATE courses SET title = $1, description = $2, published = $3, updated_at = $4
		WHERE id = $5
		RETURNING id, title, description, published, created_at, updated_at
	`

	return scanCourseRow(r.pool.QueryRow(ctx, query,
		course.Title, course.Description, course.Published, course.UpdatedAt, id,
	))
}

func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM courses WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}
