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

type SubjectRepository struct {
	pool *pgxpool.Pool
}

func NewSubjectRepository(db *database.DB) *SubjectRepository {
	return &SubjectRepository{pool: db.Pool}
}

func scanSubjectRow(scanner rowScanner) (*models.Subject, error) {
	var subject models.Subject

	err := scanner.Scan(
		&subject.ID, &subject.CourseID, &subject.Title, &subject.Position,
		&subject.CreatedAt, &subject.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &subject, nil
}

func scanSubjectRows(rows pgx.Rows) ([]*models.Subject, error) {
	defer rows.Close()

	subjects := make([]*models.Subject, 0)

	for rows.Next() {
		subject, err := scanSubjectRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subject: %w", err)
		}
		subjects = append(subjects, subject)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return subjects, nil
}

func (r *SubjectRepository) GetByID(ctx context.Context, id string) (*models.Subject, error) {
	query := `
		SELECT id, course_id, title, position, created_at, updated_at
		FROM subjects WHERE id = $1
	`

	return scanSubjectRow(r.pool.QueryRow(ctx, query, id))
}

func (r *SubjectRepository) ListByCourse(ctx context.Context, courseID string) ([]*models.Subject, error) {
	query := `
		SELECT id, course_id, title, position, created_at, updated_at
		FROM subjects WHERE course_id = $1 ORDER BY position ASC
	`

	rows, err := r.pool.Query(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query subjects: %w", err)
	}

	return scanSubjectRows(rows)
}

func (r *SubjectRepository) Create(ctx context.Context, subject *models.Subject) (*models.Subject, error) {
	subject.ID = uuid.New().String()

	now := time.Now()
	subject.CreatedAt = now
	subject.UpdatedAt = now

	query := `
		INSERT INTO subjects (id, course_id, title, position, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, course_id, title, position, created_at, updated_at
	`

	return scanSubjectRow(r.pool.QueryRow(ctx, query,
		subject.ID, subject.CourseID, subject.Title, subject.Position,
		subject.CreatedAt, subject.UpdatedAt,
	))
}

func (r *SubjectRepository) Update(ctx context.Context, id string, subject *models.Subject) (*models.Subject, error) {
	subject.UpdatedAt = time.Now()

	query := `
		UPDATE subjects SET title = $1, position = $2, updated_at = $3
		WHERE id = $4
		RETURNING id, course_id, title, position, created_at, updated_at
	`

	return scanSubjectRow(r.pool.QueryRow(ctx, query,
		subject.Title, subject.Position, subject.UpdatedAt, id,
	))
}

func (r *SubjectRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM subjects WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}
