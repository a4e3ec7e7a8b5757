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

type ModuleRepository struct {
	pool *pgxpool.Pool
}

func NewModuleRepository(db *database.DB) *ModuleRepository {
	return &ModuleRepository{pool: db.Pool}
}

func scanModuleRow(scanner rowScanner) (*models.Module, error) {
	var module models.Module

	err := scanner.Scan(
		&module.ID, &module.SubjectID, &module.Title, &module.Content,
		&module.Position, &module.CreatedAt, &module.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &module, nil
}

func scanModuleRows(rows pgx.Rows) ([]*models.Module, error) {
	defer rows.Close()

	modules := make([]*models.Module, 0)

	for rows.Next() {
		module, err := scanModuleRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan module: %w", err)
		}
		modules = append(modules, module)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return modules, nil
}

func (r *ModuleRepository) GetByID(ctx context.Context, id string) (*models.Module, error) {
	query := `
		SELECT id, subject_id, title, content, position, created_at, updated_at
		FROM modules WHERE id = $1
	`

	return scanModuleRow(r.pool.QueryRow(ctx, query, id))
}

func (r *ModuleRepository) ListBySubject(ctx context.Context, subjectID string) ([]*models.Module, error) {
	query := `
		SELECT id, subject_id, title, content, position, created_at, updated_at
		FROM modules WHERE subject_id = $1 ORDER BY position ASC
	`

	rows, err := r.pool.Query(ctx, query, subjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query modules: %w", err)
	}

	return scanModuleRows(rows)
}

// ListByCourse returns all modules belonging to a course, across subjects.
// Used for membership checks when toggling per-enrollment module access.
func (r *ModuleRepository) ListByCourse(ctx context.Context, courseID string) ([]*models.Module, error) {
	query := `
		SELECT m.id, m.subject_id, m.title, m.content, m.position, m.created_at, m.updated_at
		FROM modules m
		JOIN subjects s ON s.id = m.subject_id
		WHERE s.course_id = $1
		ORDER BY s.position ASC, m.position ASC
	`

	rows, err := r.pool.Query(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query modules: %w", err)
	}

	return scanModuleRows(rows)
}

func (r *ModuleRepository) Create(ctx context.Context, module *models.Module) (*models.Module, error) {
	module.ID = uuid.New().String()

	now := time.Now()
	module.CreatedAt = now
	module.UpdatedAt = now

	query := `
		INSERT INTO modules (id, subject_id, title, content, position, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, subject_id, title, content, position, created_at, updated_at
	`

	return scanModuleRow(r.pool.QueryRow(ctx, query,
		module.ID, module.SubjectID, module.Title, module.Content,
		module.Position, module.CreatedAt, module.UpdatedAt,
	))
}

func (r *ModuleRepository) Update(ctx context.Context, id string, module *models.Module) (*models.Module, error) {
	module.UpdatedAt = time.Now()

	query := `
		UPDATE modules SET title = $1, content = $2, position = $3, updated_at = $4
		WHERE id = $5
		RETURNING id, subject_id, title, content, position, created_at, updated_at
	`

	return scanModuleRow(r.pool.QueryRow(ctx, query,
		module.Title, module.Content, module.Position, module.UpdatedAt, id,
	))
}

func (r *ModuleRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM modules WHERE id = $1`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}
