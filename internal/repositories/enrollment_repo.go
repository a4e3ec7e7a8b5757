package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/aula-platform/aula/internal/database"
	"github.com/aula-platform/aula/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type EnrollmentRepository struct {
	db *database.DB
}

func NewEnrollmentRepository(db *database.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

func scanEnrollmentRow(scanner rowScanner) (*models.Enrollment, error) {
	var e models.Enrollment

	err := scanner.Scan(&e.ID, &e.UserID, &e.CourseID, &e.EnrolledAt)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &e, nil
}

func (r *EnrollmentRepository) enabledModuleIDs(ctx context.Context, enrollmentID string) ([]string, error) {
	query := `SELECT module_id FROM enrollment_modules WHERE enrollment_id = $1`

	rows, err := r.db.Pool.Query(ctx, query, enrollmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query enabled modules: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, database.MapPostgresError(err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return ids, nil
}

func (r *EnrollmentRepository) GetByID(ctx context.Context, id string) (*models.Enrollment, error) {
	query := `
		SELECT id, user_id, course_id, enrolled_at
		FROM enrollments WHERE id = $1
	`

	enrollment, err := scanEnrollmentRow(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}

	enrollment.EnabledModuleIDs, err = r.enabledModuleIDs(ctx, enrollment.ID)
	if err != nil {
		return nil, err
	}

	return enrollment, nil
}

func (r *EnrollmentRepository) GetByUserAndCourse(ctx context.Context, userID, courseID string) (*models.Enrollment, error) {
	query := `
		SELECT id, user_id, course_id, enrolled_at
		FROM enrollments WHERE user_id = $1 AND course_id = $2
	`

	enrollment, err := scanEnrollmentRow(r.db.Pool.QueryRow(ctx, query, userID, courseID))
	if err != nil {
		return nil, err
	}

	enrollment.EnabledModuleIDs, err = r.enabledModuleIDs(ctx, enrollment.ID)
	if err != nil {
		return nil, err
	}

	return enrollment, nil
}

func (r *EnrollmentRepository) ListByUser(ctx context.Context, userID string) ([]*models.Enrollment, error) {
	query := `
		SELECT id, user_id, course_id, enrolled_at
		FROM enrollments WHERE user_id = $1 ORDER BY enrolled_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query enrollments: %w", err)
	}
	defer rows.Close()

	enrollments := make([]*models.Enrollment, 0)
	for rows.Next() {
		enrollment, err := scanEnrollmentRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan enrollment: %w", err)
		}
		enrollments = append(enrollments, enrollment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	for _, enrollment := range enrollments {
		enrollment.EnabledModuleIDs, err = r.enabledModuleIDs(ctx, enrollment.ID)
		if err != nil {
			return nil, err
		}
	}

	return enrollments, nil
}

// Create enrolls a user in a course and enables the given modules, all in
// one transaction so a failed module insert leaves no partial enrollment.
func (r *EnrollmentRepository) Create(ctx context.Context, userID, courseID string, enabledModuleIDs []string) (*models.Enrollment, error) {
	enrollment := &models.Enrollment{
		ID:               uuid.New().String(),
		UserID:           userID,
		CourseID:         courseID,
		EnrolledAt:       time.Now(),
		EnabledModuleIDs: enabledModuleIDs,
	}

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO enrollments (id, user_id, course_id, enrolled_at) VALUES ($1, $2, $3, $4)`,
			enrollment.ID, enrollment.UserID, enrollment.CourseID, enrollment.EnrolledAt,
		)
		if err != nil {
			return database.MapPostgresError(err)
		}

		for _, moduleID := range enabledModuleIDs {
			_, err := tx.Exec(ctx,
				`INSERT INTO enrollment_modules (enrollment_id, module_id) VALUES ($1, $2)`,
				enrollment.ID, moduleID,
			)
			if err != nil {
				return database.MapPostgresError(err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return enrollment, nil
}

// SetEnabledModules replaces the set of enabled modules for an enrollment
func (r *EnrollmentRepository) SetEnabledModules(ctx context.Context, enrollmentID string, moduleIDs []string) error {
	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `DELETE FROM enrollment_modules WHERE enrollment_id = $1`, enrollmentID)
		if err != nil {
			return database.MapPostgresError(err)
		}

		for _, moduleID := range moduleIDs {
			_, err := tx.Exec(ctx,
				`INSERT INTO enrollment_modules (enrollment_id, module_id) VALUES ($1, $2)`,
				enrollmentID, moduleID,
			)
			if err != nil {
				return database.MapPostgresError(err)
			}
		}

		return nil
	})
}

func (r *EnrollmentRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM enrollments WHERE id = $1`

	result, err := r.db.Pool.Exec(ctx, query, id)
	if err != nil {
		return database.MapPostgresError(err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}
