package integration

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/aula-platform/aula/internal/database"
	"github.com/aula-platform/aula/internal/models"
	"github.com/aula-platform/aula/internal/repositories"
	"github.com/aula-platform/aula/pkg/auth"
)

// TestDB manages PostgreSQL testcontainer and database operations
type TestDB struct {
	Container  testcontainers.Container
	ConnString string
	Pool       *pgxpool.Pool
	DB         *database.DB
}

// SetupTestDatabase creates a PostgreSQL testcontainer, runs migrations, returns TestDB
func SetupTestDatabase(ctx context.Context) (*TestDB, error) {
	container, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		postgres.WithDatabase("aula"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := runMigrations(ctx, pool); err != nil {
		pool.Close()
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	dbWrapper := &database.DB{
		Pool: pool,
	}

	return &TestDB{
		Container:  container,
		ConnString: connStr,
		Pool:       pool,
		DB:         dbWrapper,
	}, nil
}

// runMigrations executes all goose migrations
func runMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	migrationsDir, err := filepath.Abs("../../migrations")
	if err != nil {
		return fmt.Errorf("failed to get migrations path: %w", err)
	}

	// Suppress goose logs
	goose.SetLogger(log.New(nil, "", 0))

	// Goose needs a stdlib DB connection, use the pgx adapter
	sqlDB := stdlib.OpenDB(*pool.Config().ConnConfig)
	defer sqlDB.Close()

	if err := goose.UpContext(ctx, sqlDB, migrationsDir); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	return nil
}

// Teardown stops the container and closes the connection pool
func (db *TestDB) Teardown(ctx context.Context) error {
	if db.Pool != nil {
		db.Pool.Close()
	}
	if db.Container != nil {
		return db.Container.Terminate(ctx)
	}
	return nil
}

// CleanupTables truncates all tables for test isolation
func (db *TestDB) CleanupTables(ctx context.Context) error {
	tables := []string{
		"enrollment_modules",
		"enrollments",
		"modules",
		"subjects",
		"courses",
		"revoked_tokens",
		"users",
	}

	for _, table := range tables {
		if _, err := db.Pool.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return nil
}

// InitializeRepositories creates all repository instances from database wrapper
func InitializeRepositories(db *database.DB) (
	*repositories.UserRepository,
	*repositories.TokenRevocationRepository,
	*repositories.CourseRepository,
	*repositories.SubjectRepository,
	*repositories.ModuleRepository,
	*repositories.EnrollmentRepository,
) {
	return repositories.NewUserRepository(db),
		repositories.NewTokenRevocationRepository(db),
		repositories.NewCourseRepository(db),
		repositories.NewSubjectRepository(db),
		repositories.NewModuleRepository(db),
		repositories.NewEnrollmentRepository(db)
}

// SeedUser inserts a test user with hashed password
func SeedUser(ctx context.Context, pool *pgxpool.Pool, email, password, role string) (*models.User, error) {
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	query := `
		INSERT INTO users (id, email, password_hash, name, role, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, 'active', NOW(), NOW())
		RETURNING id, email, password_hash, name, role, status, created_at, updated_at
	`

	var user models.User
	err = pool.QueryRow(ctx, query, uuid.New().String(), email, hashedPassword, "Test User", role).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&user.Role,
		&user.Status,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	return &user, nil
}

// SeedCourse inserts a course, optionally published
func SeedCourse(ctx context.Context, pool *pgxpool.Pool, title string, published bool) (*models.Course, error) {
	query := `
		INSERT INTO courses (id, title, description, published, created_at, updated_at)
		VALUES ($1, $2, '', $3, NOW(), NOW())
		RETURNING id, title, description, published, created_at, updated_at
	`

	var course models.Course
	err := pool.QueryRow(ctx, query, uuid.New().String(), title, published).Scan(
		&course.ID,
		&course.Title,
		&course.Description,
		&course.Published,
		&course.CreatedAt,
		&course.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert course: %w", err)
	}

	return &course, nil
}

// SeedSubject inserts a subject under a course
func SeedSubject(ctx context.Context, pool *pgxpool.Pool, courseID, title string, position int) (*models.Subject, error) {
	query := `
		INSERT INTO subjects (id, course_id, title, position, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING id, course_id, title, position, created_at, updated_at
	`

	var subject models.Subject
	err := pool.QueryRow(ctx, query, uuid.New().String(), courseID, title, position).Scan(
		&subject.ID,
		&subject.CourseID,
		&subject.Title,
		&subject.Position,
		&subject.CreatedAt,
		&subject.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert subject: %w", err)
	}

	return &subject, nil
}

// SeedModule inserts a module under a subject
func SeedModule(ctx context.Context, pool *pgxpool.Pool, subjectID, title string, position int) (*models.Module, error) {
	query := `
		INSERT INTO modules (id, subject_id, title, content, position, created_at, updated_at)
		VALUES ($1, $2, $3, 'Lesson content.', $4, NOW(), NOW())
		RETURNING id, subject_id, title, content, position, created_at, updated_at
	`

	var module models.Module
	err := pool.QueryRow(ctx, query, uuid.New().String(), subjectID, title, position).Scan(
		&module.ID,
		&module.SubjectID,
		&module.Title,
		&module.Content,
		&module.Position,
		&module.CreatedAt,
		&module.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert module: %w", err)
	}

	return &module, nil
}
