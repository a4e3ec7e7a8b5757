package models

import "time"

// Course is the top-level catalog entity. Subjects belong to a course,
// modules belong to a subject.
type Course struct {
	ID          string
	Title       string
	Description string
	Published   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Subject groups modules inside a course, ordered by Position.
type Subject struct {
	ID        string
	CourseID  string
	Title     string
	Position  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Module is the smallest teachable unit, ordered by Position within a subject.
type Module struct {
	ID        string
	SubjectID string
	Title     string
	Content   string
	Position  int
	CreatedAt time.Time
	UpdatedAt time.Time
}
