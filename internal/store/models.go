package store

import "time"

type User struct {
	ID                    string
	DisplayName           string
	Email                 string
	PasswordHash          string
	IsEmailVerified       bool
	VerificationToken     string
	VerificationExpiresAt *time.Time
	AvatarKey             string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

type Project struct {
	ID          string
	Name        string
	Description string
	OwnerID     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Stage is a phase of a project's review workflow; documents live in stages.
type Stage struct {
	ID        string
	ProjectID string
	Name      string
	StageType string
	SortOrder int
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Document struct {
	ID        string
	StageID   string
	Title     string
	CoverKey  string
	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type ParagraphComment struct {
	ID          string
	ParagraphID string
	AuthorID    string
	Body        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type EditionComment struct {
	ID        string
	EditionID string
	AuthorID  string
	Body      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
