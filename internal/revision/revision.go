// Package revision keeps the derived review state of a paragraph consistent:
// every edition's aggregate rating, the paragraph's canonical content and
// rating (projected from its best-rated edition), and the approval flag with
// its snapshot grade set. Each mutating operation runs the full
// aggregate -> select -> invalidate -> synchronize pipeline inside a single
// storage transaction, so readers observe either all of its effects or none.
package revision

import (
	"context"
	"errors"
	"time"
)

// Grade and rating bounds shared by the engine and input validation.
const (
	GradeMin = 1
	GradeMax = 10

	RatingMin = 0.0
	RatingMax = 10.0
)

var (
	// ErrNotFound is returned when a referenced paragraph, edition or grade
	// row does not exist. Storage implementations translate their own
	// no-rows error into this one.
	ErrNotFound = errors.New("revision: not found")

	// ErrLastEdition rejects deleting a paragraph's only edition. A
	// paragraph with zero editions must never occur.
	ErrLastEdition = errors.New("revision: paragraph requires at least one edition")

	// ErrGradeOutOfRange rejects grades outside [GradeMin, GradeMax].
	ErrGradeOutOfRange = errors.New("revision: grade out of range")
)

type Paragraph struct {
	ID         string
	DocumentID string
	Ordinal    int
	Content    string
	Rating     float64
	IsApproved bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Edition struct {
	ID          string
	ParagraphID string
	AuthorID    string
	Content     string
	Rating      float64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type EditionGrade struct {
	EditionID string
	UserID    string
	Grade     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

type ParagraphGrade struct {
	ParagraphID string
	UserID      string
	Grade       int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Tx is the transactional view of storage the engine drives. Every method is
// executed inside the same transaction as the triggering write, so aggregate
// reads never observe a stale pre-write snapshot.
type Tx interface {
	GetParagraphForUpdate(ctx context.Context, paragraphID string) (Paragraph, error)
	InsertParagraph(ctx context.Context, paragraph Paragraph) error
	SetParagraphCanonical(ctx context.Context, paragraphID, content string, rating float64) error
	SetParagraphRating(ctx context.Context, paragraphID string, rating float64) error
	SetParagraphApproved(ctx context.Context, paragraphID string, approved bool) error

	GetEdition(ctx context.Context, editionID string) (Edition, error)
	InsertEdition(ctx context.Context, edition Edition) error
	// RewriteEdition replaces the edition's content and resets its rating to
	// zero; the caller is responsible for discarding the stale grades.
	RewriteEdition(ctx context.Context, editionID, content string) error
	DeleteEdition(ctx context.Context, editionID string) error
	CountEditions(ctx context.Context, paragraphID string) (int, error)
	// TopRatedEdition returns the winning edition: highest rating, ties
	// broken by most recent update, then by id for total determinism.
	TopRatedEdition(ctx context.Context, paragraphID string) (Edition, error)

	UpsertEditionGrade(ctx context.Context, grade EditionGrade) (EditionGrade, error)
	DeleteEditionGrade(ctx context.Context, editionID, userID string) (EditionGrade, error)
	DeleteEditionGrades(ctx context.Context, editionID string) error
	AverageEditionGrade(ctx context.Context, editionID string) (float64, bool, error)
	SetEditionRating(ctx context.Context, editionID string, rating float64) error

	UpsertParagraphGrade(ctx context.Context, grade ParagraphGrade) (ParagraphGrade, error)
	DeleteParagraphGrade(ctx context.Context, paragraphID, userID string) (ParagraphGrade, error)
	DeleteParagraphGrades(ctx context.Context, paragraphID string) error
	CopyEditionGradesToParagraph(ctx context.Context, editionID, paragraphID string) error
	AverageParagraphGrade(ctx context.Context, paragraphID string) (float64, bool, error)
}

// Runner executes fn inside one atomic transaction. When fn returns an error
// the transaction is rolled back and none of its writes become visible.
type Runner interface {
	InTx(ctx context.Context, fn func(Tx) error) error
}
