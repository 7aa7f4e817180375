package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ideaforge/api/internal/revision"
)

// InTx runs fn against a transactional view of the review tables. Any error
// from fn rolls the whole transaction back.
func (s *PostgresStore) InTx(ctx context.Context, fn func(revision.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(&revisionTx{tx: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

type revisionTx struct {
	tx *sql.Tx
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return revision.ErrNotFound
	}
	return err
}

func (t *revisionTx) GetParagraphForUpdate(ctx context.Context, paragraphID string) (revision.Paragraph, error) {
	var item revision.Paragraph
	err := t.tx.QueryRowContext(ctx, `
		SELECT id, document_id, ordinal, content, rating, is_approved, created_at, updated_at
		FROM paragraphs
		WHERE id=$1
		FOR UPDATE
	`, paragraphID).Scan(&item.ID, &item.DocumentID, &item.Ordinal, &item.Content, &item.Rating, &item.IsApproved, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return revision.Paragraph{}, notFound(err)
	}
	return item, nil
}

func (t *revisionTx) InsertParagraph(ctx context.Context, paragraph revision.Paragraph) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO paragraphs (id, document_id, ordinal, content, rating, is_approved)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, paragraph.ID, paragraph.DocumentID, paragraph.Ordinal, paragraph.Content, paragraph.Rating, paragraph.IsApproved)
	if err != nil {
		return fmt.Errorf("insert paragraph: %w", err)
	}
	return nil
}

func (t *revisionTx) SetParagraphCanonical(ctx context.Context, paragraphID, content string, rating float64) error {
	result, err := t.tx.ExecContext(ctx, `
		UPDATE paragraphs SET content=$2, rating=$3, updated_at=NOW() WHERE id=$1
	`, paragraphID, content, rating)
	if err != nil {
		return fmt.Errorf("set paragraph canonical: %w", err)
	}
	return requireAffected(result, "set paragraph canonical")
}

func (t *revisionTx) SetParagraphRating(ctx context.Context, paragraphID string, rating float64) error {
	result, err := t.tx.ExecContext(ctx, `
		UPDATE paragraphs SET rating=$2, updated_at=NOW() WHERE id=$1
	`, paragraphID, rating)
	if err != nil {
		return fmt.Errorf("set paragraph rating: %w", err)
	}
	return requireAffected(result, "set paragraph rating")
}

func (t *revisionTx) SetParagraphApproved(ctx context.Context, paragraphID string, approved bool) error {
	result, err := t.tx.ExecContext(ctx, `
		UPDATE paragraphs SET is_approved=$2, updated_at=NOW() WHERE id=$1
	`, paragraphID, approved)
	if err != nil {
		return fmt.Errorf("set paragraph approved: %w", err)
	}
	return requireAffected(result, "set paragraph approved")
}

func (t *revisionTx) GetEdition(ctx context.Context, editionID string) (revision.Edition, error) {
	var item revision.Edition
	err := t.tx.QueryRowContext(ctx, `
		SELECT id, paragraph_id, author_id, content, rating, created_at, updated_at
		FROM paragraph_editions
		WHERE id=$1
	`, editionID).Scan(&item.ID, &item.ParagraphID, &item.AuthorID, &item.Content, &item.Rating, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return revision.Edition{}, notFound(err)
	}
	return item, nil
}

func (t *revisionTx) InsertEdition(ctx context.Context, edition revision.Edition) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO paragraph_editions (id, paragraph_id, author_id, content, rating)
		VALUES ($1, $2, $3, $4, $5)
	`, edition.ID, edition.ParagraphID, edition.AuthorID, edition.Content, edition.Rating)
	if err != nil {
		return fmt.Errorf("insert edition: %w", err)
	}
	return nil
}

func (t *revisionTx) RewriteEdition(ctx context.Context, editionID, content string) error {
	result, err := t.tx.ExecContext(ctx, `
		UPDATE paragraph_editions SET content=$2, rating=0, updated_at=NOW() WHERE id=$1
	`, editionID, content)
	if err != nil {
		return fmt.Errorf("rewrite edition: %w", err)
	}
	return requireAffected(result, "rewrite edition")
}

func (t *revisionTx) DeleteEdition(ctx context.Context, editionID string) error {
	result, err := t.tx.ExecContext(ctx, `DELETE FROM paragraph_editions WHERE id=$1`, editionID)
	if err != nil {
		return fmt.Errorf("delete edition: %w", err)
	}
	return requireAffected(result, "delete edition")
}

func (t *revisionTx) CountEditions(ctx context.Context, paragraphID string) (int, error) {
	var count int
	err := t.tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM paragraph_editions WHERE paragraph_id=$1
	`, paragraphID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count editions: %w", err)
	}
	return count, nil
}

func (t *revisionTx) TopRatedEdition(ctx context.Context, paragraphID string) (revision.Edition, error) {
	var item revision.Edition
	err := t.tx.QueryRowContext(ctx, `
		SELECT id, paragraph_id, author_id, content, rating, created_at, updated_at
		FROM paragraph_editions
		WHERE paragraph_id=$1
		ORDER BY rating DESC, updated_at DESC, id DESC
		LIMIT 1
	`, paragraphID).Scan(&item.ID, &item.ParagraphID, &item.AuthorID, &item.Content, &item.Rating, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return revision.Edition{}, notFound(err)
	}
	return item, nil
}

func (t *revisionTx) UpsertEditionGrade(ctx context.Context, grade revision.EditionGrade) (revision.EditionGrade, error) {
	err := t.tx.QueryRowContext(ctx, `
		INSERT INTO paragraph_edition_grades (edition_id, user_id, grade)
		VALUES ($1, $2, $3)
		ON CONFLICT (edition_id, user_id) DO UPDATE SET grade=EXCLUDED.grade, updated_at=NOW()
		RETURNING edition_id, user_id, grade, created_at, updated_at
	`, grade.EditionID, grade.UserID, grade.Grade).Scan(&grade.EditionID, &grade.UserID, &grade.Grade, &grade.CreatedAt, &grade.UpdatedAt)
	if err != nil {
		return revision.EditionGrade{}, fmt.Errorf("upsert edition grade: %w", err)
	}
	return grade, nil
}

func (t *revisionTx) DeleteEditionGrade(ctx context.Context, editionID, userID string) (revision.EditionGrade, error) {
	var item revision.EditionGrade
	err := t.tx.QueryRowContext(ctx, `
		DELETE FROM paragraph_edition_grades
		WHERE edition_id=$1 AND user_id=$2
		RETURNING edition_id, user_id, grade, created_at, updated_at
	`, editionID, userID).Scan(&item.EditionID, &item.UserID, &item.Grade, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return revision.EditionGrade{}, notFound(err)
	}
	return item, nil
}

func (t *revisionTx) DeleteEditionGrades(ctx context.Context, editionID string) error {
	_, err := t.tx.ExecContext(ctx, `DELETE FROM paragraph_edition_grades WHERE edition_id=$1`, editionID)
	if err != nil {
		return fmt.Errorf("delete edition grades: %w", err)
	}
	return nil
}

func (t *revisionTx) AverageEditionGrade(ctx context.Context, editionID string) (float64, bool, error) {
	var avg sql.NullFloat64
	err := t.tx.QueryRowContext(ctx, `
		SELECT AVG(grade) FROM paragraph_edition_grades WHERE edition_id=$1
	`, editionID).Scan(&avg)
	if err != nil {
		return 0, false, fmt.Errorf("average edition grade: %w", err)
	}
	return avg.Float64, avg.Valid, nil
}

func (t *revisionTx) SetEditionRating(ctx context.Context, editionID string, rating float64) error {
	result, err := t.tx.ExecContext(ctx, `
		UPDATE paragraph_editions SET rating=$2, updated_at=NOW() WHERE id=$1
	`, editionID, rating)
	if err != nil {
		return fmt.Errorf("set edition rating: %w", err)
	}
	return requireAffected(result, "set edition rating")
}

func (t *revisionTx) UpsertParagraphGrade(ctx context.Context, grade revision.ParagraphGrade) (revision.ParagraphGrade, error) {
	err := t.tx.QueryRowContext(ctx, `
		INSERT INTO paragraph_grades (paragraph_id, user_id, grade)
		VALUES ($1, $2, $3)
		ON CONFLICT (paragraph_id, user_id) DO UPDATE SET grade=EXCLUDED.grade, updated_at=NOW()
		RETURNING paragraph_id, user_id, grade, created_at, updated_at
	`, grade.ParagraphID, grade.UserID, grade.Grade).Scan(&grade.ParagraphID, &grade.UserID, &grade.Grade, &grade.CreatedAt, &grade.UpdatedAt)
	if err != nil {
		return revision.ParagraphGrade{}, fmt.Errorf("upsert paragraph grade: %w", err)
	}
	return grade, nil
}

func (t *revisionTx) DeleteParagraphGrade(ctx context.Context, paragraphID, userID string) (revision.ParagraphGrade, error) {
	var item revision.ParagraphGrade
	err := t.tx.QueryRowContext(ctx, `
		DELETE FROM paragraph_grades
		WHERE paragraph_id=$1 AND user_id=$2
		RETURNING paragraph_id, user_id, grade, created_at, updated_at
	`, paragraphID, userID).Scan(&item.ParagraphID, &item.UserID, &item.Grade, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return revision.ParagraphGrade{}, notFound(err)
	}
	return item, nil
}

func (t *revisionTx) DeleteParagraphGrades(ctx context.Context, paragraphID string) error {
	_, err := t.tx.ExecContext(ctx, `DELETE FROM paragraph_grades WHERE paragraph_id=$1`, paragraphID)
	if err != nil {
		return fmt.Errorf("delete paragraph grades: %w", err)
	}
	return nil
}

func (t *revisionTx) CopyEditionGradesToParagraph(ctx context.Context, editionID, paragraphID string) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO paragraph_grades (paragraph_id, user_id, grade, created_at, updated_at)
		SELECT $2, user_id, grade, created_at, updated_at
		FROM paragraph_edition_grades
		WHERE edition_id=$1
		ON CONFLICT (paragraph_id, user_id) DO UPDATE SET grade=EXCLUDED.grade, updated_at=EXCLUDED.updated_at
	`, editionID, paragraphID)
	if err != nil {
		return fmt.Errorf("copy edition grades: %w", err)
	}
	return nil
}

func (t *revisionTx) AverageParagraphGrade(ctx context.Context, paragraphID string) (float64, bool, error) {
	var avg sql.NullFloat64
	err := t.tx.QueryRowContext(ctx, `
		SELECT AVG(grade) FROM paragraph_grades WHERE paragraph_id=$1
	`, paragraphID).Scan(&avg)
	if err != nil {
		return 0, false, fmt.Errorf("average paragraph grade: %w", err)
	}
	return avg.Float64, avg.Valid, nil
}
