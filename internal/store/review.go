package store

import (
	"context"
	"fmt"

	"ideaforge/api/internal/revision"
)

// Non-transactional reads over the review tables. All coordinated writes go
// through InTx; these queries back the plain GET endpoints and the exporters.

func (s *PostgresStore) ListParagraphs(ctx context.Context, documentID string) ([]revision.Paragraph, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, ordinal, content, rating, is_approved, created_at, updated_at
		FROM paragraphs
		WHERE document_id=$1
		ORDER BY ordinal ASC, created_at ASC
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("list paragraphs: %w", err)
	}
	defer rows.Close()

	items := make([]revision.Paragraph, 0)
	for rows.Next() {
		var item revision.Paragraph
		if err := rows.Scan(&item.ID, &item.DocumentID, &item.Ordinal, &item.Content, &item.Rating, &item.IsApproved, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan paragraph: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate paragraphs: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) GetParagraph(ctx context.Context, paragraphID string) (revision.Paragraph, error) {
	var item revision.Paragraph
	err := s.db.QueryRowContext(ctx, `
		SELECT id, document_id, ordinal, content, rating, is_approved, created_at, updated_at
		FROM paragraphs
		WHERE id=$1
	`, paragraphID).Scan(&item.ID, &item.DocumentID, &item.Ordinal, &item.Content, &item.Rating, &item.IsApproved, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return revision.Paragraph{}, err
	}
	return item, nil
}

func (s *PostgresStore) DeleteParagraph(ctx context.Context, paragraphID string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM paragraphs WHERE id=$1`, paragraphID)
	if err != nil {
		return fmt.Errorf("delete paragraph: %w", err)
	}
	return requireAffected(result, "delete paragraph")
}

func (s *PostgresStore) ListEditions(ctx context.Context, paragraphID string) ([]revision.Edition, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, paragraph_id, author_id, content, rating, created_at, updated_at
		FROM paragraph_editions
		WHERE paragraph_id=$1
		ORDER BY rating DESC, updated_at DESC, id DESC
	`, paragraphID)
	if err != nil {
		return nil, fmt.Errorf("list editions: %w", err)
	}
	defer rows.Close()

	items := make([]revision.Edition, 0)
	for rows.Next() {
		var item revision.Edition
		if err := rows.Scan(&item.ID, &item.ParagraphID, &item.AuthorID, &item.Content, &item.Rating, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan edition: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate editions: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) GetEdition(ctx context.Context, editionID string) (revision.Edition, error) {
	var item revision.Edition
	err := s.db.QueryRowContext(ctx, `
		SELECT id, paragraph_id, author_id, content, rating, created_at, updated_at
		FROM paragraph_editions
		WHERE id=$1
	`, editionID).Scan(&item.ID, &item.ParagraphID, &item.AuthorID, &item.Content, &item.Rating, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return revision.Edition{}, err
	}
	return item, nil
}

func (s *PostgresStore) ListEditionGrades(ctx context.Context, editionID string) ([]revision.EditionGrade, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT edition_id, user_id, grade, created_at, updated_at
		FROM paragraph_edition_grades
		WHERE edition_id=$1
		ORDER BY created_at ASC
	`, editionID)
	if err != nil {
		return nil, fmt.Errorf("list edition grades: %w", err)
	}
	defer rows.Close()

	items := make([]revision.EditionGrade, 0)
	for rows.Next() {
		var item revision.EditionGrade
		if err := rows.Scan(&item.EditionID, &item.UserID, &item.Grade, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan edition grade: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate edition grades: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) ListParagraphGrades(ctx context.Context, paragraphID string) ([]revision.ParagraphGrade, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT paragraph_id, user_id, grade, created_at, updated_at
		FROM paragraph_grades
		WHERE paragraph_id=$1
		ORDER BY created_at ASC
	`, paragraphID)
	if err != nil {
		return nil, fmt.Errorf("list paragraph grades: %w", err)
	}
	defer rows.Close()

	items := make([]revision.ParagraphGrade, 0)
	for rows.Next() {
		var item revision.ParagraphGrade
		if err := rows.Scan(&item.ParagraphID, &item.UserID, &item.Grade, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan paragraph grade: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate paragraph grades: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) ListParagraphComments(ctx context.Context, paragraphID string) ([]ParagraphComment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, paragraph_id, author_id, body, created_at, updated_at
		FROM paragraph_comments
		WHERE paragraph_id=$1
		ORDER BY created_at ASC
	`, paragraphID)
	if err != nil {
		return nil, fmt.Errorf("list paragraph comments: %w", err)
	}
	defer rows.Close()

	items := make([]ParagraphComment, 0)
	for rows.Next() {
		var item ParagraphComment
		if err := rows.Scan(&item.ID, &item.ParagraphID, &item.AuthorID, &item.Body, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan paragraph comment: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate paragraph comments: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) InsertParagraphComment(ctx context.Context, item ParagraphComment) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO paragraph_comments (id, paragraph_id, author_id, body)
		VALUES ($1, $2, $3, $4)
	`, item.ID, item.ParagraphID, item.AuthorID, item.Body)
	if err != nil {
		return fmt.Errorf("insert paragraph comment: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateParagraphComment(ctx context.Context, commentID, authorID, body string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE paragraph_comments SET body=$3, updated_at=NOW() WHERE id=$1 AND author_id=$2
	`, commentID, authorID, body)
	if err != nil {
		return fmt.Errorf("update paragraph comment: %w", err)
	}
	return requireAffected(result, "update paragraph comment")
}

func (s *PostgresStore) DeleteParagraphComment(ctx context.Context, commentID, authorID string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM paragraph_comments WHERE id=$1 AND author_id=$2
	`, commentID, authorID)
	if err != nil {
		return fmt.Errorf("delete paragraph comment: %w", err)
	}
	return requireAffected(result, "delete paragraph comment")
}

func (s *PostgresStore) ListEditionComments(ctx context.Context, editionID string) ([]EditionComment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, edition_id, author_id, body, created_at, updated_at
		FROM edition_comments
		WHERE edition_id=$1
		ORDER BY created_at ASC
	`, editionID)
	if err != nil {
		return nil, fmt.Errorf("list edition comments: %w", err)
	}
	defer rows.Close()

	items := make([]EditionComment, 0)
	for rows.Next() {
		var item EditionComment
		if err := rows.Scan(&item.ID, &item.EditionID, &item.AuthorID, &item.Body, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan edition comment: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate edition comments: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) InsertEditionComment(ctx context.Context, item EditionComment) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO edition_comments (id, edition_id, author_id, body)
		VALUES ($1, $2, $3, $4)
	`, item.ID, item.EditionID, item.AuthorID, item.Body)
	if err != nil {
		return fmt.Errorf("insert edition comment: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateEditionComment(ctx context.Context, commentID, authorID, body string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE edition_comments SET body=$3, updated_at=NOW() WHERE id=$1 AND author_id=$2
	`, commentID, authorID, body)
	if err != nil {
		return fmt.Errorf("update edition comment: %w", err)
	}
	return requireAffected(result, "update edition comment")
}

func (s *PostgresStore) DeleteEditionComment(ctx context.Context, commentID, authorID string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM edition_comments WHERE id=$1 AND author_id=$2
	`, commentID, authorID)
	if err != nil {
		return fmt.Errorf("delete edition comment: %w", err)
	}
	return requireAffected(result, "delete edition comment")
}
