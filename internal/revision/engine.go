package revision

import (
	"context"
	"time"

	"ideaforge/api/internal/util"
)

// Engine coordinates every mutating operation on paragraphs, editions and
// grades. One public method is one atomic unit of work.
type Engine struct {
	store Runner
}

func NewEngine(store Runner) *Engine {
	return &Engine{store: store}
}

// CreateParagraph inserts a paragraph together with its first edition carrying
// the same content. The paragraph starts unapproved with rating zero.
func (e *Engine) CreateParagraph(ctx context.Context, documentID, authorID string, ordinal int, content string) (Paragraph, error) {
	var created Paragraph
	err := e.store.InTx(ctx, func(tx Tx) error {
		now := time.Now()
		created = Paragraph{
			ID:         util.NewID("par"),
			DocumentID: documentID,
			Ordinal:    ordinal,
			Content:    content,
			Rating:     0,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := tx.InsertParagraph(ctx, created); err != nil {
			return err
		}
		first := Edition{
			ID:          util.NewID("ped"),
			ParagraphID: created.ID,
			AuthorID:    authorID,
			Content:     content,
			Rating:      0,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		return tx.InsertEdition(ctx, first)
	})
	if err != nil {
		return Paragraph{}, err
	}
	return created, nil
}

// CreateEdition adds a competing rewrite for the paragraph. An approved
// paragraph loses its approval: the certified text set changed.
func (e *Engine) CreateEdition(ctx context.Context, paragraphID, authorID, content string) (Edition, error) {
	var created Edition
	err := e.store.InTx(ctx, func(tx Tx) error {
		paragraph, err := tx.GetParagraphForUpdate(ctx, paragraphID)
		if err != nil {
			return err
		}
		now := time.Now()
		created = Edition{
			ID:          util.NewID("ped"),
			ParagraphID: paragraph.ID,
			AuthorID:    authorID,
			Content:     content,
			Rating:      0,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := tx.InsertEdition(ctx, created); err != nil {
			return err
		}
		return e.refreshAfterEditionChange(ctx, tx, paragraph)
	})
	if err != nil {
		return Edition{}, err
	}
	return created, nil
}

// UpdateEdition rewrites an edition's text. The old grades applied to the old
// text, so the rating resets to zero and the grade rows are discarded before
// the winner is recomputed.
func (e *Engine) UpdateEdition(ctx context.Context, editionID, content string) (Edition, error) {
	var updated Edition
	err := e.store.InTx(ctx, func(tx Tx) error {
		edition, err := tx.GetEdition(ctx, editionID)
		if err != nil {
			return err
		}
		paragraph, err := tx.GetParagraphForUpdate(ctx, edition.ParagraphID)
		if err != nil {
			return err
		}
		if err := tx.RewriteEdition(ctx, edition.ID, content); err != nil {
			return err
		}
		if err := tx.DeleteEditionGrades(ctx, edition.ID); err != nil {
			return err
		}
		if err := e.refreshAfterEditionChange(ctx, tx, paragraph); err != nil {
			return err
		}
		updated, err = tx.GetEdition(ctx, edition.ID)
		return err
	})
	if err != nil {
		return Edition{}, err
	}
	return updated, nil
}

// RemoveEdition deletes an edition and recomputes the paragraph's winner from
// the remainder. Deleting the paragraph's only edition is rejected.
func (e *Engine) RemoveEdition(ctx context.Context, editionID string) (Edition, error) {
	var removed Edition
	err := e.store.InTx(ctx, func(tx Tx) error {
		edition, err := tx.GetEdition(ctx, editionID)
		if err != nil {
			return err
		}
		paragraph, err := tx.GetParagraphForUpdate(ctx, edition.ParagraphID)
		if err != nil {
			return err
		}
		count, err := tx.CountEditions(ctx, paragraph.ID)
		if err != nil {
			return err
		}
		if count <= 1 {
			return ErrLastEdition
		}
		if err := tx.DeleteEdition(ctx, edition.ID); err != nil {
			return err
		}
		removed = edition
		return e.refreshAfterEditionChange(ctx, tx, paragraph)
	})
	if err != nil {
		return Edition{}, err
	}
	return removed, nil
}

// GradeEdition records or replaces the user's grade for an edition and
// re-aggregates the edition rating from the full grade set.
func (e *Engine) GradeEdition(ctx context.Context, editionID, userID string, grade int) (EditionGrade, error) {
	if grade < GradeMin || grade > GradeMax {
		return EditionGrade{}, ErrGradeOutOfRange
	}
	var saved EditionGrade
	err := e.store.InTx(ctx, func(tx Tx) error {
		edition, err := tx.GetEdition(ctx, editionID)
		if err != nil {
			return err
		}
		paragraph, err := tx.GetParagraphForUpdate(ctx, edition.ParagraphID)
		if err != nil {
			return err
		}
		now := time.Now()
		saved, err = tx.UpsertEditionGrade(ctx, EditionGrade{
			EditionID: edition.ID,
			UserID:    userID,
			Grade:     grade,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return err
		}
		return e.refreshAfterGradeChange(ctx, tx, paragraph, edition.ID)
	})
	if err != nil {
		return EditionGrade{}, err
	}
	return saved, nil
}

// UngradeEdition withdraws the user's grade. An edition left with no grades
// falls back to rating zero; the operation never fails for emptying the set.
func (e *Engine) UngradeEdition(ctx context.Context, editionID, userID string) (EditionGrade, error) {
	var removed EditionGrade
	err := e.store.InTx(ctx, func(tx Tx) error {
		edition, err := tx.GetEdition(ctx, editionID)
		if err != nil {
			return err
		}
		paragraph, err := tx.GetParagraphForUpdate(ctx, edition.ParagraphID)
		if err != nil {
			return err
		}
		removed, err = tx.DeleteEditionGrade(ctx, edition.ID, userID)
		if err != nil {
			return err
		}
		return e.refreshAfterGradeChange(ctx, tx, paragraph, edition.ID)
	})
	if err != nil {
		return EditionGrade{}, err
	}
	return removed, nil
}

// ApproveParagraph freezes the paragraph to its current winner: the approval
// flag is set and the winner's grades are copied into the paragraph grade
// table, replacing any prior snapshot, so paragraph-level grading can proceed
// independently of further edition churn.
func (e *Engine) ApproveParagraph(ctx context.Context, paragraphID string) (Paragraph, error) {
	var approved Paragraph
	err := e.store.InTx(ctx, func(tx Tx) error {
		paragraph, err := tx.GetParagraphForUpdate(ctx, paragraphID)
		if err != nil {
			return err
		}
		winner, err := e.selectCanonical(ctx, tx, paragraph.ID)
		if err != nil {
			return err
		}
		if err := tx.SetParagraphApproved(ctx, paragraph.ID, true); err != nil {
			return err
		}
		if err := e.replaceSnapshot(ctx, tx, paragraph.ID, winner.ID); err != nil {
			return err
		}
		rating, ok, err := tx.AverageParagraphGrade(ctx, paragraph.ID)
		if err != nil {
			return err
		}
		if !ok {
			rating = 0
		}
		if err := tx.SetParagraphCanonical(ctx, paragraph.ID, winner.Content, rating); err != nil {
			return err
		}
		approved = paragraph
		approved.Content = winner.Content
		approved.Rating = rating
		approved.IsApproved = true
		return nil
	})
	if err != nil {
		return Paragraph{}, err
	}
	return approved, nil
}

// GradeParagraph records or replaces the user's grade on the paragraph itself
// and recomputes the paragraph rating as the mean of the paragraph grade set.
// A directly re-graded paragraph is no longer certified, so the approval flag
// drops; the grade rows stay, they are the live set now.
func (e *Engine) GradeParagraph(ctx context.Context, paragraphID, userID string, grade int) (ParagraphGrade, error) {
	if grade < GradeMin || grade > GradeMax {
		return ParagraphGrade{}, ErrGradeOutOfRange
	}
	var saved ParagraphGrade
	err := e.store.InTx(ctx, func(tx Tx) error {
		paragraph, err := tx.GetParagraphForUpdate(ctx, paragraphID)
		if err != nil {
			return err
		}
		now := time.Now()
		saved, err = tx.UpsertParagraphGrade(ctx, ParagraphGrade{
			ParagraphID: paragraph.ID,
			UserID:      userID,
			Grade:       grade,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		if err != nil {
			return err
		}
		return e.refreshParagraphRating(ctx, tx, paragraph)
	})
	if err != nil {
		return ParagraphGrade{}, err
	}
	return saved, nil
}

// UngradeParagraph withdraws the user's paragraph-level grade. Emptying the
// set drives the paragraph rating to zero without failing.
func (e *Engine) UngradeParagraph(ctx context.Context, paragraphID, userID string) (ParagraphGrade, error) {
	var removed ParagraphGrade
	err := e.store.InTx(ctx, func(tx Tx) error {
		paragraph, err := tx.GetParagraphForUpdate(ctx, paragraphID)
		if err != nil {
			return err
		}
		removed, err = tx.DeleteParagraphGrade(ctx, paragraph.ID, userID)
		if err != nil {
			return err
		}
		return e.refreshParagraphRating(ctx, tx, paragraph)
	})
	if err != nil {
		return ParagraphGrade{}, err
	}
	return removed, nil
}
