package revision

import "context"

// aggregateEditionRating recomputes one edition's rating as the mean of its
// grade rows and persists it. An empty grade set aggregates to zero; the same
// policy applies on every create, update and remove path.
func (e *Engine) aggregateEditionRating(ctx context.Context, tx Tx, editionID string) (float64, error) {
	rating, ok, err := tx.AverageEditionGrade(ctx, editionID)
	if err != nil {
		return 0, err
	}
	if !ok {
		rating = 0
	}
	if err := tx.SetEditionRating(ctx, editionID, rating); err != nil {
		return 0, err
	}
	return rating, nil
}

// selectCanonical picks the paragraph's winning edition. Every paragraph is
// created together with its first edition, so at least one row exists.
func (e *Engine) selectCanonical(ctx context.Context, tx Tx, paragraphID string) (Edition, error) {
	return tx.TopRatedEdition(ctx, paragraphID)
}

// invalidateApproval clears the approval flag and discards the snapshot grade
// rows. Approval certifies a specific piece of content; once the underlying
// text set changes the certification must be re-earned.
func (e *Engine) invalidateApproval(ctx context.Context, tx Tx, paragraphID string) error {
	if err := tx.SetParagraphApproved(ctx, paragraphID, false); err != nil {
		return err
	}
	return tx.DeleteParagraphGrades(ctx, paragraphID)
}

// replaceSnapshot swaps the paragraph grade set for a copy of the winning
// edition's grades. Replace, not merge: prior rows are deleted first.
func (e *Engine) replaceSnapshot(ctx context.Context, tx Tx, paragraphID, winnerID string) error {
	if err := tx.DeleteParagraphGrades(ctx, paragraphID); err != nil {
		return err
	}
	return tx.CopyEditionGradesToParagraph(ctx, winnerID, paragraphID)
}

// synchronize projects the winner onto the paragraph row. If the winning
// content changed while an approval was invalidated in this same cycle, the
// snapshot is replaced with the new winner's grades.
func (e *Engine) synchronize(ctx context.Context, tx Tx, paragraph Paragraph, winner Edition, wasApproved bool) error {
	if err := tx.SetParagraphCanonical(ctx, paragraph.ID, winner.Content, winner.Rating); err != nil {
		return err
	}
	if wasApproved && winner.Content != paragraph.Content {
		return e.replaceSnapshot(ctx, tx, paragraph.ID, winner.ID)
	}
	return nil
}

// refreshAfterEditionChange runs after a structural edition mutation (create,
// rewrite, remove). Any of those invalidates an approval outright.
func (e *Engine) refreshAfterEditionChange(ctx context.Context, tx Tx, paragraph Paragraph) error {
	wasApproved := paragraph.IsApproved
	if wasApproved {
		if err := e.invalidateApproval(ctx, tx, paragraph.ID); err != nil {
			return err
		}
	}
	winner, err := e.selectCanonical(ctx, tx, paragraph.ID)
	if err != nil {
		return err
	}
	return e.synchronize(ctx, tx, paragraph, winner, wasApproved)
}

// refreshAfterGradeChange runs after an edition-grade mutation. While the
// paragraph is unapproved it floats with the winner. While approved it stays
// frozen unless the grade shift changed which content wins, in which case the
// approval is invalidated and the new winner takes over.
func (e *Engine) refreshAfterGradeChange(ctx context.Context, tx Tx, paragraph Paragraph, editionID string) error {
	if _, err := e.aggregateEditionRating(ctx, tx, editionID); err != nil {
		return err
	}
	winner, err := e.selectCanonical(ctx, tx, paragraph.ID)
	if err != nil {
		return err
	}
	if paragraph.IsApproved && winner.Content == paragraph.Content {
		return nil
	}
	wasApproved := paragraph.IsApproved
	if wasApproved {
		if err := e.invalidateApproval(ctx, tx, paragraph.ID); err != nil {
			return err
		}
	}
	return e.synchronize(ctx, tx, paragraph, winner, wasApproved)
}

// refreshParagraphRating recomputes the paragraph rating from the paragraph
// grade set after a direct paragraph-grade mutation and drops a stale
// approval flag. The grade rows themselves are kept: they are the live set.
func (e *Engine) refreshParagraphRating(ctx context.Context, tx Tx, paragraph Paragraph) error {
	rating, ok, err := tx.AverageParagraphGrade(ctx, paragraph.ID)
	if err != nil {
		return err
	}
	if !ok {
		rating = 0
	}
	if err := tx.SetParagraphRating(ctx, paragraph.ID, rating); err != nil {
		return err
	}
	if paragraph.IsApproved {
		return tx.SetParagraphApproved(ctx, paragraph.ID, false)
	}
	return nil
}
