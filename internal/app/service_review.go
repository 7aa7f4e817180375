package app

import (
	"context"
	"log"
	"net/http"
	"strings"

	"ideaforge/api/internal/history"
	"ideaforge/api/internal/revision"
	"ideaforge/api/internal/search"
	"ideaforge/api/internal/store"
	"ideaforge/api/internal/util"
)

// CreateParagraph appends a paragraph (and its seed edition) to a document.
func (s *Service) CreateParagraph(ctx context.Context, documentID, authorID, content string, ordinal int) (map[string]any, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "content is required", nil)
	}
	if _, err := s.store.GetDocument(ctx, documentID); err != nil {
		return nil, err
	}
	if ordinal <= 0 {
		existing, err := s.store.ListParagraphs(ctx, documentID)
		if err != nil {
			return nil, err
		}
		ordinal = len(existing) + 1
	}

	paragraph, err := s.engine.CreateParagraph(ctx, documentID, authorID, ordinal, content)
	if err != nil {
		return nil, mapRevisionError(err)
	}

	s.afterCanonicalChange(ctx, paragraph.ID, authorID, "Add paragraph")
	return paragraphView(paragraph), nil
}

// GetParagraphDetail returns the paragraph with its editions and grade sets.
func (s *Service) GetParagraphDetail(ctx context.Context, paragraphID string) (map[string]any, error) {
	paragraph, err := s.store.GetParagraph(ctx, paragraphID)
	if err != nil {
		return nil, err
	}
	view := paragraphView(paragraph)

	editions, err := s.store.ListEditions(ctx, paragraphID)
	if err != nil {
		return nil, err
	}
	editionViews := make([]map[string]any, 0, len(editions))
	for _, ed := range editions {
		edView := editionView(ed)
		grades, err := s.store.ListEditionGrades(ctx, ed.ID)
		if err != nil {
			return nil, err
		}
		gradeViews := make([]map[string]any, 0, len(grades))
		for _, g := range grades {
			gradeViews = append(gradeViews, editionGradeView(g))
		}
		edView["grades"] = gradeViews
		editionViews = append(editionViews, edView)
	}
	view["editions"] = editionViews

	paragraphGrades, err := s.store.ListParagraphGrades(ctx, paragraphID)
	if err != nil {
		return nil, err
	}
	pgViews := make([]map[string]any, 0, len(paragraphGrades))
	for _, g := range paragraphGrades {
		pgViews = append(pgViews, paragraphGradeView(g))
	}
	view["paragraphGrades"] = pgViews
	return view, nil
}

// DeleteParagraph removes a paragraph with everything under it.
func (s *Service) DeleteParagraph(ctx context.Context, paragraphID string) error {
	paragraph, err := s.store.GetParagraph(ctx, paragraphID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteParagraph(ctx, paragraphID); err != nil {
		return err
	}
	if s.search != nil {
		s.search.DeleteParagraph(paragraphID)
	}
	s.commitDocumentHistory(ctx, paragraph.DocumentID, "", "Remove paragraph")
	return nil
}

// CreateEdition adds a competing rewrite.
func (s *Service) CreateEdition(ctx context.Context, paragraphID, authorID, content string) (map[string]any, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "content is required", nil)
	}
	edition, err := s.engine.CreateEdition(ctx, paragraphID, authorID, content)
	if err != nil {
		return nil, mapRevisionError(err)
	}
	s.afterCanonicalChange(ctx, paragraphID, authorID, "Add edition")
	return editionView(edition), nil
}

// UpdateEdition rewrites an edition's text.
func (s *Service) UpdateEdition(ctx context.Context, editionID, actorID, content string) (map[string]any, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "content is required", nil)
	}
	edition, err := s.engine.UpdateEdition(ctx, editionID, content)
	if err != nil {
		return nil, mapRevisionError(err)
	}
	s.afterCanonicalChange(ctx, edition.ParagraphID, actorID, "Rewrite edition")
	return editionView(edition), nil
}

// RemoveEdition deletes an edition; the paragraph's last edition is kept.
func (s *Service) RemoveEdition(ctx context.Context, editionID, actorID string) (map[string]any, error) {
	edition, err := s.engine.RemoveEdition(ctx, editionID)
	if err != nil {
		return nil, mapRevisionError(err)
	}
	s.afterCanonicalChange(ctx, edition.ParagraphID, actorID, "Remove edition")
	return editionView(edition), nil
}

// GradeEdition records the caller's grade for an edition.
func (s *Service) GradeEdition(ctx context.Context, editionID, userID string, grade int) (map[string]any, error) {
	saved, err := s.engine.GradeEdition(ctx, editionID, userID, grade)
	if err != nil {
		return nil, mapRevisionError(err)
	}
	s.afterGradeChange(ctx, editionID, userID)
	return editionGradeView(saved), nil
}

// UngradeEdition withdraws the caller's grade from an edition.
func (s *Service) UngradeEdition(ctx context.Context, editionID, userID string) (map[string]any, error) {
	removed, err := s.engine.UngradeEdition(ctx, editionID, userID)
	if err != nil {
		return nil, mapRevisionError(err)
	}
	s.afterGradeChange(ctx, editionID, userID)
	return editionGradeView(removed), nil
}

// ApproveParagraph certifies the paragraph's current winner.
func (s *Service) ApproveParagraph(ctx context.Context, paragraphID, actorID string) (map[string]any, error) {
	paragraph, err := s.engine.ApproveParagraph(ctx, paragraphID)
	if err != nil {
		return nil, mapRevisionError(err)
	}
	s.afterCanonicalChange(ctx, paragraph.ID, actorID, "Approve paragraph")
	return paragraphView(paragraph), nil
}

// GradeParagraph records the caller's direct paragraph grade.
func (s *Service) GradeParagraph(ctx context.Context, paragraphID, userID string, grade int) (map[string]any, error) {
	saved, err := s.engine.GradeParagraph(ctx, paragraphID, userID, grade)
	if err != nil {
		return nil, mapRevisionError(err)
	}
	s.reindexParagraph(ctx, paragraphID)
	return paragraphGradeView(saved), nil
}

// UngradeParagraph withdraws the caller's direct paragraph grade.
func (s *Service) UngradeParagraph(ctx context.Context, paragraphID, userID string) (map[string]any, error) {
	removed, err := s.engine.UngradeParagraph(ctx, paragraphID, userID)
	if err != nil {
		return nil, mapRevisionError(err)
	}
	s.reindexParagraph(ctx, paragraphID)
	return paragraphGradeView(removed), nil
}

// afterGradeChange resolves the edition's paragraph and reindexes it; an
// edition-grade shift can move the canonical content.
func (s *Service) afterGradeChange(ctx context.Context, editionID, actorID string) {
	edition, err := s.store.GetEdition(ctx, editionID)
	if err != nil {
		return
	}
	s.afterCanonicalChange(ctx, edition.ParagraphID, actorID, "Regrade edition")
}

// afterCanonicalChange reindexes the paragraph and records a history commit
// after a mutation that may have changed the canonical projection. Both are
// best-effort: the transaction already committed.
func (s *Service) afterCanonicalChange(ctx context.Context, paragraphID, actorID, message string) {
	paragraph := s.reindexParagraph(ctx, paragraphID)
	if paragraph == nil {
		return
	}
	s.commitDocumentHistory(ctx, paragraph.DocumentID, actorID, message)
}

func (s *Service) reindexParagraph(ctx context.Context, paragraphID string) *revision.Paragraph {
	paragraph, err := s.store.GetParagraph(ctx, paragraphID)
	if err != nil {
		return nil
	}
	if s.search != nil {
		s.search.IndexParagraph(search.ParagraphRecord{
			ID:         paragraph.ID,
			Content:    paragraph.Content,
			DocumentID: paragraph.DocumentID,
			Ordinal:    paragraph.Ordinal,
			Rating:     paragraph.Rating,
			IsApproved: paragraph.IsApproved,
		})
	}
	return &paragraph
}

func (s *Service) commitDocumentHistory(ctx context.Context, documentID, actorID, message string) {
	if s.history == nil {
		return
	}
	document, err := s.store.GetDocument(ctx, documentID)
	if err != nil {
		return
	}
	paragraphs, err := s.store.ListParagraphs(ctx, documentID)
	if err != nil {
		return
	}

	snapshot := history.Snapshot{Title: document.Title}
	for _, p := range paragraphs {
		snapshot.Paragraphs = append(snapshot.Paragraphs, history.ParagraphSnapshot{
			ID:         p.ID,
			Ordinal:    p.Ordinal,
			Content:    p.Content,
			Rating:     p.Rating,
			IsApproved: p.IsApproved,
		})
	}

	author := "system"
	if actorID != "" {
		if user, err := s.store.GetUserByID(ctx, actorID); err == nil {
			author = user.DisplayName
		}
	}

	go func() {
		if err := s.history.EnsureDocumentRepo(documentID, snapshot, author); err != nil {
			log.Printf("history: ensure repo for %s: %v", documentID, err)
			return
		}
		if _, err := s.history.CommitSnapshot(documentID, snapshot, author, message); err != nil {
			log.Printf("history: commit for %s: %v", documentID, err)
		}
	}()
}

// ListParagraphComments returns a paragraph's discussion thread.
func (s *Service) ListParagraphComments(ctx context.Context, paragraphID string) ([]map[string]any, error) {
	if _, err := s.store.GetParagraph(ctx, paragraphID); err != nil {
		return nil, err
	}
	items, err := s.store.ListParagraphComments(ctx, paragraphID)
	if err != nil {
		return nil, err
	}
	views := make([]map[string]any, 0, len(items))
	for _, item := range items {
		views = append(views, map[string]any{
			"id":          item.ID,
			"paragraphId": item.ParagraphID,
			"authorId":    item.AuthorID,
			"body":        item.Body,
			"createdAt":   item.CreatedAt,
			"updatedAt":   item.UpdatedAt,
		})
	}
	return views, nil
}

func (s *Service) CreateParagraphComment(ctx context.Context, paragraphID, authorID, body string) (map[string]any, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "body is required", nil)
	}
	if _, err := s.store.GetParagraph(ctx, paragraphID); err != nil {
		return nil, err
	}
	item := store.ParagraphComment{
		ID:          util.NewID("pcm"),
		ParagraphID: paragraphID,
		AuthorID:    authorID,
		Body:        body,
	}
	if err := s.store.InsertParagraphComment(ctx, item); err != nil {
		return nil, err
	}
	return map[string]any{
		"id":          item.ID,
		"paragraphId": item.ParagraphID,
		"authorId":    item.AuthorID,
		"body":        item.Body,
	}, nil
}

func (s *Service) UpdateParagraphComment(ctx context.Context, commentID, authorID, body string) error {
	body = strings.TrimSpace(body)
	if body == "" {
		return domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "body is required", nil)
	}
	return s.store.UpdateParagraphComment(ctx, commentID, authorID, body)
}

func (s *Service) DeleteParagraphComment(ctx context.Context, commentID, authorID string) error {
	return s.store.DeleteParagraphComment(ctx, commentID, authorID)
}

// ListEditionComments returns an edition's discussion thread.
func (s *Service) ListEditionComments(ctx context.Context, editionID string) ([]map[string]any, error) {
	if _, err := s.store.GetEdition(ctx, editionID); err != nil {
		return nil, err
	}
	items, err := s.store.ListEditionComments(ctx, editionID)
	if err != nil {
		return nil, err
	}
	views := make([]map[string]any, 0, len(items))
	for _, item := range items {
		views = append(views, map[string]any{
			"id":        item.ID,
			"editionId": item.EditionID,
			"authorId":  item.AuthorID,
			"body":      item.Body,
			"createdAt": item.CreatedAt,
			"updatedAt": item.UpdatedAt,
		})
	}
	return views, nil
}

func (s *Service) CreateEditionComment(ctx context.Context, editionID, authorID, body string) (map[string]any, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "body is required", nil)
	}
	if _, err := s.store.GetEdition(ctx, editionID); err != nil {
		return nil, err
	}
	item := store.EditionComment{
		ID:        util.NewID("ecm"),
		EditionID: editionID,
		AuthorID:  authorID,
		Body:      body,
	}
	if err := s.store.InsertEditionComment(ctx, item); err != nil {
		return nil, err
	}
	return map[string]any{
		"id":        item.ID,
		"editionId": item.EditionID,
		"authorId":  item.AuthorID,
		"body":      item.Body,
	}, nil
}

func (s *Service) UpdateEditionComment(ctx context.Context, commentID, authorID, body string) error {
	body = strings.TrimSpace(body)
	if body == "" {
		return domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "body is required", nil)
	}
	return s.store.UpdateEditionComment(ctx, commentID, authorID, body)
}

func (s *Service) DeleteEditionComment(ctx context.Context, commentID, authorID string) error {
	return s.store.DeleteEditionComment(ctx, commentID, authorID)
}

func paragraphView(p revision.Paragraph) map[string]any {
	return map[string]any{
		"id":         p.ID,
		"documentId": p.DocumentID,
		"ordinal":    p.Ordinal,
		"content":    p.Content,
		"rating":     p.Rating,
		"isApproved": p.IsApproved,
		"createdAt":  p.CreatedAt,
		"updatedAt":  p.UpdatedAt,
	}
}

func editionView(e revision.Edition) map[string]any {
	return map[string]any{
		"id":          e.ID,
		"paragraphId": e.ParagraphID,
		"authorId":    e.AuthorID,
		"content":     e.Content,
		"rating":      e.Rating,
		"createdAt":   e.CreatedAt,
		"updatedAt":   e.UpdatedAt,
	}
}

func editionGradeView(g revision.EditionGrade) map[string]any {
	return map[string]any{
		"editionId": g.EditionID,
		"userId":    g.UserID,
		"grade":     g.Grade,
		"createdAt": g.CreatedAt,
		"updatedAt": g.UpdatedAt,
	}
}

func paragraphGradeView(g revision.ParagraphGrade) map[string]any {
	return map[string]any{
		"paragraphId": g.ParagraphID,
		"userId":      g.UserID,
		"grade":       g.Grade,
		"createdAt":   g.CreatedAt,
		"updatedAt":   g.UpdatedAt,
	}
}
