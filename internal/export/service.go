package export

import (
	"context"
	"fmt"
)

// DataStore defines the data access the exporter needs.
type DataStore interface {
	GetDocument(ctx context.Context, id string) (DocumentInfo, error)
	ListParagraphs(ctx context.Context, documentID string) ([]ParagraphInfo, error)
	ListEditions(ctx context.Context, paragraphID string) ([]EditionInfo, error)
}

// DocumentInfo holds basic document metadata
type DocumentInfo struct {
	ID        string
	Title     string
	StageName string
	Author    string
	UpdatedAt interface{} // time.Time or string
}

// ParagraphInfo holds a paragraph's canonical state for export.
type ParagraphInfo struct {
	ID         string
	Ordinal    int
	Content    string
	Rating     float64
	IsApproved bool
}

// EditionInfo holds a competing edition for the appendix.
type EditionInfo struct {
	Author  string
	Content string
	Rating  float64
}

// Service provides document export functionality
type Service struct {
	store DataStore
}

func NewService(store DataStore) *Service {
	return &Service{store: store}
}

// Export renders the document's paragraphs in ordinal order and generates
// output in the requested format.
func (s *Service) Export(ctx context.Context, req Request) (*Result, error) {
	docInfo, err := s.store.GetDocument(ctx, req.DocumentID)
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}

	paragraphs, err := s.store.ListParagraphs(ctx, req.DocumentID)
	if err != nil {
		return nil, fmt.Errorf("list paragraphs: %w", err)
	}

	data := TemplateData{
		Title:      docInfo.Title,
		StageName:  docInfo.StageName,
		Author:     docInfo.Author,
		Paragraphs: []TemplateParagraph{},
	}

	for _, p := range paragraphs {
		if req.ApprovedOnly && !p.IsApproved {
			continue
		}

		paragraph := TemplateParagraph{
			Ordinal:    p.Ordinal,
			Content:    p.Content,
			Rating:     p.Rating,
			IsApproved: p.IsApproved,
			Editions:   []TemplateEdition{},
		}

		if req.IncludeEditions {
			editions, err := s.store.ListEditions(ctx, p.ID)
			if err == nil {
				for _, e := range editions {
					paragraph.Editions = append(paragraph.Editions, TemplateEdition{
						Author:  e.Author,
						Content: e.Content,
						Rating:  e.Rating,
					})
				}
			}
		}

		data.Paragraphs = append(data.Paragraphs, paragraph)
	}

	html, err := RenderDocumentHTML(data)
	if err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}

	switch req.Format {
	case FormatHTML:
		return &Result{
			Data:     []byte(html),
			Filename: sanitizeFilename(docInfo.Title) + ".html",
			MimeType: "text/html; charset=utf-8",
		}, nil
	case FormatPDF:
		return exportPDF(html, docInfo.Title)
	case FormatDOCX:
		return exportDOCX(html, docInfo.Title)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, req.Format)
	}
}
