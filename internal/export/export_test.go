package export

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestRenderDocumentHTML(t *testing.T) {
	data := TemplateData{
		Title:     "Launch Plan",
		StageName: "Review",
		Author:    "Avery",
		Paragraphs: []TemplateParagraph{
			{Ordinal: 1, Content: "First paragraph.", Rating: 7.5, IsApproved: true},
			{Ordinal: 2, Content: "Second paragraph.", Rating: 0},
		},
	}

	html, err := RenderDocumentHTML(data)
	if err != nil {
		t.Fatalf("RenderDocumentHTML() error = %v", err)
	}
	for _, want := range []string{"Launch Plan", "Review", "Avery", "First paragraph.", "Second paragraph.", "7.5", "approved"} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered HTML missing %q", want)
		}
	}
}

func TestRenderDocumentHTMLEscapesContent(t *testing.T) {
	html, err := RenderDocumentHTML(TemplateData{
		Title:      "Doc",
		Paragraphs: []TemplateParagraph{{Ordinal: 1, Content: "<script>alert(1)</script>"}},
	})
	if err != nil {
		t.Fatalf("RenderDocumentHTML() error = %v", err)
	}
	if strings.Contains(html, "<script>alert(1)</script>") {
		t.Error("paragraph content was not escaped")
	}
}

func TestRenderDocumentHTMLIncludesEditions(t *testing.T) {
	html, err := RenderDocumentHTML(TemplateData{
		Title: "Doc",
		Paragraphs: []TemplateParagraph{{
			Ordinal: 1,
			Content: "Winner text.",
			Editions: []TemplateEdition{
				{Author: "Briar", Content: "Alternative text.", Rating: 4},
			},
		}},
	})
	if err != nil {
		t.Fatalf("RenderDocumentHTML() error = %v", err)
	}
	if !strings.Contains(html, "Alternative text.") || !strings.Contains(html, "Briar") {
		t.Error("editions appendix missing from rendered HTML")
	}
}

type fakeExportStore struct {
	doc        DocumentInfo
	paragraphs []ParagraphInfo
	editions   map[string][]EditionInfo
}

func (f *fakeExportStore) GetDocument(ctx context.Context, id string) (DocumentInfo, error) {
	if f.doc.ID != id {
		return DocumentInfo{}, errors.New("not found")
	}
	return f.doc, nil
}

func (f *fakeExportStore) ListParagraphs(ctx context.Context, documentID string) ([]ParagraphInfo, error) {
	return f.paragraphs, nil
}

func (f *fakeExportStore) ListEditions(ctx context.Context, paragraphID string) ([]EditionInfo, error) {
	return f.editions[paragraphID], nil
}

func TestExportHTMLFormat(t *testing.T) {
	svc := NewService(&fakeExportStore{
		doc:        DocumentInfo{ID: "doc_1", Title: "Launch Plan"},
		paragraphs: []ParagraphInfo{{ID: "par_1", Ordinal: 1, Content: "First paragraph."}},
	})

	result, err := svc.Export(context.Background(), Request{DocumentID: "doc_1", Format: FormatHTML})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if result.MimeType != "text/html; charset=utf-8" {
		t.Errorf("mime type = %q", result.MimeType)
	}
	if result.Filename != "Launch-Plan.html" {
		t.Errorf("filename = %q", result.Filename)
	}
	if !strings.Contains(string(result.Data), "First paragraph.") {
		t.Error("rendered HTML missing paragraph content")
	}
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	svc := NewService(&fakeExportStore{doc: DocumentInfo{ID: "doc_1", Title: "Doc"}})
	_, err := svc.Export(context.Background(), Request{DocumentID: "doc_1", Format: "epub"})
	if !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestExportUnknownDocument(t *testing.T) {
	svc := NewService(&fakeExportStore{doc: DocumentInfo{ID: "doc_1"}})
	if _, err := svc.Export(context.Background(), Request{DocumentID: "doc_missing", Format: FormatPDF}); err == nil {
		t.Fatal("expected unknown document to fail")
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Launch Plan", "Launch-Plan"},
		{"a/b\\c:d", "abcd"},
		{"notes_v2", "notes_v2"},
		{"", "document"},
	}
	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPercentEncodeForDataURL(t *testing.T) {
	encoded := percentEncodeForDataURL("<p>a b</p>")
	if strings.Contains(encoded, " ") {
		t.Error("encoded data URL contains a raw space")
	}
	if strings.Contains(encoded, "#") {
		t.Error("encoded data URL contains a raw hash")
	}
}

func TestPercentEncodeForDataURLMultibyte(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"é", "%C3%A9"},
		{"café", "caf%C3%A9"},
		{"段落", "%E6%AE%B5%E8%90%BD"},
	}
	for _, tt := range tests {
		if got := percentEncodeForDataURL(tt.in); got != tt.want {
			t.Errorf("percentEncodeForDataURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
