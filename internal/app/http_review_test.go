package app

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"ideaforge/api/internal/revision"
	"ideaforge/api/internal/store"
)

func seedReviewData(data *fakeData) {
	data.documents["doc_1"] = store.Document{ID: "doc_1", StageID: "stg_1", Title: "Doc", CreatedBy: "usr_1"}
	data.paragraphs["par_1"] = revision.Paragraph{ID: "par_1", DocumentID: "doc_1", Ordinal: 1, Content: "Canonical."}
	data.editions["ped_1"] = revision.Edition{ID: "ped_1", ParagraphID: "par_1", AuthorID: "usr_1", Content: "Canonical."}
}

func authedRequest(t *testing.T, svc *Service, method, path, body string) *http.Request {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
	}
	req.Header.Set("Authorization", "Bearer "+accessToken(t, svc, "usr_1"))
	return req
}

func TestCreateParagraphRequiresContent(t *testing.T) {
	data := newFakeData()
	seedUser(data)
	seedReviewData(data)
	svc := newTestService(data, &fakeEngine{})
	server := NewHTTPServer(svc, "*")

	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, authedRequest(t, svc, http.MethodPost, "/api/documents/doc_1/paragraphs", `{"content":"   "}`))

	assertErrorCode(t, rr, http.StatusUnprocessableEntity, "VALIDATION_ERROR")
}

func TestCreateParagraphUnknownDocumentReturnsNotFound(t *testing.T) {
	data := newFakeData()
	seedUser(data)
	svc := newTestService(data, &fakeEngine{})
	server := NewHTTPServer(svc, "*")

	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, authedRequest(t, svc, http.MethodPost, "/api/documents/doc_missing/paragraphs", `{"content":"Text."}`))

	assertErrorCode(t, rr, http.StatusNotFound, "NOT_FOUND")
}

func TestGradeEditionOutOfRangeReturnsValidationError(t *testing.T) {
	data := newFakeData()
	seedUser(data)
	seedReviewData(data)
	engine := &fakeEngine{
		gradeEditionFn: func(_ context.Context, _, _ string, _ int) (revision.EditionGrade, error) {
			return revision.EditionGrade{}, revision.ErrGradeOutOfRange
		},
	}
	svc := newTestService(data, engine)
	server := NewHTTPServer(svc, "*")

	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, authedRequest(t, svc, http.MethodPut, "/api/editions/ped_1/grade", `{"grade":11}`))

	assertErrorCode(t, rr, http.StatusUnprocessableEntity, "VALIDATION_ERROR")
}

func TestRemoveLastEditionReturnsConflict(t *testing.T) {
	data := newFakeData()
	seedUser(data)
	seedReviewData(data)
	engine := &fakeEngine{
		removeEditionFn: func(_ context.Context, _ string) (revision.Edition, error) {
			return revision.Edition{}, revision.ErrLastEdition
		},
	}
	svc := newTestService(data, engine)
	server := NewHTTPServer(svc, "*")

	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, authedRequest(t, svc, http.MethodDelete, "/api/editions/ped_1", ""))

	assertErrorCode(t, rr, http.StatusConflict, "LAST_EDITION")
}

func TestGradeUnknownEditionReturnsNotFound(t *testing.T) {
	data := newFakeData()
	seedUser(data)
	engine := &fakeEngine{
		gradeEditionFn: func(_ context.Context, _, _ string, _ int) (revision.EditionGrade, error) {
			return revision.EditionGrade{}, revision.ErrNotFound
		},
	}
	svc := newTestService(data, engine)
	server := NewHTTPServer(svc, "*")

	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, authedRequest(t, svc, http.MethodPut, "/api/editions/ped_missing/grade", `{"grade":5}`))

	assertErrorCode(t, rr, http.StatusNotFound, "NOT_FOUND")
}

func TestGradeEditionReturnsGradeView(t *testing.T) {
	data := newFakeData()
	seedUser(data)
	seedReviewData(data)
	svc := newTestService(data, &fakeEngine{})
	server := NewHTTPServer(svc, "*")

	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, authedRequest(t, svc, http.MethodPut, "/api/editions/ped_1/grade", `{"grade":8}`))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	payload := decodePayload(t, rr)
	if payload["grade"] != float64(8) || payload["userId"] != "usr_1" {
		t.Fatalf("unexpected payload: %v", payload)
	}
}

func TestApproveParagraphReturnsParagraphView(t *testing.T) {
	data := newFakeData()
	seedUser(data)
	seedReviewData(data)
	svc := newTestService(data, &fakeEngine{})
	server := NewHTTPServer(svc, "*")

	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, authedRequest(t, svc, http.MethodPost, "/api/paragraphs/par_1/approve", ""))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	payload := decodePayload(t, rr)
	if payload["isApproved"] != true {
		t.Fatalf("unexpected payload: %v", payload)
	}
}

func TestParagraphDetailIncludesEditionsAndGrades(t *testing.T) {
	data := newFakeData()
	seedUser(data)
	seedReviewData(data)
	data.editionGrades["ped_1"] = []revision.EditionGrade{{EditionID: "ped_1", UserID: "usr_1", Grade: 7}}
	data.paragraphGrades["par_1"] = []revision.ParagraphGrade{{ParagraphID: "par_1", UserID: "usr_1", Grade: 9}}
	svc := newTestService(data, &fakeEngine{})
	server := NewHTTPServer(svc, "*")

	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, authedRequest(t, svc, http.MethodGet, "/api/paragraphs/par_1", ""))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	payload := decodePayload(t, rr)
	editions, ok := payload["editions"].([]any)
	if !ok || len(editions) != 1 {
		t.Fatalf("unexpected editions: %v", payload["editions"])
	}
	grades, ok := payload["paragraphGrades"].([]any)
	if !ok || len(grades) != 1 {
		t.Fatalf("unexpected paragraphGrades: %v", payload["paragraphGrades"])
	}
}

func TestUpdateOtherAuthorsCommentReturnsNotFound(t *testing.T) {
	data := newFakeData()
	seedUser(data)
	seedReviewData(data)
	data.paragraphComments["pcm_1"] = store.ParagraphComment{
		ID: "pcm_1", ParagraphID: "par_1", AuthorID: "usr_other", Body: "Theirs.",
	}
	svc := newTestService(data, &fakeEngine{})
	server := NewHTTPServer(svc, "*")

	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, authedRequest(t, svc, http.MethodPut, "/api/paragraphs/par_1/comments/pcm_1", `{"body":"Mine now."}`))

	assertErrorCode(t, rr, http.StatusNotFound, "NOT_FOUND")
}

func TestCreateAndListParagraphComments(t *testing.T) {
	data := newFakeData()
	seedUser(data)
	seedReviewData(data)
	svc := newTestService(data, &fakeEngine{})
	server := NewHTTPServer(svc, "*")

	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, authedRequest(t, svc, http.MethodPost, "/api/paragraphs/par_1/comments", `{"body":"Nice paragraph."}`))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, authedRequest(t, svc, http.MethodGet, "/api/paragraphs/par_1/comments", ""))
	payload := decodePayload(t, rr)
	comments, ok := payload["comments"].([]any)
	if !ok || len(comments) != 1 {
		t.Fatalf("unexpected comments: %v", payload["comments"])
	}
}

func TestExportDocumentAsHTML(t *testing.T) {
	data := newFakeData()
	seedUser(data)
	seedReviewData(data)
	svc := newTestService(data, &fakeEngine{})
	server := NewHTTPServer(svc, "*")

	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, authedRequest(t, svc, http.MethodGet, "/api/documents/doc_1/export?format=html", ""))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	if got := rr.Header().Get("Content-Type"); got != "text/html; charset=utf-8" {
		t.Fatalf("unexpected content type %q", got)
	}
	if !bytes.Contains(rr.Body.Bytes(), []byte("Canonical.")) {
		t.Fatal("exported HTML missing canonical paragraph content")
	}
}

func TestExportUnknownFormatReturnsValidationError(t *testing.T) {
	data := newFakeData()
	seedUser(data)
	seedReviewData(data)
	svc := newTestService(data, &fakeEngine{})
	server := NewHTTPServer(svc, "*")

	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, authedRequest(t, svc, http.MethodGet, "/api/documents/doc_1/export?format=epub", ""))

	assertErrorCode(t, rr, http.StatusUnprocessableEntity, "VALIDATION_ERROR")
}

func TestSearchWithoutBackendReturnsEmptyResults(t *testing.T) {
	data := newFakeData()
	seedUser(data)
	svc := newTestService(data, &fakeEngine{})
	server := NewHTTPServer(svc, "*")

	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, authedRequest(t, svc, http.MethodGet, "/api/search?q=hello", ""))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	payload := decodePayload(t, rr)
	results, ok := payload["results"].([]any)
	if !ok || len(results) != 0 {
		t.Fatalf("unexpected results: %v", payload["results"])
	}
}
