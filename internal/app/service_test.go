package app

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"ideaforge/api/internal/auth"
	"ideaforge/api/internal/config"
	"ideaforge/api/internal/export"
	"ideaforge/api/internal/revision"
	"ideaforge/api/internal/store"
)

// fakeData is a map-backed dataStore for handler and service tests.
type fakeData struct {
	users             map[string]store.User
	revokedJTIs       map[string]bool
	projects          map[string]store.Project
	stages            map[string]store.Stage
	documents         map[string]store.Document
	paragraphs        map[string]revision.Paragraph
	editions          map[string]revision.Edition
	editionGrades     map[string][]revision.EditionGrade
	paragraphGrades   map[string][]revision.ParagraphGrade
	paragraphComments map[string]store.ParagraphComment
	editionComments   map[string]store.EditionComment
}

func newFakeData() *fakeData {
	return &fakeData{
		users:             make(map[string]store.User),
		revokedJTIs:       make(map[string]bool),
		projects:          make(map[string]store.Project),
		stages:            make(map[string]store.Stage),
		documents:         make(map[string]store.Document),
		paragraphs:        make(map[string]revision.Paragraph),
		editions:          make(map[string]revision.Edition),
		editionGrades:     make(map[string][]revision.EditionGrade),
		paragraphGrades:   make(map[string][]revision.ParagraphGrade),
		paragraphComments: make(map[string]store.ParagraphComment),
		editionComments:   make(map[string]store.EditionComment),
	}
}

func (f *fakeData) GetUserByID(_ context.Context, id string) (store.User, error) {
	if user, ok := f.users[id]; ok {
		return user, nil
	}
	return store.User{}, sql.ErrNoRows
}

func (f *fakeData) GetUserByEmail(_ context.Context, email string) (store.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return store.User{}, sql.ErrNoRows
}

func (f *fakeData) UpdateUserProfile(_ context.Context, id, displayName string) error {
	user, ok := f.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	user.DisplayName = displayName
	f.users[id] = user
	return nil
}

func (f *fakeData) SetUserAvatar(_ context.Context, id, avatarKey string) error {
	user, ok := f.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	user.AvatarKey = avatarKey
	f.users[id] = user
	return nil
}

func (f *fakeData) RevokeAccessToken(_ context.Context, jti string, _ time.Time) error {
	f.revokedJTIs[jti] = true
	return nil
}

func (f *fakeData) IsAccessTokenRevoked(_ context.Context, jti string) (bool, error) {
	return f.revokedJTIs[jti], nil
}

func (f *fakeData) ListProjects(_ context.Context) ([]store.Project, error) {
	items := make([]store.Project, 0, len(f.projects))
	for _, item := range f.projects {
		items = append(items, item)
	}
	return items, nil
}

func (f *fakeData) GetProject(_ context.Context, id string) (store.Project, error) {
	if item, ok := f.projects[id]; ok {
		return item, nil
	}
	return store.Project{}, sql.ErrNoRows
}

func (f *fakeData) InsertProject(_ context.Context, item store.Project) error {
	f.projects[item.ID] = item
	return nil
}

func (f *fakeData) UpdateProject(_ context.Context, id, name, description string) error {
	item, ok := f.projects[id]
	if !ok {
		return sql.ErrNoRows
	}
	item.Name = name
	item.Description = description
	f.projects[id] = item
	return nil
}

func (f *fakeData) DeleteProject(_ context.Context, id string) error {
	if _, ok := f.projects[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.projects, id)
	return nil
}

func (f *fakeData) ListStages(_ context.Context, projectID string) ([]store.Stage, error) {
	items := make([]store.Stage, 0)
	for _, item := range f.stages {
		if item.ProjectID == projectID {
			items = append(items, item)
		}
	}
	return items, nil
}

func (f *fakeData) GetStage(_ context.Context, id string) (store.Stage, error) {
	if item, ok := f.stages[id]; ok {
		return item, nil
	}
	return store.Stage{}, sql.ErrNoRows
}

func (f *fakeData) InsertStage(_ context.Context, item store.Stage) error {
	f.stages[item.ID] = item
	return nil
}

func (f *fakeData) UpdateStage(_ context.Context, id, name, stageType string, sortOrder int) error {
	item, ok := f.stages[id]
	if !ok {
		return sql.ErrNoRows
	}
	item.Name = name
	item.StageType = stageType
	item.SortOrder = sortOrder
	f.stages[id] = item
	return nil
}

func (f *fakeData) DeleteStage(_ context.Context, id string) error {
	if _, ok := f.stages[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.stages, id)
	return nil
}

func (f *fakeData) ListDocuments(_ context.Context) ([]store.Document, error) {
	items := make([]store.Document, 0, len(f.documents))
	for _, item := range f.documents {
		items = append(items, item)
	}
	return items, nil
}

func (f *fakeData) ListDocumentsByStage(_ context.Context, stageID string) ([]store.Document, error) {
	items := make([]store.Document, 0)
	for _, item := range f.documents {
		if item.StageID == stageID {
			items = append(items, item)
		}
	}
	return items, nil
}

func (f *fakeData) GetDocument(_ context.Context, id string) (store.Document, error) {
	if item, ok := f.documents[id]; ok {
		return item, nil
	}
	return store.Document{}, sql.ErrNoRows
}

func (f *fakeData) InsertDocument(_ context.Context, item store.Document) error {
	f.documents[item.ID] = item
	return nil
}

func (f *fakeData) UpdateDocument(_ context.Context, id, title string) error {
	item, ok := f.documents[id]
	if !ok {
		return sql.ErrNoRows
	}
	item.Title = title
	f.documents[id] = item
	return nil
}

func (f *fakeData) SetDocumentCover(_ context.Context, id, coverKey string) error {
	item, ok := f.documents[id]
	if !ok {
		return sql.ErrNoRows
	}
	item.CoverKey = coverKey
	f.documents[id] = item
	return nil
}

func (f *fakeData) DeleteDocument(_ context.Context, id string) error {
	if _, ok := f.documents[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.documents, id)
	return nil
}

func (f *fakeData) ListParagraphs(_ context.Context, documentID string) ([]revision.Paragraph, error) {
	items := make([]revision.Paragraph, 0)
	for _, item := range f.paragraphs {
		if item.DocumentID == documentID {
			items = append(items, item)
		}
	}
	return items, nil
}

func (f *fakeData) GetParagraph(_ context.Context, id string) (revision.Paragraph, error) {
	if item, ok := f.paragraphs[id]; ok {
		return item, nil
	}
	return revision.Paragraph{}, sql.ErrNoRows
}

func (f *fakeData) DeleteParagraph(_ context.Context, id string) error {
	if _, ok := f.paragraphs[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.paragraphs, id)
	return nil
}

func (f *fakeData) ListEditions(_ context.Context, paragraphID string) ([]revision.Edition, error) {
	items := make([]revision.Edition, 0)
	for _, item := range f.editions {
		if item.ParagraphID == paragraphID {
			items = append(items, item)
		}
	}
	return items, nil
}

func (f *fakeData) GetEdition(_ context.Context, id string) (revision.Edition, error) {
	if item, ok := f.editions[id]; ok {
		return item, nil
	}
	return revision.Edition{}, sql.ErrNoRows
}

func (f *fakeData) ListEditionGrades(_ context.Context, editionID string) ([]revision.EditionGrade, error) {
	return f.editionGrades[editionID], nil
}

func (f *fakeData) ListParagraphGrades(_ context.Context, paragraphID string) ([]revision.ParagraphGrade, error) {
	return f.paragraphGrades[paragraphID], nil
}

func (f *fakeData) ListParagraphComments(_ context.Context, paragraphID string) ([]store.ParagraphComment, error) {
	items := make([]store.ParagraphComment, 0)
	for _, item := range f.paragraphComments {
		if item.ParagraphID == paragraphID {
			items = append(items, item)
		}
	}
	return items, nil
}

func (f *fakeData) InsertParagraphComment(_ context.Context, item store.ParagraphComment) error {
	f.paragraphComments[item.ID] = item
	return nil
}

func (f *fakeData) UpdateParagraphComment(_ context.Context, id, authorID, body string) error {
	item, ok := f.paragraphComments[id]
	if !ok || item.AuthorID != authorID {
		return sql.ErrNoRows
	}
	item.Body = body
	f.paragraphComments[id] = item
	return nil
}

func (f *fakeData) DeleteParagraphComment(_ context.Context, id, authorID string) error {
	item, ok := f.paragraphComments[id]
	if !ok || item.AuthorID != authorID {
		return sql.ErrNoRows
	}
	delete(f.paragraphComments, id)
	return nil
}

func (f *fakeData) ListEditionComments(_ context.Context, editionID string) ([]store.EditionComment, error) {
	items := make([]store.EditionComment, 0)
	for _, item := range f.editionComments {
		if item.EditionID == editionID {
			items = append(items, item)
		}
	}
	return items, nil
}

func (f *fakeData) InsertEditionComment(_ context.Context, item store.EditionComment) error {
	f.editionComments[item.ID] = item
	return nil
}

func (f *fakeData) UpdateEditionComment(_ context.Context, id, authorID, body string) error {
	item, ok := f.editionComments[id]
	if !ok || item.AuthorID != authorID {
		return sql.ErrNoRows
	}
	item.Body = body
	f.editionComments[id] = item
	return nil
}

func (f *fakeData) DeleteEditionComment(_ context.Context, id, authorID string) error {
	item, ok := f.editionComments[id]
	if !ok || item.AuthorID != authorID {
		return sql.ErrNoRows
	}
	delete(f.editionComments, id)
	return nil
}

func (f *fakeData) Ping(context.Context) error {
	return nil
}

// fakeSessions keeps refresh sessions in memory.
type fakeSessions struct {
	sessions map[string]store.User
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{sessions: make(map[string]store.User)}
}

func (f *fakeSessions) SaveRefreshSession(_ context.Context, tokenHash string, user store.User, _ time.Time) error {
	f.sessions[tokenHash] = user
	return nil
}

func (f *fakeSessions) LookupRefreshSession(_ context.Context, tokenHash string) (store.User, error) {
	if user, ok := f.sessions[tokenHash]; ok {
		return user, nil
	}
	return store.User{}, sql.ErrNoRows
}

func (f *fakeSessions) RevokeRefreshSession(_ context.Context, tokenHash string) error {
	delete(f.sessions, tokenHash)
	return nil
}

// fakeEngine returns canned values; individual tests override the hooks.
type fakeEngine struct {
	createParagraphFn func(ctx context.Context, documentID, authorID string, ordinal int, content string) (revision.Paragraph, error)
	createEditionFn   func(ctx context.Context, paragraphID, authorID, content string) (revision.Edition, error)
	updateEditionFn   func(ctx context.Context, editionID, content string) (revision.Edition, error)
	removeEditionFn   func(ctx context.Context, editionID string) (revision.Edition, error)
	gradeEditionFn    func(ctx context.Context, editionID, userID string, grade int) (revision.EditionGrade, error)
	ungradeEditionFn  func(ctx context.Context, editionID, userID string) (revision.EditionGrade, error)
	approveFn         func(ctx context.Context, paragraphID string) (revision.Paragraph, error)
	gradeParagraphFn  func(ctx context.Context, paragraphID, userID string, grade int) (revision.ParagraphGrade, error)
	ungradeParaFn     func(ctx context.Context, paragraphID, userID string) (revision.ParagraphGrade, error)
}

func (f *fakeEngine) CreateParagraph(ctx context.Context, documentID, authorID string, ordinal int, content string) (revision.Paragraph, error) {
	if f.createParagraphFn != nil {
		return f.createParagraphFn(ctx, documentID, authorID, ordinal, content)
	}
	return revision.Paragraph{ID: "par_new", DocumentID: documentID, Ordinal: ordinal, Content: content}, nil
}

func (f *fakeEngine) CreateEdition(ctx context.Context, paragraphID, authorID, content string) (revision.Edition, error) {
	if f.createEditionFn != nil {
		return f.createEditionFn(ctx, paragraphID, authorID, content)
	}
	return revision.Edition{ID: "ped_new", ParagraphID: paragraphID, AuthorID: authorID, Content: content}, nil
}

func (f *fakeEngine) UpdateEdition(ctx context.Context, editionID, content string) (revision.Edition, error) {
	if f.updateEditionFn != nil {
		return f.updateEditionFn(ctx, editionID, content)
	}
	return revision.Edition{ID: editionID, Content: content}, nil
}

func (f *fakeEngine) RemoveEdition(ctx context.Context, editionID string) (revision.Edition, error) {
	if f.removeEditionFn != nil {
		return f.removeEditionFn(ctx, editionID)
	}
	return revision.Edition{ID: editionID}, nil
}

func (f *fakeEngine) GradeEdition(ctx context.Context, editionID, userID string, grade int) (revision.EditionGrade, error) {
	if f.gradeEditionFn != nil {
		return f.gradeEditionFn(ctx, editionID, userID, grade)
	}
	return revision.EditionGrade{EditionID: editionID, UserID: userID, Grade: grade}, nil
}

func (f *fakeEngine) UngradeEdition(ctx context.Context, editionID, userID string) (revision.EditionGrade, error) {
	if f.ungradeEditionFn != nil {
		return f.ungradeEditionFn(ctx, editionID, userID)
	}
	return revision.EditionGrade{EditionID: editionID, UserID: userID}, nil
}

func (f *fakeEngine) ApproveParagraph(ctx context.Context, paragraphID string) (revision.Paragraph, error) {
	if f.approveFn != nil {
		return f.approveFn(ctx, paragraphID)
	}
	return revision.Paragraph{ID: paragraphID, IsApproved: true}, nil
}

func (f *fakeEngine) GradeParagraph(ctx context.Context, paragraphID, userID string, grade int) (revision.ParagraphGrade, error) {
	if f.gradeParagraphFn != nil {
		return f.gradeParagraphFn(ctx, paragraphID, userID, grade)
	}
	return revision.ParagraphGrade{ParagraphID: paragraphID, UserID: userID, Grade: grade}, nil
}

func (f *fakeEngine) UngradeParagraph(ctx context.Context, paragraphID, userID string) (revision.ParagraphGrade, error) {
	if f.ungradeParaFn != nil {
		return f.ungradeParaFn(ctx, paragraphID, userID)
	}
	return revision.ParagraphGrade{ParagraphID: paragraphID, UserID: userID}, nil
}

func newTestService(data *fakeData, engine *fakeEngine) *Service {
	svc := &Service{
		cfg: config.Config{
			JWTSecret:  "test-secret",
			AccessTTL:  time.Hour,
			RefreshTTL: 24 * time.Hour,
		},
		store:    data,
		sessions: newFakeSessions(),
		engine:   engine,
	}
	svc.exporter = export.NewService(&exportStore{svc: svc})
	return svc
}

func seedUser(data *fakeData) store.User {
	user := store.User{ID: "usr_1", DisplayName: "Avery", Email: "avery@example.com", IsEmailVerified: true}
	data.users[user.ID] = user
	return user
}

func accessToken(t *testing.T, svc *Service, userID string) string {
	t.Helper()
	session, err := svc.CreateSession(context.Background(), userID)
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	return session.Token
}

func TestCreateSessionIssuesParsableToken(t *testing.T) {
	data := newFakeData()
	user := seedUser(data)
	svc := newTestService(data, &fakeEngine{})

	session, err := svc.CreateSession(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	if session.RefreshToken == "" {
		t.Fatal("expected a refresh token")
	}

	claims, err := auth.ParseToken([]byte(svc.cfg.JWTSecret), session.Token)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.Sub != user.ID || claims.Name != user.DisplayName {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	data := newFakeData()
	user := seedUser(data)
	svc := newTestService(data, &fakeEngine{})

	first, err := svc.CreateSession(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	second, err := svc.Refresh(context.Background(), first.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if second.RefreshToken == first.RefreshToken {
		t.Fatal("refresh token was not rotated")
	}

	// The old refresh token is single use.
	if _, err := svc.Refresh(context.Background(), first.RefreshToken); err == nil {
		t.Fatal("expected reused refresh token to fail")
	}
}

func TestLogoutRevokesAccessToken(t *testing.T) {
	data := newFakeData()
	user := seedUser(data)
	svc := newTestService(data, &fakeEngine{})

	session, err := svc.CreateSession(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	parsed, err := svc.SessionFromToken(context.Background(), session.Token)
	if err != nil {
		t.Fatalf("SessionFromToken() error = %v", err)
	}

	if err := svc.Logout(context.Background(), parsed, session.RefreshToken); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}

	if _, err := svc.SessionFromToken(context.Background(), session.Token); err == nil {
		t.Fatal("expected revoked access token to be rejected")
	}
	if _, err := svc.Refresh(context.Background(), session.RefreshToken); err == nil {
		t.Fatal("expected revoked refresh token to be rejected")
	}
}

func TestUpdateProfileValidatesDisplayName(t *testing.T) {
	data := newFakeData()
	user := seedUser(data)
	svc := newTestService(data, &fakeEngine{})

	if _, err := svc.UpdateProfile(context.Background(), user.ID, "   "); err == nil {
		t.Fatal("expected blank display name to be rejected")
	}

	view, err := svc.UpdateProfile(context.Background(), user.ID, "Briar")
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}
	if view["displayName"] != "Briar" {
		t.Fatalf("displayName = %v, want Briar", view["displayName"])
	}
}
