package app

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"ideaforge/api/internal/auth"
	"ideaforge/api/internal/authpw"
	"ideaforge/api/internal/config"
	"ideaforge/api/internal/email"
	"ideaforge/api/internal/export"
	"ideaforge/api/internal/history"
	"ideaforge/api/internal/revision"
	"ideaforge/api/internal/search"
	"ideaforge/api/internal/storage"
	"ideaforge/api/internal/store"
	"ideaforge/api/internal/util"
)

type Session struct {
	Token        string
	RefreshToken string
	UserID       string
	UserName     string
	JTI          string
	ExpiresAt    time.Time
}

type dataStore interface {
	GetUserByID(context.Context, string) (store.User, error)
	GetUserByEmail(context.Context, string) (store.User, error)
	UpdateUserProfile(context.Context, string, string) error
	SetUserAvatar(context.Context, string, string) error
	RevokeAccessToken(context.Context, string, time.Time) error
	IsAccessTokenRevoked(context.Context, string) (bool, error)

	ListProjects(context.Context) ([]store.Project, error)
	GetProject(context.Context, string) (store.Project, error)
	InsertProject(context.Context, store.Project) error
	UpdateProject(context.Context, string, string, string) error
	DeleteProject(context.Context, string) error

	ListStages(context.Context, string) ([]store.Stage, error)
	GetStage(context.Context, string) (store.Stage, error)
	InsertStage(context.Context, store.Stage) error
	UpdateStage(context.Context, string, string, string, int) error
	DeleteStage(context.Context, string) error

	ListDocuments(context.Context) ([]store.Document, error)
	ListDocumentsByStage(context.Context, string) ([]store.Document, error)
	GetDocument(context.Context, string) (store.Document, error)
	InsertDocument(context.Context, store.Document) error
	UpdateDocument(context.Context, string, string) error
	SetDocumentCover(context.Context, string, string) error
	DeleteDocument(context.Context, string) error

	ListParagraphs(context.Context, string) ([]revision.Paragraph, error)
	GetParagraph(context.Context, string) (revision.Paragraph, error)
	DeleteParagraph(context.Context, string) error
	ListEditions(context.Context, string) ([]revision.Edition, error)
	GetEdition(context.Context, string) (revision.Edition, error)
	ListEditionGrades(context.Context, string) ([]revision.EditionGrade, error)
	ListParagraphGrades(context.Context, string) ([]revision.ParagraphGrade, error)

	ListParagraphComments(context.Context, string) ([]store.ParagraphComment, error)
	InsertParagraphComment(context.Context, store.ParagraphComment) error
	UpdateParagraphComment(context.Context, string, string, string) error
	DeleteParagraphComment(context.Context, string, string) error
	ListEditionComments(context.Context, string) ([]store.EditionComment, error)
	InsertEditionComment(context.Context, store.EditionComment) error
	UpdateEditionComment(context.Context, string, string, string) error
	DeleteEditionComment(context.Context, string, string) error

	Ping(ctx context.Context) error
}

type sessionStore interface {
	SaveRefreshSession(context.Context, string, store.User, time.Time) error
	LookupRefreshSession(context.Context, string) (store.User, error)
	RevokeRefreshSession(context.Context, string) error
}

type revisionEngine interface {
	CreateParagraph(ctx context.Context, documentID, authorID string, ordinal int, content string) (revision.Paragraph, error)
	CreateEdition(ctx context.Context, paragraphID, authorID, content string) (revision.Edition, error)
	UpdateEdition(ctx context.Context, editionID, content string) (revision.Edition, error)
	RemoveEdition(ctx context.Context, editionID string) (revision.Edition, error)
	GradeEdition(ctx context.Context, editionID, userID string, grade int) (revision.EditionGrade, error)
	UngradeEdition(ctx context.Context, editionID, userID string) (revision.EditionGrade, error)
	ApproveParagraph(ctx context.Context, paragraphID string) (revision.Paragraph, error)
	GradeParagraph(ctx context.Context, paragraphID, userID string, grade int) (revision.ParagraphGrade, error)
	UngradeParagraph(ctx context.Context, paragraphID, userID string) (revision.ParagraphGrade, error)
}

type historyService interface {
	EnsureDocumentRepo(documentID string, initial history.Snapshot, author string) error
	CommitSnapshot(documentID string, snapshot history.Snapshot, author, message string) (history.CommitInfo, error)
	GetSnapshotByHash(documentID, hash string) (history.Snapshot, error)
	History(documentID string, limit int) ([]history.CommitInfo, error)
	RemoveDocumentRepo(documentID string) error
}

type objectStore interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error)
	PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

type Service struct {
	cfg       config.Config
	store     dataStore
	sessions  sessionStore
	engine    revisionEngine
	authpw    *authpw.Service
	email     *email.Service
	search    *search.Service
	history   historyService
	exporter  *export.Service
	objects   objectStore
}

func New(cfg config.Config, dataStore *store.PostgresStore, sessions sessionStore, engine *revision.Engine) *Service {
	svc := &Service{
		cfg:      cfg,
		store:    dataStore,
		sessions: sessions,
		engine:   engine,
	}
	svc.exporter = export.NewService(&exportStore{svc: svc})
	return svc
}

// WithAuthPassword wires the email/password authentication service.
func (s *Service) WithAuthPassword(svc *authpw.Service) *Service {
	s.authpw = svc
	return s
}

// WithEmail wires the SMTP mailer used for verification and reset mail.
func (s *Service) WithEmail(svc *email.Service) *Service {
	s.email = svc
	return s
}

// WithSearch wires the search facade.
func (s *Service) WithSearch(svc *search.Service) *Service {
	s.search = svc
	return s
}

// WithHistory wires the per-document git history.
func (s *Service) WithHistory(svc historyService) *Service {
	s.history = svc
	return s
}

// WithObjectStore wires avatar and cover storage.
func (s *Service) WithObjectStore(svc *storage.Service) *Service {
	s.objects = svc
	return s
}

func (s *Service) AuthPasswordService() *authpw.Service {
	return s.authpw
}

func (s *Service) SMTPConfigured() bool {
	return s.email != nil && s.email.IsConfigured()
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// SendVerificationEmail delivers the signup verification mail when SMTP is
// configured; failures are logged, not surfaced to the signup request.
func (s *Service) SendVerificationEmail(to, userName, token string) {
	if !s.SMTPConfigured() {
		return
	}
	go func() {
		url := fmt.Sprintf("%s/verify-email?token=%s", s.cfg.CORSOrigin, token)
		if err := s.email.SendVerificationEmail(to, userName, url); err != nil {
			log.Printf("email: send verification to %s: %v", to, err)
		}
	}()
}

// SendPasswordResetEmail delivers the reset mail when SMTP is configured.
func (s *Service) SendPasswordResetEmail(to, userName, token string) {
	if !s.SMTPConfigured() {
		return
	}
	go func() {
		url := fmt.Sprintf("%s/reset-password?token=%s", s.cfg.CORSOrigin, token)
		if err := s.email.SendPasswordResetEmail(to, userName, url); err != nil {
			log.Printf("email: send password reset to %s: %v", to, err)
		}
	}()
}

// CreateSession issues an access token and refresh token for the user.
func (s *Service) CreateSession(ctx context.Context, userID string) (Session, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return Session{}, err
	}
	return s.issueSession(ctx, user)
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	tokenHash := auth.HashToken(refreshToken)
	user, err := s.sessions.LookupRefreshSession(ctx, tokenHash)
	if err != nil {
		return Session{}, err
	}
	if err := s.sessions.RevokeRefreshSession(ctx, tokenHash); err != nil {
		return Session{}, err
	}
	return s.issueSession(ctx, user)
}

func (s *Service) issueSession(ctx context.Context, user store.User) (Session, error) {
	jti := util.NewID("jti")
	claims := auth.NewClaims(user.ID, user.DisplayName, jti, s.cfg.AccessTTL)
	token, err := auth.IssueToken([]byte(s.cfg.JWTSecret), claims)
	if err != nil {
		return Session{}, err
	}

	refresh := util.NewID("rft") + util.NewID("")
	refreshExpires := time.Now().Add(s.cfg.RefreshTTL)
	if err := s.sessions.SaveRefreshSession(ctx, auth.HashToken(refresh), user, refreshExpires); err != nil {
		return Session{}, err
	}

	return Session{
		Token:        token,
		RefreshToken: refresh,
		UserID:       user.ID,
		UserName:     user.DisplayName,
		JTI:          jti,
		ExpiresAt:    time.Unix(claims.Exp, 0),
	}, nil
}

func (s *Service) SessionFromToken(ctx context.Context, token string) (Session, error) {
	claims, err := auth.ParseToken([]byte(s.cfg.JWTSecret), token)
	if err != nil {
		return Session{}, err
	}
	revoked, err := s.store.IsAccessTokenRevoked(ctx, claims.JTI)
	if err != nil {
		return Session{}, err
	}
	if revoked {
		return Session{}, auth.ErrInvalidToken
	}

	user, err := s.store.GetUserByID(ctx, claims.Sub)
	if err != nil {
		return Session{}, err
	}

	return Session{
		Token:     token,
		UserID:    user.ID,
		UserName:  user.DisplayName,
		JTI:       claims.JTI,
		ExpiresAt: time.Unix(claims.Exp, 0),
	}, nil
}

func (s *Service) Logout(ctx context.Context, session Session, refreshToken string) error {
	if session.JTI != "" {
		_ = s.store.RevokeAccessToken(ctx, session.JTI, session.ExpiresAt)
	}
	if refreshToken != "" {
		_ = s.sessions.RevokeRefreshSession(ctx, auth.HashToken(refreshToken))
	}
	return nil
}

// Profile returns the caller's account view.
func (s *Service) Profile(ctx context.Context, userID string) (map[string]any, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	view := map[string]any{
		"id":          user.ID,
		"displayName": user.DisplayName,
		"email":       user.Email,
	}
	if user.AvatarKey != "" && s.objects != nil {
		if url, err := s.objects.PresignedURL(ctx, user.AvatarKey, time.Hour); err == nil {
			view["avatarUrl"] = url
		}
	}
	return view, nil
}

func (s *Service) UpdateProfile(ctx context.Context, userID, displayName string) (map[string]any, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "displayName is required", nil)
	}
	if err := s.store.UpdateUserProfile(ctx, userID, displayName); err != nil {
		return nil, err
	}
	return s.Profile(ctx, userID)
}

// UploadAvatar stores the image and records the object key on the user.
func (s *Service) UploadAvatar(ctx context.Context, userID string, body io.Reader, size int64, contentType string) (map[string]any, error) {
	if s.objects == nil {
		return nil, domainError(http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "Object storage not configured", nil)
	}
	key := fmt.Sprintf("avatars/%s/%s", userID, util.NewID("img"))
	if _, err := s.objects.Upload(ctx, key, body, size, contentType); err != nil {
		return nil, err
	}
	if err := s.store.SetUserAvatar(ctx, userID, key); err != nil {
		return nil, err
	}
	return s.Profile(ctx, userID)
}

// ListProjects returns all projects.
func (s *Service) ListProjects(ctx context.Context) ([]map[string]any, error) {
	items, err := s.store.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]map[string]any, 0, len(items))
	for _, item := range items {
		views = append(views, projectView(item))
	}
	return views, nil
}

func (s *Service) GetProject(ctx context.Context, projectID string) (map[string]any, error) {
	item, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return projectView(item), nil
}

func (s *Service) CreateProject(ctx context.Context, name, description, ownerID string) (map[string]any, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "name is required", nil)
	}
	item := store.Project{
		ID:          util.NewID("prj"),
		Name:        name,
		Description: strings.TrimSpace(description),
		OwnerID:     ownerID,
	}
	if err := s.store.InsertProject(ctx, item); err != nil {
		return nil, err
	}
	return s.GetProject(ctx, item.ID)
}

func (s *Service) UpdateProject(ctx context.Context, projectID, name, description string) (map[string]any, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "name is required", nil)
	}
	if err := s.store.UpdateProject(ctx, projectID, name, strings.TrimSpace(description)); err != nil {
		return nil, err
	}
	return s.GetProject(ctx, projectID)
}

func (s *Service) DeleteProject(ctx context.Context, projectID string) error {
	return s.store.DeleteProject(ctx, projectID)
}

// ListStages returns a project's stages in workflow order.
func (s *Service) ListStages(ctx context.Context, projectID string) ([]map[string]any, error) {
	if _, err := s.store.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	items, err := s.store.ListStages(ctx, projectID)
	if err != nil {
		return nil, err
	}
	views := make([]map[string]any, 0, len(items))
	for _, item := range items {
		views = append(views, stageView(item))
	}
	return views, nil
}

func (s *Service) CreateStage(ctx context.Context, projectID, name, stageType string, sortOrder int) (map[string]any, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "name is required", nil)
	}
	if _, err := s.store.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	item := store.Stage{
		ID:        util.NewID("stg"),
		ProjectID: projectID,
		Name:      name,
		StageType: stageType,
		SortOrder: sortOrder,
	}
	if err := s.store.InsertStage(ctx, item); err != nil {
		return nil, err
	}
	saved, err := s.store.GetStage(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	return stageView(saved), nil
}

func (s *Service) UpdateStage(ctx context.Context, stageID, name, stageType string, sortOrder int) (map[string]any, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "name is required", nil)
	}
	if err := s.store.UpdateStage(ctx, stageID, name, stageType, sortOrder); err != nil {
		return nil, err
	}
	saved, err := s.store.GetStage(ctx, stageID)
	if err != nil {
		return nil, err
	}
	return stageView(saved), nil
}

func (s *Service) DeleteStage(ctx context.Context, stageID string) error {
	return s.store.DeleteStage(ctx, stageID)
}

// ListDocuments returns all documents, most recently updated first.
func (s *Service) ListDocuments(ctx context.Context) ([]map[string]any, error) {
	items, err := s.store.ListDocuments(ctx)
	if err != nil {
		return nil, err
	}
	return s.documentViews(ctx, items), nil
}

func (s *Service) ListDocumentsByStage(ctx context.Context, stageID string) ([]map[string]any, error) {
	if _, err := s.store.GetStage(ctx, stageID); err != nil {
		return nil, err
	}
	items, err := s.store.ListDocumentsByStage(ctx, stageID)
	if err != nil {
		return nil, err
	}
	return s.documentViews(ctx, items), nil
}

func (s *Service) documentViews(ctx context.Context, items []store.Document) []map[string]any {
	views := make([]map[string]any, 0, len(items))
	for _, item := range items {
		views = append(views, s.documentView(ctx, item))
	}
	return views
}

func (s *Service) GetDocument(ctx context.Context, documentID string) (map[string]any, error) {
	item, err := s.store.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	view := s.documentView(ctx, item)

	paragraphs, err := s.store.ListParagraphs(ctx, documentID)
	if err != nil {
		return nil, err
	}
	paragraphViews := make([]map[string]any, 0, len(paragraphs))
	for _, p := range paragraphs {
		paragraphViews = append(paragraphViews, paragraphView(p))
	}
	view["paragraphs"] = paragraphViews
	return view, nil
}

func (s *Service) CreateDocument(ctx context.Context, stageID, title, authorID, authorName string) (map[string]any, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "title is required", nil)
	}
	stage, err := s.store.GetStage(ctx, stageID)
	if err != nil {
		return nil, err
	}
	item := store.Document{
		ID:        util.NewID("doc"),
		StageID:   stage.ID,
		Title:     title,
		CreatedBy: authorID,
	}
	if err := s.store.InsertDocument(ctx, item); err != nil {
		return nil, err
	}

	if s.history != nil {
		if err := s.history.EnsureDocumentRepo(item.ID, history.Snapshot{Title: title}, authorName); err != nil {
			log.Printf("history: init repo for %s: %v", item.ID, err)
		}
	}
	if s.search != nil {
		s.search.IndexDocument(search.DocumentRecord{ID: item.ID, Title: title, StageID: stage.ID})
	}

	return s.GetDocument(ctx, item.ID)
}

func (s *Service) UpdateDocument(ctx context.Context, documentID, title string) (map[string]any, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "title is required", nil)
	}
	if err := s.store.UpdateDocument(ctx, documentID, title); err != nil {
		return nil, err
	}
	item, err := s.store.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if s.search != nil {
		s.search.IndexDocument(search.DocumentRecord{ID: item.ID, Title: item.Title, StageID: item.StageID})
	}
	return s.GetDocument(ctx, documentID)
}

func (s *Service) DeleteDocument(ctx context.Context, documentID string) error {
	paragraphs, err := s.store.ListParagraphs(ctx, documentID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteDocument(ctx, documentID); err != nil {
		return err
	}
	if s.search != nil {
		s.search.DeleteDocument(documentID)
		for _, p := range paragraphs {
			s.search.DeleteParagraph(p.ID)
		}
	}
	if s.history != nil {
		if err := s.history.RemoveDocumentRepo(documentID); err != nil {
			log.Printf("history: remove repo for %s: %v", documentID, err)
		}
	}
	return nil
}

// UploadDocumentCover stores a cover image for the document.
func (s *Service) UploadDocumentCover(ctx context.Context, documentID string, body io.Reader, size int64, contentType string) (map[string]any, error) {
	if s.objects == nil {
		return nil, domainError(http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "Object storage not configured", nil)
	}
	if _, err := s.store.GetDocument(ctx, documentID); err != nil {
		return nil, err
	}
	key := fmt.Sprintf("covers/%s/%s", documentID, util.NewID("img"))
	if _, err := s.objects.Upload(ctx, key, body, size, contentType); err != nil {
		return nil, err
	}
	if err := s.store.SetDocumentCover(ctx, documentID, key); err != nil {
		return nil, err
	}
	return s.GetDocument(ctx, documentID)
}

// Search runs a full-text query over documents and canonical paragraphs.
func (s *Service) Search(ctx context.Context, text, filterType, documentID string, approvedOnly bool, limit, offset int) (search.Response, error) {
	if s.search == nil {
		return search.Response{Results: []search.Result{}, Query: text}, nil
	}
	return s.search.Search(search.Query{
		Text:             text,
		FilterType:       search.ResultType(filterType),
		FilterDocumentID: documentID,
		ApprovedOnly:     approvedOnly,
		Limit:            limit,
		Offset:           offset,
	}), nil
}

// ExportDocument renders the document in the requested format.
func (s *Service) ExportDocument(ctx context.Context, documentID string, format export.Format, approvedOnly, includeEditions bool) (*export.Result, error) {
	return s.exporter.Export(ctx, export.Request{
		DocumentID:      documentID,
		Format:          format,
		ApprovedOnly:    approvedOnly,
		IncludeEditions: includeEditions,
	})
}

// DocumentHistory lists the document's content history, newest first.
func (s *Service) DocumentHistory(ctx context.Context, documentID string, limit int) ([]history.CommitInfo, error) {
	if s.history == nil {
		return []history.CommitInfo{}, nil
	}
	if _, err := s.store.GetDocument(ctx, documentID); err != nil {
		return nil, err
	}
	return s.history.History(documentID, limit)
}

// DocumentSnapshot returns the document's canonical state at a commit.
func (s *Service) DocumentSnapshot(ctx context.Context, documentID, hash string) (history.Snapshot, error) {
	if s.history == nil {
		return history.Snapshot{}, domainError(http.StatusNotFound, "NOT_FOUND", "History not configured", nil)
	}
	if _, err := s.store.GetDocument(ctx, documentID); err != nil {
		return history.Snapshot{}, err
	}
	return s.history.GetSnapshotByHash(documentID, hash)
}

func (s *Service) documentView(ctx context.Context, item store.Document) map[string]any {
	view := map[string]any{
		"id":        item.ID,
		"stageId":   item.StageID,
		"title":     item.Title,
		"createdBy": item.CreatedBy,
		"createdAt": item.CreatedAt,
		"updatedAt": item.UpdatedAt,
	}
	if item.CoverKey != "" && s.objects != nil {
		if url, err := s.objects.PresignedURL(ctx, item.CoverKey, time.Hour); err == nil {
			view["coverUrl"] = url
		}
	}
	return view
}

func projectView(item store.Project) map[string]any {
	return map[string]any{
		"id":          item.ID,
		"name":        item.Name,
		"description": item.Description,
		"ownerId":     item.OwnerID,
		"createdAt":   item.CreatedAt,
		"updatedAt":   item.UpdatedAt,
	}
}

func stageView(item store.Stage) map[string]any {
	return map[string]any{
		"id":        item.ID,
		"projectId": item.ProjectID,
		"name":      item.Name,
		"stageType": item.StageType,
		"sortOrder": item.SortOrder,
		"createdAt": item.CreatedAt,
		"updatedAt": item.UpdatedAt,
	}
}

// exportStore adapts the service's data store to the exporter's interface.
type exportStore struct {
	svc *Service
}

func (e *exportStore) GetDocument(ctx context.Context, id string) (export.DocumentInfo, error) {
	doc, err := e.svc.store.GetDocument(ctx, id)
	if err != nil {
		return export.DocumentInfo{}, err
	}
	info := export.DocumentInfo{
		ID:        doc.ID,
		Title:     doc.Title,
		UpdatedAt: doc.UpdatedAt,
	}
	if stage, err := e.svc.store.GetStage(ctx, doc.StageID); err == nil {
		info.StageName = stage.Name
	}
	if author, err := e.svc.store.GetUserByID(ctx, doc.CreatedBy); err == nil {
		info.Author = author.DisplayName
	}
	return info, nil
}

func (e *exportStore) ListParagraphs(ctx context.Context, documentID string) ([]export.ParagraphInfo, error) {
	paragraphs, err := e.svc.store.ListParagraphs(ctx, documentID)
	if err != nil {
		return nil, err
	}
	infos := make([]export.ParagraphInfo, 0, len(paragraphs))
	for _, p := range paragraphs {
		infos = append(infos, export.ParagraphInfo{
			ID:         p.ID,
			Ordinal:    p.Ordinal,
			Content:    p.Content,
			Rating:     p.Rating,
			IsApproved: p.IsApproved,
		})
	}
	return infos, nil
}

func (e *exportStore) ListEditions(ctx context.Context, paragraphID string) ([]export.EditionInfo, error) {
	editions, err := e.svc.store.ListEditions(ctx, paragraphID)
	if err != nil {
		return nil, err
	}
	infos := make([]export.EditionInfo, 0, len(editions))
	for _, ed := range editions {
		info := export.EditionInfo{Content: ed.Content, Rating: ed.Rating}
		if author, err := e.svc.store.GetUserByID(ctx, ed.AuthorID); err == nil {
			info.Author = author.DisplayName
		}
		infos = append(infos, info)
	}
	return infos, nil
}
