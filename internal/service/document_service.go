package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sciportal/sciportal-api/internal/models"
	"github.com/sciportal/sciportal-api/internal/repository"
	appErrors "github.com/sciportal/sciportal-api/pkg/errors"
)

type documentRepository interface {
	Create(ctx context.Context, doc *models.Document) error
	FindByID(ctx context.Context, id int64) (*models.Document, error)
	List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, int, error)
	ListByAdvisor(ctx context.Context, userID int64) ([]models.Document, error)
	DistinctKeywords(ctx context.Context) ([]models.DocumentKeyword, error)
}

type advisorResolver interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
}

// AuthorPayload is one author entry inside a document creation request.
type AuthorPayload struct {
	Name  string  `json:"name" validate:"required"`
	Email *string `json:"email" validate:"omitempty,email"`
}

// CreateDocumentRequest describes the document registration payload. The
// advisor is a tagged union: either advisor_id referencing a platform
// user, or a free-text advisor_name/advisor_email pair.
type CreateDocumentRequest struct {
	Title        string          `json:"title" validate:"required"`
	Abstract     *string         `json:"abstract"`
	Type         string          `json:"type" validate:"required"`
	Field        *string         `json:"field"`
	PublishYear  int             `json:"publish_year" validate:"required"`
	EventID      *int64          `json:"event_id"`
	CourseID     *int64          `json:"course_id"`
	AdvisorID    *int64          `json:"advisor_id"`
	AdvisorName  *string         `json:"advisor_name"`
	AdvisorEmail *string         `json:"advisor_email"`
	FileURL      string          `json:"file_url" validate:"required"`
	Authors      []AuthorPayload `json:"authors" validate:"dive"`
	Keywords     []string        `json:"keywords"`
}

// DocumentService orchestrates document registration and search.
type DocumentService struct {
	repo      documentRepository
	users     advisorResolver
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewDocumentService creates a new document service instance.
func NewDocumentService(repo documentRepository, users advisorResolver, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *DocumentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentService{repo: repo, users: users, cache: cache, validator: validate, logger: logger}
}

// Create validates and persists a document with its authors and keywords
// in one transaction.
func (s *DocumentService) Create(ctx context.Context, req CreateDocumentRequest) (*models.Document, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid document payload")
	}

	if err := s.resolveAdvisor(ctx, req); err != nil {
		return nil, err
	}

	doc := &models.Document{
		Title:        req.Title,
		Abstract:     req.Abstract,
		Type:         req.Type,
		Field:        req.Field,
		PublishYear:  req.PublishYear,
		EventID:      req.EventID,
		CourseID:     req.CourseID,
		AdvisorID:    req.AdvisorID,
		AdvisorName:  req.AdvisorName,
		AdvisorEmail: req.AdvisorEmail,
		FileURL:      req.FileURL,
		Authors:      make([]models.DocumentAuthor, 0, len(req.Authors)),
		Keywords:     make([]models.DocumentKeyword, 0, len(req.Keywords)),
	}
	for _, a := range req.Authors {
		doc.Authors = append(doc.Authors, models.DocumentAuthor{Name: a.Name, Email: a.Email})
	}
	for _, kw := range req.Keywords {
		doc.Keywords = append(doc.Keywords, models.DocumentKeyword{Keyword: kw})
	}

	if err := s.repo.Create(ctx, doc); err != nil {
		if errors.Is(err, repository.ErrInvalidReference) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown course, event or advisor reference")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create document")
	}

	s.cache.Invalidate(ctx, CacheKeyKeywords)
	return s.Get(ctx, doc.ID)
}

// resolveAdvisor enforces that at least one advisor representation
// resolves: a referenced platform user that exists, or a free-text name.
func (s *DocumentService) resolveAdvisor(ctx context.Context, req CreateDocumentRequest) error {
	if req.AdvisorID != nil {
		if _, err := s.users.FindByID(ctx, *req.AdvisorID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrValidation, "advisor user not found")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve advisor")
		}
		return nil
	}
	if req.AdvisorName != nil && strings.TrimSpace(*req.AdvisorName) != "" {
		return nil
	}
	return appErrors.Clone(appErrors.ErrValidation, "advisor_id or advisor_name is required")
}

// Get returns one document with related entities resolved.
func (s *DocumentService) Get(ctx context.Context, id int64) (*models.Document, error) {
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document")
	}
	return doc, nil
}

// List runs the filter engine and returns pagination metadata over the
// de-duplicated result set.
func (s *DocumentService) List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, *models.Pagination, error) {
	docs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list documents")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	return docs, &models.Pagination{Limit: limit, Offset: offset, Total: total}, nil
}

// MyPublications returns the documents advised by the given user.
func (s *DocumentService) MyPublications(ctx context.Context, userID int64) ([]models.Document, error) {
	docs, err := s.repo.ListByAdvisor(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list publications")
	}
	return docs, nil
}

// Keywords returns the distinct keyword listing used for search-filter
// suggestions.
func (s *DocumentService) Keywords(ctx context.Context) ([]models.DocumentKeyword, error) {
	var cached []models.DocumentKeyword
	if s.cache.Get(ctx, CacheKeyKeywords, &cached) {
		return cached, nil
	}

	keywords, err := s.repo.DistinctKeywords(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list keywords")
	}

	s.cache.Set(ctx, CacheKeyKeywords, keywords)
	return keywords, nil
}
