package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sciportal/sciportal-api/internal/models"
	"github.com/sciportal/sciportal-api/internal/service"
	appErrors "github.com/sciportal/sciportal-api/pkg/errors"
	"github.com/sciportal/sciportal-api/pkg/response"
)

type documentService interface {
	Create(ctx context.Context, req service.CreateDocumentRequest) (*models.Document, error)
	Get(ctx context.Context, id int64) (*models.Document, error)
	List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, *models.Pagination, error)
	MyPublications(ctx context.Context, userID int64) ([]models.Document, error)
	Keywords(ctx context.Context) ([]models.DocumentKeyword, error)
}

// DocumentHandler exposes document registration, search and the keyword
// suggestion listing.
type DocumentHandler struct {
	service documentService
}

// NewDocumentHandler creates a new handler.
func NewDocumentHandler(svc documentService) *DocumentHandler {
	return &DocumentHandler{service: svc}
}

// Create godoc
// @Summary Register document
// @Description Create a document with nested authors and keywords
// @Tags Documents
// @Accept json
// @Produce json
// @Param payload body service.CreateDocumentRequest true "Document payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /documents [post]
func (h *DocumentHandler) Create(c *gin.Context) {
	var req service.CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid document payload"))
		return
	}

	doc, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, doc)
}

// List godoc
// @Summary Search documents
// @Description Filtered, paginated document listing
// @Tags Documents
// @Produce json
// @Param q query string false "Title or author substring"
// @Param type query []string false "Document types (OR)"
// @Param publish_year query []int false "Publish years (OR)"
// @Param field query []string false "Field substrings (OR)"
// @Param keyword query []string false "Keyword substrings (OR)"
// @Param event_id query []int false "Event ids (OR)"
// @Param limit query int false "Page size (default 100)"
// @Param offset query int false "Page offset"
// @Success 200 {object} response.Envelope
// @Router /documents [get]
func (h *DocumentHandler) List(c *gin.Context) {
	filter, err := parseDocumentFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	docs, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, docs, pagination)
}

// Get godoc
// @Summary Document detail
// @Tags Documents
// @Produce json
// @Param id path int true "Document ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /documents/{id} [get]
func (h *DocumentHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "document not found"))
		return
	}

	doc, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, doc, nil)
}

// MyPublications godoc
// @Summary Documents advised by the caller
// @Tags Documents
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /documents/my-publications [get]
func (h *DocumentHandler) MyPublications(c *gin.Context) {
	user := userFromContext(c)
	if user == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	docs, err := h.service.MyPublications(c.Request.Context(), user.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, docs, nil)
}

// Keywords godoc
// @Summary Distinct keyword listing
// @Tags Documents
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /keywords [get]
func (h *DocumentHandler) Keywords(c *gin.Context) {
	keywords, err := h.service.Keywords(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, keywords, nil)
}

func parseDocumentFilter(c *gin.Context) (models.DocumentFilter, error) {
	filter := models.DocumentFilter{
		Query:    strings.TrimSpace(c.Query("q")),
		Types:    cleanValues(c.QueryArray("type")),
		Fields:   cleanValues(c.QueryArray("field")),
		Keywords: cleanValues(c.QueryArray("keyword")),
	}

	for _, raw := range cleanValues(c.QueryArray("publish_year")) {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return filter, appErrors.Clone(appErrors.ErrValidation, "publish_year must be an integer")
		}
		filter.PublishYears = append(filter.PublishYears, year)
	}

	for _, raw := range cleanValues(c.QueryArray("event_id")) {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return filter, appErrors.Clone(appErrors.ErrValidation, "event_id must be an integer")
		}
		filter.EventIDs = append(filter.EventIDs, id)
	}

	filter.Limit = 100
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return filter, appErrors.Clone(appErrors.ErrValidation, "limit must be a non-negative integer")
		}
		filter.Limit = limit
	}

	if raw := c.Query("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return filter, appErrors.Clone(appErrors.ErrValidation, "offset must be a non-negative integer")
		}
		filter.Offset = offset
	}

	return filter, nil
}

func cleanValues(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
