package handler

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sciportal/sciportal-api/internal/service"
	appErrors "github.com/sciportal/sciportal-api/pkg/errors"
	"github.com/sciportal/sciportal-api/pkg/response"
)

type uploadService interface {
	Store(ctx context.Context, upload service.Upload) (*service.UploadResult, error)
	Fetch(ctx context.Context, key string) (*service.FileDownload, error)
}

// FileHandler exposes upload and download of stored files.
type FileHandler struct {
	service uploadService
}

// NewFileHandler creates a new handler.
func NewFileHandler(svc uploadService) *FileHandler {
	return &FileHandler{service: svc}
}

// Upload godoc
// @Summary Upload a file
// @Description Stores a multipart file and returns its storage id and public URL
// @Tags Files
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File to store"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /upload [post]
func (h *FileHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file is required"))
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload"))
		return
	}
	defer src.Close()

	// multipart files over the memory threshold are spooled to disk and
	// already seekable; small ones need buffering.
	reader, ok := src.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(src)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload"))
			return
		}
		reader = bytes.NewReader(data)
	}

	result, err := h.service.Store(c.Request.Context(), service.Upload{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Content:     reader,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// Download godoc
// @Summary Download a file
// @Description Streams back the file stored under the given id
// @Tags Files
// @Produce octet-stream
// @Param id path string true "Storage id"
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Router /files/{id} [get]
func (h *FileHandler) Download(c *gin.Context) {
	download, err := h.service.Fetch(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer download.Body.Close()

	c.DataFromReader(http.StatusOK, download.Size, download.ContentType, download.Body, nil)
}
