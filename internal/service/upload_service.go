package service

import (
	"context"
	"errors"
	"io"
	"mime"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appErrors "github.com/sciportal/sciportal-api/pkg/errors"
	"github.com/sciportal/sciportal-api/pkg/slug"
	"github.com/sciportal/sciportal-api/pkg/storage"
)

type objectStore interface {
	Put(ctx context.Context, key string, body io.ReadSeeker, contentType string) error
	Get(ctx context.Context, key string) (*storage.Object, error)
	PublicURL(key string) string
}

// Upload carries the buffered payload and metadata of a multipart upload.
type Upload struct {
	Filename    string
	ContentType string
	Content     io.ReadSeeker
}

// UploadResult is returned after a successful ingestion.
type UploadResult struct {
	Filename string `json:"filename"`
	ID       string `json:"id"`
	URL      string `json:"url"`
}

// FileDownload bundles a stored payload for streaming back to the client.
type FileDownload struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
}

// UploadService is the ingestion pipeline: sanitize the client filename,
// derive a collision-free key, store the bytes, and only then hand the key
// back so document metadata never references an unstored file.
type UploadService struct {
	store  objectStore
	logger *zap.Logger
}

// NewUploadService creates a new upload service instance.
func NewUploadService(store objectStore, logger *zap.Logger) *UploadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UploadService{store: store, logger: logger}
}

// Store sanitizes the filename, prepends a random unique prefix and puts
// the payload into object storage.
func (s *UploadService) Store(ctx context.Context, upload Upload) (*UploadResult, error) {
	if upload.Content == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file is required")
	}

	name := slug.Filename(upload.Filename)
	if name == "" {
		name = "file"
	}
	key := uuid.NewString() + "-" + name

	contentType := upload.ContentType
	if contentType == "" {
		contentType = inferContentType(name)
	}

	if _, err := upload.Content.Seek(0, io.SeekStart); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reset upload stream")
	}

	if err := s.store.Put(ctx, key, upload.Content, contentType); err != nil {
		s.logger.Error("object store put failed", zap.String("key", key), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to store file")
	}

	return &UploadResult{
		Filename: name,
		ID:       key,
		URL:      s.store.PublicURL(key),
	}, nil
}

// Fetch streams back the payload stored under key.
func (s *UploadService) Fetch(ctx context.Context, key string) (*FileDownload, error) {
	obj, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "file not found")
		}
		s.logger.Error("object store get failed", zap.String("key", key), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to fetch file")
	}

	contentType := obj.ContentType
	if contentType == "" {
		contentType = inferContentType(key)
	}

	return &FileDownload{Body: obj.Body, ContentType: contentType, Size: obj.Size}, nil
}

func inferContentType(name string) string {
	if byExt := mime.TypeByExtension(filepath.Ext(name)); byExt != "" {
		return byExt
	}
	return "application/octet-stream"
}
