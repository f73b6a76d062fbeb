package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/sciportal/sciportal-api/pkg/errors"
	"github.com/sciportal/sciportal-api/pkg/storage"
)

type fakeObjectStore struct {
	objects map[string]fakeObject
	putErr  error
}

type fakeObject struct {
	data        []byte
	contentType string
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: map[string]fakeObject{}}
}

func (f *fakeObjectStore) Put(ctx context.Context, key string, body io.ReadSeeker, contentType string) error {
	if f.putErr != nil {
		return f.putErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.objects[key] = fakeObject{data: data, contentType: contentType}
	return nil
}

func (f *fakeObjectStore) Get(ctx context.Context, key string) (*storage.Object, error) {
	obj, ok := f.objects[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return &storage.Object{
		Body:        io.NopCloser(bytes.NewReader(obj.data)),
		ContentType: obj.contentType,
		Size:        int64(len(obj.data)),
	}, nil
}

func (f *fakeObjectStore) PublicURL(key string) string {
	return "http://localhost:9000/scientific-repository/" + key
}

func TestStoreSanitizesFilename(t *testing.T) {
	store := newFakeObjectStore()
	svc := NewUploadService(store, nil)

	result, err := svc.Store(context.Background(), Upload{
		Filename: "Relatório Final (versão 2).PDF",
		Content:  bytes.NewReader([]byte("%PDF-1.4")),
	})
	require.NoError(t, err)
	assert.Equal(t, "relatorio-final-versao-2.pdf", result.Filename)
	assert.True(t, strings.HasSuffix(result.ID, "-relatorio-final-versao-2.pdf"))
	assert.Equal(t, "http://localhost:9000/scientific-repository/"+result.ID, result.URL)

	// the prefix before the slug must be a parseable UUID
	prefix := strings.TrimSuffix(result.ID, "-relatorio-final-versao-2.pdf")
	_, err = uuid.Parse(prefix)
	assert.NoError(t, err)
}

func TestStoreKeysAreUniquePerUpload(t *testing.T) {
	store := newFakeObjectStore()
	svc := NewUploadService(store, nil)

	first, err := svc.Store(context.Background(), Upload{Filename: "thesis.pdf", Content: bytes.NewReader([]byte("a"))})
	require.NoError(t, err)
	second, err := svc.Store(context.Background(), Upload{Filename: "thesis.pdf", Content: bytes.NewReader([]byte("b"))})
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Len(t, store.objects, 2)
}

func TestStoreEmptyFilenameFallsBack(t *testing.T) {
	store := newFakeObjectStore()
	svc := NewUploadService(store, nil)

	result, err := svc.Store(context.Background(), Upload{Filename: "???", Content: bytes.NewReader([]byte("x"))})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(result.ID, "-file"))
}

func TestStoreInfersContentType(t *testing.T) {
	store := newFakeObjectStore()
	svc := NewUploadService(store, nil)

	result, err := svc.Store(context.Background(), Upload{Filename: "thesis.pdf", Content: bytes.NewReader([]byte("%PDF-1.4"))})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", store.objects[result.ID].contentType)
}

func TestStoreUnavailableBackend(t *testing.T) {
	store := newFakeObjectStore()
	store.putErr = errors.New("connection refused")
	svc := NewUploadService(store, nil)

	_, err := svc.Store(context.Background(), Upload{Filename: "thesis.pdf", Content: bytes.NewReader([]byte("x"))})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrStorage.Code, appErrors.FromError(err).Code)
}

func TestFetchRoundTrip(t *testing.T) {
	store := newFakeObjectStore()
	svc := NewUploadService(store, nil)

	stored, err := svc.Store(context.Background(), Upload{Filename: "thesis.pdf", Content: bytes.NewReader([]byte("%PDF-1.4"))})
	require.NoError(t, err)

	download, err := svc.Fetch(context.Background(), stored.ID)
	require.NoError(t, err)
	defer download.Body.Close()

	data, err := io.ReadAll(download.Body)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))
	assert.Equal(t, int64(8), download.Size)
}

func TestFetchMissingKey(t *testing.T) {
	svc := NewUploadService(newFakeObjectStore(), nil)

	_, err := svc.Fetch(context.Background(), "missing-key")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
