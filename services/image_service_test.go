package services

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"event-ticketing/internal/status"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func multipartFile(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))

	return req.MultipartForm.File["image"][0]
}

func TestImageService_SaveServeDelete(t *testing.T) {
	service, err := NewImageService(t.TempDir(), 1<<20)
	require.NoError(t, err)
	defer service.Close()

	key, err := service.Save(multipartFile(t, "poster.PNG", []byte("\x89PNG\r\n\x1a\nfake")))
	require.NoError(t, err)
	assert.NotEmpty(t, key)

	exists, err := service.fs.Exists(key)
	require.NoError(t, err)
	assert.True(t, exists)

	rec := httptest.NewRecorder()
	require.NoError(t, service.Serve(rec, httptest.NewRequest(http.MethodGet, "/uploads/"+key, nil), key))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "fake")

	require.NoError(t, service.Delete(key))
	exists, err = service.fs.Exists(key)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestImageService_RejectsUnsupportedTypes(t *testing.T) {
	service, err := NewImageService(t.TempDir(), 1<<20)
	require.NoError(t, err)
	defer service.Close()

	for _, name := range []string{"poster.gif", "script.exe", "noext"} {
		_, err := service.Save(multipartFile(t, name, []byte("data")))
		assert.ErrorIs(t, err, status.ErrUnsupportedImage, name)
	}
}

func TestImageService_RejectsOversizedFiles(t *testing.T) {
	service, err := NewImageService(t.TempDir(), 8)
	require.NoError(t, err)
	defer service.Close()

	_, err = service.Save(multipartFile(t, "big.jpg", bytes.Repeat([]byte("x"), 64)))

	assert.ErrorIs(t, err, status.ErrValidation)
}

func TestImageService_ServeMissing(t *testing.T) {
	service, err := NewImageService(t.TempDir(), 1<<20)
	require.NoError(t, err)
	defer service.Close()

	rec := httptest.NewRecorder()
	err = service.Serve(rec, httptest.NewRequest(http.MethodGet, "/", nil), "nope.png")
	assert.ErrorIs(t, err, status.ErrNotFound)

	err = service.Serve(rec, httptest.NewRequest(http.MethodGet, "/", nil), "../etc/passwd")
	assert.ErrorIs(t, err, status.ErrNotFound)
}
