package services

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"event-ticketing/internal/status"

	"github.com/pocketbase/pocketbase/tools/filesystem"
)

// AllowedImageExtensions are the event image types accepted on upload.
var AllowedImageExtensions = []string{".png", ".jpg", ".jpeg"}

// ImageService keeps event images in a local pocketbase filesystem.
type ImageService struct {
	fs      *filesystem.System
	maxSize int64
}

func NewImageService(dir string, maxSize int64) (*ImageService, error) {
	fs, err := filesystem.NewLocal(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open upload dir: %w", err)
	}
	return &ImageService{fs: fs, maxSize: maxSize}, nil
}

// Save stores the uploaded file under a generated key and returns the key.
func (s *ImageService) Save(fh *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !isAllowedImage(ext) {
		return "", fmt.Errorf("%w: %q", status.ErrUnsupportedImage, ext)
	}
	if s.maxSize > 0 && fh.Size > s.maxSize {
		return "", status.NewValidationError("image", fmt.Sprintf("must be at most %d bytes", s.maxSize))
	}

	file, err := filesystem.NewFileFromMultipart(fh)
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}

	if err := s.fs.UploadFile(file, file.Name); err != nil {
		return "", fmt.Errorf("failed to store image: %w", err)
	}
	return file.Name, nil
}

func (s *ImageService) Delete(key string) error {
	return s.fs.Delete(key)
}

// Serve writes the stored image to w.
func (s *ImageService) Serve(w http.ResponseWriter, r *http.Request, key string) error {
	if strings.Contains(key, "/") || strings.Contains(key, "..") {
		return status.NewNotFoundError("image", 0)
	}
	exists, err := s.fs.Exists(key)
	if err != nil {
		return err
	}
	if !exists {
		return status.NewNotFoundError("image", 0)
	}
	return s.fs.Serve(w, r, key, key)
}

func (s *ImageService) Close() error {
	return s.fs.Close()
}

func isAllowedImage(ext string) bool {
	for _, allowed := range AllowedImageExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
