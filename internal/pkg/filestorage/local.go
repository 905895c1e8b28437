package filestorage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aman-gurjar-dev/TechnoHack/internal/pkg/apperrors"
)

// DefaultMaxFileSize bounds a single upload.
const DefaultMaxFileSize int64 = 5 << 20

// URLPrefix is the public prefix stored images are served under.
const URLPrefix = "/uploads"

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/gif"}

// LocalStorage handles saving files to the local filesystem.
type LocalStorage struct {
	basePath    string
	maxFileSize int64
	logger      zerolog.Logger
}

// NewLocalStorage creates a new LocalStorage rooted at basePath.
func NewLocalStorage(basePath string, maxFileSize int64, logger zerolog.Logger) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{
		basePath:    basePath,
		maxFileSize: maxFileSize,
		logger:      logger,
	}, nil
}

// BasePath is the directory served at URLPrefix.
func (ls *LocalStorage) BasePath() string {
	return ls.basePath
}

// SaveFileWithPath saves an image to a specified subdirectory
func (ls *LocalStorage) SaveFileWithPath(fileHeader *multipart.FileHeader, subPath string) (string, error) {
	if fileHeader == nil {
		return "", nil
	}
	if fileHeader.Size > ls.maxFileSize {
		return "", apperrors.NewValidationError("Image is too large", map[string]string{
			"image": fmt.Sprintf("must be at most %d bytes", ls.maxFileSize),
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	mtype, err := mimetype.DetectReader(file)
	if err != nil {
		return "", fmt.Errorf("failed to inspect uploaded file: %w", err)
	}
	if !mimetype.EqualsAny(mtype.String(), allowedImageTypes...) {
		return "", apperrors.NewValidationError("Only image files are allowed", map[string]string{
			"image": "must be a jpeg, png or gif image",
		})
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind uploaded file: %w", err)
	}

	dir := filepath.Join(ls.basePath, filepath.Clean("/"+subPath))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create subdirectory: %w", err)
	}

	name := uuid.New().String() + mtype.Extension()
	dstPath := filepath.Join(dir, name)

	dst, err := os.Create(dstPath)
	if err != nil {
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	// LimitReader guards against a header that under-reports the size.
	written, err := io.Copy(dst, io.LimitReader(file, ls.maxFileSize+1))
	if err == nil && written > ls.maxFileSize {
		err = apperrors.NewValidationError("Image is too large", map[string]string{
			"image": fmt.Sprintf("must be at most %d bytes", ls.maxFileSize),
		})
	}
	if err != nil {
		_ = os.Remove(dstPath)
		return "", err
	}

	publicPath := path.Join(URLPrefix, filepath.ToSlash(filepath.Clean("/"+subPath)), name)
	ls.logger.Info().Str("filename", fileHeader.Filename).Str("path", publicPath).Msg("File saved successfully")
	return publicPath, nil
}

// DeleteFile removes a file from the storage filesystem.
// It accepts the path as stored on the entity (e.g. /uploads/clubs/<id>.png).
// Returns nil if deletion is successful or if the file doesn't exist.
func (ls *LocalStorage) DeleteFile(filePath string) error {
	if filePath == "" {
		return nil
	}

	physicalPath, err := ls.resolve(filePath)
	if err != nil {
		return err
	}

	if err := os.Remove(physicalPath); err != nil {
		if os.IsNotExist(err) {
			ls.logger.Warn().Str("path", physicalPath).Msg("File to delete does not exist")
			return nil
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}

	ls.logger.Info().Str("path", physicalPath).Msg("File deleted successfully")
	return nil
}

// resolve maps a public path back onto the storage directory, refusing anything
// that would escape it.
func (ls *LocalStorage) resolve(publicPath string) (string, error) {
	rel := strings.TrimPrefix(path.Clean("/"+publicPath), URLPrefix+"/")
	rel = strings.TrimPrefix(rel, "/")
	if rel == "" || rel == "." || strings.HasSuffix(publicPath, "/") {
		return "", fmt.Errorf("invalid file path: %s", publicPath)
	}
	return filepath.Join(ls.basePath, filepath.FromSlash(rel)), nil
}
