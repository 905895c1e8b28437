package filestorage

import (
	"mime/multipart"
)

// Sub-directories used for uploaded images, keyed by owning entity type.
const (
	ClubsDir  = "clubs"
	EventsDir = "events"
)

// FileStorage defines the interface for file storage operations
type FileStorage interface {
	// SaveFileWithPath validates an uploaded image and stores it under subPath. The
	// returned path is the public reference kept on the entity, e.g. /uploads/clubs/<id>.png.
	SaveFileWithPath(fileHeader *multipart.FileHeader, subPath string) (string, error)

	// DeleteFile removes a previously stored file. Missing files are not an error.
	DeleteFile(filePath string) error
}
