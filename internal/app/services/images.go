package services

import (
	"mime/multipart"

	"github.com/rs/zerolog"

	"github.com/aman-gurjar-dev/TechnoHack/internal/pkg/filestorage"
	"github.com/aman-gurjar-dev/TechnoHack/internal/pkg/metrics"
)

// imageStore saves uploaded images and removes them best-effort.
type imageStore struct {
	storage filestorage.FileStorage
	entity  string
	subDir  string
	logger  zerolog.Logger
}

// save stores fh when present. A nil header yields a nil path.
func (s imageStore) save(fh *multipart.FileHeader) (*string, error) {
	if fh == nil {
		return nil, nil
	}
	path, err := s.storage.SaveFileWithPath(fh, s.subDir)
	if err != nil {
		return nil, err
	}
	return &path, nil
}

// remove deletes a stored image. Failures are logged and counted, never returned.
func (s imageStore) remove(path *string) {
	if path == nil || *path == "" {
		return
	}
	if err := s.storage.DeleteFile(*path); err != nil {
		metrics.ImageCleanupFailures.WithLabelValues(s.entity).Inc()
		s.logger.Warn().Err(err).Str("path", *path).Str("entity", s.entity).Msg("Failed to remove stored image")
	}
}

func (s imageStore) removeAll(paths []string) {
	for i := range paths {
		s.remove(&paths[i])
	}
}
