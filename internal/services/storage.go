package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type StorageService interface {
	// SaveScratch writes the uploaded file to a collision-resistant scratch
	// path and returns that path.
	SaveScratch(file *multipart.FileHeader) (string, error)
	// RemoveScratch deletes a scratch file; failures are logged, not returned,
	// because cleanup runs on every exit path.
	RemoveScratch(path string)
	EnsureScratchDir() error
}

type storageService struct {
	scratchDir string
	log        *logrus.Logger
}

func NewStorageService(scratchDir string, log *logrus.Logger) StorageService {
	return &storageService{
		scratchDir: scratchDir,
		log:        log,
	}
}

func (s *storageService) EnsureScratchDir() error {
	if err := os.MkdirAll(s.scratchDir, 0755); err != nil {
		return fmt.Errorf("failed to create scratch directory: %w", err)
	}
	return nil
}

func (s *storageService) SaveScratch(file *multipart.FileHeader) (string, error) {
	// Original filename goes last so failed scratch files are recognizable.
	name := fmt.Sprintf("resume_%s_%s_%s",
		time.Now().Format("20060102_150405"),
		strings.Split(uuid.New().String(), "-")[0],
		filepath.Base(file.Filename),
	)
	scratchPath := filepath.Join(s.scratchDir, name)

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(scratchPath)
	if err != nil {
		return "", fmt.Errorf("failed to create scratch file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(scratchPath)
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	return scratchPath, nil
}

func (s *storageService) RemoveScratch(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.log.WithError(err).WithField("path", path).Warn("Failed to remove scratch file")
	}
}
