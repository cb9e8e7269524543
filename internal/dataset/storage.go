package dataset

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FileStorage keeps uploaded dataset files
type FileStorage interface {
	Store(ctx context.Context, src io.Reader, filename string) (string, error)
	GetReader(ctx context.Context, filePath string) (io.ReadCloser, error)
	Delete(ctx context.Context, filePath string) error
	Exists(ctx context.Context, filePath string) (bool, error)
}

// StorageConfig holds configuration for file storage
type StorageConfig struct {
	BasePath          string   // Base directory for uploads
	MaxFileSize       int64    // Maximum file size in bytes
	AllowedExtensions []string // Accepted file extensions, lower case with dot
	ChunkSize         int      // Copy buffer size
}

// DefaultStorageConfig returns sensible defaults
func DefaultStorageConfig() *StorageConfig {
	return &StorageConfig{
		BasePath:          "uploads/datasets",
		MaxFileSize:       50 * 1024 * 1024, // 50MB
		AllowedExtensions: []string{".csv", ".xlsx"},
		ChunkSize:         1024 * 1024, // 1MB
	}
}

// ValidateFilename rejects extensions the readers cannot parse.
func (c *StorageConfig) ValidateFilename(filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range c.AllowedExtensions {
		if ext == allowed {
			return nil
		}
	}
	return fmt.Errorf("unsupported file type %q (allowed: %s)", ext, strings.Join(c.AllowedExtensions, ", "))
}

// LocalFileStorage implements FileStorage using local filesystem
type LocalFileStorage struct {
	config *StorageConfig
}

// NewLocalFileStorage creates a new local file storage instance
func NewLocalFileStorage(config *StorageConfig) *LocalFileStorage {
	if config == nil {
		config = DefaultStorageConfig()
	}
	return &LocalFileStorage{config: config}
}

// NewLocalFileStorageWithPath creates a new local file storage with a simple path
func NewLocalFileStorageWithPath(basePath string) *LocalFileStorage {
	config := DefaultStorageConfig()
	config.BasePath = basePath
	return NewLocalFileStorage(config)
}

// Config exposes the storage limits
func (s *LocalFileStorage) Config() *StorageConfig {
	return s.config
}

// Store saves a file to the local filesystem with a unique name
func (s *LocalFileStorage) Store(ctx context.Context, src io.Reader, filename string) (string, error) {
	if err := s.config.ValidateFilename(filename); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.config.BasePath, 0755); err != nil {
		return "", fmt.Errorf("failed to create storage directory: %w", err)
	}

	// Unique name so concurrent uploads of the same file never collide
	base := filepath.Base(filename)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	timestamp := time.Now().Format("20060102_150405")
	uniqueName := fmt.Sprintf("%s_%s_%s%s", stem, timestamp, uuid.New().String()[:8], ext)
	filePath := filepath.Join(s.config.BasePath, uniqueName)

	destFile, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer destFile.Close()

	limited := io.LimitReader(src, s.config.MaxFileSize+1)
	buf := make([]byte, s.config.ChunkSize)
	written, err := io.CopyBuffer(destFile, limited, buf)
	if err != nil {
		os.Remove(filePath)
		return "", fmt.Errorf("failed to copy file contents: %w", err)
	}
	if written > s.config.MaxFileSize {
		os.Remove(filePath)
		return "", fmt.Errorf("file exceeds maximum size of %d bytes", s.config.MaxFileSize)
	}

	return filePath, nil
}

// GetReader returns a reader for the stored file
func (s *LocalFileStorage) GetReader(ctx context.Context, filePath string) (io.ReadCloser, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

// Delete removes a file from storage
func (s *LocalFileStorage) Delete(ctx context.Context, filePath string) error {
	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// Exists checks if a file exists in storage
func (s *LocalFileStorage) Exists(ctx context.Context, filePath string) (bool, error) {
	_, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check file existence: %w", err)
	}
	return true, nil
}
