package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/felixgeelhaar/chamai/pkg/domain"
	"github.com/felixgeelhaar/fortify/retry"
)

const ChamaiDir = ".chamai"
const ConfigFile = "config.yaml"
const DefaultStateKey = "chamaiState"
const DefaultDefinitionPath = "data/chamai-checklist.json"

// FilesystemRepository keeps durable key-value entries as files under <root>/.chamai.
type FilesystemRepository struct {
	root        string
	retryConfig retry.Config
}

func NewFilesystemRepository(root string) *FilesystemRepository {
	return &FilesystemRepository{
		root:        root,
		retryConfig: defaultRetryConfig(),
	}
}

func defaultRetryConfig() retry.Config {
	return retry.Config{
		MaxAttempts:   3,
		InitialDelay:  10 * time.Millisecond,
		BackoffPolicy: retry.BackoffExponential,
	}
}

// Root returns the project root directory.
func (r *FilesystemRepository) Root() string {
	return r.root
}

// Dir returns the .chamai directory.
func (r *FilesystemRepository) Dir() string {
	return filepath.Join(r.root, ChamaiDir)
}

// ResolvePath ensures the path is within the .chamai directory and prevents traversal.
func (r *FilesystemRepository) ResolvePath(filename string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("filename cannot be empty")
	}

	baseDir := r.Dir()
	fullPath := filepath.Join(baseDir, filename)
	cleanPath := filepath.Clean(fullPath)

	// Only direct children of .chamai are allowed.
	if !strings.HasPrefix(cleanPath, baseDir) || filepath.Dir(cleanPath) != baseDir {
		return "", fmt.Errorf("invalid file path: %s", filename)
	}

	return cleanPath, nil
}

func (r *FilesystemRepository) Initialize() error {
	// G301: Use 0700 for directories
	if err := os.MkdirAll(r.Dir(), 0700); err != nil {
		return fmt.Errorf("failed to create %s directory: %w", ChamaiDir, err)
	}
	return nil
}

func (r *FilesystemRepository) IsInitialized() bool {
	_, err := os.Stat(r.Dir())
	return err == nil
}

func (r *FilesystemRepository) keyPath(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) {
		return "", fmt.Errorf("invalid storage key: %q", key)
	}
	return r.ResolvePath(key + ".json")
}

// Get reads the value stored under key. A missing key returns domain.ErrNotFound.
func (r *FilesystemRepository) Get(key string) ([]byte, error) {
	path, err := r.keyPath(key)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("key %q: %w", key, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	retryer := retry.New[[]byte](r.retryConfig)
	return retryer.Do(context.Background(), func(ctx context.Context) ([]byte, error) {
		// #nosec G304 -- Path is resolved and validated via ResolvePath
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		return data, nil
	})
}

// Set writes data under key, creating .chamai if needed.
func (r *FilesystemRepository) Set(key string, data []byte) error {
	path, err := r.keyPath(key)
	if err != nil {
		return err
	}
	if err := r.Initialize(); err != nil {
		return err
	}
	// G306: Use 0600 for files
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// Remove deletes the value under key. Removing a missing key is not an error.
func (r *FilesystemRepository) Remove(key string) error {
	path, err := r.keyPath(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	return nil
}
