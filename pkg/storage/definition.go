package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/felixgeelhaar/chamai/pkg/domain"
	"github.com/felixgeelhaar/chamai/pkg/domain/checklist"
	"github.com/felixgeelhaar/fortify/retry"
)

// maxDefinitionSize bounds how much of a remote definition is read.
const maxDefinitionSize = 8 << 20

// NewDefinitionSource returns an HTTP source for http(s) locations and a file source otherwise.
// Relative file paths are resolved against root.
func NewDefinitionSource(root, location string) domain.DefinitionSource {
	if location == "" {
		location = DefaultDefinitionPath
	}
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return NewHTTPDefinitionSource(location, nil)
	}
	if !filepath.IsAbs(location) {
		location = filepath.Join(root, location)
	}
	return NewFileDefinitionSource(location)
}

// FileDefinitionSource reads the definition from a JSON file.
type FileDefinitionSource struct {
	path        string
	retryConfig retry.Config
}

func NewFileDefinitionSource(path string) *FileDefinitionSource {
	return &FileDefinitionSource{path: path, retryConfig: defaultRetryConfig()}
}

func (s *FileDefinitionSource) Location() string {
	return s.path
}

// Path returns the file the definition is read from.
func (s *FileDefinitionSource) Path() string {
	return s.path
}

func (s *FileDefinitionSource) LoadDefinition(ctx context.Context) (*checklist.Definition, error) {
	if _, err := os.Stat(s.path); err != nil {
		return nil, &domain.DefinitionError{Location: s.path, Err: err}
	}

	retryer := retry.New[[]byte](s.retryConfig)
	data, err := retryer.Do(ctx, func(ctx context.Context) ([]byte, error) {
		// #nosec G304 -- The definition path is chosen by the user
		return os.ReadFile(s.path)
	})
	if err != nil {
		return nil, &domain.DefinitionError{Location: s.path, Err: err}
	}
	return decodeDefinition(s.path, data)
}

// HTTPDefinitionSource fetches the definition once over HTTP.
type HTTPDefinitionSource struct {
	url    string
	client *http.Client
}

func NewHTTPDefinitionSource(url string, client *http.Client) *HTTPDefinitionSource {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPDefinitionSource{url: url, client: client}
}

func (s *HTTPDefinitionSource) Location() string {
	return s.url
}

func (s *HTTPDefinitionSource) LoadDefinition(ctx context.Context) (*checklist.Definition, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, &domain.DefinitionError{Location: s.url, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &domain.DefinitionError{Location: s.url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.DefinitionError{Location: s.url, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDefinitionSize))
	if err != nil {
		return nil, &domain.DefinitionError{Location: s.url, Err: err}
	}
	return decodeDefinition(s.url, data)
}

func decodeDefinition(location string, data []byte) (*checklist.Definition, error) {
	if err := ValidateDefinition(data); err != nil {
		return nil, &domain.DefinitionError{Location: location, Err: err}
	}
	def, err := checklist.Parse(data)
	if err != nil {
		return nil, &domain.DefinitionError{Location: location, Err: err}
	}
	return def, nil
}
