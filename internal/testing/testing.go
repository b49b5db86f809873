// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"testing"

	"github.com/desertthunder/encore/internal/models"
)

// MockSetlistSource is a test double for services.SetlistSource
type MockSetlistSource struct {
	Setlist *models.Setlist
	Err     error
}

func (m *MockSetlistSource) FetchSetlist(ctx context.Context, url string) (*models.Setlist, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Setlist, nil
}

func (m *MockSetlistSource) Name() string { return "mock" }

// MockSearcher is a test double for services.VideoSearcher
type MockSearcher struct {
	Hits map[string][]models.SearchHit
	Err  error
}

func (m *MockSearcher) Search(ctx context.Context, query string) ([]models.SearchHit, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Hits[query], nil
}

// MockPlaylistService is a test double for services.PlaylistService
type MockPlaylistService struct {
	PlaylistID string
	CreateErr  error
	AddErr     error
	Created    []models.PlaylistSpec
	Added      []string
}

func (m *MockPlaylistService) CreatePlaylist(ctx context.Context, spec models.PlaylistSpec) (string, error) {
	if m.CreateErr != nil {
		return "", m.CreateErr
	}
	m.Created = append(m.Created, spec)
	return m.PlaylistID, nil
}

func (m *MockPlaylistService) AddVideo(ctx context.Context, playlistID, videoID string, position int) error {
	if m.AddErr != nil {
		return m.AddErr
	}
	m.Added = append(m.Added, videoID)
	return nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
