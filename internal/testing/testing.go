// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/desertthunder/moviebox/internal/models"
	"github.com/desertthunder/moviebox/internal/shared"
)

// ErrInjected is returned by the failure-injecting doubles in this package. It wraps [shared.ErrStorage].
var ErrInjected = fmt.Errorf("%w: injected failure", shared.ErrStorage)

// MockMetadata is a test double for [services.MetadataService].
//
// Details are served from the Movies map; a missing id returns NotFound (or a generic error when nil).
// Pages returns the same Page for every listing endpoint.
type MockMetadata struct {
	Movies   map[int]*models.MovieDetails
	Page     *models.MoviePage
	GenreSet []models.Genre
	NotFound error
	Err      error

	calls atomic.Int64
}

// Calls returns how many requests the mock has served.
func (m *MockMetadata) Calls() int { return int(m.calls.Load()) }

func (m *MockMetadata) page() (*models.MoviePage, error) {
	m.calls.Add(1)
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Page == nil {
		return &models.MoviePage{Page: 1, TotalPages: 1}, nil
	}
	return m.Page, nil
}

func (m *MockMetadata) Popular(ctx context.Context, page int) (*models.MoviePage, error) {
	return m.page()
}
func (m *MockMetadata) TopRated(ctx context.Context, page int) (*models.MoviePage, error) {
	return m.page()
}
func (m *MockMetadata) NowPlaying(ctx context.Context, page int) (*models.MoviePage, error) {
	return m.page()
}
func (m *MockMetadata) Upcoming(ctx context.Context, page int) (*models.MoviePage, error) {
	return m.page()
}
func (m *MockMetadata) Trending(ctx context.Context, window string, page int) (*models.MoviePage, error) {
	return m.page()
}
func (m *MockMetadata) ByGenre(ctx context.Context, genreID, page int) (*models.MoviePage, error) {
	return m.page()
}
func (m *MockMetadata) Search(ctx context.Context, query string, page int) (*models.MoviePage, error) {
	return m.page()
}
func (m *MockMetadata) Similar(ctx context.Context, movieID, page int) (*models.MoviePage, error) {
	return m.page()
}
func (m *MockMetadata) Recommendations(ctx context.Context, movieID, page int) (*models.MoviePage, error) {
	return m.page()
}

func (m *MockMetadata) Details(ctx context.Context, movieID int) (*models.MovieDetails, error) {
	m.calls.Add(1)
	if m.Err != nil {
		return nil, m.Err
	}
	if d, ok := m.Movies[movieID]; ok {
		return d, nil
	}
	if m.NotFound != nil {
		return nil, fmt.Errorf("%w: %d", m.NotFound, movieID)
	}
	return nil, fmt.Errorf("movie %d not found", movieID)
}

func (m *MockMetadata) Credits(ctx context.Context, movieID int) (*models.Credits, error) {
	d, err := m.Details(ctx, movieID)
	if err != nil {
		return nil, err
	}
	if d.Credits == nil {
		return &models.Credits{}, nil
	}
	return d.Credits, nil
}

func (m *MockMetadata) Videos(ctx context.Context, movieID int) ([]models.Video, error) {
	d, err := m.Details(ctx, movieID)
	if err != nil {
		return nil, err
	}
	if d.Videos == nil {
		return []models.Video{}, nil
	}
	return d.Videos.Results, nil
}

func (m *MockMetadata) Genres(ctx context.Context) ([]models.Genre, error) {
	m.calls.Add(1)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.GenreSet, nil
}

func (m *MockMetadata) Name() string { return "mock" }

// FailingStore is an in-memory [storage.Store] that can be told to fail reads or writes.
type FailingStore struct {
	mu         sync.Mutex
	data       map[string]string
	FailGet    bool
	FailSet    bool
	FailRemove bool
	SetCalls   int
}

func NewFailingStore() *FailingStore {
	return &FailingStore{data: make(map[string]string)}
}

func (s *FailingStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailGet {
		return "", false, ErrInjected
	}
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *FailingStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.SetCalls++
	if s.FailSet {
		return ErrInjected
	}
	s.data[key] = value
	return nil
}

func (s *FailingStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailRemove {
		return ErrInjected
	}
	delete(s.data, key)
	return nil
}

func (s *FailingStore) Close() error { return nil }

// Raw returns the stored value under key.
func (s *FailingStore) Raw(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok
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

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
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
