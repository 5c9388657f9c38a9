package digest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mohammed-arif-23/it-panel-detection-service/internal/repository"
	"github.com/mohammed-arif-23/it-panel-detection-service/pkg/hash"
)

var (
	// ErrFetchFailed means the file content could not be retrieved at all
	// (network or storage failure).
	ErrFetchFailed = errors.New("failed to fetch file content")

	// ErrEmptyContent means the content was retrieved but cannot be
	// digested. Distinct from ErrFetchFailed so callers can tell a broken
	// upload from a broken fetch path.
	ErrEmptyContent = errors.New("file content is empty")
)

// Service turns a submission's file locator into a stable content digest.
// Locators with an http(s) scheme are fetched over HTTP; anything else is
// treated as an object key in the submissions bucket.
type Service interface {
	ComputeDigest(ctx context.Context, fileURL string) (string, error)
	Algorithm() string
}

type Config struct {
	Timeout    time.Duration
	RetryCount int
	RetryDelay time.Duration
}

type service struct {
	store    repository.ObjectStore
	digester hash.Digester
	client   *http.Client
	config   Config
	logger   zerolog.Logger
}

func NewService(store repository.ObjectStore, digester hash.Digester, config Config, logger zerolog.Logger) Service {
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	return &service{
		store:    store,
		digester: digester,
		client: &http.Client{
			Timeout: config.Timeout,
		},
		config: config,
		logger: logger,
	}
}

func (s *service) ComputeDigest(ctx context.Context, fileURL string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	var reader io.ReadCloser
	var err error

	if isHTTPURL(fileURL) {
		reader, err = s.fetchHTTP(ctx, fileURL)
	} else {
		reader, err = s.fetchObject(ctx, fileURL)
	}
	if err != nil {
		return "", err
	}
	defer reader.Close()

	counting := &countingReader{reader: reader}

	digest, err := s.digester.CalculateReader(counting)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	if counting.n == 0 {
		return "", ErrEmptyContent
	}

	s.logger.Debug().
		Str("file_url", fileURL).
		Str("digest", digest).
		Int64("content_size", counting.n).
		Msg("Computed file digest")

	return digest, nil
}

func (s *service) Algorithm() string {
	return string(s.digester.Algorithm())
}

func (s *service) fetchObject(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	reader, size, err := s.store.Download(ctx, objectKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	if size == 0 {
		reader.Close()
		return nil, ErrEmptyContent
	}

	return reader, nil
}

func (s *service) fetchHTTP(ctx context.Context, fileURL string) (io.ReadCloser, error) {
	var lastErr error

	for i := 0; i <= s.config.RetryCount; i++ {
		if i > 0 {
			s.logger.Warn().Int("attempt", i).Str("file_url", fileURL).Msg("Retrying file fetch")
			select {
			case <-time.After(s.config.RetryDelay * time.Duration(i)):
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", ErrFetchFailed, ctx.Err())
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
		if err != nil {
			lastErr = err
			continue
		}

		resp, err := s.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode == http.StatusOK {
			return resp.Body, nil
		}

		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		lastErr = fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))

		// Client errors will not improve on retry.
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			break
		}
	}

	return nil, fmt.Errorf("%w: %v", ErrFetchFailed, lastErr)
}

func isHTTPURL(fileURL string) bool {
	return strings.HasPrefix(fileURL, "http://") || strings.HasPrefix(fileURL, "https://")
}

type countingReader struct {
	reader io.Reader
	n      int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.reader.Read(p)
	c.n += int64(n)
	return n, err
}
