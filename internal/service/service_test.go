package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mohammed-arif-23/it-panel-detection-service/internal/models"
)

var testBase = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func testSubmission(id, studentName, register, fileName, fileHash string, size int64, submittedAt time.Time) models.Submission {
	s := models.Submission{
		ID:              id,
		StudentID:       "student-" + id,
		AssignmentID:    "a1",
		FileURL:         fmt.Sprintf("uploads/%s", fileName),
		FileName:        fileName,
		FileHash:        fileHash,
		SubmittedAt:     submittedAt,
		Status:          models.SubmissionStatusSubmitted.String(),
		StudentName:     studentName,
		RegisterNumber:  register,
		AssignmentTitle: "Assignment 1",
		ClassYear:       "III-IT",
	}
	if size > 0 {
		s.FileSize = &size
	}
	return s
}

type fakeSubmissionRepo struct {
	mu          sync.Mutex
	submissions []models.Submission
	listErr     error
	stats       models.HashStats
	statsErr    error
	updateErr   error
	updated     map[string]string
}

func (f *fakeSubmissionRepo) ListSubmissions(_ context.Context, _ models.Scope) ([]models.Submission, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.submissions, nil
}

func (f *fakeSubmissionRepo) UpdateFileHash(_ context.Context, id, fileHash string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updated == nil {
		f.updated = make(map[string]string)
	}
	f.updated[id] = fileHash
	return nil
}

func (f *fakeSubmissionRepo) HashStats(_ context.Context, _ models.Scope) (models.HashStats, error) {
	if f.statsErr != nil {
		return models.HashStats{}, f.statsErr
	}
	return f.stats, nil
}

type fakePublisher struct {
	mu               sync.Mutex
	detectionEvents  []models.DetectionCompletedEvent
	backfilledEvents []models.HashesBackfilledEvent
	publishErr       error
}

func (f *fakePublisher) PublishDetectionCompleted(_ context.Context, event interface{}) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if e, ok := event.(models.DetectionCompletedEvent); ok {
		f.detectionEvents = append(f.detectionEvents, e)
	}
	return nil
}

func (f *fakePublisher) PublishHashesBackfilled(_ context.Context, event interface{}) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if e, ok := event.(models.HashesBackfilledEvent); ok {
		f.backfilledEvents = append(f.backfilledEvents, e)
	}
	return nil
}

func (f *fakePublisher) IsConnected() bool { return true }

func (f *fakePublisher) Close() error { return nil }

// fakeDigestService resolves digests from a fixed table; URLs without an
// entry fail the way an unreachable file would.
type fakeDigestService struct {
	mu      sync.Mutex
	digests map[string]string
	calls   int
}

func (f *fakeDigestService) ComputeDigest(_ context.Context, fileURL string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if digest, ok := f.digests[fileURL]; ok {
		return digest, nil
	}
	return "", fmt.Errorf("failed to fetch file content: %s", fileURL)
}

func (f *fakeDigestService) Algorithm() string { return "sha256" }
