package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mohammed-arif-23/it-panel-detection-service/internal/models"
	"github.com/mohammed-arif-23/it-panel-detection-service/internal/repository"
	"github.com/mohammed-arif-23/it-panel-detection-service/internal/service/digest"
	"github.com/mohammed-arif-23/it-panel-detection-service/internal/worker"
)

// BackfillService guarantees that every submission in a scope either has a
// content digest or a recorded failure before hash-based detection runs.
// Re-running on a fully hashed scope is a no-op that still returns accurate
// statistics.
type BackfillService interface {
	Backfill(ctx context.Context, scope models.Scope) (models.BackfillStats, error)
	Statistics(ctx context.Context, scope models.Scope) (models.HashStats, error)
}

type backfillService struct {
	submissionRepo repository.SubmissionRepository
	digestService  digest.Service
	pool           *worker.WorkerPool
	publisher      repository.EventPublisher
	logger         zerolog.Logger
}

func NewBackfillService(
	submissionRepo repository.SubmissionRepository,
	digestService digest.Service,
	pool *worker.WorkerPool,
	publisher repository.EventPublisher,
	logger zerolog.Logger,
) BackfillService {
	return &backfillService{
		submissionRepo: submissionRepo,
		digestService:  digestService,
		pool:           pool,
		publisher:      publisher,
		logger:         logger,
	}
}

func (s *backfillService) Backfill(ctx context.Context, scope models.Scope) (models.BackfillStats, error) {
	submissions, err := s.submissionRepo.ListSubmissions(ctx, scope)
	if err != nil {
		return models.BackfillStats{}, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}

	stats := models.BackfillStats{Total: len(submissions)}

	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, sub := range submissions {
		if sub.FileHash != "" {
			stats.WithHash++
			continue
		}

		sub := sub
		wg.Add(1)
		err := s.pool.Submit(ctx, func() {
			defer wg.Done()

			result := s.computeAndStore(ctx, sub)

			mu.Lock()
			defer mu.Unlock()
			if result {
				stats.NewlyComputed++
			} else {
				stats.Failed++
			}
		})
		if err != nil {
			// Context cancelled before the task could be queued. Count the
			// remainder as failed rather than leaving the batch unaccounted.
			wg.Done()
			mu.Lock()
			stats.Failed++
			mu.Unlock()
		}
	}

	wg.Wait()

	stats.WithHash += stats.NewlyComputed
	stats.WithoutHash = stats.Total - stats.WithHash

	s.logger.Info().
		Str("assignment_id", scope.AssignmentID).
		Int("total", stats.Total).
		Int("newly_computed", stats.NewlyComputed).
		Int("failed", stats.Failed).
		Msg("Hash backfill completed")

	if s.publisher != nil && stats.NewlyComputed > 0 {
		event := models.HashesBackfilledEvent{
			AssignmentID:  scope.AssignmentID,
			Total:         stats.Total,
			NewlyComputed: stats.NewlyComputed,
			Failed:        stats.Failed,
			CompletedAt:   time.Now(),
		}
		if err := s.publisher.PublishHashesBackfilled(ctx, event); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to publish backfill event")
		}
	}

	return stats, nil
}

// computeAndStore handles one submission; failures are recorded, never
// raised, so one broken file cannot abort the batch.
func (s *backfillService) computeAndStore(ctx context.Context, sub models.Submission) bool {
	fileHash, err := s.digestService.ComputeDigest(ctx, sub.FileURL)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Str("submission_id", sub.ID).
			Str("file_url", sub.FileURL).
			Msg("Failed to compute digest")
		return false
	}

	if err := s.submissionRepo.UpdateFileHash(ctx, sub.ID, fileHash); err != nil {
		s.logger.Error().
			Err(err).
			Str("submission_id", sub.ID).
			Msg("Failed to store digest")
		return false
	}

	s.logger.Debug().
		Str("submission_id", sub.ID).
		Str("file_hash", fileHash).
		Msg("Digest stored")

	return true
}

func (s *backfillService) Statistics(ctx context.Context, scope models.Scope) (models.HashStats, error) {
	stats, err := s.submissionRepo.HashStats(ctx, scope)
	if err != nil {
		return models.HashStats{}, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	return stats, nil
}
