package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/mohammed-arif-23/it-panel-detection-service/internal/models"
	"github.com/mohammed-arif-23/it-panel-detection-service/internal/repository"
	"github.com/mohammed-arif-23/it-panel-detection-service/internal/service/detector"
	"github.com/mohammed-arif-23/it-panel-detection-service/pkg/utils"
)

// DetectionService orchestrates a detection run: resolves the candidate
// set, picks the effective method, runs the grouping engine and assembles
// the report.
type DetectionService interface {
	RunDetection(ctx context.Context, req models.DetectionRequest) (*models.Report, error)
}

type DetectionConfig struct {
	DefaultMinConfidence int
}

type detectionService struct {
	submissionRepo repository.SubmissionRepository
	engine         *detector.Engine
	publisher      repository.EventPublisher
	logger         zerolog.Logger
	config         DetectionConfig
}

func NewDetectionService(
	submissionRepo repository.SubmissionRepository,
	engine *detector.Engine,
	publisher repository.EventPublisher,
	logger zerolog.Logger,
	config DetectionConfig,
) DetectionService {
	if config.DefaultMinConfidence <= 0 {
		config.DefaultMinConfidence = 80
	}
	return &detectionService{
		submissionRepo: submissionRepo,
		engine:         engine,
		publisher:      publisher,
		logger:         logger,
		config:         config,
	}
}

func (s *detectionService) RunDetection(ctx context.Context, req models.DetectionRequest) (*models.Report, error) {
	method := req.Method
	if method == "" {
		method = models.MethodAll
	}
	switch method {
	case models.MethodHash, models.MethodMetadata, models.MethodAll:
	default:
		return nil, fmt.Errorf("%w: unknown method %q", ErrInvalidScope, req.Method)
	}

	minConfidence := req.MinConfidence
	if minConfidence == 0 {
		minConfidence = s.config.DefaultMinConfidence
	}
	if minConfidence < 0 || minConfidence > 100 {
		return nil, fmt.Errorf("%w: min_confidence %d out of range [0,100]", ErrInvalidScope, req.MinConfidence)
	}

	scope := req.Scope()

	submissions, err := s.submissionRepo.ListSubmissions(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}

	// Exact evidence takes precedence over heuristics whenever it is fully
	// available: if every candidate already has a digest, force the hash
	// method even when the caller asked for metadata only. The report names
	// the method actually run, so the override stays visible.
	if method != models.MethodHash {
		stats, err := s.submissionRepo.HashStats(ctx, scope)
		if err != nil {
			s.logger.Warn().Err(err).Msg("Could not read hash statistics, proceeding with requested method")
		} else if stats.Total > 0 && stats.WithoutHash == 0 {
			s.logger.Info().
				Str("requested_method", method.String()).
				Msg("All submissions have digests, upgrading to hash detection")
			method = models.MethodHash
		}
	}

	report := &models.Report{
		RunID:            utils.GenerateUUID(),
		TotalSubmissions: len(submissions),
		GeneratedAt:      time.Now(),
	}

	// Hash groups are needed even for a metadata-only run: submissions
	// already captured by exact-hash evidence are excluded from the weaker
	// method so the same evidence is not reported twice.
	hashGroups := s.engine.GroupByHash(submissions)

	if method == models.MethodHash || method == models.MethodAll {
		report.Results = append(report.Results, models.MethodResult{
			Method:           models.MethodHash,
			Description:      detector.HashMethodDescription,
			SuspiciousGroups: filterByConfidence(hashGroups, minConfidence),
		})
	}

	if method == models.MethodMetadata || method == models.MethodAll {
		candidates := metadataCandidates(submissions, hashGroups)
		metadataGroups := s.engine.GroupByMetadata(candidates)
		report.Results = append(report.Results, models.MethodResult{
			Method:           models.MethodMetadata,
			Description:      detector.MetadataMethodDescription,
			SuspiciousGroups: filterByConfidence(metadataGroups, minConfidence),
		})
	}

	for _, result := range report.Results {
		report.TotalGroups += len(result.SuspiciousGroups)
	}

	s.logger.Info().
		Str("run_id", report.RunID).
		Str("method", method.String()).
		Int("total_submissions", report.TotalSubmissions).
		Int("total_groups", report.TotalGroups).
		Msg("Detection run completed")

	if s.publisher != nil {
		methods := make([]string, 0, len(report.Results))
		for _, result := range report.Results {
			methods = append(methods, result.Method.String())
		}
		event := models.DetectionCompletedEvent{
			RunID:            report.RunID,
			AssignmentID:     scope.AssignmentID,
			Methods:          methods,
			TotalSubmissions: report.TotalSubmissions,
			TotalGroups:      report.TotalGroups,
			CompletedAt:      report.GeneratedAt,
		}
		if err := s.publisher.PublishDetectionCompleted(ctx, event); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to publish detection event")
		}
	}

	return report, nil
}

// metadataCandidates drops submissions already explained by a hash group.
// When no submission in the scope has a digest at all, every submission
// stays a candidate.
func metadataCandidates(submissions []models.Submission, hashGroups []models.SuspiciousGroup) []models.Submission {
	anyHash := false
	for _, sub := range submissions {
		if sub.FileHash != "" {
			anyHash = true
			break
		}
	}
	if !anyHash {
		return submissions
	}

	captured := make(map[string]struct{})
	for _, group := range hashGroups {
		for _, sub := range group.Submissions {
			captured[sub.ID] = struct{}{}
		}
	}

	candidates := make([]models.Submission, 0, len(submissions))
	for _, sub := range submissions {
		if _, ok := captured[sub.ID]; ok {
			continue
		}
		candidates = append(candidates, sub)
	}

	return candidates
}

func filterByConfidence(groups []models.SuspiciousGroup, minConfidence int) []models.SuspiciousGroup {
	filtered := make([]models.SuspiciousGroup, 0, len(groups))
	for _, group := range groups {
		if group.Confidence >= minConfidence {
			filtered = append(filtered, group)
		}
	}
	return filtered
}
