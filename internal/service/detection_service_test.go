package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/mohammed-arif-23/it-panel-detection-service/internal/models"
	"github.com/mohammed-arif-23/it-panel-detection-service/internal/repository"
	"github.com/mohammed-arif-23/it-panel-detection-service/internal/service/detector"
)

func newDetectionService(repo *fakeSubmissionRepo, publisher *fakePublisher) DetectionService {
	engine := detector.NewEngine(detector.Config{})
	var pub repository.EventPublisher
	if publisher != nil {
		pub = publisher
	}
	return NewDetectionService(repo, engine, pub, zerolog.Nop(), DetectionConfig{})
}

func TestRunDetection_UnknownMethodRejected(t *testing.T) {
	svc := newDetectionService(&fakeSubmissionRepo{}, nil)

	_, err := svc.RunDetection(context.Background(), models.DetectionRequest{Method: "fuzzy"})
	if !errors.Is(err, ErrInvalidScope) {
		t.Fatalf("expected ErrInvalidScope, got %v", err)
	}
}

func TestRunDetection_MinConfidenceOutOfRange(t *testing.T) {
	svc := newDetectionService(&fakeSubmissionRepo{}, nil)

	for _, bad := range []int{-5, 101} {
		_, err := svc.RunDetection(context.Background(), models.DetectionRequest{MinConfidence: bad})
		if !errors.Is(err, ErrInvalidScope) {
			t.Fatalf("min_confidence=%d: expected ErrInvalidScope, got %v", bad, err)
		}
	}
}

func TestRunDetection_RepositoryFailure(t *testing.T) {
	repo := &fakeSubmissionRepo{listErr: errors.New("connection refused")}
	svc := newDetectionService(repo, nil)

	_, err := svc.RunDetection(context.Background(), models.DetectionRequest{})
	if !errors.Is(err, ErrRepositoryUnavailable) {
		t.Fatalf("expected ErrRepositoryUnavailable, got %v", err)
	}
}

func TestRunDetection_EmptyScope(t *testing.T) {
	svc := newDetectionService(&fakeSubmissionRepo{}, nil)

	report, err := svc.RunDetection(context.Background(), models.DetectionRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.TotalSubmissions != 0 || report.TotalGroups != 0 {
		t.Fatalf("empty scope must report zero submissions and groups, got %+v", report)
	}
	if len(report.Results) != 2 {
		t.Fatalf("default method is all, expected 2 method blocks, got %d", len(report.Results))
	}
	if report.RunID == "" {
		t.Error("report must carry a run id")
	}
}

func TestRunDetection_AllMethodsProduceBothBlocks(t *testing.T) {
	repo := &fakeSubmissionRepo{
		submissions: []models.Submission{
			testSubmission("s1", "A", "r1", "a.pdf", "h1", 10, testBase),
			testSubmission("s2", "B", "r2", "b.pdf", "h1", 10, testBase.Add(time.Minute)),
			testSubmission("s3", "C", "r3", "hw2.pdf", "h2", 500, testBase.Add(2*time.Minute)),
			testSubmission("s4", "D", "r4", "hw2.pdf", "h3", 500, testBase.Add(3*time.Minute)),
		},
		stats: models.HashStats{Total: 4, WithHash: 4, WithoutHash: 0},
	}
	svc := newDetectionService(repo, nil)

	report, err := svc.RunDetection(context.Background(), models.DetectionRequest{
		Method:        models.MethodAll,
		MinConfidence: 50,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Every candidate has a digest, so "all" collapses to hash only.
	if len(report.Results) != 1 || report.Results[0].Method != models.MethodHash {
		t.Fatalf("fully digested scope must upgrade to hash, got %+v", report.Results)
	}
	if report.TotalGroups != 1 {
		t.Fatalf("expected 1 hash group, got %d", report.TotalGroups)
	}
}

func TestRunDetection_AutoUpgradeOverridesMetadata(t *testing.T) {
	repo := &fakeSubmissionRepo{
		submissions: []models.Submission{
			testSubmission("s1", "A", "r1", "a.pdf", "h1", 10, testBase),
			testSubmission("s2", "B", "r2", "b.pdf", "h1", 10, testBase.Add(time.Minute)),
		},
		stats: models.HashStats{Total: 2, WithHash: 2, WithoutHash: 0},
	}
	svc := newDetectionService(repo, nil)

	report, err := svc.RunDetection(context.Background(), models.DetectionRequest{
		Method: models.MethodMetadata,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Results) != 1 {
		t.Fatalf("expected 1 method block, got %d", len(report.Results))
	}
	if report.Results[0].Method != models.MethodHash {
		t.Fatalf("expected metadata request upgraded to hash, got %s", report.Results[0].Method)
	}
}

func TestRunDetection_NoUpgradeWhileDigestsMissing(t *testing.T) {
	repo := &fakeSubmissionRepo{
		submissions: []models.Submission{
			testSubmission("s1", "A", "r1", "lab1.pdf", "h1", 300, testBase),
			testSubmission("s2", "B", "r2", "lab1.pdf", "", 300, testBase.Add(time.Minute)),
		},
		stats: models.HashStats{Total: 2, WithHash: 1, WithoutHash: 1},
	}
	svc := newDetectionService(repo, nil)

	report, err := svc.RunDetection(context.Background(), models.DetectionRequest{
		Method: models.MethodMetadata,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Results[0].Method != models.MethodMetadata {
		t.Fatalf("incomplete digest coverage must not upgrade, got %s", report.Results[0].Method)
	}
}

func TestRunDetection_HashStatsFailureIsNotFatal(t *testing.T) {
	repo := &fakeSubmissionRepo{
		submissions: []models.Submission{
			testSubmission("s1", "A", "r1", "lab1.pdf", "", 300, testBase),
			testSubmission("s2", "B", "r2", "lab1.pdf", "", 300, testBase.Add(time.Minute)),
		},
		statsErr: errors.New("timeout"),
	}
	svc := newDetectionService(repo, nil)

	report, err := svc.RunDetection(context.Background(), models.DetectionRequest{
		Method:        models.MethodMetadata,
		MinConfidence: 50,
	})
	if err != nil {
		t.Fatalf("statistics failure must not abort the run: %v", err)
	}
	if report.Results[0].Method != models.MethodMetadata {
		t.Fatalf("expected requested method to survive, got %s", report.Results[0].Method)
	}
}

func TestRunDetection_MetadataExcludesHashCaptured(t *testing.T) {
	// s1 and s2 share a digest and identical metadata. The metadata block
	// must not re-report the pair already explained by the hash group.
	repo := &fakeSubmissionRepo{
		submissions: []models.Submission{
			testSubmission("s1", "A", "r1", "hw1.pdf", "h1", 2048, testBase),
			testSubmission("s2", "B", "r2", "hw1.pdf", "h1", 2048, testBase.Add(time.Minute)),
			testSubmission("s3", "C", "r3", "hw1.pdf", "", 2048, testBase.Add(2*time.Minute)),
		},
		stats: models.HashStats{Total: 3, WithHash: 2, WithoutHash: 1},
	}
	svc := newDetectionService(repo, nil)

	report, err := svc.RunDetection(context.Background(), models.DetectionRequest{
		Method:        models.MethodAll,
		MinConfidence: 50,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var metadataResult *models.MethodResult
	for i := range report.Results {
		if report.Results[i].Method == models.MethodMetadata {
			metadataResult = &report.Results[i]
		}
	}
	if metadataResult == nil {
		t.Fatal("expected a metadata block")
	}
	// Only s3 remains a candidate, so no metadata group can form.
	if len(metadataResult.SuspiciousGroups) != 0 {
		t.Fatalf("hash-captured submissions leaked into metadata groups: %+v", metadataResult.SuspiciousGroups)
	}
}

func TestRunDetection_AllCandidatesStayWhenNoDigestsExist(t *testing.T) {
	repo := &fakeSubmissionRepo{
		submissions: []models.Submission{
			testSubmission("s1", "A", "r1", "hw1.pdf", "", 2048, testBase),
			testSubmission("s2", "B", "r2", "hw1.pdf", "", 2048, testBase.Add(time.Minute)),
		},
		stats: models.HashStats{Total: 2, WithHash: 0, WithoutHash: 2},
	}
	svc := newDetectionService(repo, nil)

	report, err := svc.RunDetection(context.Background(), models.DetectionRequest{
		Method:        models.MethodMetadata,
		MinConfidence: 50,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Results[0].SuspiciousGroups) != 1 {
		t.Fatalf("expected a metadata group when no digests exist, got %d", len(report.Results[0].SuspiciousGroups))
	}
}

func TestRunDetection_MinConfidenceFilters(t *testing.T) {
	// Metadata pair scores 80; with the default threshold of 80 it stays,
	// with 90 it is filtered out.
	repo := &fakeSubmissionRepo{
		submissions: []models.Submission{
			testSubmission("s1", "A", "r1", "hw1.pdf", "", 2048, testBase),
			testSubmission("s2", "B", "r2", "hw1.pdf", "", 2048, testBase.Add(time.Minute)),
		},
		stats: models.HashStats{Total: 2, WithHash: 0, WithoutHash: 2},
	}
	svc := newDetectionService(repo, nil)

	report, err := svc.RunDetection(context.Background(), models.DetectionRequest{Method: models.MethodMetadata})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Results[0].SuspiciousGroups) != 1 {
		t.Fatalf("group at the default threshold must survive, got %d groups", len(report.Results[0].SuspiciousGroups))
	}

	report, err = svc.RunDetection(context.Background(), models.DetectionRequest{
		Method:        models.MethodMetadata,
		MinConfidence: 90,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Results[0].SuspiciousGroups) != 0 {
		t.Fatalf("group below the threshold must be dropped, got %d groups", len(report.Results[0].SuspiciousGroups))
	}
	if report.TotalGroups != 0 {
		t.Fatalf("total_groups must count only surviving groups, got %d", report.TotalGroups)
	}
}

func TestRunDetection_PublishesCompletionEvent(t *testing.T) {
	repo := &fakeSubmissionRepo{
		submissions: []models.Submission{
			testSubmission("s1", "A", "r1", "a.pdf", "h1", 10, testBase),
			testSubmission("s2", "B", "r2", "b.pdf", "h1", 10, testBase.Add(time.Minute)),
		},
		stats: models.HashStats{Total: 2, WithHash: 2, WithoutHash: 0},
	}
	publisher := &fakePublisher{}
	svc := newDetectionService(repo, publisher)

	report, err := svc.RunDetection(context.Background(), models.DetectionRequest{
		AssignmentID: "a1",
		Method:       models.MethodHash,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(publisher.detectionEvents) != 1 {
		t.Fatalf("expected 1 completion event, got %d", len(publisher.detectionEvents))
	}
	event := publisher.detectionEvents[0]
	if event.RunID != report.RunID {
		t.Errorf("event run id %q does not match report %q", event.RunID, report.RunID)
	}
	if event.AssignmentID != "a1" {
		t.Errorf("event assignment id = %q, want a1", event.AssignmentID)
	}
	if event.TotalGroups != report.TotalGroups {
		t.Errorf("event groups %d, report groups %d", event.TotalGroups, report.TotalGroups)
	}
}

func TestRunDetection_PublishFailureIsNotFatal(t *testing.T) {
	repo := &fakeSubmissionRepo{
		submissions: []models.Submission{
			testSubmission("s1", "A", "r1", "a.pdf", "h1", 10, testBase),
			testSubmission("s2", "B", "r2", "b.pdf", "h1", 10, testBase.Add(time.Minute)),
		},
		stats: models.HashStats{Total: 2, WithHash: 2, WithoutHash: 0},
	}
	publisher := &fakePublisher{publishErr: errors.New("channel closed")}
	svc := newDetectionService(repo, publisher)

	if _, err := svc.RunDetection(context.Background(), models.DetectionRequest{Method: models.MethodHash}); err != nil {
		t.Fatalf("broker failure must not fail the run: %v", err)
	}
}
