package detector

import (
	"fmt"
	"time"

	"github.com/mohammed-arif-23/it-panel-detection-service/internal/models"
)

const (
	metadataBaseConfidence   = 60
	tightClusterBonus        = 20
	largeGroupBonus          = 10
	metadataMaxConfidence    = 95
	largeGroupMinimumMembers = 3
)

// GroupByMetadata flags submissions that share a file size and a normalized
// file-name signature and were submitted close together in time. Metadata
// evidence is heuristic, so confidence is capped below the hash method's.
func (e *Engine) GroupByMetadata(submissions []models.Submission) []models.SuspiciousGroup {
	type metaKey struct {
		size int64
		name string
	}

	partitions := make(map[metaKey][]models.Submission)
	for _, sub := range submissions {
		name := NormalizeFileName(sub.FileName, sub.StudentName, sub.RegisterNumber)
		if name == "" {
			// Nothing left of the name after normalization: no usable
			// evidence for this submission.
			continue
		}

		var size int64
		if sub.FileSize != nil {
			size = *sub.FileSize
		}

		key := metaKey{size: size, name: name}
		partitions[key] = append(partitions[key], sub)
	}

	var candidates []candidateGroup
	for key, members := range partitions {
		if len(members) < 2 {
			continue
		}
		sortMembers(members)

		for _, cluster := range splitByWindow(members, e.config.MetadataWindow) {
			if len(cluster) < 2 {
				continue
			}

			confidence, reason := e.scoreCluster(cluster)
			candidates = append(candidates, candidateGroup{
				key:        fmt.Sprintf("%d|%s", key.size, key.name),
				confidence: confidence,
				reason:     reason,
				members:    cluster,
			})
		}
	}

	orderGroups(candidates)

	groups := make([]models.SuspiciousGroup, 0, len(candidates))
	for i, c := range candidates {
		groups = append(groups, models.SuspiciousGroup{
			GroupID:     fmt.Sprintf("metadata_%d", i),
			Method:      models.MethodMetadata,
			Confidence:  c.confidence,
			Reason:      c.reason,
			Submissions: c.members,
		})
	}

	return groups
}

// splitByWindow breaks a time-ordered partition into clusters whose spread
// stays within the window. This keeps unrelated students who reuse a generic
// filename across terms out of the same group.
func splitByWindow(members []models.Submission, window time.Duration) [][]models.Submission {
	var clusters [][]models.Submission
	var current []models.Submission

	for _, sub := range members {
		if len(current) == 0 || sub.SubmittedAt.Sub(current[0].SubmittedAt) <= window {
			current = append(current, sub)
			continue
		}
		clusters = append(clusters, current)
		current = []models.Submission{sub}
	}
	if len(current) > 0 {
		clusters = append(clusters, current)
	}

	return clusters
}

func (e *Engine) scoreCluster(cluster []models.Submission) (int, string) {
	confidence := metadataBaseConfidence
	reason := "Same file size and name pattern"

	spread := cluster[len(cluster)-1].SubmittedAt.Sub(cluster[0].SubmittedAt)
	if spread <= e.config.TightWindow {
		confidence += tightClusterBonus
		reason += fmt.Sprintf("; submitted within %s of each other", durationLabel(e.config.TightWindow))
	} else {
		reason += fmt.Sprintf("; submitted within %s of each other", durationLabel(e.config.MetadataWindow))
	}

	if len(cluster) >= largeGroupMinimumMembers {
		confidence += largeGroupBonus
		reason += fmt.Sprintf("; %d students involved", len(cluster))
	}

	if confidence > metadataMaxConfidence {
		confidence = metadataMaxConfidence
	}

	return confidence, reason
}

func durationLabel(d time.Duration) string {
	if d >= time.Hour && d%time.Hour == 0 {
		hours := int(d / time.Hour)
		if hours == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", hours)
	}

	minutes := int(d / time.Minute)
	if minutes == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", minutes)
}
