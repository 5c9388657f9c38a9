package detector

import (
	"fmt"

	"github.com/mohammed-arif-23/it-panel-detection-service/internal/models"
)

const hashReason = "Identical file hash: files are byte-for-byte identical"

// GroupByHash partitions submissions by their content digest. Submissions
// without a digest are ignored; partitions of one are not suspicious. Exact
// content equality is unambiguous, so every hash group carries confidence
// 100.
func (e *Engine) GroupByHash(submissions []models.Submission) []models.SuspiciousGroup {
	partitions := make(map[string][]models.Submission)
	for _, sub := range submissions {
		if sub.FileHash == "" {
			continue
		}
		partitions[sub.FileHash] = append(partitions[sub.FileHash], sub)
	}

	var candidates []candidateGroup
	for digest, members := range partitions {
		if len(members) < 2 {
			continue
		}
		sortMembers(members)
		candidates = append(candidates, candidateGroup{
			key:        digest,
			confidence: 100,
			reason:     hashReason,
			members:    members,
		})
	}

	orderGroups(candidates)

	groups := make([]models.SuspiciousGroup, 0, len(candidates))
	for i, c := range candidates {
		groups = append(groups, models.SuspiciousGroup{
			GroupID:     fmt.Sprintf("hash_%d", i),
			Method:      models.MethodHash,
			Confidence:  c.confidence,
			Reason:      c.reason,
			Submissions: c.members,
		})
	}

	return groups
}
