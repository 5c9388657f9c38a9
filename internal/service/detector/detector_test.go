package detector

import (
	"fmt"
	"time"

	"github.com/mohammed-arif-23/it-panel-detection-service/internal/models"
)

var testBase = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

// sub builds a submission with sensible defaults for grouping tests.
func sub(id, studentName, register, fileName, fileHash string, size int64, submittedAt time.Time) models.Submission {
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

func memberIDs(group models.SuspiciousGroup) []string {
	ids := make([]string, 0, len(group.Submissions))
	for _, s := range group.Submissions {
		ids = append(ids, s.ID)
	}
	return ids
}

func sameIDs(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
