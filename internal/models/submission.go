package models

import "time"

// Submission is one student's uploaded artifact for one assignment, with the
// student and assignment labels joined in at read time. The grouping engine
// treats the labels as opaque display values, never as grouping keys.
type Submission struct {
	ID           string `json:"id" db:"id"`
	StudentID    string `json:"student_id" db:"student_id"`
	AssignmentID string `json:"assignment_id" db:"assignment_id"`

	FileURL  string `json:"file_url" db:"file_url"`
	FileName string `json:"file_name" db:"file_name"`
	FileHash string `json:"file_hash,omitempty" db:"file_hash"`
	FileSize *int64 `json:"file_size,omitempty" db:"file_size"`

	SubmittedAt time.Time `json:"submitted_at" db:"submitted_at"`
	Status      string    `json:"status" db:"status"`

	StudentName     string `json:"student_name" db:"student_name"`
	RegisterNumber  string `json:"register_number" db:"register_number"`
	AssignmentTitle string `json:"assignment_title" db:"assignment_title"`
	ClassYear       string `json:"class_year" db:"class_year"`
}

type SubmissionStatus string

const (
	SubmissionStatusSubmitted SubmissionStatus = "submitted"
	SubmissionStatusGraded    SubmissionStatus = "graded"
	SubmissionStatusRejected  SubmissionStatus = "rejected"
)

func (ss SubmissionStatus) String() string {
	return string(ss)
}

// Scope narrows which submissions a detection or backfill operation
// considers. All filters are optional and combinable.
type Scope struct {
	AssignmentID string     `json:"assignment_id,omitempty"`
	ClassYear    string     `json:"class_year,omitempty"`
	DateFrom     *time.Time `json:"date_from,omitempty"`
	DateTo       *time.Time `json:"date_to,omitempty"`
}
