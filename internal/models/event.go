package models

import "time"

type DetectionCompletedEvent struct {
	RunID            string    `json:"run_id"`
	AssignmentID     string    `json:"assignment_id,omitempty"`
	Methods          []string  `json:"methods"`
	TotalSubmissions int       `json:"total_submissions"`
	TotalGroups      int       `json:"total_groups"`
	CompletedAt      time.Time `json:"completed_at"`
}

type HashesBackfilledEvent struct {
	AssignmentID  string    `json:"assignment_id,omitempty"`
	Total         int       `json:"total"`
	NewlyComputed int       `json:"newly_computed"`
	Failed        int       `json:"failed"`
	CompletedAt   time.Time `json:"completed_at"`
}
