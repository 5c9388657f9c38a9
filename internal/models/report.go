package models

import "time"

type DetectionMethod string

const (
	MethodHash     DetectionMethod = "hash"
	MethodMetadata DetectionMethod = "metadata"
	MethodAll      DetectionMethod = "all"
)

func (m DetectionMethod) String() string {
	return string(m)
}

// SuspiciousGroup is a set of at least two submissions flagged by one
// detection method. Groups from the same method never share a submission;
// groups from different methods may overlap.
type SuspiciousGroup struct {
	GroupID     string          `json:"group_id"`
	Method      DetectionMethod `json:"method"`
	Confidence  int             `json:"confidence"`
	Reason      string          `json:"reason"`
	Submissions []Submission    `json:"submissions"`
}

// MethodResult is one per-method block of a detection report.
type MethodResult struct {
	Method           DetectionMethod   `json:"method"`
	Description      string            `json:"description"`
	SuspiciousGroups []SuspiciousGroup `json:"suspicious_groups"`
}

type Report struct {
	RunID            string         `json:"run_id"`
	Results          []MethodResult `json:"results"`
	TotalSubmissions int            `json:"total_submissions"`
	TotalGroups      int            `json:"total_groups"`
	GeneratedAt      time.Time      `json:"generated_at"`
}

// HashStats is the read-only digest coverage of a scope. The orchestrator
// uses it to decide whether hash evidence is fully available.
type HashStats struct {
	Total       int `json:"total"`
	WithHash    int `json:"with_hash"`
	WithoutHash int `json:"without_hash"`
}

// BackfillStats summarizes one backfill batch. Per-item digest failures are
// counted here, never raised.
type BackfillStats struct {
	Total         int `json:"total"`
	WithHash      int `json:"with_hash"`
	WithoutHash   int `json:"without_hash"`
	NewlyComputed int `json:"newly_computed"`
	Failed        int `json:"failed"`
}
