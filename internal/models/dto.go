package models

import "time"

// Data Transfer Objects

type DetectionRequest struct {
	AssignmentID  string          `json:"assignment_id,omitempty"`
	ClassYear     string          `json:"class_year,omitempty"`
	DateFrom      *time.Time      `json:"date_from,omitempty"`
	DateTo        *time.Time      `json:"date_to,omitempty"`
	Method        DetectionMethod `json:"method"`
	MinConfidence int             `json:"min_confidence"`
}

func (r DetectionRequest) Scope() Scope {
	return Scope{
		AssignmentID: r.AssignmentID,
		ClassYear:    r.ClassYear,
		DateFrom:     r.DateFrom,
		DateTo:       r.DateTo,
	}
}

type DetectionResponse struct {
	Success          bool           `json:"success"`
	Results          []MethodResult `json:"results"`
	TotalSubmissions int            `json:"total_submissions"`
	TotalGroups      int            `json:"total_groups"`
}

type StatisticsResponse struct {
	Success    bool      `json:"success"`
	Statistics HashStats `json:"statistics"`
}

type BackfillResponse struct {
	Success    bool          `json:"success"`
	Statistics BackfillStats `json:"statistics"`
}

type HealthCheckResponse struct {
	Status    string    `json:"status"`
	Database  bool      `json:"database"`
	RabbitMQ  bool      `json:"rabbitmq"`
	Uptime    string    `json:"uptime"`
	Timestamp time.Time `json:"timestamp"`
}
