package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mohammed-arif-23/it-panel-detection-service/internal/models"
)

// ExportService flattens a detection report to one row per suspicious group
// for offline review in a spreadsheet.
type ExportService interface {
	Rows(report *models.Report) []ExportRow
	WriteCSV(w io.Writer, report *models.Report) error
}

type ExportRow struct {
	Method          string
	GroupID         string
	Confidence      int
	Reason          string
	StudentCount    int
	Students        string
	RegisterNumbers string
	AssignmentTitle string
	SubmittedAt     time.Time
}

var csvHeader = []string{
	"Method", "Group ID", "Confidence", "Reason", "Student Count",
	"Students", "Register Numbers", "Assignment", "Submitted At",
}

type exportService struct {
	logger zerolog.Logger
}

func NewExportService(logger zerolog.Logger) ExportService {
	return &exportService{logger: logger}
}

func (s *exportService) Rows(report *models.Report) []ExportRow {
	var rows []ExportRow

	for _, result := range report.Results {
		for _, group := range result.SuspiciousGroups {
			names := make([]string, 0, len(group.Submissions))
			registers := make([]string, 0, len(group.Submissions))
			for _, sub := range group.Submissions {
				names = append(names, sub.StudentName)
				registers = append(registers, sub.RegisterNumber)
			}

			row := ExportRow{
				Method:          result.Method.String(),
				GroupID:         group.GroupID,
				Confidence:      group.Confidence,
				Reason:          group.Reason,
				StudentCount:    len(group.Submissions),
				Students:        strings.Join(names, ", "),
				RegisterNumbers: strings.Join(registers, ", "),
			}
			// Members are ordered by submission time, so the first one is
			// the representative.
			if len(group.Submissions) > 0 {
				row.AssignmentTitle = group.Submissions[0].AssignmentTitle
				row.SubmittedAt = group.Submissions[0].SubmittedAt
			}

			rows = append(rows, row)
		}
	}

	return rows
}

func (s *exportService) WriteCSV(w io.Writer, report *models.Report) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	rows := s.Rows(report)
	for _, row := range rows {
		record := []string{
			row.Method,
			row.GroupID,
			strconv.Itoa(row.Confidence),
			row.Reason,
			strconv.Itoa(row.StudentCount),
			row.Students,
			row.RegisterNumbers,
			row.AssignmentTitle,
			row.SubmittedAt.Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}

	s.logger.Debug().
		Str("run_id", report.RunID).
		Int("rows", len(rows)).
		Msg("Report exported")

	return nil
}
