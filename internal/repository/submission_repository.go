package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/mohammed-arif-23/it-panel-detection-service/internal/models"
)

// SubmissionRepository is the read side of the detection core plus the single
// mutating operation: the digest write-back.
type SubmissionRepository interface {
	ListSubmissions(ctx context.Context, scope models.Scope) ([]models.Submission, error)
	UpdateFileHash(ctx context.Context, id, fileHash string) error
	HashStats(ctx context.Context, scope models.Scope) (models.HashStats, error)
}

type submissionRepository struct {
	*PostgresRepository
}

func NewSubmissionRepository(db *sql.DB, logger zerolog.Logger) SubmissionRepository {
	return &submissionRepository{
		PostgresRepository: NewPostgresRepository(db, logger),
	}
}

const submissionColumns = `
	sub.id, sub.student_id, sub.assignment_id,
	sub.file_url, sub.file_name, sub.file_hash, sub.file_size,
	sub.submitted_at, sub.status,
	s.name AS student_name, s.register_number,
	a.title AS assignment_title, a.class_year
`

func scopeClause(scope models.Scope, startArg int) (string, []interface{}) {
	clause := ""
	args := make([]interface{}, 0, 4)
	arg := startArg

	if scope.AssignmentID != "" {
		clause += fmt.Sprintf(" AND sub.assignment_id = $%d", arg)
		args = append(args, scope.AssignmentID)
		arg++
	}
	if scope.ClassYear != "" {
		clause += fmt.Sprintf(" AND a.class_year = $%d", arg)
		args = append(args, scope.ClassYear)
		arg++
	}
	if scope.DateFrom != nil {
		clause += fmt.Sprintf(" AND sub.submitted_at >= $%d", arg)
		args = append(args, *scope.DateFrom)
		arg++
	}
	if scope.DateTo != nil {
		clause += fmt.Sprintf(" AND sub.submitted_at <= $%d", arg)
		args = append(args, *scope.DateTo)
	}

	return clause, args
}

func (r *submissionRepository) ListSubmissions(ctx context.Context, scope models.Scope) ([]models.Submission, error) {
	clause, args := scopeClause(scope, 1)

	query := `
		SELECT ` + submissionColumns + `
		FROM submissions sub
		JOIN students s ON sub.student_id = s.id
		JOIN assignments a ON sub.assignment_id = a.id
		WHERE 1=1` + clause + `
		ORDER BY sub.submitted_at, sub.id
	`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()

	var submissions []models.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		submissions = append(submissions, *sub)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate submissions: %w", err)
	}

	return submissions, nil
}

func (r *submissionRepository) UpdateFileHash(ctx context.Context, id, fileHash string) error {
	query := `
		UPDATE submissions
		SET file_hash = $1, updated_at = $2
		WHERE id = $3
	`

	_, err := r.db.ExecContext(ctx, query, fileHash, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update file hash: %w", err)
	}

	return nil
}

func (r *submissionRepository) HashStats(ctx context.Context, scope models.Scope) (models.HashStats, error) {
	clause, args := scopeClause(scope, 1)

	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE sub.file_hash IS NOT NULL AND sub.file_hash != '')
		FROM submissions sub
		JOIN students s ON sub.student_id = s.id
		JOIN assignments a ON sub.assignment_id = a.id
		WHERE 1=1` + clause

	var stats models.HashStats
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&stats.Total, &stats.WithHash)
	if err != nil {
		return models.HashStats{}, fmt.Errorf("failed to count hash statistics: %w", err)
	}

	stats.WithoutHash = stats.Total - stats.WithHash
	return stats, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSubmission(row rowScanner) (*models.Submission, error) {
	var sub models.Submission
	var fileHash sql.NullString
	var fileSize sql.NullInt64

	err := row.Scan(
		&sub.ID,
		&sub.StudentID,
		&sub.AssignmentID,
		&sub.FileURL,
		&sub.FileName,
		&fileHash,
		&fileSize,
		&sub.SubmittedAt,
		&sub.Status,
		&sub.StudentName,
		&sub.RegisterNumber,
		&sub.AssignmentTitle,
		&sub.ClassYear,
	)
	if err != nil {
		return nil, err
	}

	if fileHash.Valid {
		sub.FileHash = fileHash.String
	}
	if fileSize.Valid {
		size := fileSize.Int64
		sub.FileSize = &size
	}

	return &sub, nil
}
