package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ParseLog is one row of upload-processing metadata. GPA is the snapshot
// computed over the parsed records at upload time; it is nil when no record
// was GPA-eligible.
type ParseLog struct {
	ID             uuid.UUID `json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	Filename       string    `json:"filename"`
	SHA256         string    `json:"sha256"`
	Pages          int       `json:"pages"`
	CourseCount    int       `json:"course_count"`
	WarningCount   int       `json:"warning_count"`
	GPA            *float64  `json:"gpa"`
	UnitsAttempted float64   `json:"units_attempted"`
	QualityPoints  float64   `json:"quality_points"`
}

// InsertParseLog records one processed upload. ID and CreatedAt are filled
// in when unset.
func (db *DB) InsertParseLog(ctx context.Context, l *ParseLog) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}

	_, err := db.Pool.Exec(ctx, `
		INSERT INTO parse_logs
			(id, created_at, filename, sha256, pages, course_count, warning_count,
			 gpa, units_attempted, quality_points)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		l.ID, l.CreatedAt, l.Filename, l.SHA256, l.Pages, l.CourseCount,
		l.WarningCount, l.GPA, l.UnitsAttempted, l.QualityPoints,
	)
	if err != nil {
		return fmt.Errorf("inserting parse log: %w", err)
	}
	return nil
}

// RecentParseLogs returns the most recent rows, newest first.
func (db *DB) RecentParseLogs(ctx context.Context, limit int) ([]ParseLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	rows, err := db.Pool.Query(ctx, `
		SELECT id, created_at, filename, sha256, pages, course_count,
		       warning_count, gpa, units_attempted, quality_points
		FROM parse_logs
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying parse logs: %w", err)
	}
	defer rows.Close()

	var logs []ParseLog
	for rows.Next() {
		var l ParseLog
		if err := rows.Scan(&l.ID, &l.CreatedAt, &l.Filename, &l.SHA256, &l.Pages,
			&l.CourseCount, &l.WarningCount, &l.GPA, &l.UnitsAttempted, &l.QualityPoints); err != nil {
			return nil, fmt.Errorf("scanning parse log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
