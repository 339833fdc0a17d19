// Package repository persists employees and timesheet periods in sqlite.
// Period hour data is stored as an opaque JSON document; the storage layer
// knows nothing about the timesheet rules.
package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/merqhr/timesheet/internal/timesheet"
	"github.com/merqhr/timesheet/pkg/database"
)

// PeriodRepository handles timesheet period storage
type PeriodRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewPeriodRepository creates a new period repository
func NewPeriodRepository(db *database.DB, logger *zap.Logger) *PeriodRepository {
	return &PeriodRepository{db: db, logger: logger}
}

// Get loads the stored document for (employee, year, month). Returns
// (nil, nil) when the period has never been saved.
func (r *PeriodRepository) Get(employeeID int64, year, month int) (*timesheet.Document, error) {
	query := `
		SELECT data FROM timesheet_periods
		WHERE employee_id = ? AND year = ? AND month = ?
	`

	var raw string
	err := r.db.QueryRow(query, employeeID, year, month).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("failed to load period",
			zap.Int64("employee_id", employeeID),
			zap.Int("year", year),
			zap.Int("month", month),
			zap.Error(err))
		return nil, fmt.Errorf("failed to load period: %w", err)
	}

	var doc timesheet.Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("failed to decode period document: %w", err)
	}
	return &doc, nil
}

// Save upserts the document for its (employee, year, month) key.
func (r *PeriodRepository) Save(doc timesheet.Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode period document: %w", err)
	}

	query := `
		INSERT INTO timesheet_periods (employee_id, year, month, data, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(employee_id, year, month)
		DO UPDATE SET data = excluded.data, updated_at = CURRENT_TIMESTAMP
	`
	if _, err := r.db.Exec(query, doc.EmployeeID, doc.Year, doc.Month, string(raw)); err != nil {
		r.logger.Error("failed to save period",
			zap.Int64("employee_id", doc.EmployeeID),
			zap.Int("year", doc.Year),
			zap.Int("month", doc.Month),
			zap.Error(err))
		return fmt.Errorf("failed to save period: %w", err)
	}
	return nil
}

// MarkSubmitted saves the final document and stamps the submission time in
// one transaction.
func (r *PeriodRepository) MarkSubmitted(doc timesheet.Document, submittedAt time.Time) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode period document: %w", err)
	}

	return r.db.WithTransaction(func(tx *sql.Tx) error {
		upsert := `
			INSERT INTO timesheet_periods (employee_id, year, month, data, updated_at)
			VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(employee_id, year, month)
			DO UPDATE SET data = excluded.data, updated_at = CURRENT_TIMESTAMP
		`
		if _, err := tx.Exec(upsert, doc.EmployeeID, doc.Year, doc.Month, string(raw)); err != nil {
			return fmt.Errorf("failed to save period: %w", err)
		}

		stamp := `
			UPDATE timesheet_periods SET submitted_at = ?
			WHERE employee_id = ? AND year = ? AND month = ?
		`
		if _, err := tx.Exec(stamp, submittedAt, doc.EmployeeID, doc.Year, doc.Month); err != nil {
			return fmt.Errorf("failed to stamp submission: %w", err)
		}
		return nil
	})
}

// SubmittedAt returns the submission time of a period, or nil.
func (r *PeriodRepository) SubmittedAt(employeeID int64, year, month int) (*time.Time, error) {
	query := `
		SELECT submitted_at FROM timesheet_periods
		WHERE employee_id = ? AND year = ? AND month = ?
	`

	var submitted sql.NullTime
	err := r.db.QueryRow(query, employeeID, year, month).Scan(&submitted)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load submission time: %w", err)
	}
	if !submitted.Valid {
		return nil, nil
	}
	return &submitted.Time, nil
}
