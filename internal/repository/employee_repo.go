package repository

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/merqhr/timesheet/pkg/database"
	"github.com/merqhr/timesheet/pkg/utils"
)

// Employee is one row of the employee directory.
type Employee struct {
	ID                 int64  `json:"id"`
	FullName           string `json:"full_name"`
	Email              string `json:"email"`
	Position           string `json:"position"`
	Department         string `json:"department"`
	SupervisorName     string `json:"supervisor_name"`
	SupervisorPosition string `json:"supervisor_position"`
	SupervisorEmail    string `json:"supervisor_email"`
}

// EmployeeRepository handles employee directory lookups
type EmployeeRepository struct {
	db     *database.DB
	logger *zap.Logger
	domain string
}

// NewEmployeeRepository creates a new employee repository. domain is the
// organization mail domain appended to bare local parts on lookup.
func NewEmployeeRepository(db *database.DB, domain string, logger *zap.Logger) *EmployeeRepository {
	return &EmployeeRepository{db: db, logger: logger, domain: domain}
}

const employeeColumns = `
	id, full_name, email, position, department,
	supervisor_name, supervisor_position, supervisor_email
`

// GetByID retrieves an employee by id. Returns (nil, nil) when absent.
func (r *EmployeeRepository) GetByID(id int64) (*Employee, error) {
	row := r.db.QueryRow(`SELECT `+employeeColumns+` FROM employees WHERE id = ?`, id)
	return r.scan(row)
}

// GetByEmail retrieves an employee by normalized email address. Returns
// (nil, nil) when absent.
func (r *EmployeeRepository) GetByEmail(email string) (*Employee, error) {
	normalized := utils.NormalizeEmail(email, r.domain)
	if err := utils.ValidateEmail(normalized); err != nil {
		return nil, err
	}
	row := r.db.QueryRow(`SELECT `+employeeColumns+` FROM employees WHERE email = ?`, normalized)
	return r.scan(row)
}

// Create inserts an employee, normalizing the email address.
func (r *EmployeeRepository) Create(e *Employee) error {
	e.Email = utils.NormalizeEmail(e.Email, r.domain)
	if err := utils.ValidateEmail(e.Email); err != nil {
		return err
	}

	query := `
		INSERT INTO employees (
			full_name, email, position, department,
			supervisor_name, supervisor_position, supervisor_email
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.Exec(query,
		e.FullName, e.Email, e.Position, e.Department,
		e.SupervisorName, e.SupervisorPosition, e.SupervisorEmail,
	)
	if err != nil {
		r.logger.Error("failed to create employee", zap.String("email", e.Email), zap.Error(err))
		return fmt.Errorf("failed to create employee: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	e.ID = id
	return nil
}

func (r *EmployeeRepository) scan(row *sql.Row) (*Employee, error) {
	var e Employee
	err := row.Scan(
		&e.ID, &e.FullName, &e.Email, &e.Position, &e.Department,
		&e.SupervisorName, &e.SupervisorPosition, &e.SupervisorEmail,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	return &e, nil
}
