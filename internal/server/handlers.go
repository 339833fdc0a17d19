package server

import (
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/merqhr/timesheet/internal/calendar"
	"github.com/merqhr/timesheet/internal/email"
	"github.com/merqhr/timesheet/internal/export"
	"github.com/merqhr/timesheet/internal/report"
	"github.com/merqhr/timesheet/internal/repository"
	"github.com/merqhr/timesheet/internal/timesheet"
)

// Handlers carries the dependencies behind the HTTP API. The period and
// employee repositories and the mailer may be nil, in which case
// persistence and submission mail are skipped.
type Handlers struct {
	store     *timesheet.Store
	cal       *calendar.Engine
	employees *repository.EmployeeRepository
	periods   *repository.PeriodRepository
	exporter  *export.Exporter
	mailer    *email.Sender
	logger    *zap.Logger
}

// NewHandlers creates the HTTP handler set
func NewHandlers(
	store *timesheet.Store,
	cal *calendar.Engine,
	employees *repository.EmployeeRepository,
	periods *repository.PeriodRepository,
	exporter *export.Exporter,
	mailer *email.Sender,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		store:     store,
		cal:       cal,
		employees: employees,
		periods:   periods,
		exporter:  exporter,
		mailer:    mailer,
		logger:    logger,
	}
}

type hoursRequest struct {
	Day   int     `json:"day" binding:"required"`
	Hours float64 `json:"hours"`
}

type projectRequest struct {
	Name           string  `json:"name" binding:"required"`
	AllocatedHours float64 `json:"allocated_hours"`
}

type employeeRequest struct {
	FullName           string `json:"full_name" binding:"required"`
	Email              string `json:"email" binding:"required"`
	Position           string `json:"position"`
	Department         string `json:"department"`
	SupervisorName     string `json:"supervisor_name"`
	SupervisorPosition string `json:"supervisor_position"`
	SupervisorEmail    string `json:"supervisor_email"`
}

// periodKey identifies one employee-month from the request path.
type periodKey struct {
	EmployeeID int64
	Year       int
	Month      int
}

func (h *Handlers) parsePeriod(c *gin.Context) (periodKey, bool) {
	employeeID, err := strconv.ParseInt(c.Param("employee_id"), 10, 64)
	if err != nil || employeeID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid employee id"})
		return periodKey{}, false
	}
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid year"})
		return periodKey{}, false
	}
	month, err := strconv.Atoi(c.Param("month"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid month"})
		return periodKey{}, false
	}
	return periodKey{EmployeeID: employeeID, Year: year, Month: month}, true
}

// errEmployeeNotFound is returned when a period references an employee
// id that has no directory row.
var errEmployeeNotFound = errors.New("employee not found")

// writeError maps domain errors to HTTP status codes.
func (h *Handlers) writeError(c *gin.Context, err error) {
	var verr *timesheet.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "field": verr.Field})
	case errors.Is(err, calendar.ErrInvalidDate):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, timesheet.ErrDailyCapExceeded):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, timesheet.ErrProtectedProject):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, timesheet.ErrProjectNotFound),
		errors.Is(err, timesheet.ErrPeriodNotLoaded),
		errors.Is(err, errEmployeeNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.logger.Error("Request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// persist writes the current in-memory document through to the database.
// A storage failure is logged but does not fail the request; the period
// stays authoritative in memory and is saved again on the next write.
func (h *Handlers) persist(key periodKey) {
	if h.periods == nil {
		return
	}
	doc, err := h.store.Document(key.EmployeeID, key.Year, key.Month)
	if err != nil {
		return
	}
	if err := h.periods.Save(doc); err != nil {
		h.logger.Warn("Failed to persist period",
			zap.Int64("employee_id", key.EmployeeID),
			zap.Int("year", key.Year),
			zap.Int("month", key.Month),
			zap.Error(err))
	}
}

// LoadPeriod opens an employee-month for editing, recovering any saved
// state from the database before falling back to a fresh period.
func (h *Handlers) LoadPeriod(c *gin.Context) {
	key, ok := h.parsePeriod(c)
	if !ok {
		return
	}

	doc, err := h.store.Document(key.EmployeeID, key.Year, key.Month)
	if err == nil {
		c.JSON(http.StatusOK, doc)
		return
	}
	if !errors.Is(err, timesheet.ErrPeriodNotLoaded) {
		h.writeError(c, err)
		return
	}

	if h.periods != nil {
		saved, err := h.periods.Get(key.EmployeeID, key.Year, key.Month)
		if err != nil {
			h.writeError(c, err)
			return
		}
		if saved != nil {
			if err := h.store.Restore(*saved); err != nil {
				h.writeError(c, err)
				return
			}
			c.JSON(http.StatusOK, *saved)
			return
		}
	}

	doc, err = h.store.LoadPeriod(key.EmployeeID, key.Year, key.Month)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.persist(key)
	c.JSON(http.StatusOK, doc)
}

// GetPeriod returns the current document of an already loaded period.
func (h *Handlers) GetPeriod(c *gin.Context) {
	key, ok := h.parsePeriod(c)
	if !ok {
		return
	}
	doc, err := h.store.Document(key.EmployeeID, key.Year, key.Month)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// GetSummary returns the aggregated totals of a period.
func (h *Handlers) GetSummary(c *gin.Context) {
	key, ok := h.parsePeriod(c)
	if !ok {
		return
	}
	snap, err := h.store.Aggregate(key.EmployeeID, key.Year, key.Month)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// GetCalendar returns the day grid of an Ethiopian month.
func (h *Handlers) GetCalendar(c *gin.Context) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid year"})
		return
	}
	month, err := strconv.Atoi(c.Param("month"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid month"})
		return
	}

	days, err := h.cal.EnumerateMonth(year, month)
	if err != nil {
		h.writeError(c, err)
		return
	}
	amharic, english := calendar.MonthName(month)
	c.JSON(http.StatusOK, gin.H{
		"year":          year,
		"month":         month,
		"month_name":    english,
		"month_name_am": amharic,
		"days":          days,
	})
}

// AddProject adds a project line to a loaded period.
func (h *Handlers) AddProject(c *gin.Context) {
	key, ok := h.parsePeriod(c)
	if !ok {
		return
	}
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project, err := h.store.AddProject(key.EmployeeID, key.Year, key.Month, req.Name, req.AllocatedHours)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.persist(key)
	c.JSON(http.StatusCreated, project)
}

// DeleteProject removes a project line and its hours.
func (h *Handlers) DeleteProject(c *gin.Context) {
	key, ok := h.parsePeriod(c)
	if !ok {
		return
	}
	projectID, err := strconv.ParseInt(c.Param("project_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	if err := h.store.DeleteProject(key.EmployeeID, key.Year, key.Month, projectID); err != nil {
		h.writeError(c, err)
		return
	}
	h.persist(key)
	c.JSON(http.StatusOK, gin.H{"deleted": projectID})
}

// SetProjectHours records hours for one project on one day.
func (h *Handlers) SetProjectHours(c *gin.Context) {
	key, ok := h.parsePeriod(c)
	if !ok {
		return
	}
	projectID, err := strconv.ParseInt(c.Param("project_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}
	var req hoursRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.SetProjectHours(key.EmployeeID, key.Year, key.Month, projectID, req.Day, req.Hours); err != nil {
		h.writeError(c, err)
		return
	}
	h.persist(key)
	c.JSON(http.StatusOK, gin.H{"day": req.Day, "hours": req.Hours})
}

// SetLeaveHours records leave hours for one category on one day.
func (h *Handlers) SetLeaveHours(c *gin.Context) {
	key, ok := h.parsePeriod(c)
	if !ok {
		return
	}
	category := timesheet.LeaveCategory(c.Param("category"))
	var req hoursRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.SetLeaveHours(key.EmployeeID, key.Year, key.Month, category, req.Day, req.Hours); err != nil {
		h.writeError(c, err)
		return
	}
	h.persist(key)
	c.JSON(http.StatusOK, gin.H{"day": req.Day, "hours": req.Hours})
}

// Prefill fills the default project with standard hours on empty workdays.
func (h *Handlers) Prefill(c *gin.Context) {
	key, ok := h.parsePeriod(c)
	if !ok {
		return
	}
	filled, err := h.store.PrefillDefaultHours(key.EmployeeID, key.Year, key.Month)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.persist(key)
	c.JSON(http.StatusOK, gin.H{"filled_days": filled})
}

// ClearAll removes every hour entry from a period, keeping the projects.
func (h *Handlers) ClearAll(c *gin.Context) {
	key, ok := h.parsePeriod(c)
	if !ok {
		return
	}
	if err := h.store.ClearAll(key.EmployeeID, key.Year, key.Month); err != nil {
		h.writeError(c, err)
		return
	}
	h.persist(key)
	c.JSON(http.StatusOK, gin.H{"cleared": true})
}

// ExportPeriod renders the period to an Excel workbook and serves it.
func (h *Handlers) ExportPeriod(c *gin.Context) {
	key, ok := h.parsePeriod(c)
	if !ok {
		return
	}
	path, _, err := h.renderWorkbook(key)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.FileAttachment(path, filepath.Base(path))
}

// SubmitPeriod exports the workbook, mails it to HR and stamps the
// period as submitted.
func (h *Handlers) SubmitPeriod(c *gin.Context) {
	key, ok := h.parsePeriod(c)
	if !ok {
		return
	}

	path, table, err := h.renderWorkbook(key)
	if err != nil {
		h.writeError(c, err)
		return
	}

	if h.mailer != nil {
		emp, err := h.lookupEmployee(key.EmployeeID)
		if err != nil {
			h.writeError(c, err)
			return
		}
		if err := h.mailer.SendTimesheet(path, emp, table.MonthLabel); err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "failed to send submission email"})
			return
		}
	}

	submittedAt := time.Now()
	if h.periods != nil {
		doc, err := h.store.Document(key.EmployeeID, key.Year, key.Month)
		if err != nil {
			h.writeError(c, err)
			return
		}
		if err := h.periods.MarkSubmitted(doc, submittedAt); err != nil {
			h.writeError(c, err)
			return
		}
	}

	h.logger.Info("Timesheet submitted",
		zap.Int64("employee_id", key.EmployeeID),
		zap.Int("year", key.Year),
		zap.Int("month", key.Month),
		zap.String("file", path))
	c.JSON(http.StatusOK, gin.H{
		"submitted_at": submittedAt.Format(time.RFC3339),
		"file":         filepath.Base(path),
	})
}

// CreateEmployee registers an employee in the directory.
func (h *Handlers) CreateEmployee(c *gin.Context) {
	if h.employees == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "employee directory not configured"})
		return
	}
	var req employeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	emp := &repository.Employee{
		FullName:           req.FullName,
		Email:              req.Email,
		Position:           req.Position,
		Department:         req.Department,
		SupervisorName:     req.SupervisorName,
		SupervisorPosition: req.SupervisorPosition,
		SupervisorEmail:    req.SupervisorEmail,
	}
	if err := h.employees.Create(emp); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, emp)
}

// GetEmployee looks up an employee by ID.
func (h *Handlers) GetEmployee(c *gin.Context) {
	if h.employees == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "employee directory not configured"})
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid employee id"})
		return
	}
	emp, err := h.employees.GetByID(id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if emp == nil {
		h.writeError(c, errEmployeeNotFound)
		return
	}
	c.JSON(http.StatusOK, emp)
}

func (h *Handlers) renderWorkbook(key periodKey) (string, *report.Table, error) {
	snap, err := h.store.Aggregate(key.EmployeeID, key.Year, key.Month)
	if err != nil {
		return "", nil, err
	}
	doc, err := h.store.Document(key.EmployeeID, key.Year, key.Month)
	if err != nil {
		return "", nil, err
	}
	days, err := h.cal.EnumerateMonth(key.Year, key.Month)
	if err != nil {
		return "", nil, err
	}

	emp, err := h.lookupEmployee(key.EmployeeID)
	if err != nil {
		return "", nil, err
	}

	table, err := report.Project(snap, days, emp.FullName)
	if err != nil {
		return "", nil, err
	}
	table.FillHours(doc)

	path, err := h.exporter.Export(table, emp.FullName, key.Year, key.Month)
	if err != nil {
		return "", nil, err
	}
	return path, table, nil
}

// lookupEmployee resolves the employee record, synthesizing a minimal
// one when no directory is configured.
func (h *Handlers) lookupEmployee(id int64) (*repository.Employee, error) {
	if h.employees == nil {
		return &repository.Employee{ID: id, FullName: strconv.FormatInt(id, 10)}, nil
	}
	emp, err := h.employees.GetByID(id)
	if err != nil {
		return nil, err
	}
	if emp == nil {
		return nil, errEmployeeNotFound
	}
	return emp, nil
}
