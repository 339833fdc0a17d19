package timesheet

import (
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/merqhr/timesheet/internal/calendar"
)

// Config holds the timesheet policy settings.
type Config struct {
	// DefaultProjectName names the built-in project of every period.
	DefaultProjectName string
	// DailyCap is the ceiling on the sum of all entries for one day.
	DailyCap float64
	// PrefillHours are the default hours written per weekday by
	// PrefillDefaultHours. A zero entry leaves that weekday untouched.
	PrefillHours map[calendar.Weekday]float64
}

// DefaultConfig returns the standard policy: 24h daily cap, 8-hour
// weekdays, free weekends.
func DefaultConfig() Config {
	return Config{
		DefaultProjectName: "General",
		DailyCap:           24.0,
		PrefillHours: map[calendar.Weekday]float64{
			calendar.Monday:    8,
			calendar.Tuesday:   8,
			calendar.Wednesday: 8,
			calendar.Thursday:  8,
			calendar.Friday:    8,
		},
	}
}

type periodKey struct {
	employeeID  int64
	year, month int
}

// periodState serializes all mutations of one period. Different periods
// proceed in parallel.
type periodState struct {
	mu     sync.Mutex
	period *Period
}

// Store holds the loaded timesheet periods and enforces their invariants.
// It performs no I/O; persistence is wired around it by the callers.
type Store struct {
	mu      sync.RWMutex
	periods map[periodKey]*periodState

	cal    *calendar.Engine
	cfg    Config
	logger *zap.Logger
	now    func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the wall clock used for future-date checks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates a timesheet store.
func NewStore(cal *calendar.Engine, cfg Config, logger *zap.Logger, opts ...Option) *Store {
	if cfg.DailyCap <= 0 {
		cfg.DailyCap = 24.0
	}
	if cfg.DefaultProjectName == "" {
		cfg.DefaultProjectName = "General"
	}
	s := &Store{
		periods: make(map[periodKey]*periodState),
		cal:     cal,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadPeriod materializes the period for (employee, year, month), creating
// it with the default project if absent. Repeated loads return the same
// logical state.
func (s *Store) LoadPeriod(employeeID int64, year, month int) (Document, error) {
	days, err := s.cal.EnumerateMonth(year, month)
	if err != nil {
		return Document{}, err
	}

	key := periodKey{employeeID, year, month}

	s.mu.Lock()
	state, ok := s.periods[key]
	if !ok {
		state = &periodState{period: s.newPeriod(employeeID, year, month, days)}
		s.periods[key] = state
		s.logger.Info("timesheet period created",
			zap.Int64("employee_id", employeeID),
			zap.Int("year", year),
			zap.Int("month", month),
			zap.Int("days", len(days)))
	}
	s.mu.Unlock()

	state.mu.Lock()
	defer state.mu.Unlock()
	return state.period.document(), nil
}

// Restore materializes a period from a persisted document, replacing any
// in-memory state for the same key.
func (s *Store) Restore(doc Document) error {
	count, err := calendar.DaysInMonth(doc.Year, doc.Month)
	if err != nil {
		return err
	}

	p := &Period{
		EmployeeID: doc.EmployeeID,
		Year:       doc.Year,
		Month:      doc.Month,
		DayCount:   count,
		Leave:      emptyLeave(),
	}
	for _, dp := range doc.Projects {
		hours := make(map[int]float64, len(dp.Hours))
		for d, h := range dp.Hours {
			hours[d] = h
		}
		p.Projects = append(p.Projects, &Project{
			ID:             dp.ID,
			Name:           dp.Name,
			AllocatedHours: dp.AllocatedHours,
			Hours:          hours,
		})
		if dp.ID >= p.nextProjectID {
			p.nextProjectID = dp.ID + 1
		}
	}
	if p.Project(DefaultProjectID) == nil {
		return invalidf("document", "default project missing")
	}
	for cat, entries := range doc.Leave {
		if !cat.IsValid() {
			return invalidf("leave_category", "unknown category %q", cat)
		}
		copied := make(map[int]float64, len(entries))
		for d, h := range entries {
			copied[d] = h
		}
		p.Leave[cat] = copied
	}

	key := periodKey{doc.EmployeeID, doc.Year, doc.Month}
	s.mu.Lock()
	s.periods[key] = &periodState{period: p}
	s.mu.Unlock()
	return nil
}

// Document returns the persistence snapshot of a loaded period.
func (s *Store) Document(employeeID int64, year, month int) (Document, error) {
	state, err := s.state(employeeID, year, month)
	if err != nil {
		return Document{}, err
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	return state.period.document(), nil
}

// Aggregate derives the current totals of a loaded period.
func (s *Store) Aggregate(employeeID int64, year, month int) (*Snapshot, error) {
	state, err := s.state(employeeID, year, month)
	if err != nil {
		return nil, err
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	return Aggregate(state.period), nil
}

// AddProject appends a user project to a loaded period.
func (s *Store) AddProject(employeeID int64, year, month int, name string, allocatedHours float64) (DocumentProject, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return DocumentProject{}, invalidf("name", "must not be empty")
	}
	if allocatedHours < 0 {
		return DocumentProject{}, invalidf("allocated_hours", "must not be negative")
	}

	state, err := s.state(employeeID, year, month)
	if err != nil {
		return DocumentProject{}, err
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	p := state.period
	project := &Project{
		ID:             p.nextProjectID,
		Name:           name,
		AllocatedHours: allocatedHours,
		Hours:          make(map[int]float64),
	}
	p.nextProjectID++
	p.Projects = append(p.Projects, project)

	s.logger.Info("project added",
		zap.Int64("employee_id", employeeID),
		zap.Int64("project_id", project.ID),
		zap.String("name", name))

	return DocumentProject{ID: project.ID, Name: project.Name, AllocatedHours: project.AllocatedHours, Hours: map[int]float64{}}, nil
}

// DeleteProject removes a user project and its hour entries. The default
// project is protected.
func (s *Store) DeleteProject(employeeID int64, year, month int, projectID int64) error {
	if projectID == DefaultProjectID {
		return ErrProtectedProject
	}

	state, err := s.state(employeeID, year, month)
	if err != nil {
		return err
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	p := state.period
	for i, pr := range p.Projects {
		if pr.ID == projectID {
			p.Projects = append(p.Projects[:i], p.Projects[i+1:]...)
			s.logger.Info("project deleted",
				zap.Int64("employee_id", employeeID),
				zap.Int64("project_id", projectID))
			return nil
		}
	}
	return ErrProjectNotFound
}

// SetProjectHours replaces the hour entry of (project, day). A zero value
// clears the entry.
func (s *Store) SetProjectHours(employeeID int64, year, month int, projectID int64, day int, hours float64) error {
	state, err := s.state(employeeID, year, month)
	if err != nil {
		return err
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	p := state.period
	project := p.Project(projectID)
	if project == nil {
		return ErrProjectNotFound
	}
	if err := s.validateWrite(p, day, hours, project.Hours[day]); err != nil {
		return err
	}

	setHours(project.Hours, day, hours)
	return nil
}

// SetLeaveHours replaces the hour entry of (category, day). A zero value
// clears the entry.
func (s *Store) SetLeaveHours(employeeID int64, year, month int, category LeaveCategory, day int, hours float64) error {
	if !category.IsValid() {
		return invalidf("leave_category", "unknown category %q", category)
	}

	state, err := s.state(employeeID, year, month)
	if err != nil {
		return err
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	p := state.period
	if err := s.validateWrite(p, day, hours, p.Leave[category][day]); err != nil {
		return err
	}

	setHours(p.Leave[category], day, hours)
	return nil
}

// ClearAll resets every hour entry of the period. User projects survive;
// only their hours are dropped.
func (s *Store) ClearAll(employeeID int64, year, month int) error {
	state, err := s.state(employeeID, year, month)
	if err != nil {
		return err
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	p := state.period
	for _, pr := range p.Projects {
		pr.Hours = make(map[int]float64)
	}
	p.Leave = emptyLeave()

	s.logger.Info("timesheet cleared",
		zap.Int64("employee_id", employeeID),
		zap.Int("year", year),
		zap.Int("month", month))
	return nil
}

// PrefillDefaultHours writes the configured per-weekday default hours to
// the default project for every day that has no entries yet. Future days,
// rest days with a zero default and days where the fill would breach the
// daily cap are skipped. Returns the number of days filled.
func (s *Store) PrefillDefaultHours(employeeID int64, year, month int) (int, error) {
	days, err := s.cal.EnumerateMonth(year, month)
	if err != nil {
		return 0, err
	}

	state, err := s.state(employeeID, year, month)
	if err != nil {
		return 0, err
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	p := state.period
	project := p.Project(DefaultProjectID)
	now := s.now()

	filled := 0
	for _, info := range days {
		hours := s.cfg.PrefillHours[info.Weekday]
		if hours <= 0 || hours > s.cfg.DailyCap {
			continue
		}
		if p.hasEntries(info.Day) {
			continue
		}
		future, err := s.cal.IsFuture(info.Date, now)
		if err != nil {
			return filled, err
		}
		if future {
			continue
		}
		project.Hours[info.Day] = hours
		filled++
	}

	s.logger.Info("default hours prefilled",
		zap.Int64("employee_id", employeeID),
		zap.Int("year", year),
		zap.Int("month", month),
		zap.Int("days_filled", filled))
	return filled, nil
}

// state looks up a loaded period.
func (s *Store) state(employeeID int64, year, month int) (*periodState, error) {
	s.mu.RLock()
	state, ok := s.periods[periodKey{employeeID, year, month}]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrPeriodNotLoaded
	}
	return state, nil
}

// validateWrite checks one replacing hour write against the period rules.
func (s *Store) validateWrite(p *Period, day int, hours, previous float64) error {
	if hours < 0 {
		return invalidf("hours", "must not be negative")
	}
	if day < 1 || day > p.DayCount {
		return invalidf("day", "must be between 1 and %d", p.DayCount)
	}

	date := calendar.EthiopianDate{Year: p.Year, Month: p.Month, Day: day}
	future, err := s.cal.IsFuture(date, s.now())
	if err != nil {
		return err
	}
	if future {
		return invalidf("day", "date %s is in the future", date)
	}

	if p.DayTotal(day)-previous+hours > s.cfg.DailyCap {
		return ErrDailyCapExceeded
	}
	return nil
}

// newPeriod builds a fresh period with the default project. Its allocated
// hours follow the month's standard working hours under the prefill
// pattern.
func (s *Store) newPeriod(employeeID int64, year, month int, days []calendar.DayInfo) *Period {
	var standard float64
	for _, info := range days {
		standard += s.cfg.PrefillHours[info.Weekday]
	}
	return &Period{
		EmployeeID: employeeID,
		Year:       year,
		Month:      month,
		DayCount:   len(days),
		Projects: []*Project{{
			ID:             DefaultProjectID,
			Name:           s.cfg.DefaultProjectName,
			AllocatedHours: standard,
			Hours:          make(map[int]float64),
		}},
		Leave:         emptyLeave(),
		nextProjectID: DefaultProjectID + 1,
	}
}

func setHours(entries map[int]float64, day int, hours float64) {
	if hours == 0 {
		delete(entries, day)
		return
	}
	entries[day] = hours
}

func emptyLeave() map[LeaveCategory]map[int]float64 {
	leave := make(map[LeaveCategory]map[int]float64, len(LeaveCategories))
	for _, cat := range LeaveCategories {
		leave[cat] = make(map[int]float64)
	}
	return leave
}
