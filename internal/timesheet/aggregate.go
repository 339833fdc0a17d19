package timesheet

// ProjectTotal summarizes one project line for preview and export.
type ProjectTotal struct {
	ProjectID      int64   `json:"project_id"`
	Name           string  `json:"name"`
	AllocatedHours float64 `json:"allocated_hours"`
	TotalHours     float64 `json:"total_hours"`
	// EquivDays is the total expressed in standard 8-hour workdays.
	EquivDays float64 `json:"equiv_days"`
	// PercentDirect is the project's share of all direct work hours.
	PercentDirect float64 `json:"percent_direct"`
	// PercentTotal is the project's share of the monthly grand total.
	PercentTotal float64 `json:"percent_total"`
}

// Snapshot is the derived, read-only view of a period. It is recomputed in
// full from the period state and never mutated in place. Daily slices are
// indexed by day-1.
type Snapshot struct {
	EmployeeID int64 `json:"employee_id"`
	Year       int   `json:"year"`
	Month      int   `json:"month"`
	DayCount   int   `json:"day_count"`

	Projects    []ProjectTotal            `json:"projects"`
	LeaveTotals map[LeaveCategory]float64 `json:"leave_totals"`

	DailyDirect []float64 `json:"daily_direct"`
	DailyLeave  []float64 `json:"daily_leave"`
	DailyGrand  []float64 `json:"daily_grand"`

	TotalWorkHours  float64 `json:"total_work_hours"`
	TotalLeaveHours float64 `json:"total_leave_hours"`
	GrandTotal      float64 `json:"grand_total"`
}

// DirectHours returns the direct work total of one day.
func (s *Snapshot) DirectHours(day int) float64 { return s.DailyDirect[day-1] }

// LeaveHours returns the leave total of one day.
func (s *Snapshot) LeaveHours(day int) float64 { return s.DailyLeave[day-1] }

// GrandHours returns the combined total of one day.
func (s *Snapshot) GrandHours(day int) float64 { return s.DailyGrand[day-1] }

// Aggregate derives all totals from the period state. It is a pure
// function: O(projects x days + categories x days), cheap enough to rerun
// after every single-cell write.
func Aggregate(p *Period) *Snapshot {
	snap := &Snapshot{
		EmployeeID:  p.EmployeeID,
		Year:        p.Year,
		Month:       p.Month,
		DayCount:    p.DayCount,
		LeaveTotals: make(map[LeaveCategory]float64, len(LeaveCategories)),
		DailyDirect: make([]float64, p.DayCount),
		DailyLeave:  make([]float64, p.DayCount),
		DailyGrand:  make([]float64, p.DayCount),
	}

	projectTotals := make([]float64, len(p.Projects))
	for i, pr := range p.Projects {
		for day, hours := range pr.Hours {
			if day < 1 || day > p.DayCount {
				continue
			}
			projectTotals[i] += hours
			snap.DailyDirect[day-1] += hours
		}
		snap.TotalWorkHours += projectTotals[i]
	}

	for _, cat := range LeaveCategories {
		var total float64
		for day, hours := range p.Leave[cat] {
			if day < 1 || day > p.DayCount {
				continue
			}
			total += hours
			snap.DailyLeave[day-1] += hours
		}
		snap.LeaveTotals[cat] = total
		snap.TotalLeaveHours += total
	}

	for i := range snap.DailyGrand {
		snap.DailyGrand[i] = snap.DailyDirect[i] + snap.DailyLeave[i]
	}
	snap.GrandTotal = snap.TotalWorkHours + snap.TotalLeaveHours

	snap.Projects = make([]ProjectTotal, len(p.Projects))
	for i, pr := range p.Projects {
		total := projectTotals[i]
		pt := ProjectTotal{
			ProjectID:      pr.ID,
			Name:           pr.Name,
			AllocatedHours: pr.AllocatedHours,
			TotalHours:     total,
			EquivDays:      total / StandardWorkday,
		}
		if snap.TotalWorkHours > 0 {
			pt.PercentDirect = total / snap.TotalWorkHours * 100
		}
		if snap.GrandTotal > 0 {
			pt.PercentTotal = total / snap.GrandTotal * 100
		}
		snap.Projects[i] = pt
	}

	return snap
}
