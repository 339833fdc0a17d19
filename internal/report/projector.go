// Package report projects an aggregated timesheet snapshot into the fixed
// row/column layout shared by the Excel export and the preview surfaces.
// The projection is a pure view: it reads the snapshot and never mutates it.
package report

import (
	"fmt"
	"strconv"

	"github.com/merqhr/timesheet/internal/calendar"
	"github.com/merqhr/timesheet/internal/timesheet"
)

// RowKind identifies the role of a table row.
type RowKind int

const (
	RowEmployee RowKind = iota
	RowDate
	RowWeekday
	RowProject
	RowLeave
	RowDirectTotal
	RowLeaveTotal
	RowGrandTotal
)

// Row is one line of the projected table. Days holds one cell per calendar
// day; empty cells stay empty strings so renderers can leave them blank.
type Row struct {
	Kind      RowKind  `json:"kind"`
	Label     string   `json:"label"`
	Allocated string   `json:"allocated"`
	Days      []string `json:"days"`
	Total     string   `json:"total"`
}

// Table is the full projected timesheet: fixed leading columns (label,
// allocated hours), one column per day, and a trailing total column.
type Table struct {
	EmployeeName string   `json:"employee_name"`
	MonthLabel   string   `json:"month_label"`
	DayHeaders   []string `json:"day_headers"`
	Rows         []Row    `json:"rows"`
}

// Project builds the table from an aggregated snapshot and the calendar
// data of its month. The day list must match the snapshot's period.
func Project(snap *timesheet.Snapshot, days []calendar.DayInfo, employeeName string) (*Table, error) {
	if len(days) != snap.DayCount {
		return nil, fmt.Errorf("day list has %d entries, snapshot has %d days", len(days), snap.DayCount)
	}

	amharic, english := calendar.MonthName(snap.Month)
	table := &Table{
		EmployeeName: employeeName,
		MonthLabel:   fmt.Sprintf("%s / %s %d", amharic, english, snap.Year),
		DayHeaders:   make([]string, len(days)),
	}
	for i, d := range days {
		table.DayHeaders[i] = strconv.Itoa(d.Day)
	}

	table.Rows = append(table.Rows, Row{
		Kind:  RowEmployee,
		Label: "ሠራተኛ / Employee",
		Days:  blankCells(len(days)),
		Total: employeeName,
	})

	dateRow := Row{Kind: RowDate, Label: "ቀን / Date", Days: make([]string, len(days))}
	weekdayRow := Row{Kind: RowWeekday, Label: "የሳምንት ቀን / Weekday", Days: make([]string, len(days))}
	for i, d := range days {
		dateRow.Days[i] = d.Date.String()
		weekdayRow.Days[i] = d.Weekday.Amharic()
	}
	table.Rows = append(table.Rows, dateRow, weekdayRow)

	for _, p := range snap.Projects {
		row := Row{
			Kind:      RowProject,
			Label:     p.Name,
			Allocated: formatHours(p.AllocatedHours),
			Days:      make([]string, len(days)),
			Total:     formatHours(p.TotalHours),
		}
		table.Rows = append(table.Rows, row)
	}

	for _, cat := range timesheet.LeaveCategories {
		table.Rows = append(table.Rows, Row{
			Kind:  RowLeave,
			Label: cat.Label(),
			Days:  make([]string, len(days)),
			Total: formatHours(snap.LeaveTotals[cat]),
		})
	}

	directRow := Row{Kind: RowDirectTotal, Label: "ጠቅላላ የስራ ሰዓቶች / Total Work Hours", Days: make([]string, len(days)), Total: formatHours(snap.TotalWorkHours)}
	leaveRow := Row{Kind: RowLeaveTotal, Label: "ጠቅላላ የፈቃድ ሰዓቶች / Total Leave Hours", Days: make([]string, len(days)), Total: formatHours(snap.TotalLeaveHours)}
	grandRow := Row{Kind: RowGrandTotal, Label: "ጠቅላላ ሁሉ / Grand Total", Days: make([]string, len(days)), Total: formatHours(snap.GrandTotal)}
	for i := range days {
		day := i + 1
		directRow.Days[i] = formatHoursCell(snap.DirectHours(day))
		leaveRow.Days[i] = formatHoursCell(snap.LeaveHours(day))
		grandRow.Days[i] = formatHoursCell(snap.GrandHours(day))
	}
	table.Rows = append(table.Rows, directRow, leaveRow, grandRow)

	return table, nil
}

// FillHours writes the per-day hour cells of the project and leave rows
// from a period document. Kept separate from Project so the projector
// itself only depends on the derived snapshot.
func (t *Table) FillHours(doc timesheet.Document) {
	projectIdx := 0
	leaveIdx := 0
	for r := range t.Rows {
		row := &t.Rows[r]
		switch row.Kind {
		case RowProject:
			if projectIdx < len(doc.Projects) {
				fillDayCells(row.Days, doc.Projects[projectIdx].Hours)
			}
			projectIdx++
		case RowLeave:
			if leaveIdx < len(timesheet.LeaveCategories) {
				fillDayCells(row.Days, doc.Leave[timesheet.LeaveCategories[leaveIdx]])
			}
			leaveIdx++
		}
	}
}

func fillDayCells(cells []string, hours map[int]float64) {
	for day, h := range hours {
		if day >= 1 && day <= len(cells) && h > 0 {
			cells[day-1] = formatHours(h)
		}
	}
}

func blankCells(n int) []string {
	return make([]string, n)
}

func formatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}

// formatHoursCell leaves zero totals blank in the daily grid.
func formatHoursCell(h float64) string {
	if h == 0 {
		return ""
	}
	return formatHours(h)
}
