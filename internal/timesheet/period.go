// Package timesheet holds the authoritative state of one employee's monthly
// timesheet: projects, leave entries and hour grids, with the validation
// rules (daily cap, no future dates) enforced on every mutation, and the
// aggregation that derives all display totals from that state.
package timesheet

// DefaultProjectID identifies the built-in project every period starts
// with. It cannot be deleted.
const DefaultProjectID int64 = 1

// StandardWorkday is the hours of one full working day, used for
// equivalent-day figures.
const StandardWorkday = 8.0

// Project is one line of direct work on the timesheet. Hours maps
// day-of-month to logged hours; days without an entry are absent.
type Project struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	AllocatedHours float64         `json:"allocated_hours"`
	Hours          map[int]float64 `json:"hours"`
}

// TotalHours sums the project's logged hours across the month.
func (p *Project) TotalHours() float64 {
	var total float64
	for _, h := range p.Hours {
		total += h
	}
	return total
}

// LeaveCategory is one of the fixed leave rows on the timesheet form.
type LeaveCategory string

const (
	LeaveVacation    LeaveCategory = "vacation"
	LeaveSick        LeaveCategory = "sick_leave"
	LeaveHoliday     LeaveCategory = "holiday"
	LeavePersonal    LeaveCategory = "personal_leave"
	LeaveBereavement LeaveCategory = "bereavement"
	LeaveOther       LeaveCategory = "other"
)

// LeaveCategories lists every category in the fixed display order of the
// timesheet form.
var LeaveCategories = []LeaveCategory{
	LeaveVacation,
	LeaveSick,
	LeaveHoliday,
	LeavePersonal,
	LeaveBereavement,
	LeaveOther,
}

var leaveLabels = map[LeaveCategory]string{
	LeaveVacation:    "የእረፍት ጊዜ / VACATION",
	LeaveSick:        "የጤና እረፍት / SICK LEAVE",
	LeaveHoliday:     "በዓል / HOLIDAY",
	LeavePersonal:    "የግል ፈቃድ / PERSONAL LEAVE",
	LeaveBereavement: "የሐዘን እረፍት / BEREAVEMENT",
	LeaveOther:       "ሌሎች / OTHER",
}

// IsValid reports whether c is one of the fixed categories.
func (c LeaveCategory) IsValid() bool {
	_, ok := leaveLabels[c]
	return ok
}

// Label returns the bilingual display label of the category.
func (c LeaveCategory) Label() string {
	return leaveLabels[c]
}

// Period is the aggregate root: one employee's timesheet for one Ethiopian
// (year, month). At most one instance exists per key; it is created on
// first load and cleared rather than deleted.
type Period struct {
	EmployeeID int64                             `json:"employee_id"`
	Year       int                               `json:"year"`
	Month      int                               `json:"month"`
	DayCount   int                               `json:"day_count"`
	Projects   []*Project                        `json:"projects"`
	Leave      map[LeaveCategory]map[int]float64 `json:"leave"`

	nextProjectID int64
}

// Project returns the project with the given id, or nil.
func (p *Period) Project(id int64) *Project {
	for _, pr := range p.Projects {
		if pr.ID == id {
			return pr
		}
	}
	return nil
}

// DayTotal sums every project and leave entry for one day.
func (p *Period) DayTotal(day int) float64 {
	var total float64
	for _, pr := range p.Projects {
		total += pr.Hours[day]
	}
	for _, entries := range p.Leave {
		total += entries[day]
	}
	return total
}

// hasEntries reports whether any project or leave hours exist for the day.
func (p *Period) hasEntries(day int) bool {
	for _, pr := range p.Projects {
		if _, ok := pr.Hours[day]; ok {
			return true
		}
	}
	for _, entries := range p.Leave {
		if _, ok := entries[day]; ok {
			return true
		}
	}
	return false
}

// Document is the persistence-facing snapshot of a period: plain data,
// opaque to the storage layer, round-trippable through Restore.
type Document struct {
	EmployeeID int64                             `json:"employee_id"`
	Year       int                               `json:"year"`
	Month      int                               `json:"month"`
	DayCount   int                               `json:"day_count"`
	Projects   []DocumentProject                 `json:"projects"`
	Leave      map[LeaveCategory]map[int]float64 `json:"leave"`
}

// DocumentProject is the serialized form of one project line.
type DocumentProject struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	AllocatedHours float64         `json:"allocated_hours"`
	Hours          map[int]float64 `json:"hours"`
}

func (p *Period) document() Document {
	doc := Document{
		EmployeeID: p.EmployeeID,
		Year:       p.Year,
		Month:      p.Month,
		DayCount:   p.DayCount,
		Projects:   make([]DocumentProject, 0, len(p.Projects)),
		Leave:      make(map[LeaveCategory]map[int]float64, len(p.Leave)),
	}
	for _, pr := range p.Projects {
		hours := make(map[int]float64, len(pr.Hours))
		for d, h := range pr.Hours {
			hours[d] = h
		}
		doc.Projects = append(doc.Projects, DocumentProject{
			ID:             pr.ID,
			Name:           pr.Name,
			AllocatedHours: pr.AllocatedHours,
			Hours:          hours,
		})
	}
	for cat, entries := range p.Leave {
		copied := make(map[int]float64, len(entries))
		for d, h := range entries {
			copied[d] = h
		}
		doc.Leave[cat] = copied
	}
	return doc
}
