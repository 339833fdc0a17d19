package timesheet

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/merqhr/timesheet/internal/calendar"
)

// Fixed "now": Yekatit 26 2017 (March 5 2025). Tir 2017 lies fully in the
// past relative to it.
var testNow = time.Date(2025, time.March, 5, 10, 0, 0, 0, time.UTC)

const (
	testEmployee = int64(42)
	testYear     = 2017
	testMonth    = 5 // Tir
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	cal, err := calendar.NewEngine(calendar.Config{Timezone: "UTC"})
	require.NoError(t, err)
	return NewStore(cal, DefaultConfig(), zap.NewNop(), WithClock(func() time.Time { return testNow }))
}

func loadTestPeriod(t *testing.T, s *Store) Document {
	t.Helper()
	doc, err := s.LoadPeriod(testEmployee, testYear, testMonth)
	require.NoError(t, err)
	return doc
}

func TestLoadPeriodCreatesDefaultProject(t *testing.T) {
	s := newTestStore(t)
	doc := loadTestPeriod(t, s)

	assert.Equal(t, testEmployee, doc.EmployeeID)
	assert.Equal(t, 30, doc.DayCount)
	require.Len(t, doc.Projects, 1)
	assert.Equal(t, DefaultProjectID, doc.Projects[0].ID)
	assert.Equal(t, "General", doc.Projects[0].Name)
	// Tir 2017 starts on a Thursday: 22 working days at 8h each.
	assert.Equal(t, 176.0, doc.Projects[0].AllocatedHours)
}

func TestLoadPeriodIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	loadTestPeriod(t, s)

	_, err := s.AddProject(testEmployee, testYear, testMonth, "Audit", 40)
	require.NoError(t, err)
	require.NoError(t, s.SetProjectHours(testEmployee, testYear, testMonth, DefaultProjectID, 1, 6))

	again, err := s.LoadPeriod(testEmployee, testYear, testMonth)
	require.NoError(t, err)
	require.Len(t, again.Projects, 2, "reload must not duplicate projects")
	assert.Equal(t, 6.0, again.Projects[0].Hours[1])

	third, err := s.LoadPeriod(testEmployee, testYear, testMonth)
	require.NoError(t, err)
	assert.Equal(t, again, third)
}

func TestLoadPeriodRejectsInvalidMonth(t *testing.T) {
	s := newTestStore(t)
	_, err := s.LoadPeriod(testEmployee, testYear, 14)
	assert.ErrorIs(t, err, calendar.ErrInvalidDate)
}

func TestOperationsRequireLoadedPeriod(t *testing.T) {
	s := newTestStore(t)

	_, err := s.AddProject(testEmployee, testYear, testMonth, "Audit", 40)
	assert.ErrorIs(t, err, ErrPeriodNotLoaded)
	assert.ErrorIs(t, s.SetProjectHours(testEmployee, testYear, testMonth, DefaultProjectID, 1, 8), ErrPeriodNotLoaded)
	assert.ErrorIs(t, s.SetLeaveHours(testEmployee, testYear, testMonth, LeaveSick, 1, 8), ErrPeriodNotLoaded)
	assert.ErrorIs(t, s.DeleteProject(testEmployee, testYear, testMonth, 2), ErrPeriodNotLoaded)
	assert.ErrorIs(t, s.ClearAll(testEmployee, testYear, testMonth), ErrPeriodNotLoaded)
	_, err = s.PrefillDefaultHours(testEmployee, testYear, testMonth)
	assert.ErrorIs(t, err, ErrPeriodNotLoaded)
	_, err = s.Aggregate(testEmployee, testYear, testMonth)
	assert.ErrorIs(t, err, ErrPeriodNotLoaded)
	_, err = s.Document(testEmployee, testYear, testMonth)
	assert.ErrorIs(t, err, ErrPeriodNotLoaded)
}

func TestAddProjectValidation(t *testing.T) {
	s := newTestStore(t)
	loadTestPeriod(t, s)

	var verr *ValidationError

	_, err := s.AddProject(testEmployee, testYear, testMonth, "   ", 10)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name", verr.Field)

	_, err = s.AddProject(testEmployee, testYear, testMonth, "Audit", -1)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "allocated_hours", verr.Field)
}

func TestAddProjectAssignsFreshIDsInOrder(t *testing.T) {
	s := newTestStore(t)
	loadTestPeriod(t, s)

	audit, err := s.AddProject(testEmployee, testYear, testMonth, "Audit", 40)
	require.NoError(t, err)
	survey, err := s.AddProject(testEmployee, testYear, testMonth, "Survey", 20)
	require.NoError(t, err)

	assert.Equal(t, int64(2), audit.ID)
	assert.Equal(t, int64(3), survey.ID)

	doc, err := s.Document(testEmployee, testYear, testMonth)
	require.NoError(t, err)
	names := []string{doc.Projects[0].Name, doc.Projects[1].Name, doc.Projects[2].Name}
	assert.Equal(t, []string{"General", "Audit", "Survey"}, names, "insertion order preserved")

	// IDs are never reused after a delete.
	require.NoError(t, s.DeleteProject(testEmployee, testYear, testMonth, survey.ID))
	again, err := s.AddProject(testEmployee, testYear, testMonth, "Field Work", 10)
	require.NoError(t, err)
	assert.Equal(t, int64(4), again.ID)
}

func TestDeleteProject(t *testing.T) {
	s := newTestStore(t)
	loadTestPeriod(t, s)

	assert.ErrorIs(t, s.DeleteProject(testEmployee, testYear, testMonth, DefaultProjectID), ErrProtectedProject)
	assert.ErrorIs(t, s.DeleteProject(testEmployee, testYear, testMonth, 99), ErrProjectNotFound)

	audit, err := s.AddProject(testEmployee, testYear, testMonth, "Audit", 40)
	require.NoError(t, err)
	require.NoError(t, s.SetProjectHours(testEmployee, testYear, testMonth, audit.ID, 1, 8))

	require.NoError(t, s.DeleteProject(testEmployee, testYear, testMonth, audit.ID))

	snap, err := s.Aggregate(testEmployee, testYear, testMonth)
	require.NoError(t, err)
	assert.Zero(t, snap.DirectHours(1), "deleting a project removes its hour entries")
}

func TestSetHoursValidation(t *testing.T) {
	s := newTestStore(t)
	loadTestPeriod(t, s)

	var verr *ValidationError

	err := s.SetProjectHours(testEmployee, testYear, testMonth, DefaultProjectID, 1, -2)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "hours", verr.Field)

	for _, day := range []int{0, 31} {
		err = s.SetProjectHours(testEmployee, testYear, testMonth, DefaultProjectID, day, 8)
		require.ErrorAs(t, err, &verr, "day %d", day)
		assert.Equal(t, "day", verr.Field)
	}

	err = s.SetProjectHours(testEmployee, testYear, testMonth, 77, 1, 8)
	assert.ErrorIs(t, err, ErrProjectNotFound)

	err = s.SetLeaveHours(testEmployee, testYear, testMonth, LeaveCategory("sabbatical"), 1, 8)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "leave_category", verr.Field)
}

func TestSetHoursRejectsFutureDates(t *testing.T) {
	s := newTestStore(t)
	// Yekatit 2017: "today" is Yekatit 26.
	_, err := s.LoadPeriod(testEmployee, testYear, 6)
	require.NoError(t, err)

	require.NoError(t, s.SetProjectHours(testEmployee, testYear, 6, DefaultProjectID, 26, 8))

	var verr *ValidationError
	err = s.SetProjectHours(testEmployee, testYear, 6, DefaultProjectID, 27, 8)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "day", verr.Field)

	err = s.SetLeaveHours(testEmployee, testYear, 6, LeaveVacation, 27, 8)
	require.ErrorAs(t, err, &verr)
}

func TestDailyCapScenario(t *testing.T) {
	s := newTestStore(t)
	loadTestPeriod(t, s)

	audit, err := s.AddProject(testEmployee, testYear, testMonth, "Audit", 40)
	require.NoError(t, err)

	require.NoError(t, s.SetProjectHours(testEmployee, testYear, testMonth, audit.ID, 1, 8))
	require.NoError(t, s.SetLeaveHours(testEmployee, testYear, testMonth, LeaveSick, 1, 2))

	snap, err := s.Aggregate(testEmployee, testYear, testMonth)
	require.NoError(t, err)
	assert.Equal(t, 8.0, snap.DirectHours(1))
	assert.Equal(t, 2.0, snap.LeaveHours(1))
	assert.Equal(t, 10.0, snap.GrandHours(1))

	// 8 + 2 + 15 = 25 breaches the cap regardless of which entity takes
	// the write.
	assert.ErrorIs(t, s.SetProjectHours(testEmployee, testYear, testMonth, DefaultProjectID, 1, 15), ErrDailyCapExceeded)
	assert.ErrorIs(t, s.SetLeaveHours(testEmployee, testYear, testMonth, LeaveVacation, 1, 15), ErrDailyCapExceeded)

	// Rejected writes leave prior state intact.
	snap, err = s.Aggregate(testEmployee, testYear, testMonth)
	require.NoError(t, err)
	assert.Equal(t, 10.0, snap.GrandHours(1))

	// Exactly 24 is allowed.
	require.NoError(t, s.SetProjectHours(testEmployee, testYear, testMonth, DefaultProjectID, 1, 14))
	snap, err = s.Aggregate(testEmployee, testYear, testMonth)
	require.NoError(t, err)
	assert.Equal(t, 24.0, snap.GrandHours(1))
}

func TestSetHoursReplacesPriorValue(t *testing.T) {
	s := newTestStore(t)
	loadTestPeriod(t, s)

	require.NoError(t, s.SetProjectHours(testEmployee, testYear, testMonth, DefaultProjectID, 2, 8))
	require.NoError(t, s.SetProjectHours(testEmployee, testYear, testMonth, DefaultProjectID, 2, 5))

	snap, err := s.Aggregate(testEmployee, testYear, testMonth)
	require.NoError(t, err)
	assert.Equal(t, 5.0, snap.DirectHours(2), "writes replace, never add")

	// Rewriting a full day at the same value passes the cap check.
	require.NoError(t, s.SetProjectHours(testEmployee, testYear, testMonth, DefaultProjectID, 3, 24))
	require.NoError(t, s.SetProjectHours(testEmployee, testYear, testMonth, DefaultProjectID, 3, 24))

	// A zero write clears the entry.
	require.NoError(t, s.SetProjectHours(testEmployee, testYear, testMonth, DefaultProjectID, 2, 0))
	doc, err := s.Document(testEmployee, testYear, testMonth)
	require.NoError(t, err)
	_, ok := doc.Projects[0].Hours[2]
	assert.False(t, ok)
}

func TestClearAllKeepsProjects(t *testing.T) {
	s := newTestStore(t)
	loadTestPeriod(t, s)

	audit, err := s.AddProject(testEmployee, testYear, testMonth, "Audit", 40)
	require.NoError(t, err)
	require.NoError(t, s.SetProjectHours(testEmployee, testYear, testMonth, audit.ID, 1, 8))
	require.NoError(t, s.SetLeaveHours(testEmployee, testYear, testMonth, LeaveHoliday, 2, 8))

	require.NoError(t, s.ClearAll(testEmployee, testYear, testMonth))

	doc, err := s.Document(testEmployee, testYear, testMonth)
	require.NoError(t, err)
	require.Len(t, doc.Projects, 2, "user projects survive a clear")
	for _, p := range doc.Projects {
		assert.Empty(t, p.Hours)
	}
	for _, entries := range doc.Leave {
		assert.Empty(t, entries)
	}
}

func TestPrefillDefaultHoursFillsWorkdays(t *testing.T) {
	s := newTestStore(t)
	loadTestPeriod(t, s)

	filled, err := s.PrefillDefaultHours(testEmployee, testYear, testMonth)
	require.NoError(t, err)
	assert.Equal(t, 22, filled)

	cal, err := calendar.NewEngine(calendar.Config{Timezone: "UTC"})
	require.NoError(t, err)
	days, err := cal.EnumerateMonth(testYear, testMonth)
	require.NoError(t, err)

	doc, err := s.Document(testEmployee, testYear, testMonth)
	require.NoError(t, err)
	for _, info := range days {
		if info.IsWeekend {
			_, ok := doc.Projects[0].Hours[info.Day]
			assert.False(t, ok, "weekend day %d stays empty", info.Day)
		} else {
			assert.Equal(t, 8.0, doc.Projects[0].Hours[info.Day], "workday %d", info.Day)
		}
	}
}

func TestPrefillSkipsDaysWithEntries(t *testing.T) {
	s := newTestStore(t)
	loadTestPeriod(t, s)

	require.NoError(t, s.SetProjectHours(testEmployee, testYear, testMonth, DefaultProjectID, 1, 3))
	require.NoError(t, s.SetLeaveHours(testEmployee, testYear, testMonth, LeaveSick, 2, 4))

	filled, err := s.PrefillDefaultHours(testEmployee, testYear, testMonth)
	require.NoError(t, err)
	assert.Equal(t, 20, filled)

	doc, err := s.Document(testEmployee, testYear, testMonth)
	require.NoError(t, err)
	assert.Equal(t, 3.0, doc.Projects[0].Hours[1], "pre-existing entry untouched")
	_, ok := doc.Projects[0].Hours[2]
	assert.False(t, ok, "a day with leave entries is not filled")

	// A second prefill finds every workday occupied.
	filled, err = s.PrefillDefaultHours(testEmployee, testYear, testMonth)
	require.NoError(t, err)
	assert.Zero(t, filled)
}

func TestPrefillSkipsFutureDays(t *testing.T) {
	s := newTestStore(t)
	// Yekatit 2017: days 27..30 are in the future.
	_, err := s.LoadPeriod(testEmployee, testYear, 6)
	require.NoError(t, err)

	filled, err := s.PrefillDefaultHours(testEmployee, testYear, 6)
	require.NoError(t, err)
	// Yekatit 1 (Feb 8 2025) is a Saturday; 18 workdays fall on or
	// before Yekatit 26.
	assert.Equal(t, 18, filled)

	doc, err := s.Document(testEmployee, testYear, 6)
	require.NoError(t, err)
	for day := 27; day <= 30; day++ {
		_, ok := doc.Projects[0].Hours[day]
		assert.False(t, ok, "future day %d stays empty", day)
	}
}

func TestPrefillCustomPattern(t *testing.T) {
	cal, err := calendar.NewEngine(calendar.Config{Timezone: "UTC"})
	require.NoError(t, err)
	cfg := DefaultConfig()
	cfg.PrefillHours[calendar.Saturday] = 4 // half-day Saturdays

	s := NewStore(cal, cfg, zap.NewNop(), WithClock(func() time.Time { return testNow }))
	_, err = s.LoadPeriod(testEmployee, testYear, testMonth)
	require.NoError(t, err)

	filled, err := s.PrefillDefaultHours(testEmployee, testYear, testMonth)
	require.NoError(t, err)
	assert.Equal(t, 26, filled)

	doc, err := s.Document(testEmployee, testYear, testMonth)
	require.NoError(t, err)
	// Tir 3 2017 is a Saturday.
	assert.Equal(t, 4.0, doc.Projects[0].Hours[3])
}

func TestDocumentRestoreRoundTrip(t *testing.T) {
	s := newTestStore(t)
	loadTestPeriod(t, s)

	audit, err := s.AddProject(testEmployee, testYear, testMonth, "Audit", 40)
	require.NoError(t, err)
	require.NoError(t, s.SetProjectHours(testEmployee, testYear, testMonth, audit.ID, 1, 8))
	require.NoError(t, s.SetLeaveHours(testEmployee, testYear, testMonth, LeaveSick, 1, 2))

	doc, err := s.Document(testEmployee, testYear, testMonth)
	require.NoError(t, err)

	fresh := newTestStore(t)
	require.NoError(t, fresh.Restore(doc))

	restored, err := fresh.Document(testEmployee, testYear, testMonth)
	require.NoError(t, err)
	assert.Equal(t, doc, restored)

	// The restored period keeps allocating fresh project ids.
	next, err := fresh.AddProject(testEmployee, testYear, testMonth, "Survey", 10)
	require.NoError(t, err)
	assert.Equal(t, audit.ID+1, next.ID)
}

func TestRestoreRejectsBadDocuments(t *testing.T) {
	s := newTestStore(t)

	err := s.Restore(Document{EmployeeID: testEmployee, Year: testYear, Month: 14})
	assert.ErrorIs(t, err, calendar.ErrInvalidDate)

	var verr *ValidationError
	err = s.Restore(Document{EmployeeID: testEmployee, Year: testYear, Month: testMonth})
	require.ErrorAs(t, err, &verr, "default project must be present")

	err = s.Restore(Document{
		EmployeeID: testEmployee,
		Year:       testYear,
		Month:      testMonth,
		Projects:   []DocumentProject{{ID: DefaultProjectID, Name: "General"}},
		Leave:      map[LeaveCategory]map[int]float64{"sabbatical": {1: 8}},
	})
	require.ErrorAs(t, err, &verr)
}

func TestConcurrentWritesRespectDailyCap(t *testing.T) {
	s := newTestStore(t)
	loadTestPeriod(t, s)

	ids := []int64{DefaultProjectID}
	for i := 0; i < 7; i++ {
		p, err := s.AddProject(testEmployee, testYear, testMonth, fmt.Sprintf("P%d", i), 10)
		require.NoError(t, err)
		ids = append(ids, p.ID)
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			// 8 writers x 6h: at most 4 can land on one day.
			_ = s.SetProjectHours(testEmployee, testYear, testMonth, id, 1, 6)
		}(id)
	}
	wg.Wait()

	snap, err := s.Aggregate(testEmployee, testYear, testMonth)
	require.NoError(t, err)
	assert.LessOrEqual(t, snap.GrandHours(1), 24.0)
	assert.Equal(t, 24.0, snap.GrandHours(1), "exactly four 6h writes fit under the cap")
}
