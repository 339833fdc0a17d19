package timesheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildPeriod(t *testing.T, s *Store) {
	t.Helper()
	loadTestPeriod(t, s)

	audit, err := s.AddProject(testEmployee, testYear, testMonth, "Audit", 40)
	require.NoError(t, err)

	require.NoError(t, s.SetProjectHours(testEmployee, testYear, testMonth, DefaultProjectID, 1, 6))
	require.NoError(t, s.SetProjectHours(testEmployee, testYear, testMonth, DefaultProjectID, 2, 8))
	require.NoError(t, s.SetProjectHours(testEmployee, testYear, testMonth, audit.ID, 1, 2))
	require.NoError(t, s.SetProjectHours(testEmployee, testYear, testMonth, audit.ID, 5, 8))
	require.NoError(t, s.SetLeaveHours(testEmployee, testYear, testMonth, LeaveSick, 2, 4))
	require.NoError(t, s.SetLeaveHours(testEmployee, testYear, testMonth, LeaveVacation, 6, 8))
}

func TestAggregateTotals(t *testing.T) {
	s := newTestStore(t)
	buildPeriod(t, s)

	snap, err := s.Aggregate(testEmployee, testYear, testMonth)
	require.NoError(t, err)

	assert.Equal(t, 24.0, snap.TotalWorkHours)
	assert.Equal(t, 12.0, snap.TotalLeaveHours)
	assert.Equal(t, 36.0, snap.GrandTotal)

	assert.Equal(t, 8.0, snap.DirectHours(1))
	assert.Equal(t, 8.0, snap.DirectHours(2))
	assert.Equal(t, 4.0, snap.LeaveHours(2))
	assert.Equal(t, 12.0, snap.GrandHours(2))
	assert.Equal(t, 8.0, snap.GrandHours(6))
	assert.Zero(t, snap.GrandHours(30))

	assert.Equal(t, 4.0, snap.LeaveTotals[LeaveSick])
	assert.Equal(t, 8.0, snap.LeaveTotals[LeaveVacation])
	assert.Zero(t, snap.LeaveTotals[LeaveBereavement])
}

func TestAggregateProjectSummaries(t *testing.T) {
	s := newTestStore(t)
	buildPeriod(t, s)

	snap, err := s.Aggregate(testEmployee, testYear, testMonth)
	require.NoError(t, err)

	require.Len(t, snap.Projects, 2)
	general, audit := snap.Projects[0], snap.Projects[1]

	assert.Equal(t, "General", general.Name)
	assert.Equal(t, 14.0, general.TotalHours)
	assert.InDelta(t, 1.75, general.EquivDays, 1e-9)
	assert.InDelta(t, 14.0/24.0*100, general.PercentDirect, 1e-9)
	assert.InDelta(t, 14.0/36.0*100, general.PercentTotal, 1e-9)

	assert.Equal(t, "Audit", audit.Name)
	assert.Equal(t, 10.0, audit.TotalHours)
	assert.Equal(t, 40.0, audit.AllocatedHours)
	assert.InDelta(t, 1.25, audit.EquivDays, 1e-9)
}

func TestAggregateConsistency(t *testing.T) {
	s := newTestStore(t)
	buildPeriod(t, s)

	snap, err := s.Aggregate(testEmployee, testYear, testMonth)
	require.NoError(t, err)

	var daily, direct, leave float64
	for day := 1; day <= snap.DayCount; day++ {
		assert.Equal(t, snap.DirectHours(day)+snap.LeaveHours(day), snap.GrandHours(day), "day %d", day)
		daily += snap.GrandHours(day)
		direct += snap.DirectHours(day)
		leave += snap.LeaveHours(day)
	}
	assert.InDelta(t, snap.GrandTotal, daily, 1e-9)
	assert.InDelta(t, snap.TotalWorkHours, direct, 1e-9)
	assert.InDelta(t, snap.TotalLeaveHours, leave, 1e-9)
	assert.Equal(t, snap.TotalWorkHours+snap.TotalLeaveHours, snap.GrandTotal)

	var shares float64
	for _, p := range snap.Projects {
		shares += p.PercentDirect
	}
	assert.InDelta(t, 100.0, shares, 1e-9)
}

func TestAggregateEmptyPeriod(t *testing.T) {
	s := newTestStore(t)
	loadTestPeriod(t, s)

	snap, err := s.Aggregate(testEmployee, testYear, testMonth)
	require.NoError(t, err)

	assert.Zero(t, snap.TotalWorkHours)
	assert.Zero(t, snap.GrandTotal)
	require.Len(t, snap.Projects, 1)
	// Zero denominators yield zero percentages, not NaN.
	assert.Zero(t, snap.Projects[0].PercentDirect)
	assert.Zero(t, snap.Projects[0].PercentTotal)
	assert.Zero(t, snap.Projects[0].EquivDays)
}

func TestAggregateLeaveOnlyPeriod(t *testing.T) {
	s := newTestStore(t)
	loadTestPeriod(t, s)

	require.NoError(t, s.SetLeaveHours(testEmployee, testYear, testMonth, LeaveHoliday, 1, 8))

	snap, err := s.Aggregate(testEmployee, testYear, testMonth)
	require.NoError(t, err)

	assert.Zero(t, snap.TotalWorkHours)
	assert.Equal(t, 8.0, snap.GrandTotal)
	assert.Zero(t, snap.Projects[0].PercentDirect, "no direct hours means a zero direct share")
	assert.Zero(t, snap.Projects[0].PercentTotal)
}
