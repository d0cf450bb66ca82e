package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haven-journal/haven/internal/model"
	"github.com/haven-journal/haven/internal/repository"
)

func newGoalService(plan string) (*GoalService, *fakeGoalRepo, *fakeProgressRepo) {
	goalRepo := &fakeGoalRepo{}
	progressRepo := &fakeProgressRepo{}
	subRepo := &fakeSubscriptionRepo{sub: activeSub(plan)}
	subs := NewSubscriptionService(subRepo, catalog(), &fakeUsageRepo{})
	return NewGoalService(goalRepo, progressRepo, subs), goalRepo, progressRepo
}

func TestCreateGoalRequiresTitle(t *testing.T) {
	s, _, _ := newGoalService(model.PlanFree)

	_, err := s.CreateGoal("user-1", "   ", "", "")
	assert.ErrorIs(t, err, ErrGoalTitleRequired)
}

func TestCreateGoalEnforcesFreePlanLimit(t *testing.T) {
	s, _, _ := newGoalService(model.PlanFree)

	// Free tier fixture allows three goals.
	for i := 0; i < 3; i++ {
		_, err := s.CreateGoal("user-1", "Sleep more", "", "")
		require.NoError(t, err, "goal %d", i+1)
	}

	_, err := s.CreateGoal("user-1", "One too many", "", "")
	assert.ErrorIs(t, err, ErrGoalLimitReached)
}

func TestCreateGoalUnlimitedOnPro(t *testing.T) {
	s, _, _ := newGoalService(model.PlanPro)

	for i := 0; i < 10; i++ {
		_, err := s.CreateGoal("user-1", "Another goal", "", "")
		require.NoError(t, err)
	}
}

func TestCreateGoalDefaultsToDailyCadence(t *testing.T) {
	s, _, _ := newGoalService(model.PlanPro)

	goal, err := s.CreateGoal("user-1", "Walk outside", "", "hourly")
	require.NoError(t, err)
	assert.Equal(t, model.GoalCadenceDaily, goal.Cadence)

	goal, err = s.CreateGoal("user-1", "Weekly review", "", model.GoalCadenceWeekly)
	require.NoError(t, err)
	assert.Equal(t, model.GoalCadenceWeekly, goal.Cadence)
}

func TestRecordProgressRejectsBadDay(t *testing.T) {
	s, _, progressRepo := newGoalService(model.PlanPro)

	goal, err := s.CreateGoal("user-1", "Walk outside", "", "")
	require.NoError(t, err)

	for _, day := range []string{"today", "2026/08/28", "2026-8-28", ""} {
		_, err = s.RecordProgress("user-1", goal.ID, day, true, "")
		assert.ErrorIs(t, err, ErrInvalidDay, "day %q", day)
	}
	assert.Empty(t, progressRepo.upserts)
}

func TestRecordProgressChecksOwnership(t *testing.T) {
	s, _, _ := newGoalService(model.PlanPro)

	goal, err := s.CreateGoal("user-1", "Walk outside", "", "")
	require.NoError(t, err)

	_, err = s.RecordProgress("someone-else", goal.ID, "2026-08-28", true, "")
	assert.ErrorIs(t, err, repository.ErrGoalNotFound)
}

func TestRecordProgressUpserts(t *testing.T) {
	s, _, progressRepo := newGoalService(model.PlanPro)

	goal, err := s.CreateGoal("user-1", "Walk outside", "", "")
	require.NoError(t, err)

	progress, err := s.RecordProgress("user-1", goal.ID, "2026-08-28", true, "felt <great>")
	require.NoError(t, err)
	assert.True(t, progress.Completed)
	assert.Equal(t, "felt great", progress.Note)
	assert.Equal(t, goal.ID, progress.GoalID)
	require.Len(t, progressRepo.upserts, 1)

	// Same day again goes through the same upsert path.
	_, err = s.RecordProgress("user-1", goal.ID, "2026-08-28", true, "")
	require.NoError(t, err)
}

func TestUpdateGoalIgnoresUnknownStatus(t *testing.T) {
	s, _, _ := newGoalService(model.PlanPro)

	goal, err := s.CreateGoal("user-1", "Walk outside", "", "")
	require.NoError(t, err)

	updated, err := s.UpdateGoal("user-1", goal.ID, "", "", "", "deleted")
	require.NoError(t, err)
	assert.Equal(t, model.GoalStatusActive, updated.Status)

	updated, err = s.UpdateGoal("user-1", goal.ID, "", "", "", model.GoalStatusArchived)
	require.NoError(t, err)
	assert.Equal(t, model.GoalStatusArchived, updated.Status)
}
