package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haven-journal/haven/internal/model"
)

func TestCanAccessFeatureIncludedInPlan(t *testing.T) {
	subRepo := &fakeSubscriptionRepo{sub: activeSub(model.PlanPro)}
	s := NewSubscriptionService(subRepo, catalog(), &fakeUsageRepo{})

	assert.True(t, s.CanAccessFeature("user-1", model.FeatureAICoaching))
	assert.True(t, s.CanAccessFeature("user-1", model.FeatureVoiceJournaling))
}

func TestCanAccessFeatureDeniedOnFreePlan(t *testing.T) {
	subRepo := &fakeSubscriptionRepo{sub: activeSub(model.PlanFree)}
	s := NewSubscriptionService(subRepo, catalog(), &fakeUsageRepo{})

	assert.False(t, s.CanAccessFeature("user-1", model.FeatureAICoaching))
}

func TestCanAccessFeatureFailsClosedOnLookupError(t *testing.T) {
	subRepo := &fakeSubscriptionRepo{byUserErr: errors.New("db down")}
	s := NewSubscriptionService(subRepo, catalog(), &fakeUsageRepo{})

	assert.False(t, s.CanAccessFeature("user-1", model.FeatureAICoaching))
}

func TestCanAccessFeatureFailsClosedOnUnknownTier(t *testing.T) {
	subRepo := &fakeSubscriptionRepo{sub: activeSub("enterprise")}
	s := NewSubscriptionService(subRepo, catalog(), &fakeUsageRepo{})

	assert.False(t, s.CanAccessFeature("user-1", model.FeatureAICoaching))
}

func TestCanAccessFeatureUnknownFeatureDenied(t *testing.T) {
	subRepo := &fakeSubscriptionRepo{sub: activeSub(model.PlanPro)}
	s := NewSubscriptionService(subRepo, catalog(), &fakeUsageRepo{})

	assert.False(t, s.CanAccessFeature("user-1", "time_travel"))
}

func TestTierForCancelledPlanResolvesToFree(t *testing.T) {
	s := NewSubscriptionService(&fakeSubscriptionRepo{}, catalog(), &fakeUsageRepo{})

	sub := activeSub(model.PlanPro)
	sub.Status = model.SubscriptionStatusCancelled

	tier, err := s.TierFor(sub)
	require.NoError(t, err)
	assert.Equal(t, model.PlanFree, tier.ID)
}

func TestTierForNilSubscriptionResolvesToFree(t *testing.T) {
	s := NewSubscriptionService(&fakeSubscriptionRepo{}, catalog(), &fakeUsageRepo{})

	tier, err := s.TierFor(nil)
	require.NoError(t, err)
	assert.Equal(t, model.PlanFree, tier.ID)
}

func TestVoiceQuotaForCountsUsage(t *testing.T) {
	subRepo := &fakeSubscriptionRepo{sub: activeSub(model.PlanPro)}
	usageRepo := &fakeUsageRepo{counts: map[string]int{model.UsageFeatureVoiceRecording: 12}}
	s := NewSubscriptionService(subRepo, catalog(), usageRepo)

	quota, err := s.VoiceQuotaFor("user-1")
	require.NoError(t, err)
	assert.True(t, quota.CanRecord)
	assert.Equal(t, "Pro", quota.Tier)
	assert.Equal(t, 30, quota.Limit)
	assert.Equal(t, 12, quota.Used)
	assert.Equal(t, 18, quota.Remaining)
	assert.Equal(t, 300, quota.MaxDurationSeconds)
}

func TestVoiceQuotaForNeverReportsNegativeRemaining(t *testing.T) {
	subRepo := &fakeSubscriptionRepo{sub: activeSub(model.PlanPro)}
	usageRepo := &fakeUsageRepo{counts: map[string]int{model.UsageFeatureVoiceRecording: 45}}
	s := NewSubscriptionService(subRepo, catalog(), usageRepo)

	quota, err := s.VoiceQuotaFor("user-1")
	require.NoError(t, err)
	assert.Equal(t, 0, quota.Remaining)
	assert.False(t, quota.CanRecord)
}

func TestTrackUsageIncrementsCounters(t *testing.T) {
	subRepo := &fakeSubscriptionRepo{sub: activeSub(model.PlanPro)}
	usageRepo := &fakeUsageRepo{}
	s := NewSubscriptionService(subRepo, catalog(), usageRepo)

	s.TrackUsage("user-1", model.UsageFeatureAIInsight)
	s.TrackVoiceSeconds("user-1", 90)

	assert.Equal(t, 1, usageRepo.counts[model.UsageFeatureAIInsight])
	assert.Equal(t, 90, usageRepo.voiceSeconds)
}

func TestDowngradeToFreeClearsProviderState(t *testing.T) {
	subID := "prov-sub-1"
	sub := activeSub(model.PlanPro)
	sub.ProviderSubscriptionID = &subID

	subRepo := &fakeSubscriptionRepo{sub: sub}
	s := NewSubscriptionService(subRepo, catalog(), &fakeUsageRepo{})

	err := s.DowngradeToFree(sub)
	require.NoError(t, err)
	assert.Equal(t, model.PlanFree, sub.PlanID)
	assert.Equal(t, model.SubscriptionStatusActive, sub.Status)
	assert.Nil(t, sub.ProviderSubscriptionID)
	assert.Nil(t, sub.Interval)
}
