package service

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/haven-journal/haven/internal/model"
	"github.com/haven-journal/haven/internal/repository"
)

var ErrFeatureNotIncluded = errors.New("feature not included in current plan")

// SubscriptionService answers every entitlement question in one place:
// which plan a user is on, whether a feature is included, and how much of
// a metered quota remains. Gating fails closed: if the plan or tier can't
// be resolved, access is denied.
type SubscriptionService struct {
	subscriptionRepository repository.SubscriptionRepository
	tierRepository         repository.TierRepository
	usageRepository        repository.UsageRepository
}

func NewSubscriptionService(
	subscriptionRepository repository.SubscriptionRepository,
	tierRepository repository.TierRepository,
	usageRepository repository.UsageRepository,
) *SubscriptionService {
	return &SubscriptionService{
		subscriptionRepository: subscriptionRepository,
		tierRepository:         tierRepository,
		usageRepository:        usageRepository,
	}
}

func (s *SubscriptionService) CreateFreeSubscription(userID string) error {
	now := time.Now()
	subscription := &model.Subscription{
		ID:        uuid.New().String(),
		UserID:    userID,
		PlanID:    model.PlanFree,
		Status:    model.SubscriptionStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.subscriptionRepository.Create(subscription)
	if err != nil {
		return fmt.Errorf("failed to create free subscription: %w", err)
	}

	return nil
}

func (s *SubscriptionService) Subscription(userID string) (*model.Subscription, error) {
	sub, err := s.subscriptionRepository.ByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	return sub, nil
}

func (s *SubscriptionService) ByProviderSubscriptionID(providerSubID string) (*model.Subscription, error) {
	sub, err := s.subscriptionRepository.ByProviderSubscriptionID(providerSubID)
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription by provider ID: %w", err)
	}

	return sub, nil
}

func (s *SubscriptionService) ByProviderCustomerID(providerCustomerID string) (*model.Subscription, error) {
	sub, err := s.subscriptionRepository.ByProviderCustomerID(providerCustomerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription by customer ID: %w", err)
	}

	return sub, nil
}

func (s *SubscriptionService) UpdateSubscription(sub *model.Subscription) error {
	sub.UpdatedAt = time.Now()

	err := s.subscriptionRepository.Update(sub)
	if err != nil {
		return fmt.Errorf("failed to update subscription: %w", err)
	}

	return nil
}

func (s *SubscriptionService) DowngradeToFree(sub *model.Subscription) error {
	sub.PlanID = model.PlanFree
	sub.Status = model.SubscriptionStatusActive
	sub.ProviderSubscriptionID = nil
	sub.CurrentPeriodEnd = nil
	sub.Amount = nil
	sub.Currency = ""
	sub.Interval = nil

	return s.UpdateSubscription(sub)
}

// Tiers returns the plan catalog, cheapest first.
func (s *SubscriptionService) Tiers() ([]*model.Tier, error) {
	tiers, err := s.tierRepository.Tiers()
	if err != nil {
		return nil, fmt.Errorf("failed to load tier catalog: %w", err)
	}

	return tiers, nil
}

// TierFor resolves the catalog tier for a subscription. A cancelled or
// expired paid plan resolves to the free tier.
func (s *SubscriptionService) TierFor(sub *model.Subscription) (*model.Tier, error) {
	planID := model.PlanFree
	if sub != nil && sub.IsActive() {
		planID = sub.PlanID
	}

	tier, err := s.tierRepository.ByID(planID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve tier %q: %w", planID, err)
	}

	return tier, nil
}

// CanAccessFeature reports whether the user's current plan includes the
// feature. Any resolution failure denies access.
func (s *SubscriptionService) CanAccessFeature(userID, feature string) bool {
	sub, err := s.subscriptionRepository.ByUserID(userID)
	if err != nil {
		slog.Warn("feature gate: subscription lookup failed, denying", "error", err, "user_id", userID, "feature", feature)
		return false
	}

	tier, err := s.TierFor(sub)
	if err != nil {
		slog.Warn("feature gate: tier lookup failed, denying", "error", err, "user_id", userID, "feature", feature)
		return false
	}

	return tier.HasFeature(feature)
}

// TrackUsage bumps a feature counter for the current billing period.
// Tracking failures are logged and swallowed; usage accounting never
// blocks the feature itself.
func (s *SubscriptionService) TrackUsage(userID, feature string) {
	err := s.usageRepository.Increment(userID, feature, model.PeriodStart(time.Now()))
	if err != nil {
		slog.Warn("usage tracking failed", "error", err, "user_id", userID, "feature", feature)
	}
}

// TrackVoiceSeconds records a finished voice recording against the current
// period's quota.
func (s *SubscriptionService) TrackVoiceSeconds(userID string, seconds int) {
	err := s.usageRepository.AddVoiceSeconds(userID, model.PeriodStart(time.Now()), seconds)
	if err != nil {
		slog.Warn("voice usage tracking failed", "error", err, "user_id", userID, "seconds", seconds)
	}
}

// VoiceQuota is a point-in-time snapshot of a user's voice-recording
// allowance for the current billing period.
type VoiceQuota struct {
	CanRecord          bool   `json:"can_record"`
	Tier               string `json:"tier"`
	Limit              int    `json:"limit"`
	Used               int    `json:"used"`
	Remaining          int    `json:"remaining"`
	MaxDurationSeconds int    `json:"max_duration_seconds"`
	PeriodStart        string `json:"period_start"`
}

// VoiceQuotaFor returns the user's voice quota for the current period.
// Exceeded or unresolvable quotas report zero remaining.
func (s *SubscriptionService) VoiceQuotaFor(userID string) (*VoiceQuota, error) {
	sub, err := s.subscriptionRepository.ByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	tier, err := s.TierFor(sub)
	if err != nil {
		return nil, err
	}

	periodStart := model.PeriodStart(time.Now())
	usage, err := s.usageRepository.ByKey(userID, model.UsageFeatureVoiceRecording, periodStart)
	if err != nil {
		return nil, fmt.Errorf("failed to get voice usage: %w", err)
	}

	remaining := tier.VoiceRecordingsPerMonth - usage.Count
	if remaining < 0 {
		remaining = 0
	}

	return &VoiceQuota{
		CanRecord:          remaining > 0,
		Tier:               tier.Name,
		Limit:              tier.VoiceRecordingsPerMonth,
		Used:               usage.Count,
		Remaining:          remaining,
		MaxDurationSeconds: tier.VoiceMaxDurationSeconds,
		PeriodStart:        periodStart,
	}, nil
}
