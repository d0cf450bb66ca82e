package service

import (
	"context"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/haven-journal/haven/internal/model"
	"github.com/haven-journal/haven/internal/repository"
)

// In-memory fakes for the repository interfaces. Unset function fields
// fall back to harmless defaults so each test only wires what it asserts.

type fakeJournalRepo struct {
	created      []*model.JournalEntry
	entriesSince []*model.JournalEntry
	createErr    error
}

func (f *fakeJournalRepo) Create(entry *model.JournalEntry) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, entry)
	return nil
}

func (f *fakeJournalRepo) ByID(userID, entryID string) (*model.JournalEntry, error) {
	for _, e := range f.created {
		if e.ID == entryID && e.UserID == userID {
			return e, nil
		}
	}
	return nil, repository.ErrEntryNotFound
}

func (f *fakeJournalRepo) Entries(userID string, limit int) ([]*model.JournalEntry, error) {
	return f.created, nil
}

func (f *fakeJournalRepo) EntriesSince(userID string, sinceDay string) ([]*model.JournalEntry, error) {
	return f.entriesSince, nil
}

func (f *fakeJournalRepo) CountByUser(userID string) (int, error) {
	return len(f.created), nil
}

type fakeMoodRepo struct {
	upserts []*model.MoodCheckin
	recent  []*model.MoodCheckin
}

func (f *fakeMoodRepo) Upsert(checkin *model.MoodCheckin) error {
	f.upserts = append(f.upserts, checkin)
	return nil
}

func (f *fakeMoodRepo) Recent(userID string, limit int) ([]*model.MoodCheckin, error) {
	return f.recent, nil
}

type fakeSubscriptionRepo struct {
	sub       *model.Subscription
	byUserErr error
}

func (f *fakeSubscriptionRepo) Create(sub *model.Subscription) error { return nil }

func (f *fakeSubscriptionRepo) ByUserID(userID string) (*model.Subscription, error) {
	if f.byUserErr != nil {
		return nil, f.byUserErr
	}
	return f.sub, nil
}

func (f *fakeSubscriptionRepo) ByProviderSubscriptionID(id string) (*model.Subscription, error) {
	return f.sub, nil
}

func (f *fakeSubscriptionRepo) ByProviderCustomerID(id string) (*model.Subscription, error) {
	return f.sub, nil
}

func (f *fakeSubscriptionRepo) Update(sub *model.Subscription) error {
	f.sub = sub
	return nil
}

type fakeTierRepo struct {
	tiers map[string]*model.Tier
}

func (f *fakeTierRepo) ByID(id string) (*model.Tier, error) {
	tier, ok := f.tiers[id]
	if !ok {
		return nil, repository.ErrTierNotFound
	}
	return tier, nil
}

func (f *fakeTierRepo) Tiers() ([]*model.Tier, error) {
	var tiers []*model.Tier
	for _, t := range f.tiers {
		tiers = append(tiers, t)
	}
	return tiers, nil
}

type fakeUsageRepo struct {
	counts       map[string]int
	voiceSeconds int
}

func (f *fakeUsageRepo) Increment(userID, feature, periodStart string) error {
	if f.counts == nil {
		f.counts = make(map[string]int)
	}
	f.counts[feature]++
	return nil
}

func (f *fakeUsageRepo) AddVoiceSeconds(userID, periodStart string, seconds int) error {
	if f.counts == nil {
		f.counts = make(map[string]int)
	}
	f.counts[model.UsageFeatureVoiceRecording]++
	f.voiceSeconds += seconds
	return nil
}

func (f *fakeUsageRepo) ByKey(userID, feature, periodStart string) (*model.Usage, error) {
	return &model.Usage{
		UserID:      userID,
		Feature:     feature,
		PeriodStart: periodStart,
		Count:       f.counts[feature],
	}, nil
}

type fakeGoalRepo struct {
	goals     map[string]*model.WellnessGoal
	goalCount int
}

func (f *fakeGoalRepo) Create(goal *model.WellnessGoal) error {
	if f.goals == nil {
		f.goals = make(map[string]*model.WellnessGoal)
	}
	f.goals[goal.ID] = goal
	f.goalCount++
	return nil
}

func (f *fakeGoalRepo) ByID(userID, goalID string) (*model.WellnessGoal, error) {
	goal, ok := f.goals[goalID]
	if !ok || goal.UserID != userID {
		return nil, repository.ErrGoalNotFound
	}
	return goal, nil
}

func (f *fakeGoalRepo) Goals(userID string) ([]*model.WellnessGoal, error) {
	var goals []*model.WellnessGoal
	for _, g := range f.goals {
		if g.UserID == userID {
			goals = append(goals, g)
		}
	}
	return goals, nil
}

func (f *fakeGoalRepo) CountUserGoals(userID string) (int, error) {
	return f.goalCount, nil
}

func (f *fakeGoalRepo) Update(goal *model.WellnessGoal) error {
	f.goals[goal.ID] = goal
	return nil
}

func (f *fakeGoalRepo) Delete(userID, goalID string) error {
	delete(f.goals, goalID)
	return nil
}

type fakeProgressRepo struct {
	upserts []*model.GoalProgress
}

func (f *fakeProgressRepo) Upsert(progress *model.GoalProgress) error {
	f.upserts = append(f.upserts, progress)
	return nil
}

func (f *fakeProgressRepo) ByGoal(userID, goalID string, limit int) ([]*model.GoalProgress, error) {
	return f.upserts, nil
}

type fakeUserRepo struct {
	byEmail map[string]*model.User
	byID    map[string]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byEmail: make(map[string]*model.User),
		byID:    make(map[string]*model.User),
	}
}

func (f *fakeUserRepo) Create(user *model.User) error {
	if _, exists := f.byEmail[user.Email]; exists {
		return repository.ErrDuplicateEmail
	}
	f.byEmail[user.Email] = user
	f.byID[user.ID] = user
	return nil
}

func (f *fakeUserRepo) ByID(id string) (*model.User, error) {
	user, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) ByEmail(email string) (*model.User, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) Update(user *model.User) error {
	f.byID[user.ID] = user
	f.byEmail[user.Email] = user
	return nil
}

func (f *fakeUserRepo) Delete(id string) error {
	user, ok := f.byID[id]
	if ok {
		delete(f.byEmail, user.Email)
		delete(f.byID, id)
	}
	return nil
}

type fakeProfileRepo struct {
	byUserID map[string]*model.Profile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{byUserID: make(map[string]*model.Profile)}
}

func (f *fakeProfileRepo) ByUserID(userID string) (*model.Profile, error) {
	profile, ok := f.byUserID[userID]
	if !ok {
		return nil, repository.ErrProfileNotFound
	}
	return profile, nil
}

func (f *fakeProfileRepo) Create(profile *model.Profile) error {
	f.byUserID[profile.UserID] = profile
	return nil
}

func (f *fakeProfileRepo) Update(profile *model.Profile) error {
	f.byUserID[profile.UserID] = profile
	return nil
}

type fakeTokenRepo struct {
	byToken map[string]*model.Token
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{byToken: make(map[string]*model.Token)}
}

func (f *fakeTokenRepo) Create(token *model.Token) error {
	f.byToken[token.Token] = token
	return nil
}

func (f *fakeTokenRepo) ConsumeToken(token string) (*model.Token, error) {
	t, ok := f.byToken[token]
	if !ok || t.UsedAt != nil || t.IsExpired() {
		return nil, repository.ErrTokenNotFound
	}
	now := time.Now()
	t.UsedAt = &now
	return t, nil
}

func (f *fakeTokenRepo) DeleteByUserAndType(userID, tokenType string) error {
	for key, t := range f.byToken {
		if t.UserID == userID && t.Type == tokenType {
			delete(f.byToken, key)
		}
	}
	return nil
}

// fakeChatClient returns canned completion content and counts calls.
type fakeChatClient struct {
	content string
	err     error
	calls   int
}

func (f *fakeChatClient) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.calls++
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: f.content}},
		},
	}, nil
}

// Tier fixtures. The pro fixture gets an unlimited goal allowance so
// tests cover both sides of the limit check.

func freeTier() *model.Tier {
	return &model.Tier{
		ID:                      model.PlanFree,
		Name:                    "Free",
		GoalLimit:               3,
		VoiceRecordingsPerMonth: 0,
		VoiceMaxDurationSeconds: 0,
	}
}

func proTier() *model.Tier {
	return &model.Tier{
		ID:   model.PlanPro,
		Name: "Pro",
		Features: model.StringList{
			model.FeatureAICoaching,
			model.FeatureVoiceJournaling,
			model.FeatureDialogueSimulator,
		},
		GoalLimit:               -1,
		VoiceRecordingsPerMonth: 30,
		VoiceMaxDurationSeconds: 300,
	}
}

func catalog() *fakeTierRepo {
	return &fakeTierRepo{tiers: map[string]*model.Tier{
		model.PlanFree: freeTier(),
		model.PlanPro:  proTier(),
	}}
}

func activeSub(plan string) *model.Subscription {
	return &model.Subscription{
		ID:     "sub-1",
		UserID: "user-1",
		PlanID: plan,
		Status: model.SubscriptionStatusActive,
	}
}
