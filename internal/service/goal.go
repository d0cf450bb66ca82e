package service

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/haven-journal/haven/internal/model"
	"github.com/haven-journal/haven/internal/repository"
	"github.com/haven-journal/haven/internal/validation"
)

var (
	ErrGoalTitleRequired = errors.New("goal title is required")
	ErrGoalLimitReached  = errors.New("active goal limit reached for current plan")
	ErrInvalidDay        = errors.New("day must be in YYYY-MM-DD form")
)

var dayPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

type GoalService struct {
	goalRepository      repository.GoalRepository
	progressRepository  repository.GoalProgressRepository
	subscriptionService *SubscriptionService
}

func NewGoalService(
	goalRepository repository.GoalRepository,
	progressRepository repository.GoalProgressRepository,
	subscriptionService *SubscriptionService,
) *GoalService {
	return &GoalService{
		goalRepository:      goalRepository,
		progressRepository:  progressRepository,
		subscriptionService: subscriptionService,
	}
}

// CreateGoal creates an active goal after checking the plan's goal limit.
// A limit of -1 in the tier catalog means unlimited.
func (s *GoalService) CreateGoal(userID, title, description, cadence string) (*model.WellnessGoal, error) {
	title = strings.TrimSpace(validation.SanitizeContent(title))
	if title == "" {
		return nil, ErrGoalTitleRequired
	}

	if cadence != model.GoalCadenceWeekly {
		cadence = model.GoalCadenceDaily
	}

	sub, err := s.subscriptionService.Subscription(userID)
	if err != nil {
		return nil, err
	}

	tier, err := s.subscriptionService.TierFor(sub)
	if err != nil {
		return nil, err
	}

	if tier.GoalLimit >= 0 {
		count, err := s.goalRepository.CountUserGoals(userID)
		if err != nil {
			return nil, fmt.Errorf("failed to count goals: %w", err)
		}
		if count >= tier.GoalLimit {
			return nil, ErrGoalLimitReached
		}
	}

	now := time.Now()
	goal := &model.WellnessGoal{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       title,
		Description: validation.SanitizeContent(description),
		Cadence:     cadence,
		Status:      model.GoalStatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.goalRepository.Create(goal)
	if err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}

	return goal, nil
}

func (s *GoalService) Goals(userID string) ([]*model.WellnessGoal, error) {
	goals, err := s.goalRepository.Goals(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}

	return goals, nil
}

func (s *GoalService) Goal(userID, goalID string) (*model.WellnessGoal, error) {
	return s.goalRepository.ByID(userID, goalID)
}

func (s *GoalService) UpdateGoal(userID, goalID, title, description, cadence, status string) (*model.WellnessGoal, error) {
	goal, err := s.goalRepository.ByID(userID, goalID)
	if err != nil {
		return nil, err
	}

	if title != "" {
		goal.Title = strings.TrimSpace(validation.SanitizeContent(title))
	}
	if description != "" {
		goal.Description = validation.SanitizeContent(description)
	}
	if cadence == model.GoalCadenceDaily || cadence == model.GoalCadenceWeekly {
		goal.Cadence = cadence
	}
	if status == model.GoalStatusActive || status == model.GoalStatusArchived {
		goal.Status = status
	}

	err = s.goalRepository.Update(goal)
	if err != nil {
		return nil, err
	}

	return goal, nil
}

func (s *GoalService) DeleteGoal(userID, goalID string) error {
	return s.goalRepository.Delete(userID, goalID)
}

// RecordProgress upserts the completion record for (goal, day). Marking
// the same day complete twice is a no-op, not a double count.
func (s *GoalService) RecordProgress(userID, goalID, day string, completed bool, note string) (*model.GoalProgress, error) {
	if !dayPattern.MatchString(day) {
		return nil, ErrInvalidDay
	}

	// Ownership check before the write; progress rows never outlive it.
	_, err := s.goalRepository.ByID(userID, goalID)
	if err != nil {
		return nil, err
	}

	progress := &model.GoalProgress{
		GoalID:    goalID,
		UserID:    userID,
		Day:       day,
		Completed: completed,
		Note:      validation.SanitizeContent(note),
	}

	err = s.progressRepository.Upsert(progress)
	if err != nil {
		return nil, fmt.Errorf("failed to record progress: %w", err)
	}

	return progress, nil
}

func (s *GoalService) Progress(userID, goalID string, limit int) ([]*model.GoalProgress, error) {
	if limit <= 0 || limit > 90 {
		limit = 30
	}

	records, err := s.progressRepository.ByGoal(userID, goalID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}

	return records, nil
}
