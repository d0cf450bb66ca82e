package service

import (
	"fmt"
	"strings"

	"github.com/haven-journal/haven/internal/model"
	"github.com/haven-journal/haven/internal/repository"
	"github.com/haven-journal/haven/internal/validation"
)

type ProfileService struct {
	profileRepository repository.ProfileRepository
}

func NewProfileService(profileRepository repository.ProfileRepository) *ProfileService {
	return &ProfileService{profileRepository: profileRepository}
}

func (s *ProfileService) ByUserID(userID string) (*model.Profile, error) {
	return s.profileRepository.ByUserID(userID)
}

// Update edits the profile fields set during onboarding. Empty name keeps
// the existing one; focus areas are replaced wholesale and capped.
func (s *ProfileService) Update(userID, name, pronouns string, focusAreas []string, reflection string) (*model.Profile, error) {
	if len(focusAreas) > model.MaxFocusAreas {
		return nil, ErrTooManyFocusAreas
	}

	profile, err := s.profileRepository.ByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	name = strings.TrimSpace(name)
	if name != "" {
		err = validation.ValidateName(name)
		if err != nil {
			return nil, err
		}
		profile.Name = name
	}

	profile.Pronouns = strings.TrimSpace(pronouns)
	if focusAreas != nil {
		profile.FocusAreas = focusAreas
	}
	if reflection != "" {
		profile.Reflection = validation.SanitizeContent(reflection)
	}

	err = s.profileRepository.Update(profile)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return profile, nil
}
