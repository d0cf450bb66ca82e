package model

import "time"

// MaxFocusAreas caps how many focus areas a profile may select during onboarding.
const MaxFocusAreas = 3

type Profile struct {
	ID          string     `db:"id" json:"id"`
	UserID      string     `db:"user_id" json:"user_id"`
	Name        string     `db:"name" json:"name"`
	Pronouns    string     `db:"pronouns" json:"pronouns"`
	FocusAreas  StringList `db:"focus_areas" json:"focus_areas"`
	Reflection  string     `db:"reflection" json:"reflection"`
	OnboardedAt *time.Time `db:"onboarded_at" json:"onboarded_at"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

func (p *Profile) Onboarded() bool {
	return p.OnboardedAt != nil
}
