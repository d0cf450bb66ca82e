package model

// Feature flags carried in the tier catalog.
const (
	FeatureAICoaching        = "ai_coaching"
	FeatureVoiceJournaling   = "voice_journaling"
	FeatureDialogueSimulator = "dialogue_simulator"
	FeatureExport            = "export"
	FeaturePrioritySupport   = "priority_support"
)

// Tier is a plan catalog row. Read-only at runtime; seeded by migration.
// GoalLimit of -1 means unlimited.
type Tier struct {
	ID                      string     `db:"id" json:"id"`
	Name                    string     `db:"name" json:"name"`
	MonthlyPriceCents       int        `db:"monthly_price_cents" json:"monthly_price_cents"`
	YearlyPriceCents        int        `db:"yearly_price_cents" json:"yearly_price_cents"`
	Features                StringList `db:"features" json:"features"`
	GoalLimit               int        `db:"goal_limit" json:"goal_limit"`
	VoiceRecordingsPerMonth int        `db:"voice_recordings_per_month" json:"voice_recordings_per_month"`
	VoiceMaxDurationSeconds int        `db:"voice_max_duration_seconds" json:"voice_max_duration_seconds"`
}

// HasFeature checks whether the tier includes a feature flag.
func (t *Tier) HasFeature(feature string) bool {
	return t.Features.Contains(feature)
}
