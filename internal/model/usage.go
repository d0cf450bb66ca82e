package model

import "time"

// Tracked usage features. Voice recording usage additionally accumulates
// recorded seconds in VoiceSeconds.
const (
	UsageFeatureVoiceRecording = "voice_recording"
	UsageFeatureAIInsight      = "ai_insight"
	UsageFeatureAICoaching     = "ai_coaching"
)

// Usage is one per-feature counter scoped to a billing period.
// PeriodStart is the first day of the month in YYYY-MM-DD form; rows are
// upserted by (user_id, feature, period_start).
type Usage struct {
	ID           string    `db:"id" json:"id"`
	UserID       string    `db:"user_id" json:"user_id"`
	Feature      string    `db:"feature" json:"feature"`
	PeriodStart  string    `db:"period_start" json:"period_start"`
	Count        int       `db:"count" json:"count"`
	VoiceSeconds int       `db:"voice_seconds" json:"voice_seconds"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// PeriodStart returns the usage period key containing t.
func PeriodStart(t time.Time) string {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location()).Format("2006-01-02")
}
