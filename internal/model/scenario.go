package model

// Scenario difficulty levels, matched exactly by the catalog filter.
const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

// Scenario is a dialogue-practice catalog item loaded from markdown content.
// The briefing is the rendered markdown body.
type Scenario struct {
	Slug               string   `json:"slug"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Category           string   `json:"category"`
	Difficulty         string   `json:"difficulty"`
	Tags               []string `json:"tags"`
	LearningObjectives []string `json:"learning_objectives"`
	Briefing           string   `json:"briefing,omitempty"`
}
