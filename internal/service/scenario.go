package service

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/haven-journal/haven/internal/markdown"
	"github.com/haven-journal/haven/internal/model"
)

// ScenarioService serves the dialogue-practice catalog. Scenarios are
// markdown files with frontmatter, parsed once at startup; the catalog is
// read-only after that.
type ScenarioService struct {
	scenarios []*model.Scenario
	bySlug    map[string]*model.Scenario
}

func NewScenarioService(contentFS fs.FS) (*ScenarioService, error) {
	parser := markdown.NewParser()

	entries, err := fs.ReadDir(contentFS, "scenarios")
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario content: %w", err)
	}

	s := &ScenarioService{
		bySlug: make(map[string]*model.Scenario),
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}

		source, err := fs.ReadFile(contentFS, "scenarios/"+entry.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read scenario %s: %w", entry.Name(), err)
		}

		briefing, meta, err := parser.ParseWithFrontmatter(source)
		if err != nil {
			slog.Warn("skipping unparseable scenario", "file", entry.Name(), "error", err)
			continue
		}

		slug := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		scenario := &model.Scenario{
			Slug:               slug,
			Title:              metaString(meta, "title"),
			Description:        metaString(meta, "description"),
			Category:           metaString(meta, "category"),
			Difficulty:         metaString(meta, "difficulty"),
			Tags:               metaStrings(meta, "tags"),
			LearningObjectives: metaStrings(meta, "learning_objectives"),
			Briefing:           string(briefing),
		}

		if scenario.Title == "" {
			slog.Warn("skipping scenario without title", "file", entry.Name())
			continue
		}

		s.scenarios = append(s.scenarios, scenario)
		s.bySlug[slug] = scenario
	}

	sort.Slice(s.scenarios, func(i, j int) bool {
		return s.scenarios[i].Title < s.scenarios[j].Title
	})

	slog.Info("scenario catalog loaded", "count", len(s.scenarios))
	return s, nil
}

// Scenarios returns the full catalog, without briefings.
func (s *ScenarioService) Scenarios() []*model.Scenario {
	return s.Filter("", "", "")
}

// Filter narrows the catalog. Search matches case-insensitively against
// title, description, and tags; category and difficulty match exactly.
// Empty arguments mean "any".
func (s *ScenarioService) Filter(search, category, difficulty string) []*model.Scenario {
	search = strings.ToLower(strings.TrimSpace(search))

	results := make([]*model.Scenario, 0, len(s.scenarios))
	for _, scenario := range s.scenarios {
		if category != "" && scenario.Category != category {
			continue
		}
		if difficulty != "" && scenario.Difficulty != difficulty {
			continue
		}
		if search != "" && !matchesSearch(scenario, search) {
			continue
		}

		// List responses omit the briefing; it's fetched per scenario.
		summary := *scenario
		summary.Briefing = ""
		results = append(results, &summary)
	}

	return results
}

// BySlug returns one scenario with its full briefing, or nil.
func (s *ScenarioService) BySlug(slug string) *model.Scenario {
	return s.bySlug[slug]
}

// Categories returns the distinct categories present in the catalog, sorted.
func (s *ScenarioService) Categories() []string {
	seen := make(map[string]bool)
	var categories []string
	for _, scenario := range s.scenarios {
		if scenario.Category != "" && !seen[scenario.Category] {
			seen[scenario.Category] = true
			categories = append(categories, scenario.Category)
		}
	}
	sort.Strings(categories)
	return categories
}

func matchesSearch(scenario *model.Scenario, search string) bool {
	if strings.Contains(strings.ToLower(scenario.Title), search) {
		return true
	}
	if strings.Contains(strings.ToLower(scenario.Description), search) {
		return true
	}
	for _, tag := range scenario.Tags {
		if strings.Contains(strings.ToLower(tag), search) {
			return true
		}
	}
	return false
}

func metaString(meta map[string]any, key string) string {
	value, _ := meta[key].(string)
	return value
}

func metaStrings(meta map[string]any, key string) []string {
	raw, ok := meta[key].([]any)
	if !ok {
		return nil
	}

	values := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			values = append(values, s)
		}
	}
	return values
}
