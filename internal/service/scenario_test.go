package service

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const feedbackScenario = `---
title: Delivering hard feedback
description: Tell a direct report their work is slipping.
category: feedback
difficulty: intermediate
tags:
  - feedback
  - empathy
learning_objectives:
  - Stay specific
---
You manage a small team. One engineer has been missing deadlines.
`

const boundariesScenario = `---
title: Protecting your weekend
description: Push back on a Friday-evening request.
category: boundaries
difficulty: beginner
tags:
  - boundaries
---
Your manager pings you at 5pm on Friday.
`

func testScenarioFS(t *testing.T) *ScenarioService {
	t.Helper()

	fsys := fstest.MapFS{
		"scenarios/delivering-hard-feedback.md": {Data: []byte(feedbackScenario)},
		"scenarios/protecting-your-weekend.md":  {Data: []byte(boundariesScenario)},
		"scenarios/untitled.md":                 {Data: []byte("---\ncategory: feedback\n---\nNo title here.\n")},
		"scenarios/notes.txt":                   {Data: []byte("not a scenario")},
	}

	s, err := NewScenarioService(fsys)
	require.NoError(t, err)
	return s
}

func TestCatalogSkipsInvalidFiles(t *testing.T) {
	s := testScenarioFS(t)

	scenarios := s.Scenarios()
	require.Len(t, scenarios, 2, "untitled and non-markdown files are skipped")
	assert.Equal(t, "Delivering hard feedback", scenarios[0].Title)
	assert.Equal(t, "Protecting your weekend", scenarios[1].Title)
}

func TestFilterByCategory(t *testing.T) {
	s := testScenarioFS(t)

	results := s.Filter("", "boundaries", "")
	require.Len(t, results, 1)
	assert.Equal(t, "protecting-your-weekend", results[0].Slug)

	assert.Empty(t, s.Filter("", "negotiation", ""))
}

func TestFilterByDifficulty(t *testing.T) {
	s := testScenarioFS(t)

	results := s.Filter("", "", "intermediate")
	require.Len(t, results, 1)
	assert.Equal(t, "delivering-hard-feedback", results[0].Slug)
}

func TestFilterBySearch(t *testing.T) {
	s := testScenarioFS(t)

	// Title match, case-insensitive.
	results := s.Filter("WEEKEND", "", "")
	require.Len(t, results, 1)
	assert.Equal(t, "protecting-your-weekend", results[0].Slug)

	// Tag match.
	results = s.Filter("empathy", "", "")
	require.Len(t, results, 1)
	assert.Equal(t, "delivering-hard-feedback", results[0].Slug)

	assert.Empty(t, s.Filter("no such thing", "", ""))
}

func TestFilterCombinesCriteria(t *testing.T) {
	s := testScenarioFS(t)

	assert.Len(t, s.Filter("feedback", "feedback", "intermediate"), 1)
	assert.Empty(t, s.Filter("feedback", "feedback", "beginner"))
}

func TestListOmitsBriefing(t *testing.T) {
	s := testScenarioFS(t)

	for _, scenario := range s.Scenarios() {
		assert.Empty(t, scenario.Briefing, "list responses carry no briefing")
	}
}

func TestBySlugIncludesBriefing(t *testing.T) {
	s := testScenarioFS(t)

	scenario := s.BySlug("delivering-hard-feedback")
	require.NotNil(t, scenario)
	assert.Contains(t, scenario.Briefing, "missing deadlines")
	assert.Equal(t, []string{"Stay specific"}, scenario.LearningObjectives)

	assert.Nil(t, s.BySlug("does-not-exist"))
}

func TestCategoriesDistinctSorted(t *testing.T) {
	s := testScenarioFS(t)

	assert.Equal(t, []string{"boundaries", "feedback"}, s.Categories())
}
