package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/haven-journal/haven/internal/model"
	"github.com/haven-journal/haven/internal/repository"
)

var (
	ErrAINotConfigured     = errors.New("AI features are not configured (missing OPENAI_API_KEY)")
	ErrMalformedAIResponse = errors.New("model returned malformed response")
)

// chatClient is the slice of the OpenAI client the AI service needs.
// Tests swap in a fake.
type chatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

const (
	promptSystemMessage = `You are a reflective journaling companion for people in leadership roles.
Generate one short journaling prompt tailored to the person's focus areas and recent mood.
Respond with JSON only: {"prompt": "...", "theme": "..."} where theme is one or two words.`

	insightSystemMessage = `You are a thoughtful wellness coach reviewing someone's recent journal entries and mood check-ins.
Identify patterns gently and without judgment. Never diagnose.
Respond with JSON only: {"summary": "...", "themes": ["..."], "suggestion": "..."}.`

	coachingSystemMessage = `You are a leadership coach running a practice conversation.
Stay in the scenario, respond as the counterpart would, then add one line of coaching feedback.
Respond with JSON only: {"reply": "...", "feedback": "..."}.`

	sentimentSystemMessage = `Classify the emotional tone of a journal entry.
Respond with JSON only: {"sentiment": "positive"|"neutral"|"negative", "confidence": 0.0-1.0, "keywords": ["..."]}.`
)

type PromptResult struct {
	Prompt string `json:"prompt"`
	Theme  string `json:"theme"`
}

type InsightResult struct {
	Summary    string   `json:"summary"`
	Themes     []string `json:"themes"`
	Suggestion string   `json:"suggestion"`
}

type CoachingResult struct {
	Reply    string `json:"reply"`
	Feedback string `json:"feedback"`
}

type SentimentResult struct {
	Sentiment  string   `json:"sentiment"`
	Confidence float64  `json:"confidence"`
	Keywords   []string `json:"keywords"`
}

const (
	reflectionKindPrompt  = "prompt"
	reflectionKindInsight = "insight"
)

// AIService generates journaling prompts, periodic insights, and scenario
// coaching replies. Prompts and insights are cached per user per day so a
// page reload never burns a second model call.
type AIService struct {
	client            chatClient
	model             string
	timeout           time.Duration
	journalRepository repository.JournalRepository
	moodRepository    repository.MoodRepository

	mu    sync.Mutex
	cache map[string]json.RawMessage // key: userID|YYYY-MM-DD|kind
}

func NewAIService(
	apiKey, chatModel string,
	timeout time.Duration,
	journalRepository repository.JournalRepository,
	moodRepository repository.MoodRepository,
) *AIService {
	var client chatClient
	if apiKey != "" {
		client = openai.NewClient(apiKey)
	}
	if chatModel == "" {
		chatModel = openai.GPT4oMini
	}

	return &AIService{
		client:            client,
		model:             chatModel,
		timeout:           timeout,
		journalRepository: journalRepository,
		moodRepository:    moodRepository,
		cache:             make(map[string]json.RawMessage),
	}
}

// DailyPrompt returns today's journaling prompt for the user, generating
// it at most once per day.
func (s *AIService) DailyPrompt(ctx context.Context, userID string, profile *model.Profile) (*PromptResult, error) {
	key := cacheKey(userID, reflectionKindPrompt)

	if raw, ok := s.cached(key); ok {
		result := &PromptResult{}
		if json.Unmarshal(raw, result) == nil {
			return result, nil
		}
	}

	moods, err := s.moodRepository.Recent(userID, 7)
	if err != nil {
		slog.Warn("prompt generation: mood lookup failed, continuing without", "error", err, "user_id", userID)
	}

	var sb strings.Builder
	sb.WriteString("Person:\n")
	if profile != nil {
		if profile.Name != "" {
			fmt.Fprintf(&sb, "- name: %s\n", profile.Name)
		}
		if len(profile.FocusAreas) > 0 {
			fmt.Fprintf(&sb, "- focus areas: %s\n", strings.Join(profile.FocusAreas, ", "))
		}
		if profile.Reflection != "" {
			fmt.Fprintf(&sb, "- why they journal: %s\n", profile.Reflection)
		}
	}
	if len(moods) > 0 {
		sb.WriteString("Recent mood check-ins (1 low .. 5 high):\n")
		for _, m := range moods {
			fmt.Fprintf(&sb, "- %s: %d\n", m.Day, m.Mood)
		}
	}

	result := &PromptResult{}
	raw, err := s.complete(ctx, promptSystemMessage, sb.String(), result)
	if err != nil {
		return nil, err
	}

	s.store(key, raw)
	return result, nil
}

// WeeklyInsights summarizes the user's last seven days of entries and
// check-ins. Cached per day; writing a new entry after the first request
// of the day won't change the insight until tomorrow.
func (s *AIService) WeeklyInsights(ctx context.Context, userID string) (*InsightResult, error) {
	key := cacheKey(userID, reflectionKindInsight)

	if raw, ok := s.cached(key); ok {
		result := &InsightResult{}
		if json.Unmarshal(raw, result) == nil {
			return result, nil
		}
	}

	since := time.Now().AddDate(0, 0, -7).Format("2006-01-02")
	entries, err := s.journalRepository.EntriesSince(userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load entries: %w", err)
	}

	moods, err := s.moodRepository.Recent(userID, 7)
	if err != nil {
		slog.Warn("insight generation: mood lookup failed, continuing without", "error", err, "user_id", userID)
	}

	var sb strings.Builder
	sb.WriteString("Journal entries from the last 7 days:\n")
	if len(entries) == 0 {
		sb.WriteString("(none)\n")
	}
	for _, e := range entries {
		fmt.Fprintf(&sb, "--- %s", e.CreatedAt.Format("2006-01-02"))
		if e.Title != "" {
			fmt.Fprintf(&sb, " (%s)", e.Title)
		}
		sb.WriteString("\n")
		sb.WriteString(truncateForContext(e.Content, 1500))
		sb.WriteString("\n")
	}
	if len(moods) > 0 {
		sb.WriteString("Mood check-ins (1 low .. 5 high):\n")
		for _, m := range moods {
			fmt.Fprintf(&sb, "- %s: %d\n", m.Day, m.Mood)
		}
	}

	result := &InsightResult{}
	raw, err := s.complete(ctx, insightSystemMessage, sb.String(), result)
	if err != nil {
		return nil, err
	}

	s.store(key, raw)
	return result, nil
}

// Coaching produces the counterpart's next reply in a practice
// conversation. Not cached; every turn is a fresh generation.
func (s *AIService) Coaching(ctx context.Context, scenario *model.Scenario, history []string, message string) (*CoachingResult, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Scenario: %s\n%s\n", scenario.Title, scenario.Description)
	if len(scenario.LearningObjectives) > 0 {
		fmt.Fprintf(&sb, "Objectives: %s\n", strings.Join(scenario.LearningObjectives, "; "))
	}
	if len(history) > 0 {
		sb.WriteString("Conversation so far:\n")
		for _, turn := range history {
			sb.WriteString(truncateForContext(turn, 500))
			sb.WriteString("\n")
		}
	}
	fmt.Fprintf(&sb, "Their latest message: %s\n", truncateForContext(message, 1000))

	result := &CoachingResult{}
	_, err := s.complete(ctx, coachingSystemMessage, sb.String(), result)
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Sentiment classifies the tone of a single piece of journal text.
func (s *AIService) Sentiment(ctx context.Context, content string) (*SentimentResult, error) {
	result := &SentimentResult{}
	_, err := s.complete(ctx, sentimentSystemMessage, truncateForContext(content, 4000), result)
	if err != nil {
		return nil, err
	}

	switch result.Sentiment {
	case "positive", "neutral", "negative":
	default:
		return nil, ErrMalformedAIResponse
	}

	return result, nil
}

// complete runs one chat completion and strictly parses the JSON reply
// into out, returning the raw JSON for caching.
func (s *AIService) complete(ctx context.Context, system, user string, out any) (json.RawMessage, error) {
	if s.client == nil {
		return nil, ErrAINotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, ErrMalformedAIResponse
	}

	raw := strings.TrimSpace(resp.Choices[0].Message.Content)

	dec := json.NewDecoder(strings.NewReader(raw))
	dec.DisallowUnknownFields()
	err = dec.Decode(out)
	if err != nil {
		slog.Warn("model reply failed strict parse", "error", err)
		return nil, ErrMalformedAIResponse
	}

	return json.RawMessage(raw), nil
}

func cacheKey(userID, kind string) string {
	return userID + "|" + time.Now().Format("2006-01-02") + "|" + kind
}

func (s *AIService) cached(key string) (json.RawMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.cache[key]
	return raw, ok
}

func (s *AIService) store(key string, raw json.RawMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Keys embed the day, so entries from earlier days can never be read
	// again. Drop them here to keep the map bounded on long-lived processes.
	today := "|" + time.Now().Format("2006-01-02") + "|"
	for k := range s.cache {
		if !strings.Contains(k, today) {
			delete(s.cache, k)
		}
	}

	s.cache[key] = raw
}

func truncateForContext(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}
