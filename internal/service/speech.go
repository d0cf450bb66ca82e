package service

import (
	"context"
	"fmt"
	"io"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// speechClient is the slice of the OpenAI client used for text-to-speech.
type speechClient interface {
	CreateSpeech(ctx context.Context, req openai.CreateSpeechRequest) (openai.RawResponse, error)
}

// maxSpeechChars caps the text sent to the TTS endpoint per request.
const maxSpeechChars = 4000

// SpeechService reads AI prompts and insights aloud. Audio streams
// straight through to the caller; nothing is stored.
type SpeechService struct {
	client  speechClient
	voice   openai.SpeechVoice
	timeout time.Duration
}

func NewSpeechService(apiKey, voice string, timeout time.Duration) *SpeechService {
	var client speechClient
	if apiKey != "" {
		client = openai.NewClient(apiKey)
	}
	if voice == "" {
		voice = string(openai.VoiceAlloy)
	}

	return &SpeechService{
		client:  client,
		voice:   openai.SpeechVoice(voice),
		timeout: timeout,
	}
}

// Synthesize converts text to MP3 audio. Responses are a few hundred KB
// at most, so the whole clip is buffered before returning.
func (s *SpeechService) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if s.client == nil {
		return nil, ErrAINotConfigured
	}

	runes := []rune(text)
	if len(runes) > maxSpeechChars {
		text = string(runes[:maxSpeechChars])
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.TTSModel1,
		Input:          text,
		Voice:          s.voice,
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return nil, fmt.Errorf("speech synthesis failed: %w", err)
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read synthesized audio: %w", err)
	}

	return audio, nil
}
