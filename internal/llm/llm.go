// Package llm implements the scoring-model provider against any
// OpenAI-compatible chat completion API.
package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	openai "github.com/sashabaranov/go-openai"
)

// ScoreRequest carries everything the model needs to score one answer.
type ScoreRequest struct {
	QuestionText string
	AnswerText   string
	ModelAnswer  string
	Rubric       string
	MaxMarks     decimal.Decimal
}

// ScoreResult is the model's proposed grade. Values are exactly what the
// model returned; the caller is responsible for clamping before persisting.
type ScoreResult struct {
	Marks      decimal.Decimal
	Feedback   string
	Confidence decimal.Decimal
}

// Client wraps an OpenAI-compatible API client.
type Client struct {
	api   *openai.Client
	model string
}

// New creates a new scoring client. baseURL may be empty for the default
// OpenAI endpoint.
func New(baseURL, apiKey, modelName string) *Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &Client{
		api:   openai.NewClientWithConfig(config),
		model: modelName,
	}
}

// Score sends the student's answer and the grading key to the model and
// parses the proposed {marks, feedback, confidence}. Any transport or
// parse failure is returned as-is; nothing is retried here.
func (c *Client) Score(ctx context.Context, req ScoreRequest) (ScoreResult, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: buildScoringPrompt(req)},
			{Role: openai.ChatMessageRoleUser, Content: req.AnswerText},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.1,
	})
	if err != nil {
		return ScoreResult{}, fmt.Errorf("scoring API call: %w", err)
	}

	if len(resp.Choices) == 0 {
		return ScoreResult{}, fmt.Errorf("scoring model returned no choices")
	}

	return parseScoreResponse(resp.Choices[0].Message.Content)
}

type scorePayload struct {
	Marks      float64 `json:"marks"`
	Feedback   string  `json:"feedback"`
	Confidence float64 `json:"confidence"`
}

func parseScoreResponse(raw string) (ScoreResult, error) {
	var p scorePayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return ScoreResult{}, fmt.Errorf("parse scoring response: %w (raw: %s)", err, raw)
	}
	return ScoreResult{
		Marks:      decimal.NewFromFloat(p.Marks),
		Feedback:   p.Feedback,
		Confidence: decimal.NewFromFloat(p.Confidence),
	}, nil
}
