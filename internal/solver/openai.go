package solver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// DefaultBaseURL is Gemini's OpenAI-compatible endpoint.
const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"

// DefaultModel is used when OpenAIConfig.Model is empty.
const DefaultModel = "gemini-2.5-flash"

const systemPrompt = "You are a precise calculator assistant. Answer with a single JSON object and nothing else."

// OpenAIConfig selects the endpoint and model for the OpenAI solver.
type OpenAIConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// OpenAI solves prompts with a chat completion against any OpenAI-compatible
// API.
type OpenAI struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewOpenAI builds the solver. It returns ErrNotConfigured without an API key.
func NewOpenAI(cfg OpenAIConfig) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: missing API key", ErrNotConfigured)
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = DefaultBaseURL
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.HTTPClient != nil {
		clientCfg.HTTPClient = cfg.HTTPClient
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &OpenAI{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
		logger: logger,
	}, nil
}

// Solve implements Solver.
func (o *OpenAI) Solve(ctx context.Context, prompt string) (Solution, error) {
	req := openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt(prompt)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	o.logger.Debug("solving prompt", zap.String("model", o.model))

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return Solution{}, fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return Solution{}, fmt.Errorf("%w: no choices returned", ErrInvalidResponse)
	}

	o.logger.Debug("received completion",
		zap.String("model", o.model),
		zap.String("finish_reason", string(resp.Choices[0].FinishReason)),
	)

	return ParseSolution(resp.Choices[0].Message.Content)
}

func userPrompt(prompt string) string {
	return fmt.Sprintf(`Solve this math problem: %q. Return only a JSON object with two fields: "result" `+
		`(a number or the string "Error") and "explanation" (a brief 1-sentence explanation of the result).`, prompt)
}

// ParseSolution decodes a model reply of the form
// {"result": ..., "explanation": "..."}. The object may be wrapped in a
// fenced code block and result may be a JSON string or number.
func ParseSolution(content string) (Solution, error) {
	raw := []byte(stripCodeFence(content))

	var payload struct {
		Result      json.RawMessage `json:"result"`
		Explanation string          `json:"explanation"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Solution{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	result, err := resultText(payload.Result)
	if err != nil {
		return Solution{}, err
	}

	return Solution{
		Result:      result,
		Explanation: strings.TrimSpace(payload.Explanation),
	}, nil
}

func resultText(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", fmt.Errorf("%w: missing result", ErrInvalidResponse)
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.TrimSpace(s)
		if s == "" {
			return "", fmt.Errorf("%w: empty result", ErrInvalidResponse)
		}
		return s, nil
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), nil
	}

	return "", fmt.Errorf("%w: result is neither a string nor a number", ErrInvalidResponse)
}

// stripCodeFence returns the body of the first ``` fenced block, or content
// unchanged when there is none.
func stripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	start := strings.Index(content, "```")
	if start < 0 {
		return content
	}

	body := content[start+3:]
	end := strings.Index(body, "```")
	if end < 0 {
		return content
	}
	body = body[:end]

	// Drop a language marker such as "json" on the opening line.
	if nl := strings.IndexByte(body, '\n'); nl >= 0 && !strings.ContainsAny(body[:nl], "{[") {
		body = body[nl+1:]
	}
	return strings.TrimSpace(body)
}
