package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"google.golang.org/genai"
)

// Generator is the external text-generation boundary of the nudge
// pipeline. Implementations must honor the context deadline; the pipeline
// treats any error (including timeout) as a generation failure and falls
// back. Generators are injected, never reached through globals, so tests
// can substitute a deterministic one.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}

const generatorSystemPrompt = "You are a supportive debt coaching assistant. " +
	"You write short, encouraging messages about debt payoff progress. " +
	"Never invent dollar amounts, percentages or timelines: only repeat " +
	"numbers that appear verbatim in the request, and prefer writing no " +
	"numbers at all."

// OpenAIGenerator calls the OpenAI chat completions API directly over HTTP.
type OpenAIGenerator struct {
	apiKey     string
	apiURL     string
	model      string
	maxTokens  int
	httpClient *http.Client
}

type openAIRequest struct {
	Model     string          `json:"model"`
	Messages  []openAIMessage `json:"messages"`
	MaxTokens int             `json:"max_tokens,omitempty"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
}

func NewOpenAIGenerator(apiKey, model string, maxTokens int, timeout time.Duration) *OpenAIGenerator {
	if model == "" {
		model = "gpt-4o-mini"
	}
	if maxTokens <= 0 {
		maxTokens = 200
	}
	return &OpenAIGenerator{
		apiKey:    apiKey,
		apiURL:    "https://api.openai.com/v1/chat/completions",
		model:     model,
		maxTokens: maxTokens,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (g *OpenAIGenerator) Name() string { return "openai" }

func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	reqBody := openAIRequest{
		Model: g.model,
		Messages: []openAIMessage{
			{Role: "system", Content: generatorSystemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens: g.maxTokens,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", g.apiKey))

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var parsed openAIResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("no response from model")
	}
	return parsed.Choices[0].Message.Content, nil
}

// GeminiGenerator is the alternative provider, backed by the Google genai SDK.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

func NewGeminiGenerator(apiKey, model string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GeminiGenerator{client: client, model: model}, nil
}

func (g *GeminiGenerator) Name() string { return "gemini" }

func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	result, err := g.client.Models.GenerateContent(ctx,
		g.model,
		genai.Text(generatorSystemPrompt+"\n\n"+prompt),
		nil,
	)
	if err != nil {
		return "", err
	}
	text := result.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return text, nil
}

// MockGenerator replays canned responses in order, cycling. The cans
// deliberately include hallucinated-figure responses so the validation
// stage gets exercised end to end without a real provider.
type MockGenerator struct {
	mu        sync.Mutex
	next      int
	Responses []string
	Err       error
	Delay     time.Duration
}

func NewMockGenerator() *MockGenerator {
	return &MockGenerator{
		Responses: []string{
			"Keep it up\n\nYou're making great progress on your debt journey! Every payment brings you closer to financial freedom. Stay focused on your goal and remember that consistency is key to success.",

			"Building momentum\n\nYour dedication to paying off debt is admirable! Each month you're building better financial habits. Keep up the momentum - you've got this!",

			"Stay strong\n\nDebt payoff takes discipline, but you're proving you have what it takes. Every dollar you put toward debt is an investment in your future self. Stay strong!",

			// Poisoned responses: the validator must reject these.
			"Big numbers\n\nYou owe $50000 and should pay $2000 monthly to be debt-free in 25 months!",
			"Hallucinated savings\n\nYour $1500 payment will save you $5000 in interest over 3 years.",
		},
	}
}

func (g *MockGenerator) Name() string { return "mock" }

func (g *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.Delay > 0 {
		select {
		case <-time.After(g.Delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.Err != nil {
		return "", g.Err
	}
	if len(g.Responses) == 0 {
		return "", fmt.Errorf("mock generator has no responses")
	}
	resp := g.Responses[g.next%len(g.Responses)]
	g.next++
	return resp, nil
}
