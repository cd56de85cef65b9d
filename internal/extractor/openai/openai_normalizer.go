// Package openai implements the AI normalizer against the OpenAI Chat
// Completions API, used as the secondary provider in the fallback chain.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"freightsnap/internal/config"
	"freightsnap/internal/domain"
	"freightsnap/internal/extractor"
)

const (
	apiURL       = "https://api.openai.com/v1/chat/completions"
	defaultModel = "gpt-4o-mini"
	providerName = "openai"
)

// Normalizer implements port.Normalizer using the OpenAI Chat Completions API.
type Normalizer struct {
	apiKey       string
	model        string
	endpoint     string
	temperature  float64
	maxTokens    int
	maxTextChars int
	client       *http.Client
}

// NewNormalizer creates an OpenAI-based normalizer from a provider config.
func NewNormalizer(cfg *config.ProviderConfig) *Normalizer {
	return newNormalizer(cfg, apiURL)
}

// NewNormalizerWithEndpoint creates a normalizer pointing at a custom API
// endpoint (for testing).
func NewNormalizerWithEndpoint(cfg *config.ProviderConfig, endpoint string) *Normalizer {
	return newNormalizer(cfg, endpoint)
}

func newNormalizer(cfg *config.ProviderConfig, endpoint string) *Normalizer {
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.1
	}
	maxTokens := cfg.MaxOutputTokens
	if maxTokens == 0 {
		maxTokens = 8000
	}
	maxTextChars := cfg.MaxTextChars
	if maxTextChars == 0 {
		maxTextChars = 50000
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Normalizer{
		apiKey:       cfg.APIKey,
		model:        model,
		endpoint:     endpoint,
		temperature:  temperature,
		maxTokens:    maxTokens,
		maxTextChars: maxTextChars,
		client:       &http.Client{Timeout: timeout},
	}
}

func (n *Normalizer) Normalize(ctx context.Context, documentText, sourceName string) (*domain.ExtractedDocument, error) {
	text := extractor.TruncateText(documentText, n.maxTextChars)

	reqBody := map[string]interface{}{
		"model": n.model,
		"messages": []map[string]interface{}{
			{"role": "system", "content": extractor.ExtractionPrompt},
			{"role": "user", "content": extractor.BuildUserMessage(sourceName, text)},
		},
		"temperature":           n.temperature,
		"max_completion_tokens": n.maxTokens,
		"response_format":       map[string]interface{}{"type": "json_object"},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+n.apiKey)

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, extractor.NewExtractionError(extractor.KindAPI, providerName,
			fmt.Errorf("calling openai API: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, extractor.NewExtractionError(extractor.KindAPI, providerName,
			fmt.Errorf("reading response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("openai API error (status %d): %s", resp.StatusCode, string(respBody))
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := extractor.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return nil, extractor.NewRateLimitError(providerName, baseErr, retryAfter)
		}
		return nil, extractor.NewExtractionError(extractor.KindAPI, providerName, baseErr)
	}

	return parseResponse(respBody, sourceName)
}

// apiResponse models the chat completions API response.
type apiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func parseResponse(body []byte, sourceName string) (*domain.ExtractedDocument, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, extractor.NewExtractionError(extractor.KindAPI, providerName,
			fmt.Errorf("unmarshaling response: %w", err))
	}

	if len(resp.Choices) == 0 {
		return nil, extractor.NewExtractionError(extractor.KindAPI, providerName,
			fmt.Errorf("empty response from API: no choices"))
	}

	if resp.Choices[0].FinishReason == "length" {
		return nil, extractor.NewExtractionError(extractor.KindAPI, providerName,
			fmt.Errorf("output truncated (finish_reason: length): response exceeded output token limit"))
	}

	return extractor.ParseReply(resp.Choices[0].Message.Content, providerName, sourceName)
}
