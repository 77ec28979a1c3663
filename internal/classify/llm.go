package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/civix/backend/internal/models"
)

// LLMClassifier asks an OpenAI-compatible chat endpoint to pick a
// category. Its output is validated against the category enum; anything
// else is an error so the fallback wrapper can take over.
type LLMClassifier struct {
	BaseURL string
	Model   string
	APIKey  string
	Timeout time.Duration
	Client  *http.Client
}

const llmSystemPrompt = "You classify municipal civic issue reports. " +
	"Reply with exactly one word: the category that best fits the report."

func (l LLMClassifier) Classify(ctx context.Context, title, description string) (models.Classification, error) {
	if strings.TrimSpace(l.BaseURL) == "" {
		return models.Classification{}, fmt.Errorf("LLM_BASE_URL is not set")
	}
	if strings.TrimSpace(l.Model) == "" {
		return models.Classification{}, fmt.Errorf("LLM_MODEL is not set")
	}

	type msg struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	prompt := fmt.Sprintf("Categories: %s.\nTitle: %s\nDescription: %s",
		strings.Join(categoryOrder, ", "), title, description)
	payload := struct {
		Model       string  `json:"model"`
		Temperature float64 `json:"temperature"`
		MaxTokens   int     `json:"max_tokens,omitempty"`
		Messages    []msg   `json:"messages"`
	}{
		Model:     l.Model,
		MaxTokens: 16,
		Messages: []msg{
			{Role: "system", Content: llmSystemPrompt},
			{Role: "user", Content: prompt},
		},
	}

	timeout := l.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	b, _ := json.Marshal(payload)
	url := strings.TrimRight(l.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return models.Classification{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if strings.TrimSpace(l.APIKey) != "" {
		req.Header.Set("Authorization", "Bearer "+l.APIKey)
	}

	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return models.Classification{}, fmt.Errorf("classifier request timed out")
		}
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return models.Classification{}, fmt.Errorf("classifier request timed out")
		}
		return models.Classification{}, fmt.Errorf("classifier request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return models.Classification{}, fmt.Errorf("classifier http error: %s", resp.Status)
	}

	var res struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return models.Classification{}, err
	}
	if len(res.Choices) == 0 {
		return models.Classification{}, fmt.Errorf("empty classifier response")
	}

	category := strings.ToLower(strings.TrimSpace(res.Choices[0].Message.Content))
	category = strings.Trim(category, ".\"'")
	if !IsConcrete(category) {
		return models.Classification{}, fmt.Errorf("classifier returned unknown category %q", category)
	}
	return models.Classification{
		Category:   category,
		Confidence: ExternalConfidence,
		Method:     models.MethodExternal,
	}, nil
}
