// Package llm enriches study plans through an OpenAI-compatible API.
// Enrichment is strictly optional: any failure here is logged and the
// caller falls back to the deterministic plan generator.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/civicbriefs/planner/internal/model"
	"github.com/civicbriefs/planner/internal/section"
)

const (
	defaultTimeout = 25 * time.Second
	maxRetries     = 3
	retryBackoff   = 400 * time.Millisecond
)

// Client wraps an OpenAI-compatible API client.
type Client struct {
	api     *openai.Client
	model   string
	timeout time.Duration
}

// New creates a new enrichment client. baseURL may be empty for the
// default OpenAI endpoint.
func New(apiKey, baseURL, modelName string) *Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &Client{
		api:     openai.NewClientWithConfig(config),
		model:   modelName,
		timeout: defaultTimeout,
	}
}

// GeneratePlan asks the remote model for a study plan. A JSON object
// response is adopted as a structured plan; anything else is wrapped as
// free text. Transient API failures (429, 5xx) are retried a few times.
func (c *Client) GeneratePlan(ctx context.Context, performance map[string]float64, cmp *model.Comparison) (*model.StudyPlan, error) {
	prompt := BuildPrompt(performance, cmp)

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryBackoff * time.Duration(attempt)):
			}
		}

		raw, err := c.complete(ctx, prompt)
		if err != nil {
			lastErr = err
			if isTransient(err) {
				slog.Debug("transient enrichment failure, retrying", "attempt", attempt+1, "error", err)
				continue
			}
			return nil, err
		}
		if strings.TrimSpace(raw) == "" {
			return nil, errors.New("enrichment returned empty content")
		}
		return parsePlan(raw), nil
	}
	return nil, fmt.Errorf("enrichment retries exhausted: %w", lastErr)
}

func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: "You are a UPSC mentor."},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.7,
		MaxTokens:   900,
	})
	if err != nil {
		return "", fmt.Errorf("enrichment API call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("enrichment returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// BuildPrompt embeds per-section accuracy and, when present, the deltas
// against the previous attempt with explicit instruction to call out
// regressions.
func BuildPrompt(performance map[string]float64, cmp *model.Comparison) string {
	var sb strings.Builder
	sb.WriteString("You are a UPSC mentor. Generate a planner based on the performance:\n")
	for _, label := range orderedLabels(performance) {
		fmt.Fprintf(&sb, "%s: %v\n", label, performance[label])
	}
	if cmp != nil && len(cmp.Sections) > 0 {
		sb.WriteString("Previous attempt snapshot (use this to note improvements/regressions):\n")
		for _, entry := range cmp.Sections {
			fmt.Fprintf(&sb, "%s: previous %v%%, current %v%% (delta %+.2f pts, %s).\n",
				entry.Label, entry.Previous, entry.Current, entry.Delta, entry.Status)
		}
		sb.WriteString("Highlight what improved, what declined, and prescribe concrete remediation for downgraded sections.\n")
	}
	sb.WriteString("Identify weak vs strong sections, give reasons, 7-day micro plan, 4-week roadmap, resources, daily cadence, and PYQ approach.")
	return sb.String()
}

// orderedLabels returns performance keys in the fixed section order, with
// any unrecognized labels appended alphabetically.
func orderedLabels(performance map[string]float64) []string {
	seen := make(map[string]bool, len(performance))
	var out []string
	for _, label := range section.Labels() {
		if _, ok := performance[label]; ok {
			out = append(out, label)
			seen[label] = true
		}
	}
	var extra []string
	for label := range performance {
		if !seen[label] {
			extra = append(extra, label)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}

func parsePlan(raw string) *model.StudyPlan {
	var plan model.StudyPlan
	if err := json.Unmarshal([]byte(raw), &plan); err == nil {
		return &plan
	}
	return &model.StudyPlan{Text: raw}
}

func isTransient(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
	}
	return false
}
