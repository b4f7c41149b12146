// Package insight generates run commentary with a hosted language model.
package insight

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"runready/internal/api"
)

const (
	DefaultModel     = "claude-sonnet-4-5"
	defaultMaxTokens = 256
)

var ErrEmptyInsight = errors.New("model returned no insight text")

// Claude produces run insights through the Anthropic Messages API
type Claude struct {
	client *anthropic.Client
	model  string
}

// NewClaude creates an insight provider. Extra options are passed to the
// SDK client (base URL, retries, HTTP client).
func NewClaude(apiKey, model string, opts ...option.RequestOption) *Claude {
	if model == "" {
		model = DefaultModel
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	client := anthropic.NewClient(opts...)
	return &Claude{client: &client, model: model}
}

// AnalyzeRun asks the model for a short coaching note about a finished run
func (c *Claude) AnalyzeRun(ctx context.Context, run api.RunPayload) (string, error) {
	response, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: defaultMaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(BuildPrompt(run))),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API call failed: %w", err)
	}

	var text strings.Builder
	for _, block := range response.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	insight := strings.TrimSpace(text.String())
	if insight == "" {
		return "", ErrEmptyInsight
	}
	return insight, nil
}

// BuildPrompt renders the run metrics into the model prompt
func BuildPrompt(run api.RunPayload) string {
	var b strings.Builder
	b.WriteString("You are a friendly running coach. A runner just finished this run:\n\n")
	fmt.Fprintf(&b, "- Distance: %.2f km\n", run.Distance)
	fmt.Fprintf(&b, "- Duration: %s\n", run.Duration)
	if run.HeartRate > 0 {
		fmt.Fprintf(&b, "- Final heart rate: %.0f bpm\n", run.HeartRate)
	}
	if run.StepCount > 0 {
		fmt.Fprintf(&b, "- Steps today: %d\n", run.StepCount)
	}
	b.WriteString("\nReply with two or three sentences of encouragement and one concrete tip ")
	b.WriteString("for the next session. Plain text only, no lists or headings.")
	return b.String()
}
