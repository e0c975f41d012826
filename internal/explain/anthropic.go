package explain

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/nordlys-media/veracity/internal/httpx"
)

// Anthropic generates rationales through the Messages API.
type Anthropic struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// NewAnthropic creates a provider for the given model, e.g.
// "claude-3-5-haiku-latest". Extra options are applied after the API key,
// which lets tests point the client at a local server.
func NewAnthropic(apiKey, model string, maxTokens int64, opts ...option.RequestOption) *Anthropic {
	options := append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &Anthropic{
		client:    anthropic.NewClient(options...),
		model:     model,
		maxTokens: maxTokens,
	}
}

// Name implements Provider.
func (a *Anthropic) Name() string { return "anthropic" }

// Generate implements Provider.
func (a *Anthropic) Generate(ctx context.Context, prompt string) (string, error) {
	msg, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: a.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic generate: %w", err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("%w: anthropic response has no text blocks", httpx.ErrDecode)
	}
	return b.String(), nil
}
