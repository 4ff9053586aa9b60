package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// Client is the fallback chat-completion backend, used when no Groq
// credential is configured.
type Client struct {
	client *genai.Client
	model  string
}

func NewClient(ctx context.Context, apiKey, model string, opts ...option.ClientOption) (*Client, error) {
	opts = append(opts, option.WithAPIKey(apiKey))
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{client: client, model: model}, nil
}

func (c *Client) Name() string { return "gemini" }

func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	model := c.generativeModel(system)

	resp, err := model.GenerateContent(ctx, genai.Text(user))
	if err != nil {
		slog.ErrorContext(ctx, "gemini generation failed", "model", c.model, "error", err)
		return "", err
	}

	text := responseText(resp)
	if text == "" {
		return "", errors.New("gemini returned no candidates")
	}
	return text, nil
}

// Stream delivers answer fragments to emit in order. Returning an error from
// emit stops consumption; the producer is abandoned via ctx cancellation.
func (c *Client) Stream(ctx context.Context, system, user string, emit func(string) error) error {
	model := c.generativeModel(system)

	iter := model.GenerateContentStream(ctx, genai.Text(user))
	for {
		resp, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("gemini stream: %w", err)
		}
		if fragment := responseText(resp); fragment != "" {
			if err := emit(fragment); err != nil {
				return err
			}
		}
	}
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) generativeModel(system string) *genai.GenerativeModel {
	model := c.client.GenerativeModel(c.model)
	model.SetTemperature(0.7)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	return model
}

func responseText(resp *genai.GenerateContentResponse) string {
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
	}
	return b.String()
}
