// Package openrouter sends prompts to OpenRouter's OpenAI-compatible API.
package openrouter

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/sirupsen/logrus"

	"github.com/iksnae/tgsum/internal"
)

// DefaultBaseURL is the OpenRouter API endpoint
const DefaultBaseURL = "https://openrouter.ai/api/v1"

// Options configures a Client
type Options struct {
	APIKey      string
	BaseURL     string
	Timeout     time.Duration
	MaxRetries  int
	Temperature *float64
	MaxTokens   *int64
	AppName     string // sent as X-Title
	AppURL      string // sent as HTTP-Referer
}

// Client summarizes prompts with a chat completion model
type Client struct {
	api  openai.Client
	opts Options
}

// New creates a client from opts
func New(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithBaseURL(opts.BaseURL),
		option.WithMaxRetries(opts.MaxRetries),
	}
	if opts.Timeout > 0 {
		reqOpts = append(reqOpts, option.WithRequestTimeout(opts.Timeout))
	}
	if opts.AppName != "" {
		reqOpts = append(reqOpts, option.WithHeader("X-Title", opts.AppName))
	}
	if opts.AppURL != "" {
		reqOpts = append(reqOpts, option.WithHeader("HTTP-Referer", opts.AppURL))
	}

	return &Client{
		api:  openai.NewClient(reqOpts...),
		opts: opts,
	}
}

// Summarize sends prompt to model as a single user message and returns the reply text
func (c *Client) Summarize(ctx context.Context, model, prompt string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	}
	if c.opts.Temperature != nil {
		params.Temperature = openai.Float(*c.opts.Temperature)
	}
	if c.opts.MaxTokens != nil {
		params.MaxTokens = openai.Int(*c.opts.MaxTokens)
	}

	start := time.Now()
	resp, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			internal.Logger().WithFields(logrus.Fields{
				"model":  model,
				"status": apiErr.StatusCode,
			}).Error("OpenRouter request failed")
		}
		return "", &internal.SummarizeError{Model: model, Err: err}
	}

	if len(resp.Choices) == 0 {
		return "", &internal.SummarizeError{Model: model, Err: errors.New("no choices in response")}
	}

	internal.Logger().WithFields(logrus.Fields{
		"model":             model,
		"prompt_tokens":     resp.Usage.PromptTokens,
		"completion_tokens": resp.Usage.CompletionTokens,
		"duration":          time.Since(start).Round(time.Millisecond).String(),
	}).Debug("Summary received")

	return resp.Choices[0].Message.Content, nil
}

// ListModels returns the ids of the models available to the API key, sorted
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	page, err := c.api.Models.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}

	ids := make([]string, 0, len(page.Data))
	for _, m := range page.Data {
		ids = append(ids, m.ID)
	}
	sort.Strings(ids)
	return ids, nil
}
