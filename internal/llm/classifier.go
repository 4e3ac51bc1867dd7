package llm

import (
	"context"
	"log/slog"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/heimdall-ai/heimdall/internal/apperr"
	"github.com/heimdall-ai/heimdall/internal/logger"
)

// Classifier sends a single-turn prompt to a chat model and returns the raw
// text of its reply.
type Classifier struct {
	model   model.BaseChatModel
	name    string
	timeout time.Duration
}

// ClassifierOption configures a Classifier.
type ClassifierOption func(*Classifier)

// WithTimeout bounds each Classify call. Zero disables the bound.
func WithTimeout(d time.Duration) ClassifierOption {
	return func(c *Classifier) { c.timeout = d }
}

// WithModelName records the model identifier for logging.
func WithModelName(name string) ClassifierOption {
	return func(c *Classifier) { c.name = name }
}

// NewClassifier wraps a chat model.
func NewClassifier(m model.BaseChatModel, opts ...ClassifierOption) *Classifier {
	c := &Classifier{model: m}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewClassifierFromConfig builds the chat model described by cfg and wraps it.
func NewClassifierFromConfig(ctx context.Context, cfg Config) (*Classifier, error) {
	m, err := NewChatModel(ctx, cfg)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindBackendUnavailable, "create chat model", err)
	}
	name := cfg.Model
	if name == "" {
		name = DefaultModelForProvider(string(cfg.Provider))
	}
	return NewClassifier(m, WithTimeout(cfg.Timeout), WithModelName(name)), nil
}

// Classify sends prompt as one user message and returns the reply content.
// Any failure to reach the model or to obtain a reply is reported as
// apperr.KindBackendUnavailable.
func (c *Classifier) Classify(ctx context.Context, prompt string) (string, error) {
	if c.model == nil {
		return "", apperr.New(apperr.KindBackendUnavailable, "no chat model configured")
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	logger.SetLastPrompt(prompt)
	start := time.Now()

	resp, err := c.model.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
	if err != nil {
		slog.Warn("classification call failed", "model", c.name, "error", err)
		return "", apperr.Wrap(apperr.KindBackendUnavailable, "classification backend unavailable", err)
	}
	if resp == nil {
		return "", apperr.New(apperr.KindBackendUnavailable, "classification backend returned no message")
	}

	slog.Debug("classification call finished", "model", c.name, "duration", time.Since(start), "chars", len(resp.Content))
	return resp.Content, nil
}
