package classify

import (
	"context"
	"errors"
	"log/slog"

	"github.com/heimdall-ai/heimdall/internal/apperr"
	"github.com/heimdall-ai/heimdall/internal/logger"
	"github.com/heimdall-ai/heimdall/models"
	"github.com/heimdall-ai/heimdall/prompts"
)

// NoRulesMessage is reported when classification is asked for with an empty rule set.
const NoRulesMessage = "No categories found in rules database."

// RuleSource supplies the current rule set. It is read once per classification.
type RuleSource interface {
	Load(ctx context.Context) (models.RuleDatabase, error)
}

// Model returns the raw reply of a generative backend to a prompt.
type Model interface {
	Classify(ctx context.Context, prompt string) (string, error)
}

// Outcome is the result of one classification.
type Outcome struct {
	// NoIntent is set when the model answered with the fallback label.
	NoIntent bool
	// Verdict is the decoded reply; zero when NoIntent is set and the reply was not JSON.
	Verdict Verdict
	// Raw is the model's reply text.
	Raw string
}

// Response returns the body served for this outcome.
func (o Outcome) Response() any {
	if o.NoIntent {
		return models.NoIntentResponse{
			Classification: models.NoRequestLabel,
			Reason:         models.NoIntentReason,
		}
	}
	return models.ClassificationResponse{Classification: o.Verdict.Result()}
}

// Service runs the classification pipeline.
type Service struct {
	rules   RuleSource
	builder *prompts.Builder
	model   Model
	lenient bool
}

// Option configures a Service.
type Option func(*Service)

// WithBuilder replaces the built-in prompt template.
func WithBuilder(b *prompts.Builder) Option {
	return func(s *Service) { s.builder = b }
}

// WithLenientJSON enables lenient reply parsing.
func WithLenientJSON(on bool) Option {
	return func(s *Service) { s.lenient = on }
}

// NewService creates a classification service.
func NewService(rules RuleSource, model Model, opts ...Option) *Service {
	s := &Service{rules: rules, model: model}
	for _, opt := range opts {
		opt(s)
	}
	if s.builder == nil {
		b, _ := prompts.NewBuilder("")
		s.builder = b
	}
	return s
}

// Prompt renders the prompt req would be classified with, without calling the model.
func (s *Service) Prompt(ctx context.Context, req models.ClassificationRequest) (string, error) {
	db, err := s.rules.Load(ctx)
	if err != nil {
		return "", loadError(err)
	}
	if len(db.Categories) == 0 {
		return "", apperr.New(apperr.KindNoRules, NoRulesMessage)
	}
	p, err := s.builder.Build(ctx, req.Subject, req.EmailContent, db)
	if err != nil {
		return "", apperr.Wrap(apperr.KindInternal, "build prompt", err)
	}
	return p, nil
}

// Analyze classifies one email against the rules as they are on disk right now.
func (s *Service) Analyze(ctx context.Context, req models.ClassificationRequest) (Outcome, error) {
	logger.SetLastInput(req.Subject)

	p, err := s.Prompt(ctx, req)
	if err != nil {
		return Outcome{}, err
	}

	raw, err := s.model.Classify(ctx, p)
	if err != nil {
		if ctx.Err() != nil {
			return Outcome{}, ctx.Err()
		}
		return Outcome{}, err
	}

	res := Parse(raw, Lenient(s.lenient))
	if IsNoIntent(raw) {
		slog.Info("no intent identified", "subject", req.Subject)
		return Outcome{NoIntent: true, Verdict: res.Verdict, Raw: raw}, nil
	}
	if res.Failed() {
		slog.Warn("unparseable model reply", "subject", req.Subject, "reply_len", len(raw))
		return Outcome{Raw: raw}, res.Err
	}

	slog.Info("email classified",
		"subject", req.Subject,
		"request_type", string(res.Verdict.RequestType),
		"sub_request_type", string(res.Verdict.SubRequestType))
	return Outcome{Verdict: res.Verdict, Raw: raw}, nil
}

func loadError(err error) error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	return apperr.Wrap(apperr.KindPersistence, "rules store unavailable", err)
}
