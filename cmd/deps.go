package cmd

import (
	"context"
	"log/slog"

	"github.com/heimdall-ai/heimdall/internal/classify"
	"github.com/heimdall-ai/heimdall/internal/config"
	"github.com/heimdall-ai/heimdall/internal/llm"
	"github.com/heimdall-ai/heimdall/prompts"
	"github.com/heimdall-ai/heimdall/store"
	"github.com/spf13/afero"
)

// ruleFs is the filesystem rule documents live on; tests swap it.
var ruleFs afero.Fs = afero.NewOsFs()

func openRuleStore(cfg *config.AppConfig) *store.FileRuleStore {
	return store.NewFileRuleStore(ruleFs, cfg.RulesFilePath(), store.WithLocking(cfg.Rules.Lock))
}

// newClassifyService wires the prompt builder, the configured chat model and
// the rule store. A nil model is allowed for commands that only render prompts.
func newClassifyService(cfg *config.AppConfig, rules classify.RuleSource, model classify.Model) (*classify.Service, error) {
	builder, err := prompts.NewBuilder(cfg.TemplatesDir())
	if err != nil {
		return nil, err
	}
	return classify.NewService(rules, model,
		classify.WithBuilder(builder),
		classify.WithLenientJSON(cfg.Classifier.LenientJSON),
	), nil
}

func newClassifier(ctx context.Context, cfg *config.AppConfig) (*llm.Classifier, error) {
	llmCfg, err := config.LoadLLMConfig(cfg.LLM)
	if err != nil {
		return nil, err
	}
	slog.Debug("using LLM provider", "provider", llmCfg.Provider, "model", llmCfg.Model)
	return llm.NewClassifierFromConfig(ctx, llmCfg)
}
