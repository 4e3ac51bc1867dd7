package prompts

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
	"github.com/heimdall-ai/heimdall/models"
)

// Builder renders the classification prompt from the current rule set.
// It holds no rendered output; every Build call starts from the document it is given.
type Builder struct {
	tmpl *prompt.DefaultChatTemplate
}

// NewBuilder creates a Builder from the classification template, honouring an
// override file in templatesDir.
func NewBuilder(templatesDir string) (*Builder, error) {
	content, err := GetPrompt(KeyClassifyEmail, templatesDir)
	if err != nil {
		return nil, err
	}
	return newBuilder(content), nil
}

func newBuilder(content string) *Builder {
	return &Builder{
		tmpl: prompt.FromMessages(schema.GoTemplate, schema.UserMessage(content)),
	}
}

// Build returns the prompt for one email.
func (b *Builder) Build(ctx context.Context, subject, emailContent string, db models.RuleDatabase) (string, error) {
	msgs, err := b.tmpl.Format(ctx, map[string]any{
		"categories": RenderCategories(db),
		"no_intent":  models.NoIntentLabel,
		"email":      EmailBlock(subject, emailContent),
	})
	if err != nil {
		return "", fmt.Errorf("render classification prompt: %w", err)
	}
	if len(msgs) == 0 {
		return "", fmt.Errorf("render classification prompt: template produced no messages")
	}
	return msgs[0].Content, nil
}

// Build renders the built-in template.
func Build(ctx context.Context, subject, emailContent string, db models.RuleDatabase) (string, error) {
	return newBuilder(ClassifyEmailPrompt).Build(ctx, subject, emailContent, db)
}

// EmailBlock labels the subject and body of an email.
func EmailBlock(subject, emailContent string) string {
	return fmt.Sprintf("Subject: %s\n\nContent: %s", subject, emailContent)
}

// RenderCategories writes one line per category, in document order:
//
//	 - 'Billing': Refund (keywords: refund, money back), Invoice (keywords: invoice).
func RenderCategories(db models.RuleDatabase) string {
	var sb strings.Builder
	for _, c := range db.Categories {
		var line strings.Builder
		fmt.Fprintf(&line, " - '%s': ", c.RequestType)
		for _, sub := range c.SubRequestTypes {
			fmt.Fprintf(&line, "%s (keywords: %s), ", sub.Name, strings.Join(sub.Keywords, ", "))
		}
		sb.WriteString(strings.TrimRight(line.String(), ", "))
		sb.WriteString(".\n")
	}
	return sb.String()
}
