package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/heimdall-ai/heimdall/models"
	"github.com/spf13/cobra"
)

// readEmail resolves the email body from --content, --file or stdin, in that order.
func readEmail(cmd *cobra.Command) (models.ClassificationRequest, error) {
	subject, _ := cmd.Flags().GetString("subject")
	content, _ := cmd.Flags().GetString("content")
	file, _ := cmd.Flags().GetString("file")

	switch {
	case cmd.Flags().Changed("content"):
	case file == "-":
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return models.ClassificationRequest{}, fmt.Errorf("read stdin: %w", err)
		}
		content = string(b)
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return models.ClassificationRequest{}, fmt.Errorf("read email file: %w", err)
		}
		content = string(b)
	default:
		return models.ClassificationRequest{}, errors.New("email content is required: use --content, --file or --file - for stdin")
	}
	return models.ClassificationRequest{Subject: subject, EmailContent: content}, nil
}

func addEmailFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("subject", "s", "", "email subject")
	cmd.Flags().String("content", "", "email body")
	cmd.Flags().StringP("file", "f", "", "read the email body from a file (- for stdin)")
}

// parseSubFlag parses "Name:kw1,kw2" into a sub-category. Keywords are
// trimmed; empty ones are kept so validation reports them.
func parseSubFlag(v string) (models.SubCategory, error) {
	name, kws, ok := strings.Cut(v, ":")
	if !ok {
		return models.SubCategory{}, fmt.Errorf("invalid --sub %q: expected Name:keyword1,keyword2", v)
	}
	sub := models.SubCategory{Name: strings.TrimSpace(name), Keywords: []string{}}
	if strings.TrimSpace(kws) == "" {
		return sub, nil
	}
	for _, kw := range strings.Split(kws, ",") {
		sub.Keywords = append(sub.Keywords, strings.TrimSpace(kw))
	}
	return sub, nil
}
