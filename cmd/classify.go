package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/heimdall-ai/heimdall/internal/ui"
	"github.com/heimdall-ai/heimdall/models"
	"github.com/spf13/cobra"
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify one email from the terminal",
	Long: `Classify an email against the current rules without starting the API.

Examples:
  heimdall classify -s "Loan payment" --content "When is my next payment due?"
  heimdall classify -s "Refund" -f email.txt
  cat email.txt | heimdall classify -s "Refund" -f - --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		req, err := readEmail(cmd)
		if err != nil {
			return err
		}

		ruleStore := openRuleStore(cfg)
		defer func() { _ = ruleStore.Close() }()

		model, err := newClassifier(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		svc, err := newClassifyService(cfg, ruleStore, model)
		if err != nil {
			return err
		}

		out, err := svc.Analyze(cmd.Context(), req)
		if err != nil {
			if out.Raw != "" {
				LogError("model reply", fmt.Errorf("%s", out.Raw))
			}
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out.Response())
		}
		switch resp := out.Response().(type) {
		case models.NoIntentResponse:
			fmt.Fprintln(cmd.OutOrStdout(), ui.RenderNoIntent(resp))
		case models.ClassificationResponse:
			fmt.Fprintln(cmd.OutOrStdout(), ui.RenderVerdict(resp.Classification))
		}
		return nil
	},
}

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Print the prompt an email would be classified with",
	Long: `Render the classification prompt for an email against the current rules,
without calling the model. Useful for tuning keywords and custom templates.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		req, err := readEmail(cmd)
		if err != nil {
			return err
		}

		ruleStore := openRuleStore(cfg)
		defer func() { _ = ruleStore.Close() }()

		svc, err := newClassifyService(cfg, ruleStore, nil)
		if err != nil {
			return err
		}
		p, err := svc.Prompt(cmd.Context(), req)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), p)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(promptCmd)

	addEmailFlags(classifyCmd)
	classifyCmd.Flags().Bool("json", false, "print the API response body")
	addEmailFlags(promptCmd)
}
