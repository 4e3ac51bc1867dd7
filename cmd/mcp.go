package cmd

import (
	"context"
	"fmt"
	"os"

	mcptools "github.com/heimdall-ai/heimdall/internal/mcp"
	"github.com/heimdall-ai/heimdall/internal/rules"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server for AI tool integration",
	Long: `Start a Model Context Protocol (MCP) server on stdio so AI assistants can
classify emails and manage the rule set.

Tools:
  analyze_email   classify an email against the current rules
  list_rules      show the rule set
  add_rule        add a category
  delete_rule     delete a category

The server will run until the client disconnects.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMCPServer(cmd)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

// toolResponse wraps a tool result. Tool errors go in the result, not as
// protocol errors, so the client model can see them and correct its call.
func toolResponse(res *mcptools.ToolResult, err error) (*mcpsdk.CallToolResultFor[any], error) {
	if err != nil {
		return &mcpsdk.CallToolResultFor[any]{
			Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: mcptools.FormatError(err.Error())}},
			IsError: true,
		}, nil
	}
	return &mcpsdk.CallToolResultFor[any]{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: res.Text}},
		IsError: res.IsError,
	}, nil
}

// newMCPServer registers the heimdall tools over h.
func newMCPServer(h *mcptools.Handlers) *mcpsdk.Server {
	impl := &mcpsdk.Implementation{
		Name:    "heimdall-mcp",
		Version: version,
	}
	server := mcpsdk.NewServer(impl, &mcpsdk.ServerOptions{
		InitializedHandler: func(ctx context.Context, session *mcpsdk.ServerSession, params *mcpsdk.InitializedParams) {
			fmt.Fprintln(os.Stderr, "MCP connection established")
			if viper.GetBool("verbose") {
				fmt.Fprintln(os.Stderr, "[DEBUG] Client initialized")
			}
		},
	})

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "analyze_email",
		Description: `Classify an email into the configured categories. Use {"subject":"...","email_content":"..."}. Returns {"classification":{...}} or the no-intent answer.`,
	}, func(ctx context.Context, session *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[mcptools.AnalyzeEmailParams]) (*mcpsdk.CallToolResultFor[any], error) {
		return toolResponse(h.AnalyzeEmail(ctx, params.Arguments))
	})

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "list_rules",
		Description: `List categories, sub-categories and keywords. Use {"format":"json"} for the raw rules document.`,
	}, func(ctx context.Context, session *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[mcptools.ListRulesParams]) (*mcpsdk.CallToolResultFor[any], error) {
		return toolResponse(h.ListRules(ctx, params.Arguments))
	})

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "add_rule",
		Description: `Add a category. Use {"request_type":"Billing","sub_request_types":[{"name":"Refund","keywords":["refund"]}]}. Every sub-category needs at least one non-blank keyword.`,
	}, func(ctx context.Context, session *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[mcptools.AddRuleParams]) (*mcpsdk.CallToolResultFor[any], error) {
		return toolResponse(h.AddRule(ctx, params.Arguments))
	})

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "delete_rule",
		Description: `Delete a category by exact name. Use {"request_type":"Billing"}.`,
	}, func(ctx context.Context, session *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[mcptools.DeleteRuleParams]) (*mcpsdk.CallToolResultFor[any], error) {
		return toolResponse(h.DeleteRule(ctx, params.Arguments))
	})

	return server
}

func runMCPServer(cmd *cobra.Command) error {
	// NOTE: stdout MUST be pure JSON-RPC. All status output goes to stderr.
	fmt.Fprintln(os.Stderr, "Heimdall MCP Server starting...")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ruleStore := openRuleStore(cfg)
	defer func() { _ = ruleStore.Close() }()

	model, err := newClassifier(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("configure LLM: %w", err)
	}
	analyzer, err := newClassifyService(cfg, ruleStore, model)
	if err != nil {
		return err
	}

	server := newMCPServer(&mcptools.Handlers{
		Rules:    rules.NewService(ruleStore),
		Analyzer: analyzer,
	})
	if err := server.Run(cmd.Context(), mcpsdk.NewStdioTransport()); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}
