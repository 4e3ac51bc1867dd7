package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/heimdall-ai/heimdall/internal/rules"
	"github.com/heimdall-ai/heimdall/internal/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the classification HTTP API",
	Long: `Start the HTTP API:
  POST   /analyze-email          classify an email
  GET    /rules                  list the rule set
  POST   /rules                  add a category
  PUT    /rules/{category}       replace a category
  DELETE /rules/{category}       delete a category

Examples:
  heimdall serve
  heimdall serve --port 9000
  HEIMDALL_LLM_PROVIDER=openai heimdall serve`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("host", "", "interface to listen on (default all)")
	serveCmd.Flags().IntP("port", "p", 0, "API server port (default 8000)")
	serveCmd.Flags().StringSlice("allowed-origin", nil, "CORS origin allowed to call the API (repeatable, * for any)")

	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("server.allowedOrigins", serveCmd.Flags().Lookup("allowed-origin"))
}

func runServe(cmd *cobra.Command, args []string) error {
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
		return fmt.Errorf("load prompt template: %w", err)
	}

	srv := server.New(server.Options{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}, rules.NewService(ruleStore), analyzer)

	fmt.Fprintf(os.Stderr, "Heimdall %s\n", version)
	fmt.Fprintf(os.Stderr, "  Rules: %s\n", ruleStore.Path())
	fmt.Fprintf(os.Stderr, "  LLM:   %s\n", cfg.LLM.Provider)
	fmt.Fprintf(os.Stderr, "  API:   http://%s\n", srv.Addr())

	var wg sync.WaitGroup
	errChan := make(chan error, 1)
	srv.Start(&wg, errChan)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	var runErr error
	select {
	case sig := <-sigChan:
		fmt.Fprintf(os.Stderr, "\nReceived %v, shutting down...\n", sig)
	case runErr = <-errChan:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		LogError("server shutdown", err)
	}
	wg.Wait()

	return runErr
}
