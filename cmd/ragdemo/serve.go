package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/abhijit1892/ragdemo/config"
	"github.com/abhijit1892/ragdemo/llm"
	"github.com/abhijit1892/ragdemo/logging"
	"github.com/abhijit1892/ragdemo/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Starts the HTTP API. The corpus index is built in the background; until it
is ready /ask answers 503 and /health reports index_ready=false.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if addr != "" {
			cfg.Server.Addr = addr
		}

		ctx := cmd.Context()
		app, err := loadApp(ctx, cfg, "")
		if err != nil {
			return err
		}
		defer app.Close()

		log := logging.New("serve")
		go func() {
			if err := app.BuildIndex(ctx); err != nil {
				log.Error("index build failed", "error", err)
				return
			}
			log.Info("index ready", "documents", app.Index.Index().Size())
		}()

		srv := app.Server(discoverModels(ctx, cfg, log))
		if err := srv.ListenAndServe(ctx, cfg.Server.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		log.Info("server stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
}

// discoverModels lists the configured model plus any local Ollama models.
func discoverModels(ctx context.Context, cfg *config.AppConfig, log *slog.Logger) []server.ModelInfo {
	models := []server.ModelInfo{{
		ID:    cfg.LLM.Provider + "-default",
		Name:  cfg.LLM.Model + " (" + cfg.LLM.Provider + ")",
		Model: cfg.LLM.Model,
	}}
	if cfg.LLM.Provider != config.ProviderOllama {
		return models
	}

	found, err := llm.DiscoverOllamaModels(ctx, cfg.LLM.BaseURL)
	if err != nil {
		log.Warn("ollama discovery failed", "error", err)
		return models
	}
	for _, m := range found {
		base := cfg.LLM.BaseURL
		models = append(models, server.ModelInfo{ID: m.ID, Name: m.Name, Model: m.Model, APIBase: &base})
	}
	log.Info("ollama models discovered", "count", len(found))
	return models
}
