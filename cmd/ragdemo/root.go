package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/abhijit1892/ragdemo"
	"github.com/abhijit1892/ragdemo/config"
	"github.com/abhijit1892/ragdemo/logging"
)

var (
	configPath string
	logLevel   string
	logFormat  string
)

var rootCmd = &cobra.Command{
	Use:   "ragdemo",
	Short: "Question answering over the Constitution of India",
	Long: `ragdemo retrieves the most relevant passages from a legal corpus and asks
a chat model to answer from them, citing each passage it relies on.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load .env: %w", err)
		}
		level, err := logging.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		logging.Init(level, logFormat)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// Interrupts cancel the command context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "ragdemo.yaml", "Path to the YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format: text or json")
}

// loadConfig reads the config file and overlays RAGDEMO_* variables.
func loadConfig() (*config.AppConfig, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(os.Getenv)
	return cfg, nil
}

// loadApp wires the application. A non-empty model overrides the
// generate node's model.
func loadApp(ctx context.Context, cfg *config.AppConfig, model string) (*ragdemo.App, error) {
	return ragdemo.New(ctx, cfg, ragdemo.Options{Logger: logging.New("cli"), Model: model})
}
