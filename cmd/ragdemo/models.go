package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhijit1892/ragdemo/llm"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List models served by a local Ollama instance",
	RunE: func(cmd *cobra.Command, args []string) error {
		url, _ := cmd.Flags().GetString("url")
		models, err := llm.DiscoverOllamaModels(cmd.Context(), url)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(models) == 0 {
			fmt.Fprintln(out, "No local models found.")
			return nil
		}
		for _, m := range models {
			fmt.Fprintf(out, "%-32s %s\n", m.Model, m.Name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
	modelsCmd.Flags().String("url", "http://localhost:11434", "Ollama base URL")
}
