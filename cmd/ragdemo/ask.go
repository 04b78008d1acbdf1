package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhijit1892/ragdemo/core"
	"github.com/abhijit1892/ragdemo/server"
	"github.com/abhijit1892/ragdemo/server/store"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer one question from the configured corpus",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		render, _ := cmd.Flags().GetBool("render")
		asJSON, _ := cmd.Flags().GetBool("json")
		model, _ := cmd.Flags().GetString("model")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		app, err := loadApp(ctx, cfg, model)
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.BuildIndex(ctx); err != nil {
			return err
		}

		rec, err := app.Ask(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON {
			return writeRunJSON(out, rec)
		}
		if render {
			fmt.Fprint(out, newRenderer()(formatMarkdown(rec)))
			return nil
		}
		fmt.Fprintln(out, formatPlain(rec))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().Bool("render", false, "Render the answer as terminal markdown")
	askCmd.Flags().Bool("json", false, "Print the run as JSON")
	askCmd.Flags().String("model", "", "Override the generate model (with provider auto, its prefix picks the provider)")
}

func writeRunJSON(w io.Writer, rec store.RunRecord) error {
	passages := rec.Passages
	if passages == nil {
		passages = []core.Passage{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(server.AskResponse{
		ID:                rec.ID,
		Question:          rec.Question,
		RetrievedPassages: passages,
		Answer:            rec.Answer,
		ElapsedMs:         rec.ElapsedMs,
	})
}

func formatPlain(rec store.RunRecord) string {
	var b strings.Builder
	b.WriteString(rec.Answer)
	if len(rec.Passages) > 0 {
		b.WriteString("\n\nSources:")
		for i, p := range rec.Passages {
			fmt.Fprintf(&b, "\n  [%d] %s (score %.3f)", i+1, p.SourceLabel, p.Score)
		}
	}
	return b.String()
}

func formatMarkdown(rec store.RunRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n%s\n", rec.Question, rec.Answer)
	if len(rec.Passages) > 0 {
		b.WriteString("\n### Sources\n\n")
		for i, p := range rec.Passages {
			fmt.Fprintf(&b, "%d. `%s` (score %.3f)\n", i+1, p.SourceLabel, p.Score)
		}
	}
	return b.String()
}
