package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhijit1892/ragdemo/server/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		asJSON, _ := cmd.Flags().GetBool("json")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		s, err := store.NewStore(ctx, cfg.History.DSN)
		if err != nil {
			return err
		}
		defer s.Close()

		runs, err := s.List(ctx, limit)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(runs)
		}

		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tWHEN\tSTATUS\tELAPSED\tQUESTION")
		for _, r := range runs {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%dms\t%s\n",
				r.ID,
				time.UnixMilli(r.Timestamp).Format(time.DateTime),
				r.Status,
				r.ElapsedMs,
				truncate(r.Question, 60),
			)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 20, "Number of runs to show")
	historyCmd.Flags().Bool("json", false, "Print runs as JSON")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
