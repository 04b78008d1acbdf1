package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhijit1892/ragdemo"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Ask questions interactively",
	Long: `Builds the index once and reads questions from stdin.

Commands:
  <question>        Ask a question (runs the pipeline)
  /search <query>   Show the passages retrieval returns
  /history          Show the last few runs
  /verbose          Toggle printing retrieved passages
  /help             Show this help
  /quit             Exit`,
	RunE: func(cmd *cobra.Command, args []string) error {
		render, _ := cmd.Flags().GetBool("render")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		app, err := loadApp(ctx, cfg, "")
		if err != nil {
			return err
		}
		defer app.Close()

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Indexing corpus...")
		if err := app.BuildIndex(ctx); err != nil {
			return err
		}
		fmt.Fprintf(out, "Indexed %d passages.\n\n", app.Index.Index().Size())

		s := &session{app: app, out: out}
		if render {
			s.render = newRenderer()
		}
		s.run(ctx, cmd.InOrStdin())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().Bool("render", false, "Render answers as terminal markdown")
}

type session struct {
	app     *ragdemo.App
	out     io.Writer
	verbose bool
	render  func(string) string
}

type commandHandler func(ctx context.Context, s *session, arg string) (quit bool)

var commands = map[string]commandHandler{
	"/quit":    cmdQuit,
	"/q":       cmdQuit,
	"/help":    cmdHelp,
	"/h":       cmdHelp,
	"/verbose": cmdVerbose,
	"/v":       cmdVerbose,
	"/search":  cmdSearch,
	"/s":       cmdSearch,
	"/history": cmdHistory,
}

func (s *session) run(ctx context.Context, in io.Reader) {
	printHelp(s.out)
	fmt.Fprintln(s.out)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(s.out, "> ")
		if ctx.Err() != nil || !scanner.Scan() {
			break
		}
		if s.process(ctx, strings.TrimSpace(scanner.Text())) {
			break
		}
	}
	fmt.Fprintln(s.out, "Goodbye!")
}

// process handles one input line and reports whether the session should end.
func (s *session) process(ctx context.Context, input string) bool {
	if input == "" {
		return false
	}
	if !strings.HasPrefix(input, "/") {
		s.ask(ctx, input)
		return false
	}

	name, arg, _ := strings.Cut(input, " ")
	handler, ok := commands[strings.ToLower(name)]
	if !ok {
		fmt.Fprintf(s.out, "Unknown command: %s (type /help for commands)\n", name)
		return false
	}
	return handler(ctx, s, strings.TrimSpace(arg))
}

func (s *session) ask(ctx context.Context, question string) {
	rec, err := s.app.Ask(ctx, question)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	if s.render != nil {
		fmt.Fprint(s.out, s.render(formatMarkdown(rec)))
	} else {
		fmt.Fprintln(s.out, formatPlain(rec))
	}
	if s.verbose {
		for i, p := range rec.Passages {
			fmt.Fprintf(s.out, "\n[%d] %s\n    %s\n", i+1, p.SourceLabel, preview(p.Text, 200))
		}
	}
	fmt.Fprintln(s.out)
}

func cmdQuit(context.Context, *session, string) bool { return true }

func cmdHelp(_ context.Context, s *session, _ string) bool {
	printHelp(s.out)
	return false
}

func cmdVerbose(_ context.Context, s *session, _ string) bool {
	s.verbose = !s.verbose
	fmt.Fprintf(s.out, "Verbose mode: %v\n", s.verbose)
	return false
}

func cmdSearch(ctx context.Context, s *session, arg string) bool {
	if arg == "" {
		fmt.Fprintln(s.out, "Usage: /search <query>")
		return false
	}
	passages, err := s.app.Preview(ctx, arg)
	if err != nil {
		fmt.Fprintf(s.out, "Error searching: %v\n", err)
		return false
	}
	if len(passages) == 0 {
		fmt.Fprintln(s.out, "No results found.")
		return false
	}
	for i, p := range passages {
		fmt.Fprintf(s.out, "%d. [%.3f] %s\n   %s\n", i+1, p.Score, p.SourceLabel, preview(p.Text, 100))
	}
	return false
}

func cmdHistory(ctx context.Context, s *session, _ string) bool {
	runs, err := s.app.History.List(ctx, 5)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return false
	}
	for _, r := range runs {
		fmt.Fprintf(s.out, "%s  %-5s  %s\n", r.ID, r.Status, truncate(r.Question, 60))
	}
	return false
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  <question>        Ask a question")
	fmt.Fprintln(w, "  /search <query>   Show retrieved passages")
	fmt.Fprintln(w, "  /history          Show recent runs")
	fmt.Fprintln(w, "  /verbose          Toggle verbose mode")
	fmt.Fprintln(w, "  /help             Show this help")
	fmt.Fprintln(w, "  /quit             Exit")
}

func preview(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	return truncate(s, n)
}
