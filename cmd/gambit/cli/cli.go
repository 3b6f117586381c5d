// FILE: cmd/gambit/cli/cli.go
package cli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"gambit/internal/match"
	"gambit/internal/storage"

	"github.com/google/uuid"
	"github.com/notnil/chess"
	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// Run dispatches the journal and match mini-apps
func Run(ctx context.Context, name string, args []string, log zerolog.Logger) error {
	switch name {
	case "journal":
		if len(args) == 0 {
			return fmt.Errorf("journal subcommand required: init, query, show, delete")
		}
		return runJournal(args[0], args[1:], log)
	case "match":
		return runMatch(ctx, args, os.Stdout, log)
	default:
		return fmt.Errorf("unknown subcommand: %s", name)
	}
}

func runJournal(sub string, args []string, log zerolog.Logger) error {
	switch sub {
	case "init":
		return runInit(args, log)
	case "query":
		return runQuery(args, os.Stdout, log)
	case "show":
		return runShow(args, os.Stdout, log)
	case "delete":
		return runDelete(args, os.Stdin, log)
	default:
		return fmt.Errorf("unknown journal subcommand: %s", sub)
	}
}

func openJournal(path string, log zerolog.Logger) (*storage.Store, error) {
	if path == "" {
		return nil, fmt.Errorf("journal path required")
	}
	store, err := storage.NewStore(path, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	return store, nil
}

func runInit(args []string, log zerolog.Logger) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	path := fs.String("path", "", "Journal file path (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := openJournal(*path, log)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.InitDB(); err != nil {
		return fmt.Errorf("failed to initialize journal: %w", err)
	}
	fmt.Printf("Journal initialized at: %s\n", *path)
	return nil
}

func runQuery(args []string, out io.Writer, log zerolog.Logger) error {
	fs := flag.NewFlagSet("query", flag.ContinueOnError)
	path := fs.String("path", "", "Journal file path (required)")
	bestMove := fs.String("bestmove", "", "Best move to filter (optional, * for all)")
	limit := fs.Int("limit", 20, "Maximum rows, 0 for all")
	if err := fs.Parse(args); err != nil {
		return err
	}

	store, err := openJournal(*path, log)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.QuerySearches(*bestMove, *limit)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	if len(records) == 0 {
		fmt.Fprintln(out, "No searches found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Search ID\tStarted\tTook\tOutcome\tBest\tInfos\tGo")
	fmt.Fprintln(w, strings.Repeat("-", 80))
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			shortID(r.SearchID),
			r.StartedUTC.Format("2006-01-02 15:04:05"),
			r.FinishedUTC.Sub(r.StartedUTC).Round(time.Millisecond),
			r.Outcome,
			orDash(r.BestMove),
			r.InfoCount,
			orDash(r.GoArgs),
		)
	}
	w.Flush()

	fmt.Fprintf(out, "\nFound %d search(es)\n", len(records))
	return nil
}

func runShow(args []string, out io.Writer, log zerolog.Logger) error {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	path := fs.String("path", "", "Journal file path (required)")
	id := fs.String("id", "", "Search ID (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if _, err := uuid.Parse(*id); err != nil {
		return fmt.Errorf("invalid search id %q: %w", *id, err)
	}

	store, err := openJournal(*path, log)
	if err != nil {
		return err
	}
	defer store.Close()

	lines, err := store.Transcript(*id)
	if err != nil {
		return err
	}
	for _, line := range lines {
		fmt.Fprintln(out, line)
	}
	return nil
}

func runDelete(args []string, in io.Reader, log zerolog.Logger) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	path := fs.String("path", "", "Journal file path (required)")
	force := fs.Bool("force", false, "Skip confirmation")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if !*force {
		if f, ok := in.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
			return fmt.Errorf("refusing to delete without a terminal, use -force")
		}
		fmt.Printf("Delete journal %s? [y/N] ", *path)
		answer, _ := bufio.NewReader(in).ReadString('\n')
		if !strings.EqualFold(strings.TrimSpace(answer), "y") {
			return errors.New("aborted")
		}
	}

	store, err := openJournal(*path, log)
	if err != nil {
		return err
	}
	if err := store.DeleteDB(); err != nil {
		return fmt.Errorf("failed to delete journal: %w", err)
	}
	fmt.Printf("Journal deleted: %s\n", *path)
	return nil
}

// optionList collects repeated -opt Name=Value flags
type optionList map[string]string

func (o optionList) String() string {
	parts := make([]string, 0, len(o))
	for k, v := range o {
		parts = append(parts, k+"="+v)
	}
	return strings.Join(parts, ",")
}

func (o optionList) Set(s string) error {
	name, value, ok := strings.Cut(s, "=")
	if !ok || strings.TrimSpace(name) == "" {
		return fmt.Errorf("option must be Name=Value, got %q", s)
	}
	o[strings.TrimSpace(name)] = strings.TrimSpace(value)
	return nil
}

func runMatch(ctx context.Context, args []string, out io.Writer, log zerolog.Logger) error {
	fs := flag.NewFlagSet("match", flag.ContinueOnError)
	white := fs.String("white", "", "First engine executable (required)")
	black := fs.String("black", "", "Second engine executable (required)")
	moveTime := fs.Duration("movetime", 100*time.Millisecond, "Time per move")
	maxPlies := fs.Int("maxplies", 200, "Adjudicate a draw after this many plies, 0 for no limit")
	games := fs.Int("games", 1, "Number of games, colours alternate")
	fen := fs.String("fen", "", "Start position (default standard)")
	pgnPath := fs.String("pgn", "", "Append finished games to this PGN file")
	opts := optionList{}
	fs.Var(opts, "opt", "Engine option Name=Value sent to both engines (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *white == "" || *black == "" {
		return fmt.Errorf("both -white and -black are required")
	}
	if *games < 1 {
		return fmt.Errorf("games must be at least 1")
	}

	first, err := match.NewEnginePlayer(*white, *moveTime, opts)
	if err != nil {
		return err
	}
	defer first.Close()
	second, err := match.NewEnginePlayer(*black, *moveTime, opts)
	if err != nil {
		return err
	}
	defer second.Close()

	var pgn io.Writer
	if *pgnPath != "" {
		f, err := os.OpenFile(*pgnPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open pgn: %w", err)
		}
		defer f.Close()
		pgn = f
	}

	event := "gambit match " + uuid.NewString()[:8]
	score := map[match.Player]float64{}
	for i := 0; i < *games; i++ {
		w, b := match.Player(first), match.Player(second)
		if i%2 == 1 {
			w, b = b, w
		}

		res, err := match.Play(ctx, w, b, match.Config{FEN: *fen, MaxPlies: *maxPlies, Event: event}, log)
		if err != nil {
			return fmt.Errorf("game %d: %w", i+1, err)
		}

		switch res.Outcome {
		case chess.WhiteWon:
			score[w]++
		case chess.BlackWon:
			score[b]++
		case chess.Draw:
			score[w] += 0.5
			score[b] += 0.5
		}
		fmt.Fprintf(out, "game %d: %s vs %s %s (%s, %d plies)\n", i+1, w.Name(), b.Name(), res.Outcome, res.Method, res.Plies)

		if pgn != nil {
			if _, err := fmt.Fprintf(pgn, "%s\n\n", res.PGN); err != nil {
				return fmt.Errorf("write pgn: %w", err)
			}
		}
	}

	fmt.Fprintf(out, "score: %s %.1f - %.1f %s\n", first.Name(), score[first], score[second], second.Name())
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8] + "..."
	}
	return id
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
