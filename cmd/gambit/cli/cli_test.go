package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gambit/internal/core"
	"gambit/internal/search"
	"gambit/internal/storage"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func seedJournal(t *testing.T) (string, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "journal.db")
	if err := runInit([]string{"-path", path}, zerolog.Nop()); err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}

	store, err := storage.NewStore(path, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	id := uuid.NewString()
	now := time.Now()
	store.Record(search.Summary{
		ID:       id,
		Position: core.StartPosition(),
		Config:   core.SearchConfig{MoveTime: core.Some(time.Second)},
		Result:   core.SearchResult{BestMove: "e2e4"},
		Infos:    []core.Info{{Depth: core.Some(1), PV: []string{"e2e4"}}},
		Outcome:  search.OutcomeCompleted,
		Started:  now,
		Finished: now.Add(time.Second),
	})
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}
	return path, id
}

func TestJournalQueryAndShow(t *testing.T) {
	path, id := seedJournal(t)

	var out bytes.Buffer
	if err := runQuery([]string{"-path", path}, &out, zerolog.Nop()); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{id[:8], "completed", "e2e4", "movetime 1000", "Found 1 search(es)"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("query output missing %q:\n%s", want, out.String())
		}
	}

	out.Reset()
	if err := runShow([]string{"-path", path, "-id", id}, &out, zerolog.Nop()); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out.String()) != "info depth 1 pv e2e4" {
		t.Errorf("show output = %q", out.String())
	}

	if err := runShow([]string{"-path", path, "-id", "nope"}, &out, zerolog.Nop()); err == nil {
		t.Error("expected invalid id error")
	}
}

func TestJournalDeleteNeedsForce(t *testing.T) {
	path, _ := seedJournal(t)
	err := runDelete([]string{"-path", path}, strings.NewReader("y\n"), zerolog.Nop())
	if err == nil || !strings.Contains(err.Error(), "-force") {
		t.Fatalf("error = %v", err)
	}
	if err := runDelete([]string{"-path", path, "-force"}, nil, zerolog.Nop()); err != nil {
		t.Fatal(err)
	}
}

func TestOptionList(t *testing.T) {
	opts := optionList{}
	for _, s := range []string{"Hash=64", "Style = greedy", "Empty="} {
		if err := opts.Set(s); err != nil {
			t.Errorf("Set(%q) = %v", s, err)
		}
	}
	if opts["Hash"] != "64" || opts["Style"] != "greedy" || opts["Empty"] != "" {
		t.Errorf("opts = %v", opts)
	}
	if err := opts.Set("novalue"); err == nil {
		t.Error("expected error for missing =")
	}
}

func TestMatchRequiresEngines(t *testing.T) {
	err := runMatch(t.Context(), []string{"-white", "x"}, &bytes.Buffer{}, zerolog.Nop())
	if err == nil || !strings.Contains(err.Error(), "-black") {
		t.Errorf("error = %v", err)
	}
}
