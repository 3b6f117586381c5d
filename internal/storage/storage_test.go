package storage

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"gambit/internal/core"
	"gambit/internal/search"

	"github.com/rs/zerolog"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "journal.db")
	s, err := NewStore(path, zerolog.Nop())
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	if err := s.InitDB(); err != nil {
		s.Close()
		t.Fatalf("InitDB: %v", err)
	}
	return s
}

func summary(id, best string, started time.Time) search.Summary {
	return search.Summary{
		ID:       id,
		Position: core.Position{Moves: []string{"e2e4"}},
		Config:   core.SearchConfig{Depth: core.Some(3)},
		Result:   core.SearchResult{BestMove: best, PonderMove: "g1f3"},
		Infos: []core.Info{
			{Depth: core.Some(1), Score: core.Some(core.Centipawns(20)), PV: []string{best}},
			{Depth: core.Some(2), Score: core.Some(core.Centipawns(15)), PV: []string{best, "g1f3"}},
		},
		Outcome:  search.OutcomeCompleted,
		Started:  started,
		Finished: started.Add(40 * time.Millisecond),
	}
}

// waitRows polls until the async writer has committed n rows
func waitRows(t *testing.T, s *Store, n int) []SearchRecord {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		records, err := s.QuerySearches("*", 0)
		if err != nil {
			t.Fatal(err)
		}
		if len(records) >= n {
			return records
		}
		if time.Now().After(deadline) {
			t.Fatalf("got %d rows, want %d", len(records), n)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestRecordAndQuery(t *testing.T) {
	s := openStore(t)
	defer s.Close()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.Record(summary("a", "e7e5", base))
	s.Record(summary("b", "c7c5", base.Add(time.Minute)))

	records := waitRows(t, s, 2)
	if records[0].SearchID != "b" {
		t.Errorf("newest first, got %s", records[0].SearchID)
	}
	r := records[1]
	if r.Position != "startpos moves e2e4" || r.GoArgs != "depth 3" || r.Outcome != "completed" || r.InfoCount != 2 {
		t.Errorf("record = %+v", r)
	}
	if r.TranscriptSz == 0 {
		t.Error("transcript not stored")
	}

	filtered, err := s.QuerySearches("c7c5", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(filtered) != 1 || filtered[0].SearchID != "b" {
		t.Errorf("filtered = %+v", filtered)
	}
}

func TestTranscript(t *testing.T) {
	s := openStore(t)
	defer s.Close()

	s.Record(summary("a", "e7e5", time.Now()))
	waitRows(t, s, 1)

	lines, err := s.Transcript("a")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		"info depth 1 score cp 20 pv e7e5",
		"info depth 2 score cp 15 pv e7e5 g1f3",
	}
	if len(lines) != len(want) {
		t.Fatalf("lines = %q", lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}

	if _, err := s.Transcript("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing error = %v", err)
	}
}

func TestCloseDrainsQueue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	s, err := NewStore(path, zerolog.Nop())
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	if err := s.InitDB(); err != nil {
		t.Fatal(err)
	}
	for i, id := range []string{"a", "b", "c"} {
		s.Record(summary(id, "e7e5", time.Now().Add(time.Duration(i)*time.Second)))
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	s.Record(summary("late", "e7e5", time.Now()))

	reopened, err := NewStore(path, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()
	records, err := reopened.QuerySearches("*", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Errorf("got %d rows after close, want 3", len(records))
	}
}

func TestRecordRacingClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	s, err := NewStore(path, zerolog.Nop())
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	if err := s.InitDB(); err != nil {
		t.Fatal(err)
	}

	const writers, perWriter = 4, 20
	base := time.Now()
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				s.Record(summary(fmt.Sprintf("w%d-%d", w, i), "e7e5", base.Add(time.Duration(i)*time.Millisecond)))
			}
		}(w)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	wg.Wait()

	reopened, err := NewStore(path, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()
	records, err := reopened.QuerySearches("*", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) > writers*perWriter {
		t.Errorf("got %d rows, at most %d were recorded", len(records), writers*perWriter)
	}
	if !reopened.IsHealthy() {
		t.Error("reopened journal unhealthy")
	}
}

func TestDeleteDB(t *testing.T) {
	s := openStore(t)
	if err := s.DeleteDB(); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second close = %v", err)
	}
}
