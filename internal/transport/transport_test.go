package transport

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestScannerReadsLines(t *testing.T) {
	s := NewScanner(strings.NewReader("uci\r\nisready\n\nposition startpos moves e2e4\ngo"))

	want := []string{"uci", "isready", "", "position startpos moves e2e4", "go"}
	for i, w := range want {
		line, err := s.ReadLine()
		if err != nil {
			t.Fatalf("line %d: %v", i, err)
		}
		if line != w {
			t.Errorf("line %d = %q, want %q", i, line, w)
		}
	}
	if _, err := s.ReadLine(); !errors.Is(err, io.EOF) {
		t.Errorf("after last line err = %v, want EOF", err)
	}
}

func TestScannerLongLine(t *testing.T) {
	long := "position startpos moves" + strings.Repeat(" e2e4", 20000)
	s := NewScanner(strings.NewReader(long + "\n"))
	line, err := s.ReadLine()
	if err != nil {
		t.Fatal(err)
	}
	if line != long {
		t.Errorf("long line truncated to %d bytes", len(line))
	}
}

type closeTracker struct {
	io.Reader
	closed bool
}

func (c *closeTracker) Close() error {
	c.closed = true
	return nil
}

func TestScannerClose(t *testing.T) {
	c := &closeTracker{Reader: strings.NewReader("")}
	if err := NewScanner(c).Close(); err != nil {
		t.Fatal(err)
	}
	if !c.closed {
		t.Error("underlying reader not closed")
	}
}

func TestScannerDiscardsOversizedLine(t *testing.T) {
	input := "uci\n" + strings.Repeat("x", 2*maxLine) + "\nisready\n" + strings.Repeat("y", maxLine+10)
	s := NewScanner(strings.NewReader(input))

	want := []string{"uci", "", "isready", ""}
	for i, w := range want {
		line, err := s.ReadLine()
		if err != nil {
			t.Fatalf("line %d: %v", i, err)
		}
		if line != w {
			t.Errorf("line %d has %d bytes, want %q", i, len(line), w)
		}
	}
	if _, err := s.ReadLine(); !errors.Is(err, io.EOF) {
		t.Errorf("after last line err = %v, want EOF", err)
	}
}
