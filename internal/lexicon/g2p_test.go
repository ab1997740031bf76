package lexicon

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// fakePhonetisaurus writes a script that echoes canned predictions.
func fakePhonetisaurus(t *testing.T, output string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake g2p script requires a POSIX shell")
	}

	path := filepath.Join(t.TempDir(), "phonetisaurus")
	script := "#!/bin/sh\nprintf '%s' " + shellQuote(output) + "\n"
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

func shellQuote(s string) string {
	return "'" + s + "'"
}

func TestGuessPronunciations(t *testing.T) {
	bin := fakePhonetisaurus(t, "whiteboard W AY T B AO R D\nmalformed\nzyzzyva Z IH Z IH V AH\n")

	guesses, err := GuessPronunciations(context.Background(), bin, "g2p.fst", []string{"whiteboard", "zyzzyva"})
	if err != nil {
		t.Fatalf("GuessPronunciations: %v", err)
	}
	if len(guesses) != 2 {
		t.Fatalf("got %d guesses, want 2: %v", len(guesses), guesses)
	}
	if guesses[0].Word != "whiteboard" || guesses[0].Phonemes != "W AY T B AO R D" {
		t.Fatalf("first guess = %+v", guesses[0])
	}
	if guesses[1].Word != "zyzzyva" {
		t.Fatalf("second guess = %+v", guesses[1])
	}
}

func TestGuessPronunciationsNoWords(t *testing.T) {
	guesses, err := GuessPronunciations(context.Background(), "/nonexistent", "g2p.fst", nil)
	if err != nil {
		t.Fatalf("no words should be a no-op, got %v", err)
	}
	if guesses != nil {
		t.Fatalf("expected nil guesses, got %v", guesses)
	}
}

func TestGuessPronunciationsMissingBinary(t *testing.T) {
	_, err := GuessPronunciations(context.Background(), "/nonexistent/phonetisaurus", "g2p.fst", []string{"word"})
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
}
