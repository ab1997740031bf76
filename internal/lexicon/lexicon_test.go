package lexicon

import (
	"context"
	"database/sql"
	"path/filepath"
	"reflect"
	"testing"
)

// newTestLexicon builds a lexicon.db with a few words.
func newTestLexicon(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lexicon.db")

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("create test db: %v", err)
	}
	defer db.Close()

	_, err = db.Exec(`
		CREATE TABLE word_phonemes (
			word TEXT NOT NULL,
			pron_order INTEGER NOT NULL DEFAULT 0,
			phonemes TEXT NOT NULL
		);
		CREATE INDEX idx_word_phonemes_word ON word_phonemes(word);
	`)
	if err != nil {
		t.Fatalf("create schema: %v", err)
	}

	rows := []struct {
		word     string
		order    int
		phonemes string
	}{
		{"white", 0, "W AY T"},
		{"board", 0, "B AO R D"},
		{"read", 0, "R IY D"},
		{"read", 1, "R EH D"},
	}
	for _, r := range rows {
		if _, err := db.Exec(
			"INSERT INTO word_phonemes (word, pron_order, phonemes) VALUES (?, ?, ?)",
			r.word, r.order, r.phonemes); err != nil {
			t.Fatalf("insert %q: %v", r.word, err)
		}
	}

	lex, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { lex.Close() })
	return lex
}

func TestLookup(t *testing.T) {
	lex := newTestLexicon(t)
	ctx := context.Background()

	prons, err := lex.Lookup(ctx, "read")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	want := []string{"R IY D", "R EH D"}
	if !reflect.DeepEqual(prons, want) {
		t.Fatalf("Lookup(read) = %v, want %v", prons, want)
	}

	// Case-insensitive
	prons, err = lex.Lookup(ctx, "White")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if len(prons) != 1 || prons[0] != "W AY T" {
		t.Fatalf("Lookup(White) = %v", prons)
	}

	// Unknown word
	prons, err = lex.Lookup(ctx, "zyzzyva")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if len(prons) != 0 {
		t.Fatalf("Lookup(zyzzyva) = %v, want empty", prons)
	}
}

func TestSoundsLike(t *testing.T) {
	lex := newTestLexicon(t)
	ctx := context.Background()

	prons, err := lex.SoundsLike(ctx, "white[board]")
	if err != nil {
		t.Fatalf("SoundsLike: %v", err)
	}
	if len(prons) != 1 || prons[0] != "W AY T B AO R D" {
		t.Fatalf("SoundsLike(white[board]) = %v", prons)
	}

	// Unknown segment yields no pronunciation, not an error.
	prons, err = lex.SoundsLike(ctx, "white[noise]")
	if err != nil {
		t.Fatalf("SoundsLike: %v", err)
	}
	if len(prons) != 0 {
		t.Fatalf("SoundsLike(white[noise]) = %v, want empty", prons)
	}
}

func TestSplitSegments(t *testing.T) {
	tests := []struct {
		in      string
		want    []string
		wantErr bool
	}{
		{in: "white[board]", want: []string{"white", "board"}},
		{in: "plain", want: []string{"plain"}},
		{in: "[a][b]", want: []string{"a", "b"}},
		{in: "un[closed", wantErr: true},
		{in: "bad]bracket", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tc := range tests {
		got, err := splitSegments(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("splitSegments(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("splitSegments(%q): %v", tc.in, err)
			continue
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("splitSegments(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
