// Package lexicon provides word pronunciation lookup backed by the
// per-model lexicon.db SQLite database, with g2p guessing for words the
// lexicon does not know.
package lexicon

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// DB is a read-only handle to a model's pronunciation lexicon.
type DB struct {
	db *sql.DB
}

// Open opens the lexicon database at path.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open lexicon: %w", err)
	}
	return &DB{db: db}, nil
}

// Close closes the underlying database.
func (l *DB) Close() error {
	return l.db.Close()
}

// Lookup returns all known pronunciations for a word, ordered by
// preference. Each pronunciation is a space-separated phoneme string.
// Lookup is case-insensitive; the lexicon stores lowercase words.
func (l *DB) Lookup(ctx context.Context, word string) ([]string, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT phonemes FROM word_phonemes
		WHERE word = ?
		ORDER BY pron_order`, strings.ToLower(word))
	if err != nil {
		return nil, fmt.Errorf("query pronunciations: %w", err)
	}
	defer rows.Close()

	var prons []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan pronunciation: %w", err)
		}
		prons = append(prons, p)
	}
	return prons, rows.Err()
}

// SoundsLike resolves the bracket syntax used on the words page:
// "white[board]" means "pronounce like 'white' followed by 'board'".
// Every segment, bracketed or not, must be a known lexicon word; the
// first pronunciation of each segment is concatenated.
func (l *DB) SoundsLike(ctx context.Context, word string) ([]string, error) {
	segments, err := splitSegments(word)
	if err != nil {
		return nil, err
	}

	var phonemes []string
	for _, seg := range segments {
		prons, err := l.Lookup(ctx, seg)
		if err != nil {
			return nil, err
		}
		if len(prons) == 0 {
			return nil, nil
		}
		phonemes = append(phonemes, prons[0])
	}
	return []string{strings.Join(phonemes, " ")}, nil
}

// splitSegments breaks "white[board]" into ["white", "board"].
func splitSegments(word string) ([]string, error) {
	var segments []string
	var current strings.Builder
	inBracket := false

	flush := func() {
		if current.Len() > 0 {
			segments = append(segments, current.String())
			current.Reset()
		}
	}

	for _, r := range word {
		switch r {
		case '[':
			if inBracket {
				return nil, fmt.Errorf("nested bracket in %q", word)
			}
			flush()
			inBracket = true
		case ']':
			if !inBracket {
				return nil, fmt.Errorf("unbalanced bracket in %q", word)
			}
			flush()
			inBracket = false
		default:
			current.WriteRune(r)
		}
	}
	if inBracket {
		return nil, fmt.Errorf("unclosed bracket in %q", word)
	}
	flush()

	if len(segments) == 0 {
		return nil, fmt.Errorf("empty word")
	}
	return segments, nil
}
