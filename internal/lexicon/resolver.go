package lexicon

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Resolver answers pronunciation queries for a model: known words come
// from the model's lexicon.db, unknown ones are guessed with its g2p
// model.
type Resolver struct {
	ModelsDir        string
	PhonetisaurusBin string
}

// Resolve looks up each word. Words with bracket syntax use sounds-like
// composition. Words the lexicon does not know are guessed; the guessed
// results are returned separately so the UI can flag them.
func (r *Resolver) Resolve(ctx context.Context, modelID string, words []string) (found, guessed []Guess, err error) {
	dbPath := filepath.Join(r.ModelsDir, modelID, "lexicon.db")
	if _, err := os.Stat(dbPath); err != nil {
		return nil, nil, fmt.Errorf("model %s has no lexicon (is it downloaded?)", modelID)
	}

	lex, err := Open(dbPath)
	if err != nil {
		return nil, nil, err
	}
	defer lex.Close()

	var missing []string
	for _, word := range words {
		var prons []string
		if strings.ContainsRune(word, '[') {
			prons, err = lex.SoundsLike(ctx, word)
		} else {
			prons, err = lex.Lookup(ctx, word)
		}
		if err != nil {
			return nil, nil, err
		}

		if len(prons) == 0 {
			missing = append(missing, word)
			continue
		}
		for _, p := range prons {
			found = append(found, Guess{Word: word, Phonemes: p})
		}
	}

	if len(missing) > 0 {
		guessed, err = GuessPronunciations(ctx, r.PhonetisaurusBin,
			filepath.Join(r.ModelsDir, modelID, "g2p.fst"), missing)
		if err != nil {
			return nil, nil, err
		}
	}
	return found, guessed, nil
}
