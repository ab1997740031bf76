package lexicon

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Guess is one guessed pronunciation for an out-of-lexicon word.
type Guess struct {
	Word     string
	Phonemes string
}

// GuessPronunciations runs the phonetisaurus g2p model over words the
// lexicon does not know. fstPath is the model's g2p.fst, bin the
// phonetisaurus executable. Output lines are "word<TAB>p h o n e m e s"
// (whitespace separated); unparseable lines are skipped.
func GuessPronunciations(ctx context.Context, bin, fstPath string, words []string) ([]Guess, error) {
	if len(words) == 0 {
		return nil, nil
	}

	args := append([]string{"predict", "--model", fstPath}, words...)
	cmd := exec.CommandContext(ctx, bin, args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("phonetisaurus stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start phonetisaurus: %w", err)
	}

	var guesses []Guess
	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		guesses = append(guesses, Guess{
			Word:     fields[0],
			Phonemes: strings.Join(fields[1:], " "),
		})
	}
	scanErr := scanner.Err()

	if err := cmd.Wait(); err != nil {
		return nil, fmt.Errorf("phonetisaurus: %w", err)
	}
	if scanErr != nil {
		return nil, fmt.Errorf("read phonetisaurus output: %w", scanErr)
	}
	return guesses, nil
}
