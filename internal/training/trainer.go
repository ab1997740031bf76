// Package training runs the external training toolchain for a model and
// streams its log output line by line.
package training

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/voiceops/speechadmin/internal/catalog"
	"github.com/voiceops/speechadmin/internal/sentences"
)

// ErrTrainingInFlight is returned when a training run is already active
// for the same model.
var ErrTrainingInFlight = errors.New("training already in progress")

// LineFunc receives one log line at a time (no trailing newline).
type LineFunc func(line string)

// Step is one external command in the training pipeline.
type Step struct {
	Name string
	Argv []string
}

// Trainer coordinates training runs. At most one run per model is
// active at a time; the web UI additionally gates the trigger button,
// but the server enforces the invariant too.
type Trainer struct {
	ModelsDir string
	TrainDir  string
	ToolsDir  string
	Sentences *sentences.Store

	// Steps overrides the pipeline, used by tests. When nil the default
	// kaldi toolchain is run.
	Steps func(modelID string) []Step

	mu     sync.Mutex
	active map[string]bool
}

func New(modelsDir, trainDir, toolsDir string) *Trainer {
	return &Trainer{
		ModelsDir: modelsDir,
		TrainDir:  trainDir,
		ToolsDir:  toolsDir,
		Sentences: sentences.NewStore(trainDir),
		active:    make(map[string]bool),
	}
}

// Busy reports whether a training run is active for the model.
func (t *Trainer) Busy(modelID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active[modelID]
}

func (t *Trainer) acquire(modelID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active[modelID] {
		return fmt.Errorf("%w: %s", ErrTrainingInFlight, modelID)
	}
	t.active[modelID] = true
	return nil
}

func (t *Trainer) release(modelID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.active, modelID)
}

// Train runs the pipeline for a model, sending each log line to logf.
// The caller is responsible for surfacing the returned error to the
// user; progress lines are emitted regardless of the outcome.
func (t *Trainer) Train(ctx context.Context, modelID string, logf LineFunc) error {
	if err := t.acquire(modelID); err != nil {
		return err
	}
	defer t.release(modelID)

	runID := uuid.NewString()[:8]
	start := time.Now()
	logf("Training started")
	logf(fmt.Sprintf("Run %s for %s", runID, modelID))

	if err := t.prepare(modelID, logf); err != nil {
		return err
	}

	steps := t.defaultSteps(modelID)
	if t.Steps != nil {
		steps = t.Steps(modelID)
	}
	for _, step := range steps {
		logf(fmt.Sprintf("Running %s", step.Name))
		if err := runStreaming(ctx, logf, step.Argv[0], step.Argv[1:]...); err != nil {
			return fmt.Errorf("%s: %w", step.Name, err)
		}
	}

	logf(fmt.Sprintf("Training completed in %.1f second(s)", time.Since(start).Seconds()))
	logf("Training complete")
	return nil
}

// prepare validates the sentences file and lays out the training dir.
func (t *Trainer) prepare(modelID string, logf LineFunc) error {
	text, err := t.Sentences.Load(modelID)
	if err != nil {
		return err
	}
	if text == "" {
		return fmt.Errorf("no sentences defined for %s", modelID)
	}
	doc, err := sentences.Validate(text)
	if err != nil {
		return err
	}
	logf(fmt.Sprintf("Loaded %d sentence group(s)", len(doc.Sentences)))

	if err := os.MkdirAll(filepath.Join(t.TrainDir, modelID), 0755); err != nil {
		return fmt.Errorf("create train directory: %w", err)
	}
	return nil
}

// defaultSteps is the kaldi toolchain pipeline. The tools dir layout
// matches the rhasspy-speech release archives.
func (t *Trainer) defaultSteps(modelID string) []Step {
	modelDir := filepath.Join(t.ModelsDir, modelID)
	trainDir := filepath.Join(t.TrainDir, modelID)
	return []Step{
		{
			Name: "kaldi",
			Argv: []string{
				filepath.Join(t.ToolsDir, "kaldi", "train.sh"),
				"--language", catalog.Language(modelID),
				"--model-dir", modelDir,
				"--train-dir", trainDir,
				"--opengrm-dir", filepath.Join(t.ToolsDir, "opengrm"),
				"--openfst-dir", filepath.Join(t.ToolsDir, "openfst"),
				"--phonetisaurus", filepath.Join(t.ToolsDir, "phonetisaurus"),
			},
		},
	}
}
