// Package sentences manages the per-model sentences.yaml files that
// define what the speech model is trained to recognize.
package sentences

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Document is the parsed shape of a sentences.yaml file. Only the keys
// we act on are modeled; template lists and the like pass through as raw
// text.
type Document struct {
	Sentences []yaml.Node          `yaml:"sentences"`
	SkipWords []string             `yaml:"skip_words"`
	Lists     map[string]yaml.Node `yaml:"lists"`
}

// Validate parses raw YAML and checks it describes at least one sentence.
func Validate(text string) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	if doc.Sentences == nil {
		return nil, fmt.Errorf("missing sentences block")
	}
	if len(doc.Sentences) == 0 {
		return nil, fmt.Errorf("no sentences")
	}
	return &doc, nil
}

// Store reads and writes sentences files under a training directory.
type Store struct {
	trainDir string
}

func NewStore(trainDir string) *Store {
	return &Store{trainDir: trainDir}
}

// Path returns the sentences.yaml path for a model.
func (s *Store) Path(modelID string) string {
	return filepath.Join(s.trainDir, modelID, "sentences.yaml")
}

// Exists reports whether a sentences file has been saved for the model.
func (s *Store) Exists(modelID string) bool {
	_, err := os.Stat(s.Path(modelID))
	return err == nil
}

// Load returns the raw sentences text, or "" if none has been saved.
func (s *Store) Load(modelID string) (string, error) {
	data, err := os.ReadFile(s.Path(modelID))
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read sentences: %w", err)
	}
	return string(data), nil
}

// Save validates and writes the sentences text, returning the parsed
// document so callers can pick up skip_words.
func (s *Store) Save(modelID, text string) (*Document, error) {
	doc, err := Validate(text)
	if err != nil {
		return nil, err
	}

	path := s.Path(modelID)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create train directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return nil, fmt.Errorf("write sentences: %w", err)
	}
	return doc, nil
}
