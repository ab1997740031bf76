// Package catalog describes the speech-to-text models that can be
// downloaded and managed. Models are identified by "<locale>-<name>" ids
// matching the upstream release archives.
package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Model describes a downloadable speech model.
type Model struct {
	ID          string
	Language    string
	Description string
	URL         string
	SizeMB      int
}

const releaseBase = "https://huggingface.co/datasets/rhasspy/rhasspy-speech/resolve/main/models"

// Models is the registry of known models.
var Models = map[string]Model{
	"en_US-rhasspy": {
		ID:          "en_US-rhasspy",
		Language:    "English (US)",
		Description: "U.S. English model",
		URL:         releaseBase + "/en_US-rhasspy.tar.gz",
		SizeMB:      136,
	},
	"de_DE-zamia": {
		ID:          "de_DE-zamia",
		Language:    "German",
		Description: "German model (Zamia)",
		URL:         releaseBase + "/de_DE-zamia.tar.gz",
		SizeMB:      130,
	},
	"fr_FR-guyot": {
		ID:          "fr_FR-guyot",
		Language:    "French",
		Description: "French model (Guyot)",
		URL:         releaseBase + "/fr_FR-guyot.tar.gz",
		SizeMB:      128,
	},
	"nl_NL-cgn": {
		ID:          "nl_NL-cgn",
		Language:    "Dutch",
		Description: "Dutch model (CGN)",
		URL:         releaseBase + "/nl_NL-cgn.tar.gz",
		SizeMB:      127,
	},
	"es_ES-rhasspy": {
		ID:          "es_ES-rhasspy",
		Language:    "Spanish",
		Description: "Castilian Spanish model",
		URL:         releaseBase + "/es_ES-rhasspy.tar.gz",
		SizeMB:      125,
	},
	"it_IT-rhasspy": {
		ID:          "it_IT-rhasspy",
		Language:    "Italian",
		Description: "Italian model",
		URL:         releaseBase + "/it_IT-rhasspy.tar.gz",
		SizeMB:      125,
	},
}

// Get returns the model for id.
func Get(id string) (Model, error) {
	m, ok := Models[id]
	if !ok {
		return Model{}, fmt.Errorf("unknown model: %s", id)
	}
	return m, nil
}

// List returns all known models sorted by id.
func List() []Model {
	out := make([]Model, 0, len(Models))
	for _, m := range Models {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Language extracts the language code from a model id,
// e.g. "en_US-rhasspy" -> "en".
func Language(modelID string) string {
	locale, _, _ := strings.Cut(modelID, "-")
	lang, _, _ := strings.Cut(locale, "_")
	return lang
}

// IsDownloaded reports whether the model has been extracted into modelsDir.
func IsDownloaded(modelsDir, modelID string) bool {
	info, err := os.Stat(filepath.Join(modelsDir, modelID))
	return err == nil && info.IsDir()
}

// Downloaded returns the set of model ids present under modelsDir.
func Downloaded(modelsDir string) map[string]bool {
	out := make(map[string]bool)
	for id := range Models {
		if IsDownloaded(modelsDir, id) {
			out[id] = true
		}
	}
	return out
}
