package phrases

import (
	"fmt"
	"os"
	"strings"

	"github.com/foxseedlab/vox/internal/translation"
	"gopkg.in/yaml.v3"
)

type phraseFile struct {
	// Replace drops the built-in phrases instead of extending them.
	Replace bool              `yaml:"replace"`
	Phrases map[string]string `yaml:"phrases"`
}

// Load reads a YAML phrase table such as
//
//	phrases:
//	  günaydın: good morning
//
// An empty path returns the built-in table.
func Load(path string) (*translation.PhraseTable, error) {
	if strings.TrimSpace(path) == "" {
		return translation.DefaultPhrases(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read phrase table: %w", err)
	}
	return Parse(b)
}

func Parse(b []byte) (*translation.PhraseTable, error) {
	var f phraseFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("failed to parse phrase table: %w", err)
	}
	entries := make(map[string]string)
	if !f.Replace {
		entries = translation.DefaultPhrases().Entries()
	}
	for k, v := range f.Phrases {
		if strings.TrimSpace(k) == "" {
			continue
		}
		entries[k] = v
	}
	return translation.NewPhraseTable(entries), nil
}
