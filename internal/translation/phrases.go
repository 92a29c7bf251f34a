package translation

import "strings"

// PhraseTable is the offline dictionary used in simulated mode.
// Keys are stored lower-cased and looked up case-insensitively.
type PhraseTable struct {
	entries map[string]string
}

func NewPhraseTable(entries map[string]string) *PhraseTable {
	t := &PhraseTable{entries: make(map[string]string, len(entries))}
	for k, v := range entries {
		t.entries[strings.ToLower(k)] = v
	}
	return t
}

// DefaultPhrases returns the built-in Turkish to English table.
func DefaultPhrases() *PhraseTable {
	return NewPhraseTable(map[string]string{
		"merhaba dünya":        "hello world",
		"nasılsın":             "how are you",
		"vox başla":            "vox start",
		"vox dur":              "vox stop",
		"bugün hava çok güzel": "the weather is very nice today",
	})
}

func (t *PhraseTable) Lookup(text string) (string, bool) {
	if t == nil {
		return "", false
	}
	v, ok := t.entries[strings.ToLower(text)]
	return v, ok
}

// Entries returns a copy of the table with lower-cased keys.
func (t *PhraseTable) Entries() map[string]string {
	out := make(map[string]string)
	if t == nil {
		return out
	}
	for k, v := range t.entries {
		out[k] = v
	}
	return out
}

func (t *PhraseTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}
