package translation

import "testing"

func TestDefaultPhrases_CaseInsensitive(t *testing.T) {
	p := DefaultPhrases()
	cases := map[string]string{
		"merhaba dünya": "hello world",
		"MERHABA DÜNYA": "hello world",
		"Nasılsın":      "how are you",
		"vox dur":       "vox stop",
	}
	for in, want := range cases {
		got, ok := p.Lookup(in)
		if !ok || got != want {
			t.Fatalf("Lookup(%q) = %q, %v; want %q", in, got, ok, want)
		}
	}
}

func TestPhraseTable_Miss(t *testing.T) {
	if _, ok := DefaultPhrases().Lookup("unknown phrase"); ok {
		t.Fatal("expected miss")
	}
	var nilTable *PhraseTable
	if _, ok := nilTable.Lookup("merhaba dünya"); ok {
		t.Fatal("expected nil table to miss")
	}
}
