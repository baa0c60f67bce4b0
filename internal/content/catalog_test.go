package content

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"wordarcade/internal/models"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}

	for _, b := range []models.Bucket{models.BucketEasy, models.BucketMedium, models.BucketHard} {
		if len(c.FallingWords(b)) == 0 {
			t.Errorf("falling words for %s empty", b)
		}
		if len(c.WordGuess(b)) == 0 {
			t.Errorf("word guess words for %s empty", b)
		}
	}
	if len(c.Verbs()) == 0 {
		t.Error("verbs empty")
	}
	if len(c.Initials()) == 0 {
		t.Error("initials empty")
	}
}

func TestDictionaryIncludesGameWords(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		word string
		want bool
	}{
		{"cat", true},
		{"CAT", true},
		{"elephant", true},
		{"butterfly", true},
		{"owl", true},
		{"qwzx", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := c.InDictionary(tt.word); got != tt.want {
			t.Errorf("InDictionary(%q) = %v, want %v", tt.word, got, tt.want)
		}
	}
}

func TestAccessorsReturnCopies(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatal(err)
	}

	words := c.FallingWords(models.BucketEasy)
	first := words[0]
	words[0] = "mutated"
	if got := c.FallingWords(models.BucketEasy)[0]; got != first {
		t.Errorf("catalog mutated through returned slice: got %q, want %q", got, first)
	}

	verbs := c.Verbs()
	base := verbs[0].Base
	verbs[0].Base = "mutated"
	if got := c.Verbs()[0].Base; got != base {
		t.Errorf("verb table mutated through returned slice: got %q", got)
	}
}

func TestWordsStartingWith(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range c.Initials() {
		words := c.WordsStartingWith(r)
		if len(words) == 0 {
			t.Errorf("initial %q has no words", r)
		}
		for _, w := range words {
			if !strings.HasPrefix(w, string(r)) {
				t.Errorf("word %q does not start with %q", w, r)
			}
		}
	}
}

func TestVerbField(t *testing.T) {
	v := Verb{Base: "go", PastSimple: "went", PastParticiple: "gone", Translation: "ir"}
	tests := []struct {
		field string
		want  string
		ok    bool
	}{
		{FieldPastSimple, "went", true},
		{FieldPastParticiple, "gone", true},
		{FieldTranslation, "ir", true},
		{"gerund", "", false},
	}
	for _, tt := range tests {
		got, ok := v.Field(tt.field)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Field(%q) = %q, %v; want %q, %v", tt.field, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseRejectsIncompleteContent(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "missing falling bucket",
			yaml: `
falling_words: {easy: [a], medium: [b]}
word_guess: {easy: [a], medium: [b], hard: [c]}
verbs: [{base: go, past_simple: went, past_participle: gone, translation: ir}]
`,
		},
		{
			name: "verb missing form",
			yaml: `
falling_words: {easy: [a], medium: [b], hard: [c]}
word_guess: {easy: [a], medium: [b], hard: [c]}
verbs: [{base: go, past_simple: went}]
`,
		},
		{
			name: "no verbs",
			yaml: `
falling_words: {easy: [a], medium: [b], hard: [c]}
word_guess: {easy: [a], medium: [b], hard: [c]}
`,
		},
		{
			name: "not yaml",
			yaml: "falling_words: [unclosed",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.yaml)); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "content.yaml")
	data := `
falling_words: {easy: [cat, cat, " dog "], medium: [apple], hard: [Giraffe]}
word_guess: {easy: [frog], medium: [planet], hard: [telescope]}
dictionary: [zebra]
verbs: [{base: go, past_simple: went, past_participle: gone, translation: ir}]
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := c.FallingWords(models.BucketEasy); len(got) != 2 || got[1] != "dog" {
		t.Errorf("FallingWords(easy) = %v, want [cat dog]", got)
	}
	if !c.InDictionary("giraffe") || !c.InDictionary("zebra") {
		t.Error("dictionary should include hard words and explicit entries")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
