// Package content loads the word lists, verb tables and dictionary the
// mini-games draw prompts from. A Catalog is built once and never mutated.
package content

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"wordarcade/internal/models"
)

//go:embed default.yaml
var defaultCatalog []byte

// Verb is one row of the conjugation table
type Verb struct {
	Base           string `yaml:"base"`
	PastSimple     string `yaml:"past_simple"`
	PastParticiple string `yaml:"past_participle"`
	Translation    string `yaml:"translation"`
}

// Field returns the verb form named by a conjugation field
func (v Verb) Field(name string) (string, bool) {
	switch name {
	case FieldPastSimple:
		return v.PastSimple, true
	case FieldPastParticiple:
		return v.PastParticiple, true
	case FieldTranslation:
		return v.Translation, true
	}
	return "", false
}

// Conjugation field names accepted in answers
const (
	FieldPastSimple     = "past_simple"
	FieldPastParticiple = "past_participle"
	FieldTranslation    = "translation"
)

type file struct {
	FallingWords map[models.Bucket][]string `yaml:"falling_words"`
	Dictionary   []string                   `yaml:"dictionary"`
	Verbs        []Verb                     `yaml:"verbs"`
	WordGuess    map[models.Bucket][]string `yaml:"word_guess"`
}

// Catalog is the immutable content set handed to every engine
type Catalog struct {
	fallingWords map[models.Bucket][]string
	wordGuess    map[models.Bucket][]string
	verbs        []Verb
	dictionary   map[string]struct{}
	initials     []rune
}

// Default returns the catalog compiled into the binary
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog from path, or the built-in one when path is empty
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read content file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates YAML catalog content
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse content: %w", err)
	}

	c := &Catalog{
		fallingWords: make(map[models.Bucket][]string),
		wordGuess:    make(map[models.Bucket][]string),
		dictionary:   make(map[string]struct{}),
	}

	for _, b := range []models.Bucket{models.BucketEasy, models.BucketMedium, models.BucketHard} {
		words := cleanList(f.FallingWords[b])
		if len(words) == 0 {
			return nil, fmt.Errorf("content: falling_words.%s is empty", b)
		}
		c.fallingWords[b] = words

		guess := cleanList(f.WordGuess[b])
		if len(guess) == 0 {
			return nil, fmt.Errorf("content: word_guess.%s is empty", b)
		}
		c.wordGuess[b] = guess
	}

	for i, v := range f.Verbs {
		v.Base = strings.TrimSpace(v.Base)
		if v.Base == "" || v.PastSimple == "" || v.PastParticiple == "" || v.Translation == "" {
			return nil, fmt.Errorf("content: verb %d is missing a form", i)
		}
		c.verbs = append(c.verbs, v)
	}
	if len(c.verbs) == 0 {
		return nil, fmt.Errorf("content: verbs is empty")
	}

	// Every word the games can show is also a valid free-mode answer.
	for _, w := range cleanList(f.Dictionary) {
		c.dictionary[strings.ToLower(w)] = struct{}{}
	}
	for _, list := range c.fallingWords {
		for _, w := range list {
			c.dictionary[strings.ToLower(w)] = struct{}{}
		}
	}
	for _, list := range c.wordGuess {
		for _, w := range list {
			c.dictionary[strings.ToLower(w)] = struct{}{}
		}
	}

	seen := make(map[rune]bool)
	for w := range c.dictionary {
		r := []rune(w)[0]
		if !seen[r] {
			seen[r] = true
			c.initials = append(c.initials, r)
		}
	}
	slices.Sort(c.initials)

	return c, nil
}

// FallingWords returns the word list for an exact-match bucket
func (c *Catalog) FallingWords(bucket models.Bucket) []string {
	return clone(c.fallingWords[bucket])
}

// WordGuess returns the word list for a word_guess bucket
func (c *Catalog) WordGuess(bucket models.Bucket) []string {
	return clone(c.wordGuess[bucket])
}

// Verbs returns the conjugation table
func (c *Catalog) Verbs() []Verb {
	out := make([]Verb, len(c.verbs))
	copy(out, c.verbs)
	return out
}

// InDictionary reports whether word (case-insensitive) is a known word
func (c *Catalog) InDictionary(word string) bool {
	_, ok := c.dictionary[strings.ToLower(word)]
	return ok
}

// Initials returns the sorted set of first letters that start at least one
// dictionary word.
func (c *Catalog) Initials() []rune {
	out := make([]rune, len(c.initials))
	copy(out, c.initials)
	return out
}

// WordsStartingWith returns every dictionary word beginning with r
func (c *Catalog) WordsStartingWith(r rune) []string {
	var out []string
	for w := range c.dictionary {
		if []rune(w)[0] == r {
			out = append(out, w)
		}
	}
	return out
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, w := range in {
		w = strings.TrimSpace(w)
		if w == "" || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}

func clone(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
