package game

import (
	"math/rand/v2"
	"strings"

	"wordarcade/internal/content"
)

// answerKey is the accepted-answer field for single-word prompts.
const answerKey = "word"

// prompt is the single active challenge of a session
type prompt struct {
	text     string
	answers  map[string]string
	initial  rune
	key      string
	spawnAt  int64
	deadline int64
}

func (p *prompt) expiresAt() int64 {
	if p.deadline <= 0 {
		return -1
	}
	return p.spawnAt + p.deadline
}

// PromptView is the client-visible part of the active prompt. Accepted
// answers are never exposed.
type PromptView struct {
	Text       string   `json:"text"`
	Fields     []string `json:"fields,omitempty"`
	Letter     string   `json:"letter,omitempty"`
	AgeMs      int64    `json:"age_ms"`
	DeadlineMs int64    `json:"deadline_ms,omitempty"`
	// Progress is how far the prompt has fallen toward its deadline, 0..1.
	Progress float64 `json:"progress"`
}

// deck hands out prompts for one session until its content runs out
type deck interface {
	next(used map[string]struct{}) (*prompt, bool)
}

func newDeck(mode Mode, catalog *content.Catalog, rng *rand.Rand) deck {
	switch mode.Match {
	case MatchFree:
		return &freeDeck{catalog: catalog, rng: rng}
	case MatchFields:
		verbs := catalog.Verbs()
		rng.Shuffle(len(verbs), func(i, j int) { verbs[i], verbs[j] = verbs[j], verbs[i] })
		return &verbDeck{verbs: verbs, fields: mode.Fields}
	case MatchUnscramble:
		words := catalog.WordGuess(mode.Bucket)
		rng.Shuffle(len(words), func(i, j int) { words[i], words[j] = words[j], words[i] })
		return &wordDeck{words: words, scramble: true, rng: rng, caseSensitive: mode.CaseSensitive}
	default:
		words := catalog.FallingWords(mode.Bucket)
		rng.Shuffle(len(words), func(i, j int) { words[i], words[j] = words[j], words[i] })
		return &wordDeck{words: words, caseSensitive: mode.CaseSensitive}
	}
}

// wordDeck serves each word of a shuffled list once
type wordDeck struct {
	words         []string
	pos           int
	scramble      bool
	caseSensitive bool
	rng           *rand.Rand
}

func (d *wordDeck) next(used map[string]struct{}) (*prompt, bool) {
	for d.pos < len(d.words) {
		w := d.words[d.pos]
		d.pos++
		key := normalize(w, d.caseSensitive)
		if _, ok := used[key]; ok {
			continue
		}
		text := w
		if d.scramble {
			text = scramble(w, d.rng)
		}
		return &prompt{text: text, answers: map[string]string{answerKey: w}, key: key}, true
	}
	return nil, false
}

// verbDeck serves each verb once, asking for the mode's fields
type verbDeck struct {
	verbs  []content.Verb
	pos    int
	fields []string
}

func (d *verbDeck) next(used map[string]struct{}) (*prompt, bool) {
	for d.pos < len(d.verbs) {
		v := d.verbs[d.pos]
		d.pos++
		key := strings.ToLower(v.Base)
		if _, ok := used[key]; ok {
			continue
		}
		answers := make(map[string]string, len(d.fields))
		for _, f := range d.fields {
			form, _ := v.Field(f)
			answers[f] = form
		}
		return &prompt{text: v.Base, answers: answers, key: key}, true
	}
	return nil, false
}

// freeDeck picks a random starting letter that still has unused words
type freeDeck struct {
	catalog *content.Catalog
	rng     *rand.Rand
}

func (d *freeDeck) next(used map[string]struct{}) (*prompt, bool) {
	var open []rune
	for _, r := range d.catalog.Initials() {
		for _, w := range d.catalog.WordsStartingWith(r) {
			if _, ok := used[w]; !ok {
				open = append(open, r)
				break
			}
		}
	}
	if len(open) == 0 {
		return nil, false
	}
	r := open[d.rng.IntN(len(open))]
	return &prompt{text: strings.ToUpper(string(r)), initial: r}, true
}

// scramble shuffles the letters of w, avoiding the original order when the
// word has at least two distinct letters.
func scramble(w string, rng *rand.Rand) string {
	letters := []rune(w)
	for range 8 {
		rng.Shuffle(len(letters), func(i, j int) { letters[i], letters[j] = letters[j], letters[i] })
		if string(letters) != w {
			break
		}
	}
	return string(letters)
}

func normalize(s string, caseSensitive bool) string {
	s = strings.TrimSpace(s)
	if caseSensitive {
		return s
	}
	return strings.ToLower(s)
}

// matches reports whether a satisfies the prompt under the mode's rule.
// Conjugation fields are compared case-insensitively.
func (p *prompt) matches(mode Mode, a Answer, catalog *content.Catalog) bool {
	switch mode.Match {
	case MatchFree:
		word := normalize(a.Text, false)
		r := []rune(word)
		return len(r) > 0 && r[0] == p.initial && catalog.InDictionary(word)
	case MatchFields:
		for _, f := range mode.Fields {
			if normalize(a.Fields[f], false) != normalize(p.answers[f], false) {
				return false
			}
		}
		return true
	default:
		return normalize(a.Text, mode.CaseSensitive) == normalize(p.answers[answerKey], mode.CaseSensitive)
	}
}
