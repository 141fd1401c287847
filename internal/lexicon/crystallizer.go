package lexicon

import (
	"strings"
)

// Config parameterizes the crystallizer's schedule and thresholds.
type Config struct {
	AnalyzeEvery       int     // ticks between analysis passes
	WindowSize         int     // how many recent utterances to scan
	MaxLength          int     // max N-gram length in tokens
	MinUsage           int     // occurrences required to promote/reinforce
	Reinforcement      float64 // weight added on repeat promotion
	DecayIdleThreshold float64 // world-seconds of inactivity before decay applies
	DecayRate          float64
	MaxRelatedTerms    int
	GreetingSets       [][]string // language-specific known greeting phrases
}

// DefaultConfig returns spec.md §4.8's documented defaults.
func DefaultConfig() Config {
	return Config{
		AnalyzeEvery:       10,
		WindowSize:         200,
		MaxLength:          3,
		MinUsage:           3,
		Reinforcement:      0.1,
		DecayIdleThreshold: 10,
		DecayRate:          0.05,
		MaxRelatedTerms:    5,
		GreetingSets: [][]string{
			{"hello", "hi", "hey", "greetings", "good morning", "good evening"},
			{"hola", "buenas"},
			{"bonjour", "salut"},
		},
	}
}

// Crystallizer scans a Transcript on a tick schedule, counting recurring
// phrases and promoting/reinforcing Lexicon entries.
type Crystallizer struct {
	cfg          Config
	ticksSinceRun int
}

// NewCrystallizer returns a Crystallizer governed by cfg.
func NewCrystallizer(cfg Config) *Crystallizer {
	return &Crystallizer{cfg: cfg}
}

// Tick advances the crystallizer's schedule by one tick and runs an
// analysis pass if AnalyzeEvery ticks have elapsed.
func (c *Crystallizer) Tick(lex *Lexicon, t *Transcript, now float64) (formed []string) {
	c.ticksSinceRun++
	if c.ticksSinceRun < c.cfg.AnalyzeEvery {
		return nil
	}
	c.ticksSinceRun = 0
	return c.Analyze(lex, t, now)
}

// Analyze runs one crystallization pass immediately, independent of the
// tick schedule. Returns the terms that were newly inserted (not merely
// reinforced).
func (c *Crystallizer) Analyze(lex *Lexicon, t *Transcript, now float64) (formed []string) {
	window := t.Recent(c.cfg.WindowSize)
	counts := countPhrases(window, c.cfg.MaxLength)
	contributors := contributorsByPhrase(window, c.cfg.MaxLength)

	for phrase, n := range counts {
		if n < c.cfg.MinUsage {
			continue
		}
		term := normalize(phrase)
		if e := lex.Get(term); e != nil {
			e.UsageCount += n
			e.Weight = minF(e.Weight+c.cfg.Reinforcement, 1)
			e.LastUsed = now
			e.EmotionContext = runningMeanValence(contributors[phrase])
			continue
		}
		entry := &Entry{
			Term:       term,
			Origin:     "crystallized",
			Category:   inferCategory(term, contributors[phrase], c.cfg.GreetingSets),
			UsageCount: n,
			FirstSeen:  now,
			LastUsed:   now,
			Weight:     0.5,
			DecayRate:  c.cfg.DecayRate,
		}
		entry.EmotionContext = runningMeanValence(contributors[phrase])
		lex.entries[term] = entry
		lex.updateRelatedTerms(term, c.cfg.MaxRelatedTerms)
		formed = append(formed, term)
	}

	lex.Decay(now, c.cfg.DecayIdleThreshold)
	return formed
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// countPhrases counts exact occurrences of every 1..maxLength token
// n-gram across the given utterances' normalized text.
func countPhrases(utterances []Utterance, maxLength int) map[string]int {
	counts := make(map[string]int)
	for _, u := range utterances {
		tokens := tokenize(u.Text)
		for n := 1; n <= maxLength && n <= len(tokens); n++ {
			for i := 0; i+n <= len(tokens); i++ {
				phrase := strings.Join(tokens[i:i+n], " ")
				counts[phrase]++
			}
		}
	}
	return counts
}

// contributorsByPhrase maps each phrase to the utterances it appeared in,
// used to compute EmotionContext and category inference.
func contributorsByPhrase(utterances []Utterance, maxLength int) map[string][]Utterance {
	out := make(map[string][]Utterance)
	for _, u := range utterances {
		tokens := tokenize(u.Text)
		for n := 1; n <= maxLength && n <= len(tokens); n++ {
			for i := 0; i+n <= len(tokens); i++ {
				phrase := strings.Join(tokens[i:i+n], " ")
				out[phrase] = append(out[phrase], u)
			}
		}
	}
	return out
}

func tokenize(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

// inferCategory is language-agnostic beyond the greeting-set check (a term
// equal to a greeting, or starting with one followed by a space) and the
// fixed English interrogative prefixes in isQuestion: everything else is
// character-class and punctuation only, never a natural-language library.
func inferCategory(term string, utterances []Utterance, greetingSets [][]string) string {
	for _, set := range greetingSets {
		for _, g := range set {
			if term == g || strings.HasPrefix(term, g+" ") {
				return "greeting"
			}
		}
	}
	if isQuestion(term) {
		return "question"
	}
	if isHighArousalExpression(utterances) {
		return "expression"
	}
	return "statement"
}

func isQuestion(term string) bool {
	if strings.HasSuffix(term, "?") {
		return true
	}
	interrogatives := []string{"who ", "what ", "when ", "where ", "why ", "how ", "do you", "is it", "are you"}
	for _, w := range interrogatives {
		if strings.HasPrefix(term, w) {
			return true
		}
	}
	return false
}

func isHighArousalExpression(utterances []Utterance) bool {
	var arousals []float64
	for _, u := range utterances {
		if u.Emotion != nil {
			arousals = append(arousals, u.Emotion.Arousal)
		}
	}
	if len(arousals) == 0 {
		return false
	}
	sum := 0.0
	for _, a := range arousals {
		sum += a
	}
	return sum/float64(len(arousals)) > 0.7
}
