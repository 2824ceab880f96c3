package usecases

import "strings"

// DefaultCrisisLexicon lists phrases that flag possible self-harm or suicidal intent.
// Matching favours false positives: no stemming, no negation handling.
var DefaultCrisisLexicon = []string{
	"suicide", "kill myself", "end it all", "want to die", "better off dead",
	"self-harm", "hurt myself", "cut myself", "harm myself",
	"give up", "no reason to live", "hopeless", "worthless",
	"overdose", "pills", "jump", "bridge",
}

// CrisisDetector scans user input for crisis language.
type CrisisDetector struct {
	lexicon []string
}

// NewCrisisDetector builds a detector over lexicon, or DefaultCrisisLexicon when none is given.
func NewCrisisDetector(lexicon ...string) *CrisisDetector {
	if len(lexicon) == 0 {
		lexicon = DefaultCrisisLexicon
	}
	lowered := make([]string, 0, len(lexicon))
	for _, phrase := range lexicon {
		if phrase = strings.ToLower(strings.TrimSpace(phrase)); phrase != "" {
			lowered = append(lowered, phrase)
		}
	}
	return &CrisisDetector{lexicon: lowered}
}

// Detect reports whether any lexicon phrase appears in text, ignoring case.
func (d *CrisisDetector) Detect(text string) bool {
	if text == "" {
		return false
	}
	lowered := strings.ToLower(text)
	for _, phrase := range d.lexicon {
		if strings.Contains(lowered, phrase) {
			return true
		}
	}
	return false
}
