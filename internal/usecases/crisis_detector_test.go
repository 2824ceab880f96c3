package usecases

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestCrisisDetector_Detect(t *testing.T) {
	d := NewCrisisDetector()
	tests := []struct {
		text string
		want bool
	}{
		{"I want to end it all", true},
		{"I WANT TO END IT ALL", true},
		{"Sometimes I think about Suicide", true},
		{"i feel hopeless lately", true},
		{"I might just give up on this class", true},
		{"we walked over the bridge", true},
		{"exams are stressful but I'm coping", false},
		{"", false},
		{"I had a great day", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, d.Detect(tt.text))
		})
	}
}

func TestCrisisDetector_CustomLexicon(t *testing.T) {
	d := NewCrisisDetector("  Panic Attack ", "")
	assert.True(t, d.Detect("having a panic attack"))
	assert.False(t, d.Detect("I want to end it all"))
}

func TestCrisisDetector_Properties(t *testing.T) {
	d := NewCrisisDetector()

	properties := gopter.NewProperties(nil)
	properties.Property("detection is idempotent", prop.ForAll(
		func(s string) bool {
			return d.Detect(s) == d.Detect(s)
		},
		gen.AnyString(),
	))
	properties.Property("any lexicon phrase embedded in text is detected regardless of case", prop.ForAll(
		func(prefix, suffix string, idx int, upper bool) bool {
			phrase := DefaultCrisisLexicon[idx]
			if upper {
				phrase = strings.ToUpper(phrase)
			}
			return d.Detect(prefix + " " + phrase + " " + suffix)
		},
		gen.AlphaString(),
		gen.AlphaString(),
		gen.IntRange(0, len(DefaultCrisisLexicon)-1),
		gen.Bool(),
	))
	properties.TestingRun(t)
}
