package usecases

import (
	"errors"
	"regexp"
	"strings"
	"testing"

	"mindcare/internal/entities"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var signedIn = entities.AuthContext{UserID: "user_123"}

func TestRequestValidator_Accepts(t *testing.T) {
	v := NewRequestValidator()

	msg, err := v.Validate(signedIn, []byte(`{"message":"  I feel stressed about exams  "}`))
	require.NoError(t, err)
	assert.Equal(t, "I feel stressed about exams", msg.Text)
}

func TestRequestValidator_Rejects(t *testing.T) {
	v := NewRequestValidator()
	tests := []struct {
		name    string
		auth    entities.AuthContext
		body    string
		kind    error
		message string
	}{
		{"no user", entities.AuthContext{}, `{"message":"hi"}`, ErrUnauthenticated, "Authentication required. Please sign in to access AI chat."},
		{"no user and bad body", entities.AuthContext{}, `not json`, ErrUnauthenticated, "Authentication required. Please sign in to access AI chat."},
		{"not json", signedIn, `{"message":`, ErrMalformedBody, "Invalid request body"},
		{"array body", signedIn, `["hi"]`, ErrMalformedBody, "Invalid request body"},
		{"empty body", signedIn, ``, ErrMalformedBody, "Invalid request body"},
		{"missing message", signedIn, `{}`, ErrInvalidMessage, "Message is required"},
		{"null message", signedIn, `{"message":null}`, ErrInvalidMessage, "Message is required"},
		{"number message", signedIn, `{"message":42}`, ErrInvalidMessage, "Message must be text"},
		{"blank message", signedIn, `{"message":"   "}`, ErrInvalidMessage, "Message cannot be empty"},
		{"too long", signedIn, `{"message":"` + strings.Repeat("a", MaxMessageLength+1) + `"}`, ErrInvalidMessage, "Message is too long (maximum 2000 characters)"},
		{"only markup", signedIn, `{"message":"<b></b>"}`, ErrInvalidMessage, "Message contains no readable text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Validate(tt.auth, []byte(tt.body))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.message, verr.UserMessage())
		})
	}
}

func TestRequestValidator_LengthCountsCharacters(t *testing.T) {
	v := NewRequestValidator()
	body := `{"message":"` + strings.Repeat("é", MaxMessageLength) + `"}`

	msg, err := v.Validate(signedIn, []byte(body))
	require.NoError(t, err)
	assert.Equal(t, MaxMessageLength, len([]rune(msg.Text)))
}

func TestSanitizeMessage(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"hello <b>world</b>", "hello world"},
		{"<script>alert(1)</script>I'm sad", "I'm sad"},
		{"click javascript:alert(1)", "click alert(1)"},
		{"javajavascript:script:x", "x"},
		{"line one\nline two\ttab", "line one\nline two\ttab"},
		{"bell\x07 and nul\x00", "bell and nul"},
		{"I scored 5 < 7 today", "I scored 5 < 7 today"},
		{"my grades are <50% and I want to die >_<", "my grades are <50% and I want to die >_<"},
		{"<3", "<3"},
		{">_<", ">_<"},
		{"I <3 you > all", "I <3 you > all"},
		{"fish &amp; chips", "fish &amp; chips"},
		{"<!-- note -->hi<br/>there", "hithere"},
		{"<style>p{}</style><SCRIPT>x</SCRIPT>ok", "ok"},
		{"I feel <hopeless", "I feel <hopeless"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeMessage(tt.in), "input %q", tt.in)
	}
}

func TestSanitizeMessage_Idempotent(t *testing.T) {
	properties := gopter.NewProperties(nil)
	properties.Property("sanitizing twice equals sanitizing once", prop.ForAll(
		func(s string) bool {
			once := SanitizeMessage(s)
			return SanitizeMessage(once) == once
		},
		gen.AnyString(),
	))
	tagPattern := regexp.MustCompile(`</?[A-Za-z][^>]*>`)
	properties.Property("sanitized text contains no tags", prop.ForAll(
		func(a, b string) bool {
			return !tagPattern.MatchString(SanitizeMessage("<" + a + ">" + b))
		},
		gen.AlphaString(),
		gen.AlphaString(),
	))
	properties.TestingRun(t)
}
