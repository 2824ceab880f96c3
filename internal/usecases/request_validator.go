package usecases

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"mindcare/internal/entities"

	"github.com/tidwall/gjson"
	"golang.org/x/net/html"
)

// MaxMessageLength is the longest accepted chat message, in characters.
const MaxMessageLength = 2000

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrMalformedBody   = errors.New("malformed body")
	ErrInvalidMessage  = errors.New("invalid message")
)

// ValidationError rejects a chat request before any crisis scan or vendor call.
// Kind is one of ErrUnauthenticated, ErrMalformedBody or ErrInvalidMessage.
type ValidationError struct {
	Kind   error
	Reason string // user-facing detail for ErrInvalidMessage
}

func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return e.Kind.Error() + ": " + e.Reason
	}
	return e.Kind.Error()
}

func (e *ValidationError) Unwrap() error { return e.Kind }

// UserMessage is the text returned to the client.
func (e *ValidationError) UserMessage() string {
	switch {
	case errors.Is(e.Kind, ErrUnauthenticated):
		return "Authentication required. Please sign in to access AI chat."
	case errors.Is(e.Kind, ErrMalformedBody):
		return "Invalid request body"
	case e.Reason != "":
		return e.Reason
	default:
		return "Invalid message"
	}
}

func invalid(kind error, reason string) *ValidationError {
	return &ValidationError{Kind: kind, Reason: reason}
}

var jsSchemePattern = regexp.MustCompile(`(?i)javascript\s*:`)

// RequestValidator turns an inbound chat request into a SanitizedMessage.
type RequestValidator struct {
	maxLength int
}

func NewRequestValidator() *RequestValidator {
	return &RequestValidator{maxLength: MaxMessageLength}
}

// Validate checks the caller first, then the body. It performs no I/O.
func (v *RequestValidator) Validate(auth entities.AuthContext, rawBody []byte) (entities.SanitizedMessage, error) {
	if !auth.Authenticated() {
		return entities.SanitizedMessage{}, invalid(ErrUnauthenticated, "")
	}

	if !gjson.ValidBytes(rawBody) {
		return entities.SanitizedMessage{}, invalid(ErrMalformedBody, "")
	}
	body := gjson.ParseBytes(rawBody)
	if !body.IsObject() {
		return entities.SanitizedMessage{}, invalid(ErrMalformedBody, "")
	}

	field := body.Get("message")
	switch {
	case !field.Exists() || field.Type == gjson.Null:
		return entities.SanitizedMessage{}, invalid(ErrInvalidMessage, "Message is required")
	case field.Type != gjson.String:
		return entities.SanitizedMessage{}, invalid(ErrInvalidMessage, "Message must be text")
	}

	message := strings.TrimSpace(field.String())
	if message == "" {
		return entities.SanitizedMessage{}, invalid(ErrInvalidMessage, "Message cannot be empty")
	}
	if utf8.RuneCountInString(message) > v.maxLength {
		return entities.SanitizedMessage{}, invalid(ErrInvalidMessage,
			fmt.Sprintf("Message is too long (maximum %d characters)", v.maxLength))
	}

	sanitized := SanitizeMessage(message)
	if sanitized == "" {
		return entities.SanitizedMessage{}, invalid(ErrInvalidMessage, "Message contains no readable text")
	}
	return entities.SanitizedMessage{Text: sanitized}, nil
}

// SanitizeMessage drops invalid UTF-8, control characters other than newline
// and tab, markup and javascript: schemes, then trims. It is idempotent.
// Angle brackets that do not open a tag, as in "<3" or "5 < 7", are kept.
func SanitizeMessage(s string) string {
	s = strings.ToValidUTF8(s, "")
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	// Each pass only removes bytes, so this stops.
	for {
		next := stripMarkup(s)
		next = jsSchemePattern.ReplaceAllString(next, "")
		next = strings.TrimSpace(next)
		if next == s {
			return s
		}
		s = next
	}
}

// stripMarkup keeps the raw text of s and drops tags, comments, doctypes and
// the bodies of script and style elements. Entities are left escaped.
func stripMarkup(s string) string {
	var out bytes.Buffer
	z := html.NewTokenizer(strings.NewReader(s))
	skip := false
	for {
		switch z.Next() {
		case html.ErrorToken:
			// A tag cut off by the end of input is kept as text.
			if z.Err() == io.EOF {
				out.Write(z.Raw())
			}
			return out.String()
		case html.TextToken:
			if !skip {
				out.Write(z.Raw())
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			skip = string(name) == "script" || string(name) == "style"
		case html.EndTagToken:
			skip = false
		}
	}
}
