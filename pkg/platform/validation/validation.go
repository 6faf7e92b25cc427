// Package validation is the form-schema helper shared by the registration,
// login, donation and campaign forms. Each check records at most one message
// per field; Err returns a validation_error carrying every field message.
package validation

import (
	"strconv"
	"strings"
	"unicode/utf8"

	dErrors "civicfund/pkg/domain-errors"
	"civicfund/pkg/email"
)

// Form field limits.
const (
	MinNameLength     = 2
	MaxNameLength     = 100
	MinPasswordLength = 8
	MaxPasswordLength = 72 // bcrypt input limit
	MaxMessageLength  = 500
	MaxDocuments      = 5
	MaxDocumentBytes  = 10 << 20
	MaxPhoneLength    = 32
)

// Errors collects field messages in the order they were first recorded.
type Errors struct {
	fields map[string]string
}

func New() *Errors {
	return &Errors{fields: make(map[string]string)}
}

// Add records msg for field unless the field already has a message.
func (e *Errors) Add(field, msg string) {
	if _, exists := e.fields[field]; exists {
		return
	}
	e.fields[field] = msg
}

// Check records msg for field when ok is false.
func (e *Errors) Check(ok bool, field, msg string) {
	if !ok {
		e.Add(field, msg)
	}
}

// Required rejects empty or whitespace-only values.
func (e *Errors) Required(field, value string) bool {
	if strings.TrimSpace(value) == "" {
		e.Add(field, "is required")
		return false
	}
	return true
}

// Length enforces a rune-length range on a required value.
func (e *Errors) Length(field, value string, min, max int) {
	if !e.Required(field, value) {
		return
	}
	n := utf8.RuneCountInString(strings.TrimSpace(value))
	if n < min {
		e.Add(field, "must be at least "+strconv.Itoa(min)+" characters")
		return
	}
	if max > 0 && n > max {
		e.Add(field, "must be at most "+strconv.Itoa(max)+" characters")
	}
}

// MaxLength enforces an upper bound on an optional value.
func (e *Errors) MaxLength(field, value string, max int) {
	if utf8.RuneCountInString(value) > max {
		e.Add(field, "must be at most "+strconv.Itoa(max)+" characters")
	}
}

// Email checks a required e-mail address.
func (e *Errors) Email(field, value string) {
	if !e.Required(field, value) {
		return
	}
	if !email.IsValid(value) {
		e.Add(field, "must be a valid email address")
	}
}

// Password enforces the minimum length and the bcrypt byte limit.
func (e *Errors) Password(field, value string) {
	if value == "" {
		e.Add(field, "is required")
		return
	}
	if utf8.RuneCountInString(value) < MinPasswordLength {
		e.Add(field, "must be at least "+strconv.Itoa(MinPasswordLength)+" characters")
		return
	}
	if len(value) > MaxPasswordLength {
		e.Add(field, "must be at most "+strconv.Itoa(MaxPasswordLength)+" bytes")
	}
}

// OneOf checks that value is one of allowed.
func (e *Errors) OneOf(field, value string, allowed ...string) {
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	e.Add(field, "must be one of: "+strings.Join(allowed, ", "))
}

// Valid reports whether no field messages were recorded.
func (e *Errors) Valid() bool {
	return len(e.fields) == 0
}

// Fields returns a copy of the recorded field messages.
func (e *Errors) Fields() map[string]string {
	out := make(map[string]string, len(e.fields))
	for k, v := range e.fields {
		out[k] = v
	}
	return out
}

// Err returns nil when valid, otherwise a validation_error with field messages.
func (e *Errors) Err(message string) error {
	if e.Valid() {
		return nil
	}
	return dErrors.WithFields(message, e.Fields())
}
