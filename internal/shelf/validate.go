package shelf

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/plantshelf/internal/timex"
)

const (
	NameMaxLen     = 40
	NicknameMaxLen = 30
	NotesMaxLen    = 1000

	// MaxFutureDays bounds how far ahead a watering may be scheduled.
	MaxFutureDays = 365 * 3
)

// FieldError is one rejected field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every rejected field of an input.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, msg string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: msg})
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// ValidateDraft checks a new plant against the input rules. today is the
// caller's local calendar date.
func ValidateDraft(d Draft, today timex.Date) error {
	v := &ValidationError{}
	checkName(v, d.Name)
	checkLen(v, "nickname", d.Nickname, NicknameMaxLen)
	checkLen(v, "notes", d.Notes, NotesMaxLen)
	if !d.NextWaterAt.IsZero() {
		checkDate(v, d.NextWaterAt, today)
	}
	return v.orNil()
}

// ValidatePatch checks only the fields a patch provides.
func ValidatePatch(p Patch, today timex.Date) error {
	v := &ValidationError{}
	if p.Name != nil {
		checkName(v, *p.Name)
	}
	if p.Nickname != nil {
		checkLen(v, "nickname", *p.Nickname, NicknameMaxLen)
	}
	if p.Notes != nil {
		checkLen(v, "notes", *p.Notes, NotesMaxLen)
	}
	if p.NextWaterAt != nil && !p.ClearNextWaterAt && !p.NextWaterAt.IsZero() {
		checkDate(v, *p.NextWaterAt, today)
	}
	return v.orNil()
}

func checkName(v *ValidationError, name string) {
	n := strings.TrimSpace(name)
	switch {
	case n == "":
		v.add("name", "Name is required.")
	case utf8.RuneCountInString(n) > NameMaxLen:
		v.add("name", fmt.Sprintf("Max %d characters.", NameMaxLen))
	}
}

func checkLen(v *ValidationError, field, s string, max int) {
	if utf8.RuneCountInString(s) > max {
		v.add(field, fmt.Sprintf("Max %d characters.", max))
	}
}

func checkDate(v *ValidationError, d, today timex.Date) {
	switch {
	case d.Before(today):
		v.add("nextWaterAt", "Date cannot be in the past.")
	case d.After(today.AddDays(MaxFutureDays)):
		v.add("nextWaterAt", "Date cannot be more than 3 years in the future.")
	}
}
