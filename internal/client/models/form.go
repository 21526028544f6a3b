package models

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/rmcatalog/internal/common"
)

const (
	NameMinLen    = 2
	NameMaxLen    = 50
	SpeciesMinLen = 2
	SpeciesMaxLen = 30
	TypeMaxLen    = 50
)

// CharacterForm is the editable subset of a Character used for create/edit.
type CharacterForm struct {
	Name    string `json:"name"`
	Status  Status `json:"status"`
	Species string `json:"species"`
	Gender  Gender `json:"gender"`
	Type    string `json:"type,omitempty"`
}

// FieldError describes one invalid form field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every field problem of a form.
// It matches common.ErrValidation via errors.Is.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation error: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == common.ErrValidation
}

// Normalize trims surrounding whitespace from text fields.
func (f CharacterForm) Normalize() CharacterForm {
	f.Name = strings.TrimSpace(f.Name)
	f.Species = strings.TrimSpace(f.Species)
	f.Type = strings.TrimSpace(f.Type)
	return f
}

// Validate checks required fields, length limits and enum membership.
// It returns nil or a *ValidationError.
func (f CharacterForm) Validate() error {
	var errs []FieldError

	checkLen := func(field, value string, required bool, min, max int) {
		n := utf8.RuneCountInString(value)
		switch {
		case required && n == 0:
			errs = append(errs, FieldError{Field: field, Message: "is required"})
		case n > 0 && n < min:
			errs = append(errs, FieldError{Field: field, Message: fmt.Sprintf("must be at least %d characters", min)})
		case n > max:
			errs = append(errs, FieldError{Field: field, Message: fmt.Sprintf("must be at most %d characters", max)})
		}
	}

	checkLen("name", f.Name, true, NameMinLen, NameMaxLen)
	checkLen("species", f.Species, true, SpeciesMinLen, SpeciesMaxLen)
	checkLen("type", f.Type, false, 0, TypeMaxLen)

	if !f.Status.Valid() {
		errs = append(errs, FieldError{Field: "status", Message: fmt.Sprintf("must be one of %v", Statuses)})
	}
	if !f.Gender.Valid() {
		errs = append(errs, FieldError{Field: "gender", Message: fmt.Sprintf("must be one of %v", Genders)})
	}

	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

// FormFrom returns the editable fields of c, used to prefill edit forms.
func FormFrom(c Character) CharacterForm {
	return CharacterForm{Name: c.Name, Status: c.Status, Species: c.Species, Gender: c.Gender, Type: c.Type}
}
