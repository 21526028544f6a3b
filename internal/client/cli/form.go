package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/rmcatalog/internal/client/models"
)

// clearValue clears an optional field in a patch or prompt answer, where an
// empty value means "keep the current one".
const clearValue = "-"

func hasMissingFields(f models.CharacterForm) bool {
	return f.Name == "" || f.Status == "" || f.Species == "" || f.Gender == ""
}

// mergeForm overwrites base with the non-empty fields of patch.
func mergeForm(base, patch models.CharacterForm) models.CharacterForm {
	if patch.Name != "" {
		base.Name = patch.Name
	}
	if patch.Status != "" {
		base.Status = patch.Status
	}
	if patch.Species != "" {
		base.Species = patch.Species
	}
	if patch.Gender != "" {
		base.Gender = patch.Gender
	}
	if patch.Type != "" {
		base.Type = patch.Type
	}
	return clearOptional(base)
}

func clearOptional(f models.CharacterForm) models.CharacterForm {
	if strings.TrimSpace(f.Type) == clearValue {
		f.Type = ""
	}
	return f
}

func joinOptions[T ~string](vals []T) string {
	s := make([]string, len(vals))
	for i, v := range vals {
		s[i] = string(v)
	}
	return strings.Join(s, "/")
}

// promptForm asks for every field, offering the values already in f as
// defaults.
func promptForm(r *bufio.Reader, w io.Writer, f models.CharacterForm) (models.CharacterForm, error) {
	var err error

	if f.Name, err = GetTextWithDefault(r, "Name", f.Name, w); err != nil {
		return f, fmt.Errorf("get name: %w", err)
	}

	status, err := GetTextWithDefault(r, "Status ("+joinOptions(models.Statuses)+")", string(f.Status), w)
	if err != nil {
		return f, fmt.Errorf("get status: %w", err)
	}
	f.Status = ParseFormFlags("", status, "", "", "").Status

	if f.Species, err = GetTextWithDefault(r, "Species", f.Species, w); err != nil {
		return f, fmt.Errorf("get species: %w", err)
	}

	gender, err := GetTextWithDefault(r, "Gender ("+joinOptions(models.Genders)+")", string(f.Gender), w)
	if err != nil {
		return f, fmt.Errorf("get gender: %w", err)
	}
	f.Gender = ParseFormFlags("", "", "", gender, "").Gender

	if f.Type, err = GetTextWithDefault(r, "Type (optional, "+clearValue+" to clear)", f.Type, w); err != nil {
		return f, fmt.Errorf("get type: %w", err)
	}
	return clearOptional(f), nil
}
