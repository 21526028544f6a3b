package models

import (
	"errors"
	"strings"
	"testing"

	"github.com/dmitrijs2005/rmcatalog/internal/common"
	"github.com/stretchr/testify/require"
)

func validForm() CharacterForm {
	return CharacterForm{Name: "Rick Sanchez", Status: StatusAlive, Species: "Human", Gender: GenderMale}
}

func TestCharacterForm_Validate_OK(t *testing.T) {
	require.NoError(t, validForm().Validate())

	f := validForm()
	f.Type = strings.Repeat("x", TypeMaxLen)
	require.NoError(t, f.Validate())
}

func TestCharacterForm_Validate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CharacterForm)
		field  string
	}{
		{"missing name", func(f *CharacterForm) { f.Name = "" }, "name"},
		{"short name", func(f *CharacterForm) { f.Name = "R" }, "name"},
		{"long name", func(f *CharacterForm) { f.Name = strings.Repeat("r", NameMaxLen+1) }, "name"},
		{"missing species", func(f *CharacterForm) { f.Species = "" }, "species"},
		{"long species", func(f *CharacterForm) { f.Species = strings.Repeat("s", SpeciesMaxLen+1) }, "species"},
		{"long type", func(f *CharacterForm) { f.Type = strings.Repeat("t", TypeMaxLen+1) }, "type"},
		{"bad status", func(f *CharacterForm) { f.Status = "Zombie" }, "status"},
		{"bad gender", func(f *CharacterForm) { f.Gender = "" }, "gender"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validForm()
			tt.mutate(&f)

			err := f.Validate()
			require.Error(t, err)
			require.True(t, errors.Is(err, common.ErrValidation))

			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			require.Len(t, ve.Fields, 1)
			require.Equal(t, tt.field, ve.Fields[0].Field)
		})
	}
}

func TestCharacterForm_Validate_CountsRunes(t *testing.T) {
	f := validForm()
	f.Name = strings.Repeat("é", NameMaxLen)
	require.NoError(t, f.Validate())
}

func TestCharacterForm_Normalize(t *testing.T) {
	f := CharacterForm{Name: "  Morty ", Species: " Human", Type: " "}.Normalize()
	require.Equal(t, "Morty", f.Name)
	require.Equal(t, "Human", f.Species)
	require.Empty(t, f.Type)
}

func TestParseStatusAndGender(t *testing.T) {
	s, ok := ParseStatus("alive")
	require.True(t, ok)
	require.Equal(t, StatusAlive, s)

	s, ok = ParseStatus("UNKNOWN")
	require.True(t, ok)
	require.Equal(t, StatusUnknown, s)

	_, ok = ParseStatus("zombie")
	require.False(t, ok)

	g, ok := ParseGender("genderless")
	require.True(t, ok)
	require.Equal(t, GenderGenderless, g)

	_, ok = ParseGender("")
	require.False(t, ok)
}

func TestFormFrom(t *testing.T) {
	c := Character{ID: 10001, Name: "Birdperson", Status: StatusDead, Species: "Bird-Person", Gender: GenderMale, Type: "Cyborg"}
	require.Equal(t, CharacterForm{Name: "Birdperson", Status: StatusDead, Species: "Bird-Person", Gender: GenderMale, Type: "Cyborg"}, FormFrom(c))
}
