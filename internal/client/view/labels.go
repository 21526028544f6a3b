// Package view renders characters for the terminal: localized labels,
// status colours, one-line cards, the detail view and list tables.
package view

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dmitrijs2005/rmcatalog/internal/client/models"
)

// Locale selects the label language.
type Locale string

const (
	LocaleEN Locale = "en"
	LocalePT Locale = "pt"
)

// ParseLocale returns the locale for s, or LocaleEN for anything unknown.
func ParseLocale(s string) Locale {
	if strings.EqualFold(strings.TrimSpace(s), string(LocalePT)) {
		return LocalePT
	}
	return LocaleEN
}

var (
	statusLabels = map[Locale]map[models.Status]string{
		LocaleEN: {
			models.StatusAlive:   "Alive",
			models.StatusDead:    "Dead",
			models.StatusUnknown: "Unknown",
		},
		LocalePT: {
			models.StatusAlive:   "Vivo",
			models.StatusDead:    "Morto",
			models.StatusUnknown: "Desconhecido",
		},
	}

	genderLabels = map[Locale]map[models.Gender]string{
		LocaleEN: {
			models.GenderFemale:     "Female",
			models.GenderMale:       "Male",
			models.GenderGenderless: "Genderless",
			models.GenderUnknown:    "Unknown",
		},
		LocalePT: {
			models.GenderFemale:     "Feminino",
			models.GenderMale:       "Masculino",
			models.GenderGenderless: "Sem gênero",
			models.GenderUnknown:    "Desconhecido",
		},
	}

	speciesLabels = map[Locale]map[string]string{
		LocaleEN: {
			"Human":                 "Human",
			"Humanoid":              "Humanoid",
			"Alien":                 "Alien",
			"Robot":                 "Robot",
			"Cronenberg":            "Cronenberg",
			"Animal":                "Animal",
			"Disease":               "Disease",
			"Poopybutthole":         "Poopybutthole",
			"Mythological Creature": "Mythological Creature",
			"unknown":               "Unknown",
		},
		LocalePT: {
			"Human":                 "Humano",
			"Humanoid":              "Humanoide",
			"Alien":                 "Alienígena",
			"Robot":                 "Robô",
			"Cronenberg":            "Cronenberg",
			"Animal":                "Animal",
			"Disease":               "Doença",
			"Poopybutthole":         "Poopybutthole",
			"Mythological Creature": "Criatura Mitológica",
			"unknown":               "Desconhecido",
		},
	}
)

func unknownLabel(loc Locale) string {
	return statusLabels[loc][models.StatusUnknown]
}

func StatusLabel(loc Locale, s models.Status) string {
	if l, ok := statusLabels[loc][s]; ok {
		return l
	}
	return string(s)
}

// GenderLabel falls back to the raw value for genders it does not know, and
// to the locale's "unknown" for an empty one.
func GenderLabel(loc Locale, g models.Gender) string {
	if g == "" {
		return unknownLabel(loc)
	}
	if l, ok := genderLabels[loc][g]; ok {
		return l
	}
	return string(g)
}

// SpeciesLabel translates the known species and capitalizes the rest
// ("cat person" becomes "Cat person").
func SpeciesLabel(loc Locale, species string) string {
	if species == "" {
		return unknownLabel(loc)
	}
	if l, ok := speciesLabels[loc][species]; ok {
		return l
	}
	return capitalize(species)
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
