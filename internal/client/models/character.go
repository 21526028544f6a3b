// Package models defines the character catalog types shared by the remote
// client, local storage, the store and the presentation layer.
package models

import "strings"

// Status is the life status of a character as reported by the API.
type Status string

const (
	StatusAlive   Status = "Alive"
	StatusDead    Status = "Dead"
	StatusUnknown Status = "unknown"
)

// Statuses lists every valid Status in display order.
var Statuses = []Status{StatusAlive, StatusDead, StatusUnknown}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// Gender is the gender of a character as reported by the API.
type Gender string

const (
	GenderFemale     Gender = "Female"
	GenderMale       Gender = "Male"
	GenderGenderless Gender = "Genderless"
	GenderUnknown    Gender = "unknown"
)

// Genders lists every valid Gender in display order.
var Genders = []Gender{GenderFemale, GenderMale, GenderGenderless, GenderUnknown}

func (g Gender) Valid() bool {
	for _, v := range Genders {
		if g == v {
			return true
		}
	}
	return false
}

// ParseStatus matches s case-insensitively against the known statuses.
func ParseStatus(s string) (Status, bool) {
	for _, v := range Statuses {
		if strings.EqualFold(string(v), strings.TrimSpace(s)) {
			return v, true
		}
	}
	return "", false
}

// ParseGender matches s case-insensitively against the known genders.
func ParseGender(s string) (Gender, bool) {
	for _, v := range Genders {
		if strings.EqualFold(string(v), strings.TrimSpace(s)) {
			return v, true
		}
	}
	return "", false
}

// Location is an origin or current location reference.
type Location struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Character is a catalog record. Remote and local records share this shape
// and its JSON encoding, which mirrors the public API.
type Character struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	Status   Status   `json:"status"`
	Species  string   `json:"species"`
	Type     string   `json:"type"`
	Gender   Gender   `json:"gender"`
	Origin   Location `json:"origin"`
	Location Location `json:"location"`
	Image    string   `json:"image"`
	Episode  []string `json:"episode"`
	URL      string   `json:"url"`
	Created  string   `json:"created"`
}

// PageInfo is the pagination block of a list response.
type PageInfo struct {
	Count int     `json:"count"`
	Pages int     `json:"pages"`
	Next  *string `json:"next"`
	Prev  *string `json:"prev"`
}

// Page is one page of the remote character listing.
type Page struct {
	Info    PageInfo    `json:"info"`
	Results []Character `json:"results"`
}

// Filters narrows a remote listing. Zero values are omitted from the query.
type Filters struct {
	Name    string
	Status  Status
	Species string
	Gender  Gender
	Page    int
}

// Stats aggregates the characters currently held in memory.
type Stats struct {
	TotalLocal   int `json:"totalLocal"`
	TotalFromAPI int `json:"totalFromAPI"`
	TotalAll     int `json:"totalAll"`
	Alive        int `json:"aliveCount"`
	Dead         int `json:"deadCount"`
	Unknown      int `json:"unknownCount"`
}
