package services

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf16"
)

// PlaceholderImage returns an avatar URL for a character without artwork.
// The background colour is derived from the name, the text colour is black
// or white depending on the background brightness.
func PlaceholderImage(name string) string {
	bg := colorFromName(name)
	fg := contrastColor(bg)

	return "https://ui-avatars.com/api/?name=" + encodeComponent(name) +
		"&size=300&background=" + bg + "&color=" + fg + "&bold=true&format=png"
}

// colorFromName hashes the UTF-16 code units of name (h = c + h*31, 32-bit
// wrap-around) and keeps the low 24 bits as an upper-case hex colour.
func colorFromName(name string) string {
	var hash int32
	for _, c := range utf16.Encode([]rune(name)) {
		hash = int32(c) + ((hash << 5) - hash)
	}
	return fmt.Sprintf("%06X", hash&0x00ffffff)
}

func contrastColor(hex string) string {
	channel := func(i int) int64 {
		v, _ := strconv.ParseInt(hex[i:i+2], 16, 64)
		return v
	}
	r, g, b := channel(0), channel(2), channel(4)

	brightness := float64(r*299+g*587+b*114) / 1000
	if brightness > 128 {
		return "000000"
	}
	return "FFFFFF"
}

func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
