package api

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const maxCityLength = 100

var (
	cityPattern = regexp.MustCompile(`^[\p{L}][\p{L} .'\-]*(,\s*[\p{L}][\p{L} .'\-]*)?$`)

	errCityRequired = errors.New("city is required")
	errCityInvalid  = errors.New("city must be at least 2 characters of letters, spaces, hyphens, apostrophes or periods, optionally followed by \", Country\"")
)

// cityFromSlug turns a URL slug such as "new-york" into "new york".
func cityFromSlug(slug string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(slug, "-", " ")), " ")
}

func validateCity(city string) error {
	city = strings.TrimSpace(city)
	if city == "" {
		return errCityRequired
	}
	n := utf8.RuneCountInString(city)
	if n < 2 || n > maxCityLength || !cityPattern.MatchString(city) {
		return errCityInvalid
	}
	return nil
}

// displayName title-cases a city typed by a visitor.
func displayName(city string) string {
	return cases.Title(language.English).String(city)
}
