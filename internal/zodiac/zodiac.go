// Package zodiac classifies calendar dates into the twelve Western tropical signs.
package zodiac

import (
	"errors"
	"strings"
	"time"
)

// Sign is one of the twelve zodiac labels.
type Sign string

const (
	Aries       Sign = "Aries"
	Taurus      Sign = "Taurus"
	Gemini      Sign = "Gemini"
	Cancer      Sign = "Cancer"
	Leo         Sign = "Leo"
	Virgo       Sign = "Virgo"
	Libra       Sign = "Libra"
	Scorpio     Sign = "Scorpio"
	Sagittarius Sign = "Sagittarius"
	Capricorn   Sign = "Capricorn"
	Aquarius    Sign = "Aquarius"
	Pisces      Sign = "Pisces"
)

// ErrInvalidDate is returned when a date string cannot be parsed.
var ErrInvalidDate = errors.New("invalid date")

// DateLayout is the canonical birthday format.
const DateLayout = "2006-01-02"

// boundary marks the first day of a sign. The table is ordered by the
// position of that day within the year.
type boundary struct {
	month time.Month
	day   int
	sign  Sign
}

var boundaries = []boundary{
	{time.January, 20, Aquarius},
	{time.February, 19, Pisces},
	{time.March, 21, Aries},
	{time.April, 20, Taurus},
	{time.May, 21, Gemini},
	{time.June, 21, Cancer},
	{time.July, 23, Leo},
	{time.August, 23, Virgo},
	{time.September, 23, Libra},
	{time.October, 23, Scorpio},
	{time.November, 22, Sagittarius},
	{time.December, 22, Capricorn},
}

var turkish = map[Sign]string{
	Aries:       "Koç",
	Taurus:      "Boğa",
	Gemini:      "İkizler",
	Cancer:      "Yengeç",
	Leo:         "Aslan",
	Virgo:       "Başak",
	Libra:       "Terazi",
	Scorpio:     "Akrep",
	Sagittarius: "Yay",
	Capricorn:   "Oğlak",
	Aquarius:    "Kova",
	Pisces:      "Balık",
}

// All returns the twelve signs starting at Aries.
func All() []Sign {
	return []Sign{Aries, Taurus, Gemini, Cancer, Leo, Virgo, Libra, Scorpio, Sagittarius, Capricorn, Aquarius, Pisces}
}

// Classify returns the sign for the month and day of t. The year and the
// time of day are ignored.
func Classify(t time.Time) Sign {
	month, day := t.Month(), t.Day()
	// Days before Jan 20 belong to the sign that started on Dec 22.
	sign := Capricorn
	for _, b := range boundaries {
		if month > b.month || (month == b.month && day >= b.day) {
			sign = b.sign
		}
	}
	return sign
}

// Parse reads a date in YYYY-MM-DD form, or an RFC3339 timestamp whose
// date part is used.
func Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, ErrInvalidDate
}

// ClassifyString parses s and classifies the result.
func ClassifyString(s string) (Sign, error) {
	t, err := Parse(s)
	if err != nil {
		return "", err
	}
	return Classify(t), nil
}

// Label returns the display name of the sign for the given language.
// Only "tr" is translated; everything else gets the English name.
func (s Sign) Label(lang string) string {
	if strings.EqualFold(lang, "tr") {
		if name, ok := turkish[s]; ok {
			return name
		}
	}
	return string(s)
}

// Valid reports whether s is one of the twelve signs.
func (s Sign) Valid() bool {
	_, ok := turkish[s]
	return ok
}
