// Package calendar lays users out on a navigable month grid keyed by the
// month and day of their birthday.
package calendar

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"astromatch/internal/models"
)

// ErrInvalidMonth is returned for a month outside 1..12.
var ErrInvalidMonth = errors.New("invalid month")

// MonthKey is a displayed month. The year only drives navigation and cell
// dates; birthday matching ignores it.
type MonthKey struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// NewMonthKey validates month and builds a key.
func NewMonthKey(year, month int) (MonthKey, error) {
	if month < 1 || month > 12 {
		return MonthKey{}, fmt.Errorf("%w: %d", ErrInvalidMonth, month)
	}
	return MonthKey{Year: year, Month: time.Month(month)}, nil
}

// MonthOf returns the key of the month containing t.
func MonthOf(t time.Time) MonthKey {
	return MonthKey{Year: t.Year(), Month: t.Month()}
}

// Prev returns the previous month, wrapping January to December of the
// previous year.
func (k MonthKey) Prev() MonthKey {
	if k.Month == time.January {
		return MonthKey{Year: k.Year - 1, Month: time.December}
	}
	return MonthKey{Year: k.Year, Month: k.Month - 1}
}

// Next returns the following month, wrapping December to January of the
// next year.
func (k MonthKey) Next() MonthKey {
	if k.Month == time.December {
		return MonthKey{Year: k.Year + 1, Month: time.January}
	}
	return MonthKey{Year: k.Year, Month: k.Month + 1}
}

// Valid reports whether the month is within 1..12.
func (k MonthKey) Valid() bool {
	return k.Month >= time.January && k.Month <= time.December
}

// DaysIn returns the number of days in the month (proleptic Gregorian).
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// FirstWeekday returns the weekday of the first day of the month.
func FirstWeekday(year int, month time.Month) time.Weekday {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Weekday()
}

// MonthDay is the year-independent part of a birthday.
type MonthDay struct {
	Month time.Month
	Day   int
}

// Cell is one day of the grid.
type Cell struct {
	Date  string        `json:"date"` // YYYY-MM-DD in the displayed year
	Day   int           `json:"day"`
	Users []models.User `json:"users"`
}

// Grid is a rendered month. Weeks start on Monday; LeadingBlanks is the
// number of empty positions before day 1.
type Grid struct {
	Year          int        `json:"year"`
	Month         time.Month `json:"month"`
	Name          string     `json:"name"`
	Weekdays      []string   `json:"weekdays"`
	LeadingBlanks int        `json:"leading_blanks"`
	Cells         []Cell     `json:"cells"`
	Prev          MonthKey   `json:"prev"`
	Next          MonthKey   `json:"next"`
}

// Index buckets users by birthday month and day.
type Index struct {
	byDay map[MonthDay][]models.User
}

// NewIndex builds an index over users. Users whose birthday does not parse
// are left out. Within a bucket the input order is kept.
func NewIndex(users []models.User) *Index {
	idx := &Index{byDay: make(map[MonthDay][]models.User)}
	for _, u := range users {
		born, err := u.BirthDate()
		if err != nil {
			continue
		}
		key := MonthDay{Month: born.Month(), Day: born.Day()}
		idx.byDay[key] = append(idx.byDay[key], u.WithZodiac())
	}
	return idx
}

// On returns the users born on the month and day of t, in any year.
func (idx *Index) On(t time.Time) []models.User {
	found := idx.byDay[MonthDay{Month: t.Month(), Day: t.Day()}]
	out := make([]models.User, len(found))
	copy(out, found)
	return out
}

// Month renders the grid for key. lang selects month and weekday names.
func (idx *Index) Month(key MonthKey, lang string) Grid {
	days := DaysIn(key.Year, key.Month)
	grid := Grid{
		Year:          key.Year,
		Month:         key.Month,
		Name:          MonthName(key.Month, lang),
		Weekdays:      WeekdayNames(lang),
		LeadingBlanks: (int(FirstWeekday(key.Year, key.Month)) + 6) % 7,
		Cells:         make([]Cell, 0, days),
		Prev:          key.Prev(),
		Next:          key.Next(),
	}
	for day := 1; day <= days; day++ {
		t := time.Date(key.Year, key.Month, day, 0, 0, 0, 0, time.UTC)
		grid.Cells = append(grid.Cells, Cell{
			Date:  t.Format("2006-01-02"),
			Day:   day,
			Users: idx.On(t),
		})
	}
	return grid
}

var monthNames = map[string][12]string{
	"en": {"January", "February", "March", "April", "May", "June", "July", "August", "September", "October", "November", "December"},
	"tr": {"Ocak", "Şubat", "Mart", "Nisan", "Mayıs", "Haziran", "Temmuz", "Ağustos", "Eylül", "Ekim", "Kasım", "Aralık"},
}

var weekdayNames = map[string][7]string{
	"en": {"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"},
	"tr": {"Pzt", "Sal", "Çar", "Per", "Cum", "Cmt", "Paz"},
}

func normalizeLang(lang string) string {
	if strings.EqualFold(lang, "tr") {
		return "tr"
	}
	return "en"
}

// MonthName returns the localized month name.
func MonthName(m time.Month, lang string) string {
	if m < time.January || m > time.December {
		return ""
	}
	return monthNames[normalizeLang(lang)][m-1]
}

// WeekdayNames returns short weekday names starting on Monday.
func WeekdayNames(lang string) []string {
	names := weekdayNames[normalizeLang(lang)]
	return names[:]
}
