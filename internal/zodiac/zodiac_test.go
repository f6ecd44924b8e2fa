package zodiac_test

import (
	"testing"
	"time"

	"astromatch/internal/zodiac"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestClassify_Boundaries(t *testing.T) {
	tests := []struct {
		month time.Month
		day   int
		want  zodiac.Sign
	}{
		{time.March, 20, zodiac.Pisces},
		{time.March, 21, zodiac.Aries},
		{time.April, 19, zodiac.Aries},
		{time.April, 20, zodiac.Taurus},
		{time.May, 20, zodiac.Taurus},
		{time.May, 21, zodiac.Gemini},
		{time.June, 20, zodiac.Gemini},
		{time.June, 21, zodiac.Cancer},
		{time.July, 22, zodiac.Cancer},
		{time.July, 23, zodiac.Leo},
		{time.August, 22, zodiac.Leo},
		{time.August, 23, zodiac.Virgo},
		{time.September, 22, zodiac.Virgo},
		{time.September, 23, zodiac.Libra},
		{time.October, 22, zodiac.Libra},
		{time.October, 23, zodiac.Scorpio},
		{time.November, 21, zodiac.Scorpio},
		{time.November, 22, zodiac.Sagittarius},
		{time.December, 21, zodiac.Sagittarius},
		{time.December, 22, zodiac.Capricorn},
		{time.December, 31, zodiac.Capricorn},
		{time.January, 1, zodiac.Capricorn},
		{time.January, 19, zodiac.Capricorn},
		{time.January, 20, zodiac.Aquarius},
		{time.February, 18, zodiac.Aquarius},
		{time.February, 19, zodiac.Pisces},
		{time.February, 29, zodiac.Pisces},
	}

	for _, tt := range tests {
		t.Run(tt.month.String()+"_"+time.Date(2024, tt.month, tt.day, 0, 0, 0, 0, time.UTC).Format("02"), func(t *testing.T) {
			assert.Equal(t, tt.want, zodiac.Classify(date(2024, tt.month, tt.day)))
		})
	}
}

func TestClassify_PartitionsYear(t *testing.T) {
	// Walk a leap year: every day maps to a valid sign and each sign covers
	// one contiguous run of days.
	counts := make(map[zodiac.Sign]int)
	runs := 0
	var prev zodiac.Sign
	for d := date(2024, time.January, 1); d.Year() == 2024; d = d.AddDate(0, 0, 1) {
		s := zodiac.Classify(d)
		require.True(t, s.Valid(), "day %s classified as %q", d.Format(zodiac.DateLayout), s)
		counts[s]++
		if s != prev {
			runs++
			prev = s
		}
	}

	assert.Len(t, counts, 12)
	// Capricorn wraps the year boundary so it shows up as two runs.
	assert.Equal(t, 13, runs)

	total := 0
	for _, n := range counts {
		total += n
	}
	assert.Equal(t, 366, total)
}

func TestClassify_IgnoresYear(t *testing.T) {
	assert.Equal(t, zodiac.Classify(date(1990, time.August, 1)), zodiac.Classify(date(2031, time.August, 1)))
}

func TestClassifyString(t *testing.T) {
	sign, err := zodiac.ClassifyString("1995-03-21")
	require.NoError(t, err)
	assert.Equal(t, zodiac.Aries, sign)

	sign, err = zodiac.ClassifyString("1995-12-22T10:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, zodiac.Capricorn, sign)

	for _, bad := range []string{"", "not-a-date", "1995-13-01", "1995-02-30", "21/03/1995"} {
		_, err := zodiac.ClassifyString(bad)
		assert.ErrorIs(t, err, zodiac.ErrInvalidDate, "input %q", bad)
	}
}

func TestSign_Label(t *testing.T) {
	assert.Equal(t, "Koç", zodiac.Aries.Label("tr"))
	assert.Equal(t, "Balık", zodiac.Pisces.Label("TR"))
	assert.Equal(t, "Aries", zodiac.Aries.Label("en"))
	assert.Equal(t, "Aries", zodiac.Aries.Label(""))

	for _, s := range zodiac.All() {
		assert.NotEmpty(t, s.Label("tr"))
	}
}
