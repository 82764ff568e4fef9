package domain

import (
	"strconv"
	"strings"
	"time"
)

// BirthdayName is the special-day name used on the user's birthday
const BirthdayName = "Birthday"

// BirthdayTag is the catalog special tag for birthday messages
const BirthdayTag = "birthday"

// SpecialDay is a yearly occasion
type SpecialDay struct {
	Month int    `yaml:"month"`
	Day   int    `yaml:"day"`
	Name  string `yaml:"name"`
	Tag   string `yaml:"tag"`
}

// Snapshot is the context computed for one firing. It is never persisted.
type Snapshot struct {
	At         time.Time
	TimeBucket TimeBucket
	DayBucket  DayBucket
	Season     SeasonBucket
	SpecialDay *SpecialDay      // nil when today is ordinary
	Weather    *WeatherCategory // nil when weather is not used
}

// SpecialDayName returns the occasion name or ""
func (s Snapshot) SpecialDayName() string {
	if s.SpecialDay == nil {
		return ""
	}
	return s.SpecialDay.Name
}

// TimeBucketAt maps an hour to a time-of-day bucket
func TimeBucketAt(t time.Time) TimeBucket {
	h := t.Hour()
	switch {
	case h >= 6 && h <= 10:
		return TimeMorning
	case h >= 11 && h <= 16:
		return TimeAfternoon
	case h >= 17 && h <= 22:
		return TimeEvening
	default:
		return TimeLate
	}
}

// DayBucketAt maps a weekday to a day bucket
func DayBucketAt(t time.Time) DayBucket {
	switch t.Weekday() {
	case time.Monday:
		return DayMonday
	case time.Friday:
		return DayFriday
	case time.Saturday, time.Sunday:
		return DayWeekend
	default:
		return DayWeekday
	}
}

// SeasonAt maps a month to a season bucket
func SeasonAt(t time.Time) SeasonBucket {
	switch m := t.Month(); {
	case m >= time.March && m <= time.May:
		return SeasonSpring
	case m >= time.June && m <= time.August:
		return SeasonSummer
	case m >= time.September && m <= time.November:
		return SeasonAutumn
	default:
		return SeasonWinter
	}
}

// FindSpecialDay returns today's occasion. The birthday ("MM-DD") wins over the table.
func FindSpecialDay(t time.Time, birthday string, table []SpecialDay) *SpecialDay {
	month, day := int(t.Month()), t.Day()

	if bm, bd, ok := parseMonthDay(birthday); ok && bm == month && bd == day {
		return &SpecialDay{Month: bm, Day: bd, Name: BirthdayName, Tag: BirthdayTag}
	}

	for _, sd := range table {
		if sd.Month == month && sd.Day == day {
			found := sd
			return &found
		}
	}
	return nil
}

func parseMonthDay(s string) (int, int, bool) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 2 {
		return 0, 0, false
	}
	m, err := strconv.Atoi(parts[0])
	if err != nil || m < 1 || m > 12 {
		return 0, 0, false
	}
	d, err := strconv.Atoi(parts[1])
	if err != nil || d < 1 || d > 31 {
		return 0, 0, false
	}
	return m, d, true
}

// ValidBirthday reports whether s is an "MM-DD" birthday
func ValidBirthday(s string) bool {
	_, _, ok := parseMonthDay(s)
	return ok
}
