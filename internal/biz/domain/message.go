package domain

// TimeBucket is the time-of-day category of a message
type TimeBucket string

const (
	TimeMorning   TimeBucket = "morning"
	TimeAfternoon TimeBucket = "afternoon"
	TimeEvening   TimeBucket = "evening"
	TimeLate      TimeBucket = "late"
	TimeAll       TimeBucket = "all"
)

// DayBucket is the day-of-week category of a message
type DayBucket string

const (
	DayMonday  DayBucket = "monday"
	DayFriday  DayBucket = "friday"
	DayWeekend DayBucket = "weekend"
	DayWeekday DayBucket = "weekday"
	DayAll     DayBucket = "all"
)

// SeasonBucket is the season category of a message
type SeasonBucket string

const (
	SeasonSpring SeasonBucket = "spring"
	SeasonSummer SeasonBucket = "summer"
	SeasonAutumn SeasonBucket = "autumn"
	SeasonWinter SeasonBucket = "winter"
	SeasonAll    SeasonBucket = "all"
)

// SentinelID is the id of the built-in message. It never appears in the catalog table.
const SentinelID int64 = 0

const sentinelContent = "Great work today! I'm always cheering for you~"

// Message is an immutable catalog entry
type Message struct {
	ID         int64
	Content    string
	TimeBucket TimeBucket
	DayBucket  DayBucket
	Season     SeasonBucket
	SpecialTag string   // Empty when the message is not tied to an occasion
	Tags       []string // Advisory only
}

// SentinelMessage returns the last-resort message used when the catalog is empty
func SentinelMessage() Message {
	return Message{
		ID:         SentinelID,
		Content:    sentinelContent,
		TimeBucket: TimeAll,
		DayBucket:  DayAll,
		Season:     SeasonAll,
	}
}

// Matches reports whether every bucket of the message equals the queried value or "all"
func (m Message) Matches(t TimeBucket, d DayBucket, s SeasonBucket) bool {
	return (m.TimeBucket == t || m.TimeBucket == TimeAll) &&
		(m.DayBucket == d || m.DayBucket == DayAll) &&
		(m.Season == s || m.Season == SeasonAll)
}

// Score counts the buckets that match exactly (0-3). "all" never scores.
func (m Message) Score(t TimeBucket, d DayBucket, s SeasonBucket) int {
	score := 0
	if m.TimeBucket == t && t != TimeAll {
		score++
	}
	if m.DayBucket == d && d != DayAll {
		score++
	}
	if m.Season == s && s != SeasonAll {
		score++
	}
	return score
}

// Valid reports whether the bucket values are known
func (b TimeBucket) Valid() bool {
	switch b {
	case TimeMorning, TimeAfternoon, TimeEvening, TimeLate, TimeAll:
		return true
	}
	return false
}

// Valid reports whether the bucket values are known
func (b DayBucket) Valid() bool {
	switch b {
	case DayMonday, DayFriday, DayWeekend, DayWeekday, DayAll:
		return true
	}
	return false
}

// Valid reports whether the bucket values are known
func (b SeasonBucket) Valid() bool {
	switch b {
	case SeasonSpring, SeasonSummer, SeasonAutumn, SeasonWinter, SeasonAll:
		return true
	}
	return false
}
