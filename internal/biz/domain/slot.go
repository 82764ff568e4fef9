package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Slot names used by the default settings
const (
	SlotMorning   = "morning"
	SlotAfternoon = "afternoon"
	SlotEvening   = "evening"
)

// ClockTime is a wall-clock time of day
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClockTime parses "HH:MM"
func ParseClockTime(s string) (ClockTime, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return ClockTime{}, fmt.Errorf("%w: %q", ErrInvalidSlotTime, s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return ClockTime{}, fmt.Errorf("%w: %q", ErrInvalidSlotTime, s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return ClockTime{}, fmt.Errorf("%w: %q", ErrInvalidSlotTime, s)
	}
	return ClockTime{Hour: h, Minute: m}, nil
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// TimeSlot is a named recurring notification time
type TimeSlot struct {
	Name    string
	Enabled bool
	Time    ClockTime
}

// NextFireTime returns today at ct if that is strictly after now, otherwise tomorrow at ct.
// An instant equal to now counts as past.
func NextFireTime(now time.Time, ct ClockTime) time.Time {
	fireAt := time.Date(now.Year(), now.Month(), now.Day(), ct.Hour, ct.Minute, 0, 0, now.Location())
	if !fireAt.After(now) {
		fireAt = time.Date(now.Year(), now.Month(), now.Day()+1, ct.Hour, ct.Minute, 0, 0, now.Location())
	}
	return fireAt
}

// SlotState is the scheduler state of one slot
type SlotState string

const (
	SlotIdle     SlotState = "idle"
	SlotArmed    SlotState = "armed"
	SlotFiring   SlotState = "firing"
	SlotDisabled SlotState = "disabled"
)
