package domain

// ContentMode selects how message text is produced
type ContentMode string

const (
	ModeCatalog    ContentMode = "catalog"
	ModeGenerative ContentMode = "generative"
)

// Settings is the user-controlled configuration read by the scheduler
type Settings struct {
	GlobalEnabled     bool
	Slots             []TimeSlot
	UserBirthday      string // "MM-DD" or empty
	UseWeather        bool
	SelectedCharacter string
	Mode              ContentMode
	Location          *Location
}

// DefaultSettings returns the settings used when nothing is configured
func DefaultSettings() *Settings {
	return &Settings{
		GlobalEnabled: true,
		Slots: []TimeSlot{
			{Name: SlotMorning, Enabled: true, Time: ClockTime{Hour: 8}},
			{Name: SlotAfternoon, Enabled: false, Time: ClockTime{Hour: 12, Minute: 30}},
			{Name: SlotEvening, Enabled: true, Time: ClockTime{Hour: 20}},
		},
		SelectedCharacter: "friend_a",
		Mode:              ModeCatalog,
	}
}

// ActiveSlots returns the slots that should hold a timer
func (s *Settings) ActiveSlots() []TimeSlot {
	if s == nil || !s.GlobalEnabled {
		return nil
	}
	var result []TimeSlot
	for _, slot := range s.Slots {
		if slot.Enabled {
			result = append(result, slot)
		}
	}
	return result
}

// Slot finds a slot by name
func (s *Settings) Slot(name string) (TimeSlot, bool) {
	if s == nil {
		return TimeSlot{}, false
	}
	for _, slot := range s.Slots {
		if slot.Name == name {
			return slot, true
		}
	}
	return TimeSlot{}, false
}
