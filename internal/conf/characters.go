package conf

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dailycheer/cheer-notifier/internal/biz/domain"
)

// PersonaConfig contains personas and special days loaded from YAML
type PersonaConfig struct {
	Characters  []domain.Character  `yaml:"characters"`
	SpecialDays []domain.SpecialDay `yaml:"special_days"`
}

// LoadPersonaConfig loads personas from a YAML file. An empty path yields the defaults.
func LoadPersonaConfig(path string) (*PersonaConfig, error) {
	if path == "" {
		return DefaultPersonaConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read characters file: %w", err)
	}

	var config PersonaConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse characters file: %w", err)
	}

	if err := config.fillDefaults(); err != nil {
		return nil, err
	}
	return &config, nil
}

// fillDefaults fills in default values for empty fields
func (c *PersonaConfig) fillDefaults() error {
	defaults := DefaultPersonaConfig()

	if len(c.Characters) == 0 {
		c.Characters = defaults.Characters
	}
	if c.SpecialDays == nil {
		c.SpecialDays = defaults.SpecialDays
	}

	for i := range c.Characters {
		ch := &c.Characters[i]
		if ch.ID == "" {
			return &ConfigError{Field: fmt.Sprintf("characters[%d].id", i), Message: "required"}
		}
		if ch.Name == "" {
			ch.Name = ch.ID
		}
		if ch.FallbackMessage == "" {
			ch.FallbackMessage = domain.SentinelMessage().Content
		}
		if ch.PersonalityPrompt == "" {
			ch.PersonalityPrompt = fmt.Sprintf("You are %s, a warm friend who cheers the user on.", ch.Name)
		}
	}

	for i, sd := range c.SpecialDays {
		if sd.Month < 1 || sd.Month > 12 || sd.Day < 1 || sd.Day > 31 {
			return &ConfigError{Field: fmt.Sprintf("special_days[%d]", i), Message: "invalid month/day"}
		}
	}
	return nil
}

// DefaultPersonaConfig returns the built-in personas and special days
func DefaultPersonaConfig() *PersonaConfig {
	return &PersonaConfig{
		Characters: []domain.Character{
			{
				ID:                "friend_a",
				Name:              "Friend A",
				IconURL:           "/icons/friend_a.png",
				PersonalityPrompt: "You are Friend A, the user's cheerful close friend. You speak casually and warmly, and you always notice the small things the user does well.",
				FallbackMessage:   "You're doing great today too! I'm rooting for you!",
			},
			{
				ID:                "harusakino_doka",
				Name:              "Harusakino Doka",
				IconURL:           "/icons/harusakino_doka.png",
				PersonalityPrompt: "You are Harusakino Doka, a calm and gentle older-sister figure. You speak politely and softly, and you encourage the user to take care of themselves.",
				FallbackMessage:   "Don't push yourself too hard. I'm always on your side.",
			},
		},
		SpecialDays: []domain.SpecialDay{
			{Month: 1, Day: 1, Name: "New Year's Day", Tag: "new_year"},
			{Month: 2, Day: 14, Name: "Valentine's Day", Tag: "valentine"},
			{Month: 3, Day: 3, Name: "Hinamatsuri", Tag: "hinamatsuri"},
			{Month: 7, Day: 7, Name: "Tanabata", Tag: "tanabata"},
			{Month: 10, Day: 31, Name: "Halloween", Tag: "halloween"},
			{Month: 12, Day: 24, Name: "Christmas Eve", Tag: "christmas_eve"},
			{Month: 12, Day: 25, Name: "Christmas", Tag: "christmas"},
			{Month: 12, Day: 31, Name: "New Year's Eve", Tag: "new_years_eve"},
		},
	}
}
