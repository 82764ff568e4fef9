package data

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/dailycheer/cheer-notifier/internal/biz/domain"
	"github.com/dailycheer/cheer-notifier/internal/biz/repo"
)

// settingsFile is the YAML shape of the settings file.
// Pointer fields tell a missing key apart from a zero value.
type settingsFile struct {
	GlobalEnabled     *bool               `yaml:"global_enabled"`
	Slots             map[string]slotFile `yaml:"slots"`
	UserBirthday      string              `yaml:"user_birthday"`
	UseWeather        *bool               `yaml:"use_weather"`
	SelectedCharacter string              `yaml:"selected_character"`
	Mode              string              `yaml:"mode"`
	Location          *locationFile       `yaml:"location,omitempty"`
}

type slotFile struct {
	Enabled *bool  `yaml:"enabled"`
	Time    string `yaml:"time"`
}

type locationFile struct {
	Lat float64 `yaml:"lat"`
	Lon float64 `yaml:"lon"`
}

// settingsRepo reads user settings from a YAML file
type settingsRepo struct {
	path string
	once sync.Once
}

// NewSettingsRepo creates a settings repository backed by path
func NewSettingsRepo(path string) repo.SettingsRepo {
	return &settingsRepo{path: path}
}

// Load reads the settings file. A missing file yields the defaults and is written once.
func (r *settingsRepo) Load(ctx context.Context) (*domain.Settings, error) {
	raw, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		r.once.Do(func() { _ = WriteSettings(r.path, domain.DefaultSettings()) })
		return domain.DefaultSettings(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}
	return ParseSettings(raw)
}

// ParseSettings decodes settings YAML, filling missing fields with defaults
func ParseSettings(raw []byte) (*domain.Settings, error) {
	var f settingsFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}

	s := domain.DefaultSettings()
	if f.GlobalEnabled != nil {
		s.GlobalEnabled = *f.GlobalEnabled
	}
	if f.UseWeather != nil {
		s.UseWeather = *f.UseWeather
	}
	if f.UserBirthday != "" {
		if !domain.ValidBirthday(f.UserBirthday) {
			return nil, fmt.Errorf("invalid user_birthday %q, want MM-DD", f.UserBirthday)
		}
		s.UserBirthday = f.UserBirthday
	}
	if f.SelectedCharacter != "" {
		s.SelectedCharacter = f.SelectedCharacter
	}
	switch domain.ContentMode(f.Mode) {
	case "":
	case domain.ModeCatalog, domain.ModeGenerative:
		s.Mode = domain.ContentMode(f.Mode)
	default:
		return nil, fmt.Errorf("invalid mode %q", f.Mode)
	}
	if f.Location != nil {
		s.Location = &domain.Location{Lat: f.Location.Lat, Lon: f.Location.Lon}
	}

	// Known slots keep their default order; extra slots follow by name
	for i, slot := range s.Slots {
		sf, ok := f.Slots[slot.Name]
		if !ok {
			continue
		}
		merged, err := mergeSlot(slot, sf)
		if err != nil {
			return nil, err
		}
		s.Slots[i] = merged
	}

	var extra []string
	for name := range f.Slots {
		if _, known := s.Slot(name); !known {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	for _, name := range extra {
		sf := f.Slots[name]
		if sf.Time == "" {
			return nil, fmt.Errorf("slot %s: %w: missing time", name, domain.ErrInvalidSlotTime)
		}
		merged, err := mergeSlot(domain.TimeSlot{Name: name, Enabled: true}, sf)
		if err != nil {
			return nil, err
		}
		s.Slots = append(s.Slots, merged)
	}

	return s, nil
}

func mergeSlot(slot domain.TimeSlot, sf slotFile) (domain.TimeSlot, error) {
	if sf.Enabled != nil {
		slot.Enabled = *sf.Enabled
	}
	if sf.Time != "" {
		ct, err := domain.ParseClockTime(sf.Time)
		if err != nil {
			return slot, fmt.Errorf("slot %s: %w", slot.Name, err)
		}
		slot.Time = ct
	}
	return slot, nil
}

// WriteSettings stores s as YAML at path
func WriteSettings(path string, s *domain.Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	f := settingsFile{
		GlobalEnabled:     &s.GlobalEnabled,
		Slots:             make(map[string]slotFile, len(s.Slots)),
		UserBirthday:      s.UserBirthday,
		UseWeather:        &s.UseWeather,
		SelectedCharacter: s.SelectedCharacter,
		Mode:              string(s.Mode),
	}
	for _, slot := range s.Slots {
		enabled := slot.Enabled
		f.Slots[slot.Name] = slotFile{Enabled: &enabled, Time: slot.Time.String()}
	}
	if s.Location != nil {
		f.Location = &locationFile{Lat: s.Location.Lat, Lon: s.Location.Lon}
	}

	out, err := yaml.Marshal(&f)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}
