package data

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dailycheer/cheer-notifier/internal/biz/domain"
)

//go:embed seed/messages.yaml
var builtinSeed []byte

// seedMessage is the YAML shape of one seed entry
type seedMessage struct {
	ID              int64    `yaml:"id"`
	Content         string   `yaml:"content"`
	CategoryTime    string   `yaml:"category_time"`
	CategoryDay     string   `yaml:"category_day"`
	CategorySeason  string   `yaml:"category_season"`
	CategorySpecial string   `yaml:"category_special"`
	Tags            []string `yaml:"tags"`
}

type seedFile struct {
	Messages []seedMessage `yaml:"messages"`
}

// LoadSeed reads the seed catalog from path, or the built-in one when path is empty
func LoadSeed(path string) ([]domain.Message, error) {
	raw := builtinSeed
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read seed file: %w", err)
		}
		raw = b
	}
	return ParseSeed(raw)
}

// ParseSeed decodes seed YAML and validates its buckets
func ParseSeed(raw []byte) ([]domain.Message, error) {
	var f seedFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed: %w", err)
	}

	msgs := make([]domain.Message, 0, len(f.Messages))
	for _, sm := range f.Messages {
		if sm.ID <= 0 {
			return nil, fmt.Errorf("seed message %q: id must be positive", sm.Content)
		}
		m := domain.Message{
			ID:         sm.ID,
			Content:    sm.Content,
			TimeBucket: domain.TimeBucket(orAll(sm.CategoryTime)),
			DayBucket:  domain.DayBucket(orAll(sm.CategoryDay)),
			Season:     domain.SeasonBucket(orAll(sm.CategorySeason)),
			SpecialTag: sm.CategorySpecial,
			Tags:       sm.Tags,
		}
		if !m.TimeBucket.Valid() || !m.DayBucket.Valid() || !m.Season.Valid() {
			return nil, fmt.Errorf("seed message %d: invalid category", sm.ID)
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}
