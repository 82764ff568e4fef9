package domain

// Character is a persona that signs the delivered messages
type Character struct {
	ID                string `yaml:"id" json:"id"`
	Name              string `yaml:"name" json:"name"`
	IconURL           string `yaml:"icon_url" json:"icon_url"`
	PersonalityPrompt string `yaml:"personality_prompt" json:"-"`
	FallbackMessage   string `yaml:"fallback_message" json:"fallback_message"`
}

// NotificationTitle is the title shown with a delivered message
func (c *Character) NotificationTitle() string {
	return "Message from " + c.Name
}

// CharacterSet is the read-only set of known personas
type CharacterSet struct {
	byID  map[string]*Character
	order []string
}

// NewCharacterSet builds a set; the first character is the default
func NewCharacterSet(chars []Character) *CharacterSet {
	s := &CharacterSet{byID: make(map[string]*Character, len(chars))}
	for _, c := range chars {
		if c.ID == "" {
			continue
		}
		if _, dup := s.byID[c.ID]; dup {
			continue
		}
		s.byID[c.ID] = &c
		s.order = append(s.order, c.ID)
	}
	return s
}

// Get returns the character with id
func (s *CharacterSet) Get(id string) (*Character, error) {
	c, ok := s.byID[id]
	if !ok {
		return nil, ErrUnknownCharacter
	}
	return c, nil
}

// Resolve returns the character with id, or the default one when id is unknown
func (s *CharacterSet) Resolve(id string) *Character {
	if c, ok := s.byID[id]; ok {
		return c
	}
	if len(s.order) > 0 {
		return s.byID[s.order[0]]
	}
	return &Character{ID: id, Name: "Friend", FallbackMessage: sentinelContent}
}

// List returns every character in definition order
func (s *CharacterSet) List() []*Character {
	result := make([]*Character, 0, len(s.order))
	for _, id := range s.order {
		result = append(result, s.byID[id])
	}
	return result
}
