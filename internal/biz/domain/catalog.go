package domain

// Catalog is the read-only set of candidate messages loaded at startup.
// It is safe for concurrent use because nothing mutates it after NewCatalog.
type Catalog struct {
	messages []Message
	byID     map[int64]int
}

// NewCatalog copies msgs into a new catalog
func NewCatalog(msgs []Message) *Catalog {
	c := &Catalog{
		messages: make([]Message, 0, len(msgs)),
		byID:     make(map[int64]int, len(msgs)),
	}
	for _, m := range msgs {
		if _, dup := c.byID[m.ID]; dup {
			continue
		}
		m.Tags = append([]string(nil), m.Tags...)
		c.byID[m.ID] = len(c.messages)
		c.messages = append(c.messages, m)
	}
	return c
}

// Len returns the number of messages
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.messages)
}

// At returns the i-th message in load order
func (c *Catalog) At(i int) Message {
	return c.messages[i]
}

// Get looks up a message by id
func (c *Catalog) Get(id int64) (Message, bool) {
	if c == nil {
		return Message{}, false
	}
	i, ok := c.byID[id]
	if !ok {
		return Message{}, false
	}
	return c.messages[i], true
}

// Contains reports whether id may be referenced by a delivery record.
// The sentinel id is always accepted.
func (c *Catalog) Contains(id int64) bool {
	if id == SentinelID {
		return true
	}
	_, ok := c.Get(id)
	return ok
}

// WithSpecialTag returns the messages tagged for the given occasion
func (c *Catalog) WithSpecialTag(tag string) []Message {
	if c == nil || tag == "" {
		return nil
	}
	var result []Message
	for _, m := range c.messages {
		if m.SpecialTag == tag {
			result = append(result, m)
		}
	}
	return result
}

// OccasionIDs returns the ids of every message bound to an occasion
func (c *Catalog) OccasionIDs() []int64 {
	if c == nil {
		return nil
	}
	var ids []int64
	for _, m := range c.messages {
		if m.SpecialTag != "" {
			ids = append(ids, m.ID)
		}
	}
	return ids
}
