package domain

import "time"

// DeliverySource describes where the delivered text came from
type DeliverySource string

const (
	SourceCatalog   DeliverySource = "catalog"
	SourceSentinel  DeliverySource = "sentinel"
	SourceGenerated DeliverySource = "generated"
	SourceFallback  DeliverySource = "fallback"
)

// DeliveryRecord is one append-only ledger entry
type DeliveryRecord struct {
	ID          int64          `json:"id"`
	MessageID   int64          `json:"message_id"`
	Content     string         `json:"content"`
	Source      DeliverySource `json:"source"`
	CharacterID string         `json:"character_id"`
	Slot        string         `json:"slot,omitempty"` // Empty for manual sends
	SentAt      time.Time      `json:"sent_at"`
}
