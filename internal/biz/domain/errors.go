package domain

import "errors"

var (
	// ErrUnknownMessage is returned when a delivery references a message outside the catalog
	ErrUnknownMessage = errors.New("message not in catalog")

	// ErrInvalidSlotTime is returned for slot times that are not HH:MM
	ErrInvalidSlotTime = errors.New("invalid slot time")

	// ErrUnknownCharacter is returned when a character id has no persona
	ErrUnknownCharacter = errors.New("unknown character")
)
