package srs

import "github.com/google/uuid"

// Band is a CEFR difficulty label.
type Band string

// CEFR difficulty bands, easiest first.
const (
	BandA1 Band = "A1"
	BandA2 Band = "A2"
	BandB1 Band = "B1"
	BandB2 Band = "B2"
	BandC1 Band = "C1"
	BandC2 Band = "C2"
)

// Bands lists the CEFR bands in ascending difficulty order.
var Bands = []Band{BandA1, BandA2, BandB1, BandB2, BandC1, BandC2}

// ValidBand reports whether b is one of the six CEFR bands.
func ValidBand(b Band) bool {
	for _, known := range Bands {
		if b == known {
			return true
		}
	}
	return false
}

// Item is the in-memory view of a vocabulary item the engine works with.
type Item struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	Word        string
	Translation string
	Language    string
	Band        Band
	State       SchedulingState
}
