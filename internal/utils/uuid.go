package utils

import "github.com/google/uuid"

// UUIDGenerator issues time-ordered identifiers. Version 7 UUIDs sort by
// creation time, so local message ids created in sequence also compare in
// sequence, which keeps the tie-break of equal timestamps stable.
type UUIDGenerator struct {
}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

// Generate returns a UUIDv7 string, falling back to a random UUIDv4 when
// the clock source fails.
func (g *UUIDGenerator) Generate() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return v7.String()
}
