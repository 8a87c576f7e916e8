package utils

import "github.com/google/uuid"

// UUIDGenerator issues record identifiers. Version 7 ids are time-ordered,
// so rows inserted in one batch sort in generation order.
type UUIDGenerator struct {
}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

// Generate returns a new v7 UUID, falling back to v4 if the clock source
// fails.
func (g *UUIDGenerator) Generate() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return v7.String()
}
