package crypto

import "github.com/google/uuid"

type IDGenerator interface {
	NewID() (string, error)
}

type UUIDGenerator struct{}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) NewID() (string, error) {
	return uuid.NewString(), nil
}

// TimeOrderedGenerator issues UUIDv7 values, which sort by creation time.
type TimeOrderedGenerator struct{}

func NewTimeOrderedGenerator() *TimeOrderedGenerator {
	return &TimeOrderedGenerator{}
}

func (g *TimeOrderedGenerator) NewID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
