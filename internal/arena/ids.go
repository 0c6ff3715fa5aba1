package arena

import "github.com/google/uuid"

// IDGenerator produces battle IDs.
type IDGenerator interface {
	New() string
}

type uuidGenerator struct{}

func (uuidGenerator) New() string { return uuid.NewString() }

// NewUUIDGenerator returns an IDGenerator producing random (v4) UUIDs.
func NewUUIDGenerator() IDGenerator { return uuidGenerator{} }
