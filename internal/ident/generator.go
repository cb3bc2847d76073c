package ident

import (
	"crypto/rand"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// Supported identifier formats
const (
	FormatUUID = "uuid"
	FormatULID = "ulid"
)

// Generator produces clip identifiers. Identifiers are never checked for
// collisions; uniqueness rests on the randomness of the generator.
type Generator interface {
	Generate() (string, error)
}

// New returns the generator for the given format
func New(format string) (Generator, error) {
	switch format {
	case "", FormatUUID:
		return NewUUIDGenerator(), nil
	case FormatULID:
		return NewULIDGenerator(), nil
	default:
		return nil, fmt.Errorf("unsupported id format: %s", format)
	}
}

// UUIDGenerator generates random (version 4) UUIDs in canonical text form
type UUIDGenerator struct {
	rand io.Reader
}

// NewUUIDGenerator creates a UUID generator reading from crypto/rand
func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{rand: rand.Reader}
}

// Generate creates a new identifier
func (g *UUIDGenerator) Generate() (string, error) {
	id, err := uuid.NewRandomFromReader(g.rand)
	if err != nil {
		return "", fmt.Errorf("generate uuid: %w", err)
	}
	return id.String(), nil
}

// ULIDGenerator generates lexically sortable ULIDs with 80 random bits
type ULIDGenerator struct {
	rand io.Reader
	now  func() time.Time
}

// NewULIDGenerator creates a ULID generator reading from crypto/rand
func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{rand: rand.Reader, now: time.Now}
}

// Generate creates a new identifier
func (g *ULIDGenerator) Generate() (string, error) {
	id, err := ulid.New(ulid.Timestamp(g.now()), g.rand)
	if err != nil {
		return "", fmt.Errorf("generate ulid: %w", err)
	}
	return id.String(), nil
}
