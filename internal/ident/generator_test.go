package ident

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

func TestNew(t *testing.T) {
	for _, format := range []string{"", FormatUUID} {
		g, err := New(format)
		if err != nil {
			t.Fatalf("New(%q) failed: %v", format, err)
		}
		if _, ok := g.(*UUIDGenerator); !ok {
			t.Errorf("New(%q) = %T, want *UUIDGenerator", format, g)
		}
	}

	g, err := New(FormatULID)
	if err != nil {
		t.Fatalf("New(ulid) failed: %v", err)
	}
	if _, ok := g.(*ULIDGenerator); !ok {
		t.Errorf("New(ulid) = %T, want *ULIDGenerator", g)
	}

	if _, err := New("nanoid"); err == nil {
		t.Error("Expected error for unsupported format")
	}
}

func TestUUIDGenerate(t *testing.T) {
	g := NewUUIDGenerator()

	id, err := g.Generate()
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(id) != 36 {
		t.Errorf("Expected 36 character id, got %d (%s)", len(id), id)
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		t.Fatalf("Generated id is not a UUID: %v", err)
	}
	if parsed.Version() != 4 {
		t.Errorf("Expected version 4 UUID, got %d", parsed.Version())
	}
}

func TestULIDGenerate(t *testing.T) {
	fixed := time.UnixMilli(1_700_000_000_000)
	g := NewULIDGenerator()
	g.now = func() time.Time { return fixed }

	id, err := g.Generate()
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	parsed, err := ulid.ParseStrict(id)
	if err != nil {
		t.Fatalf("Generated id is not a ULID: %v", err)
	}
	if parsed.Time() != uint64(fixed.UnixMilli()) {
		t.Errorf("Expected timestamp %d, got %d", fixed.UnixMilli(), parsed.Time())
	}
}

func TestGenerateUniqueness(t *testing.T) {
	for _, g := range []Generator{NewUUIDGenerator(), NewULIDGenerator()} {
		seen := make(map[string]bool)
		for i := 0; i < 1000; i++ {
			id, err := g.Generate()
			if err != nil {
				t.Fatalf("Generate failed: %v", err)
			}
			if seen[id] {
				t.Fatalf("%T produced duplicate id %s", g, id)
			}
			seen[id] = true
		}
	}
}

func TestGenerateEntropyFailure(t *testing.T) {
	u := &UUIDGenerator{rand: failingReader{}}
	if _, err := u.Generate(); err == nil || !strings.Contains(err.Error(), "generate uuid") {
		t.Errorf("Expected wrapped uuid error, got %v", err)
	}

	l := &ULIDGenerator{rand: failingReader{}, now: time.Now}
	if _, err := l.Generate(); err == nil || !strings.Contains(err.Error(), "generate ulid") {
		t.Errorf("Expected wrapped ulid error, got %v", err)
	}
}
