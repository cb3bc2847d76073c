package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Supported display languages.
const (
	LangEN = "en"
	LangZH = "zh"
)

// DefaultTTLSeconds is used when a request carries no usable ttl.
const DefaultTTLSeconds int64 = 600

// MaxTTLSeconds is the largest ttl accepted from a request.
const MaxTTLSeconds int64 = math.MaxInt32

var (
	// ErrInvalidBody is returned when a create body is absent or not a JSON object.
	ErrInvalidBody = errors.New("request body must be a JSON object")

	// ErrInvalidTTL is returned when ttl is numeric but not a usable number of seconds.
	ErrInvalidTTL = errors.New("ttl must be a positive number of seconds")
)

// Clip is the stored record. The id is the store key and is not part of the value.
type Clip struct {
	Content   string `json:"content"`
	ReadOnce  bool   `json:"readOnce"`
	Lang      string `json:"lang"`
	CreatedAt int64  `json:"createdAt"` // milliseconds since epoch
	TTL       int64  `json:"ttl"`       // seconds
}

// CreatedTime returns CreatedAt as a time.Time.
func (c *Clip) CreatedTime() time.Time {
	return time.UnixMilli(c.CreatedAt)
}

// Lifetime returns TTL as a duration.
func (c *Clip) Lifetime() time.Duration {
	return time.Duration(c.TTL) * time.Second
}

// ExpiresAt is the instant the store drops the record.
func (c *Clip) ExpiresAt() time.Time {
	return c.CreatedTime().Add(c.Lifetime())
}

// Remaining returns the lifetime left at now, never negative.
func (c *Clip) Remaining(now time.Time) time.Duration {
	left := c.ExpiresAt().Sub(now)
	if left < 0 {
		return 0
	}
	return left
}

// Marshal encodes the clip in the persisted layout.
func (c *Clip) Marshal() ([]byte, error) {
	return json.Marshal(c)
}

// CreateRequest is the loosely typed body of POST /. Fields stay raw so that
// every coercion rule is applied explicitly by Normalize.
type CreateRequest struct {
	Content  json.RawMessage `json:"content"`
	ReadOnce json.RawMessage `json:"readOnce"`
	TTL      json.RawMessage `json:"ttl"`
	Lang     json.RawMessage `json:"lang"`
}

// ParseCreateRequest decodes a create body. The body must be a JSON object.
func ParseCreateRequest(body []byte) (*CreateRequest, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, ErrInvalidBody
	}
	var req CreateRequest
	if err := json.Unmarshal(trimmed, &req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	return &req, nil
}

// CreateParams is a normalized create request.
type CreateParams struct {
	Content  string
	ReadOnce bool
	TTL      int64
	Lang     string
}

// Normalize applies the create coercion rules.
func (r *CreateRequest) Normalize() (CreateParams, error) {
	ttl, err := normalizeTTL(r.TTL)
	if err != nil {
		return CreateParams{}, err
	}
	return CreateParams{
		Content:  coerceContent(r.Content),
		ReadOnce: truthy(r.ReadOnce),
		TTL:      ttl,
		Lang:     normalizeLang(r.Lang),
	}, nil
}

// storedClip mirrors Clip with raw fields, so records written by other
// producers sharing the store still decode.
type storedClip struct {
	Content   json.RawMessage `json:"content"`
	ReadOnce  json.RawMessage `json:"readOnce"`
	Lang      json.RawMessage `json:"lang"`
	CreatedAt json.RawMessage `json:"createdAt"`
	TTL       json.RawMessage `json:"ttl"`
}

// DecodeClip parses a stored value and normalizes it for rendering.
// createdAt falls back to now when absent or zero; ttl falls back to 600.
func DecodeClip(data []byte, now time.Time) (*Clip, error) {
	var raw storedClip
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode clip: %w", err)
	}

	clip := &Clip{
		Content:   coerceContent(raw.Content),
		ReadOnce:  truthy(raw.ReadOnce),
		Lang:      normalizeLang(raw.Lang),
		CreatedAt: now.UnixMilli(),
		TTL:       DefaultTTLSeconds,
	}
	if n, ok := toNumber(raw.CreatedAt); ok && n != 0 && !math.IsInf(n, 0) {
		clip.CreatedAt = int64(n)
	}
	if n, ok := toNumber(raw.TTL); ok && n != 0 && !math.IsInf(n, 0) {
		clip.TTL = int64(n)
	}
	return clip, nil
}

func normalizeTTL(raw json.RawMessage) (int64, error) {
	n, ok := toNumber(raw)
	if !ok || n == 0 {
		return DefaultTTLSeconds, nil
	}
	if math.IsInf(n, 0) || n < 1 || n > float64(MaxTTLSeconds) {
		return 0, ErrInvalidTTL
	}
	return int64(math.Floor(n)), nil
}

func normalizeLang(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil && s == LangZH {
		return LangZH
	}
	return LangEN
}

func coerceContent(raw json.RawMessage) string {
	if isAbsent(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

// truthy reports whether a JSON value is truthy: everything except absent,
// null, false, 0 and "".
func truthy(raw json.RawMessage) bool {
	if isAbsent(raw) {
		return false
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch val := v.(type) {
	case bool:
		return val
	case float64:
		return val != 0
	case string:
		return val != ""
	default:
		return true
	}
}

// toNumber converts a JSON value to a number. ok is false when the value
// has no numeric reading (absent, non-numeric string, array, object).
func toNumber(raw json.RawMessage) (float64, bool) {
	if isAbsent(raw) {
		return 0, false
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, false
	}
	switch val := v.(type) {
	case float64:
		return val, true
	case bool:
		if val {
			return 1, true
		}
		return 0, true
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return 0, true
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(n) {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

func isAbsent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
