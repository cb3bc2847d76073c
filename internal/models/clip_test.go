package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestParseCreateRequestRejectsNonObjects(t *testing.T) {
	bodies := []string{"", "   ", "null", "[]", "123", `"text"`, "not json", "{", `{"content": }`}
	for _, body := range bodies {
		if _, err := ParseCreateRequest([]byte(body)); !errors.Is(err, ErrInvalidBody) {
			t.Errorf("ParseCreateRequest(%q) error = %v, want ErrInvalidBody", body, err)
		}
	}
}

func TestNormalizeDefaults(t *testing.T) {
	req, err := ParseCreateRequest([]byte(`{}`))
	if err != nil {
		t.Fatalf("ParseCreateRequest failed: %v", err)
	}
	params, err := req.Normalize()
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	want := CreateParams{Content: "", ReadOnce: false, TTL: DefaultTTLSeconds, Lang: LangEN}
	if params != want {
		t.Errorf("Normalize() = %+v, want %+v", params, want)
	}
}

func TestNormalizeCoercionTable(t *testing.T) {
	tests := []struct {
		name string
		body string
		want CreateParams
	}{
		{"full request", `{"content":"hello","readOnce":true,"ttl":60,"lang":"en"}`, CreateParams{"hello", true, 60, LangEN}},
		{"zh", `{"lang":"zh"}`, CreateParams{"", false, 600, LangZH}},
		{"uppercase zh is en", `{"lang":"ZH"}`, CreateParams{"", false, 600, LangEN}},
		{"lang not a string", `{"lang":1}`, CreateParams{"", false, 600, LangEN}},
		{"null content", `{"content":null}`, CreateParams{"", false, 600, LangEN}},
		{"numeric content", `{"content":42}`, CreateParams{"42", false, 600, LangEN}},
		{"object content", `{"content":{"a": 1}}`, CreateParams{`{"a":1}`, false, 600, LangEN}},
		{"readOnce string false is truthy", `{"readOnce":"false"}`, CreateParams{"", true, 600, LangEN}},
		{"readOnce 1", `{"readOnce":1}`, CreateParams{"", true, 600, LangEN}},
		{"readOnce 0", `{"readOnce":0}`, CreateParams{"", false, 600, LangEN}},
		{"readOnce empty string", `{"readOnce":""}`, CreateParams{"", false, 600, LangEN}},
		{"readOnce empty array", `{"readOnce":[]}`, CreateParams{"", true, 600, LangEN}},
		{"readOnce null", `{"readOnce":null}`, CreateParams{"", false, 600, LangEN}},
		{"ttl zero", `{"ttl":0}`, CreateParams{"", false, 600, LangEN}},
		{"ttl null", `{"ttl":null}`, CreateParams{"", false, 600, LangEN}},
		{"ttl numeric string", `{"ttl":" 120 "}`, CreateParams{"", false, 120, LangEN}},
		{"ttl non-numeric string", `{"ttl":"soon"}`, CreateParams{"", false, 600, LangEN}},
		{"ttl NaN string", `{"ttl":"NaN"}`, CreateParams{"", false, 600, LangEN}},
		{"ttl empty string", `{"ttl":""}`, CreateParams{"", false, 600, LangEN}},
		{"ttl false", `{"ttl":false}`, CreateParams{"", false, 600, LangEN}},
		{"ttl true", `{"ttl":true}`, CreateParams{"", false, 1, LangEN}},
		{"ttl array", `{"ttl":[5]}`, CreateParams{"", false, 600, LangEN}},
		{"ttl fraction floors", `{"ttl":90.9}`, CreateParams{"", false, 90, LangEN}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := ParseCreateRequest([]byte(tt.body))
			if err != nil {
				t.Fatalf("ParseCreateRequest failed: %v", err)
			}
			got, err := req.Normalize()
			if err != nil {
				t.Fatalf("Normalize failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Normalize() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestNormalizeInvalidTTL(t *testing.T) {
	bodies := []string{
		`{"ttl":-5}`,
		`{"ttl":0.5}`,
		`{"ttl":"-1"}`,
		`{"ttl":"Infinity"}`,
		`{"ttl":1e12}`,
	}
	for _, body := range bodies {
		req, err := ParseCreateRequest([]byte(body))
		if err != nil {
			t.Fatalf("ParseCreateRequest(%s) failed: %v", body, err)
		}
		if _, err := req.Normalize(); !errors.Is(err, ErrInvalidTTL) {
			t.Errorf("Normalize(%s) error = %v, want ErrInvalidTTL", body, err)
		}
	}
}

func TestDecodeClipRoundTrip(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	clip := &Clip{Content: "# hi", ReadOnce: true, Lang: LangZH, CreatedAt: 1_699_999_999_000, TTL: 60}
	data, err := clip.Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var layout map[string]any
	if err := json.Unmarshal(data, &layout); err != nil {
		t.Fatalf("stored value is not JSON: %v", err)
	}
	for _, key := range []string{"content", "readOnce", "lang", "createdAt", "ttl"} {
		if _, ok := layout[key]; !ok {
			t.Errorf("stored value missing key %q: %s", key, data)
		}
	}

	got, err := DecodeClip(data, now)
	if err != nil {
		t.Fatalf("DecodeClip failed: %v", err)
	}
	if *got != *clip {
		t.Errorf("DecodeClip() = %+v, want %+v", got, clip)
	}
}

func TestDecodeClipFallbacks(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)

	got, err := DecodeClip([]byte(`{"content":"x","lang":"fr","createdAt":"bogus","ttl":0,"readOnce":"yes"}`), now)
	if err != nil {
		t.Fatalf("DecodeClip failed: %v", err)
	}
	if got.Lang != LangEN {
		t.Errorf("Lang = %q, want en", got.Lang)
	}
	if got.CreatedAt != now.UnixMilli() {
		t.Errorf("CreatedAt = %d, want now %d", got.CreatedAt, now.UnixMilli())
	}
	if got.TTL != DefaultTTLSeconds {
		t.Errorf("TTL = %d, want %d", got.TTL, DefaultTTLSeconds)
	}
	if !got.ReadOnce {
		t.Error("ReadOnce should be coerced to true")
	}

	if _, err := DecodeClip([]byte("not json"), now); err == nil {
		t.Error("Expected error decoding corrupt value")
	}
}

func TestClipTimes(t *testing.T) {
	created := time.UnixMilli(1_700_000_000_000)
	clip := &Clip{CreatedAt: created.UnixMilli(), TTL: 60}

	if !clip.ExpiresAt().Equal(created.Add(time.Minute)) {
		t.Errorf("ExpiresAt = %v, want %v", clip.ExpiresAt(), created.Add(time.Minute))
	}
	if got := clip.Remaining(created.Add(45 * time.Second)); got != 15*time.Second {
		t.Errorf("Remaining = %v, want 15s", got)
	}
	if got := clip.Remaining(created.Add(2 * time.Minute)); got != 0 {
		t.Errorf("Remaining after expiry = %v, want 0", got)
	}
}
