package validator

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidEmail(t *testing.T) {
	valid := []string{"test@example.com", "user.name+1@domain.co", "a@b.cd"}
	invalid := []string{"test@", "@example.com", "test@com", "test@domain", " ", ""}
	for _, email := range valid {
		if !IsValidEmail(email) {
			t.Errorf("IsValidEmail(%q) = false, want true", email)
		}
	}
	for _, email := range invalid {
		if IsValidEmail(email) {
			t.Errorf("IsValidEmail(%q) = true, want false", email)
		}
	}
}

func TestIsValidUUID(t *testing.T) {
	for _, id := range []string{
		"0188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b",
		"123e4567-e89b-42d3-a456-426614174000",
	} {
		if !IsValidUUID(id) {
			t.Errorf("IsValidUUID(%q) = false, want true", id)
		}
	}
	for _, id := range []string{"", "abc", "123e4567e89b42d3a456426614174000", "{123e4567-e89b-42d3-a456-426614174000}"} {
		if IsValidUUID(id) {
			t.Errorf("IsValidUUID(%q) = true, want false", id)
		}
	}
}

func TestIsValidStateCode(t *testing.T) {
	for _, code := range []string{"CA", "ny", "Tx"} {
		if !IsValidStateCode(code) {
			t.Errorf("IsValidStateCode(%q) = false, want true", code)
		}
	}
	for _, code := range []string{"", "C", "CAL", "C1"} {
		if IsValidStateCode(code) {
			t.Errorf("IsValidStateCode(%q) = true, want false", code)
		}
	}
}

func TestIsValidHours(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"0", true},
		{"7.5", true},
		{"7.25", true},
		{"7.125", false},
		{"-1", false},
	}
	for _, c := range cases {
		if got := IsValidHours(decimal.RequireFromString(c.input)); got != c.want {
			t.Errorf("IsValidHours(%s) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestDecodeStrict(t *testing.T) {
	var dst struct {
		Reason string `json:"reason"`
	}

	if err := DecodeStrict(strings.NewReader(`{"reason":"missing friday"}`), &dst); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dst.Reason != "missing friday" {
		t.Errorf("Reason = %q", dst.Reason)
	}

	err := DecodeStrict(strings.NewReader(`{"reason":"x","extra":1}`), &dst)
	if !errors.Is(err, ErrMalformedBody) {
		t.Errorf("expected ErrMalformedBody for unknown field, got %v", err)
	}

	err = DecodeStrict(strings.NewReader(`{"reason":"x"}{"reason":"y"}`), &dst)
	if !errors.Is(err, ErrMalformedBody) {
		t.Errorf("expected ErrMalformedBody for trailing data, got %v", err)
	}
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Field: "field1", Message: "error1"},
		{Field: "field2", Message: "error2"},
	}
	want := "field1: error1; field2: error2"
	if got := errs.Error(); got != want {
		t.Errorf("ValidationErrors.Error() = %q, want %q", got, want)
	}
}

func TestValidationErrors_ToMap(t *testing.T) {
	errs := ValidationErrors{
		{Field: "reason", Message: "reason is required"},
	}
	m := errs.ToMap()
	if m["reason"] != "reason is required" {
		t.Errorf("ToMap()[reason] = %q", m["reason"])
	}
}
