package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func TestContextFieldsAreCarried(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "test", Output: &buf})

	ctx := logg.WithRequestID(context.Background(), "req-1")
	ctx = logg.WithOrderID(ctx, "GA-20260101-ABCD")
	logg.Info(ctx, "checkout.submitted")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if entry["request_id"] != "req-1" {
		t.Fatalf("expected request_id field, got %v", entry["request_id"])
	}
	if entry["order_id"] != "GA-20260101-ABCD" {
		t.Fatalf("expected order_id field, got %v", entry["order_id"])
	}
	if entry["service"] != "test" {
		t.Fatalf("expected service field, got %v", entry["service"])
	}
}

func TestErrorIncludesCause(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "test", Output: &buf})

	logg.Error(context.Background(), "send failed", errors.New("smtp down"))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if entry["error"] != "smtp down" {
		t.Fatalf("expected error field, got %v", entry["error"])
	}
	if _, ok := entry["stack"]; !ok {
		t.Fatal("expected stack on error entries")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"":         zerolog.InfoLevel,
		"debug":    zerolog.DebugLevel,
		" WARN ":   zerolog.WarnLevel,
		"nonsense": zerolog.InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v want %v", in, got, want)
		}
	}
}

func TestMaskEmail(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"maria@example.com", "m***@example.com"},
		{" Ελένη@example.gr ", "Ε***@example.gr"},
		{"no-at-sign", "***"},
		{"@example.com", "***"},
	}
	for _, tc := range cases {
		if got := MaskEmail(tc.in); got != tc.want {
			t.Fatalf("MaskEmail(%q) = %q want %q", tc.in, got, tc.want)
		}
	}
}

func TestWithCustomerMasksAddress(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "test", Output: &buf})

	logg.Info(logg.WithCustomer(context.Background(), "maria@example.com"), "checkout.partial")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if entry["customer_email"] != "m***@example.com" {
		t.Fatalf("expected masked email, got %v", entry["customer_email"])
	}
}
