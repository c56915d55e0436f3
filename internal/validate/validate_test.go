// SPDX-License-Identifier: MIT
package validate

import (
	"errors"
	"strings"
	"testing"
)

func TestValidator_Range(t *testing.T) {
	tests := []struct {
		name    string
		value   int
		wantErr bool
	}{
		{"lower bound", 1, false},
		{"upper bound", 10, false},
		{"below", 0, true},
		{"above", 11, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New()
			v.Range("Jobs", tt.value, 1, 10)
			if tt.wantErr && v.IsValid() {
				t.Errorf("expected error, got none")
			}
			if !tt.wantErr && !v.IsValid() {
				t.Errorf("unexpected error: %v", v.Err())
			}
		})
	}
}

func TestValidator_OneOfAndPositive(t *testing.T) {
	v := New()
	v.OneOf("Exporter", "grpc", []string{"grpc", "http"})
	v.Positive("Bitrate", 1)
	v.NonNegative("Grace", 0)
	if !v.IsValid() {
		t.Fatalf("unexpected error: %v", v.Err())
	}

	v.OneOf("Exporter", "udp", []string{"grpc", "http"})
	v.Positive("Bitrate", 0)
	if got := len(v.Errors()); got != 2 {
		t.Fatalf("expected 2 errors, got %d", got)
	}
}

func TestValidationError_Joined(t *testing.T) {
	v := New()
	v.NotEmpty("A", " ")
	v.RangeFloat("B", 2.5, 0, 1)

	err := v.Err()
	if err == nil {
		t.Fatal("expected error")
	}
	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if len(verr.Errors()) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(verr.Errors()))
	}
	if !strings.Contains(err.Error(), "; ") {
		t.Errorf("expected joined message, got %q", err.Error())
	}
}

func TestValidator_Custom(t *testing.T) {
	v := New()
	v.Custom("Resolution", "bogus", func(any) error { return errors.New("unparseable") })
	if v.IsValid() {
		t.Fatal("expected error")
	}
	if v.Errors()[0].Field != "Resolution" {
		t.Errorf("unexpected field %q", v.Errors()[0].Field)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    LogLevel
		wantErr bool
	}{
		{"debug", "debug", false},
		{" WARN ", "warn", false},
		{"trace", "trace", false},
		{"disabled", "disabled", false},
		{"verbose", "", true},
		{"fatal", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseLogLevel(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidLogLevel) {
				t.Errorf("ParseLogLevel(%q) err = %v, want ErrInvalidLogLevel", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestValidator_LogLevel(t *testing.T) {
	v := New()
	v.LogLevel("logLevel", "Info")
	v.LogLevel("logLevel", "loud")
	if len(v.Errors()) != 1 {
		t.Fatalf("got %d errors, want 1", len(v.Errors()))
	}
	if e := v.Errors()[0]; e.Field != "logLevel" || e.Value != "loud" {
		t.Errorf("unexpected error %+v", e)
	}
}
