package utils

import (
	"testing"
	"time"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "s3cret-pass" {
		t.Fatal("hash equals plaintext")
	}
	if !CheckPasswordHash("s3cret-pass", hash) {
		t.Error("expected password to match its hash")
	}
	if CheckPasswordHash("wrong", hash) {
		t.Error("expected wrong password to be rejected")
	}
}

func TestJitterBounds(t *testing.T) {
	if got := Jitter(0); got != 0 {
		t.Fatalf("Jitter(0) = %v, want 0", got)
	}
	for i := 0; i < 100; i++ {
		if got := Jitter(10 * time.Millisecond); got < 0 || got >= 10*time.Millisecond {
			t.Fatalf("Jitter out of range: %v", got)
		}
	}
}

func TestFoldKeyword(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Laptop ", "laptop"},
		{"MONITOR", "monitor"},
		{"Straße", "strasse"},
		{"STRASSE", "strasse"},
		{"Écran 27", "écran 27"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := FoldKeyword(tt.in); got != tt.want {
			t.Errorf("FoldKeyword(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestContainsPattern(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"bike", "%bike%"},
		{"100%", "%100!%%"},
		{"a_b", "%a!_b%"},
		{"hi!", "%hi!!%"},
	}
	for _, tt := range tests {
		if got := ContainsPattern(tt.in); got != tt.want {
			t.Errorf("ContainsPattern(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  HR@Corp.IO "); got != "hr@corp.io" {
		t.Errorf("NormalizeEmail = %q", got)
	}
}
