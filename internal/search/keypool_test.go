package search

import (
	"errors"
	"testing"
)

func TestKeyPool_Rotation(t *testing.T) {
	pool := NewKeyPool([]string{"key-a", "key-b", "key-c"})

	if got := pool.Current(); got != "key-a" {
		t.Errorf("Expected key-a, got %s", got)
	}

	if !pool.Rotate() {
		t.Fatal("Expected rotation to succeed with keys remaining")
	}
	if got := pool.Current(); got != "key-b" {
		t.Errorf("Expected key-b after rotation, got %s", got)
	}

	if !pool.Rotate() {
		t.Fatal("Expected second rotation to succeed")
	}
	if got := pool.Current(); got != "key-c" {
		t.Errorf("Expected key-c after second rotation, got %s", got)
	}

	if pool.Rotate() {
		t.Error("Expected rotation to fail once all keys are exhausted")
	}
	if got := pool.Current(); got != "" {
		t.Errorf("Expected empty key after exhaustion, got %s", got)
	}
}

func TestKeyPool_SingleKey(t *testing.T) {
	pool := NewKeyPool([]string{"only"})

	if got := pool.Current(); got != "only" {
		t.Errorf("Expected only, got %s", got)
	}
	if pool.Rotate() {
		t.Error("Single-key pool should exhaust on first rotation")
	}
}

func TestIsQuotaError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"quota", errors.New("monthly quota exceeded"), true},
		{"usage limit", errors.New("API usage limit reached"), true},
		{"rate limit", errors.New("Rate Limit hit"), true},
		{"429", errors.New("too many requests"), true},
		{"transport", errors.New("connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsQuotaError(tt.err); got != tt.want {
				t.Errorf("IsQuotaError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
