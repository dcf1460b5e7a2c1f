package search

import (
	"strings"
	"sync"
)

// KeyPool rotates across API keys when one hits its quota. The rotation is
// one-way within a process: an exhausted key is never retried.
type KeyPool struct {
	mu        sync.Mutex
	keys      []string
	current   int
	exhausted map[int]bool
}

// NewKeyPool creates a pool over the given keys.
func NewKeyPool(keys []string) *KeyPool {
	return &KeyPool{
		keys:      keys,
		exhausted: make(map[int]bool),
	}
}

// Current returns the active key, or "" when every key is exhausted.
func (p *KeyPool) Current() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current >= len(p.keys) || p.exhausted[p.current] {
		return ""
	}
	return p.keys[p.current]
}

// Rotate marks the active key exhausted and advances to the next available
// one. It returns false when no keys remain.
func (p *KeyPool) Rotate() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.exhausted[p.current] = true
	for i := range p.keys {
		if !p.exhausted[i] {
			p.current = i
			return true
		}
	}
	return false
}

// Size returns the total number of keys in the pool.
func (p *KeyPool) Size() int {
	return len(p.keys)
}

// IsQuotaError reports whether an error message indicates a quota or usage
// limit, which warrants key rotation rather than a plain retry.
func IsQuotaError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "usage limit") ||
		strings.Contains(msg, "quota") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "too many requests")
}
