package mocks

import (
	"sync"

	"github.com/mcoot/symptomcheck/internal/dependencies/random"
)

// MockRandom hands out queued strings in order
type MockRandom struct {
	mu      sync.Mutex
	queue   []string
	next    int
	lengths []int
}

var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a MockRandom with the given strings queued
func NewMockRandom(values ...string) *MockRandom {
	return &MockRandom{queue: values}
}

// String returns the next queued string, or "" once the queue is exhausted
func (r *MockRandom) String(length int, _ string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lengths = append(r.lengths, length)
	if r.next >= len(r.queue) {
		return ""
	}
	result := r.queue[r.next]
	r.next++
	return result
}

// QueueString adds values to the String result queue
func (r *MockRandom) QueueString(values ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queue = append(r.queue, values...)
}

// Requested returns the lengths String was called with
func (r *MockRandom) Requested() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.lengths...)
}

// Reset clears the queue and recorded calls
func (r *MockRandom) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queue = nil
	r.next = 0
	r.lengths = nil
}
