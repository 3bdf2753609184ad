// Package session holds the per-chat pending clip request awaiting a format
// choice. Entries live only for the lifetime of the process.
package session

import (
	"sync"

	"github.com/clipbot/clipbot/internal/timecode"
)

// PendingRequest is a parsed (url, start, end) tuple waiting for the user to
// pick audio or video.
type PendingRequest struct {
	URL   string
	Start timecode.Timestamp
	End   timecode.Timestamp
}

// Store maps a chat to its single pending request. Put overwrites any
// existing entry; Take removes the entry it returns. Implementations must
// make Take atomic so two racing format selections for the same chat cannot
// both dispatch a pipeline.
type Store interface {
	Get(chatID int64) (PendingRequest, bool)
	Put(chatID int64, req PendingRequest)
	Take(chatID int64) (PendingRequest, bool)
	Len() int
}

// MemoryStore is the in-process Store implementation. Entries have no expiry:
// a stale pending request stays valid until overwritten or consumed.
type MemoryStore struct {
	mu      sync.Mutex
	pending map[int64]PendingRequest
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{pending: make(map[int64]PendingRequest)}
}

func (s *MemoryStore) Get(chatID int64) (PendingRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.pending[chatID]
	return req, ok
}

func (s *MemoryStore) Put(chatID int64, req PendingRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[chatID] = req
}

// Take returns the pending request for the chat and removes it in the same
// critical section.
func (s *MemoryStore) Take(chatID int64) (PendingRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.pending[chatID]
	if ok {
		delete(s.pending, chatID)
	}
	return req, ok
}

func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
