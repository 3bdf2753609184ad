package session

import (
	"sync"
	"testing"

	"github.com/clipbot/clipbot/internal/timecode"
)

func testRequest(url string) PendingRequest {
	return PendingRequest{
		URL:   url,
		Start: timecode.Timestamp{Seconds: 10},
		End:   timecode.Timestamp{Seconds: 30},
	}
}

func TestMemoryStore_PutGet(t *testing.T) {
	s := NewMemoryStore()

	if _, ok := s.Get(1); ok {
		t.Fatal("Get on empty store should report not found")
	}

	s.Put(1, testRequest("https://youtu.be/abc"))

	req, ok := s.Get(1)
	if !ok {
		t.Fatal("Get after Put should find the entry")
	}
	if req.URL != "https://youtu.be/abc" {
		t.Errorf("req.URL = %q, want %q", req.URL, "https://youtu.be/abc")
	}

	// Get does not consume.
	if _, ok := s.Get(1); !ok {
		t.Error("Get must not remove the entry")
	}
}

func TestMemoryStore_PutOverwrites(t *testing.T) {
	s := NewMemoryStore()
	s.Put(1, testRequest("https://youtu.be/first"))
	s.Put(1, testRequest("https://youtu.be/second"))

	req, ok := s.Take(1)
	if !ok {
		t.Fatal("Take should find the entry")
	}
	if req.URL != "https://youtu.be/second" {
		t.Errorf("req.URL = %q, want the overwritten value", req.URL)
	}
}

func TestMemoryStore_TakeConsumes(t *testing.T) {
	s := NewMemoryStore()
	s.Put(7, testRequest("https://youtu.be/abc"))

	if _, ok := s.Take(7); !ok {
		t.Fatal("first Take should succeed")
	}
	if _, ok := s.Take(7); ok {
		t.Fatal("second Take before any Put must return not found")
	}
}

func TestMemoryStore_ChatsAreIndependent(t *testing.T) {
	s := NewMemoryStore()
	s.Put(1, testRequest("https://youtu.be/one"))
	s.Put(2, testRequest("https://youtu.be/two"))

	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}

	if _, ok := s.Take(1); !ok {
		t.Fatal("Take(1) should succeed")
	}
	if _, ok := s.Get(2); !ok {
		t.Error("taking chat 1 must not touch chat 2")
	}
}

func TestMemoryStore_ConcurrentTakeDispatchesOnce(t *testing.T) {
	s := NewMemoryStore()
	s.Put(1, testRequest("https://youtu.be/abc"))

	const racers = 16
	var wg sync.WaitGroup
	won := make(chan struct{}, racers)

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := s.Take(1); ok {
				won <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(won)

	wins := 0
	for range won {
		wins++
	}
	if wins != 1 {
		t.Errorf("%d goroutines won the Take race, want exactly 1", wins)
	}
}
