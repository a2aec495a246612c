package chatstore

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is the database-less Store used when no database URL is
// configured. Contents are lost on restart.
type MemoryStore struct {
	mu        sync.RWMutex
	languages map[int64]string
	watches   map[int64]map[string]struct{}
	lastSeen  map[string]string
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		languages: make(map[int64]string),
		watches:   make(map[int64]map[string]struct{}),
		lastSeen:  make(map[string]string),
	}
}

func (s *MemoryStore) ChatLanguage(_ context.Context, chatID int64) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.languages[chatID], nil
}

func (s *MemoryStore) SetChatLanguage(_ context.Context, chatID int64, lang string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.languages[chatID] = lang
	return nil
}

func (s *MemoryStore) AddWatch(_ context.Context, chatID int64, handle string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watches[chatID] == nil {
		s.watches[chatID] = make(map[string]struct{})
	}
	s.watches[chatID][handle] = struct{}{}
	return nil
}

func (s *MemoryStore) RemoveWatch(_ context.Context, chatID int64, handle string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.watches[chatID], handle)
	return nil
}

func (s *MemoryStore) WatchesForChat(_ context.Context, chatID int64) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	handles := make([]string, 0, len(s.watches[chatID]))
	for h := range s.watches[chatID] {
		handles = append(handles, h)
	}
	sort.Strings(handles)
	return handles, nil
}

func (s *MemoryStore) Watches(_ context.Context) ([]Watch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var watches []Watch
	for chatID, handles := range s.watches {
		for h := range handles {
			watches = append(watches, Watch{ChatID: chatID, Handle: h})
		}
	}
	sort.Slice(watches, func(i, j int) bool {
		if watches[i].Handle != watches[j].Handle {
			return watches[i].Handle < watches[j].Handle
		}
		return watches[i].ChatID < watches[j].ChatID
	})
	return watches, nil
}

func (s *MemoryStore) LastSeenPostID(_ context.Context, handle string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSeen[handle], nil
}

func (s *MemoryStore) SetLastSeenPostID(_ context.Context, handle, postID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen[handle] = postID
	return nil
}

func (s *MemoryStore) Close() error { return nil }
