package prefs

import (
	"context"
	"sync"

	"github.com/vbonduro/roomplants/internal/domain"
)

// MemoryStore keeps preferences in process. Used when no Redis address is
// configured; state is lost on restart.
type MemoryStore struct {
	mu    sync.RWMutex
	chats map[string]Preferences
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{chats: make(map[string]Preferences)}
}

func (s *MemoryStore) Get(_ context.Context, chatID string) (Preferences, error) {
	if err := checkChatID(chatID); err != nil {
		return Preferences{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.chats[chatID], nil
}

func (s *MemoryStore) SetCity(_ context.Context, chatID, city string) error {
	if err := checkChatID(chatID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.chats[chatID]
	p.City = city
	s.chats[chatID] = p
	return nil
}

func (s *MemoryStore) SetEnvironment(_ context.Context, chatID string, env domain.Environment) error {
	if err := checkChatID(chatID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.chats[chatID]
	p.Environment = env
	s.chats[chatID] = p
	return nil
}
