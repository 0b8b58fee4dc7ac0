package stub

import (
	"fmt"
	"sync"
	"time"

	"github.com/mailpane/mailpane/internal/model"
)

// Store is the stub's in-memory mailbox. Messages keep their arrival
// order; the unread endpoint serves them oldest first.
type Store struct {
	mu       sync.RWMutex
	messages []model.Message
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// Add appends a new unread message and returns it.
func (s *Store) Add(from, subject, body string) model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := model.Message{
		ID:       newID(),
		From:     from,
		Subject:  subject,
		Body:     body,
		Avatar:   avatarFor(from),
		Received: time.Now().Unix(),
	}
	s.messages = append(s.messages, msg)
	return msg
}

// Remove deletes the message with the given id, reporting whether it
// was present.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, m := range s.messages {
		if m.ID == id {
			s.messages = append(s.messages[:i], s.messages[i+1:]...)
			return true
		}
	}
	return false
}

// Unread returns a copy of the current messages, oldest first.
func (s *Store) Unread() []model.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Len reports the current unread count.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// avatarFor points at a deterministic placeholder avatar per sender.
func avatarFor(from string) string {
	return fmt.Sprintf("https://i.pravatar.cc/48?u=%s", from)
}
