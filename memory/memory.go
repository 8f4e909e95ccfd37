// Package memory provides an in-memory message store and directory. It backs
// tests and local development runs without Postgres.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/tradepost/messaging/api"
)

// Store holds messages, users and listings in memory. It implements both
// api.DB and api.Directory. Safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	messages []api.Message
	users    map[string]api.Participant
	listings map[string]struct{}
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		users:    make(map[string]api.Participant),
		listings: make(map[string]struct{}),
	}
}

// AddUser seeds the directory with a user profile.
func (s *Store) AddUser(p api.Participant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[p.ID] = p
}

// AddListing seeds the directory with a listing id.
func (s *Store) AddListing(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listings[id] = struct{}{}
}

// InsertMessage appends the message, assigning a fresh id and resolving both
// participants' profiles. The read flag always starts false.
func (s *Store) InsertMessage(_ context.Context, msg api.Message) (api.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg.ID = uuid.NewString()
	msg.Read = false
	msg.Sender = s.users[msg.SenderID]
	msg.Receiver = s.users[msg.ReceiverID]
	s.messages = append(s.messages, msg)
	return msg, nil
}

// ListUserMessages returns every message sent or received by the user.
func (s *Store) ListUserMessages(_ context.Context, userID string) ([]api.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]api.Message, 0)
	for _, m := range s.messages {
		if m.SenderID == userID || m.ReceiverID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

// ListThreadMessages returns the history between the two users in either
// direction, oldest first, ties broken by id.
func (s *Store) ListThreadMessages(_ context.Context, userID, otherUserID string) ([]api.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]api.Message, 0)
	for _, m := range s.messages {
		if (m.SenderID == userID && m.ReceiverID == otherUserID) ||
			(m.SenderID == otherUserID && m.ReceiverID == userID) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// MarkMessagesRead sets the read flag on every message in ids.
func (s *Store) MarkMessagesRead(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	for i := range s.messages {
		if _, ok := set[s.messages[i].ID]; ok {
			s.messages[i].Read = true
		}
	}
	return nil
}

// GetUser returns the seeded profile, or api.ErrUserNotFound.
func (s *Store) GetUser(_ context.Context, id string) (api.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.users[id]
	if !ok {
		return api.Participant{}, api.ErrUserNotFound
	}
	return p, nil
}

// ListingExists reports whether the listing id has been seeded.
func (s *Store) ListingExists(_ context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.listings[id]
	return ok, nil
}
