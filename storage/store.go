package storage

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"promptedit/model"
)

// Store owns the conversation collection and the active pointer. All
// mutating operations read-then-write the collection under one lock and
// save the whole state through the port, so a deferred commit firing off
// the UI goroutine cannot interleave with a user action.
type Store struct {
	mu            sync.Mutex
	port          Port
	conversations []Conversation
	activeID      string
	now           func() time.Time
}

// Open loads persisted state through the port. When nothing has been saved
// yet it seeds one example conversation and activates it. Messages loaded
// from disk never carry identity tokens, so tokens are backfilled on the
// way in.
func Open(port Port) (*Store, error) {
	return open(port, time.Now)
}

func open(port Port, now func() time.Time) (*Store, error) {
	s := &Store{port: port, now: now}

	state, err := port.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation store: %w", err)
	}

	if state == nil {
		seed := seedConversation(s.now())
		s.conversations = []Conversation{seed}
		s.activeID = seed.ID
		if err := s.save(); err != nil {
			return nil, err
		}
		return s, nil
	}

	s.conversations = state.Conversations
	for i := range s.conversations {
		s.conversations[i].Messages = s.conversations[i].Messages.EnsureTokens()
	}
	s.activeID = state.ActiveID
	s.repointActive()

	return s, nil
}

// repointActive restores the invariant that the active pointer refers to an
// existing conversation whenever the collection is non-empty. Callers hold
// the lock (or are still single-threaded during Open).
func (s *Store) repointActive() {
	if len(s.conversations) == 0 {
		s.activeID = ""
		return
	}
	for _, c := range s.conversations {
		if c.ID == s.activeID {
			return
		}
	}
	s.activeID = s.conversations[0].ID
}

func (s *Store) save() error {
	state := &State{
		Conversations: s.conversations,
		ActiveID:      s.activeID,
	}
	if err := s.port.Save(state); err != nil {
		return fmt.Errorf("failed to save conversation store: %w", err)
	}
	return nil
}

// Conversations returns the collection ordered most-recently-updated first
func (s *Store) Conversations() []Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Conversation, len(s.conversations))
	for i, c := range s.conversations {
		out[i] = c.Clone()
	}
	return out
}

// ActiveID returns the id of the active conversation, or "" when the
// collection is empty
func (s *Store) ActiveID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// Active returns a copy of the active conversation
func (s *Store) Active() (Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.conversations {
		if c.ID == s.activeID {
			return c.Clone(), true
		}
	}
	return Conversation{}, false
}

// Get returns a copy of the conversation matching id
func (s *Store) Get(id string) (Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.conversations {
		if c.ID == id {
			return c.Clone(), true
		}
	}
	return Conversation{}, false
}

// Count returns the number of conversations in the store
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conversations)
}

// Create builds a new conversation with a default name, a single system
// message, and the default tool schema; inserts it at the front and makes
// it active.
func (s *Store) Create() (Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var messages model.Transcript
	messages, _ = messages.Append(model.RoleSystem)

	conv := Conversation{
		ID:        uuid.New().String(),
		Name:      "New conversation",
		UpdatedAt: s.now(),
		Tools:     defaultToolSchema,
		Messages:  messages,
	}

	s.conversations = append([]Conversation{conv}, s.conversations...)
	s.activeID = conv.ID

	if err := s.save(); err != nil {
		return Conversation{}, err
	}
	return conv.Clone(), nil
}

// Duplicate deep-copies the conversation matching id under a fresh id with
// " (copy)" appended to the name, inserts it at the front and activates it.
// Returns nil when no conversation matches.
func (s *Store) Duplicate(id string) (*Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var source *Conversation
	for i := range s.conversations {
		if s.conversations[i].ID == id {
			source = &s.conversations[i]
			break
		}
	}
	if source == nil {
		return nil, nil
	}

	copyConv := source.Clone()
	copyConv.ID = uuid.New().String()
	copyConv.Name = source.Name + " (copy)"
	copyConv.UpdatedAt = s.now()

	s.conversations = append([]Conversation{copyConv}, s.conversations...)
	s.activeID = copyConv.ID

	if err := s.save(); err != nil {
		return nil, err
	}
	result := copyConv.Clone()
	return &result, nil
}

// Delete removes the conversation matching id. When the deleted conversation
// was active, the first remaining conversation becomes active; an empty
// collection leaves no active conversation.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	remaining := s.conversations[:0]
	for _, c := range s.conversations {
		if c.ID != id {
			remaining = append(remaining, c)
		}
	}
	s.conversations = remaining
	s.repointActive()

	return s.save()
}

// SetActive switches the active pointer. Unknown ids are ignored.
func (s *Store) SetActive(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.conversations {
		if c.ID == id {
			s.activeID = id
			return s.save()
		}
	}
	return nil
}

// Persist is the single write path for name, tool schema, and transcript
// mutations. It refreshes UpdatedAt, upserts into the collection, re-sorts
// most-recently-updated first, and saves the whole state. Identity tokens
// never reach the port: the message serialization excludes them.
func (s *Store) Persist(id, name, toolsText string, messages model.Transcript) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := Conversation{
		ID:        id,
		Name:      name,
		UpdatedAt: s.now(),
		Tools:     toolsText,
		Messages:  messages.Clone(),
	}

	found := false
	for i := range s.conversations {
		if s.conversations[i].ID == id {
			s.conversations[i] = conv
			found = true
			break
		}
	}
	if !found {
		s.conversations = append(s.conversations, conv)
	}

	sort.SliceStable(s.conversations, func(i, j int) bool {
		return s.conversations[i].UpdatedAt.After(s.conversations[j].UpdatedAt)
	})

	return s.save()
}
