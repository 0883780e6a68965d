package storage

import (
	"errors"
	"testing"
	"time"

	"promptedit/model"
)

// fakePort is an in-memory persistence port for store tests
type fakePort struct {
	state   *State
	saves   int
	loadErr error
	saveErr error
}

func (f *fakePort) Load() (*State, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.state, nil
}

func (f *fakePort) Save(state *State) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves++
	saved := &State{
		Conversations: make([]Conversation, len(state.Conversations)),
		ActiveID:      state.ActiveID,
	}
	for i, c := range state.Conversations {
		saved.Conversations[i] = c.Clone()
	}
	f.state = saved
	return nil
}

// fakeClock hands out strictly increasing timestamps
func fakeClock() func() time.Time {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	n := 0
	return func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Minute)
	}
}

func TestOpenSeedsOnFirstRun(t *testing.T) {
	port := &fakePort{}
	store, err := open(port, fakeClock())
	if err != nil {
		t.Fatalf("open() error = %v", err)
	}

	if store.Count() != 1 {
		t.Fatalf("first run Count() = %d, want 1", store.Count())
	}

	active, ok := store.Active()
	if !ok {
		t.Fatal("first run has no active conversation")
	}
	if active.Name != "Weather tool example" {
		t.Errorf("seed name = %q", active.Name)
	}
	if len(active.Messages) != 5 {
		t.Errorf("seed message count = %d, want 5", len(active.Messages))
	}
	for i, msg := range active.Messages {
		if msg.Token == "" {
			t.Errorf("seed message %d missing token", i)
		}
	}
	if active.Tools == "" {
		t.Error("seed conversation has no tool schema")
	}
	if port.saves != 1 {
		t.Errorf("seed saved %d times, want 1", port.saves)
	}
}

func TestOpenBackfillsTokens(t *testing.T) {
	content := "hello"
	port := &fakePort{state: &State{
		Conversations: []Conversation{{
			ID:   "c1",
			Name: "stored",
			Messages: model.Transcript{
				{Role: model.RoleUser, Content: &content},
			},
		}},
		ActiveID: "c1",
	}}

	store, err := open(port, fakeClock())
	if err != nil {
		t.Fatalf("open() error = %v", err)
	}

	active, _ := store.Active()
	if active.Messages[0].Token == "" {
		t.Error("loaded message missing backfilled token")
	}
}

func TestOpenRepointsDanglingActive(t *testing.T) {
	port := &fakePort{state: &State{
		Conversations: []Conversation{{ID: "c1", Name: "only"}},
		ActiveID:      "gone",
	}}

	store, err := open(port, fakeClock())
	if err != nil {
		t.Fatalf("open() error = %v", err)
	}

	if store.ActiveID() != "c1" {
		t.Errorf("ActiveID() = %q, want c1", store.ActiveID())
	}
}

func TestOpenPropagatesLoadError(t *testing.T) {
	port := &fakePort{loadErr: errors.New("disk on fire")}
	if _, err := open(port, fakeClock()); err == nil {
		t.Fatal("open() succeeded despite load error")
	}
}

func TestStoreCreate(t *testing.T) {
	store, port := newTestStore(t)

	conv, err := store.Create()
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if conv.ID == "" {
		t.Error("created conversation has no id")
	}
	if len(conv.Messages) != 1 || conv.Messages[0].Role != model.RoleSystem {
		t.Errorf("new conversation messages = %+v, want single system message", conv.Messages)
	}
	if conv.Tools == "" {
		t.Error("new conversation has no default tool schema")
	}
	if store.ActiveID() != conv.ID {
		t.Error("new conversation is not active")
	}
	if list := store.Conversations(); list[0].ID != conv.ID {
		t.Error("new conversation is not at the front")
	}
	if port.state.ActiveID != conv.ID {
		t.Error("active pointer not persisted")
	}
}

func TestStoreDuplicate(t *testing.T) {
	store, _ := newTestStore(t)
	source, _ := store.Active()

	t.Run("CopiesUnderFreshID", func(t *testing.T) {
		copied, err := store.Duplicate(source.ID)
		if err != nil {
			t.Fatalf("Duplicate() error = %v", err)
		}
		if copied == nil {
			t.Fatal("Duplicate() returned nil for a known id")
		}
		if copied.ID == source.ID {
			t.Error("duplicate shares the source id")
		}
		if copied.Name != source.Name+" (copy)" {
			t.Errorf("duplicate name = %q", copied.Name)
		}
		if len(copied.Messages) != len(source.Messages) {
			t.Errorf("duplicate message count = %d, want %d", len(copied.Messages), len(source.Messages))
		}
		if store.ActiveID() != copied.ID {
			t.Error("duplicate is not active")
		}
	})

	t.Run("UnknownIDReturnsNil", func(t *testing.T) {
		copied, err := store.Duplicate("nope")
		if err != nil {
			t.Fatalf("Duplicate() error = %v", err)
		}
		if copied != nil {
			t.Error("Duplicate() of unknown id returned a conversation")
		}
	})
}

func TestStoreDelete(t *testing.T) {
	t.Run("RepointsActiveToFirstRemaining", func(t *testing.T) {
		store, _ := newTestStore(t)
		first, _ := store.Create()
		second, _ := store.Create()

		if store.ActiveID() != second.ID {
			t.Fatalf("setup: active = %q", store.ActiveID())
		}

		if err := store.Delete(second.ID); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if store.ActiveID() != first.ID {
			t.Errorf("active after delete = %q, want %q", store.ActiveID(), first.ID)
		}
	})

	t.Run("LastConversationLeavesEmptyStore", func(t *testing.T) {
		store, port := newTestStore(t)
		active, _ := store.Active()

		if err := store.Delete(active.ID); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if store.Count() != 0 {
			t.Errorf("Count() = %d, want 0", store.Count())
		}
		if store.ActiveID() != "" {
			t.Errorf("ActiveID() = %q, want empty", store.ActiveID())
		}
		if port.state.ActiveID != "" {
			t.Error("empty active pointer not persisted")
		}
	})
}

func TestStoreSetActive(t *testing.T) {
	store, _ := newTestStore(t)
	first, _ := store.Active()
	second, _ := store.Create()

	if err := store.SetActive(first.ID); err != nil {
		t.Fatalf("SetActive() error = %v", err)
	}
	if store.ActiveID() != first.ID {
		t.Errorf("ActiveID() = %q, want %q", store.ActiveID(), first.ID)
	}

	// Unknown ids leave the pointer alone
	if err := store.SetActive("nope"); err != nil {
		t.Fatalf("SetActive(unknown) error = %v", err)
	}
	if store.ActiveID() != first.ID {
		t.Error("SetActive(unknown) moved the active pointer")
	}
	_ = second
}

func TestStorePersist(t *testing.T) {
	store, port := newTestStore(t)
	seed, _ := store.Active()

	t.Run("UpsertsAndSorts", func(t *testing.T) {
		older, _ := store.Create()

		// Editing the seed makes it most recently updated
		messages, _ := seed.Messages.Append(model.RoleUser)
		if err := store.Persist(seed.ID, "renamed", seed.Tools, messages); err != nil {
			t.Fatalf("Persist() error = %v", err)
		}

		list := store.Conversations()
		if list[0].ID != seed.ID {
			t.Error("edited conversation not sorted to the front")
		}
		if list[0].Name != "renamed" {
			t.Errorf("name = %q, want renamed", list[0].Name)
		}
		if len(list[0].Messages) != len(seed.Messages)+1 {
			t.Errorf("message count = %d, want %d", len(list[0].Messages), len(seed.Messages)+1)
		}
		if !list[0].UpdatedAt.After(list[1].UpdatedAt) {
			t.Error("UpdatedAt not refreshed")
		}
		_ = older
	})

	t.Run("UnknownIDAppends", func(t *testing.T) {
		before := store.Count()
		if err := store.Persist("brand-new", "fresh", "[]", nil); err != nil {
			t.Fatalf("Persist() error = %v", err)
		}
		if store.Count() != before+1 {
			t.Errorf("Count() = %d, want %d", store.Count(), before+1)
		}
	})

	t.Run("StateReachesPort", func(t *testing.T) {
		found := false
		for _, c := range port.state.Conversations {
			if c.ID == "brand-new" {
				found = true
			}
		}
		if !found {
			t.Error("persisted conversation missing from port state")
		}
	})
}

func newTestStore(t *testing.T) (*Store, *fakePort) {
	t.Helper()
	port := &fakePort{}
	store, err := open(port, fakeClock())
	if err != nil {
		t.Fatalf("open() error = %v", err)
	}
	return store, port
}
