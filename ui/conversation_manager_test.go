package ui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"promptedit/config"
	"promptedit/storage"
)

// memPort is an in-memory persistence port for view-level tests
type memPort struct {
	state *storage.State
}

func (p *memPort) Load() (*storage.State, error) {
	return p.state, nil
}

func (p *memPort) Save(state *storage.State) error {
	saved := &storage.State{
		Conversations: make([]storage.Conversation, len(state.Conversations)),
		ActiveID:      state.ActiveID,
	}
	for i, c := range state.Conversations {
		saved.Conversations[i] = c.Clone()
	}
	p.state = saved
	return nil
}

// stubScheduler records armed timers and fires them on demand
type stubScheduler struct {
	timers []*stubTimer
}

type stubTimer struct {
	fn      func()
	stopped bool
}

func (t *stubTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

func (s *stubScheduler) AfterFunc(_ time.Duration, fn func()) storage.Timer {
	timer := &stubTimer{fn: fn}
	s.timers = append(s.timers, timer)
	return timer
}

func (s *stubScheduler) fire() {
	for _, timer := range s.timers {
		if !timer.stopped {
			timer.stopped = true
			timer.fn()
		}
	}
}

func newTestView(t *testing.T) (AppView, *stubScheduler) {
	t.Helper()

	store, err := storage.Open(&memPort{})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	sched := &stubScheduler{}
	appModel := newAppModel(&config.Config{AutosaveDelayMs: 400}, store, sched, "test")
	return NewAppView(appModel), sched
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

// A commit left pending by an earlier edit must not fire after a rename done
// through the manager and overwrite the new name with its older snapshot.
func TestManagerRenameSurvivesPendingCommit(t *testing.T) {
	view, sched := newTestView(t)
	id := view.appModel.ConversationID

	view.appModel.ScheduleSave()

	(&view).openManager()

	view.managerRenameMode = true
	view.managerRenameInput.SetValue("Renamed")
	updated, _ := view.handleManagerRenameKeys(tea.KeyMsg{Type: tea.KeyEnter})
	view = updated.(AppView)

	sched.fire()

	conv, ok := view.appModel.Store.Get(id)
	if !ok {
		t.Fatal("conversation disappeared from the store")
	}
	if conv.Name != "Renamed" {
		t.Errorf("name after timer fired = %q, want Renamed", conv.Name)
	}
	if view.appModel.Name != "Renamed" {
		t.Errorf("buffer name = %q, want Renamed", view.appModel.Name)
	}
}

// Deleting the active conversation must cancel its pending commit; the
// store's upsert would otherwise bring the conversation back.
func TestDeleteActiveDiscardsPendingCommit(t *testing.T) {
	view, sched := newTestView(t)
	id := view.appModel.ConversationID

	(&view).openManager()
	view.appModel.ScheduleSave()

	conv, ok := view.appModel.Store.Get(id)
	if !ok {
		t.Fatal("setup: active conversation missing")
	}
	view.confirmDelete = &conv

	updated, _ := view.handleDeleteConfirmKeys(keyRune('y'))
	view = updated.(AppView)

	sched.fire()

	if count := view.appModel.Store.Count(); count != 0 {
		t.Errorf("Count() after delete = %d, want 0", count)
	}
	if view.appModel.ConversationID != "" {
		t.Error("editing buffers still hold the deleted conversation")
	}
}

// A commit that outlives its conversation is dropped, even when the delete
// happened outside the confirmation flow.
func TestScheduledCommitSkipsDeletedConversation(t *testing.T) {
	view, sched := newTestView(t)
	id := view.appModel.ConversationID

	view.appModel.ScheduleSave()

	if err := view.appModel.Store.Delete(id); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	sched.fire()

	if count := view.appModel.Store.Count(); count != 0 {
		t.Errorf("Count() after commit fired = %d, want 0", count)
	}
	if _, ok := view.appModel.Store.Get(id); ok {
		t.Error("deleted conversation reappeared in the store")
	}
}
