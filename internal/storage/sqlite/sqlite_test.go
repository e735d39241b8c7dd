package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/region23/calendar/internal/calendar"
	"github.com/region23/calendar/internal/storage/models"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	storage, err := New(":memory:")
	if err != nil {
		t.Fatalf("Failed to create test storage: %v", err)
	}
	t.Cleanup(func() { storage.Close() })
	return storage
}

func TestSaveAndGetSession(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	now := time.Date(2024, 10, 14, 14, 0, 0, 0, time.UTC)
	state := calendar.NewState(now).OpenClosureDialog("Ressource1", now)
	state, _ = state.SetClosureReason("Inventaire")

	session := &models.Session{ChatID: 42, MessageID: 7, State: state}
	if err := storage.SaveSession(ctx, session); err != nil {
		t.Fatalf("Failed to save session: %v", err)
	}

	got, ok, err := storage.GetSession(ctx, 42)
	if err != nil || !ok {
		t.Fatalf("Expected session, got ok=%v err=%v", ok, err)
	}
	if got.MessageID != 7 {
		t.Errorf("Expected message id 7, got %d", got.MessageID)
	}
	if got.State.Dialog != calendar.DialogClosure || got.State.Closure.Reason != "Inventaire" {
		t.Errorf("State did not round-trip: %+v", got.State)
	}
	if !got.State.Window.Start.Equal(state.Window.Start) {
		t.Errorf("Window start mismatch: %v vs %v", got.State.Window.Start, state.Window.Start)
	}
}

func TestGetSession_Missing(t *testing.T) {
	storage := newTestStorage(t)

	got, ok, err := storage.GetSession(context.Background(), 1)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if ok || got != nil {
		t.Error("Expected no session")
	}
}

func TestSaveSession_UpsertKeepsCreatedAt(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	created := time.Now().Add(-time.Hour).Truncate(time.Second)
	session := &models.Session{ChatID: 5, State: calendar.NewState(time.Now()), CreatedAt: created, UpdatedAt: created}
	if err := storage.SaveSession(ctx, session); err != nil {
		t.Fatal(err)
	}

	session.MessageID = 99
	session.CreatedAt = time.Now()
	session.UpdatedAt = time.Now()
	if err := storage.SaveSession(ctx, session); err != nil {
		t.Fatal(err)
	}

	got, _, err := storage.GetSession(ctx, 5)
	if err != nil {
		t.Fatal(err)
	}
	if got.MessageID != 99 {
		t.Errorf("Expected updated message id, got %d", got.MessageID)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt changed on update: %v vs %v", got.CreatedAt, created)
	}

	count, err := storage.CountSessions(ctx)
	if err != nil || count != 1 {
		t.Errorf("Expected 1 session, got %d (%v)", count, err)
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()
	now := time.Date(2024, 10, 14, 9, 0, 0, 0, time.UTC)

	first := calendar.NewState(now).Next()
	second := calendar.NewState(now).OpenFilter()

	if err := storage.SaveSession(ctx, &models.Session{ChatID: 1, State: first}); err != nil {
		t.Fatal(err)
	}
	if err := storage.SaveSession(ctx, &models.Session{ChatID: 2, State: second}); err != nil {
		t.Fatal(err)
	}

	a, _, _ := storage.GetSession(ctx, 1)
	b, _, _ := storage.GetSession(ctx, 2)
	if a.State.Dialog != calendar.DialogNone || b.State.Dialog != calendar.DialogFilter {
		t.Error("Dialogs leaked between chats")
	}
	if a.State.Window.Start.Equal(b.State.Window.Start) {
		t.Error("Windows leaked between chats")
	}
}

func TestDeleteAndIdleSessions(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()
	now := time.Now()

	old := &models.Session{ChatID: 1, State: calendar.NewState(now), UpdatedAt: now.Add(-2 * time.Hour)}
	fresh := &models.Session{ChatID: 2, State: calendar.NewState(now), UpdatedAt: now}
	gone := &models.Session{ChatID: 3, State: calendar.NewState(now), UpdatedAt: now}
	for _, s := range []*models.Session{old, fresh, gone} {
		if err := storage.SaveSession(ctx, s); err != nil {
			t.Fatal(err)
		}
	}

	if err := storage.DeleteSession(ctx, 3); err != nil {
		t.Fatal(err)
	}
	if err := storage.DeleteSession(ctx, 3); err != nil {
		t.Errorf("Deleting a missing session must succeed: %v", err)
	}

	sessions, err := storage.ListSessions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 2 || sessions[0].ChatID != 1 {
		t.Errorf("Expected oldest-first [1 2], got %d sessions", len(sessions))
	}

	n, err := storage.DeleteIdleSessions(ctx, now.Add(-time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("Expected 1 idle session removed, got %d", n)
	}
	if _, ok, _ := storage.GetSession(ctx, 2); !ok {
		t.Error("Fresh session must survive")
	}
}

func TestPing(t *testing.T) {
	storage := newTestStorage(t)
	if err := storage.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}
