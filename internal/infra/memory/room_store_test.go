package memory

import (
	"context"
	"errors"
	"testing"

	"cipherquiz-service/internal/domain"
)

func TestRoomStoreSnapshotDoesNotAlias(t *testing.T) {
	ctx := context.Background()
	store := NewRoomStore()

	room := &domain.Room{
		Code:       "ABC123",
		Name:       "room",
		AdminToken: "tok",
		Config:     domain.DefaultConfig(),
		Participants: []*domain.Participant{
			{ParticipantID: "p1", DisplayName: "Alice"},
		},
		Quiz:        map[string]*domain.ParticipantQuizState{},
		ProctorLogs: map[string][]domain.ProctorEvent{},
	}
	if err := store.Create(ctx, room); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Mutating the live object must not change the stored snapshot.
	room.Name = "renamed"
	room.Participants[0].DisplayName = "Mallory"

	got, err := store.Get(ctx, "ABC123")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "room" {
		t.Errorf("snapshot name = %q, want %q", got.Name, "room")
	}
	if got.Participants[0].DisplayName != "Alice" {
		t.Errorf("snapshot participant = %q, want Alice", got.Participants[0].DisplayName)
	}
}

func TestRoomStoreNotFound(t *testing.T) {
	store := NewRoomStore()
	if _, err := store.Get(context.Background(), "NOPE01"); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Errorf("Get unknown: err = %v, want ErrRoomNotFound", err)
	}
	if _, err := store.GetArchived(context.Background(), "NOPE01"); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Errorf("GetArchived unknown: err = %v, want ErrRoomNotFound", err)
	}
}

func TestRoomStoreArchiveAndRemove(t *testing.T) {
	ctx := context.Background()
	store := NewRoomStore()

	for _, code := range []string{"BBB222", "AAA111"} {
		room := &domain.Room{Code: code, State: domain.RoomFinished}
		if err := store.Create(ctx, room); err != nil {
			t.Fatalf("Create %s: %v", code, err)
		}
		if err := store.Archive(ctx, room); err != nil {
			t.Fatalf("Archive %s: %v", code, err)
		}
		if err := store.Remove(ctx, code); err != nil {
			t.Fatalf("Remove %s: %v", code, err)
		}
	}

	if _, err := store.Get(ctx, "AAA111"); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Error("removed room still present")
	}
	archived, err := store.ListArchived(ctx)
	if err != nil {
		t.Fatalf("ListArchived: %v", err)
	}
	if len(archived) != 2 {
		t.Fatalf("archived rooms = %d, want 2", len(archived))
	}
	if archived[0].Code != "AAA111" || archived[1].Code != "BBB222" {
		t.Errorf("archive order = %s, %s; want code order", archived[0].Code, archived[1].Code)
	}
}

func TestQuestionStoreAddDelete(t *testing.T) {
	ctx := context.Background()
	store := NewQuestionStore()

	added, err := store.Add(ctx, domain.CustomQuestion{Topic: "caesar", Mode: "Encrypt", Key: "3", Text: "HELLO"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if added.ID == "" {
		t.Fatal("no id minted on add")
	}
	if added.CreatedAt.IsZero() {
		t.Error("createdAt not stamped")
	}

	all, err := store.CustomQuestions(ctx)
	if err != nil || len(all) != 1 {
		t.Fatalf("CustomQuestions = %d entries, err %v", len(all), err)
	}

	if err := store.Delete(ctx, added.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.Delete(ctx, added.ID); !errors.Is(err, domain.ErrCustomQuestionNotFound) {
		t.Errorf("double delete err = %v, want ErrCustomQuestionNotFound", err)
	}
}
