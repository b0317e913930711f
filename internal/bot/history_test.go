package bot

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestHistoryStore(t *testing.T, window int) *HistoryStore {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewHistoryStore(client, window)
}

func TestHistoryStore_RoundTrip(t *testing.T) {
	store := newTestHistoryStore(t, 10)
	ctx := context.Background()

	history := []ChatMessage{
		{Role: ChatRoleUser, Content: "Hi"},
		{Role: ChatRoleAssistant, Content: "Hello!"},
	}

	if err := store.Save(ctx, "919999", history); err != nil {
		t.Fatal(err)
	}

	loaded, err := store.Load(ctx, "919999")
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != 2 || loaded[0].Content != "Hi" || loaded[1].Content != "Hello!" {
		t.Errorf("loaded = %+v", loaded)
	}
}

func TestHistoryStore_UnknownSenderIsEmpty(t *testing.T) {
	store := newTestHistoryStore(t, 10)

	loaded, err := store.Load(context.Background(), "unknown")
	if err != nil {
		t.Fatal(err)
	}
	if loaded != nil {
		t.Errorf("expected empty history, got %+v", loaded)
	}
}

func TestHistoryStore_TrimsToWindow(t *testing.T) {
	store := newTestHistoryStore(t, 4)
	ctx := context.Background()

	var history []ChatMessage
	for i := 0; i < 10; i++ {
		role := ChatRoleUser
		if i%2 == 1 {
			role = ChatRoleAssistant
		}
		history = append(history, ChatMessage{Role: role, Content: string(rune('a' + i))})
	}

	if err := store.Save(ctx, "919999", history); err != nil {
		t.Fatal(err)
	}

	loaded, err := store.Load(ctx, "919999")
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != 4 {
		t.Fatalf("len = %d, want 4", len(loaded))
	}
	if loaded[0].Content != "g" || loaded[3].Content != "j" {
		t.Errorf("kept wrong turns: %+v", loaded)
	}
}
