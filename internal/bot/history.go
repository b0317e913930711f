package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Conversations are a convenience cache, not a correctness-critical store:
// they expire on their own and losing one only costs the model some context.
const historyTTL = 24 * time.Hour

// HistoryStore keeps the recent turns of each sender's conversation in
// redis, trimmed to a fixed window.
type HistoryStore struct {
	client *redis.Client
	window int
}

func NewHistoryStore(client *redis.Client, window int) *HistoryStore {
	if window <= 0 {
		window = 10
	}

	return &HistoryStore{client: client, window: window}
}

// Load returns the stored turns for a sender; an unknown sender is an empty
// history, not an error.
func (s *HistoryStore) Load(ctx context.Context, senderID string) ([]ChatMessage, error) {
	const op = "bot.HistoryStore.Load"

	data, err := s.client.Get(ctx, historyKey(senderID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var history []ChatMessage
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return history, nil
}

// Save persists the history trimmed to the most recent window of turns.
func (s *HistoryStore) Save(ctx context.Context, senderID string, history []ChatMessage) error {
	const op = "bot.HistoryStore.Save"

	if len(history) > s.window {
		history = history[len(history)-s.window:]
	}

	data, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.client.Set(ctx, historyKey(senderID), data, historyTTL).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func historyKey(senderID string) string {
	return fmt.Sprintf("conversation:%s", senderID)
}
