package record

import (
	"context"
	"encoding/json"
	"fmt"

	"firebase.google.com/go/v4/db"
)

// FirebaseStore persists records in the Firebase Realtime Database, the
// store the classroom clients read their rosters and profiles from.
type FirebaseStore struct {
	client *db.Client
}

// NewFirebaseStore returns a Store backed by the given Realtime Database client.
func NewFirebaseStore(client *db.Client) *FirebaseStore {
	return &FirebaseStore{client: client}
}

func (s *FirebaseStore) ReadRecord(ctx context.Context, key string, v interface{}) error {
	var raw json.RawMessage
	if err := s.client.NewRef(key).Get(ctx, &raw); err != nil {
		return fmt.Errorf("failed to read record %q: %w", key, err)
	}
	// An absent path comes back as JSON null.
	if len(raw) == 0 || string(raw) == "null" {
		return ErrNotFound
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to decode record %q: %w", key, err)
	}
	return nil
}

func (s *FirebaseStore) WriteRecord(ctx context.Context, key string, v interface{}) error {
	if err := s.client.NewRef(key).Set(ctx, v); err != nil {
		return fmt.Errorf("failed to write record %q: %w", key, err)
	}
	return nil
}
