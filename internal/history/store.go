// ABOUTME: Typed transcript store layered over a durable Backend
// ABOUTME: Encodes transcripts as JSON and treats unreadable entries as absent

package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/2389/askme/internal/chat"
)

// Store loads and saves transcripts keyed by conversation key.
type Store struct {
	backend Backend
	logger  *slog.Logger
}

// New creates a Store over backend. Pass nil logger for default.
func New(backend Backend, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		backend: backend,
		logger:  logger.With("component", "history"),
	}
}

// Load returns the transcript stored under key. The boolean is false when
// nothing usable is stored, including read failures and corrupt data.
func (s *Store) Load(ctx context.Context, key chat.Key) (chat.Transcript, bool) {
	data, err := s.backend.Get(ctx, key.String())
	if errors.Is(err, ErrNotFound) {
		return nil, false
	}
	if err != nil {
		s.logger.Error("failed to read transcript", "conversation_key", key, "error", err)
		return nil, false
	}

	t, err := decode(data)
	if err != nil {
		s.logger.Warn("ignoring stored transcript", "conversation_key", key, "error", err)
		return nil, false
	}

	return t, true
}

// Save overwrites the transcript stored under key.
func (s *Store) Save(ctx context.Context, key chat.Key, t chat.Transcript) error {
	data, err := encode(t)
	if err != nil {
		return err
	}
	if err := s.backend.Put(ctx, key.String(), data); err != nil {
		return fmt.Errorf("saving %s: %w", key, err)
	}
	return nil
}

// Delete removes the transcript stored under key.
func (s *Store) Delete(ctx context.Context, key chat.Key) error {
	if err := s.backend.Delete(ctx, key.String()); err != nil {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}

// Keys lists every conversation key with stored history.
func (s *Store) Keys(ctx context.Context) ([]chat.Key, error) {
	raw, err := s.backend.Keys(ctx)
	if err != nil {
		return nil, err
	}

	keys := make([]chat.Key, len(raw))
	for i, k := range raw {
		keys[i] = chat.Key(k)
	}
	return keys, nil
}

// Close closes the underlying backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

func encode(t chat.Transcript) ([]byte, error) {
	if t == nil {
		t = chat.Transcript{}
	}
	data, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("encoding transcript: %w", err)
	}
	return data, nil
}

func decode(data []byte) (chat.Transcript, error) {
	var t chat.Transcript
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if t == nil {
		return nil, fmt.Errorf("%w: null transcript", ErrCorrupt)
	}
	for i, m := range t {
		if !m.Kind.Valid() {
			return nil, fmt.Errorf("%w: message %d has type %q", ErrCorrupt, i, m.Kind)
		}
	}
	return t, nil
}
