// ABOUTME: Tests for the typed transcript Store
// ABOUTME: Covers round trip, idempotent save, delete, and corrupt-entry recovery

package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/askme/internal/chat"
)

func sampleTranscript() chat.Transcript {
	t0 := time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)
	return chat.Transcript{
		chat.NewMessage(chat.KindBot, chat.GreetingText("", "Ada"), t0),
		chat.NewMessage(chat.KindUser, "What projects have you built?", t0.Add(time.Second)),
		chat.NewMessage(chat.KindBot, "I built X and Y.", t0.Add(2*time.Second)),
	}
}

func TestStore_RoundTrip(t *testing.T) {
	s := New(NewMemoryBackend(), nil)
	ctx := context.Background()
	key := chat.ComputeKey("", "Ada")
	want := sampleTranscript()

	require.NoError(t, s.Save(ctx, key, want))

	got, ok := s.Load(ctx, key)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestStore_SaveIsIdempotent(t *testing.T) {
	backend := NewMemoryBackend()
	s := New(backend, nil)
	ctx := context.Background()
	key := chat.ComputeKey("Grace", "Ada")

	require.NoError(t, s.Save(ctx, key, sampleTranscript()))
	once, err := backend.Get(ctx, key.String())
	require.NoError(t, err)

	require.NoError(t, s.Save(ctx, key, sampleTranscript()))
	twice, err := backend.Get(ctx, key.String())
	require.NoError(t, err)

	assert.Equal(t, once, twice)
}

func TestStore_SaveOverwrites(t *testing.T) {
	s := New(NewMemoryBackend(), nil)
	ctx := context.Background()
	key := chat.ComputeKey("", "Ada")

	require.NoError(t, s.Save(ctx, key, sampleTranscript()))
	short := sampleTranscript()[:1]
	require.NoError(t, s.Save(ctx, key, short))

	got, ok := s.Load(ctx, key)
	require.True(t, ok)
	assert.Equal(t, short, got)
}

func TestStore_LoadMissing(t *testing.T) {
	s := New(NewMemoryBackend(), nil)

	got, ok := s.Load(context.Background(), chat.ComputeKey("", "Nobody"))
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestStore_Delete(t *testing.T) {
	s := New(NewMemoryBackend(), nil)
	ctx := context.Background()
	key := chat.ComputeKey("", "Ada")

	require.NoError(t, s.Save(ctx, key, sampleTranscript()))
	require.NoError(t, s.Delete(ctx, key))

	_, ok := s.Load(ctx, key)
	assert.False(t, ok)

	// deleting again is harmless
	assert.NoError(t, s.Delete(ctx, key))
}

func TestStore_CorruptEntriesLoadAsAbsent(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "{{{"},
		{"wrong shape", `{"type":"bot"}`},
		{"null", "null"},
		{"unknown kind", `[{"type":"system","content":"x","timestamp":"2026-10-19T09:30:00Z"}]`},
		{"bad timestamp", `[{"type":"bot","content":"x","timestamp":"yesterday"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := NewMemoryBackend()
			s := New(backend, nil)
			ctx := context.Background()
			key := chat.ComputeKey("", "Ada")

			require.NoError(t, backend.Put(ctx, key.String(), []byte(tt.body)))

			got, ok := s.Load(ctx, key)
			assert.False(t, ok)
			assert.Nil(t, got)
		})
	}
}

func TestDecode_WrapsErrCorrupt(t *testing.T) {
	_, err := decode([]byte("not json"))
	assert.True(t, errors.Is(err, ErrCorrupt))
}

type failingBackend struct {
	*MemoryBackend
}

func (f failingBackend) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, errors.New("disk on fire")
}

func (f failingBackend) Put(ctx context.Context, key string, value []byte) error {
	return errors.New("disk on fire")
}

func TestStore_BackendFailures(t *testing.T) {
	s := New(failingBackend{NewMemoryBackend()}, nil)
	ctx := context.Background()
	key := chat.ComputeKey("", "Ada")

	_, ok := s.Load(ctx, key)
	assert.False(t, ok, "read failures load as absent")

	err := s.Save(ctx, key, sampleTranscript())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk on fire")
}

func TestStore_Keys(t *testing.T) {
	s := New(NewMemoryBackend(), nil)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, chat.ComputeKey("Grace", "Ada"), sampleTranscript()))
	require.NoError(t, s.Save(ctx, chat.ComputeKey("", "Ada"), sampleTranscript()))

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []chat.Key{"Grace_Ada", "anonymous_Ada"}, keys)
}
