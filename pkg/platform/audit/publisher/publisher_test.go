package publisher

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "instructorhub/pkg/platform/audit"
	"instructorhub/pkg/platform/audit/store/memory"
	"instructorhub/pkg/requestcontext"
)

func TestPublisher_SyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	fixed := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(requestcontext.WithRequestID(context.Background(), "req-1"), fixed)

	err := pub.Emit(ctx, audit.Event{SubjectID: "subj-1", Action: string(audit.EventOnboardingCompleted)})
	require.NoError(t, err)

	events := store.ListBySubject(ctx, "subj-1")
	require.Len(t, events, 1)
	assert.Equal(t, audit.CategoryCompliance, events[0].Category)
	assert.Equal(t, "req-1", events[0].RequestID)
	assert.Equal(t, fixed, events[0].Timestamp)
}

func TestPublisher_RecordsClient(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	const ua = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0"
	ctx := requestcontext.WithUserAgent(requestcontext.WithClientIP(context.Background(), "203.0.113.5"), ua)

	require.NoError(t, pub.Emit(ctx, audit.Event{SubjectID: "subj-ua", Action: string(audit.EventOnboardingCompleted)}))
	require.NoError(t, pub.Emit(context.Background(), audit.Event{SubjectID: "subj-ua", Action: string(audit.EventOnboardingRepaired)}))

	events := store.ListBySubject(ctx, "subj-ua")
	require.Len(t, events, 2)
	assert.Equal(t, "203.0.113.5", events[0].ClientIP)
	assert.Equal(t, ua, events[0].UserAgent)
	assert.Equal(t, "Firefox 121.0", events[0].Browser)
	assert.Contains(t, events[0].OS, "Windows")
	assert.Equal(t, audit.DeviceDesktop, events[0].Device)

	assert.Empty(t, events[1].UserAgent)
	assert.Empty(t, events[1].Device)
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(100))

	for range 10 {
		require.NoError(t, pub.Emit(context.Background(), audit.Event{
			SubjectID: "subj-2",
			Action:    string(audit.EventCredentialIssued),
		}))
	}
	pub.Close()

	assert.Len(t, store.ListBySubject(context.Background(), "subj-2"), 10)
}

func TestPublisher_EmitAfterCloseFallsBackToSync(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(1))
	pub.Close()
	pub.Close()

	require.NoError(t, pub.Emit(context.Background(), audit.Event{SubjectID: "late", Action: "x"}))
	assert.Len(t, store.ListBySubject(context.Background(), "late"), 1)
}
