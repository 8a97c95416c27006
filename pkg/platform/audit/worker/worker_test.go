package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"instructorhub/internal/platform/logger"
	audit "instructorhub/pkg/platform/audit"
	"instructorhub/pkg/platform/audit/store/memory"
)

type flakyStore struct {
	mu    sync.Mutex
	calls int
}

func (f *flakyStore) Append(context.Context, audit.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return errors.New("sink down")
}

func TestWorkerDrainsUntilClosed(t *testing.T) {
	store := memory.NewInMemoryStore()
	inbox := make(chan audit.Event, 3)
	inbox <- audit.Event{Action: string(audit.EventCredentialIssued), SubjectID: "s1"}
	inbox <- audit.Event{Action: string(audit.EventOnboardingCompleted), SubjectID: "s1"}
	close(inbox)

	err := NewWorker(store, inbox, logger.Discard()).Run(context.Background())
	require.NoError(t, err)

	events := store.ListBySubject(context.Background(), "s1")
	require.Len(t, events, 2)
	assert.Equal(t, string(audit.EventOnboardingCompleted), events[1].Action)
}

func TestWorkerSurvivesStoreErrors(t *testing.T) {
	store := &flakyStore{}
	inbox := make(chan audit.Event, 2)
	inbox <- audit.Event{Action: "a"}
	inbox <- audit.Event{Action: "b"}
	close(inbox)

	require.NoError(t, NewWorker(store, inbox, logger.Discard()).Run(context.Background()))
	assert.Equal(t, 2, store.calls)
}

func TestWorkerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := NewWorker(memory.NewInMemoryStore(), make(chan audit.Event), nil).Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
