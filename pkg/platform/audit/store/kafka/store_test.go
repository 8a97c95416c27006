package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "instructorhub/pkg/platform/audit"
)

type fakeProducer struct {
	records []*kgo.Record
	err     error
}

func (f *fakeProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	var out kgo.ProduceResults
	for _, r := range rs {
		f.records = append(f.records, r)
		out = append(out, kgo.ProduceResult{Record: r, Err: f.err})
	}
	return out
}

func TestStoreAppend(t *testing.T) {
	t.Run("produces json record keyed by subject", func(t *testing.T) {
		p := &fakeProducer{}
		store := New(p, "audit")
		err := store.Append(context.Background(), audit.Event{
			Category:  audit.CategoryCompliance,
			Action:    string(audit.EventOnboardingCompleted),
			SubjectID: "subj-9",
			Subject:   "ACCT_x",
		})
		require.NoError(t, err)
		require.Len(t, p.records, 1)

		rec := p.records[0]
		assert.Equal(t, "audit", rec.Topic)
		assert.Equal(t, "subj-9", string(rec.Key))
		var decoded audit.Event
		require.NoError(t, json.Unmarshal(rec.Value, &decoded))
		assert.Equal(t, "ACCT_x", decoded.Subject)
		assert.Equal(t, "action", rec.Headers[0].Key)
	})

	t.Run("surfaces produce errors", func(t *testing.T) {
		p := &fakeProducer{err: errors.New("broker gone")}
		err := New(p, "audit").Append(context.Background(), audit.Event{Action: "x"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "broker gone")
	})
}
