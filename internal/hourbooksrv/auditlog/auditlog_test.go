package auditlog

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSinkAppendsLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit", "ledger.jsonl")
	sink, err := NewFileSink(path)
	require.NoError(t, err)

	prev, next := 6.5, 5.0
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, sink.Record(ctx, Event{
				Time:      time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC),
				Action:    ActionAdjust,
				ActorCode: "10101",
				SessionID: "s1",
				OldHours:  &prev,
				NewHours:  &next,
			}))
		}()
	}
	wg.Wait()
	require.NoError(t, sink.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	n := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e Event
		require.NoError(t, json.Unmarshal(sc.Bytes(), &e))
		assert.Equal(t, ActionAdjust, e.Action)
		require.NotNil(t, e.OldHours)
		assert.Equal(t, 6.5, *e.OldHours)
		n++
	}
	assert.Equal(t, 20, n)

	assert.Error(t, sink.Record(ctx, Event{Action: ActionDelete}))
}

func TestMemorySink(t *testing.T) {
	var m Memory
	require.NoError(t, m.Record(context.Background(), Event{Action: ActionSignIn}))
	events := m.Events()
	require.Len(t, events, 1)
	events[0].Action = ActionDelete
	assert.Equal(t, ActionSignIn, m.Events()[0].Action)
	assert.NoError(t, Nop{}.Record(context.Background(), Event{}))
}
