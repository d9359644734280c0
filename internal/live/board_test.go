package live

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/rollbowl_go_server/internal/model/dto"
	"github.com/qs3c/rollbowl_go_server/internal/pkg/pubsub"
	"github.com/qs3c/rollbowl_go_server/internal/pkg/ws"
)

type recordingHub struct {
	mu   sync.Mutex
	msgs []*ws.Message
}

func (h *recordingHub) Broadcast(msg *ws.Message) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.msgs = append(h.msgs, msg)
	return nil
}

func (h *recordingHub) messages() []*ws.Message {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]*ws.Message(nil), h.msgs...)
}

type stubSummaries struct {
	err error
}

func (s stubSummaries) KitchenSummary(_ context.Context, date string) (*dto.KitchenSummary, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.KitchenSummary{Date: date, Total: 3, Items: map[string]int{"Paneer Roll": 3}}, nil
}

func TestBoard_Handle_Vote(t *testing.T) {
	hub := &recordingHub{}
	b := NewBoard(hub, stubSummaries{})

	b.Handle(context.Background(), &pubsub.Event{Type: pubsub.EventVoteCommitted, ServiceDate: "2026-10-21"})

	msgs := hub.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, MessageSummary, msgs[0].Type)
	summary, ok := msgs[0].Data.(*dto.KitchenSummary)
	require.True(t, ok)
	assert.Equal(t, "2026-10-21", summary.Date)
	assert.Equal(t, 3, summary.Total)
}

func TestBoard_Handle_Report(t *testing.T) {
	hub := &recordingHub{}
	b := NewBoard(hub, stubSummaries{})

	evt := &pubsub.Event{Type: pubsub.EventReportProgress, JobID: 9, Step: pubsub.StepDone}
	b.Handle(context.Background(), evt)

	msgs := hub.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, MessageReport, msgs[0].Type)
	assert.Same(t, evt, msgs[0].Data)
}

func TestBoard_Handle_SkipsOnError(t *testing.T) {
	hub := &recordingHub{}
	b := NewBoard(hub, stubSummaries{err: errors.New("db down")})

	b.Handle(context.Background(), &pubsub.Event{Type: pubsub.EventVoteCommitted, ServiceDate: "2026-10-21"})
	b.Handle(context.Background(), &pubsub.Event{Type: "unknown"})

	assert.Empty(t, hub.messages())
}

func TestBoard_Run(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	hub := &recordingHub{}
	b := NewBoard(hub, stubSummaries{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		b.Run(ctx, pubsub.NewSubscriber(client))
		close(done)
	}()

	require.Eventually(t, func() bool {
		n, err := client.PubSubNumSub(ctx, pubsub.ChannelKitchenEvents).Result()
		return err == nil && n[pubsub.ChannelKitchenEvents] == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, pubsub.NewPublisher(client).PublishVote(ctx, "2026-10-21", 1, true, "Paneer Roll"))

	require.Eventually(t, func() bool {
		return len(hub.messages()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("board did not stop")
	}
}
