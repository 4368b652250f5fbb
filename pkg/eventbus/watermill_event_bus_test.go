package eventbus

import (
	"context"
	"testing"
	"time"

	"github.com/fermata-run/fermata/pkg/channels/gochannel"
	"github.com/fermata-run/fermata/pkg/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatermillEventBusPublishSubscribe(t *testing.T) {
	pub, sub, err := gochannel.CreateTestChannel(nil)
	require.NoError(t, err)

	bus := NewWatermillEventBus(pub, sub)

	received := make(chan any, 1)
	bus.Handle(events.ExecutionStartedEvent, func(_ context.Context, event any) error {
		received <- event

		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, bus.Subscribe(ctx))

	started := events.ExecutionStarted{
		BaseEvent: events.BaseEvent{
			ID:          bus.GenerateID(),
			Type:        events.ExecutionStartedEvent,
			Timestamp:   time.Now().UTC(),
			ExecutionID: "exec-1",
			WorkflowID:  "wf-1",
		},
		WorkflowName: "release",
		RootTasks:    2,
	}

	require.NoError(t, bus.Publish(ctx, "exec-1", started))

	select {
	case event := <-received:
		decoded, ok := event.(*events.ExecutionStarted)
		require.True(t, ok)
		assert.Equal(t, "exec-1", decoded.ExecutionID)
		assert.Equal(t, "release", decoded.WorkflowName)
		assert.Equal(t, 2, decoded.RootTasks)
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}
}

func TestWatermillEventBusIgnoresUnhandledTypes(t *testing.T) {
	pub, sub, err := gochannel.CreateTestChannel(nil)
	require.NoError(t, err)

	bus := NewWatermillEventBus(pub, sub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, bus.Subscribe(ctx))

	// No handler registered for task events; publishing must not error.
	failed := events.TaskFailed{
		BaseEvent: events.BaseEvent{ID: bus.GenerateID(), Type: events.TaskFailedEvent},
		TaskID:    "t1",
		Error:     "exit status 1",
	}

	require.NoError(t, bus.Publish(ctx, "exec-1", failed))
}
