package kafka

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/dukex/flowgen/pkg/eventbus"
	"github.com/dukex/flowgen/pkg/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkatc "github.com/testcontainers/testcontainers-go/modules/kafka"
)

func TestCreateChannelRequiresBrokers(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "")

	_, _, err := CreateChannel(watermill.NopLogger{}, "flowgen")
	require.Error(t, err)
}

func TestKafkaChannelRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 180*time.Second)
	defer cancel()

	container, err := kafkatc.Run(ctx, "confluentinc/confluent-local:7.7.0",
		testcontainers.WithEnv(map[string]string{"KAFKA_CREATE_TOPICS": "true"}))
	require.NoError(t, err)

	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)

	t.Setenv("KAFKA_BROKERS", brokers[0])

	publisher, subscriber, err := CreateChannel(watermill.NopLogger{}, "flowgen-test")
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(publisher, subscriber)
	t.Cleanup(func() { _ = bus.Close() })

	received := make(chan *events.GenerationStarted, 1)

	err = bus.Handle(events.GenerationStartedEvent, func(_ context.Context, event any) error {
		started, ok := event.(*events.GenerationStarted)
		if ok {
			received <- started
		}

		return nil
	})
	require.NoError(t, err)
	require.NoError(t, bus.Subscribe(ctx))

	sent := events.GenerationStarted{
		BaseEvent: events.NewBaseEvent(events.GenerationStartedEvent, "job-kafka"),
		Prompt:    "post a summary to slack",
	}
	require.NoError(t, bus.Publish(ctx, sent.JobID, sent))

	select {
	case got := <-received:
		assert.Equal(t, "job-kafka", got.JobID)
		assert.Equal(t, sent.Prompt, got.Prompt)
	case <-time.After(60 * time.Second):
		t.Fatal("timed out waiting for event from Kafka")
	}
}
