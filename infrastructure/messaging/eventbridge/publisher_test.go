package eventbridge

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mediagraph/domain/core/valueobjects"
	"mediagraph/domain/events"
)

type fakeEventBridge struct {
	inputs []*eventbridge.PutEventsInput
	err    error
	failed int32
}

func (f *fakeEventBridge) PutEvents(_ context.Context, in *eventbridge.PutEventsInput, _ ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error) {
	f.inputs = append(f.inputs, in)
	if f.err != nil {
		return nil, f.err
	}
	out := &eventbridge.PutEventsOutput{FailedEntryCount: f.failed}
	for i := range in.Entries {
		entry := types.PutEventsResultEntry{EventId: aws.String("id")}
		if int32(i) < f.failed {
			entry.ErrorCode = aws.String("InternalFailure")
		}
		out.Entries = append(out.Entries, entry)
	}
	return out, nil
}

func TestPublisher_Publish(t *testing.T) {
	fake := &fakeEventBridge{}
	pub := NewPublisher(fake, "graphs", zap.NewNop())

	ts := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	err := pub.Publish(context.Background(), events.NewGraphSaved(valueobjects.GraphID("g1"), 3, 2, ts))
	require.NoError(t, err)

	require.Len(t, fake.inputs, 1)
	require.Len(t, fake.inputs[0].Entries, 1)
	entry := fake.inputs[0].Entries[0]
	assert.Equal(t, "graphs", aws.ToString(entry.EventBusName))
	assert.Equal(t, Source, aws.ToString(entry.Source))
	assert.Equal(t, events.TypeGraphSaved, aws.ToString(entry.DetailType))
	assert.Equal(t, []string{"graph/g1"}, entry.Resources)

	var detail map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(entry.Detail)), &detail))
	assert.Equal(t, "g1", detail["graph_id"])
	assert.Equal(t, float64(3), detail["node_count"])
}

func TestPublisher_PublishBatchChunks(t *testing.T) {
	fake := &fakeEventBridge{}
	pub := NewPublisher(fake, "graphs", zap.NewNop())

	batch := make([]events.DomainEvent, 0, 23)
	for i := 0; i < 23; i++ {
		batch = append(batch, events.NewGraphCreated(valueobjects.GraphID("g"), "n", time.Now()))
	}

	require.NoError(t, pub.PublishBatch(context.Background(), batch))
	require.Len(t, fake.inputs, 3)
	assert.Len(t, fake.inputs[0].Entries, 10)
	assert.Len(t, fake.inputs[1].Entries, 10)
	assert.Len(t, fake.inputs[2].Entries, 3)
}

func TestPublisher_Failures(t *testing.T) {
	ev := events.NewGraphCreated(valueobjects.GraphID("g1"), "n", time.Now())

	t.Run("client error", func(t *testing.T) {
		pub := NewPublisher(&fakeEventBridge{err: errors.New("throttled")}, "graphs", zap.NewNop())
		err := pub.Publish(context.Background(), ev)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "throttled")
	})

	t.Run("failed entries", func(t *testing.T) {
		pub := NewPublisher(&fakeEventBridge{failed: 1}, "graphs", zap.NewNop())
		err := pub.Publish(context.Background(), ev)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "1 events failed")
	})

	t.Run("empty batch", func(t *testing.T) {
		fake := &fakeEventBridge{}
		pub := NewPublisher(fake, "graphs", zap.NewNop())
		require.NoError(t, pub.PublishBatch(context.Background(), nil))
		assert.Empty(t, fake.inputs)
	})
}
