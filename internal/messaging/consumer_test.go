package messaging_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/therealhieu/wee/internal/messaging"
	"go.uber.org/zap"
)

type visit struct {
	Code string `json:"code"`
	Long string `json:"long"`
}

// stubSubscriber hands out a single channel the test writes to directly.
type stubSubscriber struct {
	msgs         chan *message.Message
	subscribeErr error
	once         sync.Once
	closed       bool
}

func newStubSubscriber() *stubSubscriber {
	return &stubSubscriber{msgs: make(chan *message.Message, 10)}
}

func (s *stubSubscriber) Subscribe(_ context.Context, _ string) (<-chan *message.Message, error) {
	if s.subscribeErr != nil {
		return nil, s.subscribeErr
	}

	return s.msgs, nil
}

func (s *stubSubscriber) Close() error {
	s.once.Do(func() {
		s.closed = true
		close(s.msgs)
	})

	return nil
}

func ignore(context.Context, *visit) error {
	return nil
}

// settled reports whether msg was acked, failing the test if nothing happens.
func settled(t *testing.T, msg *message.Message) bool {
	t.Helper()

	select {
	case <-msg.Acked():
		return true
	case <-msg.Nacked():
		return false
	case <-time.After(time.Second):
		t.Fatal("message neither acked nor nacked")

		return false
	}
}

func TestConsumer_Process(t *testing.T) {
	valid, err := json.Marshal(visit{Code: "1A", Long: "https://example.com"})
	require.NoError(t, err)

	tests := []struct {
		name       string
		payload    []byte
		handlerErr error
		wantAck    bool
	}{
		{name: "acks handled events", payload: valid, wantAck: true},
		{name: "nacks undecodable payloads", payload: []byte("{not json")},
		{name: "nacks handler failures", payload: valid, handlerErr: errors.New("sink down")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := newStubSubscriber()

			var got *visit

			consumer := messaging.NewConsumer(sub, "url.redirected", func(_ context.Context, event *visit) error {
				got = event

				return tt.handlerErr
			}, zap.NewNop())

			require.NoError(t, consumer.Start(context.Background()))
			t.Cleanup(func() { _ = consumer.Shutdown() })

			msg := message.NewMessage(uuid.NewString(), tt.payload)
			sub.msgs <- msg

			assert.Equal(t, tt.wantAck, settled(t, msg))

			if tt.wantAck {
				assert.Equal(t, &visit{Code: "1A", Long: "https://example.com"}, got)
			}
		})
	}
}

func TestConsumer_RoundTrip(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 10}, watermill.NopLogger{})
	t.Cleanup(func() { _ = pubSub.Close() })

	received := make(chan *visit, 1)

	consumer := messaging.NewConsumer(pubSub, "url.redirected", func(_ context.Context, event *visit) error {
		received <- event

		return nil
	}, zap.NewNop())

	require.NoError(t, consumer.Start(context.Background()))
	t.Cleanup(func() { _ = consumer.Shutdown() })

	publish := messaging.NewPublishFunc[visit](pubSub, "url.redirected")
	require.NoError(t, publish(context.Background(), &visit{Code: "docs", Long: "https://example.com/docs"}))

	select {
	case event := <-received:
		assert.Equal(t, &visit{Code: "docs", Long: "https://example.com/docs"}, event)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestConsumer_Lifecycle(t *testing.T) {
	t.Run("start reports subscribe failures", func(t *testing.T) {
		sub := &stubSubscriber{subscribeErr: errors.New("no such stream")}
		consumer := messaging.NewConsumer(sub, "url.shortened", ignore, zap.NewNop())

		require.Error(t, consumer.Start(context.Background()))
		require.NoError(t, consumer.Shutdown(), "shutdown after a failed start returns")
	})

	t.Run("shutdown without start", func(t *testing.T) {
		consumer := messaging.NewConsumer(newStubSubscriber(), "url.shortened", ignore, zap.NewNop())

		assert.Equal(t, "url.shortened", consumer.Topic())
		require.NoError(t, consumer.Shutdown())
	})

	t.Run("stops when the subscription closes", func(t *testing.T) {
		sub := newStubSubscriber()
		consumer := messaging.NewConsumer(sub, "url.shortened", ignore, zap.NewNop())

		require.NoError(t, consumer.Start(context.Background()))
		require.NoError(t, sub.Close())
		require.NoError(t, consumer.Shutdown())
	})

	t.Run("stops when the context ends", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		consumer := messaging.NewConsumer(newStubSubscriber(), "url.shortened", ignore, zap.NewNop())

		require.NoError(t, consumer.Start(ctx))
		cancel()
		require.NoError(t, consumer.Shutdown())
	})
}
