package events

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestPublishReachesOnlyTopicSubscribers(t *testing.T) {
	b := NewBroadcaster(4)
	a1 := b.Subscribe(RecipeTopic("a"))
	a2 := b.Subscribe(RecipeTopic("a"))
	other := b.Subscribe(RecipeTopic("b"))
	defer b.Close()

	n := b.Publish(RecipeTopic("a"), NewEvent(TypeLikeCreated, map[string]int{"likeCount": 1}))
	assert.Equal(t, 2, n)

	for _, sub := range []*Subscription{a1, a2} {
		select {
		case ev := <-sub.C:
			assert.Equal(t, TypeLikeCreated, ev.Type)
			assert.NotEmpty(t, ev.ID)
		default:
			t.Fatal("expected an event")
		}
	}
	select {
	case <-other.C:
		t.Fatal("other topic must not receive the event")
	default:
	}
}

func TestPublishDropsForSlowSubscriber(t *testing.T) {
	b := NewBroadcaster(1)
	sub := b.Subscribe("t")
	defer b.Unsubscribe(sub)

	assert.Equal(t, 1, b.Publish("t", NewEvent("x", nil)))
	assert.Equal(t, 0, b.Publish("t", NewEvent("x", nil)))
	assert.Equal(t, 1.0, testutil.ToFloat64(b.dropped))
	assert.Equal(t, 1.0, testutil.ToFloat64(b.published))
}

func TestUnsubscribeClosesAndCleansUp(t *testing.T) {
	b := NewBroadcaster(1)
	sub := b.Subscribe("t")
	require.Equal(t, 1, b.SubscriberCount("t"))

	b.Unsubscribe(sub)
	b.Unsubscribe(sub)

	_, open := <-sub.C
	assert.False(t, open)
	assert.Equal(t, 0, b.SubscriberCount("t"))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.active))
	assert.Equal(t, 0, b.Publish("t", NewEvent("x", nil)))
}

func TestCloseEndsAllSubscriptions(t *testing.T) {
	b := NewBroadcaster(1)
	subs := []*Subscription{b.Subscribe("a"), b.Subscribe("b")}
	b.Close()

	for _, sub := range subs {
		_, open := <-sub.C
		assert.False(t, open)
		b.Unsubscribe(sub)
	}
	assert.Equal(t, 0, b.SubscriberCount("a"))
}
