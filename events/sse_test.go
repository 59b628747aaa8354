package events

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readUntil(t *testing.T, r *bufio.Reader, want string) string {
	t.Helper()
	var sb strings.Builder
	for !strings.Contains(sb.String(), want) {
		line, err := r.ReadString('\n')
		require.NoError(t, err, "stream so far: %q", sb.String())
		sb.WriteString(line)
	}
	return sb.String()
}

func TestStreamDeliversFramesAndHeartbeats(t *testing.T) {
	b := NewBroadcaster(8)
	stream := NewStream(b, 50*time.Millisecond)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stream.Serve(w, r, RecipeTopic("r1"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	client := &http.Client{Transport: &http.Transport{}}
	defer client.CloseIdleConnections()
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	readUntil(t, reader, ": connected")

	require.Eventually(t, func() bool { return b.SubscriberCount(RecipeTopic("r1")) == 1 }, time.Second, 5*time.Millisecond)
	b.Publish(RecipeTopic("r1"), Event{ID: "e1", Type: TypeCommentCreated, Data: map[string]string{"body": "yum"}})

	got := readUntil(t, reader, "data: ")
	got += readUntil(t, reader, "\n")
	assert.Contains(t, got, "id: e1\nevent: comment.created\ndata: {\"body\":\"yum\"}\n")

	readUntil(t, reader, ": ping")

	cancel()
	assert.Eventually(t, func() bool { return b.SubscriberCount(RecipeTopic("r1")) == 0 }, time.Second, 5*time.Millisecond)
}

func TestWriteFrame(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, WriteFrame(rec, Event{ID: "1", Type: TypeLikeRemoved, Data: map[string]int{"likeCount": 0}}))
	assert.Equal(t, "id: 1\nevent: like.removed\ndata: {\"likeCount\":0}\n\n", rec.Body.String())
}
