package telemetry

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendPostsEvent(t *testing.T) {
	var mu sync.Mutex
	var events []Event
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var evt Event
		require.NoError(t, json.NewDecoder(r.Body).Decode(&evt))
		mu.Lock()
		events = append(events, evt)
		mu.Unlock()
		assert.Equal(t, "/mobile/api/v1/log", r.URL.Path)
	}))
	defer srv.Close()

	s := NewEventSender(srv.URL, "corr-t", nil)
	s.Send(SeverityInfo, "tokenize.start", "card flow started")

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(events) == 1
	}, time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, SeverityInfo, events[0].Type)
	assert.Equal(t, "corr-t", events[0].CorrelationID)
}

func TestThreeDSErrorNormalizesForeignErrors(t *testing.T) {
	var mu sync.Mutex
	var paths []string
	var events []Event
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var evt Event
		require.NoError(t, json.NewDecoder(r.Body).Decode(&evt))
		mu.Lock()
		paths = append(paths, r.URL.Path)
		events = append(events, evt)
		mu.Unlock()
	}))
	defer srv.Close()

	s := NewEventSender(srv.URL, "corr-t", nil)
	s.ThreeDSError("threeds.authenticate", errors.New("vendor exploded"))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(events) == 1
	}, time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "/threedsecure/v2/log", paths[0])
	assert.Equal(t, SeverityError, events[0].Type)
	assert.Equal(t, "threeds.authenticate", events[0].Name)
	assert.Equal(t, "corr-t", events[0].CorrelationID)
	assert.Contains(t, events[0].Message, "vendor exploded")
	assert.Contains(t, events[0].Message, "9006", "foreign errors pick up the generic code")
}

func TestSendNeverFailsTheCaller(t *testing.T) {
	// No server listening: Send must still return immediately.
	s := NewEventSender("http://127.0.0.1:1", "corr-t", nil)
	done := make(chan struct{})
	go func() {
		s.Send(SeverityError, "tokenize.error", "boom")
		s.SendThreeDS(SeverityError, "threeds.error", "boom")
		s.Error("tokenize.error", assert.AnError)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Send blocked the caller")
	}
}
