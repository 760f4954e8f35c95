package delivery

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/carevault/client-go/internal/api"
)

// conversationServer serves a mutable message list.
type conversationServer struct {
	mu   sync.Mutex
	msgs []api.ChatMessage
	srv  *httptest.Server
}

func newConversationServer(t *testing.T) *conversationServer {
	t.Helper()
	cs := &conversationServer{}
	cs.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cs.mu.Lock()
		defer cs.mu.Unlock()
		json.NewEncoder(w).Encode(api.ConversationResponse{Messages: cs.msgs})
	}))
	t.Cleanup(cs.srv.Close)
	return cs
}

func (cs *conversationServer) add(msg api.ChatMessage) {
	cs.mu.Lock()
	cs.msgs = append(cs.msgs, msg)
	cs.mu.Unlock()
}

func testConfig(t *testing.T, baseURL string) Config {
	t.Helper()
	client, err := api.New(baseURL)
	if err != nil {
		t.Fatal(err)
	}
	return Config{
		APIClient:       client,
		InitialInterval: 10 * time.Millisecond,
		MaxBackoff:      50 * time.Millisecond,
		JitterFactor:    -1, // deterministic intervals
	}
}

func collectMessages(t *testing.T, ch <-chan api.ChatMessage, n int) []api.ChatMessage {
	t.Helper()
	var got []api.ChatMessage
	deadline := time.After(5 * time.Second)
	for len(got) < n {
		select {
		case m := <-ch:
			got = append(got, m)
		case <-deadline:
			t.Fatalf("timed out waiting for %d messages, got %d", n, len(got))
		}
	}
	return got
}

func TestConfig_Defaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	if cfg.InitialInterval != DefaultInitialInterval {
		t.Errorf("InitialInterval = %v, want %v", cfg.InitialInterval, DefaultInitialInterval)
	}
	if cfg.MaxBackoff != DefaultMaxBackoff {
		t.Errorf("MaxBackoff = %v, want %v", cfg.MaxBackoff, DefaultMaxBackoff)
	}
	if cfg.BackoffMultiplier != DefaultBackoffMultiplier {
		t.Errorf("BackoffMultiplier = %v, want %v", cfg.BackoffMultiplier, DefaultBackoffMultiplier)
	}
	if cfg.JitterFactor != DefaultJitterFactor {
		t.Errorf("JitterFactor = %v, want %v", cfg.JitterFactor, DefaultJitterFactor)
	}

	neg := Config{JitterFactor: -1}.withDefaults()
	if neg.JitterFactor != 0 {
		t.Errorf("negative JitterFactor = %v, want 0 (disabled)", neg.JitterFactor)
	}
}

func TestWatcher_JitterAppliedByDefault(t *testing.T) {
	w := NewWatcher(Config{InitialInterval: 100 * time.Millisecond}, "u-bob")

	// With the default 30% jitter at least one of many samples must land
	// strictly above the base interval.
	jittered := false
	for i := 0; i < 100; i++ {
		d := w.jitter(100 * time.Millisecond)
		if d < 100*time.Millisecond || d > 130*time.Millisecond {
			t.Fatalf("jittered interval %v outside [100ms, 130ms]", d)
		}
		if d > 100*time.Millisecond {
			jittered = true
		}
	}
	if !jittered {
		t.Error("default configuration produced no jitter across 100 samples")
	}
}

func TestWatcher_DeliversExistingAndNewMessages(t *testing.T) {
	cs := newConversationServer(t)
	cs.add(api.ChatMessage{ID: "m1", SenderID: "u-bob"})

	w := NewWatcher(testConfig(t, cs.srv.URL), "u-bob")
	defer w.Stop()

	ch := make(chan api.ChatMessage, 10)
	err := w.Start(context.Background(), func(_ context.Context, msg api.ChatMessage) {
		ch <- msg
	})
	if err != nil {
		t.Fatal(err)
	}

	got := collectMessages(t, ch, 1)
	if got[0].ID != "m1" {
		t.Errorf("first message = %q, want m1", got[0].ID)
	}

	cs.add(api.ChatMessage{ID: "m2", SenderID: "u-bob"})
	got = collectMessages(t, ch, 1)
	if got[0].ID != "m2" {
		t.Errorf("second message = %q, want m2", got[0].ID)
	}
}

func TestWatcher_DeduplicatesAcrossPolls(t *testing.T) {
	cs := newConversationServer(t)
	cs.add(api.ChatMessage{ID: "m1"})

	w := NewWatcher(testConfig(t, cs.srv.URL), "u-bob")
	defer w.Stop()

	var mu sync.Mutex
	counts := make(map[string]int)
	err := w.Start(context.Background(), func(_ context.Context, msg api.ChatMessage) {
		mu.Lock()
		counts[msg.ID]++
		mu.Unlock()
	})
	if err != nil {
		t.Fatal(err)
	}

	// Let several poll cycles run.
	time.Sleep(200 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if counts["m1"] != 1 {
		t.Errorf("m1 delivered %d times, want 1", counts["m1"])
	}
}

func TestWatcher_StopHaltsDelivery(t *testing.T) {
	cs := newConversationServer(t)

	w := NewWatcher(testConfig(t, cs.srv.URL), "u-bob")

	ch := make(chan api.ChatMessage, 10)
	if err := w.Start(context.Background(), func(_ context.Context, msg api.ChatMessage) {
		ch <- msg
	}); err != nil {
		t.Fatal(err)
	}

	w.Stop()
	cs.add(api.ChatMessage{ID: "late"})

	select {
	case m := <-ch:
		t.Errorf("received %q after Stop", m.ID)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestWatcher_BackoffGrowsAndResets(t *testing.T) {
	cfg := Config{
		InitialInterval:   10 * time.Millisecond,
		MaxBackoff:        40 * time.Millisecond,
		BackoffMultiplier: 2.0,
		JitterFactor:      -1,
	}
	w := NewWatcher(cfg, "u-bob")

	if got := w.backoff(); got != 20*time.Millisecond {
		t.Errorf("first backoff = %v, want 20ms", got)
	}
	if got := w.backoff(); got != 40*time.Millisecond {
		t.Errorf("second backoff = %v, want 40ms", got)
	}
	if got := w.backoff(); got != 40*time.Millisecond {
		t.Errorf("capped backoff = %v, want 40ms", got)
	}
	if got := w.reset(); got != 10*time.Millisecond {
		t.Errorf("reset = %v, want 10ms", got)
	}
}
