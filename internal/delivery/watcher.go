package delivery

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/carevault/client-go/internal/api"
)

// Default polling configuration values.
const (
	DefaultInitialInterval   = 2 * time.Second
	DefaultMaxBackoff        = 30 * time.Second
	DefaultBackoffMultiplier = 1.5
	DefaultJitterFactor      = 0.3
)

// MessageHandler is invoked once for each message not seen before, in the
// order the relay returns them.
type MessageHandler func(ctx context.Context, msg api.ChatMessage)

// Config holds watcher configuration. Zero values fall back to the defaults
// above; a negative JitterFactor disables jitter entirely.
type Config struct {
	APIClient         *api.Client
	InitialInterval   time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
	JitterFactor      float64
	Logger            zerolog.Logger
}

func (c Config) withDefaults() Config {
	if c.InitialInterval <= 0 {
		c.InitialInterval = DefaultInitialInterval
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = DefaultMaxBackoff
	}
	if c.BackoffMultiplier <= 1 {
		c.BackoffMultiplier = DefaultBackoffMultiplier
	}
	switch {
	case c.JitterFactor == 0:
		c.JitterFactor = DefaultJitterFactor
	case c.JitterFactor < 0:
		c.JitterFactor = 0
	}
	return c
}

// Watcher polls one conversation for new messages. Safe for concurrent use;
// the poll loop runs on its own goroutine between Start and Stop.
type Watcher struct {
	cfg    Config
	peerID string

	mu       sync.Mutex
	seen     map[string]struct{}
	interval time.Duration
	handler  MessageHandler
	cancel   context.CancelFunc
	started  bool
}

// NewWatcher creates a watcher for the conversation with peerID.
func NewWatcher(cfg Config, peerID string) *Watcher {
	cfg = cfg.withDefaults()
	return &Watcher{
		cfg:      cfg,
		peerID:   peerID,
		seen:     make(map[string]struct{}),
		interval: cfg.InitialInterval,
	}
}

// Start begins polling. The handler is called for each new message; Start
// returns immediately and delivery is asynchronous. Messages already present
// at the first poll are delivered too, so callers catch up after reconnects.
func (w *Watcher) Start(ctx context.Context, handler MessageHandler) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return nil
	}
	w.handler = handler
	w.started = true
	ctx, w.cancel = context.WithCancel(ctx)
	w.mu.Unlock()

	go w.pollLoop(ctx)
	return nil
}

// Stop shuts the watcher down. Idempotent.
func (w *Watcher) Stop() {
	w.mu.Lock()
	cancel := w.cancel
	w.started = false
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

func (w *Watcher) pollLoop(ctx context.Context) {
	for {
		wait := w.pollOnce(ctx)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// pollOnce fetches the conversation, dispatches unseen messages, and returns
// the jittered wait before the next poll.
func (w *Watcher) pollOnce(ctx context.Context) time.Duration {
	msgs, err := w.cfg.APIClient.GetConversation(ctx, w.peerID)
	if err != nil {
		if ctx.Err() == nil {
			w.cfg.Logger.Debug().Err(err).Str("peer", w.peerID).Msg("conversation poll failed")
		}
		return w.backoff()
	}

	var fresh []api.ChatMessage
	w.mu.Lock()
	for _, m := range msgs {
		if m.ID == "" {
			continue
		}
		if _, ok := w.seen[m.ID]; ok {
			continue
		}
		w.seen[m.ID] = struct{}{}
		fresh = append(fresh, m)
	}
	handler := w.handler
	w.mu.Unlock()

	for _, m := range fresh {
		handler(ctx, m)
	}

	if len(fresh) > 0 {
		return w.reset()
	}
	return w.backoff()
}

func (w *Watcher) reset() time.Duration {
	w.mu.Lock()
	w.interval = w.cfg.InitialInterval
	iv := w.interval
	w.mu.Unlock()
	return w.jitter(iv)
}

func (w *Watcher) backoff() time.Duration {
	w.mu.Lock()
	w.interval = time.Duration(float64(w.interval) * w.cfg.BackoffMultiplier)
	if w.interval > w.cfg.MaxBackoff {
		w.interval = w.cfg.MaxBackoff
	}
	iv := w.interval
	w.mu.Unlock()
	return w.jitter(iv)
}

func (w *Watcher) jitter(d time.Duration) time.Duration {
	if w.cfg.JitterFactor <= 0 {
		return d
	}
	amount := float64(d) * w.cfg.JitterFactor * rand.Float64()
	return d + time.Duration(amount)
}
