package settlement

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"bloomkart/internal/model"
)

// State is the settlement state of a checkout session.
type State string

const (
	StateAwaitingPayment State = "awaiting_payment"
	StateConfirmed       State = "confirmed"
	StateAbandoned       State = "abandoned"
	StateTimedOut        State = "timed_out"
)

// Outcome is the terminal (or current) state of a settlement wait.
type Outcome struct {
	State   State  `json:"state"`
	OrderID string `json:"orderId,omitempty"`
}

// OrderStore queries the order record written out-of-band by the payment
// provider's webhook. A nil order means "not confirmed yet", never an error.
type OrderStore interface {
	FindBySessionID(ctx context.Context, sessionID string) (*model.Order, error)
}

// Notifier delivers wake-up hints carrying session ids. Hints are an
// optimization only: the watcher stays correct on polling alone.
type Notifier interface {
	// Subscribe returns a channel of session ids and a release func.
	Subscribe(ctx context.Context) (<-chan string, func(), error)
}

// Deduper guards confirmation side effects across process restarts.
// MarkConfirmed returns true only for the first caller per session id.
type Deduper interface {
	MarkConfirmed(ctx context.Context, sessionID string) (bool, error)
}

// sessionCacheLimit bounds the in-memory terminal-state maps. On overflow
// they reset wholesale; the order store and the deduper remain the durable
// record, so a reset costs at most a re-query per session.
const sessionCacheLimit = 10000

// Config holds the watcher's timing knobs.
type Config struct {
	// PollInterval bounds how stale a poll-only watcher can be.
	PollInterval time.Duration

	// Timeout ends a wait with StateTimedOut so an unpaid session does not
	// hold a subscription forever. Zero disables it.
	Timeout time.Duration
}

// Watcher drives the pending-payment state machine:
// AwaitingPayment -> Confirmed | Abandoned | TimedOut.
// The condition is level-triggered: an already-written order is observed
// immediately on (re)start rather than requiring a fresh event.
type Watcher struct {
	store    OrderStore
	notifier Notifier
	dedupe   Deduper
	config   Config
	logger   zerolog.Logger

	// onConfirmed is the single side-effect hook (cart clearing, counters).
	// It fires at most once per session id.
	onConfirmed func(sessionID, orderID string)

	mu        sync.Mutex
	confirmed map[string]string
	abandons  map[string]chan struct{}
}

// NewWatcher creates a settlement watcher. notifier and dedupe may be nil;
// the watcher then relies on polling and in-process dedup only.
func NewWatcher(store OrderStore, notifier Notifier, dedupe Deduper, config Config, onConfirmed func(sessionID, orderID string), logger zerolog.Logger) *Watcher {
	if config.PollInterval <= 0 {
		config.PollInterval = 2 * time.Second
	}

	return &Watcher{
		store:       store,
		notifier:    notifier,
		dedupe:      dedupe,
		config:      config,
		logger:      logger.With().Str("component", "settlement-watcher").Logger(),
		onConfirmed: onConfirmed,
		confirmed:   make(map[string]string),
		abandons:    make(map[string]chan struct{}),
	}
}

// AwaitConfirmation blocks until the session settles, is abandoned, times
// out, or ctx is cancelled. Observing the same confirmed order twice never
// repeats side effects.
func (w *Watcher) AwaitConfirmation(ctx context.Context, sessionID string) (Outcome, error) {
	if outcome, done := w.Resolve(ctx, sessionID); done {
		return outcome, nil
	}

	abandonCh := w.abandonChannel(sessionID)

	var wakeups <-chan string
	if w.notifier != nil {
		ch, release, err := w.notifier.Subscribe(ctx)
		if err != nil {
			// Degrade to poll-only rather than failing the wait.
			w.logger.Warn().Err(err).Msg("settlement subscription unavailable, polling only")
		} else {
			defer release()
			wakeups = ch
		}
	}

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	var timeout <-chan time.Time
	if w.config.Timeout > 0 {
		timer := time.NewTimer(w.config.Timeout)
		defer timer.Stop()
		timeout = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return Outcome{State: StateAwaitingPayment}, ctx.Err()

		case <-abandonCh:
			w.logger.Info().Str("session_id", sessionID).Msg("settlement wait abandoned")
			return Outcome{State: StateAbandoned}, nil

		case <-timeout:
			w.logger.Info().
				Str("session_id", sessionID).
				Dur("timeout", w.config.Timeout).
				Msg("settlement wait timed out")
			return Outcome{State: StateTimedOut}, nil

		case hint, ok := <-wakeups:
			if !ok {
				// The notifier stream ended, e.g. the redis connection
				// dropped. A nil channel blocks forever, so the wait
				// degrades to poll-only instead of spinning.
				wakeups = nil
				continue
			}
			if hint != sessionID {
				continue
			}
			if outcome, done := w.Resolve(ctx, sessionID); done {
				return outcome, nil
			}

		case <-ticker.C:
			if outcome, done := w.Resolve(ctx, sessionID); done {
				return outcome, nil
			}
		}
	}
}

// Resolve performs a single level-triggered check for the session's order.
// done is false while the session is still awaiting payment.
func (w *Watcher) Resolve(ctx context.Context, sessionID string) (Outcome, bool) {
	w.mu.Lock()
	if orderID, ok := w.confirmed[sessionID]; ok {
		w.mu.Unlock()
		return Outcome{State: StateConfirmed, OrderID: orderID}, true
	}
	w.mu.Unlock()

	order, err := w.store.FindBySessionID(ctx, sessionID)
	if err != nil {
		// Query failures are transient from the state machine's view: the
		// session simply remains unconfirmed until the next check.
		w.logger.Error().Err(err).Str("session_id", sessionID).Msg("order lookup failed")
		return Outcome{State: StateAwaitingPayment}, false
	}
	if order == nil {
		return Outcome{State: StateAwaitingPayment}, false
	}

	w.confirm(ctx, sessionID, order.ID.String())
	return Outcome{State: StateConfirmed, OrderID: order.ID.String()}, true
}

// Abandon stops the local wait for a session. It does not cancel the
// provider-side session: a payment may still complete, and a late
// confirmation is honored whenever the session is next resolved.
func (w *Watcher) Abandon(sessionID string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	ch, ok := w.abandons[sessionID]
	if !ok {
		if len(w.abandons) >= sessionCacheLimit {
			w.abandons = make(map[string]chan struct{})
		}
		ch = make(chan struct{})
		w.abandons[sessionID] = ch
	}

	select {
	case <-ch:
		// already abandoned
	default:
		close(ch)
	}
}

// confirm records the terminal transition and fires side effects exactly
// once per session id, even across process restarts when a Deduper is
// configured.
func (w *Watcher) confirm(ctx context.Context, sessionID, orderID string) {
	w.mu.Lock()
	if _, already := w.confirmed[sessionID]; already {
		w.mu.Unlock()
		return
	}
	if len(w.confirmed) >= sessionCacheLimit {
		w.confirmed = make(map[string]string)
	}
	w.confirmed[sessionID] = orderID
	// A confirmed session no longer needs its abandon signal: Confirmed
	// wins over Abandoned on every status read.
	delete(w.abandons, sessionID)
	w.mu.Unlock()

	first := true
	if w.dedupe != nil {
		var err error
		first, err = w.dedupe.MarkConfirmed(ctx, sessionID)
		if err != nil {
			// Prefer the risk of a duplicate side effect over dropping the
			// confirmation entirely.
			w.logger.Warn().Err(err).Str("session_id", sessionID).Msg("confirmation dedup check failed")
			first = true
		}
	}

	w.logger.Info().
		Str("session_id", sessionID).
		Str("order_id", orderID).
		Bool("first_observation", first).
		Msg("settlement confirmed")

	if first && w.onConfirmed != nil {
		w.onConfirmed(sessionID, orderID)
	}
}

func (w *Watcher) abandonChannel(sessionID string) chan struct{} {
	w.mu.Lock()
	defer w.mu.Unlock()

	ch, ok := w.abandons[sessionID]
	if !ok {
		if len(w.abandons) >= sessionCacheLimit {
			w.abandons = make(map[string]chan struct{})
		}
		ch = make(chan struct{})
		w.abandons[sessionID] = ch
	}
	return ch
}

// Status reports the current state without blocking. Abandoned sessions
// that later confirmed report Confirmed, since the payment genuinely
// succeeded.
func (w *Watcher) Status(ctx context.Context, sessionID string) Outcome {
	if outcome, done := w.Resolve(ctx, sessionID); done {
		return outcome
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if ch, ok := w.abandons[sessionID]; ok {
		select {
		case <-ch:
			return Outcome{State: StateAbandoned}
		default:
		}
	}
	return Outcome{State: StateAwaitingPayment}
}
