package proclife

import (
	"context"
	"os"
	"os/signal"
	"sync"

	"golang.org/x/sys/unix"
)

// subscriberBuffer is the channel capacity handed to each subscriber. A
// subscriber that falls further behind than this loses events; delivery is
// at most once, never replayed.
const subscriberBuffer = 16

// SignalWatcher observes a fixed set of OS signal classes and fans each
// arrival out to its subscribers. Hangup and cont are informational and keep
// the watch loop running; interrupt, quit and terminate are relayed once and
// then retire the watcher for good.
//
// Every call to WatchSignals builds an independent watcher with its own
// signal registration and subscriber set; there is no process-wide singleton.
type SignalWatcher struct {
	j Journaler

	incoming chan os.Signal
	unhook   func()
	done     chan struct{}

	mu   sync.Mutex
	subs []chan Signal
}

// WatchSignals registers for the watched signal classes and starts the watch
// loop. The loop runs until a terminal signal arrives or ctx is canceled,
// whichever comes first; Done reports either.
func WatchSignals(ctx context.Context, j Journaler) *SignalWatcher {
	incoming := make(chan os.Signal, 8)
	signal.Notify(incoming,
		unix.SIGHUP, unix.SIGCONT, unix.SIGINT, unix.SIGQUIT, unix.SIGTERM)

	w := newSignalWatcher(incoming, j)
	w.unhook = func() { signal.Stop(incoming) }

	go w.watch(ctx)
	return w
}

// newSignalWatcher wires a watcher over an externally fed signal channel. It
// exists so tests can deliver signals without involving the OS.
func newSignalWatcher(incoming chan os.Signal, j Journaler) *SignalWatcher {
	return &SignalWatcher{
		j:        j,
		incoming: incoming,
		unhook:   func() {},
		done:     make(chan struct{}),
	}
}

// Subscribe registers a new subscriber and returns its event channel. The
// channel only carries events broadcast after the call; there is no replay.
// Subscribing after the watcher has retired returns a channel that never
// receives.
func (w *SignalWatcher) Subscribe() <-chan Signal {
	ch := make(chan Signal, subscriberBuffer)

	w.mu.Lock()
	w.subs = append(w.subs, ch)
	w.mu.Unlock()

	return ch
}

// Done is closed once the watch loop has exited, either from a terminal
// signal or from context cancellation.
func (w *SignalWatcher) Done() <-chan struct{} {
	return w.done
}

func (w *SignalWatcher) watch(ctx context.Context) {
	defer close(w.done)
	defer w.unhook()

	for {
		select {
		case <-ctx.Done():
			return

		case sig := <-w.incoming:
			ev, terminal, ok := classifySignal(sig)
			if !ok {
				// Notify never delivers outside the registered set; an
				// unknown signal can only come from a test misfeeding the
				// channel.
				continue
			}

			w.j.Write(&EventSignalReceived{Signal: ev, Terminal: terminal})
			w.broadcast(ev)

			if terminal {
				return
			}
		}
	}
}

// broadcast delivers the event to every current subscriber without blocking.
// A full subscriber channel drops the event.
func (w *SignalWatcher) broadcast(ev Signal) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, ch := range w.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func classifySignal(sig os.Signal) (ev Signal, terminal, ok bool) {
	switch sig {
	case unix.SIGHUP:
		return SignalHangup, false, true
	case unix.SIGCONT:
		return SignalCont, false, true
	case unix.SIGINT:
		return SignalInterrupt, true, true
	case unix.SIGQUIT:
		return SignalQuit, true, true
	case unix.SIGTERM:
		return SignalTerminate, true, true
	default:
		return "", false, false
	}
}
