package proclife

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// startTestWatcher runs a watch loop over a hand-fed signal channel, so the
// tests never have to deliver real OS signals to themselves.
func startTestWatcher(t *testing.T, j Journaler) (*SignalWatcher, chan os.Signal) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	incoming := make(chan os.Signal)
	w := newSignalWatcher(incoming, j)
	go w.watch(ctx)

	return w, incoming
}

func requireNoSignal(t *testing.T, sub <-chan Signal) {
	t.Helper()

	select {
	case sig := <-sub:
		t.Errorf("unexpected signal %q", sig)
	default:
	}
}

func TestSignalWatcher(t *testing.T) {
	t.Run("informational signals keep the loop running", func(t *testing.T) {
		j := mockJournal{}
		w, incoming := startTestWatcher(t, &j)

		sub1 := w.Subscribe()
		sub2 := w.Subscribe()

		incoming <- unix.SIGHUP
		require.Equal(t, SignalHangup, <-sub1)
		require.Equal(t, SignalHangup, <-sub2)

		incoming <- unix.SIGCONT
		require.Equal(t, SignalCont, <-sub1)
		require.Equal(t, SignalCont, <-sub2)

		select {
		case <-w.Done():
			t.Error("watcher retired after informational signals")
		default:
		}
	})

	t.Run("terminal signal retires the watcher", func(t *testing.T) {
		for _, test := range []struct {
			sig  os.Signal
			want Signal
		}{
			{unix.SIGINT, SignalInterrupt},
			{unix.SIGQUIT, SignalQuit},
			{unix.SIGTERM, SignalTerminate},
		} {
			j := mockJournal{}
			w, incoming := startTestWatcher(t, &j)
			sub := w.Subscribe()

			incoming <- test.sig
			require.Equal(t, test.want, <-sub)
			<-w.Done()

			j.Verify(t, true, []Event{
				&EventSignalReceived{Signal: test.want, Terminal: true},
			})
		}
	})

	t.Run("late subscriber misses earlier events", func(t *testing.T) {
		j := mockJournal{}
		w, incoming := startTestWatcher(t, &j)

		sub1 := w.Subscribe()

		incoming <- unix.SIGHUP
		require.Equal(t, SignalHangup, <-sub1)

		sub2 := w.Subscribe()
		requireNoSignal(t, sub2)
	})

	t.Run("zero subscribers drops events", func(t *testing.T) {
		j := mockJournal{}
		w, incoming := startTestWatcher(t, &j)

		incoming <- unix.SIGHUP
		incoming <- unix.SIGTERM
		<-w.Done()

		j.Verify(t, true, []Event{
			&EventSignalReceived{Signal: SignalHangup, Terminal: false},
			&EventSignalReceived{Signal: SignalTerminate, Terminal: true},
		})
	})

	t.Run("slow subscriber loses overflow", func(t *testing.T) {
		j := mockJournal{}
		w, incoming := startTestWatcher(t, &j)

		sub := w.Subscribe()

		// One more hangup than the subscriber buffer holds, then a terminal
		// signal; the overflow is dropped, never queued.
		for i := 0; i < subscriberBuffer+1; i++ {
			incoming <- unix.SIGHUP
		}
		incoming <- unix.SIGTERM
		<-w.Done()

		var got int
	drain:
		for {
			select {
			case sig := <-sub:
				require.Equal(t, SignalHangup, sig)
				got++
			default:
				break drain
			}
		}

		require.Equal(t, subscriberBuffer, got)
	})

	t.Run("context cancels the watch", func(t *testing.T) {
		j := mockJournal{}

		ctx, cancel := context.WithCancel(context.Background())
		incoming := make(chan os.Signal)
		w := newSignalWatcher(incoming, &j)
		go w.watch(ctx)

		cancel()
		<-w.Done()
	})
}
