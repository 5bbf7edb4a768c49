package proclife

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// LivenessError is returned when the liveness probe fails with anything
// beyond the ESRCH/EPERM pair it knows how to interpret.
type LivenessError struct {
	PID int
	Err error
}

func (e *LivenessError) Error() string {
	return fmt.Sprintf("failed to check pid %d: %v", e.PID, e.Err)
}

func (e *LivenessError) Unwrap() error { return e.Err }

// TerminateTimeoutError is returned when a process outlives the termination
// timeout.
type TerminateTimeoutError struct {
	PID int
}

func (e *TerminateTimeoutError) Error() string {
	return fmt.Sprintf("timed out waiting for pid %d to exit", e.PID)
}

// CheckProcess reports whether the process with the given pid exists, by
// delivering signal 0. EPERM counts as alive: existence, not control, is
// what is being probed. Any errno beyond ESRCH/EPERM fails with a
// LivenessError.
func CheckProcess(pid int) (bool, error) {
	switch err := unix.Kill(pid, 0); err {
	case nil:
		return true, nil
	case unix.ESRCH:
		return false, nil
	case unix.EPERM:
		return true, nil
	default:
		return false, &LivenessError{PID: pid, Err: err}
	}
}

// TerminationPolicy bounds a single termination attempt. It is supplied per
// call and never persisted.
type TerminationPolicy struct {
	// Timeout is the total time to wait for the process to exit after the
	// terminate signal is sent.
	Timeout time.Duration
	// PollInterval is the cadence of the liveness probe.
	PollInterval time.Duration
}

// Terminator shuts a tracked process down: it sends the terminate
// instruction, then polls the process' liveness until it exits or the
// policy's timeout elapses.
type Terminator struct {
	// Clock drives the poll cadence and the deadline. Tests swap in a fake.
	Clock clockwork.Clock

	send  func(instruction string, pid int) error
	check func(pid int) (bool, error)
}

// NewTerminator creates a Terminator backed by the real clock and the real
// signal primitives.
func NewTerminator() *Terminator {
	return &Terminator{
		Clock: clockwork.NewRealClock(),
		send:  SendSignal,
		check: CheckProcess,
	}
}

// Terminate signals pid to terminate and waits for it to exit. A failure to
// dispatch the initial signal fails the whole call. The wait polls at
// p.PollInterval and is strictly bounded by p.Timeout; a process that
// outlives it fails with a TerminateTimeoutError. Cancelling ctx ends the
// wait early with ctx's error.
func (t *Terminator) Terminate(ctx context.Context, pid int, p TerminationPolicy) error {
	if err := t.send("terminate", pid); err != nil {
		return errors.Wrap(err, "failed to signal process")
	}

	deadline := t.Clock.Now().Add(p.Timeout)

	for {
		alive, err := t.check(pid)
		if err != nil {
			return err
		}
		if !alive {
			return nil
		}

		if !t.Clock.Now().Before(deadline) {
			return &TerminateTimeoutError{PID: pid}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.Clock.After(p.PollInterval):
		}
	}
}
