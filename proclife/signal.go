package proclife

import (
	"fmt"
	"strings"

	"golang.org/x/sys/unix"
)

// Signal is the symbolic name of an observed OS signal class.
type Signal string

const (
	SignalHangup    Signal = "hangup"
	SignalCont      Signal = "cont"
	SignalInterrupt Signal = "interrupt"
	SignalQuit      Signal = "quit"
	SignalTerminate Signal = "terminate"
)

func (s Signal) String() string { return string(s) }

// InstructionError is returned for an instruction outside the known set.
// Nothing is sent.
type InstructionError struct {
	Instruction string
}

func (e *InstructionError) Error() string {
	return fmt.Sprintf("invalid signal instruction %q", e.Instruction)
}

// DeliveryError wraps the OS error from a rejected signal send, such as
// ESRCH for a missing process or EPERM for one owned by someone else.
type DeliveryError struct {
	Signal unix.Signal
	PID    int
	Err    error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("failed to send %s to pid %d: %v", unix.SignalName(e.Signal), e.PID, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// signalForInstruction maps an already-lowercased instruction onto its
// signal. "stop" and "terminate" are intentional synonyms.
func signalForInstruction(instruction string) (unix.Signal, bool) {
	switch instruction {
	case "hangup":
		return unix.SIGHUP, true
	case "cont":
		return unix.SIGCONT, true
	case "interrupt":
		return unix.SIGINT, true
	case "stop", "terminate":
		return unix.SIGTERM, true
	case "quit":
		return unix.SIGQUIT, true
	case "kill":
		return unix.SIGKILL, true
	default:
		return 0, false
	}
}

// SendSignal sends the signal named by the case-insensitive instruction to
// pid. Unrecognized instructions fail with an InstructionError without
// sending anything; an OS rejection fails with a DeliveryError and is never
// retried here.
func SendSignal(instruction string, pid int) error {
	sig, ok := signalForInstruction(strings.ToLower(instruction))
	if !ok {
		return &InstructionError{Instruction: instruction}
	}

	if err := unix.Kill(pid, sig); err != nil {
		return &DeliveryError{Signal: sig, PID: pid, Err: err}
	}

	return nil
}
