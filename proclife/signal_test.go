package proclife

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestSignalForInstruction(t *testing.T) {
	tests := []struct {
		instruction string
		want        unix.Signal
	}{
		{"hangup", unix.SIGHUP},
		{"cont", unix.SIGCONT},
		{"interrupt", unix.SIGINT},
		{"stop", unix.SIGTERM},
		{"terminate", unix.SIGTERM},
		{"quit", unix.SIGQUIT},
		{"kill", unix.SIGKILL},
	}

	for _, test := range tests {
		sig, ok := signalForInstruction(test.instruction)
		require.True(t, ok, "instruction %q not recognized", test.instruction)
		require.Equal(t, test.want, sig, "instruction %q", test.instruction)
	}

	_, ok := signalForInstruction("explode")
	require.False(t, ok)
}

func TestSendSignal(t *testing.T) {
	// neverPID is far beyond any kernel's pid_max, so no process ever has it.
	const neverPID = 999999999

	t.Run("case insensitive", func(t *testing.T) {
		// SIGCONT to ourselves is harmless.
		require.NoError(t, SendSignal("cont", os.Getpid()))
		require.NoError(t, SendSignal("CONT", os.Getpid()))
		require.NoError(t, SendSignal("Cont", os.Getpid()))
	})

	t.Run("invalid instruction sends nothing", func(t *testing.T) {
		err := SendSignal("explode", os.Getpid())

		var instErr *InstructionError
		require.True(t, errors.As(err, &instErr), "expected InstructionError, got %v", err)
		require.Equal(t, "explode", instErr.Instruction)
	})

	t.Run("delivery failure", func(t *testing.T) {
		err := SendSignal("terminate", neverPID)

		var deliveryErr *DeliveryError
		require.True(t, errors.As(err, &deliveryErr), "expected DeliveryError, got %v", err)
		require.Equal(t, neverPID, deliveryErr.PID)
		require.Equal(t, unix.SIGTERM, deliveryErr.Signal)
		require.True(t, errors.Is(deliveryErr.Err, unix.ESRCH))
	})
}
