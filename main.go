package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/quillback/proclife/proclife"
	"github.com/quillback/proclife/proclife/journal"
	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"
)

var (
	journalFile  string
	timeout      time.Duration
	pollInterval time.Duration
	verbose      bool
)

func init() {
	flag.StringVarP(&journalFile, "journal", "j", "", "append lifecycle events to this journal file")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "how long stop waits for the process to exit")
	flag.DurationVar(&pollInterval, "poll-interval", 100*time.Millisecond, "liveness poll cadence for stop")
	flag.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	flag.Usage = func() {
		f := func(f string, v ...interface{}) {
			fmt.Fprintf(os.Stderr, f, v...)
		}

		f("Usage:\n")
		f("  %s [flags] signal <instruction> <pid>\n", filepath.Base(os.Args[0]))
		f("  %s [flags] stop <pid>\n", filepath.Base(os.Args[0]))
		f("  %s [flags] alive <pid>\n", filepath.Base(os.Args[0]))
		f("  %s [flags] watch\n", filepath.Base(os.Args[0]))
		f("  %s [flags] owner <app-path>\n", filepath.Base(os.Args[0]))
		f("\n")
		f("Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}
}

func main() {
	var err error
	switch flag.Arg(0) {
	case "signal":
		err = signalCmd(flag.Arg(1), flag.Arg(2))
	case "stop":
		err = stopCmd(flag.Arg(1))
	case "alive":
		err = aliveCmd(flag.Arg(1))
	case "watch":
		err = watchCmd()
	case "owner":
		err = ownerCmd(flag.Arg(1))
	case "":
		flag.Usage()
		os.Exit(2)
	default:
		logrus.Fatalf("unknown subcommand %q", flag.Arg(0))
	}

	if err != nil {
		logrus.Fatalln(err)
	}
}

// newJournaler builds the event sink for long-running subcommands: the
// human-readable stderr writer, plus the flock-guarded file journal when -j
// is given.
func newJournaler() (proclife.Journaler, func(), error) {
	human := journal.NewHumanWriter("stderr", os.Stderr)

	if journalFile == "" {
		return human, func() {}, nil
	}

	j, err := journal.NewFileLockJournaler(journalFile)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to open journal")
	}

	return proclife.MultiJournaler(j, human), func() { j.Close() }, nil
}

func parsePID(arg string) (int, error) {
	pid, err := strconv.Atoi(arg)
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid pid %q", arg)
	}
	return pid, nil
}

func signalCmd(instruction, pidArg string) error {
	pid, err := parsePID(pidArg)
	if err != nil {
		return err
	}

	logrus.Debugf("sending %q to pid %d", instruction, pid)
	return proclife.SendSignal(instruction, pid)
}

func stopCmd(pidArg string) error {
	pid, err := parsePID(pidArg)
	if err != nil {
		return err
	}

	logrus.Debugf("terminating pid %d, timeout %s, poll every %s", pid, timeout, pollInterval)

	t := proclife.NewTerminator()
	return t.Terminate(context.Background(), pid, proclife.TerminationPolicy{
		Timeout:      timeout,
		PollInterval: pollInterval,
	})
}

func aliveCmd(pidArg string) error {
	pid, err := parsePID(pidArg)
	if err != nil {
		return err
	}

	alive, err := proclife.CheckProcess(pid)
	if err != nil {
		return err
	}

	if !alive {
		fmt.Println("dead")
		os.Exit(1)
	}

	fmt.Println("alive")
	return nil
}

func watchCmd() error {
	j, closeJournal, err := newJournaler()
	if err != nil {
		return err
	}
	defer closeJournal()

	w := proclife.WatchSignals(context.Background(), j)
	sub := w.Subscribe()

	for {
		select {
		case sig := <-sub:
			logrus.Debugf("observed signal %s", sig)
		case <-w.Done():
			return nil
		}
	}
}

func ownerCmd(appPath string) error {
	if appPath == "" {
		return errors.New("missing app path")
	}

	path := proclife.PIDPath(appPath)

	pid, err := proclife.ReadPID(path)
	if err != nil {
		return err
	}
	if pid == 0 {
		fmt.Printf("no pid recorded at %s\n", path)
		return nil
	}

	alive, err := proclife.CheckProcess(pid)
	if err != nil {
		return err
	}

	if alive {
		fmt.Printf("pid %d recorded at %s, alive\n", pid, path)
	} else {
		fmt.Printf("pid %d recorded at %s, stale\n", pid, path)
	}

	return nil
}
