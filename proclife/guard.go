package proclife

import (
	"os"
	"sync"
)

// Guard holds the pid file at a path for the lifetime of a scope. It writes
// the marker on construction and removes it, if still owned, on Release.
//
// At most one Guard per path should exist per process instance; two
// concurrent Guards on the same path are undefined by design (first writer
// wins on disk, both attempt the owned delete on teardown).
type Guard struct {
	path string
	j    Journaler

	release sync.Once
}

// NewGuard writes the current pid into the file at path and returns a Guard
// over it. If the write fails, no ownership is claimed and no Guard is
// returned. The caller should arrange for Release to run on every exit path,
// typically with defer.
func NewGuard(path string, j Journaler) (*Guard, error) {
	if err := WritePID(path); err != nil {
		return nil, err
	}

	j.Write(&EventAcquired{PID: os.Getpid(), Path: path})

	return &Guard{path: path, j: j}, nil
}

// Path returns the pid file path held by the guard.
func (g *Guard) Path() string { return g.path }

// Release deletes the pid file if this process still owns it. It runs at
// most once; later calls are no-ops. A failed delete is journaled as a
// warning and swallowed, so releasing can never abort the owning scope's
// teardown.
func (g *Guard) Release() {
	g.release.Do(func() {
		if err := DeletePIDIfOwned(g.path); err != nil {
			g.j.Write(&EventWarning{
				Component: "pidfile",
				Error:     "failed to delete pid file: " + err.Error(),
			})
			return
		}

		g.j.Write(&EventReleased{Path: g.path})
	})
}
