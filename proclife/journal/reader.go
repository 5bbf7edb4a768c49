package journal

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/diamondburned/backwardio"
	"github.com/pkg/errors"
	"github.com/quillback/proclife/proclife"
)

// Reader implements a primitive reader that parses journals written by
// Writer, most recent entry first.
type Reader struct {
	b *backwardio.Scanner
}

// NewReader creates a new journal reader.
func NewReader(r io.ReadSeeker) *Reader {
	return &Reader{backwardio.NewScanner(r)}
}

// Read reads a single entry, starting from the end of the file. An EOF error
// is returned if the file has been fully consumed.
func (r *Reader) Read() (proclife.Event, time.Time, error) {
	var line []byte
	var err error

	for {
		line, err = r.b.ReadUntil('\n')
		if err != nil {
			return nil, time.Time{}, err
		}
		if len(line) > 0 {
			break
		}
	}

	var rawEvent struct {
		Time time.Time       `json:"time"`
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}

	if err := json.Unmarshal(line, &rawEvent); err != nil {
		return nil, time.Time{}, errors.Wrap(err, "failed to decode JSON")
	}

	event := proclife.NewEvent(rawEvent.Type)
	if event == nil {
		return nil, time.Time{}, fmt.Errorf("unknown event %q", rawEvent.Type)
	}

	if err := json.Unmarshal(rawEvent.Data, event); err != nil {
		return nil, time.Time{}, errors.Wrap(err, "failed to decode event data")
	}

	return event, rawEvent.Time, nil
}

// Owner is the marker ownership recovered from a journal: the pid recorded
// by the most recent acquisition that was never released. It diagnoses a
// stale lock after a crash, where the pid file survived but its writer did
// not get to release it.
type Owner struct {
	PID  int
	Path string
}

// LastOwnerFromFile reads the last recorded owner from the journal at the
// given file path.
func LastOwnerFromFile(path string) (*Owner, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return LastOwner(f)
}

// LastOwner reads the given journal backwards for the most recent
// acquisition. Nil is returned without an error if the journal records no
// owner, or if the most recent acquisition was released.
func LastOwner(r io.ReadSeeker) (*Owner, error) {
	reader := NewReader(r)

	for {
		ev, _, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, nil
			}
			return nil, err
		}

		switch ev := ev.(type) {
		case *proclife.EventAcquired:
			return &Owner{PID: ev.PID, Path: ev.Path}, nil
		case *proclife.EventReleased:
			return nil, nil
		}
	}
}
