package journal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/quillback/proclife/proclife"
)

// Event describes the JSON structure of an event to be written.
type Event struct {
	Time time.Time      `json:"time"`
	Type string         `json:"type"`
	Data proclife.Event `json:"data"`
}

// Writer is a simple journaler that writes line-delimited JSON events into
// the writer.
type Writer struct{ w io.Writer }

var _ proclife.Journaler = Writer{}

// NewWriter creates a new journal writer.
func NewWriter(w io.Writer) Writer {
	return Writer{w}
}

// Write writes the given event into the writer. Writes are atomic as long as
// the underlying writer's Write is.
func (l Writer) Write(ev proclife.Event) error {
	evJSON := Event{
		Time: time.Now(),
		Type: ev.Type(),
		Data: ev,
	}

	buf := bytes.Buffer{}
	buf.Grow(512)

	if err := json.NewEncoder(&buf).Encode(evJSON); err != nil {
		return errors.Wrap(err, "failed to marshal event")
	}

	_, err := l.w.Write(buf.Bytes())
	if err != nil {
		return errors.Wrap(err, "failed to write event")
	}

	return nil
}

// HumanWriter is a journaler that writes one human-readable line per event,
// meant for a terminal rather than for parsing back.
type HumanWriter struct {
	name string
	w    io.Writer
}

var _ proclife.Journaler = HumanWriter{}

// NewHumanWriter creates a new human-readable journal writer. The name is
// printed on each line to identify the output, such as "stderr".
func NewHumanWriter(name string, w io.Writer) HumanWriter {
	return HumanWriter{name, w}
}

// Write writes the event as a single line.
func (l HumanWriter) Write(ev proclife.Event) error {
	now := time.Now().Format(time.Stamp)

	_, err := fmt.Fprintf(l.w, "%s [%s] %s\n", now, l.name, humanize(ev))
	return errors.Wrap(err, "failed to write event")
}

func humanize(ev proclife.Event) string {
	switch ev := ev.(type) {
	case *proclife.EventWarning:
		return fmt.Sprintf("warning from %s: %s", ev.Component, ev.Error)
	case *proclife.EventAcquired:
		return fmt.Sprintf("pid %d recorded at %s", ev.PID, ev.Path)
	case *proclife.EventReleased:
		return fmt.Sprintf("pid file %s released", ev.Path)
	case *proclife.EventSignalReceived:
		if ev.Terminal {
			return fmt.Sprintf("received terminal signal %s", ev.Signal)
		}
		return fmt.Sprintf("received signal %s", ev.Signal)
	case *proclife.EventMarkerChanged:
		return fmt.Sprintf("pid file %s %s by another process", ev.Path, ev.Op)
	default:
		return fmt.Sprintf("%s: %#v", ev.Type(), ev)
	}
}
