package proclife

import (
	"bytes"
	"encoding/json"
	"io"
	"time"

	"github.com/pkg/errors"
)

// Journaler describes an event logger.
type Journaler interface {
	Write(Event) error
}

type writerJournaler struct{ w io.Writer }

// NewWriterJournaler creates a new journaler that writes line-delimited JSON
// events into the writer.
func NewWriterJournaler(w io.Writer) Journaler {
	return &writerJournaler{w}
}

// Write writes the given event into the writer. Writes are atomic as long as
// the underlying writer's Write is.
func (l *writerJournaler) Write(ev Event) error {
	type eventJSON struct {
		Time time.Time `json:"time"`
		Type string    `json:"type"`
		Data Event     `json:"data"`
	}

	evJSON := eventJSON{
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

type multiJournaler struct{ js []Journaler }

// MultiJournaler creates a journaler that fans every event out to all the
// given journalers. The first write error is kept and returned once all
// journalers have been attempted.
func MultiJournaler(js ...Journaler) Journaler {
	return &multiJournaler{js}
}

func (m *multiJournaler) Write(ev Event) error {
	var firstErr error
	for _, j := range m.js {
		if err := j.Write(ev); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
