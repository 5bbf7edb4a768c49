package proclife

// eventType describes an event type.
type eventType = string

const (
	eventWarning        eventType = "warning"
	eventAcquired       eventType = "pid file acquired"
	eventReleased       eventType = "pid file released"
	eventSignalReceived eventType = "signal received"
	eventMarkerChanged  eventType = "pid file changed externally"
)

// Event is an interface describing known events.
type Event interface {
	Type() string
	event()
}

// NewEvent creates a new event from the given event type. It is used
// primarily for decoding events from its type. Nil is returned if the event
// type is unknown.
func NewEvent(eventType string) Event {
	switch eventType {
	case eventWarning:
		return &EventWarning{}
	case eventAcquired:
		return &EventAcquired{}
	case eventReleased:
		return &EventReleased{}
	case eventSignalReceived:
		return &EventSignalReceived{}
	case eventMarkerChanged:
		return &EventMarkerChanged{}
	default:
		return nil
	}
}

// EventWarning is emitted when a non-fatal error occurs, most notably when a
// Guard fails to release its marker on teardown.
type EventWarning struct {
	Component string `json:"component"`
	Error     string `json:"error"`
}

func (ev *EventWarning) Type() string { return eventWarning }
func (ev *EventWarning) event()       {}

// EventAcquired is emitted when a Guard has written its pid into the marker
// file, claiming the path.
type EventAcquired struct {
	PID  int    `json:"pid"`
	Path string `json:"path"`
}

func (ev *EventAcquired) Type() string { return eventAcquired }
func (ev *EventAcquired) event()       {}

// EventReleased is emitted when a Guard has torn down and run its owned
// delete, whether or not the marker was still its own to remove.
type EventReleased struct {
	Path string `json:"path"`
}

func (ev *EventReleased) Type() string { return eventReleased }
func (ev *EventReleased) event()       {}

// EventSignalReceived is emitted by a SignalWatcher for every observed
// signal. Terminal reports whether the signal retires the watcher.
type EventSignalReceived struct {
	Signal   Signal `json:"signal"`
	Terminal bool   `json:"terminal"`
}

func (ev *EventSignalReceived) Type() string { return eventSignalReceived }
func (ev *EventSignalReceived) event()       {}

// MarkerOp contains the possible external modifications to a watched marker
// file.
type MarkerOp string

const (
	MarkerRemoved  MarkerOp = "removed"
	MarkerReplaced MarkerOp = "replaced"
)

// EventMarkerChanged is emitted by a MarkerWatcher when something other than
// the owning Guard removes or rewrites the marker file.
type EventMarkerChanged struct {
	Op   MarkerOp `json:"op"`
	Path string   `json:"path"`
}

func (ev *EventMarkerChanged) Type() string { return eventMarkerChanged }
func (ev *EventMarkerChanged) event()       {}
