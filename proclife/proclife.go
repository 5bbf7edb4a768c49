// Package proclife manages the observable lifecycle of an operating-system
// process: it records the process' identity in a durable marker file,
// translates symbolic shutdown instructions into OS signals, fans incoming
// signals out to subscribers, and drives a bounded graceful termination of a
// tracked process.
//
// Mechanism of Operation
//
// PID Markers
//
// A process claims its identity on disk by writing its pid, in decimal text,
// into a marker file whose path is derived from the application's own file
// path with the extension replaced by "pid". Any process can later read the
// marker to discover the recorded owner.
//
// The marker survives crashes, so a marker on disk does not by itself prove
// the owner is alive; it may be a stale lock left by a previous instance at
// the same path. Two protections handle this. First, deletion is guarded: a
// Guard only removes the marker if the recorded pid still equals its own, so
// a restarted instance that re-claimed the path never loses its marker to the
// old instance's cleanup. Second, the recorded pid can be probed with a
// liveness check (signal 0) to tell a live owner from a leftover record.
//
// Signals
//
// Symbolic instructions (hangup, cont, interrupt, stop/terminate, quit, kill)
// map onto a closed set of POSIX signals. A SignalWatcher observes the
// deliverable subset of those classes and broadcasts each arrival to its
// subscribers; interrupt, quit and terminate are terminal, and the watcher
// retires after relaying one of them.
//
// Every component reports lifecycle transitions through a Journaler, so a
// host can persist, print, or discard them as it sees fit.
package proclife
