// Package metrics records pipeline counters for files, rows and dashboard views.
package metrics

import "time"

// Recorder receives pipeline events. Implementations must be safe for
// concurrent use.
type Recorder interface {
	IncFileImported(recordType string)
	IncFileFailed(reason string)
	ObserveRowsAccepted(recordType string, rows int)
	ObserveImportDuration(d time.Duration)
	IncViewComputed(window string)
}

// Noop discards every event.
type Noop struct{}

func (Noop) IncFileImported(string)              {}
func (Noop) IncFileFailed(string)                {}
func (Noop) ObserveRowsAccepted(string, int)     {}
func (Noop) ObserveImportDuration(time.Duration) {}
func (Noop) IncViewComputed(string)              {}
