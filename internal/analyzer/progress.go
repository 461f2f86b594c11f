package analyzer

import "fmt"

// ProgressStatus is the state of one file within a batch.
type ProgressStatus string

const (
	ProgressPending  ProgressStatus = "pending"
	ProgressWorking  ProgressStatus = "working"
	ProgressComplete ProgressStatus = "complete"
	ProgressFailed   ProgressStatus = "failed"
)

// ProgressEvent is emitted while a batch of files is analyzed.
type ProgressEvent struct {
	Path    string
	Status  ProgressStatus
	Message string
	Cached  bool
}

// ProgressReporter emits progress events through a buffered channel.
type ProgressReporter struct {
	ch chan ProgressEvent
}

// NewProgressReporter creates a ProgressReporter with a buffered channel of size 64.
func NewProgressReporter() *ProgressReporter {
	return &ProgressReporter{
		ch: make(chan ProgressEvent, 64),
	}
}

// Emit sends a progress event in a non-blocking fashion.
// If the channel is full, the event is silently dropped.
func (pr *ProgressReporter) Emit(event ProgressEvent) {
	select {
	case pr.ch <- event:
	default:
	}
}

// Subscribe returns a read-only channel for consuming progress events.
func (pr *ProgressReporter) Subscribe() <-chan ProgressEvent {
	return pr.ch
}

// Close closes the progress event channel.
func (pr *ProgressReporter) Close() {
	close(pr.ch)
}

// FormatProgress formats a ProgressEvent as a human-readable status line.
func FormatProgress(event ProgressEvent) string {
	switch event.Status {
	case ProgressPending:
		return fmt.Sprintf("  ○ %s (pending)", event.Path)
	case ProgressWorking:
		return fmt.Sprintf("  ● %s...", event.Path)
	case ProgressComplete:
		if event.Cached {
			return fmt.Sprintf("  ✓ %s (cached)", event.Path)
		}
		return fmt.Sprintf("  ✓ %s", event.Path)
	case ProgressFailed:
		return fmt.Sprintf("  ✗ %s failed: %s", event.Path, event.Message)
	default:
		return fmt.Sprintf("  ? %s (unknown status)", event.Path)
	}
}
