// Package linearize records concurrent set histories and checks them for
// linearizability against a sequential set model.
package linearize

import (
	"fmt"
	"sync"
	"time"
)

// Kind is the operation recorded by an Event.
type Kind uint8

const (
	Add Kind = iota
	Remove
	Contains
)

func (k Kind) String() string {
	switch k {
	case Add:
		return "add"
	case Remove:
		return "remove"
	case Contains:
		return "contains"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Event is one completed call. Start and End are nanoseconds since the
// recorder was created, read from the monotonic clock.
type Event struct {
	Client int
	Kind   Kind
	Key    int64
	Result bool
	Start  int64
	End    int64
}

func (e Event) String() string {
	return fmt.Sprintf("c%d %s(%d)=%t [%d,%d]", e.Client, e.Kind, e.Key, e.Result, e.Start, e.End)
}

// precedes reports whether e returned before o was invoked.
func (e Event) precedes(o Event) bool {
	return e.End < o.Start
}

// Recorder collects events from many goroutines.
type Recorder struct {
	epoch  time.Time
	mu     sync.Mutex
	events []Event
}

func NewRecorder() *Recorder {
	return &Recorder{epoch: time.Now()}
}

// Now returns the current timestamp. Take it immediately before invoking the call.
func (r *Recorder) Now() int64 {
	return time.Since(r.epoch).Nanoseconds()
}

// Record stores a call that started at start and has just returned.
func (r *Recorder) Record(client int, kind Kind, key int64, result bool, start int64) {
	end := r.Now()
	r.mu.Lock()
	r.events = append(r.events, Event{
		Client: client,
		Kind:   kind,
		Key:    key,
		Result: result,
		Start:  start,
		End:    end,
	})
	r.mu.Unlock()
}

// Events returns a copy of the recorded history.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}
