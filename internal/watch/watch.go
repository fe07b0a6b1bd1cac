// Package watch reports changes to program files so that the CLI can
// re-run a program when its source is rewritten.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Op is a bit set of file operations.
type Op uint8

const (
	OpCreate Op = 1 << iota
	OpWrite
	OpRemove
	OpRename
	OpChmod
)

func (op Op) String() string {
	var parts []string

	for _, f := range []struct {
		bit  Op
		name string
	}{
		{OpCreate, "create"}, {OpWrite, "write"}, {OpRemove, "remove"}, {OpRename, "rename"}, {OpChmod, "chmod"},
	} {
		if op&f.bit != 0 {
			parts = append(parts, f.name)
		}
	}

	if len(parts) == 0 {
		return "none"
	}

	return strings.Join(parts, "|")
}

// Event is one observed change.
type Event struct {
	Path string
	Op   Op
	Time time.Time
}

// Watcher delivers change events for the files added to it.
type Watcher interface {
	Events() <-chan Event
	Errors() <-chan error
	Add(name string) error
	Remove(name string) error
	Close() error
}

// New returns an OS-native watcher, or a polling watcher when native
// notifications are unavailable or poll is set.
func New(ctx context.Context, poll bool, interval time.Duration) Watcher {
	if !poll {
		if w, err := NewFSWatcher(); err == nil {
			return w
		}
	}

	return NewPollWatcher(ctx, interval)
}

type fileState struct {
	mod    time.Time
	size   int64
	exists bool
}

func stat(path string) fileState {
	info, err := os.Stat(path)
	if err != nil {
		return fileState{}
	}

	return fileState{mod: info.ModTime(), size: info.Size(), exists: true}
}

// PollWatcher compares modification times and sizes at a fixed interval.
// It works everywhere, including file systems without notifications.
type PollWatcher struct {
	evCh chan Event
	erCh chan error
	stop context.CancelFunc
	done chan struct{}

	mu    sync.Mutex
	files map[string]fileState
}

// NewPollWatcher starts polling until ctx is done or Close is called.
func NewPollWatcher(ctx context.Context, interval time.Duration) *PollWatcher {
	if ctx == nil {
		ctx = context.Background()
	}

	if interval <= 0 {
		interval = 250 * time.Millisecond
	}

	ctx, cancel := context.WithCancel(ctx)

	w := &PollWatcher{
		evCh:  make(chan Event, 64),
		erCh:  make(chan error, 1),
		stop:  cancel,
		done:  make(chan struct{}),
		files: make(map[string]fileState),
	}

	go w.loop(ctx, interval)

	return w
}

func (w *PollWatcher) Events() <-chan Event { return w.evCh }
func (w *PollWatcher) Errors() <-chan error { return w.erCh }

// Add starts watching name. The file does not have to exist yet.
func (w *PollWatcher) Add(name string) error {
	abs, err := filepath.Abs(name)
	if err != nil {
		return err
	}

	w.mu.Lock()
	w.files[abs] = stat(abs)
	w.mu.Unlock()

	return nil
}

func (w *PollWatcher) Remove(name string) error {
	abs, err := filepath.Abs(name)
	if err != nil {
		return err
	}

	w.mu.Lock()
	delete(w.files, abs)
	w.mu.Unlock()

	return nil
}

// Close stops polling and closes the event channel.
func (w *PollWatcher) Close() error {
	w.stop()
	<-w.done

	return nil
}

func (w *PollWatcher) loop(ctx context.Context, interval time.Duration) {
	defer close(w.done)
	defer close(w.evCh)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, ev := range w.scan() {
				select {
				case w.evCh <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

// scan compares every watched file against its last known state.
func (w *PollWatcher) scan() []Event {
	w.mu.Lock()
	defer w.mu.Unlock()

	var events []Event

	now := time.Now()

	for path, old := range w.files {
		cur := stat(path)

		var op Op

		switch {
		case old.exists && !cur.exists:
			op = OpRemove
		case !old.exists && cur.exists:
			op = OpCreate
		case cur.exists && (!cur.mod.Equal(old.mod) || cur.size != old.size):
			op = OpWrite
		}

		if op != 0 {
			w.files[path] = cur
			events = append(events, Event{Path: path, Op: op, Time: now})
		}
	}

	return events
}

// Debounce forwards the last event of every burst once no further event
// has arrived for quiet. The returned channel closes when events closes or
// ctx is done.
func Debounce(ctx context.Context, events <-chan Event, quiet time.Duration) <-chan Event {
	out := make(chan Event)

	go func() {
		defer close(out)

		var (
			pending *Event
			timer   *time.Timer
			fire    <-chan time.Time
		)

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-events:
				if !ok {
					return
				}

				pending = &ev

				if timer == nil {
					timer = time.NewTimer(quiet)
				} else {
					timer.Reset(quiet)
				}

				fire = timer.C
			case <-fire:
				fire = nil

				if pending == nil {
					continue
				}

				select {
				case out <- *pending:
				case <-ctx.Done():
					return
				}

				pending = nil
			}
		}
	}()

	return out
}
