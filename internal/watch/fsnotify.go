package watch

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FSWatcher uses OS-native notifications. It watches the directory of each
// added file, since editors often replace a file by renaming over it, and
// forwards only events for the added files.
type FSWatcher struct {
	w   *fsnotify.Watcher
	evC chan Event
	erC chan error

	mu    sync.Mutex
	files map[string]bool
	dirs  map[string]int
}

// NewFSWatcher creates an FSWatcher.
func NewFSWatcher() (*FSWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	fw := &FSWatcher{
		w:     w,
		evC:   make(chan Event, 128),
		erC:   make(chan error, 1),
		files: make(map[string]bool),
		dirs:  make(map[string]int),
	}

	go fw.loop()

	return fw, nil
}

func (fw *FSWatcher) loop() {
	defer close(fw.evC)

	for {
		select {
		case ev, ok := <-fw.w.Events:
			if !ok {
				return
			}

			if !fw.watched(ev.Name) {
				continue
			}

			if op := convert(ev.Op); op != 0 {
				fw.evC <- Event{Path: filepath.Clean(ev.Name), Op: op, Time: time.Now()}
			}
		case err, ok := <-fw.w.Errors:
			if !ok {
				return
			}

			select {
			case fw.erC <- err:
			default:
			}
		}
	}
}

func convert(in fsnotify.Op) Op {
	var op Op

	if in&fsnotify.Create != 0 {
		op |= OpCreate
	}

	if in&fsnotify.Write != 0 {
		op |= OpWrite
	}

	if in&fsnotify.Remove != 0 {
		op |= OpRemove
	}

	if in&fsnotify.Rename != 0 {
		op |= OpRename
	}

	if in&fsnotify.Chmod != 0 {
		op |= OpChmod
	}

	return op
}

func (fw *FSWatcher) watched(name string) bool {
	abs, err := filepath.Abs(name)
	if err != nil {
		return false
	}

	fw.mu.Lock()
	defer fw.mu.Unlock()

	return fw.files[abs]
}

func (fw *FSWatcher) Events() <-chan Event { return fw.evC }
func (fw *FSWatcher) Errors() <-chan error { return fw.erC }

// Add starts watching name through its parent directory.
func (fw *FSWatcher) Add(name string) error {
	abs, err := filepath.Abs(name)
	if err != nil {
		return err
	}

	dir := filepath.Dir(abs)

	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.files[abs] {
		return nil
	}

	if fw.dirs[dir] == 0 {
		if err := fw.w.Add(dir); err != nil {
			return err
		}
	}

	fw.dirs[dir]++
	fw.files[abs] = true

	return nil
}

func (fw *FSWatcher) Remove(name string) error {
	abs, err := filepath.Abs(name)
	if err != nil {
		return err
	}

	dir := filepath.Dir(abs)

	fw.mu.Lock()
	defer fw.mu.Unlock()

	if !fw.files[abs] {
		return nil
	}

	delete(fw.files, abs)

	fw.dirs[dir]--
	if fw.dirs[dir] > 0 {
		return nil
	}

	delete(fw.dirs, dir)

	return fw.w.Remove(dir)
}

func (fw *FSWatcher) Close() error { return fw.w.Close() }
