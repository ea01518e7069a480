package gui

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"fitsview/internal/log"
)

// fileWatcher flags writes to the opened file so the status bar can warn
// that the display no longer matches the bytes on disk. The viewer never
// reloads automatically.
type fileWatcher struct {
	watcher *fsnotify.Watcher
	done    chan struct{}
}

func newFileWatcher(path string, onChange func()) (*fileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory: editors that replace the file would otherwise
	// drop the watch on the first write.
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, err
	}

	fw := &fileWatcher{watcher: w, done: make(chan struct{})}
	target := filepath.Clean(path)

	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
					log.Debugf("file changed on disk: %s (%s)", ev.Name, ev.Op)
					onChange()
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Warnf("file watcher: %v", err)
			case <-fw.done:
				return
			}
		}
	}()

	return fw, nil
}

func (fw *fileWatcher) Close() {
	close(fw.done)
	fw.watcher.Close()
}
