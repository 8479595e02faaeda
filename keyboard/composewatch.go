package keyboard

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"wlkbd/internal/logging"
)

// ComposeFilePath returns the user's compose file: $XCOMPOSEFILE if
// set, otherwise ~/.XCompose. The file may not exist.
func ComposeFilePath() string {
	if p := os.Getenv("XCOMPOSEFILE"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".XCompose")
}

// ComposeWatcher rebuilds a state's compose session when the compose
// file changes on disk, so edits take effect without restarting the
// client. Watches the file's directory, since editors typically replace
// the file rather than write it in place.
type ComposeWatcher struct {
	state     *KeyboardState
	path      string
	fsWatcher *fsnotify.Watcher
	log       *logging.Logger

	done chan struct{}
}

// WatchComposeFile starts watching path for the given state. An empty
// path selects ComposeFilePath(). Stop must be called to release the
// watcher.
func WatchComposeFile(state *KeyboardState, path string) (*ComposeWatcher, error) {
	if path == "" {
		path = ComposeFilePath()
	}
	if path == "" {
		return nil, fmt.Errorf("no compose file to watch")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsWatcher.Add(filepath.Dir(absPath)); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("watch directory: %w", err)
	}

	w := &ComposeWatcher{
		state:     state,
		path:      absPath,
		fsWatcher: fsWatcher,
		log:       logging.Default().WithComponent("composewatch"),
		done:      make(chan struct{}),
	}
	go w.watchLoop()
	return w, nil
}

// Path returns the watched compose file path.
func (w *ComposeWatcher) Path() string {
	return w.path
}

// Stop shuts the watcher down.
func (w *ComposeWatcher) Stop() error {
	close(w.done)
	return w.fsWatcher.Close()
}

// watchLoop debounces rapid write bursts before reloading, the usual
// save pattern being several events in quick succession.
func (w *ComposeWatcher) watchLoop() {
	var debounce *time.Timer
	const debounceDelay = 100 * time.Millisecond

	for {
		select {
		case <-w.done:
			if debounce != nil {
				debounce.Stop()
			}
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if event.Name != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(debounceDelay, func() {
				w.log.Debug("compose file changed, reloading", "path", w.path)
				w.state.ReloadCompose()
			})

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("compose watch error", "error", err)
		}
	}
}
