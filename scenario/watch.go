package scenario

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/wippyai/contract-abi/errors"
)

// DefaultDebounce is how long a file must stay quiet before it is reloaded.
const DefaultDebounce = 200 * time.Millisecond

// Watcher reloads a scenario file when it changes on disk.
type Watcher struct {
	Logger   *zap.Logger
	Path     string
	Debounce time.Duration
}

// Watch calls fn with the parsed scenario once at start and again after
// every settled change, until ctx ends. Parse errors are passed to fn.
// The parent directory is watched so editors that replace the file on
// save are followed.
func (w *Watcher) Watch(ctx context.Context, fn func(*Scenario, error)) error {
	logger := w.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	abs, err := filepath.Abs(w.Path)
	if err != nil {
		return errors.Load("resolve "+w.Path, err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Load("create file watcher", err)
	}
	defer fw.Close()

	if err := fw.Add(filepath.Dir(abs)); err != nil {
		return errors.Load("watch "+filepath.Dir(abs), err)
	}

	fn(LoadFile(abs))

	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			logger.Debug("scenario changed", zap.String("path", abs), zap.Stringer("op", event.Op))
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			pending = timer.C

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("scenario watcher error", zap.Error(err))

		case <-pending:
			pending = nil
			fn(LoadFile(abs))
		}
	}
}
