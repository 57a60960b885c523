package loader

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultWatchDebounce coalesces bursts of file events into one reload.
const DefaultWatchDebounce = 200 * time.Millisecond

// ReloadError wraps a failed reload with the phase it failed in.
type ReloadError struct {
	Phase string    // "read", "load"
	Cause error     // The underlying error
	Time  time.Time // When the error occurred
}

func (e ReloadError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Phase, e.Cause)
}

func (e ReloadError) Unwrap() error {
	return e.Cause
}

// Reload is sent after the dataset file changed. Exactly one of Result and
// Err is set.
type Reload struct {
	Result *Result
	Err    *ReloadError
	Hash   string
}

// WatcherConfig configures a Watcher.
type WatcherConfig struct {
	Path     string
	Debounce time.Duration
	Logger   zerolog.Logger
}

// Watcher reloads a dataset file whenever its content changes.
type Watcher struct {
	path     string
	debounce time.Duration
	log      zerolog.Logger

	fs        *fsnotify.Watcher
	events    chan Reload
	closeOnce sync.Once

	mu       sync.Mutex
	lastHash string
	started  bool

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewWatcher creates a watcher for cfg.Path. Call Start to begin watching.
func NewWatcher(cfg WatcherConfig) (*Watcher, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("watch: empty path")
	}
	if _, err := DetectFormat(cfg.Path); err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve path: %w", err)
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultWatchDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		path:     abs,
		debounce: cfg.Debounce,
		log:      cfg.Logger,
		fs:       fsw,
		events:   make(chan Reload, 1),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}, nil
}

// Events delivers reloads. The channel is closed after Stop.
func (w *Watcher) Events() <-chan Reload {
	return w.events
}

// Start records the current content hash and begins watching. The parent
// directory is watched so editors that replace the file by rename are
// still seen.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return nil
	}

	if data, err := os.ReadFile(w.path); err == nil {
		w.lastHash = hashBytes(data)
	}
	if err := w.fs.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch dataset dir: %w", err)
	}

	w.started = true
	go w.loop()
	return nil
}

// Stop ends watching and closes Events. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.cancel()
	w.mu.Lock()
	started := w.started
	w.mu.Unlock()

	if started {
		<-w.done
	} else {
		w.fs.Close()
		w.closeEvents()
	}
}

func (w *Watcher) closeEvents() {
	w.closeOnce.Do(func() { close(w.events) })
}

// LastHash returns the hash of the last loaded content.
func (w *Watcher) LastHash() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastHash
}

func (w *Watcher) loop() {
	defer close(w.done)
	defer w.closeEvents()
	defer w.fs.Close()

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			if r, ok := w.reload(); ok {
				select {
				case w.events <- r:
				case <-w.ctx.Done():
					return
				}
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			// Errors are logged but don't stop the watcher
			w.log.Warn().Err(err).Str("path", w.path).Msg("dataset watcher error")
		}
	}
}

// reload reads and decodes the file. It reports false when the content is
// unchanged since the last successful load.
func (w *Watcher) reload() (Reload, bool) {
	var data []byte
	if rerr := safeRun("read", func() error {
		var err error
		data, err = os.ReadFile(w.path)
		return err
	}); rerr != nil {
		w.log.Error().Err(rerr.Cause).Str("phase", rerr.Phase).Msg("dataset reload failed")
		return Reload{Err: rerr}, true
	}

	hash := hashBytes(data)
	w.mu.Lock()
	unchanged := hash == w.lastHash
	w.mu.Unlock()
	if unchanged {
		return Reload{}, false
	}

	var res *Result
	if rerr := safeRun("load", func() error {
		var err error
		res, err = LoadFile(w.ctx, w.path)
		return err
	}); rerr != nil {
		w.log.Error().Err(rerr.Cause).Str("phase", rerr.Phase).Msg("dataset reload failed")
		return Reload{Err: rerr, Hash: hash}, true
	}

	w.mu.Lock()
	w.lastHash = hash
	w.mu.Unlock()

	w.log.Info().Int("records", res.Dataset.Len()).Str("path", w.path).Msg("dataset reloaded")
	return Reload{Result: res, Hash: hash}, true
}

// safeRun executes fn and recovers from any panics.
func safeRun(phase string, fn func() error) *ReloadError {
	var result *ReloadError
	func() {
		defer func() {
			if r := recover(); r != nil {
				result = &ReloadError{
					Phase: phase,
					Cause: fmt.Errorf("panic: %v\n%s", r, debug.Stack()),
					Time:  time.Now(),
				}
			}
		}()
		if err := fn(); err != nil {
			result = &ReloadError{Phase: phase, Cause: err, Time: time.Now()}
		}
	}()
	return result
}

func hashBytes(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
