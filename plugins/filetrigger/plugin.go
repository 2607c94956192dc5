// Package filetrigger drives a lifecycle engine from a plain text file.
// Every line appended to the file names one event (ON_START, start, ...);
// blank lines and lines starting with # are ignored.
package filetrigger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/lifecycle/pkg/lifecycle"
	"github.com/bft-labs/lifecycle/pkg/log"
)

// Sink receives parsed events. *lifecycle.Engine implements it.
type Sink interface {
	HandleEvent(event lifecycle.Event) error
	CurrentState() lifecycle.State
}

// ErrorHandler is told about lines that could not be applied.
type ErrorHandler func(line string, err error)

// Trigger tails a file and forwards its lines to a Sink.
// All Sink calls happen on the goroutine running Run.
type Trigger struct {
	path          string
	sink          Sink
	logger        log.Logger
	onError       ErrorHandler
	stopOnDestroy bool

	offset  int64
	partial []byte
	// info and tail identify the content already consumed.
	info os.FileInfo
	tail []byte
}

// tailSize is how many consumed bytes are checked to detect a rewrite.
const tailSize = 64

// New creates a trigger for path feeding sink.
func New(path string, sink Sink, opts ...Option) *Trigger {
	t := &Trigger{
		path:   path,
		sink:   sink,
		logger: log.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Name returns the plugin identifier.
func (t *Trigger) Name() string {
	return "filetrigger"
}

// Path returns the watched file.
func (t *Trigger) Path() string {
	return t.path
}

// Run reads the current file contents, then follows appends until ctx is
// cancelled or, with WithStopOnDestroy, the sink reaches Destroyed.
// It returns nil in both cases.
func (t *Trigger) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(t.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	t.logger.Info("file trigger started", log.String("path", t.path))
	defer t.logger.Info("file trigger stopped", log.String("path", t.path))

	if t.poll() {
		return nil
	}

	name := filepath.Base(t.path)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if t.poll() {
				return nil
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			t.logger.Error("file trigger: watcher error", log.Err(err))
		}
	}
}

// poll applies every complete line written since the last call and reports
// whether Run should stop.
func (t *Trigger) poll() bool {
	lines, err := t.readNew()
	if err != nil {
		t.logger.Error("file trigger: read failed", log.String("path", t.path), log.Err(err))
		t.report("", err)
		return false
	}
	for _, line := range lines {
		t.apply(line)
		if t.stopOnDestroy && t.sink.CurrentState() == lifecycle.StateDestroyed {
			return true
		}
	}
	return false
}

// readNew returns the complete lines appended since the last read. A file
// shorter than the last offset is treated as truncated and read from the start.
func (t *Trigger) readNew() ([]string, error) {
	f, err := os.Open(t.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if t.rewritten(f, info) {
		t.logger.Debug("file trigger: file rewritten", log.String("path", t.path))
		t.offset = 0
		t.partial = nil
		t.tail = nil
	}
	t.info = info
	if _, err := f.Seek(t.offset, io.SeekStart); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	t.offset += int64(len(data))
	t.tail = append(t.tail, data...)
	if len(t.tail) > tailSize {
		t.tail = append([]byte(nil), t.tail[len(t.tail)-tailSize:]...)
	}

	buf := append(t.partial, data...)
	end := bytes.LastIndexByte(buf, '\n')
	if end < 0 {
		t.partial = buf
		return nil, nil
	}
	t.partial = append([]byte(nil), buf[end+1:]...)

	var lines []string
	for _, raw := range strings.Split(string(buf[:end]), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// rewritten reports whether the file no longer continues what was read:
// it was replaced, shrank, went back in time, or its last consumed bytes
// changed.
func (t *Trigger) rewritten(f *os.File, info os.FileInfo) bool {
	if t.info == nil {
		return false
	}
	if !os.SameFile(t.info, info) || info.Size() < t.offset || info.ModTime().Before(t.info.ModTime()) {
		return true
	}
	if len(t.tail) == 0 {
		return false
	}
	buf := make([]byte, len(t.tail))
	if _, err := f.ReadAt(buf, t.offset-int64(len(t.tail))); err != nil {
		return true
	}
	return !bytes.Equal(buf, t.tail)
}

func (t *Trigger) apply(line string) {
	event, err := lifecycle.ParseEvent(line)
	if err != nil {
		t.logger.Warn("file trigger: skipping line", log.String("line", line), log.Err(err))
		t.report(line, err)
		return
	}
	if err := t.sink.HandleEvent(event); err != nil {
		t.logger.Warn("file trigger: event failed",
			log.Stringer("event", event),
			log.Stringer("state", t.sink.CurrentState()),
			log.Err(err),
		)
		t.report(line, err)
		return
	}
	t.logger.Debug("file trigger: event applied", log.Stringer("event", event))
}

func (t *Trigger) report(line string, err error) {
	if t.onError != nil {
		t.onError(line, err)
	}
}
