// Package clipboard provides nodegraph.Clipboard sinks: an in-process
// buffer and the operating system clipboard.
package clipboard

import (
	"context"
	"errors"
	"sync"

	"github.com/atotto/clipboard"
)

// ErrUnsupported is returned by System when no clipboard utility is available.
var ErrUnsupported = errors.New("clipboard: system clipboard unavailable")

// Memory is a process-local clipboard, shared by everything holding the
// same instance.
type Memory struct {
	mu   sync.RWMutex
	text string
}

// NewMemory creates an empty in-process clipboard.
func NewMemory() *Memory {
	return &Memory{}
}

// Write replaces the clipboard contents.
func (m *Memory) Write(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	m.text = text
	m.mu.Unlock()
	return nil
}

// Read returns the clipboard contents.
func (m *Memory) Read(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.text, nil
}

// System reads and writes the OS clipboard through the platform's clipboard
// utility (pbcopy, xclip, xsel, wl-clipboard or the Windows API).
type System struct{}

// NewSystem returns the OS clipboard sink.
func NewSystem() *System {
	return &System{}
}

// Write copies text to the OS clipboard.
func (System) Write(ctx context.Context, text string) error {
	if clipboard.Unsupported {
		return ErrUnsupported
	}
	_, err := await(ctx, func() (struct{}, error) {
		return struct{}{}, clipboard.WriteAll(text)
	})
	return err
}

// Read returns the OS clipboard text.
func (System) Read(ctx context.Context) (string, error) {
	if clipboard.Unsupported {
		return "", ErrUnsupported
	}
	return await(ctx, clipboard.ReadAll)
}

type outcome[T any] struct {
	val T
	err error
}

// await runs fn on its own goroutine so that a hung clipboard utility
// cannot outlive ctx.
func await[T any](ctx context.Context, fn func() (T, error)) (T, error) {
	done := make(chan outcome[T], 1)
	go func() {
		v, err := fn()
		done <- outcome[T]{v, err}
	}()
	select {
	case o := <-done:
		return o.val, o.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
