// Package clipboard provides system clipboard access.
package clipboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
)

// ErrClipboardUnavailable is returned when clipboard access is not available.
var ErrClipboardUnavailable = errors.New("clipboard unavailable")

// writeAll is swapped out in tests.
var writeAll = clipboard.WriteAll

// IsAvailable checks if clipboard functionality is available on this system.
// On Linux this needs xclip, xsel or wl-clipboard on the PATH.
func IsAvailable() bool {
	return !clipboard.Unsupported
}

// Copy copies the given text to the system clipboard.
// Returns ErrClipboardUnavailable if clipboard access is not available.
func Copy(text string) error {
	if !IsAvailable() {
		return ErrClipboardUnavailable
	}
	if err := writeAll(text); err != nil {
		return fmt.Errorf("writing clipboard: %w", err)
	}
	return nil
}

// System is the system clipboard as a context-aware writer.
type System struct{}

// WriteText copies text to the clipboard. The copy itself cannot be interrupted;
// a context canceled beforehand skips it.
func (System) WriteText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return Copy(text)
}
