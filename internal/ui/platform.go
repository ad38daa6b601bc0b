package ui

import "github.com/atotto/clipboard"

// copyToClipboardFn is the active clipboard implementation. Tests replace it
// via StubClipboard to prevent side effects.
var copyToClipboardFn = clipboard.WriteAll

// CopyToClipboard copies text to the system clipboard.
func CopyToClipboard(text string) error { return copyToClipboardFn(text) }

// StubClipboard replaces the clipboard with fn and returns a restore function.
func StubClipboard(fn func(string) error) (restore func()) {
	orig := copyToClipboardFn
	copyToClipboardFn = fn
	return func() { copyToClipboardFn = orig }
}
