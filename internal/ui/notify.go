package ui

import tea "charm.land/bubbletea/v2"

const notifyBuffer = 64

type optionsMsg struct {
	property string
}

// Notifier carries option-load notifications from loader goroutines to the
// event loop.
type Notifier struct {
	ch chan string
}

// NewNotifier creates a notifier.
func NewNotifier() *Notifier {
	return &Notifier{ch: make(chan string, notifyBuffer)}
}

// Notify queues a notification for property. It never blocks; when the
// queue is full the notification is dropped, as the queued ones already
// trigger a refresh that reads the cache.
func (n *Notifier) Notify(property string) {
	select {
	case n.ch <- property:
	default:
	}
}

// wait returns a command that delivers the next notification.
func (n *Notifier) wait() tea.Cmd {
	if n == nil {
		return nil
	}
	return func() tea.Msg {
		return optionsMsg{property: <-n.ch}
	}
}

// drain applies every queued notification without blocking.
func (n *Notifier) drain(fn func(property string)) bool {
	if n == nil {
		return false
	}
	got := false
	for {
		select {
		case p := <-n.ch:
			fn(p)
			got = true
		default:
			return got
		}
	}
}
