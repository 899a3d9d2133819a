package invite

import (
	"sync"
	"time"
)

// Entry is one line in the launch log.
type Entry struct {
	At      time.Time
	Message string
}

// Log collects launch progress messages, newest first, safe for concurrent
// readers while a launch is running.
type Log struct {
	mu      sync.Mutex
	entries []Entry
}

// Append records a message at the head of the log.
func (l *Log) Append(message string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append([]Entry{{At: time.Now(), Message: message}}, l.entries...)
}

// Entries returns a snapshot of the log.
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}
