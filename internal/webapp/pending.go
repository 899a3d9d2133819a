package webapp

import (
	"crypto/rand"
	"net/http"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/ldsaas/portal/internal/invite"
)

const queueCookieName = "portal_invite_queue"

// queue is one browser's staged invite launch. The log and counters are
// read by page renders while a launch goroutine is writing them.
type queue struct {
	Log *invite.Log

	mu         sync.Mutex
	recipients []invite.Recipient
	progress   int
	launching  bool
}

func (q *queue) snapshot() (recipients []invite.Recipient, progress int, launching bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	recipients = make([]invite.Recipient, len(q.recipients))
	copy(recipients, q.recipients)
	return recipients, q.progress, q.launching
}

// stage appends a scanned manifest to the queue; manually added recruits and
// earlier uploads stay put. Staging is frozen while a launch is running.
func (q *queue) stage(recipients []invite.Recipient) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.launching {
		return false
	}
	q.recipients = append(q.recipients, recipients...)
	q.progress = 0
	return true
}

// add appends one recipient typed into the page form. Staging is frozen
// while a launch is running.
func (q *queue) add(r invite.Recipient) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.launching {
		return false
	}
	q.recipients = append(q.recipients, r)
	return true
}

func (q *queue) removeAt(index int) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.launching || index < 0 || index >= len(q.recipients) {
		return false
	}
	q.recipients = append(q.recipients[:index], q.recipients[index+1:]...)
	return true
}

func (q *queue) setProgress(percent int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.progress = percent
}

// begin marks a launch as running and hands back the staged list, or false
// when one is already in flight or nothing is staged.
func (q *queue) begin() ([]invite.Recipient, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.launching || len(q.recipients) == 0 {
		return nil, false
	}
	q.launching = true
	q.progress = 0
	return q.recipients, true
}

func (q *queue) finish(remaining []invite.Recipient) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.recipients = remaining
	q.launching = false
}

// pendingTable holds staged invite queues keyed by a per-browser cookie.
// Queues live only in memory; a restart empties them, which only costs the
// operator a re-upload.
type pendingTable struct {
	mu     sync.Mutex
	queues map[string]*queue
}

func newPendingTable() *pendingTable {
	return &pendingTable{queues: map[string]*queue{}}
}

// forRequest finds or creates the caller's queue, setting the key cookie on
// first contact.
func (t *pendingTable) forRequest(w http.ResponseWriter, r *http.Request) *queue {
	key := ""
	if cookie, err := r.Cookie(queueCookieName); err == nil {
		key = cookie.Value
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if key != "" {
		if q, ok := t.queues[key]; ok {
			return q
		}
	}
	key = ulid.MustNew(ulid.Now(), rand.Reader).String()
	q := &queue{Log: &invite.Log{}}
	t.queues[key] = q
	http.SetCookie(w, &http.Cookie{
		Name:     queueCookieName,
		Value:    key,
		Path:     "/invite",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return q
}
