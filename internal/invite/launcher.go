package invite

import (
	"context"
	"fmt"
	"math"

	"github.com/ldsaas/portal/internal/api"
)

// Sender is the slice of the API client a launch needs.
type Sender interface {
	SendInvite(ctx context.Context, token string, inv api.InviteRequest) error
}

// Launcher emails invitations one at a time so each failure is attributable
// to a single recruit.
type Launcher struct {
	Sender Sender
	Log    *Log

	// OnProgress, when set, is called after each attempt with the percent
	// of the list processed.
	OnProgress func(percent int)
}

// Outcome summarizes one launch. Remaining holds the recipients to keep
// queued: empty when anything was sent, the full list when nothing was.
type Outcome struct {
	Sent      int
	Failed    int
	Remaining []Recipient
}

// Run sends every invitation sequentially. Role is forwarded only for
// elevated callers; the service rejects it from anyone else. Any success
// clears the queue, the per-recruit failures having already been logged. A
// launch where nothing went out keeps the queue so the operator can fix the
// manifest and retry.
func (l *Launcher) Run(ctx context.Context, token string, elevated bool, recipients []Recipient) Outcome {
	total := len(recipients)
	var outcome Outcome
	for i, rec := range recipients {
		req := api.InviteRequest{Email: rec.Email, Name: rec.Name}
		if elevated {
			req.Role = rec.Role
		}
		if err := l.Sender.SendInvite(ctx, token, req); err != nil {
			outcome.Failed++
			l.Log.Append(fmt.Sprintf("❌ Failed %s: %s", rec.Email, err.Error()))
		} else {
			outcome.Sent++
			l.Log.Append(fmt.Sprintf("✅ Sent: %s", rec.Email))
		}
		if l.OnProgress != nil {
			l.OnProgress(int(math.Round(float64(i+1) / float64(total) * 100)))
		}
	}

	if outcome.Sent > 0 {
		l.Log.Append(fmt.Sprintf("Invited %d of %d recruits", outcome.Sent, total))
		return outcome
	}
	l.Log.Append("❌ Launch aborted: no invitations were sent")
	outcome.Remaining = recipients
	return outcome
}
